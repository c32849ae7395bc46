package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// CategoryPlan describes one named category query against the upstream
// search API: the OR-joined search terms, the target region and whether the
// query is restricted to remote postings. The plan is static configuration
// and is never mutated at runtime.
type CategoryPlan struct {
	Name       string   `yaml:"name" validate:"required"`
	Terms      []string `yaml:"terms" validate:"required,min=1,dive,required"`
	Region     string   `yaml:"region" validate:"required,len=2"`
	RemoteOnly bool     `yaml:"remote_only"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		Host         string        `yaml:"host"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
	} `yaml:"server"`

	Adzuna struct {
		AppID          string        `yaml:"app_id"`
		AppKey         string        `yaml:"app_key"`
		BaseURL        string        `yaml:"base_url"`
		ResultsPerPage int           `yaml:"results_per_page"`
		MaxPages       int           `yaml:"max_pages"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"adzuna"`

	Refresh struct {
		Interval        time.Duration `yaml:"interval"`
		Pacing          time.Duration `yaml:"pacing"`
		MaxJobAge       time.Duration `yaml:"max_job_age"`
		NewJobThreshold time.Duration `yaml:"new_job_threshold"`
	} `yaml:"refresh"`

	Categories []CategoryPlan `yaml:"categories" validate:"required,min=1,dive"`

	Logging struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"logging"`

	Redis struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Key     string        `yaml:"key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"redis"`
}

// fileConfig mirrors Config for YAML decoding, with durations as strings.
// YAML has no duration scalar, so values like "30s" arrive as strings and
// are parsed into the real Config by apply.
type fileConfig struct {
	Server struct {
		Port         int    `yaml:"port"`
		Host         string `yaml:"host"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		IdleTimeout  string `yaml:"idle_timeout"`
	} `yaml:"server"`

	Adzuna struct {
		AppID          string `yaml:"app_id"`
		AppKey         string `yaml:"app_key"`
		BaseURL        string `yaml:"base_url"`
		ResultsPerPage int    `yaml:"results_per_page"`
		MaxPages       int    `yaml:"max_pages"`
		Timeout        string `yaml:"timeout"`
	} `yaml:"adzuna"`

	Refresh struct {
		Interval        string `yaml:"interval"`
		Pacing          string `yaml:"pacing"`
		MaxJobAge       string `yaml:"max_job_age"`
		NewJobThreshold string `yaml:"new_job_threshold"`
	} `yaml:"refresh"`

	Categories []CategoryPlan `yaml:"categories"`

	Logging struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"logging"`

	Redis struct {
		Enabled *bool  `yaml:"enabled"`
		URL     string `yaml:"url"`
		Key     string `yaml:"key"`
		Timeout string `yaml:"timeout"`
	} `yaml:"redis"`
}

// apply overlays the file values onto the config; absent fields keep their
// defaults.
func (f *fileConfig) apply(c *Config) error {
	if f.Server.Port != 0 {
		c.Server.Port = f.Server.Port
	}
	if f.Server.Host != "" {
		c.Server.Host = f.Server.Host
	}
	if f.Adzuna.AppID != "" {
		c.Adzuna.AppID = f.Adzuna.AppID
	}
	if f.Adzuna.AppKey != "" {
		c.Adzuna.AppKey = f.Adzuna.AppKey
	}
	if f.Adzuna.BaseURL != "" {
		c.Adzuna.BaseURL = f.Adzuna.BaseURL
	}
	if f.Adzuna.ResultsPerPage != 0 {
		c.Adzuna.ResultsPerPage = f.Adzuna.ResultsPerPage
	}
	if f.Adzuna.MaxPages != 0 {
		c.Adzuna.MaxPages = f.Adzuna.MaxPages
	}
	if f.Categories != nil {
		c.Categories = f.Categories
	}
	if f.Logging.Level != "" {
		c.Logging.Level = f.Logging.Level
	}
	if f.Logging.Format != "" {
		c.Logging.Format = f.Logging.Format
	}
	if f.Logging.Output != "" {
		c.Logging.Output = f.Logging.Output
	}
	if f.Logging.FilePath != "" {
		c.Logging.FilePath = f.Logging.FilePath
	}
	if f.Redis.Enabled != nil {
		c.Redis.Enabled = *f.Redis.Enabled
	}
	if f.Redis.URL != "" {
		c.Redis.URL = f.Redis.URL
	}
	if f.Redis.Key != "" {
		c.Redis.Key = f.Redis.Key
	}

	for _, d := range []struct {
		raw   string
		dst   *time.Duration
		field string
	}{
		{f.Server.ReadTimeout, &c.Server.ReadTimeout, "server.read_timeout"},
		{f.Server.WriteTimeout, &c.Server.WriteTimeout, "server.write_timeout"},
		{f.Server.IdleTimeout, &c.Server.IdleTimeout, "server.idle_timeout"},
		{f.Adzuna.Timeout, &c.Adzuna.Timeout, "adzuna.timeout"},
		{f.Refresh.Interval, &c.Refresh.Interval, "refresh.interval"},
		{f.Refresh.Pacing, &c.Refresh.Pacing, "refresh.pacing"},
		{f.Refresh.MaxJobAge, &c.Refresh.MaxJobAge, "refresh.max_job_age"},
		{f.Refresh.NewJobThreshold, &c.Refresh.NewJobThreshold, "refresh.new_job_threshold"},
		{f.Redis.Timeout, &c.Redis.Timeout, "redis.timeout"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.field, d.raw, err)
		}
		*d.dst = parsed
	}

	return nil
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Adzuna.BaseURL = "https://api.adzuna.com/v1/api/jobs"
	config.Adzuna.ResultsPerPage = 50
	config.Adzuna.MaxPages = 2
	config.Adzuna.Timeout = 15 * time.Second

	config.Refresh.Interval = 30 * time.Minute
	config.Refresh.Pacing = time.Second
	config.Refresh.MaxJobAge = 7 * 24 * time.Hour
	config.Refresh.NewJobThreshold = 6 * time.Hour

	config.Categories = DefaultCategories()

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Key = "secboard:stats"
	config.Redis.Timeout = 5 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			var file fileConfig
			if err := yaml.Unmarshal([]byte(yamlContent), &file); err != nil {
				return nil, fmt.Errorf("invalid configuration file: %w", err)
			}
			if err := file.apply(config); err != nil {
				return nil, fmt.Errorf("invalid configuration file: %w", err)
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if appID := os.Getenv("ADZUNA_APP_ID"); appID != "" {
		c.Adzuna.AppID = appID
	}

	if appKey := os.Getenv("ADZUNA_APP_KEY"); appKey != "" {
		c.Adzuna.AppKey = appKey
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			c.Refresh.Interval = d
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = redisEnabled == "true" || redisEnabled == "1"
	}
}

// Validate checks the configuration for errors that must prevent startup,
// most importantly a malformed category plan.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if seen[cat.Name] {
			return fmt.Errorf("configuration invalid: duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
	}

	if c.Refresh.Pacing < time.Second {
		return fmt.Errorf("configuration invalid: refresh pacing must be at least 1s, got %s", c.Refresh.Pacing)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("configuration invalid: refresh interval must be positive")
	}
	if c.Refresh.MaxJobAge <= 0 || c.Refresh.NewJobThreshold <= 0 {
		return fmt.Errorf("configuration invalid: retention and freshness windows must be positive")
	}

	return nil
}

// DefaultCategories returns the built-in security category query plan, used
// when the configuration file does not supply one.
func DefaultCategories() []CategoryPlan {
	return []CategoryPlan{
		{Name: "SOC & Incident Response", Terms: []string{"soc analyst", "incident response", "threat hunter"}, Region: "us"},
		{Name: "Penetration Testing", Terms: []string{"penetration tester", "red team", "offensive security"}, Region: "us"},
		{Name: "Cloud Security", Terms: []string{"cloud security", "devsecops"}, Region: "us"},
		{Name: "GRC & Compliance", Terms: []string{"grc analyst", "security compliance", "security auditor"}, Region: "us"},
		{Name: "Identity & Access", Terms: []string{"iam engineer", "identity access management"}, Region: "us"},
		{Name: "Security Engineering", Terms: []string{"security engineer", "application security"}, Region: "us"},
		{Name: "Remote (US)", Terms: []string{"cyber security"}, Region: "us", RemoteOnly: true},
		{Name: "Remote (UK)", Terms: []string{"cyber security"}, Region: "gb", RemoteOnly: true},
		{Name: "Remote (AU)", Terms: []string{"cyber security"}, Region: "au", RemoteOnly: true},
	}
}
