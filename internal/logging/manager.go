package logging

import (
	"fmt"
	"sync"
)

// Global logger instance
var (
	globalMu     sync.Mutex
	globalLogger *MultiLogger
)

// Initialize configures the global logging system from configuration.
func Initialize(cfg Config) error {
	logger := NewMultiLogger()
	logger.SetLevel(ParseLogLevel(cfg.Level))

	switch cfg.Output {
	case "", "stdout":
		if err := logger.AddAdapter(NewStdoutAdapter("stdout", cfg.Format)); err != nil {
			return err
		}
	case "file":
		adapter, err := NewFileAdapter("file", cfg.Format, cfg.FilePath)
		if err != nil {
			return fmt.Errorf("failed to create file adapter: %w", err)
		}
		if err := logger.AddAdapter(adapter); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return nil
}

// GetGlobalLogger returns the global logger instance, falling back to a
// basic stdout logger when Initialize has not been called.
func GetGlobalLogger() Logger {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = NewMultiLogger()
		globalLogger.AddAdapter(NewStdoutAdapter("stdout", "json"))
	}
	return globalLogger
}

// Close closes the global logging system
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
