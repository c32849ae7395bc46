package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"secboard/internal/adzuna"
	"secboard/pkg/models"
	"secboard/pkg/utils"
)

const (
	// Placeholders for fields the upstream record omits.
	defaultTitle        = "Untitled Position"
	defaultCompany      = "Company Not Listed"
	defaultLocation     = "Location not specified"
	defaultSalary       = "Salary not disclosed"
	defaultURL          = "#"
	defaultRequirements = "Security experience required"

	source = "adzuna"
)

// certVocabulary is the fixed certification vocabulary scanned for in
// descriptions. Display form is kept as-is; matching is case-insensitive.
var certVocabulary = []string{
	"CISSP", "CISM", "CISA", "CRISC", "CEH", "OSCP", "GIAC", "GSEC",
	"GCIH", "Security+", "CySA+", "CASP+", "SSCP", "CCSP",
}

// remoteKeywords mark a posting as remote when any appears in the combined
// title, description and location text.
var remoteKeywords = []string{
	"remote", "work from home", "wfh", "telecommute", "distributed", "anywhere",
}

type categoryRule struct {
	label    string
	keywords []string
}

// categoryRules are evaluated in order; the first match wins. Identity
// keywords come before the generic compliance ones, so an "IAM compliance
// analyst" lands in Identity & Access.
var categoryRules = []categoryRule{
	{"Identity & Access", []string{"identity", "iam", "access management", "authentication", "sso"}},
	{"GRC & Compliance", []string{"compliance", "grc", "governance", "risk", "audit"}},
	{"Penetration Testing", []string{"penetration", "pentest", "red team", "offensive security", "ethical hack"}},
	{"Cloud Security", []string{"cloud security", "devsecops", "aws security", "azure security"}},
	{"SOC & Incident Response", []string{"soc analyst", "security operations", "incident response", "threat", "siem"}},
	{"Security Engineering", []string{"security engineer", "application security", "appsec", "product security"}},
}

const fallbackCategory = "General Security"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalizer converts raw upstream records into canonical jobs. It is a pure
// transformation: all time-dependent derivations take "now" as a parameter.
type Normalizer struct {
	newJobThreshold time.Duration
}

// NewNormalizer creates a normalizer with the given freshness window.
func NewNormalizer(newJobThreshold time.Duration) *Normalizer {
	return &Normalizer{newJobThreshold: newJobThreshold}
}

// Normalize converts one raw Adzuna result into a canonical Job. Missing
// fields get placeholders so nothing downstream has to nil-check.
func (n *Normalizer) Normalize(rec adzuna.Result, now time.Time) models.Job {
	title := utils.GetStringOrDefault(strings.TrimSpace(rec.Title), defaultTitle)
	company := utils.GetStringOrDefault(strings.TrimSpace(rec.Company.DisplayName), defaultCompany)
	location := utils.GetStringOrDefault(strings.TrimSpace(rec.Location.DisplayName), defaultLocation)
	description := StripHTML(rec.Description)
	createdAt := adzuna.ParseCreated(rec.Created)

	combined := strings.ToLower(title + " " + description + " " + location)

	return models.Job{
		ID:           Fingerprint(title, company, createdAt),
		Title:        title,
		Company:      company,
		Location:     location,
		Description:  description,
		Salary:       FormatSalary(rec.SalaryMin, rec.SalaryMax),
		URL:          utils.GetStringOrDefault(strings.TrimSpace(rec.RedirectURL), defaultURL),
		Category:     Categorize(title, description, location),
		Requirements: ExtractRequirements(description),
		IsNew:        !createdAt.IsZero() && now.Sub(createdAt) < n.newJobThreshold,
		IsRemote:     DetectRemote(combined),
		CreatedAt:    createdAt,
		FetchedAt:    now,
		Source:       source,
	}
}

// Fingerprint derives the stable, case-normalized job identity from title,
// company and creation time. Re-fetching the same posting always yields the
// same ID, which is what makes re-ingestion idempotent.
func Fingerprint(title, company string, createdAt time.Time) string {
	seed := fmt.Sprintf("%s|%s|%d",
		strings.ToLower(title), strings.ToLower(company), createdAt.UTC().Unix())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:16]
}

// FormatSalary builds the display salary string from the optional bounds.
func FormatSalary(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("$%s - $%s", formatMoney(*min), formatMoney(*max))
	case min != nil:
		return fmt.Sprintf("From $%s", formatMoney(*min))
	case max != nil:
		return fmt.Sprintf("Up to $%s", formatMoney(*max))
	default:
		return defaultSalary
	}
}

func formatMoney(v float64) string {
	return utils.FormatThousands(int(math.Round(v)))
}

// ExtractRequirements scans a description for known certifications and joins
// the matches, falling back to a generic requirement line.
func ExtractRequirements(description string) string {
	lower := strings.ToLower(description)

	var found []string
	for _, cert := range certVocabulary {
		if strings.Contains(lower, strings.ToLower(cert)) {
			found = append(found, cert)
		}
	}
	if len(found) == 0 {
		return defaultRequirements
	}
	return strings.Join(found, ", ")
}

// Categorize assigns a category label from the fixed rule chain. It is a
// pure function of the posting text: the same inputs always produce the same
// label. Keyword rules run first in priority order; remote postings then
// branch by region substring; everything else falls back to the general
// label.
func Categorize(title, description, location string) string {
	combined := strings.ToLower(title + " " + description + " " + location)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(combined, kw) {
				return rule.label
			}
		}
	}

	loc := strings.ToLower(location)
	if strings.Contains(loc, "remote") {
		switch {
		case strings.Contains(loc, "uk"):
			return "Remote (UK)"
		case strings.Contains(loc, "au"):
			return "Remote (AU)"
		default:
			return "Remote (US)"
		}
	}

	return fallbackCategory
}

// DetectRemote reports whether the combined posting text marks the job as
// remote. The input is expected to be lowercased.
func DetectRemote(combined string) bool {
	for _, kw := range remoteKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// StripHTML removes markup from upstream descriptions and collapses
// whitespace, so keyword scans and API consumers see plain text. Input
// without markup passes through untouched.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return whitespaceRe.ReplaceAllString(s, " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return whitespaceRe.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Text(), " "))
}
