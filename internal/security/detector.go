// Package security detects credentials carried by workspace profiles. User
// profiles are stored in plain text and shared through export, so a setting
// value or scaffold file that holds a secret is reported before it is saved.
package security

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/validation"
)

// Severity says whether a detection blocks a save or is only reported.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Pattern is one kind of sensitive value.
type Pattern struct {
	Name        string
	Regexp      *regexp.Regexp
	Description string
	Severity    Severity
}

// DefaultPatterns returns the built-in credential patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "API Key",
			Regexp:      regexp.MustCompile(`(?i)(api[_-]?key|apikey)"?\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
			Description: "API key pattern detected",
			Severity:    SeverityWarning,
		},
		{
			Name:        "Token",
			Regexp:      regexp.MustCompile(`(?i)(token|access[_-]?token|auth[_-]?token)"?\s*[:=]\s*['"]?[a-zA-Z0-9_\-\.]{16,}['"]?`),
			Description: "Authentication token pattern detected",
			Severity:    SeverityWarning,
		},
		{
			Name:        "Password",
			Regexp:      regexp.MustCompile(`(?i)(password|passwd|pwd)"?\s*[:=]\s*['"]?[a-zA-Z0-9_\-@!#$%^&*()]{8,}['"]?`),
			Description: "Password pattern detected",
			Severity:    SeverityWarning,
		},
		{
			Name:        "AWS Access Key",
			Regexp:      regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
			Description: "AWS access key detected",
			Severity:    SeverityError,
		},
		{
			Name:        "GitHub Token",
			Regexp:      regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36,}`),
			Description: "GitHub token detected",
			Severity:    SeverityError,
		},
		{
			Name:        "Private Key",
			Regexp:      regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`),
			Description: "Private key detected",
			Severity:    SeverityError,
		},
		{
			Name:        "Bearer Token",
			Regexp:      regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]{20,}`),
			Description: "Bearer token detected",
			Severity:    SeverityWarning,
		},
		{
			Name:        "Database Connection String",
			Regexp:      regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb(\+srv)?|redis)://[^:/\s]+:[^@\s]+@`),
			Description: "Database connection string with credentials detected",
			Severity:    SeverityError,
		},
	}
}

// Finding is a single match inside a profile.
type Finding struct {
	Pattern     string
	Location    string
	Severity    Severity
	Description string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s in %s", f.Description, f.Location)
}

// Detector scans profiles with a fixed pattern set.
type Detector struct {
	patterns []Pattern
}

// NewDetector returns a Detector using patterns, or DefaultPatterns when
// patterns is empty.
func NewDetector(patterns []Pattern) *Detector {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Detector{patterns: patterns}
}

// Scan returns every finding in the profile's setting values and scaffold
// files. Settings are scanned as "key: <json value>" lines.
func (d *Detector) Scan(p model.WorkspaceProfile) []Finding {
	var findings []Finding

	for _, s := range p.KeySettingsSnippet {
		value, err := json.Marshal(s.Value)
		if err != nil {
			continue
		}
		line := fmt.Sprintf("%s: %s", s.Key, value)
		findings = append(findings, d.scanLine(line, "setting "+s.Key)...)
	}

	for _, f := range p.Files {
		for i, line := range strings.Split(f.Content, "\n") {
			if isPlaceholder(line) {
				continue
			}
			findings = append(findings, d.scanLine(line, fmt.Sprintf("file %s line %d", f.Path, i+1))...)
		}
	}

	return findings
}

func (d *Detector) scanLine(line, location string) []Finding {
	var findings []Finding
	for _, pattern := range d.patterns {
		if !pattern.Regexp.MatchString(line) {
			continue
		}
		findings = append(findings, Finding{
			Pattern:     pattern.Name,
			Location:    location,
			Severity:    pattern.Severity,
			Description: pattern.Description,
		})
	}
	return findings
}

// isPlaceholder reports comment lines and lines whose value is an obvious
// documentation placeholder.
func isPlaceholder(line string) bool {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "#") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") {
		return true
	}

	_, value, ok := strings.Cut(trimmed, ":")
	if !ok {
		_, value, ok = strings.Cut(trimmed, "=")
	}
	if !ok {
		return false
	}
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Contains(value, "your_") ||
		strings.Contains(value, "<your") ||
		strings.Contains(value, "placeholder") ||
		strings.Contains(value, "example_") ||
		strings.HasPrefix(value, "\"xxx") ||
		strings.HasPrefix(value, "'xxx")
}

// ScanProfile scans p with the default patterns. Error-severity findings make
// the result invalid; the rest become warnings.
func ScanProfile(p model.WorkspaceProfile) *validation.Result {
	result := &validation.Result{Valid: true}
	for _, f := range NewDetector(nil).Scan(p) {
		if f.Severity == SeverityError {
			result.AddError(&validation.Error{Field: f.Location, Message: f.Description})
			continue
		}
		result.AddWarning(f.String())
	}
	return result
}
