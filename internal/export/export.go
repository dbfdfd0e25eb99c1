// Package export converts workspace profiles to and from portable files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
)

// Format represents the file format for exported profiles.
type Format string

const (
	// FormatJSON exports profiles as JSON.
	FormatJSON Format = "json"
	// FormatYAML exports profiles as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML exports profiles as TOML.
	FormatTOML Format = "toml"
	// FormatMarkdown renders profiles as a Markdown summary. It cannot be imported.
	FormatMarkdown Format = "markdown"
)

// DocumentVersion is written into every exported document.
const DocumentVersion = 1

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatMarkdown:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// AllFormats returns all supported export formats.
func AllFormats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatMarkdown}
}

// ParseFormat parses a string into a Format.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if format == "yml" {
		format = FormatYAML
	}
	if !format.IsValid() {
		valid := make([]string, 0, len(AllFormats()))
		for _, f := range AllFormats() {
			valid = append(valid, string(f))
		}
		return "", fmt.Errorf("unsupported format %q (valid: %s)", s, strings.Join(valid, ", "))
	}
	return format, nil
}

// FormatFromPath infers a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "md" {
		ext = string(FormatMarkdown)
	}
	return ParseFormat(ext)
}

// Options configures export behavior.
type Options struct {
	// Format specifies the output format.
	Format Format
	// Pretty enables indentation for JSON and YAML.
	Pretty bool
	// UserOnly drops built-in profiles.
	UserOnly bool
}

// DefaultOptions returns the default export options.
func DefaultOptions() Options {
	return Options{
		Format: FormatJSON,
		Pretty: true,
	}
}

// Document is the top-level shape of an exported file.
type Document struct {
	Version  int                      `json:"version" yaml:"version" toml:"version"`
	Profiles []model.WorkspaceProfile `json:"profiles" yaml:"profiles" toml:"profiles"`
}

// Exporter handles exporting profiles to different formats.
type Exporter struct {
	opts Options
}

// New creates a new Exporter with the given options.
func New(opts Options) *Exporter {
	return &Exporter{opts: opts}
}

// Export writes profiles to w in the configured format.
func (e *Exporter) Export(profiles []model.WorkspaceProfile, w io.Writer) error {
	filtered := e.filter(profiles)

	logging.Debug("starting export",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(filtered)),
		logging.Operation("export"),
	)

	doc := Document{Version: DocumentVersion, Profiles: filtered}

	var err error
	switch e.opts.Format {
	case FormatJSON:
		err = e.exportJSON(doc, w)
	case FormatYAML:
		err = e.exportYAML(doc, w)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(doc)
	case FormatMarkdown:
		err = exportMarkdown(filtered, w)
	default:
		err = fmt.Errorf("unsupported format: %s", e.opts.Format)
	}

	if err != nil {
		logging.Error("export failed",
			slog.String("format", string(e.opts.Format)),
			logging.Err(err),
		)
		return err
	}

	logging.Info("export completed",
		slog.String("format", string(e.opts.Format)),
		logging.Count(len(filtered)),
	)
	return nil
}

func (e *Exporter) filter(profiles []model.WorkspaceProfile) []model.WorkspaceProfile {
	out := make([]model.WorkspaceProfile, 0, len(profiles))
	for _, p := range profiles {
		if e.opts.UserOnly && !p.IsUserDefined {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (e *Exporter) exportJSON(doc Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if e.opts.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(doc)
}

func (e *Exporter) exportYAML(doc Document, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	if e.opts.Pretty {
		encoder.SetIndent(2)
	}
	if err := encoder.Encode(doc); err != nil {
		_ = encoder.Close()
		return err
	}
	return encoder.Close()
}

func exportMarkdown(profiles []model.WorkspaceProfile, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("# Workspace Profiles\n\n")
	sb.WriteString(fmt.Sprintf("Total: %d profile(s)\n", len(profiles)))

	for _, p := range profiles {
		sb.WriteString(fmt.Sprintf("\n## %s (`%s`)\n\n", p.Name, p.ID))
		if p.Description != "" {
			sb.WriteString(fmt.Sprintf("*%s*\n\n", p.Description))
		}

		if ids := p.ExtensionIDs(); len(ids) > 0 {
			sb.WriteString("### Extensions\n\n")
			for _, id := range ids {
				sb.WriteString(fmt.Sprintf("- `%s`\n", id))
			}
			sb.WriteString("\n")
		}

		if len(p.KeySettingsSnippet) > 0 {
			sb.WriteString("### Settings\n\n")
			sb.WriteString("| Key | Value |\n")
			sb.WriteString("|-----|-------|\n")
			for _, s := range p.KeySettingsSnippet {
				value, err := json.Marshal(s.Value)
				if err != nil {
					value = []byte(fmt.Sprintf("%v", s.Value))
				}
				sb.WriteString(fmt.Sprintf("| `%s` | `%s` |\n", s.Key, value))
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
