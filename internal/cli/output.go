package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/ui"
)

// outputAnyJSON outputs any value as JSON.
func outputAnyJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// outputAnyYAML outputs any value as YAML.
func outputAnyYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// outputFormat returns the --format flag, or output.format from the config.
func outputFormat(flag, configured string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = configured
	}
	switch format {
	case "", "table":
		return "table", nil
	case "json", "yaml":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use table, json, or yaml)", flag)
	}
}

// truncateStr truncates a string to the specified width.
func truncateStr(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width < 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}

// printProfileTable prints profiles as an aligned table.
func printProfileTable(profiles []model.WorkspaceProfile) {
	fmt.Printf("%-32s %-32s %-10s %4s %4s\n", "ID", "NAME", "KIND", "EXT", "SET")
	fmt.Printf("%-32s %-32s %-10s %4s %4s\n",
		strings.Repeat("-", 32),
		strings.Repeat("-", 32),
		strings.Repeat("-", 10),
		strings.Repeat("-", 4),
		strings.Repeat("-", 4))

	for _, p := range profiles {
		// Pad before coloring so escape codes don't break alignment.
		kind := fmt.Sprintf("%-10s", p.DisplayKind())
		if p.IsUserDefined {
			kind = ui.Info(kind)
		} else {
			kind = ui.Dim(kind)
		}
		fmt.Printf("%-32s %-32s %s %4d %4d\n",
			truncateStr(p.ID, 32),
			truncateStr(p.Name, 32),
			kind,
			len(p.ExtensionIDs()),
			len(p.KeySettingsSnippet))
	}

	fmt.Printf("\nTotal: %d profile(s)\n", len(profiles))
}

// printProfileDetail prints one profile in human-readable form.
func printProfileDetail(p model.WorkspaceProfile) {
	fmt.Printf("%s (%s)\n", ui.Bold(p.Name), p.ID)
	fmt.Printf("  Kind: %s\n", ui.Kind(p.IsUserDefined))
	if p.Description != "" {
		fmt.Printf("  %s\n", ui.Dim(p.Description))
	}

	fmt.Printf("\n%s\n", ui.Header(fmt.Sprintf("Recommended extensions (%d)", len(p.RecommendedExtensions))))
	for _, ext := range p.RecommendedExtensions {
		if ext.Name != "" {
			fmt.Printf("  %s  %s\n", ext.ID, ui.Dim(ext.Name))
		} else {
			fmt.Printf("  %s\n", ext.ID)
		}
	}

	fmt.Printf("\n%s\n", ui.Header(fmt.Sprintf("Key settings (%d)", len(p.KeySettingsSnippet))))
	for _, s := range p.KeySettingsSnippet {
		value, err := json.Marshal(s.Value)
		if err != nil {
			value = []byte(fmt.Sprintf("%v", s.Value))
		}
		fmt.Printf("  %s = %s\n", s.Key, value)
		if s.Description != "" {
			fmt.Printf("      %s\n", ui.Dim(s.Description))
		}
	}

	if len(p.Files) > 0 {
		fmt.Printf("\n%s\n", ui.Header(fmt.Sprintf("Files (%d)", len(p.Files))))
		for _, f := range p.Files {
			fmt.Printf("  %s\n", f.Path)
		}
	}
}
