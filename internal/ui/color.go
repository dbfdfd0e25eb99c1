// Package ui provides terminal output helpers for wsprofile.
package ui

import (
	"strings"

	"github.com/fatih/color"
)

// Color function types for styled output.
var (
	// Success is used for applied settings and completed operations (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error is used for errors and failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning is used for partial application warnings (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info is used for informational messages (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for profile names.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for descriptions and secondary information.
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for table headers (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
)

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string {
	return withSymbol(Success(SymbolSuccess), msg)
}

// StatusError returns a red X with optional message.
func StatusError(msg string) string {
	return withSymbol(Error(SymbolError), msg)
}

// StatusWarning returns a yellow warning with optional message.
func StatusWarning(msg string) string {
	return withSymbol(Warning(SymbolWarning), msg)
}

// StatusSkipped returns a dimmed skip symbol with optional message.
func StatusSkipped(msg string) string {
	return withSymbol(Dim(SymbolSkipped), msg)
}

func withSymbol(symbol, msg string) string {
	if msg == "" {
		return symbol
	}
	return symbol + " " + msg
}

// Kind renders the built-in/user classification of a profile.
func Kind(userDefined bool) string {
	if userDefined {
		return Info("user")
	}
	return Dim("built-in")
}

// ConfigureColors applies an output.color setting: "never" disables colors,
// "always" forces them on, anything else leaves fatih/color's terminal detection alone.
func ConfigureColors(mode string) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "never":
		DisableColors()
	case "always":
		EnableColors()
	}
}

// DisableColors disables all color output.
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}
