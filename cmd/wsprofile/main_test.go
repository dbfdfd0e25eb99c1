package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/klauern/wsprofile/internal/cli"
)

// run executes the CLI and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := cli.Run(context.Background(), append([]string{"wsprofile"}, args...))

	if closeErr := w.Close(); closeErr != nil {
		t.Fatalf("failed to close pipe writer: %v", closeErr)
	}
	os.Stdout = old

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("failed to read captured output: %v", copyErr)
	}
	return buf.String(), err
}

func TestCLIInitialization(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Fatalf("CLI initialization failed: %v", err)
	}

	if !strings.Contains(output, "wsprofile") {
		t.Errorf("expected help output to contain 'wsprofile', got: %q", output)
	}
	if !strings.Contains(output, "USAGE") || !strings.Contains(output, "COMMANDS") {
		t.Errorf("expected help output to contain USAGE and COMMANDS sections, got: %q", output)
	}
}

func TestVersionFlag(t *testing.T) {
	output, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version flag failed: %v", err)
	}

	if !strings.Contains(output, "wsprofile") {
		t.Errorf("expected version output to contain 'wsprofile', got: %q", output)
	}
}

func TestGlobalFlagsRecognized(t *testing.T) {
	tests := map[string]struct {
		args    []string
		wantErr bool
	}{
		"verbose flag": {
			args:    []string{"--verbose", "version"},
			wantErr: false,
		},
		"debug flag": {
			args:    []string{"--debug", "version"},
			wantErr: false,
		},
		"no-color flag": {
			args:    []string{"--no-color", "version"},
			wantErr: false,
		},
		"combined flags": {
			args:    []string{"--verbose", "--no-color", "version"},
			wantErr: false,
		},
		"unknown flag": {
			args:    []string{"--bogus", "version"},
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllCommandsRegistered(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	expectedCommands := []string{
		"version",
		"config",
		"list",
		"show",
		"save",
		"delete",
		"apply",
		"new",
		"export",
		"import",
		"marketplace",
		"session",
		"backups",
		"stats",
	}

	for _, cmd := range expectedCommands {
		if !strings.Contains(output, cmd) {
			t.Errorf("expected command %q to be registered, help output: %q", cmd, output)
		}
	}
}

func TestHelpSubcommand(t *testing.T) {
	output, err := run(t, "help")
	if err != nil {
		t.Fatalf("help subcommand failed: %v", err)
	}

	if !strings.Contains(output, "wsprofile") {
		t.Errorf("expected help output to contain 'wsprofile', got: %q", output)
	}
}
