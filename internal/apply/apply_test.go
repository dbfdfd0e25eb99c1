package apply

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauern/wsprofile/internal/backup"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/progress"
	"github.com/klauern/wsprofile/internal/util"
)

func sampleProfile() model.WorkspaceProfile {
	return model.WorkspaceProfile{
		ID:   "web",
		Name: "Web",
		RecommendedExtensions: []model.RecommendedExtension{
			{ID: "esbenp.prettier-vscode"},
			{ID: "dbaeumer.vscode-eslint"},
			{ID: ""},
		},
		KeySettingsSnippet: []model.KeySetting{
			{Key: "editor.formatOnSave", Value: true},
			{Key: "editor.tabSize", Value: 2},
		},
	}
}

func recommendations(t *testing.T, root string) []string {
	t.Helper()
	doc := util.ReadJSONFile(t, util.ExtensionsFile(root))
	raw, _ := doc["recommendations"].([]any)
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i], _ = v.(string)
	}
	return out
}

func TestApplyToWorkspace(t *testing.T) {
	root := t.TempDir()

	report, err := New().ApplyToWorkspace(context.Background(), sampleProfile(), root)
	util.AssertNoError(t, err)

	if !report.Success() {
		t.Fatalf("expected clean apply, warnings: %v", report.Warnings())
	}
	util.AssertEqual(t, len(report.Applied()), 2)

	settings := util.ReadJSONFile(t, util.SettingsFile(root))
	util.AssertEqual(t, settings["editor.formatOnSave"], any(true))
	util.AssertEqual(t, settings["editor.tabSize"], any(float64(2)))

	got := recommendations(t, root)
	want := []string{"dbaeumer.vscode-eslint", "esbenp.prettier-vscode"}
	if !slices.Equal(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
	if !slices.Equal(report.RecommendationIDs, want) {
		t.Errorf("report recommendations = %v", report.RecommendationIDs)
	}
}

func TestApplyToWorkspace_PartialApplication(t *testing.T) {
	root := t.TempDir()
	profile := model.WorkspaceProfile{
		ID:   "partial",
		Name: "Partial",
		KeySettingsSnippet: []model.KeySetting{
			{Key: "not a valid key", Value: 1},
			{Key: "editor.wordWrap", Value: "on"},
		},
	}

	report, err := New().ApplyToWorkspace(context.Background(), profile, root)
	if err != nil {
		t.Fatalf("partial failure must not abort: %v", err)
	}

	settings := util.ReadJSONFile(t, util.SettingsFile(root))
	if settings["editor.wordWrap"] != "on" {
		t.Errorf("valid key not applied: %v", settings)
	}
	if _, ok := settings["not a valid key"]; ok {
		t.Error("invalid key written")
	}

	warnings := report.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "not a valid key") {
		t.Errorf("warnings = %v", warnings)
	}
	if report.Success() {
		t.Error("report should not be clean")
	}
	if report.Settings[0].Status != StatusFailed || report.Settings[1].Status != StatusApplied {
		t.Errorf("outcomes = %+v", report.Settings)
	}
}

func TestApplyToWorkspace_IdempotentMerge(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, util.ExtensionsFile(root), `{
    // team picks
    "recommendations": ["golang.go", "esbenp.prettier-vscode"],
    "unwantedRecommendations": ["ms-vscode.vscode-typescript-tslint-plugin"],
}`)

	a := New()
	ctx := context.Background()
	_, err := a.ApplyToWorkspace(ctx, sampleProfile(), root)
	util.AssertNoError(t, err)
	first := recommendations(t, root)

	_, err = a.ApplyToWorkspace(ctx, sampleProfile(), root)
	util.AssertNoError(t, err)
	second := recommendations(t, root)

	want := []string{"dbaeumer.vscode-eslint", "esbenp.prettier-vscode", "golang.go"}
	if !slices.Equal(first, want) || !slices.Equal(second, want) {
		t.Errorf("first = %v, second = %v, want %v", first, second, want)
	}

	doc := util.ReadJSONFile(t, util.ExtensionsFile(root))
	if _, ok := doc["unwantedRecommendations"]; !ok {
		t.Error("unwantedRecommendations dropped")
	}

	data, err := os.ReadFile(util.ExtensionsFile(root))
	util.AssertNoError(t, err)
	if !strings.Contains(string(data), "\n    \"recommendations\"") {
		t.Errorf("expected four-space indentation:\n%s", data)
	}
}

func TestApplyToWorkspace_BadExtensionsFile(t *testing.T) {
	tests := map[string]string{
		"not json":            "{{{",
		"recommendations map": `{"recommendations": {"a": 1}}`,
		"non-string entry":    `{"recommendations": ["a", 3]}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			util.WriteFile(t, util.ExtensionsFile(root), content)

			report, err := New().ApplyToWorkspace(context.Background(), sampleProfile(), root)
			util.AssertNoError(t, err)

			if !report.Recommendations.Failed() {
				t.Fatal("expected recommendations failure")
			}
			if len(report.Applied()) != 2 {
				t.Errorf("settings should still apply, got %+v", report.Settings)
			}

			data, _ := os.ReadFile(util.ExtensionsFile(root))
			util.AssertEqual(t, string(data), content)
		})
	}
}

func TestApplyToWorkspace_NoWorkspace(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	util.WriteFile(t, file, "x")

	tests := map[string]string{
		"empty root":   "",
		"missing root": filepath.Join(t.TempDir(), "missing"),
		"file not dir": file,
	}

	for name, root := range tests {
		t.Run(name, func(t *testing.T) {
			report, err := New().ApplyToWorkspace(context.Background(), sampleProfile(), root)
			if !errors.Is(err, ErrNoWorkspace) {
				t.Fatalf("error = %v, want ErrNoWorkspace", err)
			}
			if report != nil {
				t.Error("no report expected when the precondition fails")
			}
			if root != "" && util.FileExists(util.VSCodeDir(root)) {
				t.Error(".vscode created despite failed precondition")
			}
		})
	}
}

type fakeWriter struct {
	fail  map[string]bool
	wrote []string
}

func (w *fakeWriter) Update(_ context.Context, key string, _ any) error {
	if w.fail[key] {
		return errors.New("unknown configuration setting")
	}
	w.wrote = append(w.wrote, key)
	return nil
}

type countingReporter struct {
	total int64
	added int
	descs []string
	done  bool
}

func (r *countingReporter) Describe(d string) { r.descs = append(r.descs, d) }
func (r *countingReporter) Add(n int) error { r.added += n; return nil }
func (r *countingReporter) Finish() error { r.done = true; return nil }

func TestApplyToWorkspace_WriterAndProgress(t *testing.T) {
	root := t.TempDir()
	writer := &fakeWriter{fail: map[string]bool{"editor.formatOnSave": true}}
	reporter := &countingReporter{}

	a := New(
		WithSettingsWriter(func(string) SettingsWriter { return writer }),
		WithProgress(func(total int64, _ string) progress.Reporter {
			reporter.total = total
			return reporter
		}),
	)

	report, err := a.ApplyToWorkspace(context.Background(), sampleProfile(), root)
	util.AssertNoError(t, err)

	if !slices.Equal(writer.wrote, []string{"editor.tabSize"}) {
		t.Errorf("writer saw %v", writer.wrote)
	}
	util.AssertEqual(t, len(report.Failed()), 1)
	util.AssertEqual(t, reporter.total, int64(3))
	util.AssertEqual(t, reporter.added, 3)
	if !reporter.done {
		t.Error("progress not finished")
	}
}

func TestApplyToWorkspace_CanceledContext(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ApplyToWorkspace(ctx, sampleProfile(), root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if util.FileExists(util.ExtensionsFile(root)) {
		t.Error("recommendations written after cancellation")
	}
}

func TestApplyToWorkspace_Backups(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, util.SettingsFile(root), `{"editor.tabSize": 8}`)

	manager := backup.New(filepath.Join(t.TempDir(), "backups"))
	report, err := New(WithBackups(manager)).ApplyToWorkspace(context.Background(), sampleProfile(), root)
	util.AssertNoError(t, err)

	if len(report.Backups) != 1 {
		t.Fatalf("expected one backup (extensions.json absent), got %v", report.Backups)
	}

	restored := filepath.Join(t.TempDir(), "settings.json")
	util.AssertNoError(t, manager.RestoreBackup(report.Backups[0], restored))
	data, _ := os.ReadFile(restored)
	util.AssertEqual(t, string(data), `{"editor.tabSize": 8}`)
}

func TestReport_Summary(t *testing.T) {
	r := &Report{
		ProfileID:   "web",
		ProfileName: "Web",
		Root:        "/ws",
		Settings: []Outcome{
			{Key: "a.b", Status: StatusApplied},
			{Key: "c d", Status: StatusFailed, Err: errors.New("bad key")},
		},
		Recommendations:   Outcome{Key: ExtensionsFileName, Status: StatusApplied},
		RecommendationIDs: []string{"x.y"},
	}

	summary := r.Summary()
	for _, want := range []string{`Applied "Web" to /ws`, "Settings applied: 1/2", "Recommendations:  1", "c d"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	r.Recommendations = Outcome{Key: ExtensionsFileName, Status: StatusFailed, Err: errors.New("boom")}
	warnings := r.Warnings()
	if len(warnings) != 2 || !strings.Contains(warnings[1], ".vscode/extensions.json") {
		t.Errorf("warnings = %v", warnings)
	}
}
