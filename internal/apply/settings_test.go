package apply

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/klauern/wsprofile/internal/util"
)

func TestCheckSetting(t *testing.T) {
	tests := map[string]struct {
		key     string
		value   any
		wantErr bool
	}{
		"plain key":                    {key: "editor.tabSize", value: 2},
		"object value":                 {key: "files.exclude", value: map[string]any{"**/.git": true}},
		"language override":            {key: "[python]", value: map[string]any{"editor.tabSize": 4}},
		"multi language override":      {key: "[javascript][typescript]", value: map[string]any{}},
		"nil value":                    {key: "editor.rulers", value: nil},
		"empty key":                    {key: "", value: true, wantErr: true},
		"blank key":                    {key: "   ", value: true, wantErr: true},
		"key with space":               {key: "editor. tabSize", value: 2, wantErr: true},
		"language override not object": {key: "[go]", value: "gofmt", wantErr: true},
		"unencodable value":            {key: "x.y", value: math.Inf(1), wantErr: true},
		"channel value":                {key: "x.z", value: make(chan int), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := CheckSetting(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSetting() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidSetting) {
				t.Errorf("error %v does not wrap ErrInvalidSetting", err)
			}
		})
	}
}

func TestFileSettingsWriter_PreservesExistingJSONC(t *testing.T) {
	root := t.TempDir()
	util.WriteFile(t, util.SettingsFile(root), `{
	// keep me
	"editor.fontSize":              13,
	"files.trimTrailingWhitespace": false,
}`)

	w := NewFileSettingsWriter(root, "")
	ctx := context.Background()
	util.AssertNoError(t, w.Update(ctx, "files.trimTrailingWhitespace", true))
	util.AssertNoError(t, w.Update(ctx, "[go]", map[string]any{"editor.formatOnSave": true}))

	doc := util.ReadJSONFile(t, w.Path())
	if doc["editor.fontSize"] != float64(13) {
		t.Errorf("existing key lost: %v", doc["editor.fontSize"])
	}
	if doc["files.trimTrailingWhitespace"] != true {
		t.Errorf("key not overwritten: %v", doc["files.trimTrailingWhitespace"])
	}
	if _, ok := doc["[go]"].(map[string]any); !ok {
		t.Errorf("language override not written: %v", doc["[go]"])
	}
}

func TestFileSettingsWriter_CreatesFile(t *testing.T) {
	root := t.TempDir()
	w := NewFileSettingsWriter(root, "  ")
	util.AssertNoError(t, w.Update(context.Background(), "editor.tabSize", 2))

	util.AssertEqual(t, w.Path(), filepath.Join(root, ".vscode", "settings.json"))
	doc := util.ReadJSONFile(t, w.Path())
	util.AssertEqual(t, doc["editor.tabSize"], any(float64(2)))
}

func TestFileSettingsWriter_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unparseable settings", func(t *testing.T) {
		root := t.TempDir()
		util.WriteFile(t, util.SettingsFile(root), "{ not json")
		if err := NewFileSettingsWriter(root, "").Update(ctx, "a.b", 1); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := NewFileSettingsWriter(t.TempDir(), "").Update(canceled, "a.b", 1)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})

	t.Run("invalid key is not written", func(t *testing.T) {
		root := t.TempDir()
		w := NewFileSettingsWriter(root, "")
		if err := w.Update(ctx, "bad key", 1); !errors.Is(err, ErrInvalidSetting) {
			t.Fatalf("error = %v", err)
		}
		if util.FileExists(w.Path()) {
			t.Error("settings.json should not be created for a rejected key")
		}
	})
}
