package e2e_test

import (
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauern/wsprofile/internal/e2e"
)

// requests encodes one JSON request per line.
func requests(t *testing.T, reqs ...map[string]any) string {
	t.Helper()
	var b strings.Builder
	for _, r := range reqs {
		data, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String()
}

func TestVersionCommand(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("version")

	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "wsprofile version")
}

// TestSessionLifecycle drives a save, apply, scaffold, delete and marketplace
// request through one session and checks the event stream.
func TestSessionLifecycle(t *testing.T) {
	h := e2e.NewHarness(t)
	ws := h.WorkspaceFixture("service")
	ws.WriteSettings(`{
  // existing
  "files.autoSave": "onFocusChange",
}`)
	dest := filepath.Join(h.HomeDir(), "workspaces", "scaffolded")

	input := requests(t,
		map[string]any{
			"command": "saveUserProfile",
			"profileData": map[string]any{
				"id":                    "",
				"name":                  "Team Go",
				"recommendedExtensions": []map[string]any{{"id": "golang.go", "name": "Go"}},
				"keySettingsSnippet":    []map[string]any{{"key": "editor.formatOnSave", "value": true}},
			},
			"isEditingExisting": false,
		},
		map[string]any{"command": "applyConfiguration", "profileId": "team-go", "workspaceRoot": ws.Root()},
		map[string]any{"command": "createWorkspace", "profileId": "web-frontend", "destination": dest},
		map[string]any{"command": "deleteUserProfile", "profileId": "team-go"},
		map[string]any{"command": "openMarketplacePage", "extensionId": "golang.go"},
	)

	result := h.RunWithStdin(input, "session")
	e2e.AssertSuccess(t, result)

	events := e2e.Events(t, result)
	e2e.AssertEventSequence(t, events,
		"notification", "profilesLoaded", "profileSavedOrDeleted", "profileActionCompleted",
		"notification", "applyCompleted",
		"notification", "workspaceCreated",
		"notification", "profilesLoaded", "profileSavedOrDeleted", "profileActionCompleted",
		"openExternal",
	)

	if got := events[3]["id"]; got != "team-go" {
		t.Errorf("expected saved id team-go, got %v", got)
	}
	if got := events[12]["url"]; got != "https://marketplace.visualstudio.com/items?itemName=golang.go" {
		t.Errorf("unexpected marketplace URL %v", got)
	}

	settings := ws.Settings()
	if settings["files.autoSave"] != "onFocusChange" || settings["editor.formatOnSave"] != true {
		t.Errorf("unexpected settings after apply: %v", settings)
	}
	if recs := ws.Recommendations(); !slices.Equal(recs, []string{"golang.go"}) {
		t.Errorf("unexpected recommendations: %v", recs)
	}

	scaffold := e2e.NewFixture(t, dest)
	for _, rel := range []string{".vscode/settings.json", ".vscode/extensions.json", ".eslintrc.json", ".prettierrc.json"} {
		if !scaffold.Exists(rel) {
			t.Errorf("expected scaffolded %s", rel)
		}
	}

	list := h.Run("list", "--user")
	e2e.AssertSuccess(t, list)
	e2e.AssertOutputContains(t, list, "No profiles found.")
}

func TestSessionRejectsBadInput(t *testing.T) {
	h := e2e.NewHarness(t)
	missing := filepath.Join(h.HomeDir(), "nowhere")

	input := "not json\n" + requests(t,
		map[string]any{"command": "launchRockets"},
		map[string]any{"command": "applyConfiguration", "profileId": "general-safe", "workspaceRoot": missing},
		map[string]any{"command": "saveUserProfile", "profileData": map[string]any{"id": "general-safe", "name": "Shadow"}},
		map[string]any{"command": "deleteUserProfile", "profileId": "general-safe"},
		map[string]any{"command": "getProfiles"},
	)

	result := h.RunWithStdin(input, "session")
	e2e.AssertSuccess(t, result)

	events := e2e.Events(t, result)
	e2e.AssertEventSequence(t, events,
		"notification",
		"notification",
		"notification",
		"notification", "profileSaveFailed",
		"notification", "profilesLoaded",
		"profilesLoaded",
	)

	for i := 0; i < 3; i++ {
		if events[i]["level"] != "error" {
			t.Errorf("event %d: expected error notification, got %v", i, events[i])
		}
	}
	if text, _ := events[2]["text"].(string); !strings.Contains(text, "No workspace folder is open") {
		t.Errorf("expected no-workspace message, got %q", text)
	}
	if events[5]["level"] != "warning" {
		t.Errorf("expected built-in delete to warn, got %v", events[5])
	}

	builtIns, _ := events[7]["builtInProfiles"].([]any)
	if len(builtIns) != 4 {
		t.Errorf("expected 4 built-in profiles, got %d", len(builtIns))
	}
}

// TestApplyAndRestore applies a profile over existing settings and puts the
// original file back from its backup.
func TestApplyAndRestore(t *testing.T) {
	h := e2e.NewHarness(t)
	ws := h.WorkspaceFixture("app")
	original := "{\n  \"editor.formatOnSave\": false\n}\n"
	settingsPath := ws.WriteSettings(original)
	ws.WriteExtensions(`{"recommendations": ["zzz.last", "dbaeumer.vscode-eslint"]}`)

	result := h.Run("apply", "--workspace", ws.Root(), "web-frontend")
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "2 file(s) backed up")

	if ws.Settings()["editor.formatOnSave"] != true {
		t.Error("expected profile setting to replace the existing value")
	}
	want := []string{"dbaeumer.vscode-eslint", "esbenp.prettier-vscode", "vue.volar", "zzz.last"}
	if recs := ws.Recommendations(); !slices.Equal(recs, want) {
		t.Errorf("recommendations = %v, want %v", recs, want)
	}

	list := h.Run("backups", "list", "--workspace", ws.Root(), "--format", "json")
	e2e.AssertSuccess(t, list)
	var backups []struct {
		ID         string `json:"id"`
		SourcePath string `json:"source_path"`
		ProfileID  string `json:"profile_id"`
	}
	if err := json.Unmarshal([]byte(list.Stdout), &backups); err != nil {
		t.Fatalf("invalid backups JSON: %v\n%s", err, list.Stdout)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}

	var settingsBackup string
	for _, b := range backups {
		if b.ProfileID != "web-frontend" {
			t.Errorf("backup %s: expected profile web-frontend, got %q", b.ID, b.ProfileID)
		}
		if b.SourcePath == settingsPath {
			settingsBackup = b.ID
		}
	}
	if settingsBackup == "" {
		t.Fatalf("no backup of %s in %+v", settingsPath, backups)
	}

	e2e.AssertSuccess(t, h.Run("backups", "verify", settingsBackup))
	e2e.AssertSuccess(t, h.Run("backups", "restore", settingsBackup))
	e2e.AssertFileEquals(t, settingsPath, original)

	cleanup := h.Run("backups", "cleanup", "--dry-run")
	e2e.AssertSuccess(t, cleanup)
	e2e.AssertOutputContains(t, cleanup, "Would remove 0 backup(s)")
}

func TestApplyWithoutWorkspace(t *testing.T) {
	h := e2e.NewHarness(t)

	result := h.Run("apply", "--workspace", filepath.Join(h.HomeDir(), "missing"), "general-safe")

	e2e.AssertError(t, result)
	e2e.AssertExitCode(t, result, 1)
	e2e.AssertErrorContains(t, result, "no workspace folder is open")
}

func TestScaffoldReplacesSettings(t *testing.T) {
	h := e2e.NewHarness(t)
	ws := h.WorkspaceFixture("taken")
	ws.WriteSettings(`{"keep": true}`)

	result := h.Run("new", "general-safe", ws.Root())
	e2e.AssertSuccess(t, result)

	settings := ws.Settings()
	if _, ok := settings["keep"]; ok {
		t.Errorf("expected scaffolded settings to hold only profile keys, got %v", settings)
	}
	if settings["editor.wordWrap"] != "on" {
		t.Errorf("expected editor.wordWrap=on, got %v", settings["editor.wordWrap"])
	}
	want := []string{"gruntfuggly.todo-tree", "streetsidesoftware.code-spell-checker"}
	if recs := ws.Recommendations(); !slices.Equal(recs, want) {
		t.Errorf("recommendations = %v, want %v", recs, want)
	}
}

// TestSQLiteStatePersists saves through one invocation and reads the profile
// back through a session in another.
func TestSQLiteStatePersists(t *testing.T) {
	h := e2e.NewHarness(t)
	h.SetEnv("WSPROFILE_STATE_BACKEND", "sqlite")
	h.SetEnv("WSPROFILE_STATE_PATH", filepath.Join(h.HomeDir(), "state", "wsprofile.db"))

	e2e.AssertSuccess(t, h.Run("save", "--name", "Data Science", "--ext", "ms-toolsai.jupyter"))
	e2e.AssertFileNotExists(t, filepath.Join(h.HomeDir(), "state", "profiles.json"))

	result := h.RunWithStdin(requests(t, map[string]any{"command": "getProfiles"}), "session")
	e2e.AssertSuccess(t, result)

	events := e2e.Events(t, result)
	e2e.AssertEventSequence(t, events, "profilesLoaded")

	users, _ := events[0]["userProfiles"].([]any)
	if len(users) != 1 {
		t.Fatalf("expected 1 user profile, got %v", users)
	}
	user, _ := users[0].(map[string]any)
	if user["id"] != "data-science" || user["isUserDefined"] != true {
		t.Errorf("unexpected user profile %v", user)
	}
}

func TestExportImportAcrossHomes(t *testing.T) {
	src := e2e.NewHarness(t)
	e2e.AssertSuccess(t, src.Run("save", "--name", "Shared", "--set", "editor.rulers=[80,120]"))

	out := src.TempFixture().Path("shared.toml")
	e2e.AssertSuccess(t, src.Run("export", "--user-only", "--output", out))
	e2e.AssertFileExists(t, out)

	dst := e2e.NewHarness(t)
	result := dst.Run("import", out)
	e2e.AssertSuccess(t, result)
	e2e.AssertOutputContains(t, result, "Imported 1 of 1 profile(s)")

	show := dst.Run("show", "--format", "json", "shared")
	e2e.AssertSuccess(t, show)
	e2e.AssertOutputContains(t, show, `"editor.rulers"`)
	e2e.AssertOutputNotContains(t, show, "isUserDefined")
}
