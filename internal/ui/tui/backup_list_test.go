package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/klauern/wsprofile/internal/backup"
)

func sampleBackups() []backup.Metadata {
	return []backup.Metadata{
		{
			ID:         "20240101-120000-abc12345",
			ProfileID:  "python-backend-django",
			Workspace:  "/home/user/api",
			SourcePath: "/home/user/api/.vscode/settings.json",
			CreatedAt:  time.Now(),
			Size:       1024,
		},
		{
			ID:         "20240102-130000-def67890",
			ProfileID:  "web-frontend",
			Workspace:  "/home/user/site",
			SourcePath: "/home/user/site/.vscode/extensions.json",
			CreatedAt:  time.Now().Add(-24 * time.Hour),
			Size:       2048,
		},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBackupListModel(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	if len(m.backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(m.backups))
	}
	if len(m.filtered) != 2 {
		t.Errorf("expected 2 filtered backups, got %d", len(m.filtered))
	}
	if m.Init() != nil {
		t.Error("expected nil command from Init")
	}
	if m.Result().Action != ActionNone {
		t.Errorf("expected ActionNone, got %v", m.Result().Action)
	}
}

func TestBackupListModel_Filter(t *testing.T) {
	tests := map[string]struct {
		filter string
		want   int
	}{
		"by profile":   {filter: "django", want: 1},
		"by workspace": {filter: "/site", want: 1},
		"by source":    {filter: "settings.json", want: 1},
		"by id":        {filter: "20240102", want: 1},
		"no match":     {filter: "rust", want: 0},
		"cleared":      {filter: "", want: 2},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := NewBackupListModel(sampleBackups())
			m.filter = tt.filter
			m.applyFilter()
			if len(m.filtered) != tt.want {
				t.Errorf("filter %q: expected %d backups, got %d", tt.filter, tt.want, len(m.filtered))
			}
		})
	}
}

func TestBackupListModel_FilterKeys(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, _ := m.Update(runes("/"))
	m = next.(BackupListModel)
	for _, r := range "web" {
		next, _ = m.Update(runes(string(r)))
		m = next.(BackupListModel)
	}
	if m.filter != "web" || len(m.filtered) != 1 {
		t.Fatalf("expected filter 'web' with 1 match, got %q with %d", m.filter, len(m.filtered))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = next.(BackupListModel)
	if m.filter != "we" {
		t.Errorf("expected backspace to trim filter, got %q", m.filter)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(BackupListModel)
	if m.filtering || m.filter != "" || len(m.filtered) != 2 {
		t.Errorf("expected esc to clear filter, got filtering=%v filter=%q shown=%d", m.filtering, m.filter, len(m.filtered))
	}
}

func TestBackupListModel_EmptyBackups(t *testing.T) {
	m := NewBackupListModel([]backup.Metadata{})

	if view := m.View(); view == "" {
		t.Error("expected non-empty view")
	}
}

func TestBackupListModel_QuitKey(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, cmd := m.Update(runes("q"))
	if !next.(BackupListModel).quitting {
		t.Error("expected model to be quitting after pressing 'q'")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

func TestBackupListModel_HelpToggle(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, _ := m.Update(runes("?"))
	m = next.(BackupListModel)
	if !m.showHelp {
		t.Error("expected showHelp to be true after pressing '?'")
	}
	if !strings.Contains(m.View(), "Restore selected backup") {
		t.Error("expected full help in view")
	}

	next, _ = m.Update(runes("?"))
	if next.(BackupListModel).showHelp {
		t.Error("expected showHelp to be false after pressing '?' again")
	}
}

func TestBackupListModel_RestoreConfirm(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, _ := m.Update(runes("r"))
	m = next.(BackupListModel)
	if !m.confirmMode {
		t.Fatal("expected confirm mode after 'r'")
	}
	if !strings.Contains(m.View(), "Restore .vscode/settings.json in api from backup 20240101-120000-abc12345?") {
		t.Errorf("expected confirmation prompt, got %q", m.View())
	}

	next, cmd := m.Update(runes("y"))
	m = next.(BackupListModel)
	if cmd == nil {
		t.Error("expected quit command after confirming")
	}
	result := m.Result()
	if result.Action != ActionRestore || result.BackupID != "20240101-120000-abc12345" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestBackupListModel_ConfirmCanceled(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, _ := m.Update(runes("d"))
	next, _ = next.(BackupListModel).Update(runes("n"))
	m = next.(BackupListModel)

	if m.confirmMode || m.quitting {
		t.Errorf("expected cancel to return to the list, got confirm=%v quitting=%v", m.confirmMode, m.quitting)
	}
	if m.Result().Action != ActionNone {
		t.Errorf("expected canceled action to be dropped, got %+v", m.Result())
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{1073741824, "1.0 GB"},
	}

	for _, tc := range tests {
		if got := formatSize(tc.bytes); got != tc.expected {
			t.Errorf("formatSize(%d) = %s, expected %s", tc.bytes, got, tc.expected)
		}
	}
}

func TestBackupsToRows(t *testing.T) {
	backups := []backup.Metadata{
		{
			ID:         "test-id",
			ProfileID:  "web-frontend",
			Workspace:  "/home/user/site",
			SourcePath: "/home/user/site/.vscode/settings.json",
			CreatedAt:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Size:       2048,
		},
		{
			ID:         "loose",
			SourcePath: "/elsewhere/settings.json",
		},
	}

	rows := backupsToRows(backups)
	want := []string{"site", ".vscode/settings.json", "web-frontend", "2024-01-15 10:30", "2.0 KB"}
	for i, cell := range want {
		if rows[0][i] != cell {
			t.Errorf("column %d = %q, want %q", i, rows[0][i], cell)
		}
	}
	if rows[1][0] != "-" || rows[1][1] != "/elsewhere/settings.json" || rows[1][2] != "-" {
		t.Errorf("backup without workspace = %v", rows[1])
	}
}

func TestBackupsToRows_LongPath(t *testing.T) {
	longPath := "/home/user/projects/some/deeply/nested/workspace/folder/.vscode/settings.json"
	rows := backupsToRows([]backup.Metadata{{ID: "x", SourcePath: longPath}})

	file := rows[0][1]
	if len(file) > fileColWidth {
		t.Errorf("expected file to be truncated to %d chars, got %d chars", fileColWidth, len(file))
	}
	if !strings.HasPrefix(file, "...") || !strings.HasSuffix(file, "settings.json") {
		t.Errorf("expected left-truncated file, got %q", file)
	}
}

func TestNewBackupListModel_GroupsByWorkspace(t *testing.T) {
	now := time.Now()
	m := NewBackupListModel([]backup.Metadata{
		{ID: "site-old", Workspace: "/w/site", CreatedAt: now.Add(-time.Hour)},
		{ID: "api", Workspace: "/w/api", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "site-new", Workspace: "/w/site", CreatedAt: now},
	})

	var got []string
	for _, b := range m.filtered {
		got = append(got, b.ID)
	}
	if strings.Join(got, ",") != "api,site-new,site-old" {
		t.Errorf("order = %v", got)
	}
}

func TestBackupListModel_WorkspaceScope(t *testing.T) {
	backups := append(sampleBackups(), backup.Metadata{
		ID:         "20231231-090000-aaa00000",
		ProfileID:  "general-safe",
		Workspace:  "/home/user/api",
		SourcePath: "/home/user/api/.vscode/extensions.json",
		CreatedAt:  time.Now().Add(-48 * time.Hour),
	})
	m := NewBackupListModel(backups)

	next, _ := m.Update(runes("w"))
	m = next.(BackupListModel)
	if m.scope != "/home/user/api" || len(m.filtered) != 2 {
		t.Fatalf("expected 2 backups of /home/user/api, got scope %q with %d", m.scope, len(m.filtered))
	}
	if !strings.Contains(m.View(), "Workspace Settings Backups · api") {
		t.Error("expected scoped title")
	}
	if !strings.Contains(m.View(), "2 of 3 backup(s)") {
		t.Error("expected scoped status")
	}

	next, _ = m.Update(runes("w"))
	m = next.(BackupListModel)
	if m.scope != "" || len(m.filtered) != 3 {
		t.Errorf("expected second w to show all, got scope %q with %d", m.scope, len(m.filtered))
	}

	next, _ = m.Update(runes("w"))
	next, _ = next.(BackupListModel).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := next.(BackupListModel); got.scope != "" || len(got.filtered) != 3 {
		t.Errorf("expected esc to clear the workspace scope, got %q", got.scope)
	}
}

func TestBackupListModel_DetailLine(t *testing.T) {
	backups := sampleBackups()
	backups[0].Description = "before applying Django"
	backups[0].Hash = "0123456789abcdef0123"
	m := NewBackupListModel(backups)

	view := m.View()
	for _, want := range []string{
		"20240101-120000-abc12345",
		"/home/user/api/.vscode/settings.json",
		"before applying Django",
		"sha256 0123456789ab",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected detail %q in view", want)
		}
	}
}

func TestBackupListModel_VerifyQuits(t *testing.T) {
	m := NewBackupListModel(sampleBackups())

	next, cmd := m.Update(runes("v"))
	m = next.(BackupListModel)
	if cmd == nil || !m.quitting {
		t.Fatal("expected verify to quit without confirmation")
	}
	if r := m.Result(); r.Action != ActionVerify || r.Backup.Workspace != "/home/user/api" {
		t.Errorf("unexpected result: %+v", r)
	}
}
