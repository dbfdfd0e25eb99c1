package tui

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/klauern/wsprofile/internal/backup"
)

// BackupAction represents the action to perform on a selected backup.
type BackupAction int

const (
	// ActionNone means no action was taken (user quit).
	ActionNone BackupAction = iota
	// ActionRestore means the user wants to restore the selected backup.
	ActionRestore
	// ActionDelete means the user wants to delete the selected backup.
	ActionDelete
	// ActionVerify means the user wants to verify the selected backup.
	ActionVerify
)

// BackupListResult contains the result of the backup list TUI interaction.
type BackupListResult struct {
	Action   BackupAction
	BackupID string
	Backup   backup.Metadata
}

type backupListKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Restore key.Binding
	Delete  key.Binding
	Verify  key.Binding
	Scope   key.Binding
	Filter  key.Binding
	Clear   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultBackupListKeyMap() backupListKeyMap {
	return backupListKeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Restore: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restore")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Verify:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "verify")),
		Scope:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "this workspace")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k backupListKeyMap) short() []key.Binding {
	return []key.Binding{k.Restore, k.Delete, k.Verify, k.Scope, k.Filter, k.Help, k.Quit}
}

// BackupListModel browses backups of workspace settings files. Backups are
// grouped by workspace and listed newest first within each workspace.
type BackupListModel struct {
	table    table.Model
	backups  []backup.Metadata
	filtered []backup.Metadata
	keys     backupListKeyMap
	result   BackupListResult

	filter    string
	filtering bool
	// scope restricts the list to one workspace root when set.
	scope string

	showHelp    bool
	confirmMode bool
	confirmMsg  string
	quitting    bool
}

var backupListStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Confirm     lipgloss.Style
	Status      lipgloss.Style
	Detail      lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Confirm:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true).Padding(1, 2),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	Detail:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
}

const (
	workspaceColWidth = 18
	fileColWidth      = 30
	profileColWidth   = 22
)

// NewBackupListModel creates a new backup list model.
func NewBackupListModel(backups []backup.Metadata) BackupListModel {
	ordered := slices.Clone(backups)
	slices.SortStableFunc(ordered, func(a, b backup.Metadata) int {
		if c := cmp.Compare(workspaceLabel(a), workspaceLabel(b)); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Workspace", Width: workspaceColWidth},
			{Title: "File", Width: fileColWidth},
			{Title: "Profile", Width: profileColWidth},
			{Title: "Created", Width: 16},
			{Title: "Size", Width: 9},
		}),
		table.WithRows(backupsToRows(ordered)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles("57"))

	return BackupListModel{
		table:    t,
		backups:  ordered,
		filtered: ordered,
		keys:     defaultBackupListKeyMap(),
	}
}

// workspaceLabel is the folder name of the backup's workspace.
func workspaceLabel(b backup.Metadata) string {
	if b.Workspace == "" {
		return "-"
	}
	return filepath.Base(b.Workspace)
}

// backupFile is the backed-up file relative to its workspace, or the
// absolute source path when it lies outside it.
func backupFile(b backup.Metadata) string {
	if b.Workspace != "" {
		if rel, err := filepath.Rel(b.Workspace, b.SourcePath); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return b.SourcePath
}

func backupsToRows(backups []backup.Metadata) []table.Row {
	rows := make([]table.Row, len(backups))
	for i, b := range backups {
		file := backupFile(b)
		if len(file) > fileColWidth {
			file = "..." + file[len(file)-(fileColWidth-3):]
		}
		profile := b.ProfileID
		if profile == "" {
			profile = "-"
		}
		rows[i] = table.Row{
			truncateText(workspaceLabel(b), workspaceColWidth),
			file,
			truncateText(profile, profileColWidth),
			b.CreatedAt.Format("2006-01-02 15:04"),
			formatSize(b.Size),
		}
	}
	return rows
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// Init implements tea.Model.
func (m BackupListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BackupListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))

	case tea.KeyMsg:
		if m.confirmMode {
			return m.updateConfirm(msg)
		}
		if m.filtering {
			next, still, changed := filterInput(m.filter, msg.String())
			m.filter, m.filtering = next, still
			if changed {
				m.applyFilter()
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.filter, m.scope = "", ""
			m.applyFilter()
			return m, nil
		case key.Matches(msg, m.keys.Scope):
			m.toggleScope()
			return m, nil
		case key.Matches(msg, m.keys.Restore):
			return m.choose(ActionRestore), nil
		case key.Matches(msg, m.keys.Delete):
			return m.choose(ActionDelete), nil
		case key.Matches(msg, m.keys.Verify):
			m = m.choose(ActionVerify)
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BackupListModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.quitting = true
		return m, tea.Quit
	case "n", "N", "esc":
		m.confirmMode = false
		m.confirmMsg = ""
		m.result = BackupListResult{}
	}
	return m, nil
}

// choose records action for the selected backup. Restore and delete ask
// for confirmation first; verify is read-only and quits straight away.
func (m BackupListModel) choose(action BackupAction) BackupListModel {
	selected, ok := m.selected()
	if !ok {
		return m
	}
	m.result = BackupListResult{Action: action, BackupID: selected.ID, Backup: selected}

	switch action {
	case ActionRestore:
		m.confirmMode = true
		m.confirmMsg = fmt.Sprintf("Restore %s in %s from backup %s? (y/n)",
			backupFile(selected), workspaceLabel(selected), selected.ID)
	case ActionDelete:
		m.confirmMode = true
		m.confirmMsg = fmt.Sprintf("Delete backup %s of %s? (y/n)", selected.ID, backupFile(selected))
	default:
		m.quitting = true
	}
	return m
}

func (m *BackupListModel) toggleScope() {
	if m.scope != "" {
		m.scope = ""
	} else if selected, ok := m.selected(); ok && selected.Workspace != "" {
		m.scope = selected.Workspace
	}
	m.applyFilter()
}

func (m *BackupListModel) applyFilter() {
	needle := strings.ToLower(m.filter)
	var filtered []backup.Metadata
	for _, b := range m.backups {
		if m.scope != "" && b.Workspace != m.scope {
			continue
		}
		if needle != "" && !matchesBackup(b, needle) {
			continue
		}
		filtered = append(filtered, b)
	}
	m.filtered = filtered
	m.table.SetRows(backupsToRows(m.filtered))
	m.table.SetCursor(0)
}

func matchesBackup(b backup.Metadata, needle string) bool {
	for _, field := range []string{b.ID, b.ProfileID, b.Workspace, b.SourcePath, b.Description} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (m BackupListModel) selected() (backup.Metadata, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return backup.Metadata{}, false
	}
	return m.filtered[cursor], true
}

// View implements tea.Model.
func (m BackupListModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "Workspace Settings Backups"
	if m.scope != "" {
		title += " · " + filepath.Base(m.scope)
	}
	b.WriteString(backupListStyles.Title.Render(title))
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		val := backupListStyles.FilterInput.Render(m.filter)
		if m.filtering {
			val += "█"
		}
		b.WriteString(backupListStyles.Filter.Render("Filter: ") + val + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	if m.confirmMode {
		b.WriteString("\n")
		b.WriteString(backupListStyles.Confirm.Render(m.confirmMsg))
		return b.String()
	}

	if d := m.detailLine(); d != "" {
		b.WriteString(backupListStyles.Detail.Render(d))
		b.WriteString("\n")
	}

	status := fmt.Sprintf("%d backup(s)", len(m.filtered))
	if len(m.filtered) != len(m.backups) {
		status = fmt.Sprintf("%d of %d backup(s)", len(m.filtered), len(m.backups))
	}
	b.WriteString(backupListStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(backupListStyles.Help.Render(backupListFullHelp))
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

// detailLine describes the selected backup: its id, where it came from and
// why it was taken.
func (m BackupListModel) detailLine() string {
	selected, ok := m.selected()
	if !ok {
		return ""
	}
	parts := []string{selected.ID, selected.SourcePath}
	if selected.Description != "" {
		parts = append(parts, selected.Description)
	}
	if len(selected.Hash) >= 12 {
		parts = append(parts, "sha256 "+selected.Hash[:12])
	}
	return strings.Join(parts, " · ")
}

func (m BackupListModel) renderShortHelp() string {
	var keys []string
	for _, binding := range m.keys.short() {
		h := binding.Help()
		keys = append(keys, h.Key+" "+h.Desc)
	}
	return backupListStyles.Help.Render(strings.Join(keys, " • "))
}

const backupListFullHelp = `Navigation:
  ↑/k ↓/j  Move between backups
  g/G      Jump to first or last

Actions:
  r        Restore selected backup over its workspace file
  d        Delete selected backup
  v        Verify selected backup against its recorded hash

Narrowing:
  w        Show only the selected backup's workspace (again to show all)
  /        Filter by id, profile, workspace, file or description
  Esc      Clear filter and workspace

General:
  ?        Toggle full help
  q        Quit`

// Result returns the result of the user interaction.
func (m BackupListModel) Result() BackupListResult {
	return m.result
}

// RunBackupList runs the interactive backup list and returns the result.
func RunBackupList(backups []backup.Metadata) (BackupListResult, error) {
	if len(backups) == 0 {
		return BackupListResult{}, nil
	}

	finalModel, err := Run(NewBackupListModel(backups))
	if err != nil {
		return BackupListResult{}, err
	}

	if m, ok := finalModel.(BackupListModel); ok {
		return m.Result(), nil
	}

	return BackupListResult{}, nil
}
