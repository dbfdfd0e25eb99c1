package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/klauern/wsprofile/internal/model"
)

// PickerAction represents what the user chose to do with the selected profile.
type PickerAction int

const (
	// PickerActionNone means no profile was chosen (user quit).
	PickerActionNone PickerAction = iota
	// PickerActionSelect means the user picked a profile.
	PickerActionSelect
)

// ProfilePickerResult contains the result of the profile picker interaction.
type ProfilePickerResult struct {
	Action  PickerAction
	Profile model.WorkspaceProfile
}

type profilePickerKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	View     key.Binding
	Filter   key.Binding
	ClearFlt key.Binding
	Help     key.Binding
	Quit     key.Binding
	Back     key.Binding
}

func defaultProfilePickerKeyMap() profilePickerKeyMap {
	return profilePickerKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "view details"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "back"),
		),
	}
}

type pickerPhase int

const (
	pickerPhaseList pickerPhase = iota
	pickerPhaseDetail
)

// ProfilePickerModel is the BubbleTea model for choosing a workspace profile.
type ProfilePickerModel struct {
	table         table.Model
	profiles      []model.WorkspaceProfile
	filtered      []model.WorkspaceProfile
	keys          profilePickerKeyMap
	result        ProfilePickerResult
	title         string
	filter        string
	filtering     bool
	showHelp      bool
	width         int
	height        int
	quitting      bool
	columnWidths  pickerColumnWidths
	phase         pickerPhase
	viewport      viewport.Model
	ready         bool
	detailProfile model.WorkspaceProfile
}

var pickerStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Status      lipgloss.Style
	DetailBox   lipgloss.Style
	DetailTitle lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	DetailBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	DetailTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
}

const (
	pickerNameWidth     = 28
	pickerKindWidth     = 10
	pickerCountWidth    = 5
	pickerDescWidth     = 40
	pickerColumnPadding = 2
	pickerColumnCount   = 5
	pickerDetailLines   = 3
	pickerDetailGap     = 1
	pickerDetailHeight  = pickerDetailLines + 1 + 2 // title + content + border
)

type pickerColumnWidths struct {
	name int
	kind int
	desc int
}

func pickerColumns(totalWidth int, profiles []model.WorkspaceProfile) ([]table.Column, pickerColumnWidths) {
	widths := pickerColumnWidths{
		name: pickerNameWidth,
		kind: pickerKindWidth,
		desc: pickerDescWidth,
	}

	if totalWidth > 0 {
		baseTotal := widths.name + widths.kind + 2*pickerCountWidth + widths.desc +
			(pickerColumnPadding * pickerColumnCount)
		extra := totalWidth - baseTotal
		if extra > 0 {
			maxName := widths.name
			for _, p := range profiles {
				maxName = max(maxName, runewidth.StringWidth(p.Name))
			}
			if needed := maxName - widths.name; needed > 0 {
				nameExtra := min(needed, extra)
				widths.name += nameExtra
				extra -= nameExtra
			}
			widths.desc += extra
		}
	}

	columns := []table.Column{
		{Title: "Name", Width: widths.name},
		{Title: "Kind", Width: widths.kind},
		{Title: "Ext", Width: pickerCountWidth},
		{Title: "Set", Width: pickerCountWidth},
		{Title: "Description", Width: widths.desc},
	}
	return columns, widths
}

// NewProfilePickerModel creates a picker over built-in and user profiles.
// Built-ins are listed first, each group in the order given.
func NewProfilePickerModel(builtIns, users []model.WorkspaceProfile) ProfilePickerModel {
	profiles := make([]model.WorkspaceProfile, 0, len(builtIns)+len(users))
	profiles = append(profiles, builtIns...)
	profiles = append(profiles, users...)

	columns, widths := pickerColumns(0, profiles)

	m := ProfilePickerModel{
		profiles:     profiles,
		filtered:     profiles,
		keys:         defaultProfilePickerKeyMap(),
		title:        "Select a Workspace Profile",
		columnWidths: widths,
		phase:        pickerPhaseList,
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(m.profilesToRows(profiles)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	t.SetStyles(tableStyles("57"))
	m.table = t
	return m
}

// WithTitle sets the picker heading.
func (m ProfilePickerModel) WithTitle(title string) ProfilePickerModel {
	m.title = title
	return m
}

func (m ProfilePickerModel) profilesToRows(profiles []model.WorkspaceProfile) []table.Row {
	rows := make([]table.Row, len(profiles))
	for i, p := range profiles {
		rows[i] = table.Row{
			truncateText(p.Name, m.columnWidths.name),
			truncateText(titleCase(p.DisplayKind()), m.columnWidths.kind),
			fmt.Sprintf("%d", len(p.ExtensionIDs())),
			fmt.Sprintf("%d", len(p.KeySettingsSnippet)),
			truncateText(p.Description, m.columnWidths.desc),
		}
	}
	return rows
}

func (m *ProfilePickerModel) updateColumns(totalWidth int) {
	columns, widths := pickerColumns(totalWidth, m.profiles)
	m.columnWidths = widths
	m.table.SetColumns(columns)
}

// Init implements tea.Model.
func (m ProfilePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProfilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.phase == pickerPhaseDetail {
		return m.updateDetail(msg)
	}
	return m.updateList(msg)
}

func (m ProfilePickerModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-8-pickerDetailHeight-pickerDetailGap, 5))
		m.updateColumns(msg.Width)
		m.table.SetRows(m.profilesToRows(m.filtered))

	case tea.KeyMsg:
		if m.filtering {
			next, still, changed := filterInput(m.filter, msg.String())
			m.filter = next
			m.filtering = still
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

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if len(m.filtered) > 0 {
				m.result = ProfilePickerResult{
					Action:  PickerActionSelect,
					Profile: m.currentProfile(),
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.View):
			if len(m.filtered) > 0 {
				m.detailProfile = m.currentProfile()
				m.phase = pickerPhaseDetail
				m.ready = false
				m.ensureDetailViewport()
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ProfilePickerModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureDetailViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			m.result = ProfilePickerResult{
				Action:  PickerActionSelect,
				Profile: m.detailProfile,
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.phase = pickerPhaseList
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ProfilePickerModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.profiles
	} else {
		lowerFilter := strings.ToLower(m.filter)
		var filtered []model.WorkspaceProfile
		for _, p := range m.profiles {
			if strings.Contains(strings.ToLower(p.ID), lowerFilter) ||
				strings.Contains(strings.ToLower(p.Name), lowerFilter) ||
				strings.Contains(strings.ToLower(p.Description), lowerFilter) ||
				slices.ContainsFunc(p.ExtensionIDs(), func(id string) bool {
					return strings.Contains(strings.ToLower(id), lowerFilter)
				}) {
				filtered = append(filtered, p)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.profilesToRows(m.filtered))
	m.table.GotoTop()
}

func (m ProfilePickerModel) currentProfile() model.WorkspaceProfile {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor]
	}
	return model.WorkspaceProfile{}
}

func (m ProfilePickerModel) detailPanelWidth() int {
	if m.width > 0 {
		return m.width
	}
	return m.columnWidths.name + m.columnWidths.kind + 2*pickerCountWidth + m.columnWidths.desc +
		(pickerColumnPadding * pickerColumnCount)
}

func (m ProfilePickerModel) renderDetailPanel() string {
	width := m.detailPanelWidth()
	contentWidth := max(width-4, 10)

	description := strings.TrimSpace(m.currentProfile().Description)
	if description == "" {
		description = "No description available."
	}

	lines := padLines(wrapText(description, contentWidth, pickerDetailLines), pickerDetailLines)
	header := pickerStyles.DetailTitle.Render("Description (selected)")
	content := append([]string{header}, lines...)

	return pickerStyles.DetailBox.Width(width).Render(strings.Join(content, "\n"))
}

// View implements tea.Model.
func (m ProfilePickerModel) View() string {
	if m.quitting {
		return ""
	}
	if m.phase == pickerPhaseDetail {
		return m.viewDetail()
	}

	var b strings.Builder

	b.WriteString(pickerStyles.Title.Render(m.title))
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterVal := pickerStyles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(pickerStyles.Filter.Render("Filter: ") + filterVal + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.renderDetailPanel())
	b.WriteString("\n")

	status := fmt.Sprintf("%d profile(s)", len(m.filtered))
	if m.filter != "" {
		status = fmt.Sprintf("%d of %d profile(s) (filtered)", len(m.filtered), len(m.profiles))
	}
	b.WriteString(pickerStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}
	return b.String()
}

func (m ProfilePickerModel) viewDetail() string {
	m.ensureDetailViewport()
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(pickerStyles.Title.Render("Profile: " + m.detailProfile.Name))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	status := fmt.Sprintf("Scroll: %d%% • Enter to select • b or Esc to go back", int(m.viewport.ScrollPercent()*100))
	b.WriteString(pickerStyles.Status.Render(status))
	b.WriteString("\n")

	keys := []string{"↑/↓ scroll", "enter select", "b back", "q quit"}
	b.WriteString(pickerStyles.Help.Render(strings.Join(keys, " • ")))
	return b.String()
}

func (m *ProfilePickerModel) ensureDetailViewport() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	viewportHeight := max(m.height-8, 5)
	if !m.ready {
		m.viewport = viewport.New(m.width-2, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = viewportHeight
	}
	m.viewport.SetContent(m.buildDetailContent(m.viewport.Width))
}

func (m ProfilePickerModel) buildDetailContent(width int) string {
	p := m.detailProfile
	if p.ID == "" {
		return "No profile selected."
	}

	var b strings.Builder
	indent := "  "

	b.WriteString(pickerStyles.DetailTitle.Render("Profile"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%sID: %s\n", indent, p.ID)
	fmt.Fprintf(&b, "%sName: %s\n", indent, p.Name)
	fmt.Fprintf(&b, "%sKind: %s\n", indent, titleCase(p.DisplayKind()))
	if desc := strings.TrimSpace(p.Description); desc != "" {
		b.WriteString(lipgloss.NewStyle().Width(max(width, 10)).Render(indent + desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerStyles.DetailTitle.Render(fmt.Sprintf("Recommended Extensions (%d)", len(p.RecommendedExtensions))))
	b.WriteString("\n")
	for _, ext := range p.RecommendedExtensions {
		if ext.Name != "" {
			fmt.Fprintf(&b, "%s%s (%s)\n", indent, ext.ID, ext.Name)
		} else {
			fmt.Fprintf(&b, "%s%s\n", indent, ext.ID)
		}
	}

	b.WriteString("\n")
	b.WriteString(pickerStyles.DetailTitle.Render(fmt.Sprintf("Key Settings (%d)", len(p.KeySettingsSnippet))))
	b.WriteString("\n")
	for _, s := range p.KeySettingsSnippet {
		fmt.Fprintf(&b, "%s%s = %s\n", indent, s.Key, truncateText(fmt.Sprintf("%v", s.Value), max(width-len(s.Key)-5, 10)))
		if s.Description != "" {
			fmt.Fprintf(&b, "%s%s%s\n", indent, indent, s.Description)
		}
	}

	if len(p.Files) > 0 {
		b.WriteString("\n")
		b.WriteString(pickerStyles.DetailTitle.Render(fmt.Sprintf("Files (%d)", len(p.Files))))
		b.WriteString("\n")
		for _, f := range p.Files {
			fmt.Fprintf(&b, "%s%s\n", indent, f.Path)
		}
	}
	return b.String()
}

func (m ProfilePickerModel) renderShortHelp() string {
	keys := []string{
		"↑/↓ navigate",
		"enter select",
		"v details",
		"/ filter",
		"? help",
		"q quit",
	}
	return pickerStyles.Help.Render(strings.Join(keys, " • "))
}

func (m ProfilePickerModel) renderFullHelp() string {
	help := `Navigation:
  ↑/k      Move up
  ↓/j      Move down
  g/Home   Go to top
  G/End    Go to bottom

Actions:
  Enter    Select profile
  v        View profile details

Filter:
  /        Start filtering (by id, name, description, or extension)
  Esc      Clear filter
  Enter    Finish filtering

General:
  ?        Toggle full help
  q        Quit without selecting`
	return pickerStyles.Help.Render(help)
}

// Result returns the result of the user interaction.
func (m ProfilePickerModel) Result() ProfilePickerResult {
	return m.result
}

// RunProfilePicker runs the interactive picker under title and returns the
// chosen profile.
func RunProfilePicker(title string, builtIns, users []model.WorkspaceProfile) (ProfilePickerResult, error) {
	if len(builtIns)+len(users) == 0 {
		return ProfilePickerResult{}, nil
	}

	finalModel, err := Run(NewProfilePickerModel(builtIns, users).WithTitle(title))
	if err != nil {
		return ProfilePickerResult{}, err
	}
	if m, ok := finalModel.(ProfilePickerModel); ok {
		return m.Result(), nil
	}
	return ProfilePickerResult{}, nil
}
