package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	scandex "github.com/populse/scandex"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse documents with a live filter expression",
	Long: `Browse opens an interactive terminal session: type a filter
expression and press Enter to list the matching document ids.`,
	Run: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	db := openDatabase(ctx)
	defer db.Close()

	m := newBrowseModel(ctx, db)
	p := tea.NewProgram(&m)
	if _, err := p.Run(); err != nil {
		fatalf("browse: %v", err)
	}
}

var (
	browseColorPrimary = lipgloss.Color("#7D56F4")
	browseColorSuccess = lipgloss.Color("#04B575")
	browseColorError   = lipgloss.Color("#FF4672")
	browseColorSubtle  = lipgloss.Color("#777777")

	browseHeaderStyle = lipgloss.NewStyle().Foreground(browseColorPrimary).Bold(true)
	browseBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(browseColorPrimary).Padding(1, 2)
	browseMatchStyle  = lipgloss.NewStyle().Foreground(browseColorSuccess)
	browseErrorStyle  = lipgloss.NewStyle().Foreground(browseColorError)
	browseStatusStyle = lipgloss.NewStyle().Foreground(browseColorSubtle).Italic(true).MarginTop(1)
)

type browseModel struct {
	ctx     context.Context
	db      *scandex.Database
	input   textinput.Model
	matches []string
	errMsg  string
}

func newBrowseModel(ctx context.Context, db *scandex.Database) browseModel {
	input := textinput.New()
	input.Placeholder = `format == "NIFTI"`
	input.Prompt = "filter> "
	input.Focus()
	input.Width = 60
	return browseModel{ctx: ctx, db: db, input: input}
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.runFilter()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *browseModel) runFilter() {
	expr := strings.TrimSpace(m.input.Value())
	if expr == "" {
		m.matches, m.errMsg = nil, ""
		return
	}
	ids, err := m.db.FilterDocuments(m.ctx, expr)
	if err != nil {
		m.matches, m.errMsg = nil, err.Error()
		return
	}
	m.matches, m.errMsg = ids, ""
}

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(browseHeaderStyle.Render("scandex browse"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString(browseErrorStyle.Render("✗ " + m.errMsg))
	case len(m.matches) == 0:
		b.WriteString(browseStatusStyle.Render("(no matches yet -- type a filter and press Enter)"))
	default:
		for _, id := range m.matches {
			b.WriteString(browseMatchStyle.Render("  " + id))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("\n%d document(s) matched", len(m.matches)))
	}

	b.WriteString("\n\n")
	b.WriteString(browseStatusStyle.Render("Enter: run filter  •  Esc/Ctrl-C: quit"))
	return browseBorderStyle.Render(b.String())
}
