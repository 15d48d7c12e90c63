// Package tui provides the interactive terminal interface for
// forge-search: a query input, a navigable result list and a snippet
// preview for the selected result.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// searchLimit caps how many results one interactive search fetches.
const searchLimit = 50

// searchCompleted carries the outcome of an asynchronous search.
type searchCompleted struct {
	resp *domain.SearchResponse
	err  error
}

// App is the bubbletea model for the search interface.
type App struct {
	styles *Styles
	ports  *Ports
	ctx    context.Context

	input   textinput.Model
	results []domain.SearchResult
	total   int
	cursor  int
	err     error

	width      int
	height     int
	ready      bool
	focusInput bool
	searching  bool
}

// NewApp creates the TUI application model.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = "Search your vault..."
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Focus()

	return &App{
		styles:     DefaultStyles(),
		ports:      ports,
		ctx:        context.Background(),
		input:      ti,
		width:      80,
		height:     24,
		focusInput: true,
	}, nil
}

// WithContext sets the context used for searches.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init initialises the model.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = msg.Width - 6
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case searchCompleted:
		a.searching = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.results = msg.resp.Results
		a.total = msg.resp.TotalCount
		a.cursor = 0
		a.focusInput = false
		a.input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKey processes keyboard input.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.focusInput {
		switch msg.Type {
		case tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			query := strings.TrimSpace(a.input.Value())
			if query == "" {
				return a, nil
			}
			a.searching = true
			return a, a.performSearch(query)
		default:
		}

		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode.
	switch msg.Type {
	case tea.KeyEsc:
		a.focusInput = true
		a.input.Focus()
		return a, textinput.Blink
	case tea.KeyUp:
		a.moveCursor(-1)
		return a, nil
	case tea.KeyDown:
		a.moveCursor(1)
		return a, nil
	default:
	}

	switch msg.String() {
	case "k":
		a.moveCursor(-1)
	case "j":
		a.moveCursor(1)
	case "n", "/":
		a.focusInput = true
		a.input.Focus()
		a.input.SetValue("")
		return a, textinput.Blink
	case "q":
		return a, tea.Quit
	}

	return a, nil
}

// moveCursor shifts the selection, clamped to the result list.
func (a *App) moveCursor(delta int) {
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= len(a.results) {
		a.cursor = len(a.results) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// performSearch runs the search off the update loop.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := a.ports.Search.Search(a.ctx, domain.SearchQuery{
			Text:            query,
			Operator:        domain.OperatorAnd,
			Limit:           searchLimit,
			IncludeSnippets: true,
		})
		return searchCompleted{resp: resp, err: err}
	}
}

// SelectedResult returns the currently highlighted result, if any.
func (a *App) SelectedResult() *domain.SearchResult {
	if a.cursor < 0 || a.cursor >= len(a.results) {
		return nil
	}
	return &a.results[a.cursor]
}

// View renders the interface.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := []string{
		a.styles.Title.Render("forge-search"),
		"",
		a.styles.InputField.Render(a.input.View()),
		"",
	}

	if a.err != nil {
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()), "")
	}

	sections = append(sections, a.renderResults())
	sections = append(sections, "", a.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderResults renders the scrollable result list with the selected
// result's snippet inline.
func (a *App) renderResults() string {
	if a.searching {
		return a.styles.Muted.Render("Searching...")
	}
	if len(a.results) == 0 {
		return a.styles.Muted.Render("No results.")
	}

	// Three lines per visible result plus chrome above and below.
	visible := (a.height - 10) / 3
	if visible < 1 {
		visible = 1
	}
	start := 0
	if a.cursor >= visible {
		start = a.cursor - visible + 1
	}
	end := start + visible
	if end > len(a.results) {
		end = len(a.results)
	}

	lines := make([]string, 0, (end-start)*3)
	for i := start; i < end; i++ {
		result := a.results[i]

		title := result.Title
		if title == "" {
			title = result.Path
		}
		score := a.styles.Score.Render(fmt.Sprintf("(%.1f)", result.RelevanceScore))
		line := fmt.Sprintf("  %s %s", title, score)
		if i == a.cursor {
			line = a.styles.Selected.Render("> "+title) + " " + score
		}
		lines = append(lines, line)

		meta := result.Path
		if len(result.Tags) > 0 {
			meta += "  #" + strings.Join(result.Tags, " #")
		}
		lines = append(lines, a.styles.Muted.Render("    "+meta))

		if i == a.cursor && result.Snippet != "" {
			lines = append(lines, a.styles.Normal.Render("    "+result.Snippet))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// renderStatus renders the bottom status line.
func (a *App) renderStatus() string {
	var status string
	switch {
	case a.focusInput:
		status = "enter: search • esc: quit"
	default:
		status = fmt.Sprintf("%d/%d results • j/k: navigate • n: new search • q: quit",
			len(a.results), a.total)
	}
	return a.styles.Muted.Render(status)
}
