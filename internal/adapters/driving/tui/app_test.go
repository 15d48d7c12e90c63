package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeyobrien/forge-search/internal/core/domain"
)

// mockSearchService is a canned driving.SearchService for TUI tests.
type mockSearchService struct {
	response  *domain.SearchResponse
	err       error
	lastQuery domain.SearchQuery
}

func (m *mockSearchService) Search(
	_ context.Context,
	query domain.SearchQuery,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.SearchResponse{}, nil
}

func (m *mockSearchService) UpdateDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) RemoveDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockSearchService) Stats() domain.IndexStats {
	return domain.IndexStats{}
}

func newTestPorts() *Ports {
	return &Ports{Search: &mockSearchService{}}
}

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{Path: "projects/a.md", Title: "Alpha", RelevanceScore: 90, Snippet: "the **alpha** doc"},
		{Path: "areas/b.md", Title: "Beta", RelevanceScore: 70, Tags: []string{"beta"}},
		{Path: "resources/c.md", Title: "Gamma", RelevanceScore: 50},
	}
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.True(t, app.focusInput)
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Equal(t, app, result)
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.ready)
	assert.Equal(t, 100, app.width)
}

func TestApp_EnterRunsSearch(t *testing.T) {
	mock := &mockSearchService{
		response: &domain.SearchResponse{Results: testResults(), TotalCount: 3},
	}
	app, _ := NewApp(&Ports{Search: mock})
	app.input.SetValue("alpha")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, app.searching)

	// Run the command and feed the resulting message back in.
	msg := cmd()
	completed, ok := msg.(searchCompleted)
	require.True(t, ok)
	app.Update(completed)

	assert.Equal(t, "alpha", mock.lastQuery.Text)
	assert.True(t, mock.lastQuery.IncludeSnippets)
	assert.False(t, app.searching)
	assert.False(t, app.focusInput)
	assert.Len(t, app.results, 3)
	assert.Equal(t, 0, app.cursor)
}

func TestApp_EnterWithEmptyQueryDoesNothing(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.input.SetValue("   ")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, app.searching)
}

func TestApp_SearchErrorIsShown(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.ready = true

	app.Update(searchCompleted{err: errors.New("index unavailable")})

	assert.False(t, app.searching)
	require.Error(t, app.err)
	assert.Contains(t, app.View(), "index unavailable")
}

func TestApp_CursorNavigation(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.Update(searchCompleted{resp: &domain.SearchResponse{Results: testResults(), TotalCount: 3}})

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, app.cursor)

	// Clamped at the end.
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, app.cursor)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, app.cursor)

	// Arrow keys work too.
	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, app.cursor)
	app.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, app.cursor)
}

func TestApp_SelectedResult(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	assert.Nil(t, app.SelectedResult())

	app.Update(searchCompleted{resp: &domain.SearchResponse{Results: testResults(), TotalCount: 3}})
	app.Update(tea.KeyMsg{Type: tea.KeyDown})

	selected := app.SelectedResult()
	require.NotNil(t, selected)
	assert.Equal(t, "Beta", selected.Title)
}

func TestApp_NewSearchRefocusesInput(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.input.SetValue("old query")
	app.Update(searchCompleted{resp: &domain.SearchResponse{Results: testResults(), TotalCount: 3}})
	require.False(t, app.focusInput)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})

	assert.True(t, app.focusInput)
	assert.Empty(t, app.input.Value())
}

func TestApp_QuitKeys(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	// Ctrl+C quits from anywhere.
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	// q quits from the result list.
	app.Update(searchCompleted{resp: &domain.SearchResponse{Results: testResults(), TotalCount: 3}})
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ViewRendersResults(t *testing.T) {
	app, _ := NewApp(newTestPorts())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	app.Update(searchCompleted{resp: &domain.SearchResponse{Results: testResults(), TotalCount: 3}})

	view := app.View()

	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "projects/a.md")
	assert.Contains(t, view, "3/3 results")
}

func TestApp_ViewBeforeReady(t *testing.T) {
	app, _ := NewApp(newTestPorts())

	assert.Contains(t, app.View(), "Initialising")
}
