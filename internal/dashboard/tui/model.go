// Package tui is the read-only terminal dashboard.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/autopeer-io/smartpark/internal/dashboard/view"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

// stateMsg delivers a new DisplayState through the bubbletea message loop.
type stateMsg struct {
	state parkingv1alpha1.DisplayState
}

// Model renders the dashboard. The only input it handles is quitting.
type Model struct {
	topic string
	theme view.Theme
	feed  <-chan parkingv1alpha1.DisplayState

	state parkingv1alpha1.DisplayState
	width int
}

// NewModel creates a Model showing initial until feed delivers updates.
func NewModel(topic string, theme view.Theme, initial parkingv1alpha1.DisplayState, feed <-chan parkingv1alpha1.DisplayState) Model {
	return Model{topic: topic, theme: theme, feed: feed, state: initial}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return listenForState(m.feed)
}

// listenForState returns a tea.Cmd that blocks until a state arrives on
// the feed, then delivers it as a stateMsg.
func listenForState(feed <-chan parkingv1alpha1.DisplayState) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-feed
		if !ok {
			return nil
		}
		return stateMsg{state: st}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case stateMsg:
		m.state = msg.state
		return m, listenForState(m.feed)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	page := view.Build(m.state, m.topic)
	help := lipgloss.NewStyle().Foreground(m.theme.FaintText).Render("q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, view.RenderText(page, m.theme, m.width), help)
}
