package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autopeer-io/smartpark/internal/dashboard/view"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

const testTopic = "smartparking/status"

func TestModelQuitKeys(t *testing.T) {
	m := NewModel(testTopic, view.DefaultTheme, parkingv1alpha1.DisplayState{}, nil)

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("key %q produced no command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("key %q did not quit", key.String())
		}
	}
}

func TestModelIgnoresOtherKeys(t *testing.T) {
	m := NewModel(testTopic, view.DefaultTheme, parkingv1alpha1.DisplayState{}, nil)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}); cmd != nil {
		t.Fatal("unexpected command for unbound key")
	}
}

func TestModelRendersStateUpdates(t *testing.T) {
	feed := make(chan parkingv1alpha1.DisplayState, 1)
	m := NewModel(testTopic, view.DefaultTheme, parkingv1alpha1.DisplayState{}, feed)

	if out := m.View(); !strings.Contains(out, view.ConnectingText) {
		t.Fatalf("initial view missing %q", view.ConnectingText)
	}

	feed <- parkingv1alpha1.DisplayState{Connected: true}
	msg := m.Init()()
	if _, ok := msg.(stateMsg); !ok {
		t.Fatalf("Init command returned %T, want stateMsg", msg)
	}

	updated, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("model stopped listening for state updates")
	}
	if out := updated.View(); !strings.Contains(out, view.WaitingText) {
		t.Fatalf("updated view missing %q", view.WaitingText)
	}
}

func TestFeedKeepsLatest(t *testing.T) {
	f := newFeed()
	f.push(parkingv1alpha1.DisplayState{Connected: false})
	f.push(parkingv1alpha1.DisplayState{Connected: true})

	if st := <-f.ch; !st.Connected {
		t.Fatal("feed delivered a stale state")
	}
	select {
	case <-f.ch:
		t.Fatal("feed buffered more than one state")
	default:
	}
}
