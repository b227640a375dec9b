package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/autopeer-io/smartpark/internal/dashboard/store"
	"github.com/autopeer-io/smartpark/internal/dashboard/view"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
)

// ErrQuit is returned by Run when the user closed the dashboard.
var ErrQuit = errors.New("dashboard closed by user")

// StateSource is the part of the store the terminal UI reads.
type StateSource interface {
	State() parkingv1alpha1.DisplayState
	Subscribe(store.Listener)
}

// Options configures Run.
type Options struct {
	Topic  string
	Theme  view.Theme
	Input  io.Reader
	Output io.Writer

	// AltScreen takes over the whole terminal while running.
	AltScreen bool
}

// Run shows the dashboard until ctx is canceled or the user quits.
func Run(ctx context.Context, src StateSource, opts Options) error {
	feed := newFeed()
	src.Subscribe(feed.push)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(NewModel(opts.Topic, opts.Theme, src.State(), feed.ch), programOpts...)

	_, err := p.Run()
	switch {
	case ctx.Err() != nil:
		return nil
	case err != nil:
		return fmt.Errorf("terminal ui failed: %w", err)
	default:
		return ErrQuit
	}
}

// feed hands the newest state to the program. Older undelivered states
// are replaced since only the latest one is drawn.
type feed struct {
	ch chan parkingv1alpha1.DisplayState
}

func newFeed() *feed {
	return &feed{ch: make(chan parkingv1alpha1.DisplayState, 1)}
}

func (f *feed) push(st parkingv1alpha1.DisplayState) {
	for {
		select {
		case f.ch <- st:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}
