// Package dashboard owns one dashboard session: the broker connection, the
// display state and every renderer reading from it.
package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/smartpark/internal/dashboard/connection"
	httpserver "github.com/autopeer-io/smartpark/internal/dashboard/server/http"
	"github.com/autopeer-io/smartpark/internal/dashboard/store"
	"github.com/autopeer-io/smartpark/internal/dashboard/tui"
	"github.com/autopeer-io/smartpark/internal/dashboard/view"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
	"github.com/autopeer-io/smartpark/pkg/log"
)

// Session is passed by reference to whatever presents it; there is no
// package level state.
type Session struct {
	clientID string
	topic    string
	ui       UIConfig

	store      *store.Store
	manager    *connection.Manager
	httpServer *httpserver.Server
}

// ClientID is the broker client identifier used for this session.
func (s *Session) ClientID() string { return s.clientID }

// State returns a copy of the current display state.
func (s *Session) State() parkingv1alpha1.DisplayState { return s.store.State() }

// Phase returns the connection phase.
func (s *Session) Phase() parkingv1alpha1.ConnectionPhase { return s.manager.Phase() }

// Subscribe registers a listener called after every state change.
func (s *Session) Subscribe(l store.Listener) { s.store.Subscribe(l) }

// Run blocks until ctx is canceled, a component fails, or the user quits the
// terminal dashboard. Teardown stops the retry timer and disconnects cleanly.
func (s *Session) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.manager.Run(ctx)
	})

	if s.httpServer != nil {
		g.Go(func() error {
			return s.httpServer.Start(ctx)
		})
	}

	if s.ui.Enabled {
		g.Go(func() error {
			return tui.Run(ctx, s.store, tui.Options{
				Topic:     s.topic,
				Theme:     view.DefaultTheme,
				AltScreen: s.ui.AltScreen,
			})
		})
	}

	log.Info("Dashboard session starting...")
	err := g.Wait()
	if errors.Is(err, tui.ErrQuit) {
		log.Info("Dashboard closed")
		return nil
	}
	return err
}
