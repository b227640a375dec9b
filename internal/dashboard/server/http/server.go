package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/smartpark/internal/dashboard/view"
	"github.com/autopeer-io/smartpark/internal/pkg/metrics"
	parkingv1alpha1 "github.com/autopeer-io/smartpark/pkg/apis/parking/v1alpha1"
	"github.com/autopeer-io/smartpark/pkg/log"
	"github.com/autopeer-io/smartpark/pkg/options"
)

// StateSource is the read side of the display state store.
type StateSource interface {
	State() parkingv1alpha1.DisplayState
}

// PhaseFunc reports the connection phase. It may be nil.
type PhaseFunc func() parkingv1alpha1.ConnectionPhase

type Server struct {
	server  *http.Server
	options *options.HttpOptions

	src   StateSource
	phase PhaseFunc
	topic string
}

// stateResponse is the JSON form of the display state.
type stateResponse struct {
	Connected  bool                               `json:"connected"`
	Phase      parkingv1alpha1.ConnectionPhase    `json:"phase,omitempty"`
	Topic      string                             `json:"topic"`
	LastUpdate *time.Time                         `json:"lastUpdate,omitempty"`
	Current    *parkingv1alpha1.OccupancySnapshot `json:"current,omitempty"`
	History    []parkingv1alpha1.HistoryEntry     `json:"history"`
}

func NewServer(opts *options.HttpOptions, src StateSource, topic string, phase PhaseFunc) *Server {
	s := &Server{
		options: opts,
		src:     src,
		phase:   phase,
		topic:   topic,
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(logRequests)

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Readiness follows the broker session.
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/state", s.handleState).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)

	return r
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.src.State().Connected {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("broker not connected"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.src.State()

	resp := stateResponse{
		Connected: st.Connected,
		Topic:     s.topic,
		Current:   st.Current,
		History:   st.History,
	}
	if s.phase != nil {
		resp.Phase = s.phase()
	}
	if st.HasLastUpdate() {
		resp.LastUpdate = &st.LastUpdate
	}
	if resp.History == nil {
		resp.History = []parkingv1alpha1.HistoryEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error(err, "Failed to encode state response")
	}
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	page := view.Build(s.src.State(), s.topic)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.RenderHTML(w, page, view.DefaultRefreshSeconds); err != nil {
		log.Error(err, "Failed to render dashboard page")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("Handled HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
