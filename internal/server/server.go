// Package server exposes the stock history REST API consumed by the web client.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/stockhistory/internal/app"
	"github.com/bobmcallan/stockhistory/internal/common"
)

const (
	readTimeout = 30 * time.Second
	idleTimeout = 60 * time.Second

	// responseSlack is added on top of the reconcile deadline so that
	// POST daily-query-update can still write its count after a full pass.
	responseSlack = 30 * time.Second
)

// Server serves the /api/stocks routes for one App.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}
}

// NewServer builds the route table and middleware stack for a.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	reconcileTimeout := a.Config.Reconcile.GetTimeout()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      applyMiddleware(mux, a.Logger),
		ReadTimeout:  readTimeout,
		WriteTimeout: reconcileTimeout + responseSlack,
		IdleTimeout:  idleTimeout,
	}

	return s
}

// SetShutdownChannel registers the channel signalled by POST /api/shutdown.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Dur("write_timeout", s.server.WriteTimeout).
		Msg("Stock history API listening")
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones, including
// an on-demand reconciliation pass, until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
