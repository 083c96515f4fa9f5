package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/stockhistory/internal/common"
)

const stocksPrefix = "/api/stocks/"

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Stocks
	mux.HandleFunc(stocksPrefix+"todays-quote/", s.handleTodaysQuote)
	mux.HandleFunc(stocksPrefix+"tracked-stocks", s.handleTrackedStocks)
	mux.HandleFunc(stocksPrefix+"stock-history/", s.handleStockHistory)
	mux.HandleFunc(stocksPrefix+"history-chart/", s.handleHistoryChart)
	mux.HandleFunc(stocksPrefix+"daily-query-update", s.handleDailyQueryUpdate)
	mux.HandleFunc(stocksPrefix+"reconcile-status", s.handleReconcileStatus)
	mux.HandleFunc(stocksPrefix+"search-stocks/", s.handleSearchStocks)
	mux.HandleFunc(stocksPrefix+"add-new-symbol/", s.handleAddSymbol)
	mux.HandleFunc(stocksPrefix+"stop-tracking-stock/", s.handleStopTracking)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
