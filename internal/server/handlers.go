package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/stockhistory/internal/models"
)

func symbolParam(r *http.Request, route string) string {
	return strings.TrimSpace(PathParam(r, stocksPrefix+route+"/", ""))
}

// handleTodaysQuote handles GET /api/stocks/todays-quote/{symbol}.
func (s *Server) handleTodaysQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := symbolParam(r, "todays-quote")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote := s.app.QueryService.GetCurrentQuote(r.Context(), symbol)
	if quote == nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No quote found for '%s'", symbol))
		return
	}
	WriteJSON(w, http.StatusOK, quote)
}

// handleTrackedStocks handles GET /api/stocks/tracked-stocks[?all=true].
func (s *Server) handleTrackedStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbols, err := s.app.TrackerService.TrackedSymbols(r.Context(), !QueryBool(r, "all"))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list tracked stocks")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(symbols) == 0 {
		WriteError(w, http.StatusNotFound, "No stocks are being tracked")
		return
	}
	WriteJSON(w, http.StatusOK, symbols)
}

// handleStockHistory handles GET /api/stocks/stock-history/{symbol}.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := symbolParam(r, "stock-history")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	history := s.app.QueryService.GetHistory(r.Context(), symbol)
	if history == nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No history found for '%s'", symbol))
		return
	}
	WriteJSON(w, http.StatusOK, history)
}

// handleHistoryChart handles GET /api/stocks/history-chart/{symbol}.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := symbolParam(r, "history-chart")

	png, err := s.app.QueryService.RenderHistoryChart(r.Context(), symbol)
	switch {
	case errors.Is(err, models.ErrEmptySymbol):
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Not enough history to chart '%s'", symbol))
		return
	case err != nil:
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("Failed to render history chart")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleDailyQueryUpdate handles POST /api/stocks/daily-query-update.
func (s *Server) handleDailyQueryUpdate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	report, err := s.app.RunReconcile(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("On-demand reconciliation failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	count := report.Updated
	WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("%d Daily stock queries initiated and completed successfully.", count),
		Count:   &count,
	})
}

// handleReconcileStatus handles GET /api/stocks/reconcile-status.
func (s *Server) handleReconcileStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report := s.app.ReconcileService.LastReport()
	if report == nil {
		WriteError(w, http.StatusNotFound, "No reconciliation pass has run yet")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleSearchStocks handles GET /api/stocks/search-stocks/{query}.
func (s *Server) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	query := symbolParam(r, "search-stocks")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	res := s.app.QueryService.SearchSymbols(r.Context(), query)
	if res == nil || len(res.Result) == 0 {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No symbols match '%s'", query))
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// handleAddSymbol handles POST /api/stocks/add-new-symbol/{symbol}.
func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	text := symbolParam(r, "add-new-symbol")
	if text == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	symbol, err := s.app.TrackerService.AddSymbol(r.Context(), text)
	if err != nil {
		s.logger.Error().Str("input", text).Err(err).Msg("Failed to add symbol")
		s.writeTrackingError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("The symbol '%s' was successfully added.", symbol),
		Symbol:  symbol,
	})
}

// handleStopTracking handles POST /api/stocks/stop-tracking-stock/{symbol}.
func (s *Server) handleStopTracking(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	symbol := symbolParam(r, "stop-tracking-stock")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	if err := s.app.TrackerService.RemoveSymbol(r.Context(), symbol); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("Failed to stop tracking symbol")
		s.writeTrackingError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("The symbol '%s' is no longer being tracked.", symbol),
		Symbol:  symbol,
	})
}

// writeTrackingError maps add/stop failures to 500 with a machine-readable code.
func (s *Server) writeTrackingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAlreadyTracked):
		WriteErrorWithCode(w, http.StatusInternalServerError, "Symbol is already tracked", "already_tracked")
	case errors.Is(err, models.ErrNotFound):
		WriteErrorWithCode(w, http.StatusInternalServerError, "Symbol not found", "not_found")
	default:
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
