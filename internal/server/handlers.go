package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alphaflow-lab/alphaflow/internal/backtest"
	"github.com/alphaflow-lab/alphaflow/internal/datasource"
	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/internal/version"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

type loadDataResponse struct {
	SessionID string   `json:"session_id"`
	Bars      int      `json:"bars"`
	Columns   []string `json:"columns"`
}

type getDataResponse struct {
	SessionID string      `json:"session_id"`
	Bars      []types.Bar `json:"bars"`
	Columns   []string    `json:"columns"`
}

type backtestRequest struct {
	SessionID string                   `json:"session_id"`
	Strategy  backtest.StrategyRequest `json:"strategy"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleLoadData handles POST /load-data. It accepts a multipart form with a
// "file" field holding an OHLCV CSV and returns a session id for it.
func (s *Server) handleLoadData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeMalformedRequest, "missing file upload", err))

		return
	}
	defer file.Close()

	series, err := datasource.LoadCSV(file)
	if err != nil {
		s.writeError(w, err)

		return
	}

	id := s.sessions.Put(series)
	s.log.Info("data loaded",
		zap.String("session_id", id),
		zap.Int("bars", series.Len()),
	)

	s.writeJSON(w, http.StatusOK, loadDataResponse{
		SessionID: id,
		Bars:      series.Len(),
		Columns:   series.ColumnNames(),
	})
}

// handleGetData handles GET /get-data/{session_id}.
func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["session_id"]

	series, err := s.sessions.Get(id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, getDataResponse{
		SessionID: id,
		Bars:      series.Bars(),
		Columns:   series.ColumnNames(),
	})
}

// handleBacktest handles POST /backtest. The body names a session and the
// strategy to run against its series.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var request backtestRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&request); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeMalformedRequest, "malformed backtest request", err))

		return
	}

	if request.SessionID == "" {
		s.writeError(w, errors.New(errors.ErrCodeMalformedRequest, "session_id is required"))

		return
	}

	series, err := s.sessions.Get(request.SessionID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	result, err := s.engine.Run(series, request.Strategy)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.log.Info("backtest finished",
		zap.String("session_id", request.SessionID),
		zap.Int("total_trades", result.Summary.TotalTrades),
		zap.Float64("final_balance", result.Summary.FinalBalance),
	)

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	s.writeJSON(w, httpStatus(code), errorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

// httpStatus maps error codes onto HTTP status codes. Anything not
// recognized is a server fault.
func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeMalformedRequest,
		errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidExecutionParams,
		errors.ErrCodeMissingColumn,
		errors.ErrCodeNonIncreasingTimestamp,
		errors.ErrCodeColumnLengthMismatch,
		errors.ErrCodeSeriesParseFailed,
		errors.ErrCodeIndicatorNotFound,
		errors.ErrCodeInvalidIndicatorParams,
		errors.ErrCodeExpressionSyntax,
		errors.ErrCodeUnknownColumn,
		errors.ErrCodeUnknownCondition,
		errors.ErrCodeSignalAlignment:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
