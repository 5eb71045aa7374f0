package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"callmood/internal/emotion"
	"callmood/internal/model"
	"callmood/internal/service"
)

// CallLister reads and refreshes registered calls
type CallLister interface {
	List(ctx context.Context, page, perPage int) (*model.CallPage, error)
	Refresh(ctx context.Context, callID string) (*service.RefreshResult, error)
}

// Analyzer runs and reads emotion analyses
type Analyzer interface {
	Trigger(ctx context.Context, callID string, force bool) (*service.TriggerResult, error)
	Get(ctx context.Context, callID string) (*model.AnalysisResponse, error)
	Dashboard(ctx context.Context, callID string, opts emotion.Options) (*emotion.Dashboard, error)
	AnalyzeUpload(ctx context.Context, filename string, audio io.Reader) (*service.UploadResult, error)
}

// CallHandler handles call listing and analysis endpoints
type CallHandler struct {
	calls    CallLister
	analyzer Analyzer
	log      *logrus.Entry
}

// NewCallHandler creates a new call handler
func NewCallHandler(calls CallLister, analyzer Analyzer, logger *logrus.Logger) *CallHandler {
	return &CallHandler{
		calls:    calls,
		analyzer: analyzer,
		log:      logger.WithField("component", "calls"),
	}
}

// List handles GET /v1/calls
func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1)
	if err != nil || page < 1 {
		writeError(w, http.StatusBadRequest, "page must be an integer >= 1")
		return
	}
	perPage, err := intParam(r, "per_page", service.DefaultPerPage)
	if err != nil || perPage < 1 || perPage > service.MaxPerPage {
		writeError(w, http.StatusBadRequest, "per_page must be an integer between 1 and 100")
		return
	}

	result, err := h.calls.List(r.Context(), page, perPage)
	if err != nil {
		writeServiceError(w, h.log, "", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Refresh handles POST /v1/calls/refresh
func (h *CallHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.calls.Refresh(r.Context(), r.URL.Query().Get("call_id"))
	if err != nil {
		writeServiceError(w, h.log, "", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Analyze handles POST /v1/calls/{callId}/analyze
func (h *CallHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["callId"]
	force, err := boolParam(r, "force")
	if err != nil {
		writeError(w, http.StatusBadRequest, "force must be a boolean")
		return
	}

	result, err := h.analyzer.Trigger(r.Context(), callID, force)
	if err != nil {
		writeServiceError(w, h.log, callID, err)
		return
	}
	status := http.StatusOK
	if result.Status == model.StatusProcessing && result.Note != "" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

// Analysis handles GET /v1/calls/{callId}/analysis
func (h *CallHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["callId"]
	resp, err := h.analyzer.Get(r.Context(), callID)
	if err != nil {
		writeServiceError(w, h.log, callID, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Dashboard handles GET /v1/calls/{callId}/dashboard
func (h *CallHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	callID := mux.Vars(r)["callId"]
	ignoreBursts, err := boolParam(r, "ignore_bursts")
	if err != nil {
		writeError(w, http.StatusBadRequest, "ignore_bursts must be a boolean")
		return
	}

	dashboard, err := h.analyzer.Dashboard(r.Context(), callID, emotion.Options{IgnoreBursts: ignoreBursts})
	if err != nil {
		writeServiceError(w, h.log, callID, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}
