package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"callmood/internal/service"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, callID string, err error) {
	var blocked *service.BlockedError
	var analysisErr *service.AnalysisError
	switch {
	case errors.Is(err, service.ErrCallNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Call %s not found", callID))
	case errors.As(err, &blocked):
		writeError(w, http.StatusBadRequest, blocked.Reason)
	case errors.Is(err, service.ErrAnalysisNotAvailable):
		writeError(w, http.StatusNotFound, "Analysis not available for this call")
	case errors.Is(err, service.ErrAnalysisInProgress):
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"success": true,
			"call_id": callID,
			"status":  "processing",
			"message": "Analysis is still in progress. Please check again in a few moments.",
		})
	case errors.As(err, &analysisErr):
		writeJSON(w, analysisErr.StatusCode, map[string]interface{}{
			"success":       false,
			"call_id":       callID,
			"status":        "error",
			"error":         analysisErr.Message,
			"error_message": analysisErr.Message,
		})
	case errors.Is(err, service.ErrInferenceDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.WithError(err).WithField("call_id", callID).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
