package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"callmood/internal/service"
)

const maxWebhookBody = 10 << 20

// CallRegistrar registers calls from platform webhooks
type CallRegistrar interface {
	RegisterFromWebhook(ctx context.Context, raw []byte) (*service.WebhookResult, error)
}

// WebhookHandler handles voice agent platform webhooks
type WebhookHandler struct {
	calls CallRegistrar
	log   *logrus.Entry
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(calls CallRegistrar, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{calls: calls, log: logger.WithField("component", "webhook")}
}

// Retell handles POST /v1/webhooks/retell
func (h *WebhookHandler) Retell(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.calls.RegisterFromWebhook(r.Context(), raw)
	switch {
	case errors.Is(err, service.ErrMissingCallID):
		writeError(w, http.StatusBadRequest, "Missing call_id in Retell payload")
		return
	case errors.Is(err, service.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.WithError(err).Error("Failed to record call metadata")
		writeError(w, http.StatusInternalServerError, "Failed to record call metadata")
		return
	}

	if res.Ignored {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "ignored": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"message":       "Call registered",
		"call_id":       res.Call.CallID,
		"call_metadata": res.Call,
	})
}
