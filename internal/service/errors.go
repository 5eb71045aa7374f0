package service

import (
	"errors"
	"fmt"
)

var (
	ErrCallNotFound         = errors.New("call not found")
	ErrMissingCallID        = errors.New("missing call_id in webhook payload")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrInvalidPagination    = errors.New("invalid pagination parameters")
	ErrAnalysisBlocked      = errors.New("call cannot be analyzed")
	ErrAnalysisInProgress   = errors.New("analysis already in progress")
	ErrAnalysisNotAvailable = errors.New("analysis not available for this call")
	ErrNoRecording          = errors.New("no recording URL available for this call")
	ErrNotReady             = errors.New("analysis not ready")
	ErrInferenceDisabled    = errors.New("inference backend is not configured")
)

// BlockedError carries the reason a call was refused analysis.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return e.Reason
}

func (e *BlockedError) Unwrap() error {
	return ErrAnalysisBlocked
}

// AnalysisError is a failure reported by the inference backend or a job.
type AnalysisError struct {
	StatusCode int
	Message    string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%d): %s", e.StatusCode, e.Message)
}
