package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"callmood/internal/cache"
	"callmood/internal/emotion"
	"callmood/internal/metrics"
	"callmood/internal/model"
	"callmood/internal/repository"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

// WebhookResult is what a webhook delivery did.
type WebhookResult struct {
	Ignored bool
	Event   string
	Call    *model.Call
}

// RefreshResult reports a constraint re-evaluation pass.
type RefreshResult struct {
	Success        bool              `json:"success"`
	RefreshedCount int               `json:"refreshed_count"`
	Errors         map[string]string `json:"errors"`
	Calls          []*model.Call     `json:"calls"`
}

// CallService handles call registration and listing
type CallService struct {
	calls         repository.CallRepo
	analyses      repository.AnalysisRepo
	dashboards    cache.DashboardCache
	metrics       *metrics.Metrics
	log           *logrus.Entry
	minDurationMS int64
}

// NewCallService creates a new call service
func NewCallService(
	calls repository.CallRepo,
	analyses repository.AnalysisRepo,
	dashboards cache.DashboardCache,
	m *metrics.Metrics,
	logger *logrus.Logger,
	minDurationMS int64,
) *CallService {
	return &CallService{
		calls:         calls,
		analyses:      analyses,
		dashboards:    dashboards,
		metrics:       m,
		log:           logger.WithField("component", "calls"),
		minDurationMS: minDurationMS,
	}
}

// RegisterFromWebhook registers the call carried by a webhook delivery. Events
// other than call_analyzed are acknowledged and ignored.
func (s *CallService) RegisterFromWebhook(ctx context.Context, raw []byte) (*WebhookResult, error) {
	event, payload, err := NormalizeWebhook(raw)
	if err != nil {
		s.metrics.Webhook("invalid")
		return nil, err
	}
	if event != EventCallAnalyzed || payload == nil {
		if event == EventCallAnalyzed {
			s.log.Warn("call_analyzed event without call data")
		} else {
			s.log.WithField("event", event).Info("Ignoring webhook event")
		}
		s.metrics.Webhook("ignored")
		return &WebhookResult{Ignored: true, Event: event}, nil
	}
	if payload.CallID == "" {
		s.metrics.Webhook("invalid")
		return nil, ErrMissingCallID
	}

	s.log.WithField("call_id", payload.CallID).Info("Received call_analyzed webhook")
	call, err := s.Register(ctx, payload)
	if err != nil {
		s.metrics.Webhook("error")
		return nil, fmt.Errorf("failed to record call metadata: %w", err)
	}
	s.metrics.Webhook("registered")
	return &WebhookResult{Event: event, Call: call}, nil
}

// Register creates or updates a call from platform data. A call known to
// have no audio is removed instead and reported as blocked.
func (s *CallService) Register(ctx context.Context, p *model.CallPayload) (*model.Call, error) {
	duration := CalculateDuration(p)
	if duration != nil && *duration <= 0 {
		s.log.WithField("call_id", p.CallID).Info("Skipping call with zero duration")
		if err := s.purge(ctx, p.CallID); err != nil {
			return nil, err
		}
		zero := int64(0)
		return &model.Call{
			CallID:              p.CallID,
			DurationMS:          &zero,
			AnalysisAllowed:     false,
			AnalysisBlockReason: reasonNoAudio,
			AnalysisStatus:      model.StatusBlocked,
		}, nil
	}

	existing, err := s.calls.Get(ctx, p.CallID)
	if err != nil {
		return nil, err
	}
	call := existing
	if call == nil {
		call = &model.Call{CallID: p.CallID, AnalysisStatus: model.StatusPending}
	}
	mergePayload(call, p, duration)

	return s.saveEligibility(ctx, call, EvaluateConstraints(p, s.minDurationMS), model.StatusBlocked, model.StatusError)
}

func mergePayload(call *model.Call, p *model.CallPayload, duration *int64) {
	call.AgentID = firstNonEmpty(p.AgentID, call.AgentID)
	call.AgentName = firstNonEmpty(p.AgentName, call.AgentName)
	call.UserPhoneNumber = firstNonEmpty(p.UserPhoneNumber, call.UserPhoneNumber)
	call.RecordingURL = firstNonEmpty(p.RecordingURL, call.RecordingURL)
	call.DisconnectionReason = firstNonEmpty(p.DisconnectionReason, p.EndReason, call.DisconnectionReason)
	call.Transcript = firstNonEmpty(p.Transcript, call.Transcript)
	if p.StartTimestamp != nil && *p.StartTimestamp != 0 {
		call.StartTimestamp = millis(*p.StartTimestamp)
	}
	if p.EndTimestamp != nil && *p.EndTimestamp != 0 {
		call.EndTimestamp = millis(*p.EndTimestamp)
	}
	if duration != nil {
		call.DurationMS = duration
	}
	if summary := extractSummary(p); summary != "" {
		call.CallSummary = summary
	}
	if p.TranscriptObject != nil {
		call.TranscriptObject = stripWords(p.TranscriptObject)
	}
	call.TranscriptAvailable = call.TranscriptObject != nil
}

func applyEligibility(call *model.Call, e Eligibility) {
	constraints := e.Constraints
	call.Constraints = &constraints
	call.AnalysisAllowed = e.Allowed
	call.AnalysisBlockReason = e.BlockReason
}

// idleStatuses are the states eligibility may move a call out of. Running
// and completed analyses are left to the analysis service.
var idleStatuses = []model.AnalysisStatus{model.StatusPending, model.StatusBlocked, model.StatusError}

// saveEligibility stores the call's details and eligibility without
// replacing analysis progress. An idle call becomes blocked when not
// allowed; an allowed call in one of reopen goes back to pending. The
// stored call is re-read so the result reflects concurrent jobs.
func (s *CallService) saveEligibility(ctx context.Context, call *model.Call, e Eligibility, reopen ...model.AnalysisStatus) (*model.Call, error) {
	applyEligibility(call, e)
	if err := s.calls.SaveDetails(ctx, call); err != nil {
		return nil, err
	}

	from, to := idleStatuses, model.StatusBlocked
	if e.Allowed {
		from, to = reopen, model.StatusPending
	}
	if len(from) > 0 {
		if _, err := s.calls.TransitionStatus(ctx, call.CallID, from, to); err != nil {
			return nil, err
		}
	}

	stored, err := s.calls.Get(ctx, call.CallID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("call %s not found", call.CallID)
	}
	return stored, nil
}

func (s *CallService) purge(ctx context.Context, callID string) error {
	if err := s.calls.Delete(ctx, callID); err != nil {
		return err
	}
	if err := s.analyses.Delete(ctx, callID); err != nil {
		return err
	}
	if err := s.dashboards.Invalidate(ctx, callID); err != nil {
		s.log.WithError(err).WithField("call_id", callID).Warn("Failed to drop cached dashboards")
	}
	return nil
}

// List returns one page of registered calls, newest first. Calls known to
// be silent are excluded; calls with an unknown duration are kept.
func (s *CallService) List(ctx context.Context, page, perPage int) (*model.CallPage, error) {
	if page < 1 || perPage < 1 || perPage > MaxPerPage {
		return nil, ErrInvalidPagination
	}

	calls, total, err := s.calls.List(ctx, int64((page-1)*perPage), int64(perPage))
	if err != nil {
		return nil, err
	}
	for _, call := range calls {
		s.fillOverallEmotion(ctx, call)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return &model.CallPage{
		Success: true,
		Calls:   calls,
		Pagination: model.Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// fillOverallEmotion backfills the headline emotion of completed calls
// that predate it being stored on the call.
func (s *CallService) fillOverallEmotion(ctx context.Context, call *model.Call) {
	if call.AnalysisStatus != model.StatusCompleted {
		return
	}
	if call.OverallEmotion != nil {
		if call.OverallEmotionLabel == "" {
			call.OverallEmotionLabel = call.OverallEmotion.Label
		}
		return
	}

	record, err := s.analyses.Get(ctx, call.CallID)
	if err != nil || record == nil {
		return
	}
	overall := overallForResponse(&record.Response)
	if overall == nil {
		return
	}
	call.OverallEmotion = overall
	call.OverallEmotionLabel = overall.Label
	if _, err := s.calls.UpdateStatus(ctx, call.CallID, repository.StatusUpdate{OverallEmotion: overall}); err != nil {
		s.log.WithError(err).WithField("call_id", call.CallID).Warn("Failed to cache overall emotion")
	}
}

// Refresh re-evaluates analysis eligibility of one call, or every call
// when callID is empty. Per-call failures are collected, not returned.
func (s *CallService) Refresh(ctx context.Context, callID string) (*RefreshResult, error) {
	var ids []string
	if callID != "" {
		ids = []string{callID}
	} else {
		all, err := s.calls.ListIDs(ctx)
		if err != nil {
			return nil, err
		}
		ids = all
	}

	result := &RefreshResult{Errors: map[string]string{}}
	var refreshed []*model.Call
	for _, id := range ids {
		call, err := s.refreshOne(ctx, id)
		if err != nil {
			result.Errors[id] = err.Error()
			continue
		}
		refreshed = append(refreshed, call)
	}

	result.Success = len(result.Errors) == 0
	result.RefreshedCount = len(refreshed)
	if callID != "" {
		result.Calls = refreshed
	}
	return result, nil
}

func (s *CallService) refreshOne(ctx context.Context, callID string) (*model.Call, error) {
	call, err := s.calls.Get(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, fmt.Errorf("call %s not found", callID)
	}

	return s.saveEligibility(ctx, call, EvaluateConstraints(payloadFromCall(call), s.minDurationMS), model.StatusBlocked)
}

// overallForResponse picks the headline emotion of a stored analysis.
func overallForResponse(resp *model.AnalysisResponse) *model.OverallEmotion {
	if resp == nil || resp.Results == nil {
		return nil
	}
	return toModelOverall(emotion.Transform(resp, emotion.Options{}).OverallEmotion)
}

func toModelOverall(o *emotion.OverallEmotion) *model.OverallEmotion {
	if o == nil {
		return nil
	}
	confidence := o.Confidence
	return &model.OverallEmotion{
		Label:       string(o.Label),
		CallOutcome: o.CallOutcome,
		Confidence:  &confidence,
		Reasoning:   o.Reasoning,
		Source:      o.Source,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func millis(v float64) *int64 {
	n := int64(v)
	return &n
}
