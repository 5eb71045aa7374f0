package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"callmood/internal/cache"
	"callmood/internal/emotion"
	"callmood/internal/metrics"
	"callmood/internal/model"
	"callmood/internal/repository"
)

const (
	msgStarted     = "Analysis started in background"
	msgInProgress  = "Analysis already in progress"
	msgStillRuns   = "Analysis is still in progress. Please check again in a few moments."
	msgNoEmotions  = "No emotion predictions found. The audio may not contain detectable speech."
	analysisNote   = "Use GET /v1/calls/{call_id}/analysis to fetch results once processing completes"
	uploadAnalysis = "custom_upload"
	msgInterrupted = "Analysis was interrupted before it finished. Please trigger it again."
)

// persistTimeout bounds the final writes of a job. They run detached from
// the job context so a shutdown still leaves the call in a terminal state.
const persistTimeout = 10 * time.Second

// Inference is the slice of the backend client analysis jobs use.
type Inference interface {
	Start(ctx context.Context, req AnalyzeRequest) error
	Poll(ctx context.Context, callID string) (*model.AnalysisResponse, error)
	AnalyzeUpload(ctx context.Context, filename string, audio io.Reader) (*model.AnalysisResponse, error)
}

// TriggerResult describes what an analyze request did.
type TriggerResult struct {
	Success bool                    `json:"success"`
	CallID  string                  `json:"call_id"`
	Status  model.AnalysisStatus    `json:"status"`
	Message string                  `json:"message,omitempty"`
	Note    string                  `json:"note,omitempty"`
	Results *model.AnalysisResults  `json:"results,omitempty"`
	Cached  bool                    `json:"cached,omitempty"`
	Record  *model.AnalysisResponse `json:"-"`
}

// UploadResult is a one-off analysis of an uploaded file.
type UploadResult struct {
	Success   bool                   `json:"success"`
	ID        string                 `json:"id"`
	Filename  string                 `json:"filename"`
	Results   *model.AnalysisResults `json:"results"`
	Dashboard emotion.Dashboard      `json:"dashboard"`
}

// AnalysisService runs emotion analysis jobs and serves their dashboards
type AnalysisService struct {
	calls       repository.CallRepo
	analyses    repository.AnalysisRepo
	dashboards  cache.DashboardCache
	locks       cache.JobLock
	inference   Inference
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	log         *logrus.Entry

	baseCtx context.Context
	jobs    sync.WaitGroup
	now     func() time.Time
}

// NewAnalysisService creates a new analysis service. Background jobs run
// under baseCtx so they outlive the request that started them.
func NewAnalysisService(
	baseCtx context.Context,
	calls repository.CallRepo,
	analyses repository.AnalysisRepo,
	dashboards cache.DashboardCache,
	locks cache.JobLock,
	inference Inference,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *AnalysisService {
	return &AnalysisService{
		calls:       calls,
		analyses:    analyses,
		dashboards:  dashboards,
		locks:       locks,
		inference:   inference,
		broadcaster: noopBroadcaster{},
		metrics:     m,
		log:         logger.WithField("component", "analysis"),
		baseCtx:     baseCtx,
		now:         time.Now,
	}
}

// SetBroadcaster sets the WebSocket broadcaster (called after hub is created)
func (s *AnalysisService) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

// Trigger starts analysis of a registered call. Unless force is set an
// existing analysis is returned as is. A forced trigger of a call stuck in
// processing only proceeds once its job lock has expired.
func (s *AnalysisService) Trigger(ctx context.Context, callID string, force bool) (*TriggerResult, error) {
	call, err := s.calls.Get(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, ErrCallNotFound
	}
	if !call.AnalysisAllowed {
		reason := call.AnalysisBlockReason
		if reason == "" {
			reason = "Call cannot be analyzed."
		}
		return nil, &BlockedError{Reason: reason}
	}

	if !force && call.AnalysisStatus == model.StatusCompleted && call.AnalysisAvailable {
		record, err := s.analyses.Get(ctx, callID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return &TriggerResult{
				Success: true,
				CallID:  callID,
				Status:  model.StatusCompleted,
				Results: record.Response.Results,
				Cached:  true,
				Record:  &record.Response,
			}, nil
		}
	}

	inProgress := &TriggerResult{Success: true, CallID: callID, Status: model.StatusProcessing, Message: msgInProgress}
	if call.AnalysisStatus == model.StatusProcessing && !force {
		return inProgress, nil
	}

	owner := uuid.New().String()
	acquired, err := s.locks.Acquire(ctx, callID, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire job lock: %w", err)
	}
	if !acquired {
		return inProgress, nil
	}

	empty := ""
	if _, err := s.calls.UpdateStatus(ctx, callID, repository.StatusUpdate{
		Status:       model.StatusProcessing,
		ErrorMessage: &empty,
	}); err != nil {
		s.release(callID, owner)
		return nil, err
	}
	s.publish(callID, model.StatusProcessing, msgStarted, "")

	s.jobs.Add(1)
	go s.run(call, owner)

	return &TriggerResult{
		Success: true,
		CallID:  callID,
		Status:  model.StatusProcessing,
		Message: msgStarted,
		Note:    analysisNote,
	}, nil
}

// Wait blocks until running jobs finish or ctx is done.
func (s *AnalysisService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AnalysisService) run(call *model.Call, owner string) {
	defer s.jobs.Done()
	defer s.release(call.CallID, owner)

	log := s.log.WithField("call_id", call.CallID)
	ctx := s.baseCtx

	if call.RecordingURL == "" {
		s.fail(ctx, call.CallID, ErrNoRecording)
		return
	}

	req := AnalyzeRequest{
		CallID:             call.CallID,
		RecordingURL:       call.RecordingURL,
		TranscriptSegments: call.TranscriptObject,
		Metadata:           callMetadata(call),
	}
	log.Info("Starting analysis")
	if err := s.inference.Start(ctx, req); err != nil {
		s.fail(ctx, call.CallID, err)
		return
	}
	resp, err := s.inference.Poll(ctx, call.CallID)
	if err != nil {
		s.fail(ctx, call.CallID, err)
		return
	}
	if err := s.complete(ctx, call, resp); err != nil {
		s.fail(ctx, call.CallID, err)
		return
	}
	log.Info("Analysis completed")
}

// Import stores an analysis produced elsewhere as the call's completed result.
func (s *AnalysisService) Import(ctx context.Context, callID string, resp *model.AnalysisResponse) error {
	if resp == nil || resp.Results == nil {
		return ErrInvalidPayload
	}
	call, err := s.calls.Get(ctx, callID)
	if err != nil {
		return err
	}
	if call == nil {
		return ErrCallNotFound
	}
	if call.AnalysisStatus == model.StatusProcessing {
		return ErrAnalysisInProgress
	}
	return s.complete(ctx, call, resp)
}

// complete stores a finished analysis and bumps the call's revision so
// cached dashboards of earlier analyses stop matching.
func (s *AnalysisService) complete(ctx context.Context, call *model.Call, resp *model.AnalysisResponse) error {
	resp.CallID = call.CallID
	record := &model.AnalysisRecord{
		CallID:    call.CallID,
		Revision:  call.AnalysisRevision + 1,
		Response:  *resp,
		CreatedAt: s.now().UTC(),
	}
	ctx, cancel := persistContext(ctx)
	defer cancel()
	if err := s.analyses.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}

	overall := overallForResponse(resp)
	available := true
	empty := ""
	updated, err := s.calls.UpdateStatus(ctx, call.CallID, repository.StatusUpdate{
		Status:            model.StatusCompleted,
		ErrorMessage:      &empty,
		AnalysisAvailable: &available,
		OverallEmotion:    overall,
		BumpRevision:      true,
	})
	if err != nil {
		return err
	}
	if updated == nil {
		return ErrCallNotFound
	}
	if err := s.dashboards.Invalidate(ctx, call.CallID); err != nil {
		s.log.WithError(err).WithField("call_id", call.CallID).Warn("Failed to drop cached dashboards")
	}

	s.metrics.JobFinished(string(model.StatusCompleted))
	var label string
	if overall != nil {
		label = overall.Label
	}
	s.publish(call.CallID, model.StatusCompleted, "", label)
	return nil
}

func (s *AnalysisService) fail(ctx context.Context, callID string, cause error) {
	msg := cause.Error()
	var analysisErr *AnalysisError
	if errors.As(cause, &analysisErr) {
		msg = analysisErr.Message
	} else if errors.Is(cause, ErrNoRecording) {
		msg = "No recording URL available for this call"
	} else if errors.Is(cause, context.Canceled) {
		msg = msgInterrupted
	}
	s.log.WithError(cause).WithField("call_id", callID).Error("Analysis failed")

	ctx, cancel := persistContext(ctx)
	defer cancel()

	if _, err := s.calls.UpdateStatus(ctx, callID, repository.StatusUpdate{
		Status:       model.StatusError,
		ErrorMessage: &msg,
	}); err != nil {
		s.log.WithError(err).WithField("call_id", callID).Error("Failed to record analysis error")
	}
	s.metrics.JobFinished(string(model.StatusError))
	s.publish(callID, model.StatusError, msg, "")
}

func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func (s *AnalysisService) release(callID, owner string) {
	if err := s.locks.Release(context.Background(), callID, owner); err != nil {
		s.log.WithError(err).WithField("call_id", callID).Warn("Failed to release job lock")
	}
}

func (s *AnalysisService) publish(callID string, status model.AnalysisStatus, message, label string) {
	s.broadcaster.BroadcastCallStatus(model.StatusEvent{
		Type:           "analysis_status",
		CallID:         callID,
		Status:         status,
		Message:        message,
		OverallEmotion: label,
		Timestamp:      s.now().UnixMilli(),
	})
}

func callMetadata(call *model.Call) map[string]any {
	meta := map[string]any{
		"call_id":              call.CallID,
		"transcript_available": call.TranscriptAvailable,
	}
	if call.AgentID != "" {
		meta["agent_id"] = call.AgentID
	}
	if call.AgentName != "" {
		meta["agent_name"] = call.AgentName
	}
	if call.DurationMS != nil {
		meta["duration_ms"] = *call.DurationMS
	}
	if call.StartTimestamp != nil {
		meta["start_timestamp"] = *call.StartTimestamp
	}
	if call.EndTimestamp != nil {
		meta["end_timestamp"] = *call.EndTimestamp
	}
	if call.CallSummary != "" {
		meta["call_summary"] = call.CallSummary
	}
	return meta
}

// Get returns the stored analysis of a call. A call still processing
// yields a response with status processing rather than an error.
func (s *AnalysisService) Get(ctx context.Context, callID string) (*model.AnalysisResponse, error) {
	call, record, err := s.load(ctx, callID)
	if errors.Is(err, ErrAnalysisInProgress) {
		return &model.AnalysisResponse{
			Success: true,
			CallID:  callID,
			Status:  string(model.StatusProcessing),
			Message: msgStillRuns,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	resp := record.Response
	resp.Success = true
	resp.CallID = callID
	resp.Status = string(model.StatusCompleted)
	if resp.RecordingURL == "" {
		resp.RecordingURL = call.RecordingURL
	}
	return &resp, nil
}

// load fetches a call and its completed analysis, mapping the call's
// status onto the service errors.
func (s *AnalysisService) load(ctx context.Context, callID string) (*model.Call, *model.AnalysisRecord, error) {
	call, err := s.calls.Get(ctx, callID)
	if err != nil {
		return nil, nil, err
	}
	if call == nil {
		return nil, nil, ErrCallNotFound
	}
	switch call.AnalysisStatus {
	case model.StatusProcessing:
		return call, nil, ErrAnalysisInProgress
	case model.StatusError:
		msg := call.ErrorMessage
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return call, nil, &AnalysisError{StatusCode: http.StatusInternalServerError, Message: msg}
	}
	if !call.AnalysisAvailable {
		return call, nil, ErrAnalysisNotAvailable
	}
	record, err := s.analyses.Get(ctx, callID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return call, nil, ErrAnalysisNotAvailable
	}
	return call, record, nil
}

// Dashboard returns the transformed dashboard of a call's analysis,
// served from cache while the analysis revision is unchanged.
func (s *AnalysisService) Dashboard(ctx context.Context, callID string, opts emotion.Options) (*emotion.Dashboard, error) {
	call, record, err := s.load(ctx, callID)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("call_id", callID)
	cacheable := opts == emotion.Options{}

	if cacheable {
		cached, err := s.dashboards.Get(ctx, callID, call.AnalysisRevision)
		if err != nil {
			log.WithError(err).Warn("Dashboard cache read failed")
		}
		if cached != nil {
			s.metrics.CacheResult(true)
			return cached, nil
		}
		s.metrics.CacheResult(false)
	}

	started := time.Now()
	resp := record.Response
	resp.CallID = callID
	dashboard := emotion.BuildDashboard(&resp, opts)
	dashboard.Revision = call.AnalysisRevision
	s.metrics.ObserveTransform(string(dashboard.Outcome), dashboard.SegmentCount(), time.Since(started))

	if cacheable {
		if err := s.dashboards.Set(ctx, callID, call.AnalysisRevision, &dashboard); err != nil {
			log.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return &dashboard, nil
}

// AnalyzeUpload runs a one-off analysis of an uploaded audio file. The
// result is not tied to any registered call.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, filename string, audio io.Reader) (*UploadResult, error) {
	resp, err := s.inference.AnalyzeUpload(ctx, filename, audio)
	if err != nil {
		return nil, err
	}
	results := resp.Results
	if results == nil || (len(results.Prosody) == 0 && len(results.Burst) == 0) {
		return nil, &AnalysisError{StatusCode: http.StatusNotFound, Message: msgNoEmotions}
	}
	if results.Metadata == nil {
		results.Metadata = &model.AnalysisMetadata{}
	}
	results.Metadata.AnalysisType = uploadAnalysis
	if results.Filename == "" {
		results.Filename = filename
	}

	started := time.Now()
	dashboard := emotion.BuildDashboard(resp, emotion.Options{})
	s.metrics.ObserveTransform(string(dashboard.Outcome), dashboard.SegmentCount(), time.Since(started))

	return &UploadResult{
		Success:   true,
		ID:        uuid.New().String(),
		Filename:  filename,
		Results:   results,
		Dashboard: dashboard,
	}, nil
}
