package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"callmood/internal/emotion"
	"callmood/internal/model"
	"callmood/internal/repository"
)

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type fakeCallRepo struct {
	mu    sync.Mutex
	calls map[string]*model.Call
}

func newFakeCallRepo(calls ...*model.Call) *fakeCallRepo {
	r := &fakeCallRepo{calls: map[string]*model.Call{}}
	for _, c := range calls {
		r.calls[c.CallID] = c
	}
	return r
}

func (r *fakeCallRepo) Get(_ context.Context, callID string) (*model.Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

// SaveDetails mirrors the Mongo $set/$setOnInsert split: analysis progress
// is only written on insert.
func (r *fakeCallRepo) SaveDetails(ctx context.Context, call *model.Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.calls[call.CallID]
	if !ok {
		cp := *call
		cp.AnalysisStatus = model.StatusPending
		cp.AnalysisAvailable = false
		cp.AnalysisRevision = 0
		cp.ErrorMessage = ""
		cp.OverallEmotion = nil
		cp.OverallEmotionLabel = ""
		r.calls[call.CallID] = &cp
		return nil
	}
	progress := *stored
	*stored = *call
	stored.AnalysisStatus = progress.AnalysisStatus
	stored.AnalysisAvailable = progress.AnalysisAvailable
	stored.AnalysisRevision = progress.AnalysisRevision
	stored.ErrorMessage = progress.ErrorMessage
	stored.OverallEmotion = progress.OverallEmotion
	stored.OverallEmotionLabel = progress.OverallEmotionLabel
	stored.CreatedAt = progress.CreatedAt
	return nil
}

func (r *fakeCallRepo) TransitionStatus(ctx context.Context, callID string, from []model.AnalysisStatus, to model.AnalysisStatus) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if c.AnalysisStatus == s {
			c.AnalysisStatus = to
			c.ErrorMessage = ""
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCallRepo) Delete(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calls, callID)
	return nil
}

func (r *fakeCallRepo) List(_ context.Context, skip, limit int64) ([]*model.Call, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*model.Call
	for _, c := range r.calls {
		if c.DurationMS != nil && *c.DurationMS <= 0 {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		return startOf(all[i]) > startOf(all[j])
	})
	total := int64(len(all))
	if skip >= total {
		return []*model.Call{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func startOf(c *model.Call) int64 {
	if c.StartTimestamp == nil {
		return 0
	}
	return *c.StartTimestamp
}

func (r *fakeCallRepo) ListIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.calls))
	for id := range r.calls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeCallRepo) UpdateStatus(ctx context.Context, callID string, u repository.StatusUpdate) (*model.Call, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[callID]
	if !ok {
		return nil, nil
	}
	if u.Status != "" {
		c.AnalysisStatus = u.Status
	}
	if u.ErrorMessage != nil {
		c.ErrorMessage = *u.ErrorMessage
	}
	if u.AnalysisAvailable != nil {
		c.AnalysisAvailable = *u.AnalysisAvailable
	}
	if u.OverallEmotion != nil {
		c.OverallEmotion = u.OverallEmotion
		c.OverallEmotionLabel = u.OverallEmotion.Label
	}
	if u.RecordingURL != "" {
		c.RecordingURL = u.RecordingURL
	}
	if u.BumpRevision {
		c.AnalysisRevision++
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCallRepo) get(callID string) *model.Call {
	c, _ := r.Get(context.Background(), callID)
	return c
}

type fakeAnalysisRepo struct {
	mu      sync.Mutex
	records map[string]*model.AnalysisRecord
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{records: map[string]*model.AnalysisRecord{}}
}

func (r *fakeAnalysisRepo) Save(ctx context.Context, record *model.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *record
	r.records[record.CallID] = &cp
	return nil
}

func (r *fakeAnalysisRepo) Get(_ context.Context, callID string) (*model.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[callID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeAnalysisRepo) Delete(_ context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, callID)
	return nil
}

type fakeDashboardCache struct {
	mu          sync.Mutex
	entries     map[string]emotion.Dashboard
	sets        int
	invalidated []string
}

func newFakeDashboardCache() *fakeDashboardCache {
	return &fakeDashboardCache{entries: map[string]emotion.Dashboard{}}
}

func dashKey(callID string, revision int64) string {
	return fmt.Sprintf("%s#%d", callID, revision)
}

func (c *fakeDashboardCache) Get(_ context.Context, callID string, revision int64) (*emotion.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[dashKey(callID, revision)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (c *fakeDashboardCache) Set(_ context.Context, callID string, revision int64, d *emotion.Dashboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dashKey(callID, revision)] = *d
	c.sets++
	return nil
}

func (c *fakeDashboardCache) Invalidate(_ context.Context, callID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, callID+"#") {
			delete(c.entries, k)
		}
	}
	c.invalidated = append(c.invalidated, callID)
	return nil
}

type fakeJobLock struct {
	mu     sync.Mutex
	owners map[string]string
}

func newFakeJobLock() *fakeJobLock {
	return &fakeJobLock{owners: map[string]string{}}
}

func (l *fakeJobLock) Acquire(_ context.Context, callID, owner string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owners[callID]; held {
		return false, nil
	}
	l.owners[callID] = owner
	return true, nil
}

func (l *fakeJobLock) Release(_ context.Context, callID, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owners[callID] == owner {
		delete(l.owners, callID)
	}
	return nil
}

func (l *fakeJobLock) held(callID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.owners[callID]
	return ok
}

type fakeInference struct {
	mu       sync.Mutex
	started  []AnalyzeRequest
	startErr error
	resp     *model.AnalysisResponse
	pollErr  error
	upload   *model.AnalysisResponse
	gate     chan struct{}
	// blockUntilDone makes Poll wait for its context like a real poll loop.
	blockUntilDone bool
	onPoll         func()
}

func (f *fakeInference) Start(_ context.Context, req AnalyzeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req)
	return f.startErr
}

func (f *fakeInference) Poll(ctx context.Context, _ string) (*model.AnalysisResponse, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.blockUntilDone {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.onPoll != nil {
		f.onPoll()
	}
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	cp := *f.resp
	return &cp, nil
}

func (f *fakeInference) AnalyzeUpload(_ context.Context, _ string, audio io.Reader) (*model.AnalysisResponse, error) {
	if _, err := io.ReadAll(audio); err != nil {
		return nil, err
	}
	return f.upload, nil
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []model.StatusEvent
}

func (b *recordingBroadcaster) BroadcastCallStatus(event model.StatusEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) statuses() []model.AnalysisStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.AnalysisStatus, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Status)
	}
	return out
}

func int64p(v int64) *int64 { return &v }

func float64p(v float64) *float64 { return &v }

func boolp(v bool) *bool { return &v }
