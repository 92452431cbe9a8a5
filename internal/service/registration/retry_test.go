package registration_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/memory"
	"github.com/competehub/compete-api/internal/platform/metrics"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first replaces or every get, on demand.
type flakyStore struct {
	store.DocumentStore
	replaceConflicts atomic.Int32
	replaceCalls     atomic.Int32
	getErr           error
	blockGets        bool
}

func (f *flakyStore) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	if f.blockGets {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.DocumentStore.Get(ctx, collection, id)
}

func (f *flakyStore) Replace(ctx context.Context, collection, id string, rev int64, data []byte) (*store.Document, error) {
	f.replaceCalls.Add(1)
	if f.replaceConflicts.Add(-1) >= 0 {
		return nil, store.NewStoreError(collection, id, "replace", store.ErrRevisionConflict)
	}
	return f.DocumentStore.Replace(ctx, collection, id, rev, data)
}

type recordingRecorder struct {
	mu       sync.Mutex
	attempts int
	retries  map[string]int
	outcomes []string
}

func (r *recordingRecorder) ObserveAttempt(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
}

func (r *recordingRecorder) ObserveRetry(_, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retries == nil {
		r.retries = map[string]int{}
	}
	r.retries[reason]++
}

func (r *recordingRecorder) ObserveOutcome(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newFlaky(t *testing.T) *flakyStore {
	t.Helper()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")
	return &flakyStore{DocumentStore: docs}
}

func TestRegister_RetriesConflictsThenSucceeds(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	flaky.replaceConflicts.Store(3)
	rec := &recordingRecorder{}
	svc := newService(t, flaky, fastConfig, registration.WithRecorder(rec))

	entries, err := svc.Register(context.Background(), registration.Participants, "c1", "dana",
		domain.Participant{Username: "dana"})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, int32(4), flaky.replaceCalls.Load())
	assert.Equal(t, 4, rec.attempts)
	assert.Equal(t, 3, rec.retries["revision_conflict"])
	assert.Equal(t, []string{metrics.OutcomeSuccess}, rec.outcomes)
}

func TestRegister_ConflictRetryExhausted(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	flaky.replaceConflicts.Store(1000)
	rec := &recordingRecorder{}
	svc := newService(t, flaky, fastConfig, registration.WithRecorder(rec))

	_, err := svc.Register(context.Background(), registration.Participants, "c1", "dana",
		domain.Participant{Username: "dana"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflictRetryExhausted)

	assert.Equal(t, int32(fastConfig.MaxAttempts), flaky.replaceCalls.Load())
	assert.Equal(t, fastConfig.MaxAttempts-1, rec.retries["revision_conflict"])
	assert.Equal(t, []string{metrics.OutcomeExhausted}, rec.outcomes)

	doc, err := flaky.Get(context.Background(), store.CollectionCompetitions, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Revision)
}

func TestRegister_UnavailableStore(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	flaky.getErr = store.NewStoreError(store.CollectionCompetitions, "c1", "get", store.ErrUnavailable)
	svc := newService(t, flaky, fastConfig)

	_, err := svc.Register(context.Background(), registration.Participants, "c1", "dana",
		domain.Participant{Username: "dana"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, int32(0), flaky.replaceCalls.Load())
}

func TestRegister_PerCallTimeout(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	flaky.blockGets = true
	cfg := fastConfig
	cfg.MaxAttempts = 2
	cfg.OperationTimeout = 10 * time.Millisecond
	svc := newService(t, flaky, cfg)

	_, err := svc.Register(context.Background(), registration.Participants, "c1", "dana",
		domain.Participant{Username: "dana"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestRegister_CanceledCaller(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	flaky.replaceConflicts.Store(1000)
	svc := newService(t, flaky, fastConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Register(ctx, registration.Participants, "c1", "dana", domain.Participant{Username: "dana"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrConflictRetryExhausted)
}

func TestRegister_PermanentErrorsAreNotRetried(t *testing.T) {
	t.Parallel()
	flaky := newFlaky(t)
	rec := &recordingRecorder{}
	svc := newService(t, flaky, fastConfig, registration.WithRecorder(rec))

	_, err := svc.Unregister(context.Background(), registration.Participants, "c1", "nobody")
	assert.ErrorIs(t, err, domain.ErrNotAMember)
	assert.Equal(t, 1, rec.attempts)
	assert.Equal(t, []string{metrics.OutcomeNotAMember}, rec.outcomes)
}

func TestNewService_RequiresStore(t *testing.T) {
	t.Parallel()
	_, err := registration.NewService(nil, fastConfig, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMetricsCollectorIsARecorder(t *testing.T) {
	t.Parallel()
	var _ registration.Recorder = metrics.NewCollector()
}
