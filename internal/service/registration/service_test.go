package registration_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/memory"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastConfig = registration.Config{
	MaxAttempts:      5,
	BaseDelay:        time.Millisecond,
	MaxDelay:         2 * time.Millisecond,
	JitterPercent:    30,
	OperationTimeout: time.Second,
}

func newService(t *testing.T, docs store.DocumentStore, cfg registration.Config, opts ...registration.Option) *registration.Service {
	t.Helper()
	svc, err := registration.NewService(docs, cfg, nil, opts...)
	require.NoError(t, err)
	return svc
}

func seedCompetition(t *testing.T, docs store.DocumentStore, id string) {
	t.Helper()
	_, err := docs.Create(context.Background(), store.CollectionCompetitions, id,
		[]byte(`{"id":"`+id+`","title":"Spring Run","price":12.5,"participants":[]}`))
	require.NoError(t, err)
}

func participants(t *testing.T, entries registration.Entries) []domain.Participant {
	t.Helper()
	out, err := registration.DecodeEntries[domain.Participant](entries)
	require.NoError(t, err)
	return out
}

func TestRegister_AddsEntryAndKeepsOtherFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")
	svc := newService(t, docs, fastConfig)

	entries, err := svc.Register(ctx, registration.Participants, "c1", "Alice",
		domain.Participant{Name: "Alice A", Username: "Alice", PhoneNumber: "555"})
	require.NoError(t, err)

	got := participants(t, entries)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "Alice A", got[0].Name)

	doc, err := docs.Get(ctx, store.CollectionCompetitions, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Revision)

	var stored domain.Competition
	require.NoError(t, store.Decode(doc.Data, &stored))
	assert.Equal(t, "Spring Run", stored.Title)
	assert.Equal(t, 12.5, stored.Price)
	assert.Len(t, stored.Participants, 1)
}

func TestRegister_CaseFoldedDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")
	svc := newService(t, docs, fastConfig)

	_, err := svc.Register(ctx, registration.Participants, "c1", "Alice", domain.Participant{Username: "Alice"})
	require.NoError(t, err)

	for _, key := range []string{"alice", "ALICE", "  alice  "} {
		_, err = svc.Register(ctx, registration.Participants, "c1", key, domain.Participant{Username: key})
		assert.ErrorIs(t, err, domain.ErrAlreadyRegistered, key)
	}

	doc, err := docs.Get(ctx, store.CollectionCompetitions, "c1")
	require.NoError(t, err)
	var stored domain.Competition
	require.NoError(t, store.Decode(doc.Data, &stored))
	assert.Len(t, stored.Participants, 1)
}

func TestRegister_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	svc := newService(t, docs, fastConfig)

	_, err := svc.Register(ctx, registration.Participants, "missing", "bob", domain.Participant{Username: "bob"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Register(ctx, registration.Participants, "missing", "   ", domain.Participant{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = docs.Create(ctx, store.CollectionCompetitions, "broken", []byte(`{"participants":"nope"}`))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registration.Participants, "broken", "bob", domain.Participant{Username: "bob"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestRegisterUnregisterRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")
	svc := newService(t, docs, fastConfig)

	_, err := svc.Register(ctx, registration.Participants, "c1", "bob", domain.Participant{Username: "bob"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, registration.Participants, "c1", "carol", domain.Participant{Username: "carol"})
	require.NoError(t, err)

	entries, err := svc.Unregister(ctx, registration.Participants, "c1", "BOB")
	require.NoError(t, err)
	got := participants(t, entries)
	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].Username)

	_, err = svc.Unregister(ctx, registration.Participants, "c1", "bob")
	assert.ErrorIs(t, err, domain.ErrNotAMember)

	entries, err = svc.Register(ctx, registration.Participants, "c1", "bob", domain.Participant{Username: "bob"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRegister_MissingListFieldStartsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	_, err := docs.Create(ctx, store.CollectionReviews, "newsletter", []byte(`{}`))
	require.NoError(t, err)
	svc := newService(t, docs, fastConfig)

	entries, err := svc.Register(ctx, registration.Newsletter, "newsletter", "Fan@Example.com",
		domain.Subscriber{Email: "Fan@Example.com"})
	require.NoError(t, err)

	subs, err := registration.DecodeEntries[domain.Subscriber](entries)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "fan@example.com", subs[0].Email)

	_, err = svc.Register(ctx, registration.Newsletter, "newsletter", "fan@example.com",
		domain.Subscriber{Email: "fan@example.com"})
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestRegister_ConcurrentSameKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")
	svc := newService(t, docs, fastConfig)

	const n = 25
	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Register(ctx, registration.Participants, "c1", "alice", domain.Participant{Username: "alice"})
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, domain.ErrAlreadyRegistered):
				duplicates.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(n-1), duplicates.Load())

	doc, err := docs.Get(ctx, store.CollectionCompetitions, "c1")
	require.NoError(t, err)
	var stored domain.Competition
	require.NoError(t, store.Decode(doc.Data, &stored))
	assert.Len(t, stored.Participants, 1)
}

func TestRegister_ConcurrentDistinctKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedCompetition(t, docs, "c1")

	const n = 20
	cfg := fastConfig
	// every lost race means another writer succeeded, so n attempts always suffice
	cfg.MaxAttempts = n + 1
	svc := newService(t, docs, cfg)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			name := fmt.Sprintf("runner-%02d", i)
			_, err := svc.Register(ctx, registration.Participants, "c1", name, domain.Participant{Username: name})
			errs <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	doc, err := docs.Get(ctx, store.CollectionCompetitions, "c1")
	require.NoError(t, err)
	var stored domain.Competition
	require.NoError(t, store.Decode(doc.Data, &stored))
	assert.Len(t, stored.Participants, n)
	assert.NoError(t, stored.Validate())
}

func TestAppend_ConcurrentNeverLosesEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	_, err := docs.Create(ctx, store.CollectionReviews, "general", []byte(`{"general_reviews":[]}`))
	require.NoError(t, err)

	const n = 15
	cfg := fastConfig
	cfg.MaxAttempts = n + 1
	svc := newService(t, docs, cfg)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Append(ctx, registration.Reviews, "general",
				domain.Review{Name: "same name", Review: fmt.Sprintf("review %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	doc, err := docs.Get(ctx, store.CollectionReviews, "general")
	require.NoError(t, err)
	fields, err := store.DecodeFields(doc.Data)
	require.NoError(t, err)
	var reviews []domain.Review
	require.NoError(t, store.Decode(fields["general_reviews"], &reviews))
	assert.Len(t, reviews, n)
}
