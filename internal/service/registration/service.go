package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/competehub/compete-api/internal/config"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/platform/metrics"
	"github.com/competehub/compete-api/internal/store"
	"github.com/sethvargo/go-retry"
)

const (
	opRegister   = "register"
	opUnregister = "unregister"
	opAppend     = "append"
)

const (
	defaultMaxAttempts      = 5
	defaultBaseDelay        = 10 * time.Millisecond
	defaultMaxDelay         = 500 * time.Millisecond
	defaultJitterPercent    = 30
	defaultOperationTimeout = 2 * time.Second
)

// Recorder receives instrumentation events from the loop.
type Recorder interface {
	ObserveAttempt(operation string)
	ObserveRetry(operation, reason string)
	ObserveOutcome(operation, outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string) {}

func (nopRecorder) ObserveRetry(string, string) {}

func (nopRecorder) ObserveOutcome(string, string, time.Duration) {}

// Config bounds the retry loop.
type Config struct {
	MaxAttempts      int
	BaseDelay        time.Duration
	MaxDelay         time.Duration
	JitterPercent    int
	OperationTimeout time.Duration
}

// ConfigFrom converts the application configuration.
func ConfigFrom(cfg config.RegistrationConfig) Config {
	return Config{
		MaxAttempts:      cfg.MaxAttempts,
		BaseDelay:        cfg.BaseDelay(),
		JitterPercent:    cfg.JitterPercent,
		OperationTimeout: cfg.OperationTimeout(),
	}
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.JitterPercent < 0 || c.JitterPercent > 100 {
		c.JitterPercent = defaultJitterPercent
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = defaultOperationTimeout
	}
	return c
}

// Service performs registrations against a DocumentStore.
type Service struct {
	docs     store.DocumentStore
	cfg      Config
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports attempts, retries and outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a registration Service.
func NewService(docs store.DocumentStore, cfg Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if docs == nil {
		return nil, domain.NewValidationError("docs", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		docs:     docs,
		cfg:      cfg.withDefaults(),
		recorder: nopRecorder{},
		logger:   logger.With(slog.String("component", "registration")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register adds entry to the list unless an entry with the same folded key
// exists, in which case it returns domain.ErrAlreadyRegistered. The stored
// entry carries the normalized key. On success it returns the updated list.
func (s *Service) Register(ctx context.Context, list List, parentID, key string, entry any) (Entries, error) {
	norm := domain.NormalizeKey(key)
	if norm == "" {
		return nil, domain.NewValidationError(list.KeyField, "cannot be empty", nil)
	}
	encoded, err := encodeEntry(entry, list.KeyField, norm)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, opRegister, list, parentID, func(entries Entries) (Entries, error) {
		if indexOf(entries, list.KeyField, norm) >= 0 {
			return nil, domain.ErrAlreadyRegistered
		}
		return append(entries, encoded), nil
	})
}

// Unregister removes the first entry whose key folds to key. It returns
// domain.ErrNotAMember when there is none.
func (s *Service) Unregister(ctx context.Context, list List, parentID, key string) (Entries, error) {
	norm := domain.NormalizeKey(key)
	if norm == "" {
		return nil, domain.NewValidationError(list.KeyField, "cannot be empty", nil)
	}

	return s.run(ctx, opUnregister, list, parentID, func(entries Entries) (Entries, error) {
		i := indexOf(entries, list.KeyField, norm)
		if i < 0 {
			return nil, domain.ErrNotAMember
		}
		next := make(Entries, 0, len(entries)-1)
		next = append(next, entries[:i]...)
		return append(next, entries[i+1:]...), nil
	})
}

// Append adds entry without a uniqueness check. The write is still
// conditioned so concurrent appends are never lost.
func (s *Service) Append(ctx context.Context, list List, parentID string, entry any) (Entries, error) {
	encoded, err := encodeEntry(entry, "", "")
	if err != nil {
		return nil, err
	}

	return s.run(ctx, opAppend, list, parentID, func(entries Entries) (Entries, error) {
		return append(entries, encoded), nil
	})
}

type mutation func(Entries) (Entries, error)

func (s *Service) run(ctx context.Context, op string, list List, parentID string, mutate mutation) (Entries, error) {
	start := time.Now()
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("operation", op),
		slog.String("list", list.String()),
		slog.String("parent_id", parentID))

	var (
		result  Entries
		attempt int
	)
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		s.recorder.ObserveAttempt(op)

		entries, err := s.cycle(ctx, list, parentID, mutate)
		if err == nil {
			result = entries
			return nil
		}

		reason, retryable := retryReason(ctx, err)
		if !retryable {
			return err
		}
		if attempt < s.cfg.MaxAttempts {
			s.recorder.ObserveRetry(op, reason)
			log.Debug("registration cycle will be retried",
				slog.Int("attempt", attempt),
				slog.String("reason", reason))
		}
		return retry.RetryableError(err)
	})

	err = s.finalError(ctx, op, list, parentID, attempt, err)
	outcome := outcomeOf(err)
	s.recorder.ObserveOutcome(op, outcome, time.Since(start))

	switch outcome {
	case metrics.OutcomeSuccess:
		log.Debug("registration applied", slog.Int("attempts", attempt), slog.Int("entries", len(result)))
		return result, nil
	case metrics.OutcomeExhausted, metrics.OutcomeUnavailable:
		log.Warn("registration gave up",
			slog.Int("attempts", attempt),
			slog.String("outcome", outcome))
	}
	return nil, err
}

// cycle is one read-check-write pass.
func (s *Service) cycle(ctx context.Context, list List, parentID string, mutate mutation) (Entries, error) {
	doc, err := s.get(ctx, list.Collection, parentID)
	if err != nil {
		return nil, err
	}

	fields, err := store.DecodeFields(doc.Data)
	if err != nil {
		return nil, err
	}
	entries, err := entriesOf(fields, list.Field)
	if err != nil {
		return nil, err
	}

	next, err := mutate(entries)
	if err != nil {
		return nil, err
	}

	if err := fields.Set(list.Field, next); err != nil {
		return nil, err
	}
	body, err := fields.Encode()
	if err != nil {
		return nil, err
	}

	if err := s.replace(ctx, list.Collection, parentID, doc.Revision, body); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *Service) get(ctx context.Context, collection, id string) (*store.Document, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()
	return s.docs.Get(callCtx, collection, id)
}

func (s *Service) replace(ctx context.Context, collection, id string, revision int64, body []byte) error {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()
	_, err := s.docs.Replace(callCtx, collection, id, revision, body)
	return err
}

// backoff is built per call; go-retry backoffs are stateful.
func (s *Service) backoff() retry.Backoff {
	b := retry.NewExponential(s.cfg.BaseDelay)
	b = retry.WithCappedDuration(s.cfg.MaxDelay, b)
	b = retry.WithJitterPercent(uint64(s.cfg.JitterPercent), b)
	return retry.WithMaxRetries(uint64(s.cfg.MaxAttempts-1), b)
}

// retryReason classifies errors worth another cycle. A deadline only counts
// when it came from the per-call timeout and the caller is still waiting.
func retryReason(ctx context.Context, err error) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	switch {
	case errors.Is(err, store.ErrRevisionConflict):
		return "revision_conflict", true
	case errors.Is(err, store.ErrUnavailable):
		return "unavailable", true
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", true
	}
	return "", false
}

// finalError turns the error left after the loop into the domain vocabulary.
func (s *Service) finalError(ctx context.Context, op string, list List, parentID string, attempts int, err error) error {
	if err == nil || ctx.Err() != nil {
		return err
	}
	if errors.Is(err, store.ErrRevisionConflict) {
		return fmt.Errorf("%w: %s on %s/%s after %d attempts: %v",
			domain.ErrConflictRetryExhausted, op, list.Collection, parentID, attempts, err)
	}
	if errors.Is(err, store.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s on %s/%s after %d attempts: %v",
			domain.ErrUpstreamUnavailable, op, list.Collection, parentID, attempts, err)
	}
	return err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return metrics.OutcomeAlreadyRegistered
	case errors.Is(err, domain.ErrNotAMember):
		return metrics.OutcomeNotAMember
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrConflictRetryExhausted):
		return metrics.OutcomeExhausted
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
