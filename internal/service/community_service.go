package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/service/registration"
	"github.com/competehub/compete-api/internal/store"
)

// Fixed documents of the reviews collection holding the community lists.
const (
	NewsletterDocumentID = "newsletter"
	ReviewsDocumentID    = "general"
)

// CommunityService handles the newsletter subscriber list and general reviews.
type CommunityService interface {
	// EnsureDocuments creates the list documents when absent.
	EnsureDocuments(ctx context.Context) error

	// Subscribe adds an email to the newsletter; a folded duplicate yields
	// domain.ErrAlreadyRegistered.
	Subscribe(ctx context.Context, email string) error

	AddReview(ctx context.Context, name, text, id string) error
}

type communityServiceImpl struct {
	docs      store.DocumentStore
	registrar Registrar
	logger    *slog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(docs store.DocumentStore, registrar Registrar, logger *slog.Logger) (CommunityService, error) {
	if docs == nil {
		return nil, domain.NewValidationError("docs", "cannot be nil", nil)
	}
	if registrar == nil {
		return nil, domain.NewValidationError("registrar", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &communityServiceImpl{
		docs:      docs,
		registrar: registrar,
		logger:    logger.With(slog.String("component", "community_service")),
	}, nil
}

// EnsureDocuments implements CommunityService.EnsureDocuments
func (s *communityServiceImpl) EnsureDocuments(ctx context.Context) error {
	seeds := []struct {
		id   string
		list registration.List
	}{
		{id: NewsletterDocumentID, list: registration.Newsletter},
		{id: ReviewsDocumentID, list: registration.Reviews},
	}

	for _, seed := range seeds {
		fields := store.Fields{}
		if err := fields.Set(seed.list.Field, []any{}); err != nil {
			return err
		}
		body, err := fields.Encode()
		if err != nil {
			return err
		}

		_, err = s.docs.Create(ctx, seed.list.Collection, seed.id, body)
		switch {
		case err == nil:
			logger.FromContextOrDefault(ctx, s.logger).Info("list document created",
				slog.String("collection", seed.list.Collection),
				slog.String("id", seed.id))
		case store.IsDuplicateError(err):
			// already there
		default:
			return fmt.Errorf("failed to ensure %s/%s: %w", seed.list.Collection, seed.id, err)
		}
	}
	return nil
}

// Subscribe implements CommunityService.Subscribe
func (s *communityServiceImpl) Subscribe(ctx context.Context, email string) error {
	sub, err := domain.NewSubscriber(email)
	if err != nil {
		return err
	}
	_, err = s.registrar.Register(ctx, registration.Newsletter, NewsletterDocumentID, sub.Email, sub)
	return err
}

// AddReview implements CommunityService.AddReview
func (s *communityServiceImpl) AddReview(ctx context.Context, name, text, id string) error {
	review, err := domain.NewReview(name, text, id)
	if err != nil {
		return err
	}
	_, err = s.registrar.Append(ctx, registration.Reviews, ReviewsDocumentID, review)
	return err
}
