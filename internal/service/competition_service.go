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

// CompetitionService manages competitions and their participant lists.
type CompetitionService interface {
	Create(ctx context.Context, c domain.Competition) (*domain.Competition, error)
	Get(ctx context.Context, id string) (*domain.Competition, error)
	List(ctx context.Context) ([]*domain.Competition, error)
	Delete(ctx context.Context, id string) error

	// ListForUser returns competitions organized by userID or with a
	// participant whose name or username folds to name.
	ListForUser(ctx context.Context, name, userID string) ([]*domain.Competition, error)

	// Participate registers a participant. A username already on the list
	// yields domain.ErrAlreadyRegistered.
	Participate(ctx context.Context, competitionID, name, username, phone string) ([]domain.Participant, error)

	// Unregister removes a participant; domain.ErrNotAMember when absent.
	Unregister(ctx context.Context, competitionID, username string) ([]domain.Participant, error)
}

type competitionServiceImpl struct {
	docs      store.DocumentStore
	registrar Registrar
	logger    *slog.Logger
}

// NewCompetitionService creates a new CompetitionService
func NewCompetitionService(docs store.DocumentStore, registrar Registrar, logger *slog.Logger) (CompetitionService, error) {
	if docs == nil {
		return nil, domain.NewValidationError("docs", "cannot be nil", nil)
	}
	if registrar == nil {
		return nil, domain.NewValidationError("registrar", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &competitionServiceImpl{
		docs:      docs,
		registrar: registrar,
		logger:    logger.With(slog.String("component", "competition_service")),
	}, nil
}

// Create implements CompetitionService.Create
func (s *competitionServiceImpl) Create(ctx context.Context, c domain.Competition) (*domain.Competition, error) {
	competition, err := domain.NewCompetition(c)
	if err != nil {
		return nil, err
	}

	data, err := store.Encode(competition)
	if err != nil {
		return nil, err
	}
	if _, err := s.docs.Create(ctx, store.CollectionCompetitions, competition.ID, data); err != nil {
		return nil, fmt.Errorf("failed to create competition: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("competition created",
		slog.String("competition_id", competition.ID),
		slog.String("user_id", competition.UserID))
	return competition, nil
}

// Get implements CompetitionService.Get
func (s *competitionServiceImpl) Get(ctx context.Context, id string) (*domain.Competition, error) {
	doc, err := s.docs.Get(ctx, store.CollectionCompetitions, id)
	if err != nil {
		return nil, competitionError(id, err)
	}
	return decodeCompetition(doc)
}

// List implements CompetitionService.List
func (s *competitionServiceImpl) List(ctx context.Context) ([]*domain.Competition, error) {
	docs, err := s.docs.List(ctx, store.CollectionCompetitions)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}

	competitions := make([]*domain.Competition, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeCompetition(doc)
		if err != nil {
			return nil, err
		}
		competitions = append(competitions, c)
	}
	return competitions, nil
}

// Delete implements CompetitionService.Delete
func (s *competitionServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, store.CollectionCompetitions, id); err != nil {
		return competitionError(id, err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("competition deleted", slog.String("competition_id", id))
	return nil
}

// ListForUser implements CompetitionService.ListForUser
func (s *competitionServiceImpl) ListForUser(ctx context.Context, name, userID string) ([]*domain.Competition, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Competition
	for _, c := range all {
		if c.InvolvesUser(name, userID) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %w", store.ErrNotFound, ErrNoCompetitionsForUser)
	}
	return matched, nil
}

// Participate implements CompetitionService.Participate
func (s *competitionServiceImpl) Participate(
	ctx context.Context,
	competitionID, name, username, phone string,
) ([]domain.Participant, error) {
	p, err := domain.NewParticipant(name, username, phone)
	if err != nil {
		return nil, err
	}

	entries, err := s.registrar.Register(ctx, registration.Participants, competitionID, p.Username, p)
	if err != nil {
		return nil, competitionError(competitionID, err)
	}
	return registration.DecodeEntries[domain.Participant](entries)
}

// Unregister implements CompetitionService.Unregister
func (s *competitionServiceImpl) Unregister(ctx context.Context, competitionID, username string) ([]domain.Participant, error) {
	entries, err := s.registrar.Unregister(ctx, registration.Participants, competitionID, username)
	if err != nil {
		return nil, competitionError(competitionID, err)
	}
	return registration.DecodeEntries[domain.Participant](entries)
}

// competitionError names the competition in not-found errors and passes
// everything else through.
func competitionError(id string, err error) error {
	if store.IsNotFoundError(err) {
		return fmt.Errorf("%w %s", store.ErrCompetitionNotFound, id)
	}
	return err
}

func decodeCompetition(doc *store.Document) (*domain.Competition, error) {
	var c domain.Competition
	if err := store.Decode(doc.Data, &c); err != nil {
		return nil, fmt.Errorf("competition %s: %w", doc.ID, err)
	}
	if c.ID == "" {
		c.ID = doc.ID
	}
	if c.Participants == nil {
		c.Participants = []domain.Participant{}
	}
	return &c, nil
}
