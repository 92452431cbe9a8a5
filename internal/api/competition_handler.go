package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/service"
)

// Messages returned by the participation endpoints.
const (
	MsgAlreadyParticipating = "You are already registered for this event!"
	MsgParticipationAdded   = "Registration successful"
	MsgParticipationRemoved = "Unregistered successfully"
	MsgCompetitionDeleted   = "Competition deleted"
)

// CompetitionHandler handles competition CRUD and participation.
type CompetitionHandler struct {
	competitions service.CompetitionService
	logger       *slog.Logger
}

// NewCompetitionHandler creates a new CompetitionHandler.
func NewCompetitionHandler(competitions service.CompetitionService, log *slog.Logger) *CompetitionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CompetitionHandler{
		competitions: competitions,
		logger:       log.With(slog.String("component", "competition_handler")),
	}
}

// Create handles POST /post_competitions.
func (h *CompetitionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCompetitionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	competition, err := h.competitions.Create(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "create_competition"))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CreatedResponse{ID: competition.ID})
}

// List handles GET /competitions.
func (h *CompetitionHandler) List(w http.ResponseWriter, r *http.Request) {
	competitions, err := h.competitions.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "list_competitions"))
		return
	}
	if competitions == nil {
		competitions = []*domain.Competition{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, competitions)
}

// Get handles GET /event/{competition}/{id}. The {competition} segment is
// informational; the document is addressed by {id}.
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathParam(w, r, "id")
	if !ok {
		return
	}

	competition, err := h.competitions.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "", competitionAttrs(r, id, "get_competition")...)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, competition)
}

// Delete handles POST /event/{competition}/{id}/delete.
func (h *CompetitionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.competitions.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "", competitionAttrs(r, id, "delete_competition")...)
		return
	}
	shared.RespondWithMessage(w, r, MsgCompetitionDeleted)
}

// ListForUser handles GET /{name}/{id}: competitions organized by account
// {id} or with a participant whose name or username folds to {name}.
func (h *CompetitionHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	userID := chi.URLParam(r, "id")

	competitions, err := h.competitions.ListForUser(r.Context(), name, userID)
	if err != nil {
		HandleAPIError(w, r, err, "",
			slog.String("operation", "list_competitions_for_user"),
			slog.String("user_id", userID))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, competitions)
}

// Participate handles POST /participate/{id}.
func (h *CompetitionHandler) Participate(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathParam(w, r, "id")
	if !ok {
		return
	}
	var req ParticipateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	participants, err := h.competitions.Participate(r.Context(), id, req.Name, req.Username, req.Phone())
	if err != nil {
		message := ""
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			message = MsgAlreadyParticipating
		}
		HandleAPIError(w, r, err, message, competitionAttrs(r, id, "participate")...)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("participant registered",
		slog.String("competition_id", id),
		slog.Int("participants", len(participants)))
	shared.RespondWithJSON(w, r, http.StatusOK, ParticipantsResponse{
		Message:      MsgParticipationAdded,
		Participants: participants,
	})
}

// Unregister handles POST /event/{competition}/{id}/unregister.
func (h *CompetitionHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, ok := requirePathParam(w, r, "id")
	if !ok {
		return
	}
	var req UnregisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	participants, err := h.competitions.Unregister(r.Context(), id, req.Username)
	if err != nil {
		HandleAPIError(w, r, err, "", competitionAttrs(r, id, "unregister")...)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("participant removed",
		slog.String("competition_id", id),
		slog.Int("participants", len(participants)))
	shared.RespondWithJSON(w, r, http.StatusOK, ParticipantsResponse{
		Message:      MsgParticipationRemoved,
		Participants: participants,
	})
}

func competitionAttrs(r *http.Request, id, operation string) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("competition_id", id),
	}
	if segment := chi.URLParam(r, "competition"); segment != "" {
		attrs = append(attrs, slog.String("competition_segment", segment))
	}
	return attrs
}
