package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/service"
)

// Messages returned by the community endpoints.
const (
	MsgAlreadySubscribed = "You are already subscribed!"
	MsgSubscribed        = "Subscribed successfully"
	MsgReviewAdded       = "Review added"
)

// CommunityHandler handles the newsletter and review endpoints.
type CommunityHandler struct {
	community service.CommunityService
	logger    *slog.Logger
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(community service.CommunityService, log *slog.Logger) *CommunityHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CommunityHandler{
		community: community,
		logger:    log.With(slog.String("component", "community_handler")),
	}
}

// Subscribe handles POST /subscribe-newsletter and POST /newsletter.
func (h *CommunityHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.community.Subscribe(r.Context(), req.Address()); err != nil {
		message := ""
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			message = MsgAlreadySubscribed
		}
		HandleAPIError(w, r, err, message,
			slog.String("operation", "subscribe"),
			slog.String("document_id", service.NewsletterDocumentID))
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("newsletter subscriber added")
	shared.RespondWithMessage(w, r, MsgSubscribed)
}

// Review handles POST /review.
func (h *CommunityHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.community.AddReview(r.Context(), req.Name, req.Review, req.ID); err != nil {
		HandleAPIError(w, r, err, "",
			slog.String("operation", "add_review"),
			slog.String("document_id", service.ReviewsDocumentID))
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("review appended")
	shared.RespondWithMessage(w, r, MsgReviewAdded)
}
