package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/competehub/compete-api/internal/api/middleware"
	"github.com/competehub/compete-api/internal/api/shared"
	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/service"
	"github.com/competehub/compete-api/internal/service/auth"
)

// AccountHandler handles account registration, login and lookups.
type AccountHandler struct {
	accounts   service.AccountService
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
func NewAccountHandler(accounts service.AccountService, jwtService auth.JWTService, log *slog.Logger) *AccountHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AccountHandler{
		accounts:   accounts,
		jwtService: jwtService,
		logger:     log.With(slog.String("component", "account_handler")),
	}
}

// Register handles POST /post_user.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accounts.Register(r.Context(), service.RegisterAccountInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.Phone(),
	})
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "register_account"))
		return
	}

	token, ok := h.issueToken(w, r, account)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:       token,
		UserID:      account.ID,
		Username:    account.Username,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		PhoneNumber: account.PhoneNumber,
	})
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Identifier(), req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "login"))
		return
	}

	token, ok := h.issueToken(w, r, account)
	if !ok {
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token:       token,
		UserID:      account.ID,
		Username:    account.Username,
		PhoneNumber: account.PhoneNumber,
	})
}

// Profile handles GET /profile/{username}.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username, ok := requirePathParam(w, r, "username")
	if !ok {
		return
	}

	account, err := h.accounts.GetByUsername(r.Context(), username)
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "get_profile"))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, account)
}

// List handles GET /user_accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "list_accounts"))
		return
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, accounts)
}

// UsernameByEmail handles GET /username?email=.
func (h *AccountHandler) UsernameByEmail(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email query parameter is required")
		return
	}

	username, err := h.accounts.UsernameByEmail(r.Context(), email)
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "username_by_email"))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UsernameResponse{Username: username})
}

// Me handles GET /me and returns the account of the bearer token.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		HandleAPIError(w, r, auth.ErrMissingToken, "", slog.String("operation", "get_me"))
		return
	}

	account, err := h.accounts.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "", slog.String("operation", "get_me"), slog.String("user_id", userID))
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) issueToken(w http.ResponseWriter, r *http.Request, account *domain.Account) (string, bool) {
	token, err := h.jwtService.GenerateToken(r.Context(), account.ID, account.Username)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("failed to generate token", slog.String("user_id", account.ID))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return "", false
	}
	return token, true
}
