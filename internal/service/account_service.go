package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/competehub/compete-api/internal/domain"
	"github.com/competehub/compete-api/internal/platform/logger"
	"github.com/competehub/compete-api/internal/service/auth"
	"github.com/competehub/compete-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// AccountService provides account registration, login and lookups.
type AccountService interface {
	// Register creates an account. A taken username, email or phone number
	// yields an error matching domain.ErrAlreadyRegistered.
	Register(ctx context.Context, input RegisterAccountInput) (*domain.Account, error)

	// Authenticate checks a password against the account found by username
	// or email. Any mismatch is domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.Account, error)

	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	UsernameByEmail(ctx context.Context, email string) (string, error)
}

// RegisterAccountInput carries the fields of a new account.
type RegisterAccountInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// accountDocument is the stored form of an account; unlike domain.Account
// it serializes the password hash.
type accountDocument struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAccountDocument(a *domain.Account) accountDocument {
	return accountDocument{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		PhoneNumber:  a.PhoneNumber,
		CreatedAt:    a.CreatedAt,
	}
}

func (d accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		PhoneNumber:  d.PhoneNumber,
		CreatedAt:    d.CreatedAt,
	}
}

// accountServiceImpl implements the AccountService interface
type accountServiceImpl struct {
	docs   store.DocumentStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(docs store.DocumentStore, hasher auth.PasswordHasher, logger *slog.Logger) (AccountService, error) {
	if docs == nil {
		return nil, domain.NewValidationError("docs", "cannot be nil", nil)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &accountServiceImpl{
		docs:   docs,
		hasher: hasher,
		logger: logger.With(slog.String("component", "account_service")),
	}, nil
}

// Register implements AccountService.Register
func (s *accountServiceImpl) Register(ctx context.Context, input RegisterAccountInput) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if n := len(input.Password); n < domain.MinPasswordLength || n > domain.MaxPasswordLength {
		return nil, domain.NewValidationError("password",
			fmt.Sprintf("must be between %d and %d characters", domain.MinPasswordLength, domain.MaxPasswordLength), nil)
	}

	// Validate the keys before paying for a bcrypt hash.
	candidate, err := domain.NewAccount(input.Username, input.Email, "pending", input.FirstName, input.LastName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, candidate); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	candidate.PasswordHash = hash

	data, err := store.Encode(toAccountDocument(candidate))
	if err != nil {
		return nil, err
	}

	// The pre-check can race with another registration; the store's unique
	// keys make the insert the final word.
	if _, err := s.docs.Create(ctx, store.CollectionAccounts, candidate.ID, data); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("account insert hit a unique key", slog.String("user_id", candidate.ID))
			return nil, domain.NewValidationError("account", "username, email or phone number is already registered",
				domain.ErrAlreadyRegistered)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info("account created", slog.String("user_id", candidate.ID))
	return candidate, nil
}

// checkAvailable looks up the unique keys concurrently.
func (s *accountServiceImpl) checkAvailable(ctx context.Context, a *domain.Account) error {
	type key struct{ field, value, message string }
	keys := []key{
		{field: "username", value: a.Username, message: "already exists"},
		{field: "email", value: a.Email, message: "is already registered"},
	}
	if a.PhoneNumber != "" {
		keys = append(keys, key{field: "phone_number", value: a.PhoneNumber, message: "is already registered"})
	}

	taken := make([]bool, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		g.Go(func() error {
			found, err := s.docs.FindByField(gctx, store.CollectionAccounts, k.field, k.value)
			if err != nil {
				return fmt.Errorf("failed to check %s availability: %w", k.field, err)
			}
			taken[i] = len(found) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, k := range keys {
		if taken[i] {
			return domain.NewValidationError(k.field, k.message, domain.ErrAlreadyRegistered)
		}
	}
	return nil
}

// Authenticate implements AccountService.Authenticate
func (s *accountServiceImpl) Authenticate(ctx context.Context, usernameOrEmail, password string) (*domain.Account, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	field := "username"
	if strings.Contains(usernameOrEmail, "@") {
		field = "email"
	}
	account, err := s.findOne(ctx, field, domain.NormalizeKey(usernameOrEmail))
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown account")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.String("user_id", account.ID))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	return account, nil
}

// GetByID implements AccountService.GetByID
func (s *accountServiceImpl) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	doc, err := s.docs.Get(ctx, store.CollectionAccounts, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return decodeAccount(doc)
}

// GetByUsername implements AccountService.GetByUsername
func (s *accountServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	key := domain.NormalizeKey(username)
	if key == "" {
		return nil, domain.NewValidationError("username", "cannot be empty", nil)
	}
	return s.findOne(ctx, "username", key)
}

// List implements AccountService.List
func (s *accountServiceImpl) List(ctx context.Context) ([]*domain.Account, error) {
	docs, err := s.docs.List(ctx, store.CollectionAccounts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, doc := range docs {
		a, err := decodeAccount(doc)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// UsernameByEmail implements AccountService.UsernameByEmail
func (s *accountServiceImpl) UsernameByEmail(ctx context.Context, email string) (string, error) {
	key := domain.NormalizeKey(email)
	if key == "" {
		return "", domain.NewValidationError("email", "cannot be empty", nil)
	}
	account, err := s.findOne(ctx, "email", key)
	if err != nil {
		return "", err
	}
	return account.Username, nil
}

func (s *accountServiceImpl) findOne(ctx context.Context, field, value string) (*domain.Account, error) {
	docs, err := s.docs.FindByField(ctx, store.CollectionAccounts, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, store.ErrAccountNotFound
	}
	return decodeAccount(docs[0])
}

func decodeAccount(doc *store.Document) (*domain.Account, error) {
	var d accountDocument
	if err := store.Decode(doc.Data, &d); err != nil {
		return nil, fmt.Errorf("account %s: %w", doc.ID, err)
	}
	if d.ID == "" {
		d.ID = doc.ID
	}
	return d.toDomain(), nil
}
