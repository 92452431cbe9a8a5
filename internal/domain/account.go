package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account field limits.
const (
	MaxUsernameLength = 64
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit.
	MaxPasswordLength = 72
)

// Account represents a registered user. Username and Email are stored in
// their normalized form; PasswordHash never leaves the service layer.
type Account struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAccount builds an account with a fresh ID, normalizing the unique keys.
// The caller supplies an already hashed password.
func NewAccount(username, email, passwordHash, firstName, lastName, phone string) (*Account, error) {
	a := &Account{
		ID:           uuid.NewString(),
		Username:     NormalizeKey(username),
		Email:        NormalizeKey(email),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PhoneNumber:  NormalizePhone(phone),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the account invariants.
func (a *Account) Validate() error {
	if a.ID == "" {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if a.Username == "" {
		return NewValidationError("username", "cannot be empty", nil)
	}
	if len(a.Username) > MaxUsernameLength {
		return NewValidationError("username", "is too long", nil)
	}
	if strings.ContainsAny(a.Username, " \t\n/") {
		return NewValidationError("username", "contains invalid characters", nil)
	}
	if a.Email == "" {
		return NewValidationError("email", "cannot be empty", nil)
	}
	if !validateEmailFormat(a.Email) {
		return NewValidationError("email", "has invalid format", nil)
	}
	if a.PasswordHash == "" {
		return NewValidationError("password", "hash cannot be empty", nil)
	}
	return nil
}

// NormalizePhone strips formatting characters so the same number written
// differently maps to one key. An empty result means no phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// validateEmailFormat performs a basic structural check: a non-empty local
// part, an "@", and a domain containing an inner dot.
func validateEmailFormat(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}
