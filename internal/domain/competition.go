package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Participant is an entry in a competition's participant list. Username is
// the uniqueness key and is stored normalized.
type Participant struct {
	Name        string `json:"name"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
}

// NewParticipant builds a participant entry with a normalized username.
func NewParticipant(name, username, phone string) (Participant, error) {
	p := Participant{
		Name:        strings.TrimSpace(name),
		Username:    NormalizeKey(username),
		PhoneNumber: strings.TrimSpace(phone),
	}
	if p.Username == "" {
		return Participant{}, NewValidationError("username", "cannot be empty", nil)
	}
	return p, nil
}

// Matches reports whether the participant's name or username folds to name.
func (p Participant) Matches(name string) bool {
	key := NormalizeKey(name)
	if key == "" {
		return false
	}
	return NormalizeKey(p.Name) == key || NormalizeKey(p.Username) == key
}

// Competition is an event created by an organizer account. Participants is
// owned by the competition document and only mutated through registration.
type Competition struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Organizer    string        `json:"organizer"`
	Location     string        `json:"location"`
	EventTime    string        `json:"event_time"`
	Date         string        `json:"date"`
	Images       []string      `json:"images"`
	Category     []string      `json:"category"`
	Price        float64       `json:"price"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewCompetition creates a competition with a fresh ID and no participants.
func NewCompetition(c Competition) (*Competition, error) {
	c.ID = uuid.NewString()
	c.Title = strings.TrimSpace(c.Title)
	c.Participants = []Participant{}
	if c.Images == nil {
		c.Images = []string{}
	}
	if c.Category == nil {
		c.Category = []string{}
	}
	c.CreatedAt = time.Now().UTC()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the competition invariants, including participant uniqueness.
func (c *Competition) Validate() error {
	if c.ID == "" {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.Title == "" {
		return NewValidationError("title", "cannot be empty", nil)
	}
	if c.Price < 0 {
		return NewValidationError("price", "cannot be negative", nil)
	}
	seen := make(map[string]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		key := NormalizeKey(p.Username)
		if _, dup := seen[key]; dup {
			return NewValidationError("participants", "contains duplicate username "+key, ErrAlreadyRegistered)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// InvolvesUser reports whether the competition is organized by userID or has
// a participant matching name.
func (c *Competition) InvolvesUser(name, userID string) bool {
	if userID != "" && c.UserID == userID {
		return true
	}
	for _, p := range c.Participants {
		if p.Matches(name) {
			return true
		}
	}
	return false
}
