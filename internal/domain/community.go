package domain

import "strings"

// Subscriber is an entry in the newsletter list, keyed by normalized email.
type Subscriber struct {
	Email string `json:"email"`
}

// NewSubscriber normalizes and validates a newsletter email.
func NewSubscriber(email string) (Subscriber, error) {
	s := Subscriber{Email: NormalizeKey(email)}
	if s.Email == "" {
		return Subscriber{}, NewValidationError("email", "cannot be empty", nil)
	}
	if !validateEmailFormat(s.Email) {
		return Subscriber{}, NewValidationError("email", "has invalid format", nil)
	}
	return s, nil
}

// Review is a free-text review appended to the general reviews list.
type Review struct {
	Name   string `json:"name"`
	Review string `json:"review"`
	ID     string `json:"id"`
}

// NewReview trims and validates a review.
func NewReview(name, text, id string) (Review, error) {
	r := Review{
		Name:   strings.TrimSpace(name),
		Review: strings.TrimSpace(text),
		ID:     strings.TrimSpace(id),
	}
	if r.Review == "" {
		return Review{}, NewValidationError("review", "cannot be empty", nil)
	}
	return r, nil
}
