package api

import (
	"strings"

	"github.com/competehub/compete-api/internal/domain"
)

// Several request fields are accepted under two names: the camelCase
// names sent by existing clients and the snake_case names of the stored
// schema.

// RegisterRequest defines the payload for POST /post_user.
type RegisterRequest struct {
	Username         string `json:"username"     validate:"required,max=64"`
	Email            string `json:"email"        validate:"required,email"`
	Password         string `json:"password"     validate:"required,min=8,max=72"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PhoneNumber      string `json:"phoneNumber"`
	PhoneNumberSnake string `json:"phone_number"`
}

// Phone returns the phone number under whichever name it was sent.
func (r RegisterRequest) Phone() string {
	return firstNonEmpty(r.PhoneNumber, r.PhoneNumberSnake)
}

// LoginRequest defines the payload for POST /login.
type LoginRequest struct {
	UsernameOrEmail      string `json:"usernameOrEmail"   validate:"required_without=UsernameOrEmailSnake"`
	UsernameOrEmailSnake string `json:"username_or_email"`
	Password             string `json:"password"          validate:"required"`
}

// Identifier returns the username or email under whichever name it was sent.
func (r LoginRequest) Identifier() string {
	return firstNonEmpty(r.UsernameOrEmail, r.UsernameOrEmailSnake)
}

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	PhoneNumber string `json:"phone_number"`
}

// UsernameResponse is returned by GET /username.
type UsernameResponse struct {
	Username string `json:"username"`
}

// CreateCompetitionRequest defines the payload for POST /post_competitions.
type CreateCompetitionRequest struct {
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"       validate:"required"`
	Description string   `json:"description"`
	Organizer   string   `json:"organizer"`
	Location    string   `json:"location"`
	EventTime   string   `json:"event_time"`
	Time        string   `json:"time"`
	Date        string   `json:"date"`
	Images      []string `json:"images"`
	Category    []string `json:"category"`
	Categories  []string `json:"categories"`
	Price       float64  `json:"price"       validate:"gte=0"`
}

// ToDomain converts the request into an unsaved competition.
func (r CreateCompetitionRequest) ToDomain() domain.Competition {
	return domain.Competition{
		UserID:      strings.TrimSpace(r.UserID),
		Title:       r.Title,
		Description: r.Description,
		Organizer:   r.Organizer,
		Location:    r.Location,
		EventTime:   firstNonEmpty(r.EventTime, r.Time),
		Date:        r.Date,
		Images:      r.Images,
		Category:    r.categories(),
		Price:       r.Price,
	}
}

func (r CreateCompetitionRequest) categories() []string {
	if len(r.Category) > 0 {
		return r.Category
	}
	return r.Categories
}

// CreatedResponse carries the ID of a newly created document.
type CreatedResponse struct {
	ID string `json:"id"`
}

// ParticipateRequest defines the payload for POST /participate/{id}.
type ParticipateRequest struct {
	Name             string `json:"name"`
	Username         string `json:"username"     validate:"required"`
	PhoneNumber      string `json:"phoneNumber"`
	PhoneNumberSnake string `json:"phone_number"`
}

// Phone returns the phone number under whichever name it was sent.
func (r ParticipateRequest) Phone() string {
	return firstNonEmpty(r.PhoneNumber, r.PhoneNumberSnake)
}

// UnregisterRequest defines the payload for POST /event/{competition}/{id}/unregister.
type UnregisterRequest struct {
	Username string `json:"username" validate:"required"`
}

// ParticipantsResponse is returned after a participant list changed.
type ParticipantsResponse struct {
	Message      string               `json:"message"`
	Participants []domain.Participant `json:"participants"`
}

// SubscribeRequest defines the payload for the newsletter endpoints.
// passedEmail is the legacy name of the field.
type SubscribeRequest struct {
	Email       string `json:"email"       validate:"required_without=PassedEmail"`
	PassedEmail string `json:"passedEmail"`
}

// Address returns the email under whichever name it was sent.
func (r SubscribeRequest) Address() string {
	return firstNonEmpty(r.Email, r.PassedEmail)
}

// ReviewRequest defines the payload for POST /review.
type ReviewRequest struct {
	Name   string `json:"name"`
	Review string `json:"review" validate:"required"`
	ID     string `json:"id"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
