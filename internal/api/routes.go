package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/competehub/compete-api/internal/api/middleware"
)

// Handlers groups the HTTP handlers mounted by Routes.
type Handlers struct {
	Accounts     *AccountHandler
	Competitions *CompetitionHandler
	Community    *CommunityHandler
	Auth         *middleware.AuthMiddleware
}

// Routes mounts every API endpoint on r. Static paths are registered before
// the catch-all GET /{name}/{id}; chi prefers static segments regardless.
func (h Handlers) Routes(r chi.Router) {
	r.Post("/post_user", h.Accounts.Register)
	r.Post("/login", h.Accounts.Login)
	r.Get("/profile/{username}", h.Accounts.Profile)
	r.Get("/user_accounts", h.Accounts.List)
	r.Get("/username", h.Accounts.UsernameByEmail)

	r.Get("/competitions", h.Competitions.List)
	r.Post("/post_competitions", h.Competitions.Create)
	r.Post("/participate/{id}", h.Competitions.Participate)
	r.Get("/event/{competition}/{id}", h.Competitions.Get)
	r.Post("/event/{competition}/{id}/delete", h.Competitions.Delete)
	r.Post("/event/{competition}/{id}/unregister", h.Competitions.Unregister)

	r.Post("/review", h.Community.Review)
	r.Post("/subscribe-newsletter", h.Community.Subscribe)
	r.Post("/newsletter", h.Community.Subscribe)

	if h.Auth != nil {
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Authenticate)
			r.Get("/me", h.Accounts.Me)
		})
	}

	r.Get("/{name}/{id}", h.Competitions.ListForUser)
}
