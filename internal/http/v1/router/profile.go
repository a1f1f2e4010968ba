package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"team-manager/internal/http/v1/handler"
	"team-manager/internal/service"
)

type ProfileRouter struct {
	handler *handler.ProfileHandler
}

func NewProfileRouter(profileService *service.ProfileService, log *slog.Logger) *ProfileRouter {
	return &ProfileRouter{
		handler: handler.NewProfileHandler(profileService, log),
	}
}

func (pr *ProfileRouter) SetupRoutes(r chi.Router) {

	r.Route("/profile", func(r chi.Router) {
		r.Post("/register", pr.handler.Register)

		r.Get("/get", pr.handler.Get)
	})

}
