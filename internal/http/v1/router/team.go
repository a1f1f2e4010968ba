package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"team-manager/internal/http/v1/handler"
	"team-manager/internal/service"
)

type TeamRouter struct {
	handler *handler.TeamHandler
}

func NewTeamRouter(teamService *service.TeamService, log *slog.Logger) *TeamRouter {
	return &TeamRouter{
		handler: handler.NewTeamHandler(teamService, log),
	}
}

func (tr *TeamRouter) SetupRoutes(r chi.Router) {

	r.Route("/team", func(r chi.Router) {
		r.Post("/create", tr.handler.CreateTeam)
		r.Post("/join", tr.handler.JoinByCode)
		r.Post("/invite", tr.handler.Invite)
		r.Post("/removeMember", tr.handler.RemoveMember)
		r.Post("/leave", tr.handler.Leave)
		r.Post("/dissolve", tr.handler.Dissolve)

		r.Get("/my", tr.handler.GetMyTeam)
		r.Get("/search", tr.handler.SearchCandidate)
	})

}
