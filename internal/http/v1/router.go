package v1

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"team-manager/internal/http/v1/router"
	"team-manager/internal/service"
)

type Router interface {
	SetupRoutes(r chi.Router)
}

type RouterDependencies struct {
	TeamService         *service.TeamService
	ProfileService      *service.ProfileService
	NotificationService *service.NotificationService
}

func SetupRoutes(r chi.Router, deps *RouterDependencies, log *slog.Logger) {
	routers := []Router{
		router.NewTeamRouter(deps.TeamService, log),
		router.NewProfileRouter(deps.ProfileService, log),
		router.NewNotificationRouter(deps.NotificationService, deps.TeamService, log),
	}

	for _, serviceRouter := range routers {
		serviceRouter.SetupRoutes(r)
	}
}
