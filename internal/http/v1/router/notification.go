package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"team-manager/internal/http/v1/handler"
	"team-manager/internal/service"
)

type NotificationRouter struct {
	handler *handler.NotificationHandler
}

func NewNotificationRouter(
	notifService *service.NotificationService,
	teamService *service.TeamService,
	log *slog.Logger) *NotificationRouter {
	return &NotificationRouter{
		handler: handler.NewNotificationHandler(notifService, teamService, log),
	}
}

func (nr *NotificationRouter) SetupRoutes(r chi.Router) {

	r.Route("/notifications", func(r chi.Router) {
		r.Post("/accept", nr.handler.Accept)
		r.Post("/decline", nr.handler.Decline)
		r.Post("/markRead", nr.handler.MarkRead)

		r.Get("/list", nr.handler.List)
		r.Get("/unreadCount", nr.handler.UnreadCount)
	})

}
