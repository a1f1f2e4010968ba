package app

import (
	"context"
	"log/slog"
	"time"

	"team-manager/internal/app/rest"
	"team-manager/internal/config"
	v1 "team-manager/internal/http/v1"
	"team-manager/internal/lib/logger/sl"
	"team-manager/internal/lib/migrator"
	"team-manager/internal/repo"
	"team-manager/internal/service"
	"team-manager/internal/storage/postgresql"
)

type App struct {
	log     *slog.Logger
	storage *postgresql.Storage
	restApp *rest.App
}

func MustNew(log *slog.Logger) *App {
	cfg := config.MustLoad()

	if err := migrator.RunMigrations(cfg.Postgres, log); err != nil {
		log.Error("failed to run migrations", sl.Err(err))
		panic(err)
	}

	storage := postgresql.Init(cfg.Postgres)

	teamRepo := repo.NewTeamRepo(storage.GetDB())
	profileRepo := repo.NewProfileRepo(storage.GetDB())
	notificationRepo := repo.NewNotificationRepo(storage.GetDB())

	teamService := service.NewTeamService(log, teamRepo, profileRepo, notificationRepo, cfg.Team.MaxMembers)
	profileService := service.NewProfileService(log, profileRepo)
	notificationService := service.NewNotificationService(log, notificationRepo)

	routerDependencies := v1.RouterDependencies{
		TeamService:         teamService,
		ProfileService:      profileService,
		NotificationService: notificationService,
	}

	restApp := rest.New(
		log,
		&routerDependencies,
		cfg.Server.Port,
	)

	return &App{
		log:     log,
		storage: storage,
		restApp: restApp,
	}
}

func (a *App) MustRun() {
	const op = "app.MustRun"
	a.log.With(slog.String("op", op)).Info("starting application")

	if err := a.restApp.Run(); err != nil {
		panic(err)
	}
}

func (a *App) GracefulShutdown() {
	const op = "app.GracefulShutdown"
	a.log.With(slog.String("op", op)).Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.restApp.Stop(ctx); err != nil {
		a.log.Error("failed to stop HTTP server", sl.Err(err))
	}

	if a.storage != nil {
		a.storage.Close()
		a.log.Info("database connection closed")
	}
}
