package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"team-manager/internal/app"
	"team-manager/internal/lib/logger"
)

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	log := logger.Setup(os.Getenv("ENV"))

	application := app.MustNew(log)

	go application.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	application.GracefulShutdown()
}
