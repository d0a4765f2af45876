package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"user-profile-service/cmd/api/app"
	"user-profile-service/cmd/api/server"
)

func main() {
	ctx, stop := server.WithSignal(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		// the structured logger may not exist yet
		log.Fatalf("failed to start application: %v", err)
	}

	if err := a.Run(ctx); err != nil {
		a.Logger.Error("application exited with error", zap.Error(err))
		stop()
		log.Fatalf("application exited with error: %v", err)
	}
}
