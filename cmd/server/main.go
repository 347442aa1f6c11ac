// Package main implements the entry point for the taskvault server, a
// task-tracking backend with file attachments in S3-compatible object
// storage and SQS-style task notifications.
package main

import (
	"context"
	"log"
	"log/slog"
)

func main() {
	ctx := context.Background()

	app, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
