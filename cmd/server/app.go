package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/cgvega/taskvault/internal/config"
	"github.com/cgvega/taskvault/internal/platform/awsx"
	"github.com/cgvega/taskvault/internal/platform/logger"
	"github.com/cgvega/taskvault/internal/platform/postgres"
	"github.com/cgvega/taskvault/internal/service"
	"github.com/cgvega/taskvault/internal/service/auth"
	"github.com/cgvega/taskvault/internal/storage"
	"github.com/cgvega/taskvault/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore

	// Storage gateway capabilities
	objects storage.ObjectStore
	queue   storage.NotificationQueue

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      service.TaskService
	fileService      service.FileService
}

// newApplication loads configuration and wires all application components:
// logging, database (with migrations), the storage gateway, stores and
// services.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"bucket", cfg.Storage.Bucket,
		"queue", cfg.Queue.Name)

	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, err
	}

	objects, queue, err := setupStorageGateway(ctx, cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	userStore := postgres.NewPostgresUserStore(db, bcrypt.DefaultCost)
	taskStore := postgres.NewPostgresTaskStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	taskService, err := service.NewTaskService(taskStore, db, objects, queue, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	fileService, err := service.NewFileService(taskStore, db, objects, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create file service: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           log,
		db:               db,
		userStore:        userStore,
		taskStore:        taskStore,
		objects:          objects,
		queue:            queue,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		taskService:      taskService,
		fileService:      fileService,
	}, nil
}

// setupStorageGateway builds the S3 object store and SQS notification
// queue from configuration and verifies the bucket exists, creating it if
// necessary.
func setupStorageGateway(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
) (storage.ObjectStore, storage.NotificationQueue, error) {
	awsCfg, err := awsx.LoadAWSConfig(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	objects := awsx.NewS3ObjectStore(awsx.NewS3Client(awsCfg, cfg.Storage), cfg.Storage.Bucket, cfg.Storage.Region)
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure bucket %q: %w", cfg.Storage.Bucket, err)
	}
	log.Info("object storage ready", "bucket", cfg.Storage.Bucket)

	queue := awsx.NewSQSNotificationQueue(awsx.NewSQSClient(awsCfg), cfg.Queue.URL)
	return objects, queue, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
