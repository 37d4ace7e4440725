package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/taskboard/config"
	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/realtime"
	"github.com/example/taskboard/modules/task"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Taskboard ===")

	cfg, err := config.Load(os.Getenv("TASKBOARD_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	realtimeModule, err := realtime.NewModule(cfg.Server.BroadcastScope)
	if err != nil {
		log.Fatalf("Failed to create realtime module: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(auth.NewModule(cfg.Auth, cfg.Storage.SQLitePath))
	app.Register(task.NewModule(cfg.Storage.SQLitePath))
	app.Register(realtimeModule)
	app.Register(api.NewModule(cfg.Server, realtimeModule.GetHub()))

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.Server.Port)
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  POST   /api/v1/auth/signup      - Register a new user")
	log.Println("  POST   /api/v1/auth/signin      - Login and get a token")
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/v1/profile          - Get current user profile")
	log.Println("  POST   /api/v1/tasks            - Create a task")
	log.Println("  GET    /api/v1/tasks            - List tasks (filterable)")
	log.Println("  GET    /api/v1/tasks/by-status  - Board view grouped by status")
	log.Println("  GET    /api/v1/tasks/:id        - Get a task")
	log.Println("  PATCH  /api/v1/tasks/:id        - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id        - Delete a task")
	log.Println("")
	log.Println("  Realtime:")
	log.Println("  GET    /ws/tasks                - WebSocket task event stream")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
