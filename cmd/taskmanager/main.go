package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sstanqq/web-task-manager/internal/server"
	"github.com/sstanqq/web-task-manager/internal/service"
	db "github.com/sstanqq/web-task-manager/repository/db"
	inmemory "github.com/sstanqq/web-task-manager/repository/inmemory"
)

const shutdownTimeout = 30 * time.Second

// API is the surface main drives. Kept narrow so tests can substitute it.
type API interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// InitializeRepositories connects to Postgres and falls back to the
// in-memory storage when the database is unreachable, so the service
// stays usable for local runs.
func InitializeRepositories(cfg *server.Config) (service.UserRepository, service.TaskRepository, error) {
	dbStorage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		log.Println("[WARN] database unavailable, falling back to in-memory storage:", err)
		inmem := inmemory.NewStorage()
		return inmem, inmem, nil
	}
	return dbStorage, dbStorage, nil
}

func RunMigrations(cfg *server.Config) error {
	return db.Migration(cfg.DBStr, cfg.MigratePath)
}

// StartServer launches the API in the background and returns the signal
// and server-error channels main selects on.
func StartServer(api API, cfg *server.Config) (chan os.Signal, chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Service listening on %s:%d", cfg.Addr, cfg.Port)
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	return sigChan, serverErr
}

func HandleShutdown(api API, sig os.Signal) error {
	log.Printf("[INFO] received signal %v, starting graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	return api.Shutdown(shutdownCtx)
}

func main() {
	log.Println("Starting task manager service...")

	cfg := server.ReadConfig()
	if cfg.SecretKey == "" {
		log.Println("[WARN] SECRET_KEY is not set, tokens will be signed with an empty key")
	}

	if err := RunMigrations(cfg); err != nil {
		log.Println("[WARN] failed to apply migrations:", err)
	} else {
		log.Println("[SUCCESS] migrations applied")
	}

	userRepo, taskRepo, err := InitializeRepositories(cfg)
	if err != nil {
		log.Fatal("[ERROR] failed to initialize repositories:", err)
	}
	if dbStorage, ok := userRepo.(*db.Storage); ok {
		defer dbStorage.Close()
	}

	api := server.NewTaskAPI(userRepo, taskRepo, cfg)
	if api == nil {
		log.Fatal("[ERROR] failed to initialize API")
	}

	sigChan, serverErr := StartServer(api, cfg)

	select {
	case sig := <-sigChan:
		if err := HandleShutdown(api, sig); err != nil {
			log.Println("[ERROR] graceful shutdown failed:", err)
		} else {
			log.Println("[SUCCESS] graceful shutdown complete")
		}

	case err := <-serverErr:
		log.Println("[ERROR] server error:", err)
	}

	log.Println("Service stopped")
}
