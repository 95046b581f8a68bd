package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/config"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/database"
	"github.com/IsbatBInHossain/bookstore-cms/internal/infra/logger"
	postgresrepo "github.com/IsbatBInHossain/bookstore-cms/internal/repository/postgres"
	"github.com/IsbatBInHossain/bookstore-cms/internal/usecase"
)

// Installs the role and permission reference data. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zapLogger)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	repos := postgresrepo.NewRepositories(pool)

	if err := usecase.NewSeedService(repos.Roles, zapLogger).Seed(ctx); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	zapLogger.Info("seed completed")
}
