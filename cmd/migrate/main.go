package main

import (
	"os"

	"focusflow/backend/internal/config"
	"focusflow/backend/internal/db"
	"focusflow/backend/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		logger.Error("run migrations", "error", err, "dir", cfg.MigrationsDir)
		os.Exit(1)
	}

	logger.Info("migrations applied successfully", "dir", cfg.MigrationsDir)
}
