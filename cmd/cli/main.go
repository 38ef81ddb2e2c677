package main

import (
	"os"
	"strings"

	"github.com/emailzus/reminder-engine/internal/config"
	"github.com/emailzus/reminder-engine/pkg/logger"
	"github.com/emailzus/reminder-engine/pkg/pg"
)

// Applies database migrations. Run as:
//
//	cli --env=.env --dir=./migrations
func main() {
	if err := config.Load(envPath()); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	dir := argValue("--dir=", "./migrations")
	if err := pg.Migrate(pgConf, dir); err != nil {
		logger.Error("migration failed", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied", "dir", dir)
}

func argValue(prefix, fallback string) string {
	for _, v := range os.Args[1:] {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return fallback
}

// envPath resolves the env file, tolerating a missing default so the binary
// can run on environment variables alone.
func envPath() string {
	p := argValue("--env=", ".env")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
