// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate up | down | version
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/red11scout/blueallygenaiwebsite/internal/database"
	"github.com/red11scout/blueallygenaiwebsite/internal/logger"
	"github.com/red11scout/blueallygenaiwebsite/pkg/config"
	"github.com/red11scout/blueallygenaiwebsite/pkg/retry"
)

func main() {
	_ = godotenv.Load()

	cfg := config.New()
	log := logger.New("roi-migrate", cfg.Environment, cfg.LogLevel)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate up|down|version")
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required", nil)
	}

	db, err := database.Connect(context.Background(), cfg.DatabaseURL, retry.DefaultConfig(), log)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	mg, err := database.NewMigrator(db.DB)
	if err != nil {
		log.Fatal("Failed to prepare migrations", err)
	}

	switch os.Args[1] {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("Migration failed", err, "command", os.Args[1])
	}

	version, dirty, err := mg.Version()
	if err != nil {
		log.Fatal("Failed to read schema version", err)
	}
	log.Info("Schema version", "version", version, "dirty", dirty)
}
