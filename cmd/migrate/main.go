package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/database"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "maximum number of migrations to apply or roll back (0 = all)")
	dir := flag.String("dir", database.MigrationsDir, "migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	direction := migrate.Up
	if *down {
		direction = migrate.Down
		if *steps == 0 {
			*steps = 1
		}
	}

	n, err := database.Migrate(db, *dir, direction, *steps)
	if err != nil {
		log.Fatalf("Migration failed after %d step(s): %v", n, err)
	}
	if *down {
		log.Printf("Rolled back %d migration(s)", n)
		return
	}
	log.Printf("Applied %d migration(s)", n)
}
