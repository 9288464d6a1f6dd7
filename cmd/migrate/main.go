package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

// Usage: migrate [-path DIR] [up|down|version]
func main() {
	log.SetPrefix("coachsched-migrate: ")
	log.SetFlags(0)

	path := flag.String("path", "", "migrations directory (default: nearest migrations/ above the working directory)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	dir := *path
	if dir == "" {
		dir = findMigrationsDir()
	}
	if dir == "" {
		log.Fatal("migrations directory not found; pass -path")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.New("file://"+abs, dbURL)
	if err != nil {
		log.Fatal(err)
	}

	switch flag.Arg(0) {
	case "down":
		apply(m.Down, "down")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal(err)
		}
		log.Printf("version %d (dirty=%v)", version, dirty)
	default:
		apply(m.Up, "up")
	}
}

func apply(step func() error, direction string) {
	if err := step(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}
	log.Printf("migration %s applied", direction)
}

// findMigrationsDir walks up from the working directory so the runner works
// from the repo root, a cmd/ subdirectory, or a test harness alike.
func findMigrationsDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	dir := cwd
	for i := 0; i < 6; i++ {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
