package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/mentorhood/mentorhood/pkg/config"
	"github.com/mentorhood/mentorhood/pkg/logger"
)

// findMigrations walks up from the working directory, then looks next to
// the executable.
func findMigrations() (string, error) {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		dir := cwd
		for i := 0; i < 6; i++ {
			candidates = append(candidates, filepath.Join(dir, "migrations"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, "migrations"), filepath.Join(dir, "..", "migrations"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return filepath.Abs(c)
		}
	}
	return "", errors.New("migrations directory not found")
}

func run(m *migrate.Migrate, args []string) error {
	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}
	switch cmd {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		if len(args) < 2 {
			return errors.New("usage: migrate steps N")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("steps: %w", err)
		}
		return m.Steps(n)
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Info("Schema version", "version", v, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, down, steps N or version)", cmd)
	}
}

func main() {
	cfg := config.Load()

	path, err := findMigrations()
	if err != nil {
		logger.Error("Cannot locate migrations", "error", err)
		os.Exit(1)
	}

	m, err := migrate.New("file://"+path, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to open migrations", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	if err := run(m, os.Args[1:]); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Migration finished", "path", path)
}
