package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/match-insights/internal/config"
)

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

// NewMigrator opens golang-migrate against DB_URL with the SQL files in dir.
func NewMigrator(cfg config.Config, dir string) (*migrate.Migrate, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	m, err := migrate.New("file://"+filepath.ToSlash(dir), normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// ResolveMigrationsDir returns the first existing directory among explicit,
// MIGRATIONS_DIR and the default locations.
func ResolveMigrationsDir(explicit string) (string, error) {
	candidates := append([]string{explicit, os.Getenv("MIGRATIONS_DIR")}, defaultMigrationDirs...)
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found (checked --dir, MIGRATIONS_DIR, %s)", strings.Join(defaultMigrationDirs, ", "))
}
