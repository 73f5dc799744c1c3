package app

import (
	"path/filepath"
	"testing"

	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMigrationsDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", "")

	got, err := ResolveMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	t.Setenv("MIGRATIONS_DIR", dir)
	got, err = ResolveMigrationsDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestNewMigrator_RequiresDBURL(t *testing.T) {
	_, err := NewMigrator(config.Config{}, t.TempDir())
	assert.ErrorContains(t, err, "DB_URL")
}
