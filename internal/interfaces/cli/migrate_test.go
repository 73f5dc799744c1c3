package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	version uint
	dirty   bool
	err     error
	closed  bool
}

func (m *fakeMigrator) Up() error {
	m.calls = append(m.calls, "up")
	return m.err
}

func (m *fakeMigrator) Steps(n int) error {
	m.calls = append(m.calls, "steps")
	m.steps = n
	return m.err
}

func (m *fakeMigrator) Migrate(v uint) error {
	m.calls = append(m.calls, "migrate")
	m.version = v
	return m.err
}

func (m *fakeMigrator) Force(v int) error {
	m.calls = append(m.calls, "force")
	m.version = uint(v)
	return m.err
}

func (m *fakeMigrator) Version() (uint, bool, error) { return m.version, m.dirty, m.err }

func (m *fakeMigrator) Close() (error, error) {
	m.closed = true
	return nil, nil
}

func runMigrate(t *testing.T, m *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	f := newCLIFixture(t)
	opts := f.options(nil)
	opts.OpenMigrator = func(config.Config, string) (Migrator, error) { return m, nil }

	var out bytes.Buffer
	root := NewRootCommand(opts)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"migrate"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateUp_NoChangeIsNotAnError(t *testing.T) {
	m := &fakeMigrator{err: migrate.ErrNoChange}

	_, err := runMigrate(t, m, "up")
	require.NoError(t, err)
	assert.Equal(t, []string{"up"}, m.calls)
	assert.True(t, m.closed)
}

func TestMigrateDown_DefaultsToOneStep(t *testing.T) {
	m := &fakeMigrator{}

	_, err := runMigrate(t, m, "down")
	require.NoError(t, err)
	assert.Equal(t, -1, m.steps)

	_, err = runMigrate(t, &fakeMigrator{}, "down", "0")
	assert.Error(t, err)
}

func TestMigrateGotoAndForce(t *testing.T) {
	m := &fakeMigrator{}
	_, err := runMigrate(t, m, "goto", "1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), m.version)

	_, err = runMigrate(t, &fakeMigrator{}, "force", "-1")
	assert.Error(t, err)
}

func TestMigrateVersion(t *testing.T) {
	out, err := runMigrate(t, &fakeMigrator{version: 1, dirty: true}, "version")
	require.NoError(t, err)
	assert.Equal(t, "version: 1\ndirty: true\n", out)

	out, err = runMigrate(t, &fakeMigrator{err: migrate.ErrNilVersion}, "version")
	require.NoError(t, err)
	assert.Equal(t, "version: none\ndirty: false\n", out)
}

func TestParseMigrationArgs(t *testing.T) {
	steps, err := parseSteps(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	_, err = parseSteps([]string{"two"})
	assert.Error(t, err)

	v, err := parseVersion(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = parseTarget("x")
	assert.Error(t, err)
}
