package csvfile

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMatchMetrics_ReadsProfileFile(t *testing.T) {
	t.Parallel()

	repo := NewPlayerMetricsRepository("testdata")
	table, err := repo.ListMatchMetrics(context.Background(), playerprofile.Defenders)
	require.NoError(t, err)

	assert.Equal(t, playerprofile.Defenders, table.Profile)
	assert.Equal(t, []string{"clearances", "interceptions", "tackles_won", "pass_completion_pct"}, table.Metrics)
	require.Len(t, table.Rows, 4)

	first := table.Rows[0]
	assert.Equal(t, int64(3775648), first.MatchID)
	assert.Equal(t, "Millie Bright", first.PlayerName)
	assert.Equal(t, "Chelsea FCW", first.Team)
	assert.Equal(t, "Center Back", first.Role)
	assert.Equal(t, "", first.Gender)
	assert.Equal(t, []float64{6, 2, 1, 88.5}, first.Values)

	assert.True(t, math.IsNaN(table.Rows[1].Values[1]), "blank cell is missing")
	assert.Equal(t, int64(3775648), table.Rows[3].MatchID, "float-formatted id")
}

func TestListMatchMetrics_MissingFileIsNotFound(t *testing.T) {
	t.Parallel()

	repo := NewPlayerMetricsRepository(t.TempDir())
	_, err := repo.ListMatchMetrics(context.Background(), playerprofile.Attackers)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestListMatchMetrics_BadMatchID(t *testing.T) {
	t.Parallel()

	repo := NewPlayerMetricsRepository("testdata")
	_, err := repo.ListMatchMetrics(context.Background(), playerprofile.Attackers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid match_id "abc"`)
}

func TestDecode_RequiresIdentityColumns(t *testing.T) {
	t.Parallel()

	_, err := Decode(playerprofile.Attackers, strings.NewReader("player_name,xg\nA,0.1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match_id")
}

func TestDecode_GenderColumnIsKept(t *testing.T) {
	t.Parallel()

	table, err := Decode(playerprofile.Attackers, strings.NewReader("match_id,player_name,gender,xg\n1,A,female,0.1\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "female", table.Rows[0].Gender)
	assert.Equal(t, []string{"xg"}, table.Metrics)
}
