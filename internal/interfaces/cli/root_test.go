package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/match-insights/internal/app"
	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	matcheventmock "github.com/riskibarqy/match-insights/internal/mocks/domain/matchevent"
	playerprofilemock "github.com/riskibarqy/match-insights/internal/mocks/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cliFixture struct {
	feed *matcheventmock.Feed
	repo *playerprofilemock.Repository
	cfg  config.Config
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	return &cliFixture{
		feed: matcheventmock.NewFeed(t),
		repo: playerprofilemock.NewRepository(t),
		cfg: config.Config{
			FeaturedCompetition: usecase.CompetitionSeason{CompetitionID: 11, SeasonID: 90},
			PlayerMetricsDir:    t.TempDir(),
		},
	}
}

func (f *cliFixture) options(writer MetricsWriter) Options {
	return Options{
		Logger: logging.NewNop(),
		Load:   func() (config.Config, error) { return f.cfg, nil },
		Build: func(cfg config.Config, logger *logging.Logger) (*app.Services, error) {
			matches := usecase.NewMatchAnalysisService(f.feed, nil, cfg.FeaturedCompetition, logger)
			return &app.Services{
				Matches:  matches,
				Overview: usecase.NewCompetitionOverviewService(matches, nil, 2, logger),
				Profiles: usecase.NewProfileService(f.repo, f.feed, nil, usecase.ProfileServiceConfig{Restarts: 3, Logger: logger}),
				Cluster:  usecase.ClusterParams{K: 2, Components: 2, Space: usecase.ClusterOnScaled},
			}, nil
		},
		OpenMetricsWriter: func(config.Config, *logging.Logger) (MetricsWriter, func() error, error) {
			if writer == nil {
				return nil, nil, errors.New("no database")
			}
			return writer, func() error { return nil }, nil
		},
	}
}

func (f *cliFixture) run(t *testing.T, writer MetricsWriter, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(f.options(writer))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleMatches() []matchevent.Match {
	return []matchevent.Match{
		{MatchID: 10, HomeTeam: "Barcelona", AwayTeam: "Sevilla", HomeScore: 5, AwayScore: 1, MatchDate: time.Date(2021, 3, 6, 0, 0, 0, 0, time.UTC)},
		{MatchID: 9, HomeTeam: "Sevilla", AwayTeam: "Barcelona", MatchDate: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func sampleEvents() []matchevent.Event {
	return []matchevent.Event{
		{Index: 1, Minute: 0, Second: 30, Type: "Pass", Team: "Sevilla", PossessionTeam: "Sevilla"},
		{Index: 2, Minute: 1, Second: 0, Type: "Ball Recovery", Team: "Barcelona", PossessionTeam: "Barcelona"},
		{
			Index: 3, Minute: 1, Second: 20, Type: matchevent.TypeCarry, Team: "Barcelona", PossessionTeam: "Barcelona",
			Location: &matchevent.Location{X: 70, Y: 40}, CarryEnd: &matchevent.Location{X: 105, Y: 40},
		},
		{Index: 4, Minute: 2, Second: 0, Type: "Interception", Team: "Sevilla", PossessionTeam: "Sevilla"},
		{Index: 5, Minute: 6, Second: 0, Type: "Ball Recovery", Team: "Barcelona", PossessionTeam: "Barcelona"},
	}
}

func TestMatchesCommand_UsesFeaturedSeason(t *testing.T) {
	f := newCLIFixture(t)
	f.feed.On("FetchMatches", mock.Anything, int64(11), int64(90)).Return(sampleMatches(), nil).Once()

	out, err := f.run(t, nil, "matches")
	require.NoError(t, err)
	assert.Contains(t, out, "2021-02-01")
	assert.Contains(t, out, "5-1")
}

func TestRecoveryCommand_FeaturedMatch(t *testing.T) {
	f := newCLIFixture(t)
	f.feed.On("FetchMatches", mock.Anything, int64(11), int64(90)).Return(sampleMatches(), nil).Once()
	f.feed.On("FetchEvents", mock.Anything, int64(10)).Return(sampleEvents(), nil).Once()

	out, err := f.run(t, nil, "recovery")
	require.NoError(t, err)
	assert.Contains(t, out, "Barcelona")
	assert.Contains(t, out, "135.0")
}

func TestZonesCommand_JSON(t *testing.T) {
	f := newCLIFixture(t)
	f.feed.On("FetchEvents", mock.Anything, int64(10)).Return(sampleEvents(), nil).Once()

	out, err := f.run(t, nil, "zones", "--match", "10", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Team": "Barcelona"`)
	assert.Contains(t, out, `"PenaltyAreaEntries": 1`)
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, nil, "competitions", "-o", "xml")
	require.Error(t, err)
}

func TestClustersCommand_RejectsUnknownProfile(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, nil, "clusters", "--profile", "goalkeepers")
	require.Error(t, err)
}

type recordingWriter struct {
	tables []playerprofile.MatchMetrics
}

func (w *recordingWriter) ReplaceMatchMetrics(_ context.Context, table playerprofile.MatchMetrics) (int, error) {
	w.tables = append(w.tables, table)
	return len(table.Rows) * len(table.Metrics), nil
}

func TestImportMetricsCommand_DecodesAndWrites(t *testing.T) {
	f := newCLIFixture(t)
	path := filepath.Join(f.cfg.PlayerMetricsDir, "defenders.csv")
	csv := "match_id,player_name,team,tackles_won,clearances\n" +
		"7,Millie Bright,Chelsea FCW,2,5\n" +
		"8,Millie Bright,Chelsea FCW,1,NA\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	writer := &recordingWriter{}
	out, err := f.run(t, writer, "import-metrics", "--profile", "defenders")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 rows for defenders")

	require.Len(t, writer.tables, 1)
	assert.Equal(t, []string{"tackles_won", "clearances"}, writer.tables[0].Metrics)
	assert.Len(t, writer.tables[0].Rows, 2)
}

func TestImportMetricsCommand_MissingFile(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, &recordingWriter{}, "import-metrics", "--file", filepath.Join(t.TempDir(), "none.csv"))
	require.Error(t, err)
}
