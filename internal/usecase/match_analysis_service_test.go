package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	matcheventmock "github.com/riskibarqy/match-insights/internal/mocks/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []matchevent.Event {
	return []matchevent.Event{
		{Index: 1, Minute: 0, Second: 0, Type: "Starting XI", Team: "Sevilla", PossessionTeam: "Sevilla"},
		{Index: 2, Minute: 0, Second: 30, Type: "Pass", Team: "Sevilla", PossessionTeam: "Sevilla"},
		{Index: 3, Minute: 1, Second: 0, Type: "Ball Recovery", Team: "Barcelona", PossessionTeam: "Barcelona"},
		{
			Index: 4, Minute: 1, Second: 20, Type: matchevent.TypeCarry, Team: "Barcelona", PossessionTeam: "Barcelona",
			Location: &matchevent.Location{X: 70, Y: 40}, CarryEnd: &matchevent.Location{X: 105, Y: 40},
		},
		{Index: 5, Minute: 2, Second: 0, Type: "Interception", Team: "Sevilla", PossessionTeam: "Sevilla"},
		{
			Index: 6, Minute: 2, Second: 10, Type: matchevent.TypeCarry, Team: "Sevilla", PossessionTeam: "Sevilla",
			Location: &matchevent.Location{X: 60, Y: 10}, CarryEnd: &matchevent.Location{X: 85, Y: 5},
		},
	}
}

func TestAnalyzeEvents_DerivesEveryTable(t *testing.T) {
	t.Parallel()

	got, err := AnalyzeEvents(3773386, sampleEvents())
	require.NoError(t, err)

	assert.Equal(t, []string{"Barcelona", "Sevilla"}, got.Teams)
	assert.Equal(t, 5, got.EventCount)
	require.Len(t, got.Recoveries, 2)
	assert.Equal(t, "Barcelona", got.Recoveries[0].RecoveredBy)
	assert.Equal(t, 30, got.Recoveries[0].RecoveryTime)
	assert.Equal(t, "Sevilla", got.Recoveries[1].RecoveredBy)
	assert.Equal(t, 60, got.Recoveries[1].RecoveryTime)

	assert.Equal(t, []TeamZoneTotal{
		{Team: "Barcelona", FinalThirdEntries: 1, PenaltyAreaEntries: 1},
		{Team: "Sevilla", FinalThirdEntries: 1, PenaltyAreaEntries: 0},
	}, got.ZoneTotals)
	assert.Len(t, got.RecoverySummary, 2)
	assert.NotEmpty(t, got.ZoneEntries)
}

func TestAnalyzeEvents_EmptyStreamIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := AnalyzeEvents(1, []matchevent.Event{{Index: 1, Minute: 0, Second: 0}})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatchAnalysisService_AnalyzeCachesFeedCall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	feed := matcheventmock.NewFeed(t)
	feed.On("FetchEvents", mock.Anything, int64(3773386)).Return(sampleEvents(), nil).Once()

	service := NewMatchAnalysisService(feed, cache.NewStore(time.Minute), CompetitionSeason{}, nil)

	first, err := service.Analyze(ctx, 3773386)
	require.NoError(t, err)
	second, err := service.Analyze(ctx, 3773386)
	require.NoError(t, err)
	assert.Equal(t, first.EventCount, second.EventCount)
}

func TestMatchAnalysisService_AnalyzeValidatesAndWrapsErrors(t *testing.T) {
	t.Parallel()

	feed := matcheventmock.NewFeed(t)
	service := NewMatchAnalysisService(feed, nil, CompetitionSeason{}, nil)

	_, err := service.Analyze(context.Background(), 0)
	require.ErrorIs(t, err, ErrInvalidInput)

	feed.On("FetchEvents", mock.Anything, int64(7)).Return(nil, ErrDependencyUnavailable).Once()
	_, err = service.Analyze(context.Background(), 7)
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestMatchAnalysisService_FeaturedMatchPicksLargestMargin(t *testing.T) {
	t.Parallel()

	feed := matcheventmock.NewFeed(t)
	matches := []matchevent.Match{
		{MatchID: 10, HomeTeam: "Barcelona", AwayTeam: "Eibar", HomeScore: 2, AwayScore: 1, MatchDate: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)},
		{MatchID: 11, HomeTeam: "Barcelona", AwayTeam: "Leganés", HomeScore: 5, AwayScore: 0, MatchDate: time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	feed.On("FetchMatches", mock.Anything, int64(11), int64(90)).Return(matches, nil).Once()

	service := NewMatchAnalysisService(feed, cache.NewStore(time.Minute), CompetitionSeason{CompetitionID: 11, SeasonID: 90}, nil)

	got, err := service.FeaturedMatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.MatchID)

	found, err := service.FindMatch(context.Background(), 11, 90, 10)
	require.NoError(t, err)
	assert.Equal(t, "Barcelona 2-1 Eibar", found.Scoreline())

	_, err = service.FindMatch(context.Background(), 11, 90, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMatchAnalysisService_FeaturedMatchNotConfigured(t *testing.T) {
	t.Parallel()

	service := NewMatchAnalysisService(matcheventmock.NewFeed(t), nil, CompetitionSeason{}, nil)
	_, err := service.FeaturedMatch(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchAnalysisService_ListMatchesSortsByDate(t *testing.T) {
	t.Parallel()

	feed := matcheventmock.NewFeed(t)
	feed.On("FetchMatches", mock.Anything, int64(2), int64(27)).Return([]matchevent.Match{
		{MatchID: 3, MatchDate: time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)},
		{MatchID: 2, MatchDate: time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)},
		{MatchID: 1, MatchDate: time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC)},
	}, nil).Once()

	service := NewMatchAnalysisService(feed, nil, CompetitionSeason{}, nil)
	got, err := service.ListMatches(context.Background(), 2, 27)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{got[0].MatchID, got[1].MatchID, got[2].MatchID})

	_, err = service.ListMatches(context.Background(), 0, 27)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseCompetitionSeason(t *testing.T) {
	t.Parallel()

	got, err := ParseCompetitionSeason(" 37:90 ")
	require.NoError(t, err)
	assert.Equal(t, CompetitionSeason{CompetitionID: 37, SeasonID: 90}, got)
	assert.Equal(t, "37:90", got.String())

	for _, raw := range []string{"", "37", "a:90", "37:b", "0:90"} {
		_, err := ParseCompetitionSeason(raw)
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
	}
}
