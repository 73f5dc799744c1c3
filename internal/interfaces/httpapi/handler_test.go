package httpapi

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	matcheventmock "github.com/riskibarqy/match-insights/internal/mocks/domain/matchevent"
	playerprofilemock "github.com/riskibarqy/match-insights/internal/mocks/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/riskibarqy/match-insights/internal/platform/resilience"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubFeedHealth struct {
	snapshot resilience.Snapshot
}

func (s stubFeedHealth) CircuitSnapshot() resilience.Snapshot {
	return s.snapshot
}

type routerFixture struct {
	router http.Handler
	feed   *matcheventmock.Feed
	repo   *playerprofilemock.Repository
}

func newRouterFixture(t *testing.T, health FeedHealth) routerFixture {
	t.Helper()

	feed := matcheventmock.NewFeed(t)
	repo := playerprofilemock.NewRepository(t)
	store := cache.NewStore(time.Minute)

	matches := usecase.NewMatchAnalysisService(feed, store, usecase.CompetitionSeason{CompetitionID: 11, SeasonID: 90}, nil)
	overview := usecase.NewCompetitionOverviewService(matches, store, 2, nil)
	profiles := usecase.NewProfileService(repo, feed, store, usecase.ProfileServiceConfig{Restarts: 4})

	handler := NewHandler(matches, overview, profiles, health, usecase.ClusterParams{
		K:          2,
		Components: 2,
		Space:      usecase.ClusterOnScaled,
	}, nil)
	return routerFixture{
		router: NewRouter(handler, nil, true, []string{"*"}),
		feed:   feed,
		repo:   repo,
	}
}

func (f routerFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()

	var body map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &body))
	return body["data"]
}

func fixtureMatches() []matchevent.Match {
	return []matchevent.Match{
		{
			MatchID: 10, CompetitionID: 11, SeasonID: 90, CompetitionName: "La Liga", SeasonName: "2020/2021",
			HomeTeam: "Barcelona", AwayTeam: "Sevilla", HomeScore: 5, AwayScore: 1,
			MatchDate: time.Date(2021, 3, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			MatchID: 9, CompetitionID: 11, SeasonID: 90, CompetitionName: "La Liga", SeasonName: "2020/2021",
			HomeTeam: "Sevilla", AwayTeam: "Barcelona", HomeScore: 0, AwayScore: 0,
			MatchDate: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func fixtureEvents() []matchevent.Event {
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
		{Index: 7, Minute: 6, Second: 0, Type: "Ball Recovery", Team: "Barcelona", PossessionTeam: "Barcelona"},
	}
}

func fixtureDefenders() playerprofile.MatchMetrics {
	row := func(matchID int64, name, team string, values ...float64) playerprofile.PlayerMatchMetrics {
		return playerprofile.PlayerMatchMetrics{MatchID: matchID, PlayerName: name, Team: team, Role: "Center Back", Values: values}
	}
	return playerprofile.MatchMetrics{
		Profile: playerprofile.Defenders,
		Metrics: []string{"clearances", "interceptions", "tackles_won"},
		Rows: []playerprofile.PlayerMatchMetrics{
			row(1, "Irene Paredes", "Spain", 1, 1.2, 0.9),
			row(1, "Mapi León", "Spain", 1.1, 0.8, 1.2),
			row(2, "Laia Codina", "Spain", 0.9, 1.0, 1.0),
			row(2, "Gerard Piqué", "Barcelona", 10, 10.5, 9.5),
			row(3, "Samuel Umtiti", "Barcelona", 9.8, 10, 10.2),
			row(3, "Clément Lenglet", "Barcelona", 10.3, 9.6, 10),
			row(3, "Nélson Semedo", "Barcelona", 5, math.NaN(), 4),
		},
	}
}

func TestHealthz_ReportsFeedState(t *testing.T) {
	fixture := newRouterFixture(t, nil)
	rec := fixture.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeData(t, rec).(map[string]any)
	assert.Equal(t, "ok", data["status"])

	opened := time.Now()
	degraded := newRouterFixture(t, stubFeedHealth{snapshot: resilience.Snapshot{
		State:               resilience.CircuitStateOpen,
		ConsecutiveFailures: 5,
		OpenedAt:            &opened,
	}})
	rec = degraded.get(t, "/healthz")
	data, _ = decodeData(t, rec).(map[string]any)
	assert.Equal(t, "degraded", data["status"])
}

func TestListMatches_SortedByDate(t *testing.T) {
	fixture := newRouterFixture(t, nil)
	fixture.feed.On("FetchMatches", mock.Anything, int64(11), int64(90)).Return(fixtureMatches(), nil).Once()

	rec := fixture.get(t, "/v1/competitions/11/seasons/90/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	items, _ := decodeData(t, rec).([]any)
	require.Len(t, items, 2)
	first, _ := items[0].(map[string]any)
	assert.EqualValues(t, 9, first["matchId"])
	assert.Equal(t, "2021-02-01", first["matchDate"])
}

func TestListMatches_RejectsBadIDs(t *testing.T) {
	fixture := newRouterFixture(t, nil)

	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/competitions/abc/seasons/90/matches").Code)
	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/competitions/11/seasons/0/matches").Code)
}

func TestGetMatchAnalysis(t *testing.T) {
	fixture := newRouterFixture(t, nil)
	fixture.feed.On("FetchEvents", mock.Anything, int64(10)).Return(fixtureEvents(), nil).Once()
	fixture.feed.On("FetchEvents", mock.Anything, int64(404)).Return(nil, usecase.ErrNotFound).Once()

	rec := fixture.get(t, "/v1/matches/10/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeData(t, rec).(map[string]any)
	assert.Equal(t, []any{"Barcelona", "Sevilla"}, data["teams"])
	recoveries, _ := data["recoveries"].([]any)
	assert.Len(t, recoveries, 3)

	assert.Equal(t, http.StatusNotFound, fixture.get(t, "/v1/matches/404/analysis").Code)
	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/matches/-1/analysis").Code)
}

func TestGetCompetitionOverview(t *testing.T) {
	fixture := newRouterFixture(t, nil)
	fixture.feed.On("FetchMatches", mock.Anything, int64(11), int64(90)).Return(fixtureMatches(), nil).Once()
	fixture.feed.On("FetchEvents", mock.Anything, int64(10)).Return(fixtureEvents(), nil).Once()
	fixture.feed.On("FetchEvents", mock.Anything, int64(9)).Return(nil, usecase.ErrDependencyUnavailable).Once()

	rec := fixture.get(t, "/v1/competitions/11/seasons/90/overview")
	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := decodeData(t, rec).(map[string]any)
	assert.EqualValues(t, 2, data["matches"])
	assert.EqualValues(t, 1, data["analysed"])
	failures, _ := data["failures"].([]any)
	assert.Len(t, failures, 1)
}

func TestProfileEndpoints(t *testing.T) {
	fixture := newRouterFixture(t, nil)
	fixture.repo.On("ListMatchMetrics", mock.Anything, playerprofile.Defenders).Return(fixtureDefenders(), nil).Once()

	rec := fixture.get(t, "/v1/profiles/defenders")
	require.Equal(t, http.StatusOK, rec.Code)
	summary, _ := decodeData(t, rec).(map[string]any)
	assert.EqualValues(t, 1, summary["excludedPlayers"])

	rec = fixture.get(t, "/v1/profiles/defenders/clusters?k=2&components=2")
	require.Equal(t, http.StatusOK, rec.Code)
	clusters, _ := decodeData(t, rec).(map[string]any)
	assert.Equal(t, "scaled", clusters["space"])
	items, _ := clusters["clusters"].([]any)
	assert.Len(t, items, 2)

	rec = fixture.get(t, "/v1/profiles/defenders/elbow?min=1&max=4")
	require.Equal(t, http.StatusOK, rec.Code)
	points, _ := decodeData(t, rec).([]any)
	assert.Len(t, points, 4)
}

func TestProfileEndpoints_RejectInvalidInput(t *testing.T) {
	fixture := newRouterFixture(t, nil)

	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/profiles/goalkeepers").Code)
	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/profiles/defenders/clusters?k=11").Code)
	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/profiles/defenders/clusters?space=umap").Code)
	assert.Equal(t, http.StatusBadRequest, fixture.get(t, "/v1/profiles/defenders/elbow?min=5&max=2").Code)
}

func TestSwaggerRoutes(t *testing.T) {
	fixture := newRouterFixture(t, nil)

	rec := fixture.get(t, "/openapi.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Match Insights API")

	rec = fixture.get(t, "/docs")
	assert.Contains(t, rec.Body.String(), "swagger-ui")
}

func TestRecoverPanic_WritesInternalError(t *testing.T) {
	handler := recoverPanic(nil, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/competitions", nil).WithContext(context.Background()))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
