package statsbomb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/match-insights/internal/platform/resilience"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const matchesFixture = `[
  {
    "match_id": 3775648,
    "match_date": "2021-05-09",
    "kick_off": "15:00:00.000",
    "competition": {"competition_id": 37, "country_name": "England", "competition_name": "FA Women's Super League"},
    "season": {"season_id": 90, "season_name": "2020/2021"},
    "home_team": {"home_team_id": 971, "home_team_name": "Chelsea FCW", "home_team_gender": "female"},
    "away_team": {"away_team_id": 975, "away_team_name": "Reading WFC", "away_team_gender": "female"},
    "home_score": 5,
    "away_score": 0,
    "match_status": "available",
    "match_week": 22
  },
  {
    "match_id": 3775650,
    "match_date": "2021-05-09",
    "competition": {"competition_id": 37, "competition_name": "FA Women's Super League"},
    "season": {"season_id": 90, "season_name": "2020/2021"},
    "home_team": {"home_team_name": "Arsenal WFC", "home_team_gender": "female"},
    "away_team": {"away_team_name": "Brighton & Hove Albion WFC", "away_team_gender": "female"},
    "home_score": null,
    "away_score": null,
    "match_week": 22
  }
]`

const eventsFixture = `[
  {"id": "a", "index": 1, "period": 1, "timestamp": "00:00:00.000", "minute": 0, "second": 0,
   "type": {"id": 35, "name": "Starting XI"}, "possession": 1,
   "possession_team": {"id": 971, "name": "Chelsea FCW"}, "team": {"id": 971, "name": "Chelsea FCW"}},
  {"id": "b", "index": 5, "period": 1, "minute": 0, "second": 3,
   "type": {"id": 43, "name": "Carry"}, "possession": 2,
   "possession_team": {"id": 971, "name": "Chelsea FCW"}, "team": {"id": 971, "name": "Chelsea FCW"},
   "player": {"id": 4641, "name": "Sam Kerr"},
   "location": [60.0, 40.0], "carry": {"end_location": [104.5, 30.1]}}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		MaxRetries:     2,
		RetryBackoff:   time.Millisecond,
		CircuitBreaker: breaker,
	})
}

func TestFetchMatches_MapsPayload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/matches/37/90.json", r.URL.Path)
		_, _ = w.Write([]byte(matchesFixture))
	}, resilience.CircuitBreakerConfig{})

	matches, err := client.FetchMatches(context.Background(), 37, 90)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	first := matches[0]
	assert.Equal(t, int64(3775648), first.MatchID)
	assert.Equal(t, "Chelsea FCW", first.HomeTeam)
	assert.Equal(t, "Reading WFC", first.AwayTeam)
	assert.Equal(t, "female", first.HomeTeamGender)
	assert.Equal(t, 5, first.HomeScore)
	assert.Equal(t, 5, first.GoalMargin())
	assert.Equal(t, time.Date(2021, 5, 9, 0, 0, 0, 0, time.UTC), first.MatchDate)
	assert.Equal(t, "2020/2021", first.SeasonName)

	assert.Zero(t, matches[1].HomeScore, "null scores decode as zero")
}

func TestFetchEvents_MapsCarryEndLocation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/3775648.json", r.URL.Path)
		_, _ = w.Write([]byte(eventsFixture))
	}, resilience.CircuitBreakerConfig{})

	events, err := client.FetchEvents(context.Background(), 3775648)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Nil(t, events[0].CarryEnd)
	assert.Equal(t, "", events[0].Player)

	carry := events[1]
	assert.Equal(t, "Carry", carry.Type)
	assert.Equal(t, "Sam Kerr", carry.Player)
	assert.Equal(t, 3, carry.TimeSeconds())
	require.NotNil(t, carry.CarryEnd)
	assert.InDelta(t, 104.5, carry.CarryEnd.X, 1e-9)
	assert.InDelta(t, 30.1, carry.CarryEnd.Y, 1e-9)
}

func TestFetchEvents_InvalidIDSkipsNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FetchEvents(context.Background(), 0)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	assert.Zero(t, calls.Load())
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FetchEvents(context.Background(), 42)
	assert.ErrorIs(t, err, usecase.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"competition_id": 37, "season_id": 90, "competition_name": "FA Women's Super League", "season_name": "2020/2021", "competition_gender": "female"}]`))
	}, resilience.CircuitBreakerConfig{})

	competitions, err := client.FetchCompetitions(context.Background())
	require.NoError(t, err)
	require.Len(t, competitions, 1)
	assert.Equal(t, "female", competitions[0].CompetitionGender)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchMatches(context.Background(), 37, 90)
		require.Error(t, err)
		assert.NotErrorIs(t, err, usecase.ErrDependencyUnavailable)
	}
	assert.Equal(t, resilience.CircuitStateOpen, client.CircuitSnapshot().State)

	before := calls.Load()
	_, err := client.FetchMatches(context.Background(), 37, 90)
	assert.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	assert.Equal(t, before, calls.Load())
}

func TestFetch_DecodeFailure(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"`))
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FetchCompetitions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode /competitions.json")
}

func TestFetch_CallerCancelDoesNotFailSharedRequest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	arrived := make(chan struct{})
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(arrived)
		}
		<-release
		_, _ = w.Write([]byte(matchesFixture))
	}, resilience.CircuitBreakerConfig{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchMatches(firstCtx, 37, 90)
		firstErr <- err
	}()
	<-arrived

	type result struct {
		matches int
		err     error
	}
	second := make(chan result, 1)
	go func() {
		matches, err := client.FetchMatches(context.Background(), 37, 90)
		second <- result{matches: len(matches), err: err}
	}()

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 2, got.matches)
}

func TestNewClient_DefaultTransportIsTraced(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{Timeout: time.Second})
	_, ok := client.httpClient.Transport.(*otelhttp.Transport)
	assert.True(t, ok, "expected otelhttp transport, got %T", client.httpClient.Transport)
	assert.Equal(t, time.Second, client.httpClient.Timeout)
}
