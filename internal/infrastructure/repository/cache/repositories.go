package cache

import (
	"context"
	"fmt"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	basecache "github.com/riskibarqy/match-insights/internal/platform/cache"
)

// Feed memoises raw feed payloads so the API and the CLI only pull each
// open-data file once per TTL.
type Feed struct {
	next  matchevent.Feed
	cache *basecache.Store
}

func NewFeed(next matchevent.Feed, cache *basecache.Store) *Feed {
	return &Feed{next: next, cache: cache}
}

func (f *Feed) FetchCompetitions(ctx context.Context) ([]matchevent.Competition, error) {
	items, err := basecache.Load(ctx, f.cache, "feed:competitions", func(ctx context.Context) ([]matchevent.Competition, error) {
		return f.next.FetchCompetitions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]matchevent.Competition(nil), items...), nil
}

func (f *Feed) FetchMatches(ctx context.Context, competitionID, seasonID int64) ([]matchevent.Match, error) {
	key := fmt.Sprintf("feed:matches:%d:%d", competitionID, seasonID)
	items, err := basecache.Load(ctx, f.cache, key, func(ctx context.Context) ([]matchevent.Match, error) {
		return f.next.FetchMatches(ctx, competitionID, seasonID)
	})
	if err != nil {
		return nil, err
	}
	return append([]matchevent.Match(nil), items...), nil
}

func (f *Feed) FetchEvents(ctx context.Context, matchID int64) ([]matchevent.Event, error) {
	key := fmt.Sprintf("feed:events:%d", matchID)
	items, err := basecache.Load(ctx, f.cache, key, func(ctx context.Context) ([]matchevent.Event, error) {
		return f.next.FetchEvents(ctx, matchID)
	})
	if err != nil {
		return nil, err
	}
	return append([]matchevent.Event(nil), items...), nil
}

type PlayerMetricsRepository struct {
	next  playerprofile.Repository
	cache *basecache.Store
}

func NewPlayerMetricsRepository(next playerprofile.Repository, cache *basecache.Store) *PlayerMetricsRepository {
	return &PlayerMetricsRepository{next: next, cache: cache}
}

func (r *PlayerMetricsRepository) ListMatchMetrics(ctx context.Context, profile playerprofile.Profile) (playerprofile.MatchMetrics, error) {
	table, err := basecache.Load(ctx, r.cache, "metrics:"+string(profile), func(ctx context.Context) (playerprofile.MatchMetrics, error) {
		return r.next.ListMatchMetrics(ctx, profile)
	})
	if err != nil {
		return playerprofile.MatchMetrics{}, err
	}
	return cloneMatchMetrics(table), nil
}

func cloneMatchMetrics(table playerprofile.MatchMetrics) playerprofile.MatchMetrics {
	out := playerprofile.MatchMetrics{
		Profile: table.Profile,
		Metrics: append([]string(nil), table.Metrics...),
		Rows:    make([]playerprofile.PlayerMatchMetrics, len(table.Rows)),
	}
	for i, row := range table.Rows {
		row.Values = append([]float64(nil), row.Values...)
		out.Rows[i] = row
	}
	return out
}
