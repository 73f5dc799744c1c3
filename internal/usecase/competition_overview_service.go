package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
)

const defaultOverviewWorkers = 4

// TeamOverview aggregates one team's recovery and zone-entry numbers across
// every analysed match of a season.
type TeamOverview struct {
	Team                    string
	Matches                 int
	Recoveries              int
	AverageRecoveryTime     float64
	FinalThirdPerMatch      float64
	PenaltyAreaPerMatch     float64
	totalRecoverySeconds    float64
	totalFinalThirdEntries  int
	totalPenaltyAreaEntries int
}

type OverviewFailure struct {
	MatchID int64
	Message string
}

type CompetitionOverview struct {
	Competition CompetitionSeason
	Matches     int
	Analysed    int
	Teams       []TeamOverview
	Failures    []OverviewFailure
	DurationMs  int64
}

type CompetitionOverviewService struct {
	matches *MatchAnalysisService
	cache   *cache.Store
	workers int
	logger  *logging.Logger
}

func NewCompetitionOverviewService(matches *MatchAnalysisService, store *cache.Store, workers int, logger *logging.Logger) *CompetitionOverviewService {
	if workers < 1 {
		workers = defaultOverviewWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CompetitionOverviewService{
		matches: matches,
		cache:   store,
		workers: workers,
		logger:  logger,
	}
}

// Overview analyses every match of the season on a bounded worker pool. A
// match whose events cannot be fetched is reported as a failure and left out
// of the team aggregates.
func (s *CompetitionOverviewService) Overview(ctx context.Context, competitionID, seasonID int64) (CompetitionOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionOverviewService.Overview")
	defer span.End()

	season := CompetitionSeason{CompetitionID: competitionID, SeasonID: seasonID}
	if !season.Valid() {
		return CompetitionOverview{}, fmt.Errorf("%w: competition and season ids must be greater than zero", ErrInvalidInput)
	}

	return cache.Load(ctx, s.cache, "overview:"+season.String(), func(ctx context.Context) (CompetitionOverview, error) {
		return s.build(ctx, season)
	})
}

func (s *CompetitionOverviewService) build(ctx context.Context, season CompetitionSeason) (CompetitionOverview, error) {
	start := time.Now()
	matches, err := s.matches.ListMatches(ctx, season.CompetitionID, season.SeasonID)
	if err != nil {
		return CompetitionOverview{}, err
	}
	if len(matches) == 0 {
		return CompetitionOverview{}, fmt.Errorf("%w: no matches for %s", ErrNotFound, season)
	}

	type matchResult struct {
		analysis MatchAnalysis
		failure  *OverviewFailure
	}
	results := make(chan matchResult, len(matches))
	var failedCount atomic.Int32

	pool, err := ants.NewPool(min(s.workers, len(matches)))
	if err != nil {
		return CompetitionOverview{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, match := range matches {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			analysis, err := s.matches.Analyze(ctx, match.MatchID)
			if err != nil {
				failedCount.Add(1)
				results <- matchResult{failure: &OverviewFailure{MatchID: match.MatchID, Message: err.Error()}}
				return
			}
			results <- matchResult{analysis: analysis}
		}); err != nil {
			workers.Done()
			return CompetitionOverview{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	out := CompetitionOverview{Competition: season, Matches: len(matches)}
	byTeam := make(map[string]*TeamOverview)
	for res := range results {
		if res.failure != nil {
			out.Failures = append(out.Failures, *res.failure)
			continue
		}
		out.Analysed++
		accumulate(byTeam, res.analysis)
	}
	if ctx.Err() != nil {
		return CompetitionOverview{}, ctx.Err()
	}
	if out.Analysed == 0 {
		return CompetitionOverview{}, fmt.Errorf("%w: every match of %s failed to load", ErrDependencyUnavailable, season)
	}

	out.Teams = finalizeTeams(byTeam)
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].MatchID < out.Failures[j].MatchID })
	out.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "competition overview built",
		"competition", season.String(),
		"matches", out.Matches,
		"failed", int(failedCount.Load()),
		"duration_ms", out.DurationMs,
	)
	return out, nil
}

func accumulate(byTeam map[string]*TeamOverview, analysis MatchAnalysis) {
	team := func(name string) *TeamOverview {
		t, ok := byTeam[name]
		if !ok {
			t = &TeamOverview{Team: name}
			byTeam[name] = t
		}
		return t
	}

	for _, name := range analysis.Teams {
		team(name).Matches++
	}
	for _, r := range analysis.Recoveries {
		t := team(r.RecoveredBy)
		t.Recoveries++
		t.totalRecoverySeconds += float64(r.RecoveryTime)
	}
	for _, z := range analysis.ZoneTotals {
		t := team(z.Team)
		t.totalFinalThirdEntries += z.FinalThirdEntries
		t.totalPenaltyAreaEntries += z.PenaltyAreaEntries
	}
}

func finalizeTeams(byTeam map[string]*TeamOverview) []TeamOverview {
	out := make([]TeamOverview, 0, len(byTeam))
	for _, t := range byTeam {
		if t.Recoveries > 0 {
			t.AverageRecoveryTime = t.totalRecoverySeconds / float64(t.Recoveries)
		}
		if t.Matches > 0 {
			t.FinalThirdPerMatch = float64(t.totalFinalThirdEntries) / float64(t.Matches)
			t.PenaltyAreaPerMatch = float64(t.totalPenaltyAreaEntries) / float64(t.Matches)
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRecoveryTime != out[j].AverageRecoveryTime {
			return out[i].AverageRecoveryTime < out[j].AverageRecoveryTime
		}
		return out[i].Team < out[j].Team
	})
	return out
}
