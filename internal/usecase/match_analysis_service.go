package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/riskibarqy/match-insights/internal/domain/zone"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
)

// CompetitionSeason identifies one season of one competition in the feed.
type CompetitionSeason struct {
	CompetitionID int64
	SeasonID      int64
}

func (c CompetitionSeason) Valid() bool {
	return c.CompetitionID > 0 && c.SeasonID > 0
}

func (c CompetitionSeason) String() string {
	return fmt.Sprintf("%d:%d", c.CompetitionID, c.SeasonID)
}

type TeamZoneTotal struct {
	Team               string
	FinalThirdEntries  int
	PenaltyAreaEntries int
}

// MatchAnalysis holds every derived table of the match page.
type MatchAnalysis struct {
	MatchID          int64
	Teams            []string
	EventCount       int
	Recoveries       []possession.Recovery
	RecoveryByMinute []possession.TeamMinuteRecovery
	RecoveryByBin    []possession.TeamBinRecovery
	RecoverySummary  []possession.TeamRecoverySummary
	ZoneEntries      []zone.MinuteCount
	ZoneTotals       []TeamZoneTotal
	DangerByMinute   []zone.TeamMinuteDanger
	Combined         []zone.Combined
}

type MatchAnalysisService struct {
	feed     matchevent.Feed
	cache    *cache.Store
	featured CompetitionSeason
	logger   *logging.Logger
}

func NewMatchAnalysisService(feed matchevent.Feed, store *cache.Store, featured CompetitionSeason, logger *logging.Logger) *MatchAnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchAnalysisService{
		feed:     feed,
		cache:    store,
		featured: featured,
		logger:   logger,
	}
}

func (s *MatchAnalysisService) ListCompetitions(ctx context.Context) ([]matchevent.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.ListCompetitions")
	defer span.End()

	return cache.Load(ctx, s.cache, "competitions", func(ctx context.Context) ([]matchevent.Competition, error) {
		items, err := s.feed.FetchCompetitions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list competitions: %w", err)
		}
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].CompetitionName != items[j].CompetitionName {
				return items[i].CompetitionName < items[j].CompetitionName
			}
			return items[i].SeasonName > items[j].SeasonName
		})
		return items, nil
	})
}

// ListMatches returns the season's matches ordered by date, then id.
func (s *MatchAnalysisService) ListMatches(ctx context.Context, competitionID, seasonID int64) ([]matchevent.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.ListMatches")
	defer span.End()

	if competitionID <= 0 || seasonID <= 0 {
		return nil, fmt.Errorf("%w: competition and season ids must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf("matches:%d:%d", competitionID, seasonID)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) ([]matchevent.Match, error) {
		items, err := s.feed.FetchMatches(ctx, competitionID, seasonID)
		if err != nil {
			return nil, fmt.Errorf("list matches: %w", err)
		}
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].MatchDate.Equal(items[j].MatchDate) {
				return items[i].MatchDate.Before(items[j].MatchDate)
			}
			return items[i].MatchID < items[j].MatchID
		})
		return items, nil
	})
}

// FeaturedMatch picks the most one-sided result of the configured season.
func (s *MatchAnalysisService) FeaturedMatch(ctx context.Context) (matchevent.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.FeaturedMatch")
	defer span.End()

	if !s.featured.Valid() {
		return matchevent.Match{}, fmt.Errorf("%w: featured competition is not configured", ErrNotFound)
	}
	return s.MostOneSidedIn(ctx, s.featured)
}

// MostOneSidedIn picks the most one-sided result of any season.
func (s *MatchAnalysisService) MostOneSidedIn(ctx context.Context, season CompetitionSeason) (matchevent.Match, error) {
	matches, err := s.ListMatches(ctx, season.CompetitionID, season.SeasonID)
	if err != nil {
		return matchevent.Match{}, err
	}
	best, ok := matchevent.MostOneSided(matches)
	if !ok {
		return matchevent.Match{}, fmt.Errorf("%w: no matches for %s", ErrNotFound, season)
	}
	return best, nil
}

// ParseCompetitionSeason reads the "competition:season" form used in
// configuration and page links.
func ParseCompetitionSeason(raw string) (CompetitionSeason, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return CompetitionSeason{}, fmt.Errorf("%w: %q is not competition:season", ErrInvalidInput, raw)
	}
	competitionID, err := strconv.ParseInt(strings.TrimSpace(left), 10, 64)
	if err != nil {
		return CompetitionSeason{}, fmt.Errorf("%w: invalid competition id in %q", ErrInvalidInput, raw)
	}
	seasonID, err := strconv.ParseInt(strings.TrimSpace(right), 10, 64)
	if err != nil {
		return CompetitionSeason{}, fmt.Errorf("%w: invalid season id in %q", ErrInvalidInput, raw)
	}
	out := CompetitionSeason{CompetitionID: competitionID, SeasonID: seasonID}
	if !out.Valid() {
		return CompetitionSeason{}, fmt.Errorf("%w: ids in %q must be greater than zero", ErrInvalidInput, raw)
	}
	return out, nil
}

// FindMatch looks a match up inside one season listing.
func (s *MatchAnalysisService) FindMatch(ctx context.Context, competitionID, seasonID, matchID int64) (matchevent.Match, error) {
	matches, err := s.ListMatches(ctx, competitionID, seasonID)
	if err != nil {
		return matchevent.Match{}, err
	}
	for _, m := range matches {
		if m.MatchID == matchID {
			return m, nil
		}
	}
	return matchevent.Match{}, fmt.Errorf("%w: match %d not in %d:%d", ErrNotFound, matchID, competitionID, seasonID)
}

func (s *MatchAnalysisService) Analyze(ctx context.Context, matchID int64) (MatchAnalysis, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.Analyze")
	defer span.End()

	if matchID <= 0 {
		return MatchAnalysis{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	key := fmt.Sprintf("analysis:%d", matchID)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (MatchAnalysis, error) {
		events, err := s.feed.FetchEvents(ctx, matchID)
		if err != nil {
			return MatchAnalysis{}, fmt.Errorf("fetch match events: %w", err)
		}
		analysis, err := AnalyzeEvents(matchID, events)
		if err != nil {
			return MatchAnalysis{}, err
		}
		s.logger.InfoContext(ctx, "match analysed",
			"match_id", matchID,
			"events", analysis.EventCount,
			"recoveries", len(analysis.Recoveries),
		)
		return analysis, nil
	})
}

// AnalyzeEvents derives every match table from a raw event stream.
func AnalyzeEvents(matchID int64, events []matchevent.Event) (MatchAnalysis, error) {
	prepared := matchevent.Prepare(events)
	if len(prepared) == 0 {
		return MatchAnalysis{}, fmt.Errorf("%w: match %d has no timed events", ErrNotFound, matchID)
	}

	recoveries := possession.Recoveries(prepared)
	byMinute := possession.AverageByTeamMinute(recoveries)
	entries := zone.Entries(prepared)
	danger := zone.DangerousByTeamMinute(prepared)

	return MatchAnalysis{
		MatchID:          matchID,
		Teams:            teamsOf(prepared),
		EventCount:       len(prepared),
		Recoveries:       recoveries,
		RecoveryByMinute: byMinute,
		RecoveryByBin:    possession.AverageByTeamBin(recoveries),
		RecoverySummary:  possession.TeamSummary(recoveries),
		ZoneEntries:      zone.CountByMinute(entries),
		ZoneTotals:       zoneTotals(entries),
		DangerByMinute:   danger,
		Combined:         zone.Combine(byMinute, danger),
	}, nil
}

func teamsOf(events []matchevent.Event) []string {
	seen := make(map[string]struct{}, 2)
	out := make([]string, 0, 2)
	for _, e := range events {
		for _, team := range []string{e.Team, e.PossessionTeam} {
			if team == "" {
				continue
			}
			if _, ok := seen[team]; ok {
				continue
			}
			seen[team] = struct{}{}
			out = append(out, team)
		}
	}
	sort.Strings(out)
	return out
}

func zoneTotals(entries []zone.Entry) []TeamZoneTotal {
	totals := zone.TeamTotals(entries)
	out := make([]TeamZoneTotal, 0, len(totals))
	for team, byZone := range totals {
		out = append(out, TeamZoneTotal{
			Team:               team,
			FinalThirdEntries:  byZone[zone.FinalThird],
			PenaltyAreaEntries: byZone[zone.PenaltyArea],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}
