package httpapi

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/riskibarqy/match-insights/internal/domain/zone"
	"github.com/riskibarqy/match-insights/internal/platform/analytics"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/riskibarqy/match-insights/internal/platform/resilience"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

// FeedHealth exposes the circuit state of the event feed on /healthz.
type FeedHealth interface {
	CircuitSnapshot() resilience.Snapshot
}

type Handler struct {
	matchService    *usecase.MatchAnalysisService
	overviewService *usecase.CompetitionOverviewService
	profileService  *usecase.ProfileService
	feedHealth      FeedHealth
	clusterDefaults usecase.ClusterParams
	pages           *pageRenderer
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchAnalysisService,
	overviewService *usecase.CompetitionOverviewService,
	profileService *usecase.ProfileService,
	feedHealth FeedHealth,
	clusterDefaults usecase.ClusterParams,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:    matchService,
		overviewService: overviewService,
		profileService:  profileService,
		feedHealth:      feedHealth,
		clusterDefaults: clusterDefaults,
		pages:           newPageRenderer(),
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type seasonPath struct {
	CompetitionID int64 `validate:"gt=0"`
	SeasonID      int64 `validate:"gt=0"`
}

type matchPath struct {
	MatchID int64 `validate:"gt=0"`
}

type clusterQuery struct {
	K          int    `validate:"omitempty,min=2,max=10"`
	Components int    `validate:"omitempty,min=2,max=15"`
	Space      string `validate:"omitempty,oneof=scaled pca"`
}

type elbowQuery struct {
	Min int `validate:"min=1,max=10"`
	Max int `validate:"min=1,max=10,gtefield=Min"`
}

// parseID reads a required positive integer path or query value.
func parseID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", usecase.ErrInvalidInput, name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

// queryInt reads an optional integer query value, returning fallback when it
// is absent.
func queryInt(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return v, nil
}

func parseProfile(raw string) (playerprofile.Profile, error) {
	profile, err := playerprofile.ParseProfile(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return profile, nil
}

// finite maps NaN and infinities to null so the JSON encoder accepts them.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finiteSlice(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = finite(v)
	}
	return out
}

func finiteMatrix(values [][]float64) [][]*float64 {
	out := make([][]*float64, len(values))
	for i, row := range values {
		out[i] = finiteSlice(row)
	}
	return out
}

type healthDTO struct {
	Status string              `json:"status"`
	Feed   resilience.Snapshot `json:"feed"`
}

type competitionDTO struct {
	CompetitionID     int64  `json:"competitionId"`
	SeasonID          int64  `json:"seasonId"`
	CompetitionName   string `json:"competitionName"`
	SeasonName        string `json:"seasonName"`
	CountryName       string `json:"countryName"`
	CompetitionGender string `json:"competitionGender"`
}

type matchDTO struct {
	MatchID         int64  `json:"matchId"`
	CompetitionID   int64  `json:"competitionId"`
	SeasonID        int64  `json:"seasonId"`
	CompetitionName string `json:"competitionName"`
	SeasonName      string `json:"seasonName"`
	MatchDate       string `json:"matchDate"`
	MatchWeek       int    `json:"matchWeek"`
	HomeTeam        string `json:"homeTeam"`
	AwayTeam        string `json:"awayTeam"`
	HomeTeamGender  string `json:"homeTeamGender"`
	HomeScore       int    `json:"homeScore"`
	AwayScore       int    `json:"awayScore"`
	Scoreline       string `json:"scoreline"`
}

type recoveryDTO struct {
	LostBy       string `json:"lostBy"`
	RecoveredBy  string `json:"recoveredBy"`
	RecoveryTime int    `json:"recoveryTime"`
	TimeSeconds  int    `json:"timeSeconds"`
	TimeBin      int    `json:"timeBin"`
	Minute       int    `json:"minute"`
}

type teamMinuteRecoveryDTO struct {
	Team                string  `json:"team"`
	Minute              int     `json:"minute"`
	AverageRecoveryTime float64 `json:"averageRecoveryTime"`
	Recoveries          int     `json:"recoveries"`
}

type teamBinRecoveryDTO struct {
	Team                string  `json:"team"`
	TimeBin             int     `json:"timeBin"`
	AverageRecoveryTime float64 `json:"averageRecoveryTime"`
	Recoveries          int     `json:"recoveries"`
}

type recoverySummaryDTO struct {
	Team                string  `json:"team"`
	Recoveries          int     `json:"recoveries"`
	AverageRecoveryTime float64 `json:"averageRecoveryTime"`
	FastestRecovery     int     `json:"fastestRecovery"`
}

type zoneEntryDTO struct {
	Minute   int    `json:"minute"`
	Team     string `json:"team"`
	Zone     string `json:"zone"`
	TeamZone string `json:"teamZone"`
	Entries  int    `json:"entries"`
}

type zoneTotalDTO struct {
	Team               string `json:"team"`
	FinalThirdEntries  int    `json:"finalThirdEntries"`
	PenaltyAreaEntries int    `json:"penaltyAreaEntries"`
}

type combinedDTO struct {
	Team                string  `json:"team"`
	Minute              int     `json:"minute"`
	AverageRecoveryTime float64 `json:"averageRecoveryTime"`
	DangerousEntries    int     `json:"dangerousEntries"`
}

type matchAnalysisDTO struct {
	MatchID          int64                   `json:"matchId"`
	Teams            []string                `json:"teams"`
	EventCount       int                     `json:"eventCount"`
	RecoverySummary  []recoverySummaryDTO    `json:"recoverySummary"`
	RecoveryByMinute []teamMinuteRecoveryDTO `json:"recoveryByMinute"`
	RecoveryByBin    []teamBinRecoveryDTO    `json:"recoveryByBin"`
	Recoveries       []recoveryDTO           `json:"recoveries"`
	ZoneTotals       []zoneTotalDTO          `json:"zoneTotals"`
	ZoneEntries      []zoneEntryDTO          `json:"zoneEntries"`
	Combined         []combinedDTO           `json:"combined"`
}

type teamOverviewDTO struct {
	Team                string  `json:"team"`
	Matches             int     `json:"matches"`
	Recoveries          int     `json:"recoveries"`
	AverageRecoveryTime float64 `json:"averageRecoveryTime"`
	FinalThirdPerMatch  float64 `json:"finalThirdEntriesPerMatch"`
	PenaltyAreaPerMatch float64 `json:"penaltyAreaEntriesPerMatch"`
}

type overviewFailureDTO struct {
	MatchID int64  `json:"matchId"`
	Message string `json:"message"`
}

type competitionOverviewDTO struct {
	CompetitionID int64                `json:"competitionId"`
	SeasonID      int64                `json:"seasonId"`
	Matches       int                  `json:"matches"`
	Analysed      int                  `json:"analysed"`
	Teams         []teamOverviewDTO    `json:"teams"`
	Failures      []overviewFailureDTO `json:"failures,omitempty"`
	DurationMs    int64                `json:"durationMs"`
}

type playerAggregateDTO struct {
	PlayerName string     `json:"playerName"`
	Team       string     `json:"team"`
	Role       string     `json:"role"`
	Gender     string     `json:"gender,omitempty"`
	Matches    int        `json:"matches"`
	Values     []*float64 `json:"values"`
}

type histogramBinDTO struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type metricHistogramDTO struct {
	Metric string            `json:"metric"`
	Label  string            `json:"label"`
	Bins   []histogramBinDTO `json:"bins"`
}

type profileSummaryDTO struct {
	Profile     string               `json:"profile"`
	Metrics     []string             `json:"metrics"`
	Labels      []string             `json:"labels"`
	Excluded    int                  `json:"excludedPlayers"`
	Means       []*float64           `json:"means"`
	Correlation [][]*float64         `json:"correlation"`
	Histograms  []metricHistogramDTO `json:"histograms"`
	Players     []playerAggregateDTO `json:"players"`
}

type metricScoreDTO struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
}

type genderShareDTO struct {
	Gender  string  `json:"gender"`
	Players int     `json:"players"`
	Percent float64 `json:"percent"`
}

type clusterProfileDTO struct {
	ID              int              `json:"id"`
	Size            int              `json:"size"`
	RawMeans        []*float64       `json:"rawMeans"`
	NormalizedMeans []*float64       `json:"normalizedMeans"`
	Strengths       []metricScoreDTO `json:"strengths"`
	Weaknesses      []metricScoreDTO `json:"weaknesses"`
	Genders         []genderShareDTO `json:"genders"`
}

type clusteredPlayerDTO struct {
	playerAggregateDTO
	Cluster    int       `json:"cluster"`
	Projection []float64 `json:"projection"`
}

type clusterResultDTO struct {
	Profile        string               `json:"profile"`
	K              int                  `json:"k"`
	Components     int                  `json:"components"`
	Space          string               `json:"space"`
	Metrics        []string             `json:"metrics"`
	Labels         []string             `json:"labels"`
	Silhouette     float64              `json:"silhouette"`
	Inertia        float64              `json:"inertia"`
	ExplainedRatio []float64            `json:"explainedRatio"`
	Clusters       []clusterProfileDTO  `json:"clusters"`
	Players        []clusteredPlayerDTO `json:"players"`
}

type elbowPointDTO struct {
	K       int     `json:"k"`
	Inertia float64 `json:"inertia"`
}

func competitionToDTO(v matchevent.Competition) competitionDTO {
	return competitionDTO{
		CompetitionID:     v.CompetitionID,
		SeasonID:          v.SeasonID,
		CompetitionName:   v.CompetitionName,
		SeasonName:        v.SeasonName,
		CountryName:       v.CountryName,
		CompetitionGender: v.CompetitionGender,
	}
}

func matchToDTO(v matchevent.Match) matchDTO {
	return matchDTO{
		MatchID:         v.MatchID,
		CompetitionID:   v.CompetitionID,
		SeasonID:        v.SeasonID,
		CompetitionName: v.CompetitionName,
		SeasonName:      v.SeasonName,
		MatchDate:       formatDate(v.MatchDate),
		MatchWeek:       v.MatchWeek,
		HomeTeam:        v.HomeTeam,
		AwayTeam:        v.AwayTeam,
		HomeTeamGender:  v.HomeTeamGender,
		HomeScore:       v.HomeScore,
		AwayScore:       v.AwayScore,
		Scoreline:       v.Scoreline(),
	}
}

func formatDate(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.Format(time.DateOnly)
}

func matchAnalysisToDTO(v usecase.MatchAnalysis) matchAnalysisDTO {
	out := matchAnalysisDTO{
		MatchID:          v.MatchID,
		Teams:            v.Teams,
		EventCount:       v.EventCount,
		RecoverySummary:  make([]recoverySummaryDTO, 0, len(v.RecoverySummary)),
		RecoveryByMinute: make([]teamMinuteRecoveryDTO, 0, len(v.RecoveryByMinute)),
		RecoveryByBin:    make([]teamBinRecoveryDTO, 0, len(v.RecoveryByBin)),
		Recoveries:       make([]recoveryDTO, 0, len(v.Recoveries)),
		ZoneTotals:       make([]zoneTotalDTO, 0, len(v.ZoneTotals)),
		ZoneEntries:      make([]zoneEntryDTO, 0, len(v.ZoneEntries)),
		Combined:         make([]combinedDTO, 0, len(v.Combined)),
	}
	for _, s := range v.RecoverySummary {
		out.RecoverySummary = append(out.RecoverySummary, recoverySummaryToDTO(s))
	}
	for _, m := range v.RecoveryByMinute {
		out.RecoveryByMinute = append(out.RecoveryByMinute, teamMinuteRecoveryDTO(m))
	}
	for _, b := range v.RecoveryByBin {
		out.RecoveryByBin = append(out.RecoveryByBin, teamBinRecoveryDTO(b))
	}
	for _, r := range v.Recoveries {
		out.Recoveries = append(out.Recoveries, recoveryToDTO(r))
	}
	for _, z := range v.ZoneTotals {
		out.ZoneTotals = append(out.ZoneTotals, zoneTotalDTO(z))
	}
	for _, e := range v.ZoneEntries {
		out.ZoneEntries = append(out.ZoneEntries, zoneEntryToDTO(e))
	}
	for _, c := range v.Combined {
		out.Combined = append(out.Combined, combinedDTO(c))
	}
	return out
}

func recoveryToDTO(r possession.Recovery) recoveryDTO {
	return recoveryDTO{
		LostBy:       r.LostBy,
		RecoveredBy:  r.RecoveredBy,
		RecoveryTime: r.RecoveryTime,
		TimeSeconds:  r.TimeSeconds,
		TimeBin:      r.TimeBin,
		Minute:       r.Minute,
	}
}

func recoverySummaryToDTO(s possession.TeamRecoverySummary) recoverySummaryDTO {
	return recoverySummaryDTO(s)
}

func zoneEntryToDTO(e zone.MinuteCount) zoneEntryDTO {
	return zoneEntryDTO{
		Minute:   e.Minute,
		Team:     e.Team,
		Zone:     string(e.Zone),
		TeamZone: e.TeamZone,
		Entries:  e.Entries,
	}
}

func overviewToDTO(v usecase.CompetitionOverview) competitionOverviewDTO {
	out := competitionOverviewDTO{
		CompetitionID: v.Competition.CompetitionID,
		SeasonID:      v.Competition.SeasonID,
		Matches:       v.Matches,
		Analysed:      v.Analysed,
		Teams:         make([]teamOverviewDTO, 0, len(v.Teams)),
		DurationMs:    v.DurationMs,
	}
	for _, t := range v.Teams {
		out.Teams = append(out.Teams, teamOverviewDTO{
			Team:                t.Team,
			Matches:             t.Matches,
			Recoveries:          t.Recoveries,
			AverageRecoveryTime: t.AverageRecoveryTime,
			FinalThirdPerMatch:  t.FinalThirdPerMatch,
			PenaltyAreaPerMatch: t.PenaltyAreaPerMatch,
		})
	}
	for _, f := range v.Failures {
		out.Failures = append(out.Failures, overviewFailureDTO(f))
	}
	return out
}

func playerAggregateToDTO(p playerprofile.PlayerAggregate) playerAggregateDTO {
	return playerAggregateDTO{
		PlayerName: p.PlayerName,
		Team:       p.Team,
		Role:       p.Role,
		Gender:     p.Gender,
		Matches:    p.Matches,
		Values:     finiteSlice(p.Values),
	}
}

func profileSummaryToDTO(v usecase.ProfileSummary) profileSummaryDTO {
	out := profileSummaryDTO{
		Profile:     string(v.Profile),
		Metrics:     v.Metrics,
		Labels:      v.Labels,
		Excluded:    v.Excluded,
		Means:       finiteSlice(v.Means),
		Correlation: finiteMatrix(v.Correlation),
		Histograms:  make([]metricHistogramDTO, 0, len(v.Histograms)),
		Players:     make([]playerAggregateDTO, 0, len(v.Players)),
	}
	for _, hist := range v.Histograms {
		out.Histograms = append(out.Histograms, metricHistogramDTO{
			Metric: hist.Metric,
			Label:  hist.Label,
			Bins:   binsToDTO(hist.Bins),
		})
	}
	for _, p := range v.Players {
		out.Players = append(out.Players, playerAggregateToDTO(p))
	}
	return out
}

func binsToDTO(bins []analytics.Bin) []histogramBinDTO {
	out := make([]histogramBinDTO, 0, len(bins))
	for _, b := range bins {
		out = append(out, histogramBinDTO(b))
	}
	return out
}

func clusterResultToDTO(v usecase.ClusterResult) clusterResultDTO {
	out := clusterResultDTO{
		Profile:        string(v.Profile),
		K:              v.Params.K,
		Components:     v.Params.Components,
		Space:          string(v.Params.Space),
		Metrics:        v.Metrics,
		Labels:         v.Labels,
		Silhouette:     v.Silhouette,
		Inertia:        v.Inertia,
		ExplainedRatio: v.ExplainedRatio,
		Clusters:       make([]clusterProfileDTO, 0, len(v.Clusters)),
		Players:        make([]clusteredPlayerDTO, 0, len(v.Players)),
	}
	for _, c := range v.Clusters {
		out.Clusters = append(out.Clusters, clusterProfileDTO{
			ID:              c.ID,
			Size:            c.Size,
			RawMeans:        finiteSlice(c.RawMeans),
			NormalizedMeans: finiteSlice(c.NormalizedMeans),
			Strengths:       metricScoresToDTO(c.Strengths),
			Weaknesses:      metricScoresToDTO(c.Weaknesses),
			Genders:         genderSharesToDTO(c.Genders),
		})
	}
	for _, p := range v.Players {
		out.Players = append(out.Players, clusteredPlayerDTO{
			playerAggregateDTO: playerAggregateToDTO(p.PlayerAggregate),
			Cluster:            p.Cluster,
			Projection:         p.Projection,
		})
	}
	return out
}

func metricScoresToDTO(scores []usecase.MetricScore) []metricScoreDTO {
	out := make([]metricScoreDTO, 0, len(scores))
	for _, s := range scores {
		out = append(out, metricScoreDTO(s))
	}
	return out
}

func genderSharesToDTO(shares []usecase.GenderShare) []genderShareDTO {
	out := make([]genderShareDTO, 0, len(shares))
	for _, s := range shares {
		out = append(out, genderShareDTO(s))
	}
	return out
}
