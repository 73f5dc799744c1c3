package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/domain/possession"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

type matchOption struct {
	MatchID  int64
	Label    string
	Selected bool
}

type seasonOption struct {
	Value    string
	Label    string
	Selected bool
}

type matchPage struct {
	layout
	CompetitionID   int64
	SeasonID        int64
	Seasons         []seasonOption
	Matches         []matchOption
	Match           matchDTO
	Intro           []string
	RecoveryText    []string
	ZoneText        []string
	CombinedText    []string
	RecoverySummary []possession.TeamRecoverySummary
	ZoneTotals      []usecase.TeamZoneTotal
	Figures         []figure
}

type profileTab struct {
	Profile  playerprofile.Profile
	Title    string
	Players  int
	Selected bool
}

type metricRow struct {
	Metric      string
	Label       string
	Mean        string
	Description string
}

type clusterCard struct {
	Name       string
	Size       int
	Strengths  []usecase.MetricScore
	Weaknesses []usecase.MetricScore
}

type profilesPage struct {
	layout
	Tabs        []profileTab
	Profile     playerprofile.Profile
	Title       string
	Excluded    int
	Metrics     []metricRow
	K           int
	Components  int
	Space       string
	Silhouette  string
	Narrative   []string
	Correlation figure
	Histograms  []figure
	Figures     []figure
	Cards       []clusterCard
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.writePageError(r.Context(), w, "", fmt.Errorf("%w: page %s does not exist", usecase.ErrNotFound, r.URL.Path))
		return
	}
	http.Redirect(w, r, "/match", http.StatusFound)
}

// MatchPage renders one match. Without a match query the most one-sided match
// of the requested season, or of the featured season, is shown.
func (h *Handler) MatchPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MatchPage")
	defer span.End()

	query := r.URL.Query()
	var (
		match    matchevent.Match
		featured bool
		err      error
	)
	if raw := strings.TrimSpace(query.Get("match")); raw != "" {
		var season seasonPath
		var matchID int64
		season.CompetitionID, err = parseID("competition", query.Get("competition"))
		if err == nil {
			season.SeasonID, err = parseID("season", query.Get("season"))
		}
		if err == nil {
			matchID, err = parseID("match", raw)
		}
		if err == nil {
			err = h.validateRequest(ctx, season)
		}
		if err == nil {
			match, err = h.matchService.FindMatch(ctx, season.CompetitionID, season.SeasonID, matchID)
		}
	} else if raw := strings.TrimSpace(query.Get("season_key")); raw != "" {
		var season usecase.CompetitionSeason
		if season, err = usecase.ParseCompetitionSeason(raw); err == nil {
			match, err = h.matchService.MostOneSidedIn(ctx, season)
			featured = true
		}
	} else {
		match, err = h.matchService.FeaturedMatch(ctx)
		featured = true
	}
	if err != nil {
		h.logger.WarnContext(ctx, "resolve match failed", "error", err)
		h.writePageError(ctx, w, pageMatch, err)
		return
	}

	analysis, err := h.matchService.Analyze(ctx, match.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match analysis failed", "match_id", match.MatchID, "error", err)
		h.writePageError(ctx, w, pageMatch, err)
		return
	}
	figures, err := matchFigures(analysis)
	if err != nil {
		h.writePageError(ctx, w, pageMatch, err)
		return
	}

	page := matchPage{
		layout:          layout{Title: "Análise de um jogo", Active: pageMatch},
		CompetitionID:   match.CompetitionID,
		SeasonID:        match.SeasonID,
		Match:           matchToDTO(match),
		Intro:           matchIntro(match, featured),
		RecoveryText:    recoveryNarrative(analysis.RecoverySummary),
		ZoneText:        zoneNarrative(analysis.ZoneTotals),
		CombinedText:    combinedNarrative(analysis.Combined),
		RecoverySummary: analysis.RecoverySummary,
		ZoneTotals:      analysis.ZoneTotals,
		Figures:         figures,
	}
	page.Seasons, page.Matches = h.pickerOptions(r, match)

	h.writePage(ctx, w, pageMatch, page)
}

// pickerOptions lists seasons and the current season's matches. Picker
// failures only degrade the selector, the analysis is still shown.
func (h *Handler) pickerOptions(r *http.Request, current matchevent.Match) ([]seasonOption, []matchOption) {
	ctx := r.Context()
	selected := usecase.CompetitionSeason{CompetitionID: current.CompetitionID, SeasonID: current.SeasonID}

	var seasons []seasonOption
	if competitions, err := h.matchService.ListCompetitions(ctx); err != nil {
		h.logger.WarnContext(ctx, "list competitions for picker failed", "error", err)
	} else {
		for _, c := range competitions {
			key := usecase.CompetitionSeason{CompetitionID: c.CompetitionID, SeasonID: c.SeasonID}
			seasons = append(seasons, seasonOption{
				Value:    key.String(),
				Label:    fmt.Sprintf("%s · %s", c.CompetitionName, c.SeasonName),
				Selected: key == selected,
			})
		}
	}

	var matches []matchOption
	if items, err := h.matchService.ListMatches(ctx, selected.CompetitionID, selected.SeasonID); err != nil {
		h.logger.WarnContext(ctx, "list matches for picker failed", "error", err)
	} else {
		for _, m := range items {
			matches = append(matches, matchOption{
				MatchID:  m.MatchID,
				Label:    fmt.Sprintf("%s · %s", formatDate(m.MatchDate), m.Scoreline()),
				Selected: m.MatchID == current.MatchID,
			})
		}
	}
	return seasons, matches
}

func (h *Handler) ProfilesPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProfilesPage")
	defer span.End()

	profile := playerprofile.Defenders
	if raw := strings.TrimSpace(r.URL.Query().Get("profile")); raw != "" {
		parsed, err := parseProfile(raw)
		if err != nil {
			h.writePageError(ctx, w, pageProfiles, err)
			return
		}
		profile = parsed
	}
	params, err := h.clusterParams(r)
	if err != nil {
		h.writePageError(ctx, w, pageProfiles, err)
		return
	}

	page := profilesPage{
		layout:  layout{Title: "Perfis de jogadores", Active: pageProfiles},
		Profile: profile,
		Title:   profile.Title(),
	}
	for _, p := range playerprofile.Profiles {
		tab := profileTab{Profile: p, Title: p.Title(), Selected: p == profile}
		summary, err := h.profileService.Summary(ctx, p)
		if err != nil {
			if p == profile {
				h.logger.WarnContext(ctx, "profile summary failed", "profile", p, "error", err)
				h.writePageError(ctx, w, pageProfiles, err)
				return
			}
			h.logger.WarnContext(ctx, "profile tab summary failed", "profile", p, "error", err)
			page.Tabs = append(page.Tabs, tab)
			continue
		}
		tab.Players = len(summary.Players)
		page.Tabs = append(page.Tabs, tab)

		if p != profile {
			continue
		}
		page.Excluded = summary.Excluded
		for i, metric := range summary.Metrics {
			page.Metrics = append(page.Metrics, metricRow{
				Metric:      metric,
				Label:       summary.Labels[i],
				Mean:        decimal(summary.Means[i], 2),
				Description: playerprofile.Description(metric),
			})
		}
		if page.Correlation, err = correlationFigure(summary); err != nil {
			h.writePageError(ctx, w, pageProfiles, err)
			return
		}
		if page.Histograms, err = histogramFigures(summary); err != nil {
			h.writePageError(ctx, w, pageProfiles, err)
			return
		}
	}

	result, err := h.profileService.Cluster(ctx, profile, params)
	if err != nil {
		h.logger.WarnContext(ctx, "profile clustering failed", "profile", profile, "error", err)
		h.writePageError(ctx, w, pageProfiles, err)
		return
	}
	elbow, err := h.profileService.Elbow(ctx, profile, 1, min(usecase.MaxClusterK, len(result.Players)))
	if err != nil {
		h.writePageError(ctx, w, pageProfiles, err)
		return
	}
	if page.Figures, err = clusterFigures(result, elbow); err != nil {
		h.writePageError(ctx, w, pageProfiles, err)
		return
	}

	page.K = result.Params.K
	page.Components = result.Params.Components
	page.Space = string(result.Params.Space)
	page.Silhouette = decimal(result.Silhouette, 2)
	page.Narrative = clusterNarrative(result)
	for _, c := range result.Clusters {
		page.Cards = append(page.Cards, clusterCard{
			Name:       clusterName(c.ID),
			Size:       c.Size,
			Strengths:  c.Strengths,
			Weaknesses: c.Weaknesses,
		})
	}

	h.writePage(ctx, w, pageProfiles, page)
}

func (h *Handler) NotesPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NotesPage")
	defer span.End()

	h.writePage(ctx, w, pageNotes, layout{Title: "Notas", Active: pageNotes})
}
