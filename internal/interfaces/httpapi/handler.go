package httpapi

import (
	"net/http"

	"github.com/riskibarqy/match-insights/internal/platform/resilience"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	out := healthDTO{Status: "ok", Feed: resilience.Snapshot{State: resilience.CircuitStateClosed}}
	if h.feedHealth != nil {
		out.Feed = h.feedHealth.CircuitSnapshot()
		if out.Feed.State == resilience.CircuitStateOpen {
			out.Status = "degraded"
		}
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	items, err := h.matchService.ListCompetitions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]competitionDTO, 0, len(items))
	for _, c := range items {
		out = append(out, competitionToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	season, err := h.seasonFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.matchService.ListMatches(ctx, season.CompetitionID, season.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed",
			"competition_id", season.CompetitionID,
			"season_id", season.SeasonID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetCompetitionOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetitionOverview")
	defer span.End()

	season, err := h.seasonFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	overview, err := h.overviewService.Overview(ctx, season.CompetitionID, season.SeasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "competition overview failed",
			"competition_id", season.CompetitionID,
			"season_id", season.SeasonID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewToDTO(overview))
}

func (h *Handler) GetMatchAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchAnalysis")
	defer span.End()

	matchID, err := parseID("matchID", r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, matchPath{MatchID: matchID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	analysis, err := h.matchService.Analyze(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match analysis failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchAnalysisToDTO(analysis))
}

func (h *Handler) seasonFromPath(r *http.Request) (seasonPath, error) {
	competitionID, err := parseID("competitionID", r.PathValue("competitionID"))
	if err != nil {
		return seasonPath{}, err
	}
	seasonID, err := parseID("seasonID", r.PathValue("seasonID"))
	if err != nil {
		return seasonPath{}, err
	}
	out := seasonPath{CompetitionID: competitionID, SeasonID: seasonID}
	if err := h.validateRequest(r.Context(), out); err != nil {
		return seasonPath{}, err
	}
	return out, nil
}
