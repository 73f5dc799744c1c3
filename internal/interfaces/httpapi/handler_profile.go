package httpapi

import (
	"net/http"

	"github.com/riskibarqy/match-insights/internal/usecase"
)

func (h *Handler) GetProfileSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfileSummary")
	defer span.End()

	profile, err := parseProfile(r.PathValue("profile"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.profileService.Summary(ctx, profile)
	if err != nil {
		h.logger.WarnContext(ctx, "profile summary failed", "profile", profile, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, profileSummaryToDTO(summary))
}

func (h *Handler) GetProfileClusters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfileClusters")
	defer span.End()

	profile, err := parseProfile(r.PathValue("profile"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	params, err := h.clusterParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.profileService.Cluster(ctx, profile, params)
	if err != nil {
		h.logger.WarnContext(ctx, "profile clustering failed", "profile", profile, "k", params.K, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, clusterResultToDTO(result))
}

func (h *Handler) GetProfileElbow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProfileElbow")
	defer span.End()

	profile, err := parseProfile(r.PathValue("profile"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	query := elbowQuery{}
	if query.Min, err = queryInt(r.URL.Query(), "min", 1); err != nil {
		writeError(ctx, w, err)
		return
	}
	if query.Max, err = queryInt(r.URL.Query(), "max", usecase.MaxClusterK); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	points, err := h.profileService.Elbow(ctx, profile, query.Min, query.Max)
	if err != nil {
		h.logger.WarnContext(ctx, "profile elbow failed", "profile", profile, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]elbowPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, elbowPointDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// clusterParams reads k, components and space from the query string, falling
// back to the configured defaults.
func (h *Handler) clusterParams(r *http.Request) (usecase.ClusterParams, error) {
	values := r.URL.Query()
	query := clusterQuery{Space: values.Get("space")}

	var err error
	if query.K, err = queryInt(values, "k", h.clusterDefaults.K); err != nil {
		return usecase.ClusterParams{}, err
	}
	if query.Components, err = queryInt(values, "components", h.clusterDefaults.Components); err != nil {
		return usecase.ClusterParams{}, err
	}
	if query.Space == "" {
		query.Space = string(h.clusterDefaults.Space)
	}
	if err := h.validateRequest(r.Context(), query); err != nil {
		return usecase.ClusterParams{}, err
	}

	return usecase.ClusterParams{
		K:          query.K,
		Components: query.Components,
		Space:      usecase.ClusterSpace(query.Space),
	}, nil
}
