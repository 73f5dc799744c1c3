package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAnalysisRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/seasons/{seasonID}/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/seasons/{seasonID}/overview", handler.GetCompetitionOverview)
	mux.HandleFunc("GET /v1/matches/{matchID}/analysis", handler.GetMatchAnalysis)
}

func registerProfileRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/profiles/{profile}", handler.GetProfileSummary)
	mux.HandleFunc("GET /v1/profiles/{profile}/clusters", handler.GetProfileClusters)
	mux.HandleFunc("GET /v1/profiles/{profile}/elbow", handler.GetProfileElbow)
}

// registerPageRoutes mounts the HTML dashboard. "GET /" also catches unknown
// paths and answers them with the error page.
func registerPageRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /", handler.Index)
	mux.HandleFunc("GET /match", handler.MatchPage)
	mux.HandleFunc("GET /profiles", handler.ProfilesPage)
	mux.HandleFunc("GET /notes", handler.NotesPage)
	mux.Handle("GET /static/", staticHandler())
}
