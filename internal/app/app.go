package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-insights/external/statsbomb"
	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	cacherepo "github.com/riskibarqy/match-insights/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/match-insights/internal/infrastructure/repository/csvfile"
	"github.com/riskibarqy/match-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-insights/internal/interfaces/httpapi"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/riskibarqy/match-insights/internal/platform/resilience"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

// Services is the dependency graph shared by the HTTP API and the CLI.
type Services struct {
	Feed     *statsbomb.Client
	Matches  *usecase.MatchAnalysisService
	Overview *usecase.CompetitionOverviewService
	Profiles *usecase.ProfileService
	Cluster  usecase.ClusterParams

	db     *sqlx.DB
	cache  *cache.Store
	logger *logging.Logger
}

func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL, cache.WithMaxEntries(cfg.CacheMaxEntries))
	}

	client := statsbomb.NewClient(statsbomb.ClientConfig{
		BaseURL:      cfg.StatsBombBaseURL,
		Timeout:      cfg.StatsBombTimeout,
		MaxRetries:   cfg.StatsBombMaxRetries,
		RetryBackoff: cfg.StatsBombRetryBackoff,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsBombCircuitEnabled,
			FailureThreshold: cfg.StatsBombCircuitFailureCount,
			OpenTimeout:      cfg.StatsBombCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsBombCircuitHalfOpenMaxReq,
		},
	})
	feed := cacherepo.NewFeed(client, store)

	out := &Services{Feed: client, cache: store, logger: logger}

	var repo playerprofile.Repository
	switch cfg.PlayerMetricsSource {
	case config.MetricsSourcePostgres:
		db, err := OpenDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		out.db = db
		repo = postgres.NewPlayerMetricsRepository(db)
	default:
		repo = csvfile.NewPlayerMetricsRepository(cfg.PlayerMetricsDir)
	}
	repo = cacherepo.NewPlayerMetricsRepository(repo, store)

	out.Matches = usecase.NewMatchAnalysisService(feed, store, cfg.FeaturedCompetition, logger)
	out.Overview = usecase.NewCompetitionOverviewService(out.Matches, store, cfg.OverviewWorkers, logger)
	out.Profiles = usecase.NewProfileService(repo, feed, store, usecase.ProfileServiceConfig{
		GenderSources: cfg.ProfileCompetitions,
		Restarts:      cfg.ClusterRestarts,
		Logger:        logger,
	})
	out.Cluster = usecase.ClusterParams{
		K:          cfg.ClusterK,
		Components: cfg.ClusterComponents,
		Space:      cfg.ClusterSpace,
	}

	return out, nil
}

// Close releases the database pool, if any, and logs cache effectiveness.
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	if s.cache != nil && s.logger != nil {
		stats := s.cache.Stats()
		s.logger.Debug("cache stats", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
	}
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	services, err := NewServices(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	handler := httpapi.NewHandler(
		services.Matches,
		services.Overview,
		services.Profiles,
		services.Feed,
		services.Cluster,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, services.Close, nil
}
