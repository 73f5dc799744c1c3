package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/riskibarqy/match-insights/internal/usecase"
)

const (
	MetricsSourceCSV      = "csv"
	MetricsSourcePostgres = "postgres"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv                         string
	ServiceName                    string
	ServiceVersion                 string
	HTTPAddr                       string
	ReadTimeout                    time.Duration
	WriteTimeout                   time.Duration
	LogLevel                       logging.Level
	CORSAllowedOrigins             []string
	SwaggerEnabled                 bool
	CacheEnabled                   bool
	CacheTTL                       time.Duration
	CacheMaxEntries                int
	StatsBombBaseURL               string
	StatsBombTimeout               time.Duration
	StatsBombMaxRetries            int
	StatsBombRetryBackoff          time.Duration
	StatsBombCircuitEnabled        bool
	StatsBombCircuitFailureCount   int
	StatsBombCircuitOpenTimeout    time.Duration
	StatsBombCircuitHalfOpenMaxReq int
	FeaturedCompetition            usecase.CompetitionSeason
	ProfileCompetitions            []usecase.CompetitionSeason
	PlayerMetricsSource            string
	PlayerMetricsDir               string
	DBURL                          string
	DBDisablePreparedBinary        bool
	OverviewWorkers                int
	ClusterK                       int
	ClusterComponents              int
	ClusterSpace                   usecase.ClusterSpace
	ClusterRestarts                int
	PprofEnabled                   bool
	PprofAddr                      string
	UptraceEnabled                 bool
	UptraceDSN                     string
	UptraceLogsEnabled             bool
	PyroscopeEnabled               bool
	PyroscopeServerAddress         string
	PyroscopeAppName               string
	PyroscopeAuthToken             string
	PyroscopeBasicAuthUser         string
	PyroscopeBasicAuthPassword     string
	PyroscopeUploadRate            time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	// Competition overviews walk a whole season through the feed.
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "120s")
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsPositiveDuration("CACHE_TTL", "1h")
	if err != nil {
		return Config{}, err
	}
	cacheMaxEntries, err := getEnvAsInt("CACHE_MAX_ENTRIES", 512)
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_MAX_ENTRIES: %w", err)
	}
	if cacheMaxEntries < 1 {
		return Config{}, fmt.Errorf("CACHE_MAX_ENTRIES must be >= 1")
	}

	statsBombTimeout, err := getEnvAsPositiveDuration("STATSBOMB_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	statsBombMaxRetries, err := getEnvAsInt("STATSBOMB_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSBOMB_MAX_RETRIES: %w", err)
	}
	if statsBombMaxRetries < 0 {
		return Config{}, fmt.Errorf("STATSBOMB_MAX_RETRIES must be >= 0")
	}
	statsBombRetryBackoff, err := getEnvAsPositiveDuration("STATSBOMB_RETRY_BACKOFF", "1s")
	if err != nil {
		return Config{}, err
	}
	statsBombCircuitEnabled, err := strconv.ParseBool(getEnv("STATSBOMB_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSBOMB_CIRCUIT_ENABLED: %w", err)
	}
	statsBombCircuitFailureCount, err := getEnvAsInt("STATSBOMB_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSBOMB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if statsBombCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STATSBOMB_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	statsBombCircuitOpenTimeout, err := getEnvAsPositiveDuration("STATSBOMB_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	statsBombCircuitHalfOpenMaxReq, err := getEnvAsInt("STATSBOMB_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATSBOMB_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if statsBombCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STATSBOMB_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	featured, err := usecase.ParseCompetitionSeason(getEnv("FEATURED_COMPETITION", "37:90"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FEATURED_COMPETITION: %w", err)
	}
	profileCompetitions, err := parseCompetitionSeasons(getEnv("PROFILE_COMPETITIONS", "37:90,2:27"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PROFILE_COMPETITIONS: %w", err)
	}

	metricsSource := strings.ToLower(strings.TrimSpace(getEnv("PLAYER_METRICS_SOURCE", MetricsSourceCSV)))
	switch metricsSource {
	case MetricsSourceCSV, MetricsSourcePostgres:
	default:
		return Config{}, fmt.Errorf("invalid PLAYER_METRICS_SOURCE %q: valid values are %s, %s", metricsSource, MetricsSourceCSV, MetricsSourcePostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if metricsSource == MetricsSourcePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when PLAYER_METRICS_SOURCE=postgres")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	overviewWorkers, err := getEnvAsInt("OVERVIEW_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse OVERVIEW_WORKERS: %w", err)
	}
	if overviewWorkers < 1 {
		return Config{}, fmt.Errorf("OVERVIEW_WORKERS must be >= 1")
	}

	clusterK, err := getEnvAsInt("CLUSTER_K", usecase.DefaultClusterK)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUSTER_K: %w", err)
	}
	if clusterK < 2 || clusterK > usecase.MaxClusterK {
		return Config{}, fmt.Errorf("CLUSTER_K must be between 2 and %d", usecase.MaxClusterK)
	}
	clusterComponents, err := getEnvAsInt("CLUSTER_COMPONENTS", usecase.DefaultClusterComponents)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUSTER_COMPONENTS: %w", err)
	}
	if clusterComponents < 2 {
		return Config{}, fmt.Errorf("CLUSTER_COMPONENTS must be >= 2")
	}
	clusterSpace := usecase.ClusterSpace(strings.ToLower(strings.TrimSpace(getEnv("CLUSTER_SPACE", string(usecase.ClusterOnScaled)))))
	if clusterSpace != usecase.ClusterOnScaled && clusterSpace != usecase.ClusterOnComponents {
		return Config{}, fmt.Errorf("invalid CLUSTER_SPACE %q: valid values are %s, %s", clusterSpace, usecase.ClusterOnScaled, usecase.ClusterOnComponents)
	}
	clusterRestarts, err := getEnvAsInt("CLUSTER_RESTARTS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUSTER_RESTARTS: %w", err)
	}
	if clusterRestarts < 1 {
		return Config{}, fmt.Errorf("CLUSTER_RESTARTS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                         appEnv,
		ServiceName:                    getEnv("APP_SERVICE_NAME", "match-insights-api"),
		ServiceVersion:                 getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                    readTimeout,
		WriteTimeout:                   writeTimeout,
		LogLevel:                       logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:             splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SwaggerEnabled:                 swaggerEnabled,
		CacheEnabled:                   cacheEnabled,
		CacheTTL:                       cacheTTL,
		CacheMaxEntries:                cacheMaxEntries,
		StatsBombBaseURL:               strings.TrimSpace(getEnv("STATSBOMB_BASE_URL", "https://raw.githubusercontent.com/statsbomb/open-data/master/data")),
		StatsBombTimeout:               statsBombTimeout,
		StatsBombMaxRetries:            statsBombMaxRetries,
		StatsBombRetryBackoff:          statsBombRetryBackoff,
		StatsBombCircuitEnabled:        statsBombCircuitEnabled,
		StatsBombCircuitFailureCount:   statsBombCircuitFailureCount,
		StatsBombCircuitOpenTimeout:    statsBombCircuitOpenTimeout,
		StatsBombCircuitHalfOpenMaxReq: statsBombCircuitHalfOpenMaxReq,
		FeaturedCompetition:            featured,
		ProfileCompetitions:            profileCompetitions,
		PlayerMetricsSource:            metricsSource,
		PlayerMetricsDir:               strings.TrimSpace(getEnv("PLAYER_METRICS_DIR", "data")),
		DBURL:                          dbURL,
		DBDisablePreparedBinary:        dbDisablePreparedBinary,
		OverviewWorkers:                overviewWorkers,
		ClusterK:                       clusterK,
		ClusterComponents:              clusterComponents,
		ClusterSpace:                   clusterSpace,
		ClusterRestarts:                clusterRestarts,
		PprofEnabled:                   pprofEnabled,
		PprofAddr:                      pprofAddr,
		UptraceEnabled:                 uptraceEnabled,
		UptraceDSN:                     uptraceDSN,
		UptraceLogsEnabled:             uptraceLogsEnabled,
		PyroscopeEnabled:               pyroscopeEnabled,
		PyroscopeServerAddress:         pyroscopeServerAddress,
		PyroscopeAuthToken:             strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:         strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:            pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PlayerMetricsSource == MetricsSourceCSV && cfg.PlayerMetricsDir == "" {
		return Config{}, fmt.Errorf("PLAYER_METRICS_DIR cannot be empty when PLAYER_METRICS_SOURCE=csv")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseCompetitionSeasons reads "37:90,2:27". Duplicates are dropped.
func parseCompetitionSeasons(raw string) ([]usecase.CompetitionSeason, error) {
	items := splitCSV(raw)
	out := make([]usecase.CompetitionSeason, 0, len(items))
	seen := make(map[usecase.CompetitionSeason]struct{}, len(items))
	for _, item := range items {
		season, err := usecase.ParseCompetitionSeason(item)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[season]; ok {
			continue
		}
		seen[season] = struct{}{}
		out = append(out, season)
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
