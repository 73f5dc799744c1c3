package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/platform/analytics"
	"github.com/riskibarqy/match-insights/internal/platform/cache"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	DefaultClusterK          = 4
	DefaultClusterComponents = 2
	MaxClusterK              = 10
	HistogramBins            = 10
	profileHighlights        = 3
)

// ClusterSpace selects the feature space k-means runs in.
type ClusterSpace string

const (
	ClusterOnScaled     ClusterSpace = "scaled"
	ClusterOnComponents ClusterSpace = "pca"
)

type ClusterParams struct {
	K          int
	Components int
	Space      ClusterSpace
}

type MetricHistogram struct {
	Metric string
	Label  string
	Bins   []analytics.Bin
}

// ProfileSummary is the exploration view of a profile: the player table,
// correlations and per-metric distributions.
type ProfileSummary struct {
	Profile     playerprofile.Profile
	Metrics     []string
	Labels      []string
	Players     []playerprofile.PlayerAggregate
	Excluded    int
	Means       []float64
	Correlation [][]float64
	Histograms  []MetricHistogram
}

type ClusteredPlayer struct {
	playerprofile.PlayerAggregate
	Cluster    int
	Projection []float64
}

type MetricScore struct {
	Metric string
	Label  string
	Score  float64
}

type GenderShare struct {
	Gender  string
	Players int
	Percent float64
}

type ClusterProfile struct {
	ID              int
	Size            int
	RawMeans        []float64
	NormalizedMeans []float64
	Strengths       []MetricScore
	Weaknesses      []MetricScore
	Genders         []GenderShare
}

type ClusterResult struct {
	Profile        playerprofile.Profile
	Params         ClusterParams
	Metrics        []string
	Labels         []string
	Players        []ClusteredPlayer
	Clusters       []ClusterProfile
	ExplainedRatio []float64
	Loadings       [][]float64
	Silhouette     float64
	Inertia        float64
}

type profileData struct {
	metrics  []string
	players  []playerprofile.PlayerAggregate
	excluded int
}

type ProfileService struct {
	repo          playerprofile.Repository
	feed          matchevent.Feed
	genderSources []CompetitionSeason
	cache         *cache.Store
	restarts      int
	logger        *logging.Logger
}

type ProfileServiceConfig struct {
	GenderSources []CompetitionSeason
	Restarts      int
	Logger        *logging.Logger
}

func NewProfileService(repo playerprofile.Repository, feed matchevent.Feed, store *cache.Store, cfg ProfileServiceConfig) *ProfileService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	restarts := cfg.Restarts
	if restarts < 1 {
		restarts = analytics.DefaultRestarts
	}
	return &ProfileService{
		repo:          repo,
		feed:          feed,
		genderSources: append([]CompetitionSeason(nil), cfg.GenderSources...),
		cache:         store,
		restarts:      restarts,
		logger:        logger,
	}
}

func (s *ProfileService) Summary(ctx context.Context, profile playerprofile.Profile) (ProfileSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Summary")
	defer span.End()

	data, err := s.load(ctx, profile)
	if err != nil {
		return ProfileSummary{}, err
	}

	x := playerprofile.Matrix(data.players)
	means, err := analytics.ColumnMeans(x)
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("column means: %w", err)
	}
	corr, err := analytics.CorrelationMatrix(x)
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("correlation matrix: %w", err)
	}

	histograms := make([]MetricHistogram, 0, len(data.metrics))
	for j, metric := range data.metrics {
		histograms = append(histograms, MetricHistogram{
			Metric: metric,
			Label:  playerprofile.DisplayLabel(metric),
			Bins:   analytics.Histogram(analytics.Column(x, j), HistogramBins),
		})
	}

	return ProfileSummary{
		Profile:     profile,
		Metrics:     data.metrics,
		Labels:      playerprofile.DisplayLabels(data.metrics),
		Players:     data.players,
		Excluded:    data.excluded,
		Means:       means,
		Correlation: corr,
		Histograms:  histograms,
	}, nil
}

// Cluster standardises the player metrics, projects them on principal
// components and partitions them with k-means.
func (s *ProfileService) Cluster(ctx context.Context, profile playerprofile.Profile, params ClusterParams) (ClusterResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Cluster")
	defer span.End()

	params = normalizeClusterParams(params)
	data, err := s.load(ctx, profile)
	if err != nil {
		return ClusterResult{}, err
	}
	if err := validateClusterParams(params, len(data.players), len(data.metrics)); err != nil {
		return ClusterResult{}, err
	}

	key := fmt.Sprintf("profile:%s:cluster:%d:%d:%s", profile, params.K, params.Components, params.Space)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (ClusterResult, error) {
		result, err := clusterPlayers(profile, data, params, s.restarts)
		if err != nil {
			return ClusterResult{}, err
		}
		s.logger.InfoContext(ctx, "profile clustered",
			"profile", profile,
			"players", len(result.Players),
			"k", params.K,
			"silhouette", result.Silhouette,
		)
		return result, nil
	})
}

// Elbow reports k-means inertia for every k in [kMin, kMax].
func (s *ProfileService) Elbow(ctx context.Context, profile playerprofile.Profile, kMin, kMax int) ([]analytics.ElbowPoint, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.Elbow")
	defer span.End()

	if kMin < 1 || kMax < kMin || kMax > MaxClusterK {
		return nil, fmt.Errorf("%w: elbow range must satisfy 1 <= min <= max <= %d", ErrInvalidInput, MaxClusterK)
	}
	data, err := s.load(ctx, profile)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("profile:%s:elbow:%d:%d", profile, kMin, kMax)
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) ([]analytics.ElbowPoint, error) {
		scaled, err := analytics.Standardize(playerprofile.Matrix(data.players))
		if err != nil {
			return nil, fmt.Errorf("standardize: %w", err)
		}
		return analytics.Elbow(scaled, kMin, kMax, s.restarts)
	})
}

func (s *ProfileService) load(ctx context.Context, profile playerprofile.Profile) (profileData, error) {
	if profile != playerprofile.Defenders && profile != playerprofile.Attackers {
		return profileData{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidInput, profile)
	}

	return cache.Load(ctx, s.cache, "profile:"+string(profile)+":players", func(ctx context.Context) (profileData, error) {
		table, err := s.repo.ListMatchMetrics(ctx, profile)
		if err != nil {
			return profileData{}, fmt.Errorf("list %s metrics: %w", profile, err)
		}
		if len(table.Metrics) == 0 {
			return profileData{}, fmt.Errorf("%w: %s metrics table has no metric columns", ErrNotFound, profile)
		}

		if len(s.genderSources) > 0 {
			genders, err := s.genderByMatch(ctx)
			if err != nil {
				return profileData{}, err
			}
			before := len(table.Rows)
			table = playerprofile.AttachGender(table, genders)
			if dropped := before - len(table.Rows); dropped > 0 {
				s.logger.WarnContext(ctx, "metric rows without a known match dropped", "profile", profile, "rows", dropped)
			}
		}

		complete, incomplete := playerprofile.SplitComplete(playerprofile.Aggregate(table))
		if len(complete) == 0 {
			return profileData{}, fmt.Errorf("%w: no %s with a complete metric set", ErrNotFound, profile)
		}
		return profileData{metrics: table.Metrics, players: complete, excluded: len(incomplete)}, nil
	})
}

// genderByMatch maps match ids to the home team gender across every
// configured season, fetching the seasons concurrently.
func (s *ProfileService) genderByMatch(ctx context.Context) (map[int64]string, error) {
	p := pool.NewWithResults[[]matchevent.Match]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(len(s.genderSources))
	for _, source := range s.genderSources {
		p.Go(func(ctx context.Context) ([]matchevent.Match, error) {
			matches, err := s.feed.FetchMatches(ctx, source.CompetitionID, source.SeasonID)
			if err != nil {
				return nil, fmt.Errorf("fetch matches %s: %w", source, err)
			}
			return matches, nil
		})
	}
	seasons, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make(map[int64]string)
	for _, matches := range seasons {
		for _, m := range matches {
			if m.HomeTeamGender != "" {
				out[m.MatchID] = m.HomeTeamGender
			}
		}
	}
	return out, nil
}

func normalizeClusterParams(p ClusterParams) ClusterParams {
	if p.K == 0 {
		p.K = DefaultClusterK
	}
	if p.Components == 0 {
		p.Components = DefaultClusterComponents
	}
	if p.Space == "" {
		p.Space = ClusterOnScaled
	}
	return p
}

func validateClusterParams(p ClusterParams, players, metrics int) error {
	if p.K < 2 || p.K > MaxClusterK {
		return fmt.Errorf("%w: k must be between 2 and %d", ErrInvalidInput, MaxClusterK)
	}
	if p.K > players {
		return fmt.Errorf("%w: k=%d exceeds the %d available players", ErrInvalidInput, p.K, players)
	}
	if p.Components < 2 || p.Components > metrics || p.Components > players {
		return fmt.Errorf("%w: components must be between 2 and %d", ErrInvalidInput, min(metrics, players))
	}
	if p.Space != ClusterOnScaled && p.Space != ClusterOnComponents {
		return fmt.Errorf("%w: space must be %q or %q", ErrInvalidInput, ClusterOnScaled, ClusterOnComponents)
	}
	return nil
}

func clusterPlayers(profile playerprofile.Profile, data profileData, params ClusterParams, restarts int) (ClusterResult, error) {
	raw := playerprofile.Matrix(data.players)
	scaled, err := analytics.Standardize(raw)
	if err != nil {
		return ClusterResult{}, fmt.Errorf("standardize: %w", err)
	}
	pca, err := analytics.PCA(scaled, params.Components)
	if err != nil {
		return ClusterResult{}, fmt.Errorf("pca: %w", err)
	}

	features := scaled
	if params.Space == ClusterOnComponents {
		features = pca.Projections
	}
	km, err := analytics.KMeans(features, params.K, restarts)
	if err != nil {
		return ClusterResult{}, err
	}
	silhouette, err := analytics.Silhouette(features, km.Labels)
	if err != nil {
		return ClusterResult{}, fmt.Errorf("silhouette: %w", err)
	}

	rawMeans, err := analytics.GroupMeans(raw, km.Labels, params.K)
	if err != nil {
		return ClusterResult{}, err
	}
	scaledMeans, err := analytics.GroupMeans(scaled, km.Labels, params.K)
	if err != nil {
		return ClusterResult{}, err
	}
	normalized, err := analytics.MinMax(raw)
	if err != nil {
		return ClusterResult{}, err
	}
	normalizedMeans, err := analytics.GroupMeans(normalized, km.Labels, params.K)
	if err != nil {
		return ClusterResult{}, err
	}

	players := make([]ClusteredPlayer, len(data.players))
	for i, p := range data.players {
		players[i] = ClusteredPlayer{
			PlayerAggregate: p,
			Cluster:         km.Labels[i],
			Projection:      pca.Projections[i],
		}
	}

	clusters := make([]ClusterProfile, params.K)
	for c := range clusters {
		strengths, weaknesses := highlights(data.metrics, scaledMeans[c], profileHighlights)
		clusters[c] = ClusterProfile{
			ID:              c,
			Size:            km.Sizes[c],
			RawMeans:        rawMeans[c],
			NormalizedMeans: normalizedMeans[c],
			Strengths:       strengths,
			Weaknesses:      weaknesses,
			Genders:         genderShares(players, c),
		}
	}

	return ClusterResult{
		Profile:        profile,
		Params:         params,
		Metrics:        data.metrics,
		Labels:         playerprofile.DisplayLabels(data.metrics),
		Players:        players,
		Clusters:       clusters,
		ExplainedRatio: pca.ExplainedRatio,
		Loadings:       pca.Loadings,
		Silhouette:     silhouette,
		Inertia:        km.Inertia,
	}, nil
}

// highlights returns the n metrics with the highest and the lowest
// standardised cluster mean.
func highlights(metrics []string, scaledMeans []float64, n int) (top, bottom []MetricScore) {
	scores := make([]MetricScore, len(metrics))
	for i, metric := range metrics {
		scores[i] = MetricScore{Metric: metric, Label: playerprofile.DisplayLabel(metric), Score: scaledMeans[i]}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	n = min(n, len(scores))
	top = append([]MetricScore(nil), scores[:n]...)
	for i := len(scores) - 1; i >= len(scores)-n; i-- {
		bottom = append(bottom, scores[i])
	}
	return top, bottom
}

func genderShares(players []ClusteredPlayer, cluster int) []GenderShare {
	counts := make(map[string]int)
	total := 0
	for _, p := range players {
		if p.Cluster != cluster {
			continue
		}
		gender := p.Gender
		if gender == "" {
			gender = "unknown"
		}
		counts[gender]++
		total++
	}

	out := make([]GenderShare, 0, len(counts))
	for gender, n := range counts {
		out = append(out, GenderShare{Gender: gender, Players: n, Percent: float64(n) / float64(total) * 100})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gender < out[j].Gender })
	return out
}
