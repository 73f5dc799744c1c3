package statsbomb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-insights/internal/domain/matchevent"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/riskibarqy/match-insights/internal/platform/resilience"
	"github.com/riskibarqy/match-insights/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL = "https://raw.githubusercontent.com/statsbomb/open-data/master/data"
	// Event files for a full match run to a few megabytes.
	maxPayloadBytes = 32 << 20
)

var errStatsBombTransient = crerr.New("statsbomb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the StatsBomb open-data repository over HTTP.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	logger = logger.Named("statsbomb")
	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker,
			resilience.WithFailureClassifier(isCircuitFailure),
			resilience.WithStateChangeHook(func(from, to resilience.CircuitState) {
				logger.Warn("statsbomb circuit breaker state changed", "from", from, "to", to)
			}),
		),
	}
}

// CircuitSnapshot reports the provider breaker state.
func (c *Client) CircuitSnapshot() resilience.Snapshot {
	return c.breaker.Snapshot()
}

func (c *Client) FetchCompetitions(ctx context.Context) ([]matchevent.Competition, error) {
	var payload []competitionItem
	if err := c.doJSON(ctx, "/competitions.json", &payload); err != nil {
		return nil, fmt.Errorf("fetch competitions: %w", err)
	}

	out := make([]matchevent.Competition, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) FetchMatches(ctx context.Context, competitionID, seasonID int64) ([]matchevent.Match, error) {
	if competitionID <= 0 || seasonID <= 0 {
		return nil, fmt.Errorf("%w: competition and season ids must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload []matchItem
	path := fmt.Sprintf("/matches/%d/%d.json", competitionID, seasonID)
	if err := c.doJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("fetch matches competition_id=%d season_id=%d: %w", competitionID, seasonID, err)
	}

	out := make([]matchevent.Match, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) FetchEvents(ctx context.Context, matchID int64) ([]matchevent.Event, error) {
	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload []eventItem
	path := fmt.Sprintf("/events/%d.json", matchID)
	if err := c.doJSON(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("fetch events match_id=%d: %w", matchID, err)
	}

	out := make([]matchevent.Event, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toDomain())
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	fullURL := c.baseURL + path
	// The shared request outlives any one caller; each caller stops waiting
	// when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(path, func() (any, error) {
		var raw []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(flightCtx, fullURL)
			return reqErr
		})
		return raw, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-ch:
	}
	out, err, shared := res.Val, res.Err, res.Shared
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "statsbomb circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return fmt.Errorf("%w: open-data feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return err
	}
	if shared {
		c.logger.DebugContext(ctx, "statsbomb request shared with in-flight call", "path", path)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %v", errStatsBombTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errStatsBombTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s", usecase.ErrNotFound, strings.TrimPrefix(fullURL, c.baseURL))
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errStatsBombTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		c.logger.DebugContext(ctx, "retrying statsbomb request", "url", fullURL, "attempt", attempt+1, "error", lastErr)
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "statsbomb request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errStatsBombTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
