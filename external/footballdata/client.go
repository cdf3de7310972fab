package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/last-man-standing/internal/domain/match"
	"github.com/riskibarqy/last-man-standing/internal/platform/logging"
	"github.com/riskibarqy/last-man-standing/internal/platform/resilience"
	"github.com/riskibarqy/last-man-standing/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.football-data.org/v4"
	defaultCompetition = "2021"
	maxResponseBytes   = 6 << 20
	scheduledStatuses  = "SCHEDULED,TIMED"
)

var errFootballDataTransient = crerr.New("football-data transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Competition    string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads Premier League fixtures from football-data.org v4 and implements
// match.Provider.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	competition string
	retry       resilience.RetryPolicy
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	flight      resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	competition := strings.TrimSpace(cfg.Competition)
	if competition == "" {
		competition = defaultCompetition
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		token:       strings.TrimSpace(cfg.Token),
		competition: competition,
		retry:       resilience.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), Backoff: cfg.RetryBackoff},
		logger:      logger,
		breaker:     resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

func (c *Client) MatchesByRound(ctx context.Context, round int) ([]match.Match, error) {
	if round <= 0 {
		return nil, fmt.Errorf("%w: round must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload matchesEnvelope
	query := url.Values{"matchday": []string{strconv.Itoa(round)}}
	if err := c.doJSON(ctx, c.matchesPath(), query, &payload); err != nil {
		return nil, fmt.Errorf("fetch matches matchday=%d: %w", round, err)
	}
	return mapMatches(payload.Matches, round), nil
}

func (c *Client) ScheduledMatches(ctx context.Context) ([]match.Match, error) {
	var payload matchesEnvelope
	query := url.Values{"status": []string{scheduledStatuses}}
	if err := c.doJSON(ctx, c.matchesPath(), query, &payload); err != nil {
		return nil, fmt.Errorf("fetch scheduled matches: %w", err)
	}
	return mapMatches(payload.Matches, 0), nil
}

func (c *Client) matchesPath() string {
	return "/competitions/" + url.PathEscape(c.competition) + "/matches"
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && crerr.Is(reqErr, errFootballDataTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, c.retry, func(attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return crerr.Mark(crerr.Wrap(err, "build request"), resilience.ErrPermanent)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set("X-Auth-Token", c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return crerr.Mark(
				crerr.Newf("send request: %s", sanitizeSensitiveText(err.Error(), c.token)),
				errFootballDataTransient,
			)
		}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			return crerr.Mark(crerr.Wrap(readErr, "read response body"), errFootballDataTransient)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = raw
			return nil
		case isRetryableStatus(resp.StatusCode):
			c.logger.WarnContext(ctx, "football-data request failed, retrying",
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
			return crerr.Mark(
				crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)),
				errFootballDataTransient,
			)
		default:
			return crerr.Mark(
				crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)),
				resilience.ErrPermanent,
			)
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func mapMatches(items []apiMatch, fallbackRound int) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		round := item.Matchday
		if round <= 0 {
			round = fallbackRound
		}
		m := match.Match{
			ID:        strconv.FormatInt(item.ID, 10),
			Round:     round,
			HomeTeam:  strings.TrimSpace(item.HomeTeam.Name),
			AwayTeam:  strings.TrimSpace(item.AwayTeam.Name),
			HomeCrest: item.HomeTeam.Crest,
			AwayCrest: item.AwayTeam.Crest,
			Status:    match.NormalizeStatus(item.Status),
			KickoffAt: parseKickoff(item.UTCDate),
		}
		if item.Score.FullTime.Home != nil && item.Score.FullTime.Away != nil {
			m.Score = &match.Score{Home: *item.Score.FullTime.Home, Away: *item.Score.FullTime.Away}
		}
		out = append(out, m)
	}
	return out
}

func parseKickoff(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
