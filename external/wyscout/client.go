package wyscout

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/datametrics/matchdesk/internal/domain/fixture"
	"github.com/datametrics/matchdesk/internal/domain/player"
	"github.com/datametrics/matchdesk/internal/platform/cache"
	"github.com/datametrics/matchdesk/internal/platform/logging"
	"github.com/datametrics/matchdesk/internal/platform/resilience"
	"github.com/datametrics/matchdesk/internal/usecase"
)

const (
	defaultBaseURLV2 = "https://apirest.wyscout.com/v2"
	defaultBaseURLV3 = "https://apirest.wyscout.com/v3"
)

// APIVersion selects which provider API generation a call targets.
type APIVersion string

const (
	APIv2 APIVersion = "v2"
	APIv3 APIVersion = "v3"
)

var errWyscoutTransient = crerr.New("wyscout transient failure")

// ProviderError carries the upstream HTTP status and raw body. The body is
// not guaranteed to be JSON.
type ProviderError struct {
	StatusCode int
	Body       []byte
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider status=%d body=%s", e.StatusCode, abbreviateBody(e.Body))
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURLV2      string
	BaseURLV3      string
	Username       string
	Password       string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Cache          *cache.Store
}

type Client struct {
	httpClient     *http.Client
	baseURLV2      string
	baseURLV3      string
	username       string
	password       string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	cache          *cache.Store
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURLV2 := strings.TrimRight(strings.TrimSpace(cfg.BaseURLV2), "/")
	if baseURLV2 == "" {
		baseURLV2 = defaultBaseURLV2
	}
	baseURLV3 := strings.TrimRight(strings.TrimSpace(cfg.BaseURLV3), "/")
	if baseURLV3 == "" {
		baseURLV3 = defaultBaseURLV3
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURLV2:      baseURLV2,
		baseURLV3:      baseURLV3,
		username:       strings.TrimSpace(cfg.Username),
		password:       strings.TrimSpace(cfg.Password),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		cache:          cfg.Cache,
	}
}

// FetchResource issues one authenticated GET against the selected API
// generation and returns the raw body. Non-2xx responses surface as
// *ProviderError.
func (c *Client) FetchResource(ctx context.Context, path string, query url.Values, version APIVersion) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "wyscout circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	base := c.baseURLV2
	if version == APIv3 {
		base = c.baseURLV3
	}
	fullURL := base + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := string(version) + ":" + fullURL
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errWyscoutTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.SetBasicAuth(c.username, c.password)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errWyscoutTransient, sanitizeSensitiveText(err.Error(), c.password))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errWyscoutTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: %v", errWyscoutTransient, &ProviderError{StatusCode: resp.StatusCode, Body: raw})
			default:
				// Terminal client error: keep status and body intact for the caller.
				return nil, &ProviderError{StatusCode: resp.StatusCode, Body: raw}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
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
	c.logger.WarnContext(ctx, "wyscout request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// SearchPlayers runs the free-text player search. The minimum query length
// gate lives in the usecase layer; by the time a call reaches here it is a
// real search.
func (c *Client) SearchPlayers(ctx context.Context, query string) ([]player.Player, error) {
	values := url.Values{}
	values.Set("query", strings.TrimSpace(query))

	raw, err := c.FetchResource(ctx, "/players/search", values, APIv2)
	if err != nil {
		return nil, fmt.Errorf("search players query=%q: %w", query, err)
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]player.Player, 0, len(items))
	for _, item := range items {
		mapped := mapPlayer(item)
		if mapped.ID == 0 {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

// PlayerDetail fetches a single player, optionally expanding related
// entities through the provider "details" selector.
func (c *Client) PlayerDetail(ctx context.Context, playerID int64, details string) (player.Player, error) {
	if playerID <= 0 {
		return player.Player{}, fmt.Errorf("player id must be greater than zero")
	}

	values := url.Values{}
	if strings.TrimSpace(details) != "" {
		values.Set("details", strings.TrimSpace(details))
	}
	values.Set("imageDataURL", "true")

	raw, err := c.FetchResource(ctx, "/players/"+strconv.FormatInt(playerID, 10), values, APIv2)
	if err != nil {
		return player.Player{}, fmt.Errorf("fetch player player_id=%d: %w", playerID, err)
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return player.Player{}, fmt.Errorf("decode provider payload: %w", err)
	}
	mapped := mapPlayer(decoded)
	if mapped.ID == 0 {
		mapped.ID = playerID
	}
	return mapped, nil
}

// TeamDetail returns the team name and image for the given id.
func (c *Client) TeamDetail(ctx context.Context, teamID int64) (string, string, error) {
	if teamID <= 0 {
		return "", "", fmt.Errorf("team id must be greater than zero")
	}

	values := url.Values{}
	values.Set("imageDataURL", "true")

	raw, err := c.FetchResource(ctx, "/teams/"+strconv.FormatInt(teamID, 10), values, APIv2)
	if err != nil {
		return "", "", fmt.Errorf("fetch team team_id=%d: %w", teamID, err)
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return "", "", fmt.Errorf("decode provider payload: %w", err)
	}
	return firstNonEmpty(getString(decoded, "officialName"), getString(decoded, "name")), getString(decoded, "imageDataURL"), nil
}

// PlayerFixtures returns one player's matches inside [from, to].
func (c *Client) PlayerFixtures(ctx context.Context, playerID int64, from, to time.Time) ([]fixture.Fixture, error) {
	if playerID <= 0 {
		return nil, fmt.Errorf("player id must be greater than zero")
	}

	values := url.Values{}
	values.Set("fromDate", from.Format("2006-01-02"))
	values.Set("toDate", to.Format("2006-01-02"))

	raw, err := c.FetchResource(ctx, "/players/"+strconv.FormatInt(playerID, 10)+"/matches", values, APIv2)
	if err != nil {
		return nil, fmt.Errorf("fetch player fixtures player_id=%d: %w", playerID, err)
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		out = append(out, mapFixture(item))
	}
	return out, nil
}

// Areas returns the bulk area list keyed by id. The list changes rarely, so
// it is served through the shared TTL cache.
func (c *Client) Areas(ctx context.Context) (map[int64]string, error) {
	load := func(ctx context.Context) (any, error) {
		raw, err := c.FetchResource(ctx, "/areas", nil, APIv2)
		if err != nil {
			return nil, fmt.Errorf("fetch areas: %w", err)
		}

		items, err := decodeList(raw)
		if err != nil {
			return nil, err
		}
		names := make(map[int64]string, len(items))
		for _, item := range items {
			id := getInt64Any(item, "id", "wyId")
			name := firstNonEmpty(getString(item, "name"), getString(item, "alpha3code"))
			if id == 0 || name == "" {
				continue
			}
			names[id] = name
		}
		return names, nil
	}

	if c.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.(map[int64]string), nil
	}

	out, err := c.cache.GetOrLoad(ctx, "wyscout:areas", load)
	if err != nil {
		return nil, err
	}
	names, ok := out.(map[int64]string)
	if !ok {
		return nil, fmt.Errorf("unexpected cached areas type %T", out)
	}
	return names, nil
}

// CompetitionName resolves a competition id to its display name.
func (c *Client) CompetitionName(ctx context.Context, competitionID int64) (string, error) {
	return c.fetchName(ctx, "/competitions/"+strconv.FormatInt(competitionID, 10), competitionID)
}

// SeasonName resolves a season id to its display name.
func (c *Client) SeasonName(ctx context.Context, seasonID int64) (string, error) {
	return c.fetchName(ctx, "/seasons/"+strconv.FormatInt(seasonID, 10), seasonID)
}

// RoundName resolves a round id to its display name.
func (c *Client) RoundName(ctx context.Context, roundID int64) (string, error) {
	return c.fetchName(ctx, "/rounds/"+strconv.FormatInt(roundID, 10), roundID)
}

func (c *Client) fetchName(ctx context.Context, path string, id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("id must be greater than zero")
	}

	raw, err := c.FetchResource(ctx, path, nil, APIv2)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode provider payload: %w", err)
	}
	return getString(decoded, "name"), nil
}

// SeasonFixtures returns the complete match schedule of a season. Many
// fixtures in one load share a season, so results go through the TTL cache
// and singleflight.
func (c *Client) SeasonFixtures(ctx context.Context, seasonID int64) ([]fixture.Fixture, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("season id must be greater than zero")
	}

	load := func(ctx context.Context) (any, error) {
		raw, err := c.FetchResource(ctx, "/seasons/"+strconv.FormatInt(seasonID, 10)+"/fixtures", nil, APIv2)
		if err != nil {
			return nil, fmt.Errorf("fetch season fixtures season_id=%d: %w", seasonID, err)
		}

		items, err := decodeList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]fixture.Fixture, 0, len(items))
		for _, item := range items {
			out = append(out, mapFixture(item))
		}
		return out, nil
	}

	if c.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]fixture.Fixture), nil
	}

	out, err := c.cache.GetOrLoad(ctx, "wyscout:season-fixtures:"+strconv.FormatInt(seasonID, 10), load)
	if err != nil {
		return nil, err
	}
	fixtures, ok := out.([]fixture.Fixture)
	if !ok {
		return nil, fmt.Errorf("unexpected cached season fixtures type %T", out)
	}
	return fixtures, nil
}

func decodeList(raw []byte) ([]map[string]any, error) {
	var decoded any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	return NormalizeList(decoded), nil
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
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

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
