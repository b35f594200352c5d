// Package sportmonks is the SportMonks v3 football gateway: one HTTP edge
// with retries, per-endpoint circuit breaking, short-lived response caching
// and token redaction, plus the adapter that normalizes fixture payloads.
package sportmonks

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/sportsdock/fixture-sync/internal/domain/fixture"
	"github.com/sportsdock/fixture-sync/internal/platform/cache"
	"github.com/sportsdock/fixture-sync/internal/platform/logging"
	"github.com/sportsdock/fixture-sync/internal/platform/resilience"
	"github.com/sportsdock/fixture-sync/internal/usecase"
)

const (
	ProviderName = "sportmonks"

	defaultBaseURL        = "https://api.sportmonks.com/v3/football"
	defaultIncludeFixture = "participants;league;round;venue;scores"
	defaultPerPage        = "100"
	defaultResponseTTL    = 30 * time.Minute
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errTransient = crerr.New("sportmonks transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	ResponseTTL    time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	responses      *cache.Store
	circuitEnabled bool
	breakerCfg     resilience.CircuitBreakerConfig

	mu       sync.Mutex
	breakers map[string]*resilience.CircuitBreaker
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
	responseTTL := cfg.ResponseTTL
	if responseTTL <= 0 {
		responseTTL = defaultResponseTTL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		responses:      cache.NewStore(responseTTL),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		breakerCfg:     resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker),
		breakers:       make(map[string]*resilience.CircuitBreaker, 4),
	}
}

func (c *Client) Name() string { return ProviderName }

// CurrentSeason resolves the league's current season via the currentSeason
// include. ok=false means the relation was absent, not a failure.
func (c *Client) CurrentSeason(ctx context.Context, leagueID int64) (fixture.Season, bool, error) {
	if leagueID <= 0 {
		return fixture.Season{}, false, fmt.Errorf("%w: league id must be positive", usecase.ErrInvalidInput)
	}

	var env envelope
	path := fmt.Sprintf("/leagues/%d", leagueID)
	if err := c.getJSON(ctx, "seasons", path, map[string]string{"include": "currentSeason"}, &env); err != nil {
		return fixture.Season{}, false, fmt.Errorf("fetch current season league_id=%d: %w", leagueID, err)
	}

	var payload leaguePayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return fixture.Season{}, false, fmt.Errorf("%w: decode league payload: %v", usecase.ErrProvider, err)
	}
	current := payload.currentSeason()
	if current == nil || current.ID <= 0 {
		return fixture.Season{}, false, nil
	}
	return toSeason(*current, leagueID), true, nil
}

// SeasonsByLeague lists every season of a league, newest first.
func (c *Client) SeasonsByLeague(ctx context.Context, leagueID int64) ([]fixture.Season, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be positive", usecase.ErrInvalidInput)
	}

	var env listEnvelope
	query := map[string]string{
		"filters":  fmt.Sprintf("leagueId:%d", leagueID),
		"per_page": "50",
		"sortBy":   "id:desc",
	}
	if err := c.getJSON(ctx, "seasons", "/seasons", query, &env); err != nil {
		return nil, fmt.Errorf("fetch seasons league_id=%d: %w", leagueID, err)
	}

	seasons := make([]fixture.Season, 0, len(env.Data))
	for _, raw := range env.Data {
		var payload seasonPayload
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			c.logger.WarnContext(ctx, "skip undecodable season payload", "league_id", leagueID, "error", err)
			continue
		}
		if payload.ID <= 0 {
			continue
		}
		seasons = append(seasons, toSeason(payload, leagueID))
	}
	return seasons, nil
}

func (c *Client) SeasonStages(ctx context.Context, seasonID int64) ([]fixture.Stage, error) {
	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season id must be positive", usecase.ErrInvalidInput)
	}

	var env envelope
	path := fmt.Sprintf("/seasons/%d", seasonID)
	if err := c.getJSON(ctx, "stages", path, map[string]string{"include": "stages"}, &env); err != nil {
		return nil, fmt.Errorf("fetch stages season_id=%d: %w", seasonID, err)
	}

	var payload seasonPayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode season payload: %v", usecase.ErrProvider, err)
	}

	stages := make([]fixture.Stage, 0, len(payload.Stages))
	for _, s := range payload.Stages {
		if s.ID <= 0 {
			continue
		}
		stages = append(stages, toStage(s, seasonID))
	}
	return stages, nil
}

func (c *Client) StageRounds(ctx context.Context, stageID int64) ([]fixture.Round, error) {
	if stageID <= 0 {
		return nil, fmt.Errorf("%w: stage id must be positive", usecase.ErrInvalidInput)
	}

	var env envelope
	path := fmt.Sprintf("/stages/%d", stageID)
	if err := c.getJSON(ctx, "rounds", path, map[string]string{"include": "rounds"}, &env); err != nil {
		return nil, fmt.Errorf("fetch rounds stage_id=%d: %w", stageID, err)
	}

	var payload stagePayload
	if err := sonic.Unmarshal(env.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode stage payload: %v", usecase.ErrProvider, err)
	}

	rounds := make([]fixture.Round, 0, len(payload.Rounds))
	for _, r := range payload.Rounds {
		if r.ID <= 0 {
			continue
		}
		rounds = append(rounds, toRound(r, stageID))
	}
	return rounds, nil
}

// FixturesByRounds fetches raw fixtures for a set of round IDs in one call.
func (c *Client) FixturesByRounds(ctx context.Context, roundIDs []int64) ([]json.RawMessage, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}

	idValues := make([]string, 0, len(roundIDs))
	for _, id := range roundIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: round ids must be positive", usecase.ErrInvalidInput)
		}
		idValues = append(idValues, strconv.FormatInt(id, 10))
	}

	query := map[string]string{
		"filters":  "fixtureRounds:" + strings.Join(idValues, ","),
		"include":  defaultIncludeFixture,
		"per_page": defaultPerPage,
	}
	var env listEnvelope
	if err := c.getJSON(ctx, "fixtures", "/fixtures", query, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures rounds=%s: %w", strings.Join(idValues, ","), err)
	}
	return env.Data, nil
}

// FixturesByDate fetches raw fixtures for one calendar day (YYYY-MM-DD).
func (c *Client) FixturesByDate(ctx context.Context, date string) ([]json.RawMessage, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	query := map[string]string{
		"include":  defaultIncludeFixture,
		"per_page": defaultPerPage,
	}
	var env listEnvelope
	if err := c.getJSON(ctx, "fixtures", "/fixtures/date/"+date, query, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures date=%s: %w", date, err)
	}
	return env.Data, nil
}

// FixturesBetween fetches raw fixtures inside [from, to], optionally
// narrowed to one provider league.
func (c *Client) FixturesBetween(ctx context.Context, from, to string, leagueID int64) ([]json.RawMessage, error) {
	if err := validateDate(from); err != nil {
		return nil, err
	}
	if err := validateDate(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: range start %s is after end %s", usecase.ErrInvalidInput, from, to)
	}

	query := map[string]string{
		"include":  defaultIncludeFixture,
		"per_page": defaultPerPage,
	}
	if leagueID > 0 {
		query["filters"] = fmt.Sprintf("fixtureLeagues:%d", leagueID)
	}
	var env listEnvelope
	if err := c.getJSON(ctx, "fixtures", fmt.Sprintf("/fixtures/between/%s/%s", from, to), query, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures between %s and %s: %w", from, to, err)
	}
	return env.Data, nil
}

// BreakerStates reports the circuit state per endpoint group.
func (c *Client) BreakerStates() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := make(map[string]string, len(c.breakers))
	for op, breaker := range c.breakers {
		states[op] = string(breaker.State())
	}
	return states
}

// FlushCache drops every cached response.
func (c *Client) FlushCache() {
	c.responses.Flush()
}

func (c *Client) breakerFor(op string) *resilience.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if breaker, ok := c.breakers[op]; ok {
		return breaker
	}
	cfg := c.breakerCfg
	cfg.OnStateChange = func(from, to resilience.CircuitState) {
		c.logger.Warn("sportmonks circuit state change", "operation", op, "from", string(from), "to", string(to))
	}
	breaker := resilience.NewCircuitBreaker(cfg)
	c.breakers[op] = breaker
	return breaker
}

// getJSON runs one cached GET against the provider. Responses are cached on
// the full request key for the client TTL; concurrent identical requests
// collapse into one upstream call.
func (c *Client) getJSON(ctx context.Context, op, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	values.Set("api_token", c.token)

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err := c.responses.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetch(ctx, op, fullURL)
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode provider payload: %v", usecase.ErrProvider, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, op, fullURL string) ([]byte, error) {
	var breaker *resilience.CircuitBreaker
	if c.circuitEnabled {
		breaker = c.breakerFor(op)
		if err := breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportmonks circuit breaker rejected request", "operation", op, "state", string(breaker.State()))
			return nil, fmt.Errorf("%w: %s temporarily unavailable", usecase.ErrCircuitOpen, op)
		}
	}

	raw, err := c.executeRequest(ctx, fullURL)
	if breaker != nil {
		if err != nil && isCircuitFailure(err) {
			breaker.RecordFailure()
		} else {
			breaker.RecordSuccess()
		}
	}
	return raw, err
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
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("%w: status=%d body=%s", usecase.ErrProvider, resp.StatusCode, abbreviateBody(raw))
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
	c.logger.WarnContext(ctx, "sportmonks request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, fmt.Errorf("%w: %s", usecase.ErrTransport, sanitizeSensitiveText(lastErr.Error(), c.token))
}

func isCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errTransient) || stderrors.Is(err, usecase.ErrTransport)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", usecase.ErrInvalidInput, date)
	}
	return nil
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
