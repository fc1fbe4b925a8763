package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slotmarket/internal/config"
	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var ErrUnexpectedStatus = errors.New("unexpected backend status")

// Client calls the marketplace backend REST API. Single-record lookups are
// cached when a cache is attached; collections are always fetched fresh.
type Client struct {
	baseURL    string
	apiKey     string
	apiExtra   string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *zerolog.Logger

	cache    domain.Cache
	cacheTTL time.Duration
}

var _ domain.Backend = (*Client)(nil)

func NewClient(cfg config.BackendConfig, logger *zerolog.Logger) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		apiExtra:   cfg.APIExtra,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		retry: RetryPolicy{
			MaxRetries:    cfg.MaxRetries,
			InitialDelay:  time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			MaxDelay:      5 * time.Second,
			BackoffFactor: 2,
		},
		logger: logger,
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	if c.logger == nil {
		nop := zerolog.Nop()
		c.logger = &nop
	}
	return c
}

// UseCache configures caching for single-record GET endpoints.
func (c *Client) UseCache(cache domain.Cache, ttl time.Duration) {
	c.cache = cache
	c.cacheTTL = ttl
}

func (c *Client) AppointmentsByProfessional(ctx context.Context, professionalID string) ([]models.AppointmentRecord, error) {
	endpoint := fmt.Sprintf("%s/api/appointments?professionalId=%s", c.baseURL, url.QueryEscape(professionalID))
	return getList[models.AppointmentRecord](ctx, c, endpoint)
}

func (c *Client) AppointmentsByClient(ctx context.Context, clientID string) ([]models.AppointmentRecord, error) {
	endpoint := fmt.Sprintf("%s/api/appointments?clientId=%s", c.baseURL, url.QueryEscape(clientID))
	return getList[models.AppointmentRecord](ctx, c, endpoint)
}

func (c *Client) Professional(ctx context.Context, id string) (*models.ProfessionalRecord, error) {
	endpoint := fmt.Sprintf("%s/api/professionals/%s", c.baseURL, url.PathEscape(id))
	cacheKey := "professional:" + id

	var pro models.ProfessionalRecord
	if c.readCache(ctx, cacheKey, &pro) {
		return &pro, nil
	}
	if err := c.doGet(ctx, endpoint, &pro); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, pro)
	return &pro, nil
}

func (c *Client) ProfessionalByUser(ctx context.Context, userID string) (*models.ProfessionalRecord, error) {
	endpoint := fmt.Sprintf("%s/api/professionals?userId=%s", c.baseURL, url.QueryEscape(userID))
	cacheKey := "professional_by_user:" + userID

	var pro models.ProfessionalRecord
	if c.readCache(ctx, cacheKey, &pro) {
		return &pro, nil
	}
	list, err := getList[models.ProfessionalRecord](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		if p.UserID == userID {
			c.writeCache(ctx, cacheKey, p)
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Client) Identity(ctx context.Context, id string) (*models.IdentityRecord, error) {
	endpoint := fmt.Sprintf("%s/api/users/%s", c.baseURL, url.PathEscape(id))
	cacheKey := "identity:" + id

	var identity models.IdentityRecord
	if c.readCache(ctx, cacheKey, &identity) {
		return &identity, nil
	}
	if err := c.doGet(ctx, endpoint, &identity); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, identity)
	return &identity, nil
}

func (c *Client) ReviewsByProfessional(ctx context.Context, professionalID string) ([]models.ReviewRecord, error) {
	endpoint := fmt.Sprintf("%s/api/reviews?professionalId=%s", c.baseURL, url.QueryEscape(professionalID))
	return getList[models.ReviewRecord](ctx, c, endpoint)
}

func (c *Client) CreateReview(ctx context.Context, review *models.ReviewRecord) error {
	endpoint := fmt.Sprintf("%s/api/reviews", c.baseURL)
	err := c.doPost(ctx, endpoint, review, nil)
	if isConflict(err) {
		return fmt.Errorf("review %s: %w", review.ID, domain.ErrDuplicateReview)
	}
	return err
}

func (c *Client) ClaimSlot(ctx context.Context, appointmentID, clientID string) error {
	endpoint := fmt.Sprintf("%s/api/appointments/%s/claim", c.baseURL, url.PathEscape(appointmentID))
	body := map[string]string{"clientId": clientID}
	err := c.doPost(ctx, endpoint, body, nil)
	if isConflict(err) {
		return fmt.Errorf("claim %s: %w", appointmentID, domain.ErrSlotTaken)
	}
	return err
}

func isConflict(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.cache == nil || c.cacheTTL <= 0 {
		return false
	}
	val, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal(val, out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("drop undecodable cache entry")
		_ = c.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func getList[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := c.doGet(ctx, endpoint, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

// decodeList accepts a bare JSON array or an envelope with a "data" or
// "items" array.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var envelope struct {
		Data  []T `json:"data"`
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	if envelope.Items != nil {
		return envelope.Items, nil
	}
	return []T{}, nil
}

// doGet retries transient failures according to the retry policy. Only
// reads are retried.
func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	for attempt := 1; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		c.addHeaders(req)

		err = c.do(req, out)
		if err == nil || attempt > c.retry.MaxRetries || !retryable(ctx, err) {
			return err
		}

		delay := c.retry.NextDelay(attempt)
		c.logger.Debug().
			Err(err).
			Str("path", req.URL.Path).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("retrying backend request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) doPost(ctx context.Context, endpoint string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, domain.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Method: req.Method, Path: req.URL.Path, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiExtra != "" {
		req.Header.Set("x-api-extra", c.apiExtra)
	}
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Code   int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
