package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/circuitbreaker"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

var (
	// ErrNotConfigured is returned when the client has no target URL
	ErrNotConfigured = errors.New("relay target not configured")

	// ErrUnavailable is returned while the circuit breaker is open
	ErrUnavailable = errors.New("relay target temporarily unavailable")
)

// StatusError reports a non-2xx answer from the target
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay target returned status %d", e.StatusCode)
}

type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Latency     time.Duration
}

type Config struct {
	Name    string
	BaseURL string
	Headers map[string]string
	Timeout time.Duration

	CircuitBreaker circuitbreaker.Config
}

// Client posts JSON to a single downstream service. Transport errors and 5xx
// answers trip the circuit breaker; 4xx answers do not.
type Client struct {
	name    string
	baseURL string
	headers map[string]string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("relay", cfg.Name))

	cbCfg := cfg.CircuitBreaker
	cbCfg.Name = cfg.Name
	if cbCfg.OnStateChange == nil {
		cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}
	}

	return &Client{
		name:    cfg.Name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New(cbCfg),
		logger:  logger,
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) BreakerMetrics() circuitbreaker.Metrics {
	return c.breaker.Metrics()
}

// PostJSON sends payload to baseURL+path and returns the raw answer
func (c *Client) PostJSON(ctx context.Context, path string, payload interface{}) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	var resp *Response
	err = c.breaker.Call(func() error {
		r, err := c.do(ctx, c.baseURL+path, body)
		if err != nil {
			return err
		}
		resp = r
		if r.StatusCode >= 500 {
			return &StatusError{StatusCode: r.StatusCode, Body: r.Body}
		}
		return nil
	})

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.logger.Warn("circuit breaker open, rejecting call")
		return nil, ErrUnavailable
	}
	if err != nil {
		c.logger.Error("relay call failed", zap.Error(err))
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return resp, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.name, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	latency := time.Since(start)
	c.logger.Debug("relay call completed",
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("latency", latency),
	)

	return &Response{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        data,
		Latency:     latency,
	}, nil
}

// Manually closes the circuit breaker
func (c *Client) ResetBreaker() {
	c.breaker.Reset()
}
