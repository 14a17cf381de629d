package pihole

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"pihole-button/internal/domain"
	"pihole-button/internal/infra/config"
)

// Default admin API timeouts.
const (
	defaultConnTimeout = 5 * time.Second
	defaultRespTimeout = 10 * time.Second
)

// HTTPOracle drives the Pi-hole through its admin HTTP API (api.php).
// The API answers `?status` with {"status":"enabled"} and accepts
// `?enable` / `?disable[=seconds]` with an auth token.
type HTTPOracle struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPOracle creates an API-backed oracle for the given admin endpoint.
func NewHTTPOracle(cfg config.APIConfig, logger *slog.Logger) *HTTPOracle {
	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = defaultConnTimeout
	}
	respTimeout := cfg.RespTimeout
	if respTimeout == 0 {
		respTimeout = defaultRespTimeout
	}

	return &HTTPOracle{
		baseURL: cfg.URL,
		token:   cfg.Token,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   connTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: respTimeout,
				MaxIdleConns:          2,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       90 * time.Second,
			},
			Timeout: connTimeout + respTimeout,
		},
		logger: logger,
	}
}

// Name identifies the backend in logs.
func (o *HTTPOracle) Name() string { return "http" }

type statusResponse struct {
	Status string `json:"status"`
}

// Status queries `?status` and maps the JSON answer to a FilterState.
func (o *HTTPOracle) Status(ctx context.Context) (domain.FilterState, error) {
	body, err := o.get(ctx, url.Values{"status": {""}})
	if err != nil {
		return domain.StateDisabled, fmt.Errorf("api status: %w", err)
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.StateDisabled, fmt.Errorf("api status: parse response: %w", err)
	}
	if resp.Status == "enabled" {
		return domain.StateEnabled, nil
	}
	return domain.StateDisabled, nil
}

// Enable issues `?enable&auth=<token>`.
func (o *HTTPOracle) Enable(ctx context.Context) error {
	q := url.Values{"enable": {""}}
	o.addAuth(q)
	if _, err := o.get(ctx, q); err != nil {
		return fmt.Errorf("api enable: %w", err)
	}
	o.logger.Debug("pihole enable issued", "url", o.baseURL)
	return nil
}

// Disable issues `?disable[=seconds]&auth=<token>`. A zero duration disables
// blocking until re-enabled.
func (o *HTTPOracle) Disable(ctx context.Context, d time.Duration) error {
	q := url.Values{}
	if d > 0 {
		q.Set("disable", fmt.Sprintf("%d", int(d.Seconds())))
	} else {
		q.Set("disable", "")
	}
	o.addAuth(q)
	if _, err := o.get(ctx, q); err != nil {
		return fmt.Errorf("api disable: %w", err)
	}
	o.logger.Debug("pihole disable issued", "url", o.baseURL, "duration", d)
	return nil
}

func (o *HTTPOracle) addAuth(q url.Values) {
	if o.token != "" {
		q.Set("auth", o.token)
	}
}

func (o *HTTPOracle) get(ctx context.Context, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<16))
}

var _ domain.StatusOracle = (*HTTPOracle)(nil)
