// Package catalog forwards movie searches to the external catalog (TMDb).
package catalog

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/metrics"
)

var (
	ErrEmptyQuery  = errors.New("search term is required")
	ErrUnavailable = errors.New("catalog unavailable")
)

var Module = fx.Provide(NewClient)

type searchResp struct {
	Results []json.RawMessage `json:"results"`
}

// Client is stateless: no retries, no caching.
type Client struct {
	http     *resty.Client
	apiKey   string
	language string
	logger   *zap.SugaredLogger
}

func NewClient(cfg *config.Config, l *zap.SugaredLogger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.CatalogURL, "/")).
			SetTimeout(cfg.CatalogTimeout).
			SetHeader("Accept", "application/json"),
		apiKey:   cfg.CatalogAPIKey,
		language: cfg.CatalogLanguage,
		logger:   l,
	}
}

// Search returns the upstream result objects untouched. Pagination counters
// of the upstream payload are dropped.
func (c *Client) Search(ctx context.Context, term string) ([]json.RawMessage, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyQuery
	}

	timer := prometheus.NewTimer(metrics.CatalogRequestDuration)
	defer timer.ObserveDuration()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key":  c.apiKey,
			"query":    term,
			"language": c.language,
		}).
		SetResult(&searchResp{}).
		Get("/search/movie")
	if err != nil {
		metrics.CatalogRequests.WithLabelValues("transport_error").Inc()
		c.logger.Warnw("catalog request failed", "error", redact(err.Error(), c.apiKey))
		return nil, ErrUnavailable
	}
	if resp.IsError() {
		metrics.CatalogRequests.WithLabelValues("bad_status").Inc()
		c.logger.Warnw("catalog returned error status", "status", resp.StatusCode())
		return nil, ErrUnavailable
	}

	got, ok := resp.Result().(*searchResp)
	if !ok || got.Results == nil {
		metrics.CatalogRequests.WithLabelValues("bad_body").Inc()
		c.logger.Warnw("catalog returned unexpected body", "status", resp.StatusCode())
		return nil, ErrUnavailable
	}

	metrics.CatalogRequests.WithLabelValues("ok").Inc()
	return got.Results, nil
}

// redact keeps the credential out of logs; transport errors embed the full URL.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
