package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jensholdgaard/wowtools/internal/config"
	"github.com/jensholdgaard/wowtools/internal/metrics"
)

var (
	ErrNotFound      = errors.New("item not found")
	ErrUpstream      = errors.New("auction API request failed")
	ErrQueryTooShort = errors.New("search query too short")
)

// Client is a read-only client of the auction price API. Item and price
// responses are cached by request path and all requests share one rate
// limiter.
type Client struct {
	http    *resty.Client
	cache   *expirable.LRU[string, []byte]
	limiter *rate.Limiter
	tracer  trace.Tracer
}

// NewClient creates a Client from the market configuration.
func NewClient(cfg config.MarketConfig, tp trace.TracerProvider) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:    client,
		cache:   expirable.NewLRU[string, []byte](cfg.CacheSize, nil, cfg.CacheTTL),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		tracer:  tp.Tracer("github.com/jensholdgaard/wowtools/internal/market"),
	}
}

func itemPath(server string, itemID int) string {
	return fmt.Sprintf("/items/%s/%d", url.PathEscape(server), itemID)
}

// Item fetches the item record of itemID on server.
func (c *Client) Item(ctx context.Context, server string, itemID int) (GameItem, error) {
	var item GameItem
	if err := c.getCached(ctx, itemPath(server, itemID), &item); err != nil {
		return GameItem{}, err
	}
	return item, nil
}

// Prices fetches the price history of itemID on server.
func (c *Client) Prices(ctx context.Context, server string, itemID int) (PriceHistory, error) {
	var h PriceHistory
	if err := c.getCached(ctx, itemPath(server, itemID)+"/prices", &h); err != nil {
		return PriceHistory{}, err
	}
	return h, nil
}

// Search returns suggestions for query, one per item id.
func (c *Client) Search(ctx context.Context, query string) ([]SearchItem, error) {
	body, err := c.get(ctx, "/search", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	var items []SearchItem
	if err := decode(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return dedupeSearch(items), nil
}

// Invalidate drops the cached item and prices of itemID on server.
func (c *Client) Invalidate(server string, itemID int) {
	p := itemPath(server, itemID)
	c.cache.Remove(p)
	c.cache.Remove(p + "/prices")
}

// Ping reports whether the API answers at all. Any HTTP status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Head("/")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}
	return nil
}

func (c *Client) getCached(ctx context.Context, path string, out any) error {
	if body, ok := c.cache.Get(path); ok {
		metrics.CacheHitsTotal.Inc()
		return decode(body, out)
	}
	metrics.CacheMissesTotal.Inc()

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return err
	}
	if err := decode(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	c.cache.Add(path, body)
	return nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "Client.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.path", path)),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	resp, err := c.http.R().SetContext(ctx).SetQueryParams(params).Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APIMarket, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, path, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APIMarket, metrics.OutcomeNotFound).Inc()
		return nil, fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.IsError():
		span.SetStatus(codes.Error, resp.Status())
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APIMarket, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUpstream, path, resp.StatusCode())
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.APIMarket, metrics.OutcomeOK).Inc()
	return resp.Body(), nil
}
