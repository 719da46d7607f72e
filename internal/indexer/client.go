package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"smartassembly/internal/chain"
	"smartassembly/internal/metrics"
)

const maxResponseBytes = 4 << 20

// Client resolves deployable owners through a MUD indexer query endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	worlds   chain.WorldResolver
	limiter  *rate.Limiter
	flight   singleflight.Group
	tracer   trace.Tracer
	metrics  *metrics.Indexer
	log      logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit paces outbound requests; zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithMetrics(m *metrics.Indexer) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(endpoint string, worlds chain.WorldResolver, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		worlds:   worlds,
		tracer:   otel.Tracer("smartassembly/indexer"),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupOwner resolves the world address for chainID, then queries the
// indexer for the owner of smartObjectID. Concurrent lookups of the same
// token share one request. The shared request outlives any single caller's
// ctx and is bounded by the HTTP client timeout; each caller stops waiting
// when its own ctx is done.
func (c *Client) LookupOwner(ctx context.Context, chainID uint64, smartObjectID *big.Int) (string, error) {
	key := strconv.FormatUint(chainID, 10) + "/" + smartObjectID.String()
	ch := c.flight.DoChan(key, func() (any, error) {
		shared, cancel := c.sharedContext(ctx)
		defer cancel()
		return c.lookupOwner(shared, chainID, smartObjectID)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// sharedContext detaches the flight from the caller that started it while
// keeping its values, so trace spans still nest under that caller.
func (c *Client) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.http.Timeout > 0 {
		return context.WithTimeout(detached, c.http.Timeout)
	}
	return context.WithCancel(detached)
}

func (c *Client) lookupOwner(ctx context.Context, chainID uint64, smartObjectID *big.Int) (owner string, err error) {
	ctx, span := c.tracer.Start(ctx, "indexer.LookupOwner", trace.WithAttributes(
		attribute.Int64("chain.id", int64(chainID)),
		attribute.String("smart_object.id", smartObjectID.String()),
	))
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	deploy, err := c.worlds.Resolve(ctx, chainID)
	if err != nil {
		return "", fmt.Errorf("resolving world: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	body, err := json.Marshal([]queryRequest{{
		Address: deploy.Address,
		Query:   BuildOwnerQuery(smartObjectID),
	}})
	if err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying indexer: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading indexer response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("indexer returned %s", resp.Status)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", fmt.Errorf("decoding indexer response: %w", err)
	}

	ownership, err := MapOwnerResult(envelope.Result)
	if err != nil {
		return "", err
	}

	c.log.WithFields(logrus.Fields{
		"chain_id":        chainID,
		"smart_object_id": smartObjectID.String(),
		"owner":           ownership.Owner,
	}).Debug("owner resolved")
	return ownership.Owner, nil
}
