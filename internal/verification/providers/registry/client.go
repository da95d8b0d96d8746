// Package registry implements Tier 1 license lookups against authoritative
// HTTP registries. One Client serves one source (a national registry or a
// medical board) with a primary endpoint and an optional mirror.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"credverify/internal/verification/policy"
	"credverify/internal/verification/providers"
	"credverify/pkg/platform/circuit"
)

var tracer = otel.Tracer("registry")

const (
	maxBodyBytes    = 1 << 20
	breakerCooldown = 30 * time.Second
)

// Config describes one registry source. URL templates may reference
// {jurisdiction} and {number}; both are path-escaped.
type Config struct {
	ID            string
	Jurisdictions []string
	PrimaryURL    string
	FallbackURL   string
	APIKey        string
	APIKeyHeader  string
	// RecordPath locates the record inside the response, e.g. "data.records".
	// An array resolves to its first element; an empty array means not found.
	RecordPath string
	Fields     providers.FieldMap
	// Schema is an optional JSON schema the raw body must satisfy.
	Schema  string
	Timeout time.Duration
}

type endpoint struct {
	name    string
	url     string
	breaker *circuit.Breaker
}

// Client looks up licenses in one registry source.
type Client struct {
	cfg       Config
	http      *http.Client
	schema    *providers.Schema
	endpoints []endpoint
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithBreakers replaces the per-endpoint circuit breakers options.
func WithBreakers(opts ...circuit.Option) Option {
	return func(c *Client) {
		for i := range c.endpoints {
			c.endpoints[i].breaker = circuit.New(c.endpoints[i].breaker.Name(), opts...)
		}
	}
}

// New creates a registry client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ID == "" {
		return nil, errors.New("registry id is required")
	}
	if cfg.PrimaryURL == "" {
		return nil, fmt.Errorf("registry %s: primary url is required", cfg.ID)
	}
	if len(cfg.Jurisdictions) == 0 {
		return nil, fmt.Errorf("registry %s: at least one jurisdiction is required", cfg.ID)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = policy.LookupTimeout
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-Key"
	}
	schema, err := providers.CompileSchema(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", cfg.ID, err)
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		schema: schema,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	c.endpoints = append(c.endpoints, endpoint{
		name:    "primary",
		url:     cfg.PrimaryURL,
		breaker: circuit.New(cfg.ID+":primary", circuit.WithCooldown(breakerCooldown)),
	})
	if cfg.FallbackURL != "" {
		c.endpoints = append(c.endpoints, endpoint{
			name:    "fallback",
			url:     cfg.FallbackURL,
			breaker: circuit.New(cfg.ID+":fallback", circuit.WithCooldown(breakerCooldown)),
		})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ID() string { return c.cfg.ID }

func (c *Client) Jurisdictions() []string { return c.cfg.Jurisdictions }

// Lookup tries the primary endpoint, then the mirror. A "not found" from any
// endpoint is authoritative; infrastructure failures are reported through
// the result's error marker.
func (c *Client) Lookup(ctx context.Context, jurisdiction, licenseNumber string) *providers.LookupResult {
	ctx, span := tracer.Start(ctx, "Registry.Client.Lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("registry.id", c.cfg.ID),
		attribute.String("registry.jurisdiction", jurisdiction),
	)

	meta := make(map[string]string, len(c.endpoints)+1)
	var lastErr *providers.ProviderError
	notFound := false

	for i := range c.endpoints {
		ep := &c.endpoints[i]
		if !ep.breaker.Allow() {
			meta[ep.name+"_circuit"] = circuit.StateOpen.String()
			continue
		}
		res, perr := c.fetch(ctx, ep, c.attemptTimeout(ctx, len(c.endpoints)-i), jurisdiction, licenseNumber)
		if perr != nil {
			lastErr = perr
			c.record(ctx, ep, perr.Retryable)
			meta[ep.name+"_error"] = string(perr.Category)
			c.logger.WarnContext(ctx, "registry endpoint failed",
				"provider_id", c.cfg.ID,
				"endpoint", ep.name,
				"category", perr.Category,
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		c.record(ctx, ep, false)
		if res.Found {
			meta["endpoint"] = ep.name
			res.Metadata = meta
			return res
		}
		notFound = true
		meta[ep.name] = "not_found"
	}

	if notFound {
		return &providers.LookupResult{
			Source:     c.cfg.ID,
			Valid:      true,
			Configured: true,
			Metadata:   meta,
			CheckedAt:  c.now(),
		}
	}
	if lastErr == nil {
		lastErr = providers.NewProviderError(providers.ErrorProviderOutage, c.cfg.ID, "all endpoints short-circuited", nil)
	}
	span.RecordError(lastErr)
	return &providers.LookupResult{
		Source:     c.cfg.ID,
		Valid:      true,
		Configured: true,
		Err:        lastErr,
		Metadata:   meta,
		CheckedAt:  c.now(),
	}
}

// attemptTimeout bounds one endpoint call. Under a caller deadline the
// remaining time is split evenly across the endpoints still to try, so a
// hanging primary leaves the mirror its share.
func (c *Client) attemptTimeout(ctx context.Context, endpointsLeft int) time.Duration {
	timeout := c.cfg.Timeout
	deadline, ok := ctx.Deadline()
	if !ok || endpointsLeft < 1 {
		return timeout
	}
	if share := time.Until(deadline) / time.Duration(endpointsLeft); share < timeout {
		timeout = share
	}
	return timeout
}

func (c *Client) record(ctx context.Context, ep *endpoint, failed bool) {
	var change circuit.StateChange
	if failed {
		_, change = ep.breaker.RecordFailure()
	} else {
		_, change = ep.breaker.RecordSuccess()
	}
	if change.Opened {
		c.logger.WarnContext(ctx, "registry circuit opened", "provider_id", c.cfg.ID, "endpoint", ep.name)
	}
	if change.Closed {
		c.logger.InfoContext(ctx, "registry circuit closed", "provider_id", c.cfg.ID, "endpoint", ep.name)
	}
}

func (c *Client) fetch(ctx context.Context, ep *endpoint, timeout time.Duration, jurisdiction, number string) (*providers.LookupResult, *providers.ProviderError) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := strings.NewReplacer(
		"{jurisdiction}", url.PathEscape(strings.ToUpper(jurisdiction)),
		"{number}", url.PathEscape(strings.TrimSpace(number)),
	).Replace(ep.url)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, c.cfg.ID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, providers.ClassifyTransport(c.cfg.ID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, providers.ClassifyTransport(c.cfg.ID, err)
	}

	if perr := providers.ClassifyStatus(c.cfg.ID, resp.StatusCode); perr != nil {
		return nil, perr
	}
	if resp.StatusCode == http.StatusNotFound {
		return &providers.LookupResult{Source: c.cfg.ID, Valid: true, Configured: true, CheckedAt: c.now()}, nil
	}

	if err := c.schema.Validate(body); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, c.cfg.ID, "payload failed schema validation", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, c.cfg.ID, "decode payload", err)
	}

	record, perr := c.locateRecord(doc)
	if perr != nil {
		return nil, perr
	}
	if record == nil {
		return &providers.LookupResult{Source: c.cfg.ID, Valid: true, Configured: true, CheckedAt: c.now()}, nil
	}
	return &providers.LookupResult{
		Source:     c.cfg.ID,
		Found:      true,
		Valid:      true,
		Configured: true,
		Fields:     providers.Normalize(record, c.cfg.Fields),
		Raw:        json.RawMessage(body),
		CheckedAt:  c.now(),
	}, nil
}

func (c *Client) locateRecord(doc map[string]any) (map[string]any, *providers.ProviderError) {
	if c.cfg.RecordPath == "" {
		if len(doc) == 0 {
			return nil, nil
		}
		return doc, nil
	}
	switch v := providers.Lookup(doc, c.cfg.RecordPath).(type) {
	case nil:
		return nil, nil
	case []any:
		if len(v) == 0 {
			return nil, nil
		}
		rec, ok := v[0].(map[string]any)
		if !ok {
			return nil, providers.NewProviderError(providers.ErrorContractMismatch, c.cfg.ID, "record is not an object", nil)
		}
		return rec, nil
	case map[string]any:
		return v, nil
	default:
		return nil, providers.NewProviderError(providers.ErrorContractMismatch, c.cfg.ID, "unexpected record shape at "+c.cfg.RecordPath, nil)
	}
}
