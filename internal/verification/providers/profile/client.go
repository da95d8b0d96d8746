// Package profile implements Tier 2 lookups for professional network and
// citation index profiles. Each client validates the reference shape before
// any network call and degrades to "valid reference, no data" when its
// enrichment provider is not configured.
package profile

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
)

var tracer = otel.Tracer("profile")

const maxBodyBytes = 1 << 20

// Config describes one enrichment provider. An empty BaseURL or APIKey means
// the provider is not configured.
type Config struct {
	ID         string
	BaseURL    string
	APIKey     string
	RecordPath string
	Fields     providers.FieldMap
	Schema     string
	Timeout    time.Duration
	Validate   func(raw string) error
}

// Client fetches structured data for a profile URL.
type Client struct {
	cfg    Config
	http   *http.Client
	schema *providers.Schema
	logger *slog.Logger
	now    func() time.Time
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

// New creates a profile client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.ID == "" {
		return nil, errors.New("profile provider id is required")
	}
	if cfg.Validate == nil {
		return nil, fmt.Errorf("profile provider %s: url validator is required", cfg.ID)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = policy.LookupTimeout
	}
	schema, err := providers.CompileSchema(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("profile provider %s: %w", cfg.ID, err)
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		schema: schema,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) ID() string { return c.cfg.ID }

// Configured reports whether an enrichment provider is available.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.APIKey != ""
}

// ValidateURL checks the reference shape.
func (c *Client) ValidateURL(raw string) error {
	return c.cfg.Validate(raw)
}

// Lookup validates the URL, then asks the enrichment provider about it.
func (c *Client) Lookup(ctx context.Context, profileURL string) *providers.LookupResult {
	ctx, span := tracer.Start(ctx, "Profile.Client.Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("profile.provider", c.cfg.ID))

	if err := c.cfg.Validate(profileURL); err != nil {
		return &providers.LookupResult{
			Source:     c.cfg.ID,
			Valid:      false,
			Configured: c.Configured(),
			Err:        providers.NewProviderError(providers.ErrorInvalidReference, c.cfg.ID, "profile url rejected", err),
			CheckedAt:  c.now(),
		}
	}
	if !c.Configured() {
		return &providers.LookupResult{
			Source:     c.cfg.ID,
			Valid:      true,
			Configured: false,
			Err:        providers.NewProviderError(providers.ErrorNotConfigured, c.cfg.ID, "enrichment provider not configured", nil),
			CheckedAt:  c.now(),
		}
	}

	res, perr := c.fetch(ctx, profileURL)
	if perr != nil {
		span.RecordError(perr)
		c.logger.WarnContext(ctx, "profile lookup failed",
			"provider_id", c.cfg.ID,
			"category", perr.Category,
		)
		return &providers.LookupResult{
			Source:     c.cfg.ID,
			Valid:      true,
			Configured: true,
			Err:        perr,
			CheckedAt:  c.now(),
		}
	}
	return res
}

func (c *Client) fetch(ctx context.Context, profileURL string) (*providers.LookupResult, *providers.ProviderError) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	target := strings.TrimRight(c.cfg.BaseURL, "/") + "?url=" + url.QueryEscape(profileURL)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, c.cfg.ID, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

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
	empty := &providers.LookupResult{Source: c.cfg.ID, Valid: true, Configured: true, CheckedAt: c.now()}
	if resp.StatusCode == http.StatusNotFound {
		return empty, nil
	}
	if err := c.schema.Validate(body); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, c.cfg.ID, "payload failed schema validation", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, c.cfg.ID, "decode payload", err)
	}
	record := doc
	if c.cfg.RecordPath != "" {
		m, ok := providers.Lookup(doc, c.cfg.RecordPath).(map[string]any)
		if !ok {
			return empty, nil
		}
		record = m
	}
	if len(record) == 0 {
		return empty, nil
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
