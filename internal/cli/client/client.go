package client

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

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/session"
)

const defaultUserAgent = "bookify-cli"

// Config wires the backend location, session store, and logging for the API client
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Store      session.Store
	Logger     *zerolog.Logger
	UserAgent  string
}

// Client represents an HTTP client for the Bookify API.
// Every request carries the bearer token found in the session store at the
// time the request is sent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     zerolog.Logger
	userAgent  string
}

// New creates a new API client
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}
	normalized, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		store = session.NewMemoryStore()
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	httpClient := http.Client{}
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = &authTransport{base: base, store: store}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		baseURL:    normalized,
		httpClient: &httpClient,
		store:      store,
		logger:     logger,
		userAgent:  ua,
	}, nil
}

// BaseURL returns the normalized base URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the session store the client reads its token from
func (c *Client) Store() session.Store {
	return c.store
}

func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("base URL must use http or https")
	}
	if u.Host == "" {
		return "", errors.New("base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

// authTransport attaches the current bearer token and a request id to every request
type authTransport struct {
	base  http.RoundTripper
	store session.Store
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := session.Token(t.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", ulid.Make().String())
	}
	return t.base.RoundTrip(r)
}

func (c *Client) buildURL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON sends payload (if any) as a JSON body and decodes the response into out
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	return decodeBody(resp.Body, out)
}

// decodeBody decodes a success response. A *string target accepts both plain
// text and JSON string bodies, since several endpoints answer with bare text.
func decodeBody(r io.Reader, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, r)
		return nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if s, ok := out.(*string); ok {
		var decoded string
		if err := json.Unmarshal(data, &decoded); err == nil {
			*s = decoded
		} else {
			*s = strings.TrimSpace(string(data))
		}
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))
	return q
}

func searchQuery(name string, page, size int) url.Values {
	q := pageQuery(page, size)
	q.Set("name", name)
	return q
}
