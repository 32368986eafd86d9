// Package api is the HTTP client for the fitness-social backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-fitspire/internal/hydrate"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

var ErrBaseURL = errors.New("api: base URL must be absolute")

// TokenSource supplies the bearer token for authenticated requests. An empty
// token sends the request anonymously.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client issues JSON requests against the backend base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	logger  *zap.Logger
}

func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBaseURL, baseURL)
	}
	c := &Client{
		base:    base,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("api: token for %s %s: %w", method, path, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(raw),
		}
	}
	return raw, nil
}

func decode[T any](method, path string, body []byte, opts ...hydrate.DecoderOption[T]) (T, error) {
	opts = append([]hydrate.DecoderOption[T]{hydrate.WithPreHook[T](hydrate.Unwrap("data"))}, opts...)
	return hydrate.NewDecoder[T](opts...).Decode(hydrate.Context{Method: method, Endpoint: path}, body)
}

func decodeProfile(method, path string, body []byte) (UserProfile, error) {
	return decode[UserProfile](method, path, body, hydrate.WithPreHook[UserProfile](zonelessAsUTC("createdAt")))
}

// zonelessAsUTC marks timestamps serialised without an offset as UTC so they
// parse as RFC 3339.
func zonelessAsUTC(fields ...string) hydrate.PreHook {
	return func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
		for _, field := range fields {
			value, ok := payload[field].(string)
			if !ok || value == "" {
				continue
			}
			if _, err := time.Parse(time.RFC3339Nano, value); err == nil {
				continue
			}
			if _, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
				payload[field] = value + "Z"
			}
		}
		return payload, nil
	}
}

func requireToken(_ hydrate.Context, result *AuthResult) error {
	if strings.TrimSpace(result.Token) == "" {
		return errors.New("response carries no token")
	}
	return nil
}

func (c *Client) account(ctx context.Context, path string, in any) (AuthResult, error) {
	body, err := c.doJSON(ctx, http.MethodPost, path, in)
	if err != nil {
		return AuthResult{}, err
	}
	return decode[AuthResult](http.MethodPost, path, body, hydrate.WithPostHook[AuthResult](requireToken))
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	return c.account(ctx, "/account/register", req)
}

// Login authenticates with an email or user name and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	return c.account(ctx, "/account/login", req)
}

// ExternalLogin exchanges a provider ID token for a session.
func (c *Client) ExternalLogin(ctx context.Context, req ExternalLoginRequest) (AuthResult, error) {
	return c.account(ctx, "/account/external-login", req)
}

func (c *Client) GetProfile(ctx context.Context) (UserProfile, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/user/profile", nil)
	if err != nil {
		return UserProfile{}, err
	}
	return decodeProfile(http.MethodGet, "/user/profile", body)
}

func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (UserProfile, error) {
	body, err := c.doJSON(ctx, http.MethodPatch, "/user/profile", patch)
	if err != nil {
		return UserProfile{}, err
	}
	return decodeProfile(http.MethodPatch, "/user/profile", body)
}

// UploadProfilePhoto sends the image as the multipart "file" field.
func (c *Client) UploadProfilePhoto(ctx context.Context, fileName, contentType string, image io.Reader) (UserProfile, error) {
	const path = "/user/profile/photo"
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return UserProfile{}, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return UserProfile{}, fmt.Errorf("api: read upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return UserProfile{}, fmt.Errorf("api: build upload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPatch, path, form.FormDataContentType(), &buf)
	if err != nil {
		return UserProfile{}, err
	}
	return decodeProfile(http.MethodPatch, path, body)
}

func (c *Client) GetPreferences(ctx context.Context) (Preferences, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/user/preferences", nil)
	if err != nil {
		return Preferences{}, err
	}
	return decode[Preferences](http.MethodGet, "/user/preferences", body)
}

// UpdatePreferences sends a partial update and returns the full record.
func (c *Client) UpdatePreferences(ctx context.Context, patch PreferencesPatch) (Preferences, error) {
	body, err := c.doJSON(ctx, http.MethodPatch, "/user/preferences", patch)
	if err != nil {
		return Preferences{}, err
	}
	return decode[Preferences](http.MethodPatch, "/user/preferences", body)
}
