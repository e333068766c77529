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

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// HTTPClient talks to the leads REST backend. Credentials travel only
// through the CredentialScope given to NewHTTPClient.
type HTTPClient struct {
	base           *url.URL
	http           *http.Client
	scope          CredentialScope
	log            logging.Logger
	onUnauthorized func()
}

type Option func(*HTTPClient)

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.http.Transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// WithUnauthorizedHook registers fn to run whenever an authenticated call
// is rejected with 401 or 403.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func NewHTTPClient(baseURL string, scope CredentialScope, opts ...Option) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host are required", baseURL)
	}

	c := &HTTPClient{
		base:  base,
		http:  &http.Client{Jar: scope},
		scope: scope,
		log:   logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetUnauthorizedHook replaces the hook set with WithUnauthorizedHook.
// The session is usually built after the transport, so it is wired here.
func (c *HTTPClient) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	body := models.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &u, false); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*models.Account, error) {
	var a models.Account
	body := models.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, body, &a, false); err != nil {
		return nil, err
	}
	return &a, nil
}

// Logout asks the backend to end the session and then forgets local
// credentials whatever the outcome.
func (c *HTTPClient) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, false)
	if c.scope == nil {
		return err
	}
	if fErr := c.scope.Forget(ctx); fErr != nil {
		err = errors.Join(err, fmt.Errorf("forget credentials: %w", fErr))
	}
	return err
}

func (c *HTTPClient) ListLeads(ctx context.Context, params url.Values) (*models.LeadPage, error) {
	var p models.LeadPage
	if err := c.do(ctx, http.MethodGet, "/leads", params, nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateLead(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	var l models.Lead
	if err := c.do(ctx, http.MethodPost, "/leads", nil, in, &l, true); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) UpdateLead(ctx context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error) {
	var l models.Lead
	if err := c.do(ctx, http.MethodPut, "/leads/"+url.PathEscape(id.String()), nil, in, &l, true); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *HTTPClient) DeleteLead(ctx context.Context, id models.LeadID) error {
	return c.do(ctx, http.MethodDelete, "/leads/"+url.PathEscape(id.String()), nil, nil, nil, true)
}

// Ping reports whether the backend answers at all. Any HTTP response,
// whatever its status, counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	reqID, ok := logging.RequestID(ctx)
	if !ok {
		reqID = uuid.NewString()
		ctx = logging.WithRequestID(ctx, reqID)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "error", err)
		return c.mapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := mapStatus(resp.StatusCode, readMessage(resp.Body))
		if authed && errors.Is(err, ErrUnauthorized) && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// mapError turns transport failures into sentinels. Cancellation by the
// caller is passed through unchanged.
func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func readMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(b) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		return payload.Error
	}
	return ""
}
