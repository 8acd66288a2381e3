// Package gateway makes authorization transparent to storefront API callers: it
// acquires the CSRF token lazily and renews an expired session exactly once no
// matter how many requests observe the expiry at the same time.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	// CSRFCookieName is the cookie the API uses to deliver the CSRF token.
	CSRFCookieName = "csrf_token"
	// CSRFHeader carries the token on state-changing requests.
	CSRFHeader = "X-CSRF-Token"

	defaultCSRFPath    = "/api/auth/csrf"
	defaultRefreshPath = "/api/auth/refresh"
)

// DefaultSessionCookies are dropped from the jar when the session ends.
var DefaultSessionCookies = []string{"access_token", "refresh_token", CSRFCookieName}

// ErrRenewalFailed is returned by Renew when the refresh endpoint rejects the session.
var ErrRenewalFailed = errors.New("gateway: credential renewal failed")

// Config configures a Gateway.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	CSRFPath       string
	RefreshPath    string
	SessionCookies []string
	Logger         *zap.Logger
}

// Gateway owns the session cookies of one storefront client.
type Gateway struct {
	base           *url.URL
	http           *http.Client
	csrfPath       string
	refreshPath    string
	sessionCookies []string
	logger         *zap.Logger

	csrf   flight
	renew  flight
	events notifier
}

// NewJar returns the cookie jar used when no HTTP client is configured.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// New constructs a Gateway for the API at cfg.BaseURL. The HTTP client must carry
// a cookie jar; one is created when the client is nil or has none.
func New(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base URL: %w", err)
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, err := NewJar()
		if err != nil {
			return nil, fmt.Errorf("gateway: cookie jar: %w", err)
		}
		client.Jar = jar
	}

	g := &Gateway{
		base:           base,
		http:           client,
		csrfPath:       defaultString(cfg.CSRFPath, defaultCSRFPath),
		refreshPath:    defaultString(cfg.RefreshPath, defaultRefreshPath),
		sessionCookies: cfg.SessionCookies,
		logger:         cfg.Logger,
	}
	if len(g.sessionCookies) == 0 {
		g.sessionCookies = DefaultSessionCookies
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g, nil
}

// URL resolves an API path against the base URL.
func (g *Gateway) URL(endpoint string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return g.base.ResolveReference(ref).String()
}

// HTTPClient returns the underlying client; its jar holds the session.
func (g *Gateway) HTTPClient() *http.Client {
	return g.http
}

// CSRFToken returns the token currently held in the jar, or "".
func (g *Gateway) CSRFToken() string {
	for _, c := range g.http.Jar.Cookies(g.base) {
		if c.Name == CSRFCookieName {
			return c.Value
		}
	}
	return ""
}

// EnsureCSRFToken makes sure the jar holds a CSRF token. Concurrent callers share a
// single acquisition. Failures are logged and leave the token absent; the server
// will then reject the mutating call with 403.
func (g *Gateway) EnsureCSRFToken(ctx context.Context) {
	if g.CSRFToken() != "" {
		return
	}
	if err := g.csrf.do(ctx, g.fetchCSRFToken); err != nil {
		g.logger.Warn("csrf token acquisition failed", zap.Error(err))
	}
}

func (g *Gateway) fetchCSRFToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL(g.csrfPath, nil), nil)
	if err != nil {
		return fmt.Errorf("gateway: build csrf request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: csrf request: %w", err)
	}
	drain(resp)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway: csrf request status %d", resp.StatusCode)
	}
	return nil
}

// Do sends req with the session cookies. A 401 with retryOnUnauthorized set joins
// (or starts) the single in-flight renewal; after a successful renewal the request
// is sent once more with retries disabled. When renewal fails subscribers are
// notified and the original 401 response is returned, not an error.
func (g *Gateway) Do(ctx context.Context, req *http.Request, retryOnUnauthorized bool) (*http.Response, error) {
	req = req.WithContext(ctx)
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !retryOnUnauthorized {
		return resp, nil
	}

	if err := g.renew.do(ctx, g.renewCredentials); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			drain(resp)
			return nil, ctxErr
		}
		return resp, nil
	}

	retry, err := rewind(ctx, req)
	if err != nil {
		g.logger.Warn("session renewed but request cannot be replayed",
			zap.String("method", req.Method), zap.String("url", req.URL.Redacted()), zap.Error(err))
		return resp, nil
	}
	drain(resp)
	if retry.Header.Get(CSRFHeader) != "" {
		if token := g.CSRFToken(); token != "" {
			retry.Header.Set(CSRFHeader, token)
		}
	}
	return g.Do(ctx, retry, false)
}

// Renew runs (or joins) a credential renewal directly.
func (g *Gateway) Renew(ctx context.Context) error {
	return g.renew.do(ctx, g.renewCredentials)
}

// renewCredentials is the shared renewal operation. Renewal is itself a mutating
// call, so it needs the CSRF token first. The failure notification is published
// here, once per failed renewal, rather than by every waiter.
func (g *Gateway) renewCredentials(ctx context.Context) error {
	g.EnsureCSRFToken(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.URL(g.refreshPath, nil), http.NoBody)
	if err != nil {
		return fmt.Errorf("gateway: build refresh request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := g.CSRFToken(); token != "" {
		req.Header.Set(CSRFHeader, token)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		g.fail(0, err)
		return fmt.Errorf("gateway: refresh request: %w", err)
	}
	drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d", ErrRenewalFailed, resp.StatusCode)
		g.fail(resp.StatusCode, err)
		return err
	}
	g.logger.Debug("session renewed")
	return nil
}

func (g *Gateway) fail(status int, err error) {
	g.logger.Info("session renewal failed", zap.Int("status", status), zap.Error(err))
	g.expireCookies()
	g.events.publish(Event{Status: status, Err: err, At: time.Now()})
}

// OnUnauthorized registers fn for failed-renewal events and returns its unsubscribe func.
func (g *Gateway) OnUnauthorized(fn func(Event)) func() {
	return g.events.subscribe(fn)
}

// Reset forgets in-flight operations and drops the session cookies. Used on
// logout and between tests.
func (g *Gateway) Reset() {
	g.csrf.reset()
	g.renew.reset()
	g.expireCookies()
}

func (g *Gateway) expireCookies() {
	// The refresh cookie is scoped to the auth endpoints, so expire under
	// that path as well as the root.
	paths := []string{"/", path.Dir(g.refreshPath)}
	expired := make([]*http.Cookie, 0, 2*len(g.sessionCookies))
	for _, name := range g.sessionCookies {
		for _, p := range paths {
			expired = append(expired, &http.Cookie{Name: name, Value: "", Path: p, MaxAge: -1})
		}
	}
	g.http.Jar.SetCookies(g.base, expired)
}

// rewind clones req for a second attempt, re-opening its body.
func rewind(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("gateway: request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("gateway: reopen body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}
