package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-course-client/internal/session"
)

const csrfCookieName = "XSRF-TOKEN"

type Config struct {
	BaseURL  string
	CSRFPath string
	Timeout  time.Duration
}

// Client is the thin REST transport shared by the catalog gateway and
// the intent stores. It attaches the bearer credential and the CSRF
// token to mutating requests and maps every failure to the typed
// apperror taxonomy. It NEVER retries: retry and rollback policy belong
// to the caller.
type Client struct {
	rest   *resty.Client
	tokens session.TokenSource
	logger *zap.Logger

	csrfMu    sync.Mutex
	csrfReady bool
	csrfToken string
	csrfPath  string
	baseURL   *url.URL
}

func New(cfg Config, tokens session.TokenSource, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid base url %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	csrfPath := cfg.CSRFPath
	if csrfPath == "" {
		csrfPath = "/sanctum/csrf-cookie"
	}

	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetCookieJar(jar).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	rest.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	return &Client{
		rest:     rest,
		tokens:   tokens,
		logger:   logger,
		csrfPath: csrfPath,
		baseURL:  base,
	}, nil
}

// Get issues an unauthenticated read. Catalog resources are public
// read-only snapshots.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	req := c.rest.R().SetContext(ctx).SetResult(out)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	return c.settle(resp, err, http.MethodGet, path)
}

// GetAuthed issues a read that requires the session credential, e.g.
// listing the caller's own cart.
func (c *Client) GetAuthed(ctx context.Context, path string, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return ErrUnauthenticated.WithCause(err)
	}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(out).
		Get(path)
	return c.settle(resp, err, http.MethodGet, path)
}

// Post issues a state-changing request: credential attached, CSRF cookie
// bootstrapped once per session before the first mutating call.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.mutate(ctx, http.MethodPost, path, body, out)
}

// Delete issues a state-changing DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.mutate(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return ErrUnauthenticated.WithCause(err)
	}

	csrf, err := c.ensureCSRF(ctx)
	if err != nil {
		return err
	}

	req := c.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(out)
	if csrf != "" {
		req.SetHeader("X-XSRF-TOKEN", csrf)
	}
	if body != nil {
		req.SetBody(body)
	}

	var resp *resty.Response
	switch method {
	case http.MethodPost:
		resp, err = req.Post(path)
	case http.MethodDelete:
		resp, err = req.Delete(path)
	default:
		return fmt.Errorf("gateway: unsupported mutating method %s", method)
	}
	return c.settle(resp, err, method, path)
}

// ensureCSRF performs the cookie-fetch bootstrap exactly once per
// session. The success is latched; a failed bootstrap is retried on the
// next mutating call.
func (c *Client) ensureCSRF(ctx context.Context) (string, error) {
	c.csrfMu.Lock()
	defer c.csrfMu.Unlock()

	if c.csrfReady {
		return c.csrfToken, nil
	}

	resp, err := c.rest.R().SetContext(ctx).Get(c.csrfPath)
	if err := c.settle(resp, err, http.MethodGet, c.csrfPath); err != nil {
		return "", err
	}

	for _, cookie := range c.rest.GetClient().Jar.Cookies(c.baseURL) {
		if cookie.Name == csrfCookieName {
			if v, err := url.QueryUnescape(cookie.Value); err == nil {
				c.csrfToken = v
			} else {
				c.csrfToken = cookie.Value
			}
		}
	}

	c.csrfReady = true
	c.logger.Debug("csrf bootstrap complete", zap.Bool("token_present", c.csrfToken != ""))
	return c.csrfToken, nil
}

// settle maps a resty outcome to the error taxonomy. Any non-2xx is a
// failure the caller must handle; idempotency on the server side is
// never assumed.
func (c *Client) settle(resp *resty.Response, err error, method, path string) error {
	if err != nil {
		c.logger.Warn("request transport failure",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return ErrNetworkFailure.WithCause(err)
	}
	if resp.IsSuccess() {
		return nil
	}

	status := resp.StatusCode()
	c.logger.Warn("request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthenticated
	case http.StatusConflict:
		return ErrConflict
	case http.StatusNotFound:
		return ErrNotFound
	}

	msg := fmt.Sprintf("Server returned %d for %s %s", status, method, path)
	if ra := resp.Header().Get("Retry-After"); ra != "" {
		msg += fmt.Sprintf(" (Retry-After: %s)", ra)
	}
	return ErrRequestFailed.WithMessage("%s", msg)
}
