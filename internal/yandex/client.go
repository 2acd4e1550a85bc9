// Package yandex is a minimal client for the Yandex Music API, covering the
// four calls the export pipeline needs: account status, the liked-tracks
// library listing, and the batched track and album lookups.
package yandex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.music.yandex.net"

	// The API answers differently to clients it does not recognize, so the
	// headers mirror what the web player sends.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
	defaultClientID  = "Windows/6.45.1"

	defaultRateLimit = 5.0 // requests per second
)

// Sentinel errors.
var (
	// ErrAuth is returned when the catalog rejects the supplied token.
	ErrAuth = errors.New("token rejected")

	// ErrCaptcha is returned when the catalog intercepts the request with a
	// SmartCaptcha challenge instead of serving it. Matches ErrAuth.
	ErrCaptcha = fmt.Errorf("smartcaptcha intercept: %w", ErrAuth)

	// ErrUpstream is returned for any other transport or protocol failure.
	ErrUpstream = errors.New("catalog request failed")
)

// Client is an authenticated Yandex Music API client. The token is supplied
// per call, never stored: every request stands on its own credential.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	clientID   string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps the request rate against the API, in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a Yandex Music API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		clientID:   defaultClientID,
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest performs one authenticated call and decodes the JSON response
// into out. Error values carry the request path but never the token.
func (c *Client) doRequest(ctx context.Context, token, method, path string, form url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}

	req.Header.Set("Authorization", "OAuth "+token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://music.yandex.ru/")
	req.Header.Set("X-Yandex-Music-Client", c.clientID)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", path, ErrAuth)
	case resp.StatusCode == http.StatusForbidden:
		// 403 here is the SmartCaptcha interstitial, not a plain denial.
		return fmt.Errorf("%s: %w", path, ErrCaptcha)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %s: decoding response: %w", ErrUpstream, path, err)
		}
	}
	return nil
}

// AccountStatus returns the identity the token authenticates as. It is also
// the cheapest call that exercises the token, so it doubles as the
// authentication gate.
func (c *Client) AccountStatus(ctx context.Context, token string) (Account, error) {
	var out struct {
		Result struct {
			Account struct {
				UID   OptInt     `json:"uid"`
				Login FlexString `json:"login"`
			} `json:"account"`
		} `json:"result"`
	}
	if err := c.doRequest(ctx, token, http.MethodGet, "/account/status", nil, &out); err != nil {
		return Account{}, err
	}
	return Account{
		UID:   out.Result.Account.UID,
		Login: string(out.Result.Account.Login),
	}, nil
}

// LikedTracks lists the user's liked-tracks library as raw stubs.
func (c *Client) LikedTracks(ctx context.Context, token string, uid int64) ([]LikeStub, error) {
	var out struct {
		Result struct {
			Library struct {
				Tracks []LikeStub `json:"tracks"`
			} `json:"library"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/users/%d/likes/tracks", uid)
	if err := c.doRequest(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Result.Library.Tracks, nil
}

// Tracks resolves lookup refs ("trackId" or "trackId:albumId") into full
// track records. The API caps this call at 100 refs; the caller chunks.
func (c *Client) Tracks(ctx context.Context, token string, refs []string) ([]Track, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	form := url.Values{
		"track-ids":      {strings.Join(refs, ",")},
		"with-positions": {"false"},
	}
	var out struct {
		Result []Track `json:"result"`
	}
	if err := c.doRequest(ctx, token, http.MethodPost, "/tracks", form, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Albums resolves album ids into full album records. The API caps this call
// at 20 ids; the caller chunks.
func (c *Client) Albums(ctx context.Context, token string, ids []int64) ([]Album, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatInt(id, 10)
	}
	form := url.Values{"album-ids": {strings.Join(strs, ",")}}
	var out struct {
		Result []Album `json:"result"`
	}
	if err := c.doRequest(ctx, token, http.MethodPost, "/albums", form, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}
