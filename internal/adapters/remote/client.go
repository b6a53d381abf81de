// Package remote talks to a hosted PostgREST/GoTrue backend: magic-link sign-in,
// table reads and writes, and RPC calls. Requests run with the caller's bearer
// token so the backend's row-level security applies.
package remote

import (
	"bytes"
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

	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/logger"
	"github.com/Jetstb21/Icould--B-SATO-SHI/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Client is the remote accessor. Construct once and share.
type Client struct {
	base      *url.URL
	anonKey   string
	jwtSecret []byte
	http      *http.Client
	logger    logger.Logger
	now       func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithJWTSecret enables local verification of session tokens.
func WithJWTSecret(secret string) Option {
	return func(c *Client) {
		c.jwtSecret = []byte(secret)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a client for the backend at baseURL. An empty URL or key reports
// ErrNotConfigured.
func New(baseURL, anonKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(anonKey) == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid url %q", ErrNotConfigured, baseURL)
	}
	c := &Client{
		base:    u,
		anonKey: anonKey,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Filter is an equality filter on one column.
type Filter struct {
	Column string
	Value  string
}

// Query describes a table read.
type Query struct {
	Columns string // "" selects every column
	Eq      []Filter
	Order   string
	Desc    bool
	Limit   int
}

func (q Query) values() url.Values {
	v := url.Values{}
	cols := q.Columns
	if cols == "" {
		cols = "*"
	}
	v.Set("select", strings.ReplaceAll(cols, " ", ""))
	for _, f := range q.Eq {
		v.Add(f.Column, "eq."+f.Value)
	}
	if q.Order != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		v.Set("order", q.Order+"."+dir)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Authenticate asks the backend to e-mail a sign-in link to email.
func (c *Client) Authenticate(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrRemote)
	}
	q := url.Values{}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	body := map[string]any{"email": email, "create_user": true}
	return c.do(ctx, "auth.otp", http.MethodPost, "/auth/v1/otp", q, body, nil, nil)
}

// Select reads rows of table into out, which must point to a slice.
func (c *Client) Select(ctx context.Context, table string, q Query, out any) error {
	return c.do(ctx, "select."+table, http.MethodGet, "/rest/v1/"+table, q.values(), nil, nil, out)
}

// Insert appends row to table.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	h := http.Header{"Prefer": {"return=minimal"}}
	return c.do(ctx, "insert."+table, http.MethodPost, "/rest/v1/"+table, nil, row, h, nil)
}

// Upsert inserts row or merges it into the row that shares conflictKey.
func (c *Client) Upsert(ctx context.Context, table string, row any, conflictKey string) error {
	q := url.Values{}
	if conflictKey != "" {
		q.Set("on_conflict", conflictKey)
	}
	h := http.Header{"Prefer": {"resolution=merge-duplicates,return=minimal"}}
	return c.do(ctx, "upsert."+table, http.MethodPost, "/rest/v1/"+table, q, row, h, nil)
}

// RPC calls a stored function. args may be nil.
func (c *Client) RPC(ctx context.Context, fn string, args, out any) error {
	if args == nil {
		args = map[string]any{}
	}
	return c.do(ctx, "rpc."+fn, http.MethodPost, "/rest/v1/rpc/"+fn, nil, args, nil, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, body any, h http.Header, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrTransport):
			outcome = "transport"
		case errors.Is(err, ErrUnauthorized):
			outcome = "unauthorized"
		case err != nil:
			outcome = "error"
		}
		metrics.RecordRemoteRequest(op, outcome, float64(time.Since(start).Microseconds())/1000)
	}()

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for k, vs := range h {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	bearer := c.anonKey
	if t, ok := AccessToken(ctx); ok {
		bearer = t
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "remote request failed", logger.String("op", op), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", ErrRemote, op, err)
	}
	return nil
}

// decodeError reads the PostgREST or GoTrue error shape.
func decodeError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Code             any    `json:"code"`
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	e := &Error{Op: op, Status: resp.StatusCode}
	if json.Unmarshal(b, &body) == nil {
		if s, ok := body.Code.(string); ok {
			e.Code = s
		}
		for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
			if m != "" {
				e.Message = m
				break
			}
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(b))
	}
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
