// Package api is the gateway to the platform REST API. Every call returns
// (T, error); server-side failures come back as *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
)

type Client struct {
	baseURL string
	public  *http.Client
	authed  *http.Client
}

type Option func(*options)

type options struct {
	timeout time.Duration
	base    http.RoundTripper
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport replaces the underlying round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// NewClient builds a gateway for baseURL (e.g. http://localhost:8000/api).
// Authorized calls take the bearer token from credentials at request time.
func NewClient(baseURL string, credentials store.Store, opts ...Option) *Client {
	o := options{timeout: 30 * time.Second, base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	wire := wireTransport{base: o.base}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  &http.Client{Timeout: o.timeout, Transport: wire},
		authed: &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: storeTokenSource{store: credentials},
				Base:   wire,
			},
		},
	}
}

func (o *Client) BaseURL() string {
	return o.baseURL
}

func (o *Client) doJSON(ctx context.Context, authorized bool, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, o.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return o.do(req, authorized, out)
}

func (o *Client) do(req *http.Request, authorized bool, out any) (err error) {
	client := o.public
	if authorized {
		client = o.authed
	}

	debuglog.Debug(debuglog.Detailed, "%s %s\n", req.Method, req.URL.Path)

	var resp *http.Response
	if resp, err = client.Do(req); err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return ErrNotAuthenticated
		}
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	var data []byte
	if data, err = io.ReadAll(resp.Body); err != nil {
		return errors.Wrapf(err, "read %s %s", req.Method, req.URL.Path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, data)
		debuglog.Debug(debuglog.Basic, "%s %s failed with %d: %s\n", req.Method, req.URL.Path, resp.StatusCode, apiErr)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", req.Method, req.URL.Path)
	}
	return nil
}
