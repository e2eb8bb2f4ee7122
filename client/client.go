package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/launchdarkly/posts-contract-tests/framework"
)

const defaultRequestTimeout = time.Second * 10

// Client sends requests to the API under test. Its only state is its configuration, which is
// fixed when it is created, so a single Client can be shared by concurrently running scenarios.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  framework.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes the Client use the specified *http.Client instead of its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithTimeout sets the timeout for each request, including reading the response body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = timeout
		c.http = &hc
	}
}

// WithLogger sets the logger that every request and response is written to by default.
func WithLogger(logger framework.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the API whose root is at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be an absolute http or https URL", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		logger:  framework.NullLogger(),
	}
	for _, o := range options {
		o(c)
	}
	if c.logger == nil {
		c.logger = framework.NullLogger()
	}
	return c, nil
}

// BaseURL returns the base URL that request paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Send performs the request and captures the response. It uses the client's default logger.
func (c *Client) Send(ctx context.Context, spec RequestSpec) (Response, error) {
	return c.SendWithLogger(ctx, spec, c.logger)
}

// SendWithLogger is the same as Send, but writes debug output to the specified logger.
//
// The returned error is a *TransportError if no response was received, or a *StatusError if
// spec.FailOnStatusCode was set and the status was not 2xx. Any other error means the request
// could not be built, and nothing was sent.
func (c *Client) SendWithLogger(ctx context.Context, spec RequestSpec, logger framework.Logger) (Response, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	req, err := c.buildRequest(ctx, spec)
	if err != nil {
		return Response{}, err
	}
	target := req.URL.String()
	logger.Printf("Sending %s %s", spec.Method, target)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Printf("Request failed: %s", err)
		return Response{}, &TransportError{Method: spec.Method, URL: target, Err: err}
	}
	data, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		logger.Printf("Failed to read response body: %s", err)
		return Response{}, &TransportError{Method: spec.Method, URL: target, Err: err}
	}

	r := NewResponse(resp.StatusCode, resp.Header, data)
	r.Duration = time.Since(start)
	logger.Printf("Received %s", r)

	if spec.FailOnStatusCode && !r.IsSuccess() {
		return r, &StatusError{Method: spec.Method, URL: target, StatusCode: r.StatusCode}
	}
	return r, nil
}

func (c *Client) buildRequest(ctx context.Context, spec RequestSpec) (*http.Request, error) {
	if !spec.Method.Valid() {
		return nil, fmt.Errorf("unsupported request method %q", spec.Method)
	}
	target, err := c.resolve(spec)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var contentType string
	bodyValue, hasBody, err := BodyValue(spec.Body)
	if err != nil {
		return nil, err
	}
	if hasBody {
		if spec.Form {
			encoded, err := encodeForm(bodyValue)
			if err != nil {
				return nil, err
			}
			body = strings.NewReader(encoded)
			contentType = "application/x-www-form-urlencoded"
		} else {
			data, err := json.Marshal(bodyValue)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(data)
			contentType = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, string(spec.Method), target, body)
	if err != nil {
		return nil, err
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) resolve(spec RequestSpec) (string, error) {
	ref, err := url.Parse(spec.Path)
	if err != nil {
		return "", fmt.Errorf("invalid request path %q: %w", spec.Path, err)
	}
	var u url.URL
	if ref.IsAbs() {
		u = *ref
	} else {
		if ref.Host != "" {
			return "", errors.New("request path must not specify a host without a scheme")
		}
		u = *c.baseURL
		u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
		u.RawPath = strings.TrimSuffix(c.baseURL.EscapedPath(), "/") + "/" + strings.TrimPrefix(ref.EscapedPath(), "/")
		u.RawQuery = ref.RawQuery
		u.Fragment = ""
	}
	u.RawQuery = encodeQuery(u.RawQuery, spec.Query)
	return u.String(), nil
}
