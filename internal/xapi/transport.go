package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alucardeht/x-mcp/internal/auth"
	"github.com/alucardeht/x-mcp/internal/logger"
	"github.com/alucardeht/x-mcp/pkg/version"
)

const (
	DefaultBaseURL = "https://api.twitter.com/2"
	maxBodySize    = 10 * 1024 * 1024
)

var log = logger.ForComponent("xapi")

// Response is what came back over the wire. A non-2xx status is not an
// error at this layer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Doer performs one authenticated request per call. params travel in the
// query string; body, when non-nil, is sent as JSON.
type Doer interface {
	Do(ctx context.Context, method, path string, params map[string]string, body interface{}) (*Response, error)
}

type Transport struct {
	baseURL string
	auth    auth.Authenticator
	http    *http.Client
	timeout time.Duration
}

func NewTransport(baseURL string, authn auth.Authenticator, httpClient *http.Client, timeout time.Duration) *Transport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    authn,
		http:    httpClient,
		timeout: timeout,
	}
}

func (t *Transport) Do(ctx context.Context, method, path string, params map[string]string, body interface{}) (*Response, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	endpoint := t.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	// the signer folds the query back into its parameter set
	if err := t.auth.Authorize(req, params); err != nil {
		return nil, fmt.Errorf("authorize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.ServerName+"/"+version.Version)

	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug("upstream request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// zero timeout leaves the caller's deadline alone
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
