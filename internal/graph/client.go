package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/context/ctxhttp"

	"insightquery/internal/insights"
)

const (
	multiqueryEndpoint = "/method/fql.multiquery"
	defaultTimeout     = 30 * time.Second
)

// ErrAuth is matched by errors caused by a missing, expired or rejected
// access token.
var ErrAuth = errors.New("graph: authentication failed")

// APIError is a failure reported by the remote API.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("graph: status %d, error %d: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("graph: status %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrAuth) match token failures.
func (e *APIError) Is(target error) bool {
	if target != ErrAuth {
		return false
	}
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return true
	case e.Code == 102, e.Code == 190:
		return true
	}
	return false
}

func getDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Client executes insights batches against a Graph style REST endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

var _ insights.BatchExecutor = (*Client)(nil)

// NewClient creates a new Client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{
			Transport: getDefaultTransport(),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// ExecuteBatch posts the batch as one fql.multiquery call and returns the raw
// response body. Failures are not retried.
func (c *Client) ExecuteBatch(ctx context.Context, batch insights.Batch, accessToken string) ([]byte, error) {
	queries, err := encodeQueries(batch)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("queries", string(queries))
	form.Set("format", "json")
	if accessToken != "" {
		form.Set("access_token", accessToken)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := ctxhttp.PostForm(ctx, c.client, c.baseURL+multiqueryEndpoint, form)
	if err != nil {
		return nil, fmt.Errorf("graph: fql.multiquery request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("graph: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if apiErr := decodeAPIError(resp.StatusCode, body); apiErr != nil {
			return nil, apiErr
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	// The legacy REST API reports errors with a 200 and an error object.
	if apiErr := decodeAPIError(resp.StatusCode, body); apiErr != nil {
		return nil, apiErr
	}
	return body, nil
}

// encodeQueries writes the batch as a JSON object whose keys appear in batch
// order. encoding/json would sort map keys, putting "10" before "2".
func encodeQueries(batch insights.Batch) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, q := range batch {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(q.Key)
		if err != nil {
			return nil, err
		}
		query, err := json.Marshal(q.Query)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(query)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type errorBody struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Error     *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// decodeAPIError returns nil unless body is a JSON object describing an error.
func decodeAPIError(status int, body []byte) *APIError {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var eb errorBody
	if err := json.Unmarshal(trimmed, &eb); err != nil {
		return nil
	}
	switch {
	case eb.Error != nil:
		return &APIError{StatusCode: status, Code: eb.Error.Code, Message: eb.Error.Message}
	case eb.ErrorCode != 0:
		return &APIError{StatusCode: status, Code: eb.ErrorCode, Message: eb.ErrorMsg}
	}
	return nil
}
