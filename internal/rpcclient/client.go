// Package rpcclient provides a JSON-RPC 2.0 client for a spaced wallet
// service. It is a plain request/response transport: one round trip per
// call, no retries, and no interpretation of results beyond structural
// decoding.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spacedlabs/space-cli/internal/log"
	"github.com/spacedlabs/space-cli/internal/report"
)

// DefaultTimeout bounds a single round trip. Timeouts surface as
// RequestTimeout through the classifier.
const DefaultTimeout = 30 * time.Second

// maxInFlight is the local slot limit. The client is single-shot, so a
// second concurrent call is a programming error surfaced as
// CapacityExceeded rather than silently serialized.
const maxInFlight = 1

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
	inFlight atomic.Int32
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, DefaultTimeout)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL this client targets.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *json.RawMessage `json:"error,omitempty"`
	ID      int              `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Call invokes a JSON-RPC method and unmarshals the result into the
// provided pointer. If result is nil, the response result is discarded.
// A well-formed error object from the service is returned as
// *report.RemoteError; everything else is returned for the classifier
// to sort out.
func (c *Client) Call(method string, params, result interface{}) error {
	if c.inFlight.Add(1) > maxInFlight {
		c.inFlight.Add(-1)
		return report.ErrSlotsExceeded
	}
	defer c.inFlight.Add(-1)

	start := time.Now()
	err := c.call(method, params, result)
	log.RPC.Debug().
		Str("method", method).
		Dur("elapsed", time.Since(start)).
		Err(err).
		Msg("call")
	return err
}

func (c *Client) call(method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		// Proxies and load balancers answer with HTML error pages;
		// report the status rather than the decode failure.
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("http status %s", resp.Status)
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		var callErr rpcError
		if err := json.Unmarshal(*rpcResp.Error, &callErr); err != nil {
			return fmt.Errorf("decode error object: %w", err)
		}
		return &report.RemoteError{
			Code:    callErr.Code,
			Message: callErr.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}
