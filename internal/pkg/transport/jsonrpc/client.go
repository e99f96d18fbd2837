// Package jsonrpc provides a JSON-RPC 2.0 client over HTTP and a failover
// wrapper that spreads calls across several archive-node endpoints.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrProviderReturnedError indicates the server answered with a JSON-RPC error object.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrUnexpectedStatus indicates the server answered with a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrNoEndpoints is returned by a failover client built without endpoints.
	ErrNoEndpoints = errors.New("no json-rpc endpoints configured")
)

type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err converts an embedded JSON-RPC error object into a Go error.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return fmt.Errorf("%w: [%d] - %s", ErrProviderReturnedError, r.Error.Code, r.Error.Message)
}

// Client sends JSON-RPC requests.
type Client interface {
	// Fetch calls method with params and returns the raw result.
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

type client struct {
	providerEndpoint string
	httpClient       *http.Client
}

var _ Client = (*client)(nil)

func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	if err := data.Err(); err != nil {
		return nil, err
	}

	return data.Result, nil
}

// NewClient returns a Client posting to providerEndpoint through httpClient.
func NewClient(httpClient *http.Client, providerEndpoint string) *client {
	return &client{
		providerEndpoint: providerEndpoint,
		httpClient:       httpClient,
	}
}

// failover tries its clients one after the other, starting from the last one
// that answered, until one succeeds.
type failover struct {
	clients []Client
	current atomic.Uint32
}

var _ Client = (*failover)(nil)

func (f *failover) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if len(f.clients) == 0 {
		return nil, ErrNoEndpoints
	}

	var (
		start = int(f.current.Load())
		errs  []error
	)
	for i := range f.clients {
		idx := (start + i) % len(f.clients)

		result, err := f.clients[idx].Fetch(ctx, method, params...)
		if err == nil {
			f.current.Store(uint32(idx))
			return result, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		errs = append(errs, fmt.Errorf("endpoint #%d: %w", idx, err))
	}

	return nil, errors.Join(errs...)
}

// NewFailoverClient returns a Client that falls back to the next client
// whenever the current one fails.
func NewFailoverClient(clients ...Client) *failover {
	return &failover{clients: clients}
}
