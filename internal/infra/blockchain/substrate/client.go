// Package substrate implements eventstream.Blockchain for KILT nodes: the
// finalized head is read over JSON-RPC and decoded blocks are fetched from
// a decoding sidecar.
package substrate

import (
	"time"

	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/pkg/transport/jsonrpc"

	"github.com/hashicorp/go-retryablehttp"
)

// averageBlockTime is the KILT target block time, used as the default
// polling interval.
const averageBlockTime = 12 * time.Second

type client struct {
	rpc             jsonrpc.Client
	sidecar         *retryablehttp.Client
	sidecarEndpoint string
	pollInterval    time.Duration
}

var _ eventstream.Blockchain = (*client)(nil)

type config struct {
	pollInterval time.Duration
}

// Option configures the client.
type Option func(*config)

// WithPollInterval sets how often the finalized head is polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// NewClient returns a client reading heads through rpc and decoded blocks
// from the sidecar served at sidecarEndpoint.
func NewClient(rpc jsonrpc.Client, sidecar *retryablehttp.Client, sidecarEndpoint string, opts ...Option) *client {
	cfg := config{
		pollInterval: averageBlockTime,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		rpc:             rpc,
		sidecar:         sidecar,
		sidecarEndpoint: sidecarEndpoint,
		pollInterval:    cfg.pollInterval,
	}
}
