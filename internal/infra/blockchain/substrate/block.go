package substrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/pkg/types"
	"github.com/gabapcia/credwatch/internal/pkg/x/chflow"

	"github.com/hashicorp/go-retryablehttp"
)

const eventsChannelBufferSize = 32

var (
	// ErrBlockNotFound is returned when the sidecar does not know the height.
	ErrBlockNotFound = errors.New("block not found")

	// ErrUnexpectedStatus is returned when the sidecar answers with a
	// non-2xx status other than 404.
	ErrUnexpectedStatus = errors.New("unexpected sidecar status")

	// ErrHeightMismatch is returned when the sidecar answers with another
	// block than the one requested.
	ErrHeightMismatch = errors.New("sidecar returned another height")
)

// HeaderResponse is the part of a chain_getHeader result the client reads.
type HeaderResponse struct {
	ParentHash string    `json:"parentHash"`
	Number     types.Hex `json:"number"`
}

// getFinalizedHeight resolves the finalized head hash and reads its height.
func (c *client) getFinalizedHeight(ctx context.Context) (types.Hex, error) {
	data, err := c.rpc.Fetch(ctx, "chain_getFinalizedHead")
	if err != nil {
		return "", fmt.Errorf("chain_getFinalizedHead: %w", err)
	}

	var hash string
	if err := json.Unmarshal(data, &hash); err != nil {
		return "", fmt.Errorf("decoding finalized head: %w", err)
	}

	data, err = c.rpc.Fetch(ctx, "chain_getHeader", hash)
	if err != nil {
		return "", fmt.Errorf("chain_getHeader %s: %w", hash, err)
	}

	var header HeaderResponse
	if err := json.Unmarshal(data, &header); err != nil {
		return "", fmt.Errorf("decoding header %s: %w", hash, err)
	}

	return header.Number, nil
}

// FetchBlockByHeight implements eventstream.Blockchain.
func (c *client) FetchBlockByHeight(ctx context.Context, height types.Hex) (chain.Block, error) {
	endpoint, err := url.JoinPath(c.sidecarEndpoint, "blocks", strconv.FormatUint(height.Uint64(), 10))
	if err != nil {
		return chain.Block{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return chain.Block{}, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.sidecar.Do(req)
	if err != nil {
		return chain.Block{}, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return chain.Block{}, fmt.Errorf("%w: %d", ErrBlockNotFound, height.Uint64())
	case res.StatusCode < 200 || res.StatusCode > 299:
		return chain.Block{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	var block chain.Block
	if err := json.NewDecoder(res.Body).Decode(&block); err != nil {
		return chain.Block{}, fmt.Errorf("decoding block %d: %w", height.Uint64(), err)
	}

	if block.Height != height.Uint64() {
		return chain.Block{}, fmt.Errorf("%w: asked %d, got %d", ErrHeightMismatch, height.Uint64(), block.Height)
	}

	return block, nil
}

// pollNewBlocks emits every height from next up to the finalized head and
// returns the next height to poll from. A failed head lookup is emitted as
// a subscription error and leaves next unchanged.
func (c *client) pollNewBlocks(ctx context.Context, next uint64, eventsCh chan<- eventstream.BlockchainEvent) uint64 {
	head, err := c.getFinalizedHeight(ctx)
	if err != nil {
		_ = chflow.Send(ctx, eventsCh, eventstream.BlockchainEvent{Err: err})
		return next
	}

	for ; next <= head.Uint64(); next++ {
		height := types.HexFromUint64(next)
		block, err := c.FetchBlockByHeight(ctx, height)

		event := eventstream.BlockchainEvent{Height: height, Block: block, Err: err}
		if ok := chflow.Send(ctx, eventsCh, event); !ok {
			return next
		}
	}

	return next
}

// Subscribe implements eventstream.Blockchain. The head is polled right
// away and then every poll interval.
func (c *client) Subscribe(ctx context.Context, fromHeight types.Hex) (<-chan eventstream.BlockchainEvent, error) {
	if fromHeight == "" {
		head, err := c.getFinalizedHeight(ctx)
		if err != nil {
			return nil, err
		}

		fromHeight = head
	}

	eventsCh := make(chan eventstream.BlockchainEvent, eventsChannelBufferSize)
	go func() {
		defer close(eventsCh)

		next := fromHeight.Uint64()
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			next = c.pollNewBlocks(ctx, next, eventsCh)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return eventsCh, nil
}
