package eventstream

import (
	"context"

	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/types"
	"github.com/gabapcia/credwatch/internal/pkg/x/chflow"
)

// BlockchainEvent is emitted by a Blockchain subscription for every height it
// walks over. Block is the zero value when Err is set; an error without
// Height concerns the subscription itself (e.g., polling the head).
type BlockchainEvent struct {
	Height types.Hex
	Block  chain.Block
	Err    error
}

// Blockchain is a source of finalized, decoded blocks.
type Blockchain interface {
	// FetchBlockByHeight retrieves and decodes the block at height.
	FetchBlockByHeight(ctx context.Context, height types.Hex) (chain.Block, error)

	// Subscribe streams blocks from fromHeight (inclusive) in ascending
	// order, up to the finalized head and beyond as it advances. An empty
	// fromHeight starts at the current finalized head. The channel is
	// closed when ctx is canceled.
	Subscribe(ctx context.Context, fromHeight types.Hex) (<-chan BlockchainEvent, error)
}

// BlockDispatchFailure reports a height that could not be fetched even after
// retrying. Errors holds the subscription error followed by the retry error.
// The stream stops after reporting it: later heights are never forwarded past
// a missing one.
type BlockDispatchFailure struct {
	Network string
	Height  types.Hex
	Errors  []error
}

// fetch reads a single height, retrying with s.retry when configured.
func (s *service) fetch(ctx context.Context, height uint64) (chain.Block, error) {
	var block chain.Block
	operation := func() error {
		b, err := s.blockchain.FetchBlockByHeight(ctx, types.HexFromUint64(height))
		if err != nil {
			return err
		}

		block = b
		return nil
	}

	if s.retry == nil {
		return block, operation()
	}

	return block, s.retry.Execute(ctx, operation)
}

// refetch re-fetches a height whose subscription event failed. It returns
// false after handing a persistent failure to the dispatch failure handler.
func (s *service) refetch(ctx context.Context, height uint64, cause error) (chain.Block, bool) {
	block, err := s.fetch(ctx, height)
	if err == nil {
		logger.Info(ctx, "block recovered after failed fetch", "block.height", height)
		return block, true
	}

	if ctx.Err() == nil {
		s.dispatchFailureHandler(ctx, BlockDispatchFailure{
			Network: s.network,
			Height:  types.HexFromUint64(height),
			Errors:  []error{cause, err},
		})
	}

	return chain.Block{}, false
}

// dispatchSubscriptionEvents forwards the subscription in strictly ascending
// height order. Failed heights are re-fetched in place; heights the
// subscription skipped are fetched before the block that revealed the gap;
// heights seen twice are dropped. It closes blocksCh when it returns.
func (s *service) dispatchSubscriptionEvents(ctx context.Context, next uint64, eventsCh <-chan BlockchainEvent, blocksCh chan<- ObservedBlock) {
	defer close(blocksCh)

	forward := func(block chain.Block) bool {
		next = block.Height + 1
		return chflow.Send(ctx, blocksCh, ObservedBlock{Network: s.network, Block: block})
	}

	for {
		event, ok := chflow.Receive(ctx, eventsCh)
		if !ok {
			return
		}

		if event.Err != nil && event.Height == "" {
			logger.Error(ctx, "blockchain subscription error", "error", event.Err)
			continue
		}

		height := event.Height.Uint64()
		if event.Err == nil {
			height = event.Block.Height
		}

		if next != 0 && height < next {
			logger.Warn(ctx, "dropping already forwarded block", "block.height", height, "block.next", next)
			continue
		}

		for next != 0 && next < height {
			logger.Warn(ctx, "filling subscription gap", "block.height", next)

			block, ok := s.refetch(ctx, next, ErrHeightSkipped)
			if !ok || !forward(block) {
				return
			}
		}

		block := event.Block
		if event.Err != nil {
			if block, ok = s.refetch(ctx, height, event.Err); !ok {
				return
			}
		}

		if !forward(block) {
			return
		}
	}
}
