package eventstream

import "github.com/gabapcia/credwatch/internal/chain"

// ObservedBlock is a finalized block forwarded by the stream, annotated with
// the network it was read from (e.g., "spiritnet", "peregrine").
type ObservedBlock struct {
	Network string
	chain.Block
}
