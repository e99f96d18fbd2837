package blockproc

import (
	"time"

	"github.com/gabapcia/credwatch/internal/pkg/types"
)

// BlockProcessingFailure describes a block whose projection failed for good
// and halted the pipeline.
type BlockProcessingFailure struct {
	ProcessingID  string          // UUIDv7 of the processing cycle
	Network       string          // network the block was read from
	Height        types.Hex       // height of the failed block
	Hash          string          // hash of the failed block
	FailedAt      time.Time       // when the failure was finalized
	Attempts      uint8           // projection attempts made
	LastError     error           // error that halted the pipeline
	AttemptErrors map[int64]error // errors of every attempt by Unix timestamp
}
