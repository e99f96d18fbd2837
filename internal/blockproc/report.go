package blockproc

import (
	"context"
	"errors"

	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/projector"
)

// BlockProcessingFailureNotifier is told about the block that halted the
// pipeline, e.g. to persist a failure report or page an operator.
type BlockProcessingFailureNotifier interface {
	NotifyBlockProcessingFailure(ctx context.Context, result BlockProcessingFailure) error
}

// logFailureNotifier writes the failure report to the log.
type logFailureNotifier struct{}

func (logFailureNotifier) NotifyBlockProcessingFailure(ctx context.Context, result BlockProcessingFailure) error {
	keysAndValues := []any{
		"processing.id", result.ProcessingID,
		"block.network", result.Network,
		"block.height", result.Height,
		"block.hash", result.Hash,
		"processing.attempts", result.Attempts,
		"error", result.LastError,
	}

	if fe := (*projector.FatalError)(nil); errors.As(result.LastError, &fe) {
		keysAndValues = append(keysAndValues,
			"event", fe.Event,
			"extrinsic", fe.Extrinsic,
			"target", fe.Target,
			"call", fe.Shape,
		)
	}

	logger.Error(ctx, "block processing halted", keysAndValues...)
	return nil
}
