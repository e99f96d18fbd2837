package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/credwatch/internal/pkg/types"

	"github.com/urfave/cli/v3"
)

// rewindCheckpointCommand returns the command overwriting the checkpoint of
// the configured network. Indexing resumes at the block after --height.
//
// Usage example:
//
//	credwatch rewind --height 4200000
func rewindCheckpointCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:        "rewind",
		Description: "Overwrites the stream checkpoint so the next start resumes after the given height.",
		Usage:       "Sets the last processed height. Must provide --height.",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "height",
				Usage:    "Last processed block height",
				Required: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			height := c.Uint64("height")

			if err := app.Checkpoints.SaveCheckpoint(ctx, app.Network, types.HexFromUint64(height)); err != nil {
				return err
			}

			_, err := fmt.Fprintf(c.Root().Writer, "checkpoint of %s set to %d, next block is %d\n", app.Network, height, height+1)
			return err
		},
	}
}
