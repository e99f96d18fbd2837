package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/credwatch/internal/pkg/logger"

	"github.com/urfave/cli/v3"
)

// startPipelineCommand returns the command running the indexing pipeline.
//
// Usage example:
//
//	credwatch start
//
// The process runs until it receives SIGINT or SIGTERM, or until the
// pipeline halts on a block it cannot project.
func startPipelineCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the indexing pipeline from the last checkpoint.",
		Usage:       "Runs the pipeline until Ctrl+C, a termination signal or a halting failure.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			if err := app.Pipeline.Start(ctx); err != nil {
				return err
			}
			defer app.Pipeline.Close()

			select {
			case sig := <-quit:
				logger.Info(ctx, "shutting down", "signal", sig.String())
				return nil
			case <-ctx.Done():
				return nil
			case <-app.Pipeline.Halted():
				return fmt.Errorf("pipeline halted: %w", app.Pipeline.Err())
			}
		},
	}
}
