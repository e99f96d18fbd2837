package cli

import (
	"context"
	"os"

	"github.com/gabapcia/credwatch/internal/blockproc"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/resolver"

	"github.com/urfave/cli/v3"
)

// CallResolver finds the leaf call an event hash refers to.
type CallResolver interface {
	Resolve(root chain.Call, target resolver.Target) (resolver.Leaf, error)
}

// App holds the services the commands run against.
type App struct {
	Network     string
	Pipeline    blockproc.Service
	Checkpoints eventstream.CheckpointStorage
	Blockchain  eventstream.Blockchain
	Resolver    CallResolver

	// Close releases the connections opened while wiring the services.
	Close func()
}

// Bootstrap wires the services from the configuration file at configPath,
// which may be empty.
type Bootstrap func(ctx context.Context, configPath string) (*App, error)

// Run executes the credwatch CLI with the process arguments.
//
// Commands:
//
//   - `start`: runs the indexing pipeline.
//   - `rewind`: overwrites the stream checkpoint.
//   - `resolve`: prints the leaf call an event hash resolves to.
func Run(ctx context.Context, bootstrap Bootstrap) error {
	app := new(App)

	root := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "credwatch",
		Description:           "Indexes KILT credential activity into the entity store.",
		Usage:                 "credwatch [command] [flags]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars("CREDWATCH_CONFIG"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Args().Len() == 0 {
				return ctx, nil
			}

			loaded, err := bootstrap(ctx, c.String("config"))
			if err != nil {
				return ctx, err
			}

			*app = *loaded
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			if app.Close != nil {
				app.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			startPipelineCommand(app),
			rewindCheckpointCommand(app),
			resolveCallCommand(app),
		},
	}

	return root.Run(ctx, os.Args)
}
