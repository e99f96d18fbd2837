package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/credwatch/internal/aggregation"
	"github.com/gabapcia/credwatch/internal/blockproc"
	"github.com/gabapcia/credwatch/internal/config"
	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/eventstream"
	"github.com/gabapcia/credwatch/internal/handlers/cli"
	"github.com/gabapcia/credwatch/internal/infra/blockchain/substrate"
	"github.com/gabapcia/credwatch/internal/infra/storage/memory"
	"github.com/gabapcia/credwatch/internal/infra/storage/redis"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/credwatch/internal/pkg/telemetry"
	httptransport "github.com/gabapcia/credwatch/internal/pkg/transport/http"
	"github.com/gabapcia/credwatch/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/credwatch/internal/projector"
	"github.com/gabapcia/credwatch/internal/resolver"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

// storage groups the persistence the pipeline needs.
type storage struct {
	entities    entity.Store
	checkpoints eventstream.CheckpointStorage
	guard       blockproc.IdempotencyGuard
	close       func()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	if cfg.Redis.Addr == "" {
		logger.Warn(ctx, "redis not configured, records are kept in memory")

		store := memory.NewStore()
		return storage{entities: store, checkpoints: store, close: func() {}}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return storage{}, fmt.Errorf("connecting to redis: %w", err)
	}

	return storage{
		entities:    client,
		checkpoints: client,
		guard:       client,
		close: func() {
			if err := client.Close(); err != nil {
				logger.Error(ctx, "failed to close redis client", "error", err)
			}
		},
	}, nil
}

func startTelemetry(ctx context.Context, cfg config.Config) (telemetry.ShutdownFunc, error) {
	if !cfg.Telemetry.Enabled {
		return telemetry.Noop, nil
	}

	return telemetry.Init(ctx, cfg.Telemetry.ServiceName,
		telemetry.WithServiceVersion(version),
		telemetry.WithNetwork(cfg.Network),
	)
}

func newBlockchain(cfg config.Config) eventstream.Blockchain {
	httpClient := httptransport.NewClient(
		httptransport.WithTimeout(cfg.RequestTimeout),
		httptransport.WithRetryMax(int(cfg.RetryAttempts)),
		httptransport.WithRetryLogging(cfg.LogLevel == "debug"),
	)

	providers := make([]jsonrpc.Client, 0, len(cfg.RPCEndpoints))
	for _, endpoint := range cfg.RPCEndpoints {
		providers = append(providers, jsonrpc.NewClient(httpClient.StandardClient(), endpoint))
	}

	return substrate.NewClient(
		jsonrpc.NewFailoverClient(providers...),
		httpClient,
		cfg.SidecarURL,
		substrate.WithPollInterval(cfg.PollInterval),
	)
}

func bootstrap(ctx context.Context, configPath string) (*cli.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	shutdownTelemetry, err := startTelemetry(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		_ = shutdownTelemetry(ctx)
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	ctx = logger.Derive(ctx, "network", cfg.Network)

	closeTelemetry := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := shutdownTelemetry(ctx); err != nil {
			logger.Error(ctx, "failed to flush telemetry", "error", err)
		}
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		closeTelemetry()
		return nil, err
	}

	stage := entity.NewStaging(store.entities)
	res := resolver.New()

	aggregations, err := aggregation.New(stage, aggregation.WithHistoryGapsTolerated(cfg.ToleratesHistoryGaps()))
	if err != nil {
		store.close()
		closeTelemetry()
		return nil, fmt.Errorf("creating aggregation service: %w", err)
	}

	proj, err := projector.New(stage, res, aggregations, projector.WithHistoryGapsTolerated(cfg.ToleratesHistoryGaps()))
	if err != nil {
		store.close()
		closeTelemetry()
		return nil, fmt.Errorf("creating projector: %w", err)
	}

	blockchain := newBlockchain(cfg)
	retrier := retry.New(retry.WithAttempts(cfg.RetryAttempts))

	stream := eventstream.New(cfg.Network, blockchain,
		eventstream.WithRetry(retrier),
		eventstream.WithCheckpointStorage(store.checkpoints),
		eventstream.WithStartHeight(cfg.StartBlock),
	)

	opts := []blockproc.Option{
		blockproc.WithRetry(retrier),
		blockproc.WithCheckpointStorage(store.checkpoints),
		blockproc.WithMaxProcessingTime(cfg.MaxProcessingTime),
	}
	if store.guard != nil {
		opts = append(opts, blockproc.WithIdempotencyGuard(store.guard))
	}

	return &cli.App{
		Network:     cfg.Network,
		Pipeline:    blockproc.New(stream, proj, stage, opts...),
		Checkpoints: store.checkpoints,
		Blockchain:  blockchain,
		Resolver:    res,
		Close: func() {
			store.close()
			closeTelemetry()
			_ = logger.Sync()
		},
	}, nil
}

func main() {
	if err := cli.Run(context.Background(), bootstrap); err != nil {
		fmt.Fprintln(os.Stderr, "credwatch:", err)
		os.Exit(1)
	}
}
