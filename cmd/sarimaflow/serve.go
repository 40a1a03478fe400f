package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aouyang1/sarimaflow/config"
	"github.com/aouyang1/sarimaflow/metrics"
	"github.com/aouyang1/sarimaflow/server"
	"github.com/aouyang1/sarimaflow/session"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow HTTP API",
		Example: `  sarimaflow serve --addr :8080
  sarimaflow serve --store redis --redis-addr localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("store", config.StoreMemory, "session store (memory, redis)")
	flags.String("redis-addr", "localhost:6379", "redis address for the redis store")
	a.v.BindPFlag("server.addr", flags.Lookup("addr"))
	a.v.BindPFlag("store.type", flags.Lookup("store"))
	a.v.BindPFlag("store.redis.addr", flags.Lookup("redis-addr"))
	return cmd
}

func (a *app) newStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.Store.Type {
	case config.StoreRedis:
		return session.NewRedisStore(ctx, a.cfg.Store.Redis, a.logger)
	case config.StoreMemory:
		return session.NewMemoryStore(a.cfg.Store.TTL), nil
	default:
		return nil, fmt.Errorf("store.type=%q, %w", a.cfg.Store.Type, config.ErrInvalidConfig)
	}
}

func (a *app) serve(ctx context.Context) error {
	store, err := a.newStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	a.logger.WithField("store", a.cfg.Store.Type).Info("session store ready")
	return server.New(a.cfg, store, metrics.New(), a.logger).Run(ctx)
}
