package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blockparty/build-battle-backend/internal/config"
	"github.com/blockparty/build-battle-backend/internal/httpapi"
	"github.com/blockparty/build-battle-backend/internal/hub"
	"github.com/blockparty/build-battle-backend/internal/ratelimit"
	"github.com/blockparty/build-battle-backend/internal/room"
	"github.com/blockparty/build-battle-backend/internal/targets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	lib, err := targets.Load(cfg.TargetsPath)
	if err != nil {
		logger.Fatal("loading target patterns", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Deps{
		RoomCfg: room.Config{
			RoundDuration:   cfg.RoundDuration,
			CollaboratorURL: cfg.CollaboratorURL,
		},
		Targets: lib,
		Limiter: ratelimit.NewTable(cfg.AIChatCooldown),
		Log:     logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, cfg.BridgeSecret, logger),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.Int("patterns", lib.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
