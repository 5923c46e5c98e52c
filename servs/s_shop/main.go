package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zggff/shopbot/config"
	"github.com/zggff/shopbot/pkg/x_log"
	"github.com/zggff/shopbot/servs/s_shop/shop_serv"
)

func main() {
	opts := []config.Option{config.FromEnv()}
	if path := os.Getenv("SHOP_CONFIG"); path != "" {
		opts = append([]config.Option{config.FromFile(path)}, opts...)
	}

	cfg, err := config.New(opts...)
	if err != nil {
		x_log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	x_log.InitWithConfig(&cfg.Log, "shop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shop_serv.New(cfg).Run(ctx); err != nil {
		x_log.Error().Err(err).Msg("shop failed")
		os.Exit(1)
	}
}
