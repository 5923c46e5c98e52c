// Package cmd_shop holds the shopbot subcommands.
package cmd_shop

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/config"
	"github.com/zggff/shopbot/pkg/x_log"
	"github.com/zggff/shopbot/servs/s_shop/shop_serv"
	"github.com/zggff/shopbot/source"
)

// Commands returns every subcommand for the root command.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		serveCmd,
		treeCmd,
		browseCmd,
		resolveCmd,
		convertCmd,
		sendCmd,
		statusCmd,
		configCmd,
	}
}

// loadConfig reads the global viper instance prepared by the root command.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(nil)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	x_log.InitWithConfig(&cfg.Log, "shopbot")
	return cfg, nil
}

func loadCatalogue(cfg *config.Config) (bot.Catalogue, error) {
	return source.LoadFile[bot.Product, string](cfg.Catalogue.File, cfg.Catalogue.Format)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shop service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		x_log.Info().Str("catalogue", cfg.Catalogue.File).Bool("watch", cfg.Catalogue.Watch).
			Bool("embedded_nats", cfg.NATS.Embedded).Msg("starting shop")
		return shop_serv.New(cfg).Run(ctx)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		cfg.Dump(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout())
		if err := cfg.Validate(); err != nil {
			return err
		}
		return nil
	},
}

func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
