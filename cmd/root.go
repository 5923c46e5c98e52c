package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zggff/shopbot/cmd/cmd_shop"
	"github.com/zggff/shopbot/config"
)

var rootCmd = &cobra.Command{
	Use:           "shopbot",
	Short:         "Catalogue browsing bot",
	Long:          "shopbot serves a hierarchical product catalogue to chat clients over NATS, HTTP and websockets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .shopbot.yaml)")
	rootCmd.PersistentFlags().StringP("catalogue", "c", "", "catalogue file (overrides catalogue.file)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	_ = viper.BindPFlag("catalogue.file", rootCmd.PersistentFlags().Lookup("catalogue"))

	rootCmd.AddCommand(cmd_shop.Commands()...)
}

func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".shopbot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	config.BindEnv(v)

	// No config file is fine; defaults and env apply.
	_ = v.ReadInConfig()

	if verbose, _ := rootCmd.Flags().GetBool("verbose"); verbose {
		v.Set("log.level", "debug")
	}
}
