package cmd_shop

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Show the node at an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := loadCatalogue(cfg)
		if err != nil {
			return err
		}

		addr, err := catalogue.ParseAddress(args[0])
		if err != nil {
			return err
		}
		node, err := root.Locate(addr)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if p, ok := node.Item(); ok {
			fmt.Fprintf(out, "%s leaf\n\n%s\n", addr, p.Card())
			return nil
		}
		label, _ := node.Data()
		fmt.Fprintf(out, "%s group %q\n", addr, label)
		for _, page := range catalogue.Paginate(node, cfg.Bot.PageSize) {
			for _, e := range page {
				fmt.Fprintf(out, "  %s %s\n", addr.Join(e.Index), renderLabel(e.Node))
			}
		}
		return nil
	},
}

var (
	convertFrom string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a catalogue file in another format",
	Long:  "Formats are taken from the file extensions unless --from/--to are given.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := source.Convert(args[0], convertFrom, args[1], convertTo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", fmt.Sprintf("input format %v", source.Formats()))
	convertCmd.Flags().StringVar(&convertTo, "to", "", fmt.Sprintf("output format %v", source.Formats()))
}
