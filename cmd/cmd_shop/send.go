package cmd_shop

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/servs/s_shop/shop_client"
)

var (
	sendCallback string
	sendChat     int64
)

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send one update to a running shop over NATS",
	Example: `  shopbot send /buy
  shopbot send --callback /0/1/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (len(args) == 0) == (sendCallback == "") {
			return fmt.Errorf("give either text or --callback")
		}
		u := bot.Update{ID: time.Now().UnixNano(), ChatID: sendChat, Callback: sendCallback}
		if len(args) == 1 {
			u.Text = args[0]
		}

		cl, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		reply, handled, err := cl.Send(background(cmd), u)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if !handled {
			fmt.Fprintln(cmd.OutOrStdout(), "(no reply)")
			return nil
		}
		PrintReply(cmd.OutOrStdout(), reply)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Ping a running shop and print its endpoint stats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cl, closeFn, err := dial()
		if err != nil {
			return err
		}
		defer closeFn()

		ctx := background(cmd)
		if err := cl.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		info, err := cl.Info(ctx)
		if err != nil {
			return fmt.Errorf("info: %w", err)
		}
		stats, err := cl.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s (%s) up since %s\n", info.Name, info.Version, info.ID, stats.Started.Format(time.RFC3339))
		for _, ep := range stats.Endpoints {
			fmt.Fprintf(out, "  %-24s requests=%d errors=%d avg=%s\n",
				ep.Subject, ep.NumRequests, ep.NumErrors, ep.AverageProcessingTime)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendCallback, "callback", "", "send a button press with this address token")
	sendCmd.Flags().Int64Var(&sendChat, "chat", 1, "chat id")
}

func dial() (shop_client.Client, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("shopbot-cli"))
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect %s: %w", cfg.NATS.URL, err)
	}
	return shop_client.New(nc, cfg.NATS.SubjectPrefix), nc.Close, nil
}

// PrintReply writes a reply and its keyboard as plain text.
func PrintReply(w io.Writer, r bot.Reply) {
	fmt.Fprintln(w, r.Text)
	for _, row := range r.Keyboard {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			cells = append(cells, fmt.Sprintf("[%s %s]", b.Text, b.Data))
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
}
