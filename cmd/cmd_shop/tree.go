package cmd_shop

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
)

var (
	addrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	groupStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	leafStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [address]",
	Short: "Print the catalogue with node addresses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := loadCatalogue(cfg)
		if err != nil {
			return err
		}

		at := catalogue.Root()
		if len(args) == 1 {
			if at, err = catalogue.ParseAddress(args[0]); err != nil {
				return err
			}
		}
		node, err := root.Locate(at)
		if err != nil {
			return err
		}

		RenderTree(cmd.OutOrStdout(), node, at, treeDepth)
		st := node.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d groups, %d products, depth %d\n", st.Groups, st.Leaves, st.Depth)
		return nil
	},
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "limit printed depth (0 = unlimited)")
}

// RenderTree prints node and its descendants, one per line, prefixed with
// the absolute address. base is node's own address.
func RenderTree(w io.Writer, node *bot.Catalogue, base catalogue.Address, maxDepth int) {
	node.Walk(func(rel catalogue.Address, n *bot.Catalogue) bool {
		abs := base
		for _, seg := range rel.Segments() {
			abs = abs.Join(seg)
		}

		indent := strings.Repeat("  ", rel.Len())
		fmt.Fprintf(w, "%s%s %s\n", indent, addrStyle.Render(abs.String()), renderLabel(n))
		return maxDepth <= 0 || rel.Len() < maxDepth
	})
}

func renderLabel(n *bot.Catalogue) string {
	if p, ok := n.Item(); ok {
		return leafStyle.Render(p.Title) + " " + priceStyle.Render(fmt.Sprintf("%d", p.Price))
	}
	label := bot.Label(n)
	if label == "" {
		label = "(root)"
	}
	return groupStyle.Render(label) + addrStyle.Render(fmt.Sprintf(" [%d]", n.Len()))
}
