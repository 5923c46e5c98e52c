package cmd_shop

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/source"
)

var (
	textStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())
	selectedStyle = buttonStyle.BorderForeground(lipgloss.Color("12")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalogue in the terminal the way a chat user would",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := loadCatalogue(cfg)
		if err != nil {
			return err
		}
		store := catalogue.NewStore(root, cfg.Catalogue.File)

		ctx, cancel := context.WithCancel(background(cmd))
		defer cancel()
		if cfg.Catalogue.Watch {
			go func() { _ = source.Watch(ctx, cfg.Catalogue.File, cfg.Catalogue.Format, store) }()
		}

		h := bot.NewHandler(store, bot.WithPageSize(cfg.Bot.PageSize), bot.WithBotName(cfg.Bot.Name))
		_, err = tea.NewProgram(newBrowser(ctx, h), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}

// browser shows one bot reply at a time; pressing a button sends its
// token back to the handler as a callback.
type browser struct {
	ctx     context.Context
	handler *bot.Handler
	reply   bot.Reply
	row     int
	col     int
}

func newBrowser(ctx context.Context, h *bot.Handler) browser {
	m := browser{ctx: ctx, handler: h}
	m.reply = h.Browse(ctx, 0, catalogue.Root().String())
	return m
}

func (m browser) Init() tea.Cmd { return nil }

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1, 0)
	case "down", "j":
		m.move(1, 0)
	case "left", "h":
		m.move(0, -1)
	case "right", "l":
		m.move(0, 1)
	case "enter", " ":
		if b, ok := m.selected(); ok {
			m.press(b.Data)
		}
	case "backspace", "esc":
		if b, ok := m.back(); ok {
			m.press(b.Data)
		}
	}
	return m, nil
}

func (m *browser) move(dr, dc int) {
	kb := m.reply.Keyboard
	if len(kb) == 0 {
		return
	}
	m.row = min(max(m.row+dr, 0), len(kb)-1)
	m.col = min(max(m.col+dc, 0), len(kb[m.row])-1)
}

func (m *browser) press(token string) {
	m.reply = m.handler.Browse(m.ctx, 0, token)
	m.row, m.col = 0, 0
}

func (m browser) selected() (bot.Button, bool) {
	kb := m.reply.Keyboard
	if m.row >= len(kb) || m.col >= len(kb[m.row]) {
		return bot.Button{}, false
	}
	return kb[m.row][m.col], true
}

func (m browser) back() (bot.Button, bool) {
	kb := m.reply.Keyboard
	if len(kb) == 0 {
		return bot.Button{}, false
	}
	last := kb[len(kb)-1]
	if len(last) == 1 && last[0].Text == bot.TextBack {
		return last[0], true
	}
	return bot.Button{}, false
}

func (m browser) View() string {
	var b strings.Builder
	b.WriteString(textStyle.Render(m.reply.Text))
	b.WriteString("\n")
	for r, row := range m.reply.Keyboard {
		cells := make([]string, 0, len(row))
		for c, btn := range row {
			style := buttonStyle
			if r == m.row && c == m.col {
				style = selectedStyle
			}
			cells = append(cells, style.Render(btn.Text))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("arrows move • enter press • esc back • q quit"))
	return b.String()
}
