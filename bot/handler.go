package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/pkg/x_log"
)

const (
	DefaultPageSize = 3

	TextInvalidSelection = "invalid selection"
	TextUnavailable      = "catalogue is not available"
	TextBack             = "« back"
	TextBuy              = "buy"
)

// CommandFunc answers one command.
type CommandFunc func(ctx context.Context, u Update, cmd Command) Reply

type command struct {
	name        string
	description string
	fn          CommandFunc
}

// Handler turns updates into replies. It is safe for concurrent use once
// built; commands must be registered before the first Handle.
type Handler struct {
	store    *Store
	pageSize int
	botName  string
	log      zerolog.Logger

	commands []command
	index    map[string]int
}

// Option configures a Handler.
type Option func(*Handler)

func WithPageSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.pageSize = n
		}
	}
}

func WithBotName(name string) Option {
	return func(h *Handler) { h.botName = name }
}

func WithLogger(l zerolog.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// NewHandler builds a handler over store with /start, /help and /buy.
func NewHandler(store *Store, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		pageSize: DefaultPageSize,
		log:      x_log.New("bot"),
		index:    map[string]int{},
	}
	for _, opt := range opts {
		opt(h)
	}

	h.Register("start", "start the bot", h.start)
	h.Register("help", "display this text.", h.help)
	h.Register("buy", "buy goods", h.buy)
	return h
}

// Register adds or replaces a command. Names are case-insensitive.
func (h *Handler) Register(name, description string, fn CommandFunc) {
	name = strings.ToLower(name)
	c := command{name: name, description: description, fn: fn}
	if i, ok := h.index[name]; ok {
		h.commands[i] = c
		return
	}
	h.index[name] = len(h.commands)
	h.commands = append(h.commands, c)
}

// Descriptions lists the registered commands.
func (h *Handler) Descriptions() string {
	var b strings.Builder
	b.WriteString("These commands are supported:")
	for _, c := range h.commands {
		fmt.Fprintf(&b, "\n/%s - %s", c.name, c.description)
	}
	return b.String()
}

// Handle answers u. ok is false when the update needs no reply.
func (h *Handler) Handle(ctx context.Context, u Update) (reply Reply, ok bool) {
	l := h.log.With().Int64("chat", u.ChatID).Int64("update", u.ID).Logger()
	ctx = x_log.WithLogger(ctx, &l)

	if u.IsCallback() {
		return h.Browse(ctx, u.ChatID, u.Callback), true
	}

	cmd, err := ParseCommand(u.Text, h.botName)
	switch {
	case errors.Is(err, ErrNotCommand), errors.Is(err, ErrOtherBot):
		return Reply{}, false
	case err != nil:
		l.Debug().Err(err).Str("text", u.Text).Msg("unparsable command")
		return Reply{ChatID: u.ChatID, Text: h.Descriptions()}, true
	}

	i, known := h.index[cmd.Name]
	if !known {
		l.Debug().Str("command", cmd.Name).Msg("unknown command")
		return Reply{ChatID: u.ChatID, Text: h.Descriptions()}, true
	}

	l.Debug().Str("command", cmd.Name).Strs("args", cmd.Args).Msg("command")
	reply = h.commands[i].fn(ctx, u, cmd)
	reply.ChatID = u.ChatID
	return reply, true
}

func (h *Handler) start(_ context.Context, _ Update, _ Command) Reply {
	name := h.botName
	if name == "" {
		name = "the shop bot"
	}
	return Reply{Text: fmt.Sprintf("this is %s, use /buy to browse the catalogue", name)}
}

func (h *Handler) help(_ context.Context, _ Update, _ Command) Reply {
	return Reply{Text: h.Descriptions()}
}

func (h *Handler) buy(ctx context.Context, u Update, cmd Command) Reply {
	token := cmd.Arg(0)
	if token == "" {
		token = catalogue.Root().String()
	}
	return h.Browse(ctx, u.ChatID, token)
}

// Browse renders the node addressed by token: a group as a keyboard of its
// children, a leaf as a product card. Every failure is reported to the
// user as an invalid selection.
func (h *Handler) Browse(ctx context.Context, chatID int64, token string) Reply {
	l := x_log.From(ctx)

	addr, err := catalogue.ParseAddress(token)
	if err != nil {
		l.Warn().Str("token", token).Err(err).Msg("bad address token")
		return Reply{ChatID: chatID, Text: TextInvalidSelection}
	}

	snap := h.store.Load()
	if snap == nil {
		return Reply{ChatID: chatID, Text: TextUnavailable}
	}

	node, err := snap.Root.Locate(addr)
	if err != nil {
		l.Debug().Str("address", addr.String()).Uint64("version", snap.Version).Err(err).Msg("address miss")
		return Reply{ChatID: chatID, Text: TextInvalidSelection}
	}

	if p, ok := node.Item(); ok {
		return Reply{ChatID: chatID, Text: p.Card(), Keyboard: backRow(addr)}
	}

	label, _ := node.Data()
	if label == "" {
		label = TextBuy
	}
	kb := Keyboard{}
	for _, page := range catalogue.Paginate(node, h.pageSize) {
		row := make([]Button, 0, len(page))
		for _, e := range page {
			row = append(row, Button{Text: Label(e.Node), Data: addr.Join(e.Index).String()})
		}
		kb = append(kb, row)
	}
	kb = append(kb, backRow(addr)...)
	return Reply{ChatID: chatID, Text: label, Keyboard: kb}
}

// Label is the button text of a node.
func Label(n *Catalogue) string {
	if p, ok := n.Item(); ok {
		return p.Title
	}
	label, _ := n.Data()
	return label
}

func backRow(addr catalogue.Address) Keyboard {
	parent, ok := addr.Parent()
	if !ok {
		return nil
	}
	return Keyboard{{{Text: TextBack, Data: parent.String()}}}
}
