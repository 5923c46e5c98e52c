package bot_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
)

func product(price uint, title string) bot.Catalogue {
	return catalogue.Leaf[bot.Product, string](bot.Product{Price: price, Title: title, Description: title + " desc"})
}

// root{fruit{p0..p4}, hat, empty}
func sampleStore() *bot.Store {
	fruit := make([]bot.Catalogue, 0, 5)
	for i := 0; i < 5; i++ {
		fruit = append(fruit, product(uint(10+i), fmt.Sprintf("fruit %d", i)))
	}
	root := catalogue.Group("",
		catalogue.Group("fruit", fruit...),
		product(99, "hat"),
		catalogue.Group[bot.Product, string]("empty"),
	)
	return catalogue.NewStore(root, "test")
}

func TestBuyShowsRootKeyboard(t *testing.T) {
	h := bot.NewHandler(sampleStore())

	r, ok := h.Handle(context.Background(), bot.Update{ChatID: 7, Text: "/buy"})
	require.True(t, ok)
	assert.Equal(t, int64(7), r.ChatID)
	assert.Equal(t, bot.TextBuy, r.Text)
	require.Len(t, r.Keyboard, 1)
	assert.Equal(t, []bot.Button{
		{Text: "fruit", Data: "/0/"},
		{Text: "hat", Data: "/1/"},
		{Text: "empty", Data: "/2/"},
	}, r.Keyboard[0])
}

func TestCallbackPaginatesWithBackRow(t *testing.T) {
	h := bot.NewHandler(sampleStore())

	r, ok := h.Handle(context.Background(), bot.Update{ChatID: 1, Callback: "/0/"})
	require.True(t, ok)
	assert.Equal(t, "fruit", r.Text)
	require.Len(t, r.Keyboard, 3)
	assert.Len(t, r.Keyboard[0], 3)
	assert.Len(t, r.Keyboard[1], 2)
	assert.Equal(t, "/0/4/", r.Keyboard[1][1].Data)
	assert.Equal(t, []bot.Button{{Text: bot.TextBack, Data: "/"}}, r.Keyboard[2])
	assert.Equal(t, 6, r.Keyboard.Buttons())
}

func TestPageSizeOption(t *testing.T) {
	h := bot.NewHandler(sampleStore(), bot.WithPageSize(2))

	r := h.Browse(context.Background(), 1, "/0/")
	require.Len(t, r.Keyboard, 4)
	assert.Equal(t, "/0/2/", r.Keyboard[1][0].Data)
}

func TestLeafShowsCard(t *testing.T) {
	h := bot.NewHandler(sampleStore())

	r, ok := h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "/buy /0/3/"})
	require.True(t, ok)
	assert.Equal(t, "fruit 3\n\nfruit 3 desc\n\nprice: 13", r.Text)
	assert.Equal(t, bot.Keyboard{{{Text: bot.TextBack, Data: "/0/"}}}, r.Keyboard)
}

func TestEmptyGroupHasOnlyBackRow(t *testing.T) {
	h := bot.NewHandler(sampleStore())

	r := h.Browse(context.Background(), 1, "/2/")
	assert.Equal(t, "empty", r.Text)
	assert.Equal(t, bot.Keyboard{{{Text: bot.TextBack, Data: "/"}}}, r.Keyboard)
}

func TestInvalidSelection(t *testing.T) {
	h := bot.NewHandler(sampleStore())

	for _, token := range []string{"/abc/", "/0/0/0/", "/9/", "/1/0/"} {
		t.Run(token, func(t *testing.T) {
			r, ok := h.Handle(context.Background(), bot.Update{ChatID: 3, Callback: token})
			require.True(t, ok)
			assert.Equal(t, bot.TextInvalidSelection, r.Text)
			assert.Empty(t, r.Keyboard)
			assert.Equal(t, int64(3), r.ChatID)
		})
	}
}

func TestUnavailableStore(t *testing.T) {
	h := bot.NewHandler(&bot.Store{})

	r := h.Browse(context.Background(), 1, "/")
	assert.Equal(t, bot.TextUnavailable, r.Text)
}

func TestBrowseFollowsSwap(t *testing.T) {
	store := sampleStore()
	h := bot.NewHandler(store)

	store.Swap(catalogue.Group("new", product(1, "only")), "test")
	r := h.Browse(context.Background(), 1, "/")
	assert.Equal(t, "new", r.Text)
	assert.Equal(t, 1, r.Keyboard.Buttons())
}

func TestHelpAndStart(t *testing.T) {
	h := bot.NewHandler(sampleStore(), bot.WithBotName("zggff bot"))

	r, ok := h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "/help"})
	require.True(t, ok)
	assert.Equal(t, h.Descriptions(), r.Text)
	assert.Contains(t, r.Text, "/start - start the bot")
	assert.Contains(t, r.Text, "/buy - buy goods")

	r, ok = h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "/start@zggffbot"})
	require.True(t, ok)
	assert.Contains(t, r.Text, "zggff bot")
}

func TestUnknownAndPlainText(t *testing.T) {
	h := bot.NewHandler(sampleStore(), bot.WithBotName("zggff bot"))

	r, ok := h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "/sell"})
	require.True(t, ok)
	assert.Equal(t, h.Descriptions(), r.Text)

	_, ok = h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "hi there"})
	assert.False(t, ok)

	_, ok = h.Handle(context.Background(), bot.Update{ChatID: 1, Text: "/buy@otherbot"})
	assert.False(t, ok)
}

func TestRegisterReplaces(t *testing.T) {
	h := bot.NewHandler(sampleStore())
	h.Register("HELP", "custom help", func(context.Context, bot.Update, bot.Command) bot.Reply {
		return bot.Reply{Text: "custom", ChatID: 99}
	})
	h.Register("ping", "answer pong", func(_ context.Context, _ bot.Update, cmd bot.Command) bot.Reply {
		return bot.Reply{Text: "pong " + cmd.Arg(0)}
	})

	r, _ := h.Handle(context.Background(), bot.Update{ChatID: 5, Text: "/help"})
	assert.Equal(t, "custom", r.Text)
	assert.Equal(t, int64(5), r.ChatID)

	r, _ = h.Handle(context.Background(), bot.Update{ChatID: 5, Text: "/ping x"})
	assert.Equal(t, "pong x", r.Text)

	d := h.Descriptions()
	assert.Contains(t, d, "/help - custom help")
	assert.Less(t, strings.Index(d, "/buy"), strings.Index(d, "/ping"))
}
