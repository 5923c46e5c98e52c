package cmd_shop

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/catalogue"
	"github.com/zggff/shopbot/source"
)

const shopJSON = `{"List":{"data":"","list":[
  {"List":{"data":"books","list":[
    {"Item":{"price":20,"title":"go","description":"gopher book"}},
    {"Item":{"price":25,"title":"rust","description":"crab book"}}
  ]}},
  {"Item":{"price":3,"title":"pen","description":"blue"}}
]}}`

func writeShop(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, os.WriteFile(path, []byte(shopJSON), 0o600))
	viper.Reset()
	viper.Set("catalogue.file", path)
	viper.Set("log.to_console", false)
	t.Cleanup(viper.Reset)
	return path
}

func sampleHandler(t *testing.T) *bot.Handler {
	t.Helper()
	root, err := source.LoadFile[bot.Product, string](writeShop(t), "")
	require.NoError(t, err)
	return bot.NewHandler(catalogue.NewStore(root, "test"))
}

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) browser {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m.(browser)
}

func TestBrowserNavigation(t *testing.T) {
	m := newBrowser(context.Background(), sampleHandler(t))
	assert.Equal(t, bot.TextBuy, m.reply.Text)
	assert.Contains(t, m.View(), "books")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "books", m.reply.Text)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.reply.Text, "crab book")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "books", m.reply.Text)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, bot.TextBuy, m.reply.Text)

	// the root has no back row
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, bot.TextBuy, m.reply.Text)
}

func TestBrowserCursorClamps(t *testing.T) {
	m := newBrowser(context.Background(), sampleHandler(t))

	m = press(t, m,
		tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown},
	)
	assert.Equal(t, 0, m.row)
	assert.Equal(t, 1, m.col)

	b, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, "/1/", b.Data)
}

func TestBrowserQuit(t *testing.T) {
	m := newBrowser(context.Background(), sampleHandler(t))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRenderTree(t *testing.T) {
	root, err := source.LoadFile[bot.Product, string](writeShop(t), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderTree(&buf, &root, catalogue.Root(), 0)
	out := buf.String()
	assert.Contains(t, out, "/0/1/")
	assert.Contains(t, out, "rust")
	assert.Contains(t, out, "(root)")

	buf.Reset()
	node, _ := root.Resolve(catalogue.NewAddress(0))
	RenderTree(&buf, node, catalogue.NewAddress(0), 0)
	assert.Contains(t, buf.String(), "/0/0/")
	assert.NotContains(t, buf.String(), "pen")

	buf.Reset()
	RenderTree(&buf, &root, catalogue.Root(), 1)
	assert.NotContains(t, buf.String(), "rust")
}

func TestResolveCommand(t *testing.T) {
	writeShop(t)

	var out bytes.Buffer
	resolveCmd.SetOut(&out)
	require.NoError(t, resolveCmd.RunE(resolveCmd, []string{"/0/0/"}))
	assert.Contains(t, out.String(), "gopher book")

	out.Reset()
	require.NoError(t, resolveCmd.RunE(resolveCmd, []string{"/0/"}))
	assert.Contains(t, out.String(), `group "books"`)
	assert.Contains(t, out.String(), "/0/1/")

	var miss *catalogue.MissError
	assert.ErrorAs(t, resolveCmd.RunE(resolveCmd, []string{"/1/0/"}), &miss)
	assert.ErrorIs(t, resolveCmd.RunE(resolveCmd, []string{"/a/"}), catalogue.ErrInvalidAddress)
}

func TestConvertCommand(t *testing.T) {
	in := writeShop(t)
	out := filepath.Join(t.TempDir(), "shop.toml")

	var buf bytes.Buffer
	convertCmd.SetOut(&buf)
	require.NoError(t, convertCmd.RunE(convertCmd, []string{in, out}))

	a, err := source.LoadFile[bot.Product, string](in, "")
	require.NoError(t, err)
	b, err := source.LoadFile[bot.Product, string](out, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPrintReply(t *testing.T) {
	var buf bytes.Buffer
	PrintReply(&buf, bot.Reply{Text: "hi", Keyboard: bot.Keyboard{{{Text: "a", Data: "/0/"}, {Text: "b", Data: "/1/"}}}})
	assert.Equal(t, "hi\n[a /0/] [b /1/]\n", buf.String())
}

func TestSendNeedsExactlyOneInput(t *testing.T) {
	sendCallback = ""
	assert.Error(t, sendCmd.RunE(sendCmd, nil))

	sendCallback = "/0/"
	t.Cleanup(func() { sendCallback = "" })
	assert.Error(t, sendCmd.RunE(sendCmd, []string{"/buy"}))
}
