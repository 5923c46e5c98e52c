package shop_client

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/zggff/shopbot/bot"
	"github.com/zggff/shopbot/servs/s_shop/shop_api"
)

// WSClient is a chat over the /ws endpoint. Incoming events are handed to
// Handler from a single reader goroutine.
type WSClient struct {
	URL     string
	Handler func(ev shop_api.Event)

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

func NewWSClient(url string, handler func(ev shop_api.Event)) *WSClient {
	return &WSClient{URL: url, Handler: handler}
}

// Connect dials the server and starts reading events.
func (ws *WSClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ws.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", ws.URL, err)
	}
	ws.conn = conn
	ws.done = make(chan struct{})
	go ws.listen()
	return nil
}

// Send writes one update.
func (ws *WSClient) Send(u bot.Update) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.conn == nil {
		return websocket.ErrCloseSent
	}
	return ws.conn.WriteJSON(u)
}

// Close ends the chat and waits for the reader to exit.
func (ws *WSClient) Close() error {
	ws.mu.Lock()
	conn := ws.conn
	if conn == nil {
		ws.mu.Unlock()
		return nil
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	ws.conn = nil
	ws.mu.Unlock()

	err := conn.Close()
	<-ws.done
	return err
}

func (ws *WSClient) listen() {
	defer close(ws.done)
	conn := ws.conn
	for {
		var ev shop_api.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}
		if ws.Handler != nil {
			ws.Handler(ev)
		}
	}
}
