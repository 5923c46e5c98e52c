// Package bot is the chat-facing side of the shop: it turns incoming
// updates into replies that browse the catalogue with inline keyboards.
package bot

import (
	"fmt"

	"github.com/zggff/shopbot/catalogue"
)

// Product is the payload of a catalogue leaf.
type Product struct {
	Price       uint   `json:"price"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Card renders the product the way it is shown in chat.
func (p Product) Card() string {
	return fmt.Sprintf("%s\n\n%s\n\nprice: %d", p.Title, p.Description, p.Price)
}

type (
	// Catalogue is a shop tree: leaves are products, groups carry a label.
	Catalogue = catalogue.Node[Product, string]
	Store     = catalogue.Store[Product, string]
	Snapshot  = catalogue.Snapshot[Product, string]
)

// Update is one incoming chat event. Exactly one of Text and Callback is
// expected to be set; Callback holds the data of a pressed button.
type Update struct {
	ID       int64  `json:"id"`
	ChatID   int64  `json:"chat_id"`
	Text     string `json:"text,omitempty"`
	Callback string `json:"callback,omitempty"`
}

func (u Update) IsCallback() bool { return u.Callback != "" }

// Reply is one outgoing chat message.
type Reply struct {
	ChatID   int64    `json:"chat_id"`
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard,omitempty"`
}

// Keyboard is an inline keyboard, row by row.
type Keyboard [][]Button

// Button carries its display text and the callback token sent back when
// pressed.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Buttons returns the number of buttons over all rows.
func (k Keyboard) Buttons() int {
	n := 0
	for _, row := range k {
		n += len(row)
	}
	return n
}
