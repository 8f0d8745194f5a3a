package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID      string    `bun:"order_id,pk" json:"order_id"`
	OrderNumber  string    `bun:"order_number,notnull" json:"order_number"`
	Status       string    `bun:"status,notnull" json:"status"`
	BillingName  string    `bun:"billing_name" json:"billing_name"`
	BillingEmail string    `bun:"billing_email" json:"billing_email"`
	BillingPhone string    `bun:"billing_phone,nullzero" json:"billing_phone,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// OrderItem is one purchased-ticket line inside an order. An order may carry
// items for several different events.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ItemID     string `bun:"item_id,pk" json:"item_id"`
	OrderID    string `bun:"order_id,notnull" json:"order_id"`
	EventID    string `bun:"event_id,notnull" json:"event_id"`
	TicketName string `bun:"ticket_name,notnull" json:"ticket_name"`
	Quantity   int    `bun:"quantity,notnull" json:"quantity"`
	Cancelled  bool   `bun:"cancelled" json:"cancelled"`
}

// Valid reports whether the item counts toward an event's ticket total.
func (i OrderItem) Valid() bool {
	return !i.Cancelled && i.Quantity > 0
}

type OrderWithItems struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
