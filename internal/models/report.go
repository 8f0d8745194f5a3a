package models

import "time"

// OrderRow is one flattened line of the daily report: a single (order, event)
// pair. An order holding items for two events on the same day appears twice,
// once per event, with ticket counts scoped to that event only.
//
// EventStart and OrderCreatedAt are canonical "2006-01-02 15:04:05" strings
// rather than timestamps: the report is sorted lexicographically on them and
// cached rows must round-trip byte-identical through JSON.
type OrderRow struct {
	EventID    string `json:"event_id"`
	EventTitle string `json:"event_title"`
	EventStart string `json:"event_start"`

	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	OrderEditRef string `json:"order_edit_ref"`

	PurchaserName  string `json:"purchaser_name"`
	PurchaserEmail string `json:"purchaser_email"`
	PurchaserPhone string `json:"purchaser_phone,omitempty"`

	OrderStatus      string `json:"order_status"`
	OrderStatusLabel string `json:"order_status_label"`

	TicketCount   int    `json:"ticket_count"`
	TicketSummary string `json:"ticket_summary"`

	OrderCreatedAt string `json:"order_created_at"`
}

// AccessLogEntry records one read of purchaser data. Write-only: the service
// appends entries to the audit stream and never reads them back.
type AccessLogEntry struct {
	Actor       string    `json:"actor"`
	Date        string    `json:"date"`
	CacheStatus string    `json:"cache_status"`
	Timestamp   time.Time `json:"timestamp"`
	OriginAddr  string    `json:"origin_addr"`
}

const (
	CacheStatusHit  = "hit"
	CacheStatusMiss = "miss"
)
