package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID   string    `bun:"event_id,pk" json:"event_id"`
	Title     string    `bun:"title,notnull" json:"title"`
	StartDate time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate   time.Time `bun:"end_date" json:"end_date"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
