package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ColumnPref stores a user's visible report columns as a JSON-encoded list.
// Saved wholesale on every change; absence means "all columns visible".
type ColumnPref struct {
	bun.BaseModel `bun:"table:column_prefs"`

	UserID    string    `bun:"user_id,pk" json:"user_id"`
	Columns   string    `bun:"columns,notnull" json:"columns"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
