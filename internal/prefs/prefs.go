package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-dayreport/internal/models"
	"ms-dayreport/internal/report"
)

// Store persists per-user visible-column preferences. A user with no saved
// row gets the full default column set.
type Store struct {
	Bun *bun.DB
}

func NewStore(bunDB *bun.DB) *Store {
	return &Store{Bun: bunDB}
}

func (s *Store) VisibleColumns(ctx context.Context, userID string) ([]string, error) {
	var pref models.ColumnPref
	err := s.Bun.NewSelect().
		Model(&pref).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return report.DefaultColumns(), nil
	}
	if err != nil {
		return nil, err
	}

	var columns []string
	if err := json.Unmarshal([]byte(pref.Columns), &columns); err != nil {
		return nil, fmt.Errorf("corrupt column preference for %s: %w", userID, err)
	}
	return columns, nil
}

// SaveVisibleColumns overwrites the user's preference wholesale.
func (s *Store) SaveVisibleColumns(ctx context.Context, userID string, columns []string) error {
	payload, err := json.Marshal(columns)
	if err != nil {
		return err
	}

	pref := models.ColumnPref{
		UserID:    userID,
		Columns:   string(payload),
		UpdatedAt: time.Now(),
	}
	_, err = s.Bun.NewInsert().
		Model(&pref).
		On("CONFLICT (user_id) DO UPDATE").
		Set("columns = EXCLUDED.columns").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
