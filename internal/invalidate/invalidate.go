package invalidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/report"
)

// Listener reacts to upstream order and event writes by dropping cache
// entries, so the next report for an affected date recomputes.
type Listener struct {
	Cache  report.Cache
	Logger *logger.Logger
}

func NewListener(cache report.Cache, log *logger.Logger) *Listener {
	return &Listener{Cache: cache, Logger: log}
}

// orderEvent is the shape of upstream order write notifications. The message
// does not carry the affected event date, so order writes invalidate
// everything rather than guessing.
type orderEvent struct {
	OrderID string `json:"order_id"`
	Action  string `json:"action"`
}

// eventEvent is the shape of upstream event write notifications.
type eventEvent struct {
	EventID   string `json:"event_id"`
	Action    string `json:"action"`
	StartDate string `json:"start_date"`
}

// HandleOrderEvent processes one order write notification.
func (l *Listener) HandleOrderEvent(ctx context.Context, value []byte) error {
	var evt orderEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return fmt.Errorf("malformed order event: %w", err)
	}

	l.Logger.Info("INVALIDATE", fmt.Sprintf("order %s %s, dropping all cached reports", evt.OrderID, evt.Action))
	if err := l.Cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("bulk invalidation after order %s: %w", evt.OrderID, err)
	}
	return nil
}

// HandleEventEvent processes one event write notification. When the message
// carries the event's start date only that day's entry is dropped; otherwise
// everything goes.
func (l *Listener) HandleEventEvent(ctx context.Context, value []byte) error {
	var evt eventEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		return fmt.Errorf("malformed event event: %w", err)
	}

	date := normalizeDate(evt.StartDate)
	if date == "" {
		l.Logger.Info("INVALIDATE", fmt.Sprintf("event %s %s without a date, dropping all cached reports", evt.EventID, evt.Action))
		if err := l.Cache.InvalidateAll(ctx); err != nil {
			return fmt.Errorf("bulk invalidation after event %s: %w", evt.EventID, err)
		}
		return nil
	}

	l.Logger.Info("INVALIDATE", fmt.Sprintf("event %s %s, dropping cached report for %s", evt.EventID, evt.Action, date))
	if err := l.Cache.Invalidate(ctx, date); err != nil {
		return fmt.Errorf("invalidation of %s after event %s: %w", date, evt.EventID, err)
	}
	return nil
}

// normalizeDate accepts either a bare day or a full timestamp and returns the
// canonical day key, or empty when neither parses.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	if _, err := time.Parse(report.DateLayout, raw); err == nil {
		return raw
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.Format(report.DateLayout)
	}
	if ts, err := time.Parse(report.TimeLayout, raw); err == nil {
		return ts.Format(report.DateLayout)
	}
	return ""
}
