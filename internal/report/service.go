package report

import (
	"context"
	"fmt"
	"time"

	"ms-dayreport/internal/auth"
	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
)

type Cache interface {
	GetOrCompute(ctx context.Context, date string, forceRefresh bool) ([]models.OrderRow, bool, error)
	Invalidate(ctx context.Context, date string) error
	InvalidateAll(ctx context.Context) error
}

// AccessRecorder appends to the audit trail. Implementations must never
// surface a failure to the caller.
type AccessRecorder interface {
	Record(ctx context.Context, entry models.AccessLogEntry)
}

type PrefStore interface {
	VisibleColumns(ctx context.Context, userID string) ([]string, error)
	SaveVisibleColumns(ctx context.Context, userID string, columns []string) error
}

// DayReport is the full answer to one report request.
type DayReport struct {
	Date           string            `json:"date"`
	FormattedDate  string            `json:"formatted_date"`
	Rows           []models.OrderRow `json:"rows"`
	WasCacheHit    bool              `json:"was_cache_hit"`
	VisibleColumns []string          `json:"visible_columns"`
}

type Service struct {
	Cache  Cache
	Access AccessRecorder
	Prefs  PrefStore
	Logger *logger.Logger
}

func NewService(cache Cache, access AccessRecorder, prefs PrefStore, log *logger.Logger) *Service {
	return &Service{Cache: cache, Access: access, Prefs: prefs, Logger: log}
}

// DayReport validates the date, resolves rows through the cache, records the
// read in the audit trail and attaches the actor's column preference. Every
// read of purchaser data goes through here, hit or miss.
func (s *Service) DayReport(ctx context.Context, actor auth.Actor, date string, forceRefresh bool) (*DayReport, error) {
	if err := ValidateReportDate(date); err != nil {
		return nil, err
	}

	rows, wasHit, err := s.Cache.GetOrCompute(ctx, date, forceRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report for %s: %w", date, err)
	}

	cacheStatus := models.CacheStatusMiss
	if wasHit {
		cacheStatus = models.CacheStatusHit
	}
	s.Access.Record(ctx, models.AccessLogEntry{
		Actor:       actor.UserID,
		Date:        date,
		CacheStatus: cacheStatus,
		Timestamp:   time.Now().UTC(),
		OriginAddr:  actor.Origin,
	})

	columns, err := s.Prefs.VisibleColumns(ctx, actor.UserID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("REPORT", fmt.Sprintf("column preference lookup failed for %s: %v", actor.UserID, err))
		}
		columns = DefaultColumns()
	}

	return &DayReport{
		Date:           date,
		FormattedDate:  FormatDisplayDate(date),
		Rows:           rows,
		WasCacheHit:    wasHit,
		VisibleColumns: columns,
	}, nil
}

// SaveColumns filters the requested column ids against the known set and
// persists the survivors wholesale for the actor. Returns what was stored.
func (s *Service) SaveColumns(ctx context.Context, actor auth.Actor, columns []string) ([]string, error) {
	filtered := FilterColumns(columns)
	if err := s.Prefs.SaveVisibleColumns(ctx, actor.UserID, filtered); err != nil {
		return nil, fmt.Errorf("failed to save column preference for %s: %w", actor.UserID, err)
	}
	return filtered, nil
}
