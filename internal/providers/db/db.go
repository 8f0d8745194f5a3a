package db

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-dayreport/internal/models"
	"ms-dayreport/internal/report"
)

// DB implements the event and order providers over the upstream tables.
type DB struct {
	Bun *bun.DB
}

// EventsStartingOn returns events whose start falls within the calendar day,
// ordered by start time ascending.
func (d *DB) EventsStartingOn(ctx context.Context, date string) ([]models.Event, error) {
	day, err := time.Parse(report.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid report date %q: %w", date, err)
	}
	dayStart := day
	dayEnd := day.Add(24*time.Hour - time.Second)

	var events []models.Event
	err = d.Bun.NewSelect().
		Model(&events).
		Where("start_date >= ?", dayStart).
		Where("start_date <= ?", dayEnd).
		Order("start_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// OrdersForEvent returns every order holding at least one valid line item for
// the event, with each order's full item list attached. Items the orders hold
// for other events come along too; the aggregator scopes counting per event.
func (d *DB) OrdersForEvent(ctx context.Context, eventID string) ([]models.OrderWithItems, error) {
	var items []models.OrderItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("event_id = ?", eventID).
		Where("cancelled = ?", false).
		Where("quantity > 0").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return []models.OrderWithItems{}, nil
	}

	orderIDs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.OrderID] {
			orderIDs = append(orderIDs, item.OrderID)
			seen[item.OrderID] = true
		}
	}

	var orders []models.Order
	err = d.Bun.NewSelect().
		Model(&orders).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	// Fetch each order's full item list so multi-event orders carry their
	// other-event items for the aggregator to exclude explicitly.
	var allItems []models.OrderItem
	err = d.Bun.NewSelect().
		Model(&allItems).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[string][]models.OrderItem, len(orders))
	for _, item := range allItems {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	result := make([]models.OrderWithItems, 0, len(orders))
	for _, order := range orders {
		result = append(result, models.OrderWithItems{
			Order: order,
			Items: itemsByOrder[order.OrderID],
		})
	}
	return result, nil
}
