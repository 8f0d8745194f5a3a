package report

import (
	"context"
	"fmt"
	"sort"

	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
)

type EventProvider interface {
	EventsStartingOn(ctx context.Context, date string) ([]models.Event, error)
}

type OrderProvider interface {
	OrdersForEvent(ctx context.Context, eventID string) ([]models.OrderWithItems, error)
}

// Skip records one event or order dropped from an aggregation and why, so
// callers and tests can see exactly what is missing from the result instead of
// digging through logs.
type Skip struct {
	EventID string `json:"event_id"`
	OrderID string `json:"order_id,omitempty"`
	Reason  string `json:"reason"`
}

const (
	SkipReasonOrderProviderFailed = "order_provider_failed"
	SkipReasonMissingBilling      = "missing_billing"
	SkipReasonNoValidItems        = "no_valid_items"
)

type AggregateResult struct {
	Rows    []models.OrderRow `json:"rows"`
	Skipped []Skip            `json:"skipped,omitempty"`
}

// Aggregator joins events-for-date with orders-per-event into flat report
// rows. Pure with respect to its providers: no writes, no caching.
type Aggregator struct {
	Events EventProvider
	Orders OrderProvider
	Logger *logger.Logger
}

func NewAggregator(events EventProvider, orders OrderProvider, log *logger.Logger) *Aggregator {
	return &Aggregator{Events: events, Orders: orders, Logger: log}
}

// Aggregate builds one OrderRow per (order, event) pair for every event
// starting on the given day. A failing order lookup drops that event's
// contribution only; an order without billing detail is dropped with a skip
// record. The result is sorted by event start ascending, order creation
// ascending, both compared as canonical timestamp strings.
func (a *Aggregator) Aggregate(ctx context.Context, date string) (*AggregateResult, error) {
	events, err := a.Events.EventsStartingOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("event provider failed for %s: %w", date, err)
	}

	result := &AggregateResult{Rows: []models.OrderRow{}}

	for _, event := range events {
		orders, err := a.Orders.OrdersForEvent(ctx, event.EventID)
		if err != nil {
			provErr := &ProviderError{Provider: "order", EventID: event.EventID, Err: err}
			if a.Logger != nil {
				a.Logger.Error("REPORT", provErr.Error())
			}
			result.Skipped = append(result.Skipped, Skip{
				EventID: event.EventID,
				Reason:  SkipReasonOrderProviderFailed,
			})
			continue
		}

		for _, order := range orders {
			row, skipReason := a.buildRow(event, order)
			if skipReason != "" {
				if a.Logger != nil {
					a.Logger.Warn("REPORT", fmt.Sprintf(
						"skipping order %s for event %s: %s",
						order.Order.OrderID, event.EventID, skipReason))
				}
				result.Skipped = append(result.Skipped, Skip{
					EventID: event.EventID,
					OrderID: order.Order.OrderID,
					Reason:  skipReason,
				})
				continue
			}
			result.Rows = append(result.Rows, row)
		}
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		if result.Rows[i].EventStart != result.Rows[j].EventStart {
			return result.Rows[i].EventStart < result.Rows[j].EventStart
		}
		return result.Rows[i].OrderCreatedAt < result.Rows[j].OrderCreatedAt
	})

	return result, nil
}

// buildRow flattens one (order, event) pair. Ticket count and summary cover
// this event's valid line items only; items the order holds for other events
// are ignored. A non-empty skip reason means the pair yields no row.
func (a *Aggregator) buildRow(event models.Event, order models.OrderWithItems) (models.OrderRow, string) {
	if order.Order.BillingName == "" && order.Order.BillingEmail == "" {
		return models.OrderRow{}, SkipReasonMissingBilling
	}

	ticketCount := 0
	summaryOrder := []string{}
	summaryCounts := map[string]int{}
	for _, item := range order.Items {
		if item.EventID != event.EventID || !item.Valid() {
			continue
		}
		ticketCount += item.Quantity
		if _, seen := summaryCounts[item.TicketName]; !seen {
			summaryOrder = append(summaryOrder, item.TicketName)
		}
		summaryCounts[item.TicketName] += item.Quantity
	}

	if ticketCount == 0 {
		return models.OrderRow{}, SkipReasonNoValidItems
	}

	summary := ""
	for i, name := range summaryOrder {
		if i > 0 {
			summary += ", "
		}
		summary += fmt.Sprintf("%dx %s", summaryCounts[name], name)
	}

	return models.OrderRow{
		EventID:          event.EventID,
		EventTitle:       event.Title,
		EventStart:       event.StartDate.Format(TimeLayout),
		OrderID:          order.Order.OrderID,
		OrderNumber:      order.Order.OrderNumber,
		OrderEditRef:     fmt.Sprintf("/orders/%s/edit", order.Order.OrderID),
		PurchaserName:    order.Order.BillingName,
		PurchaserEmail:   order.Order.BillingEmail,
		PurchaserPhone:   order.Order.BillingPhone,
		OrderStatus:      order.Order.Status,
		OrderStatusLabel: StatusLabel(order.Order.Status),
		TicketCount:      ticketCount,
		TicketSummary:    summary,
		OrderCreatedAt:   order.Order.CreatedAt.Format(TimeLayout),
	}, ""
}
