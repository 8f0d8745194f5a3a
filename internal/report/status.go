package report

import "strings"

// statusLabels maps known order statuses to their display form. The status set
// is open: anything unknown falls through to a title-cased passthrough.
var statusLabels = map[string]string{
	"pending":    "Pending payment",
	"processing": "Processing",
	"on-hold":    "On hold",
	"completed":  "Completed",
	"cancelled":  "Cancelled",
	"refunded":   "Refunded",
	"failed":     "Failed",
}

// StatusLabel returns the display label for an order status.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	cleaned := strings.ReplaceAll(status, "-", " ")
	cleaned = strings.ReplaceAll(cleaned, "_", " ")
	if cleaned == "" {
		return ""
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
