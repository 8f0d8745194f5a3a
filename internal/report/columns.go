package report

// columnIDs is the closed set of report column identifiers. Preference saves
// silently drop anything outside it.
var columnIDs = []string{
	"event",
	"event_date",
	"order_id",
	"purchaser_name",
	"email",
	"phone",
	"status",
	"tickets",
}

// DefaultColumns returns the full column set, the default for a user with no
// saved preference.
func DefaultColumns() []string {
	cols := make([]string, len(columnIDs))
	copy(cols, columnIDs)
	return cols
}

// FilterColumns keeps only recognized column ids, preserving input order and
// dropping duplicates.
func FilterColumns(input []string) []string {
	known := make(map[string]bool, len(columnIDs))
	for _, id := range columnIDs {
		known[id] = true
	}

	seen := make(map[string]bool, len(input))
	filtered := make([]string, 0, len(input))
	for _, id := range input {
		if known[id] && !seen[id] {
			filtered = append(filtered, id)
			seen[id] = true
		}
	}
	return filtered
}
