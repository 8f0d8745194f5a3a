package report

import (
	"regexp"
	"time"
)

const (
	// DateLayout is the canonical day key.
	DateLayout = "2006-01-02"
	// TimeLayout is the canonical timestamp form used in report rows. Rows
	// sort lexicographically on these strings.
	TimeLayout = "2006-01-02 15:04:05"
	// DisplayDateLayout is the human-readable form returned alongside rows.
	DisplayDateLayout = "Monday, January 2, 2006"

	MinReportYear = 2000
	MaxReportYear = 2050
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateReportDate checks a report date for exact YYYY-MM-DD shape, calendar
// validity and the supported year range. Returns a ValidationError carrying a
// machine-readable reason on failure.
func ValidateReportDate(date string) error {
	if !datePattern.MatchString(date) {
		return &ValidationError{Field: "date", Reason: ReasonBadDateFormat}
	}

	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		// Matches the pattern but is not a real calendar date, e.g. 2024-02-30.
		return &ValidationError{Field: "date", Reason: ReasonBadCalendarDate}
	}

	if year := parsed.Year(); year < MinReportYear || year > MaxReportYear {
		return &ValidationError{Field: "date", Reason: ReasonYearOutOfRange}
	}

	return nil
}

// FormatDisplayDate renders a valid report date for display. The date must
// already have passed ValidateReportDate.
func FormatDisplayDate(date string) string {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(DisplayDateLayout)
}
