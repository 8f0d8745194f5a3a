package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-dayreport/internal/report"
)

func TestValidateReportDate_AcceptsRealDates(t *testing.T) {
	valid := []string{
		"2000-01-01",
		"2025-06-15",
		"2050-12-31",
		"2024-02-29", // leap day
	}
	for _, date := range valid {
		assert.NoError(t, report.ValidateReportDate(date), "expected %s to be accepted", date)
	}
}

func TestValidateReportDate_RejectsOutOfRangeYears(t *testing.T) {
	for _, date := range []string{"1999-12-31", "2051-01-01"} {
		err := report.ValidateReportDate(date)
		assert.Error(t, err, "expected %s to be rejected", date)

		var ve *report.ValidationError
		if assert.True(t, errors.As(err, &ve)) {
			assert.Equal(t, report.ReasonYearOutOfRange, ve.Reason)
		}
	}
}

func TestValidateReportDate_RejectsImpossibleCalendarDates(t *testing.T) {
	for _, date := range []string{"2024-02-30", "2023-02-29", "2024-13-01", "2024-04-31", "2024-00-10"} {
		err := report.ValidateReportDate(date)
		assert.Error(t, err, "expected %s to be rejected", date)
		assert.Equal(t, report.ReasonBadCalendarDate, report.RejectionReason(err))
	}
}

func TestValidateReportDate_RejectsMalformedInput(t *testing.T) {
	malformed := []string{
		"",
		"2024/06/15",
		"15-06-2024",
		"2024-6-15",
		"2024-06-15T00:00:00",
		"not-a-date",
	}
	for _, date := range malformed {
		err := report.ValidateReportDate(date)
		assert.Error(t, err, "expected %q to be rejected", date)
		assert.Equal(t, report.ReasonBadDateFormat, report.RejectionReason(err))
	}
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "Sunday, June 15, 2025", report.FormatDisplayDate("2025-06-15"))
}
