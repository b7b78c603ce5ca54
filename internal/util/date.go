package util

import (
	"fmt"
	"time"
)

// DateLayout is the format HTML date inputs submit and the counseling sheet stores.
const DateLayout = "2006-01-02"

// startOfDay returns 00:00:00 of t's calendar day in local time.
func startOfDay(t time.Time) time.Time {
	localTime := t.Local()
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDateLocal parses a YYYY-MM-DD string as the start of that day in local time.
func ParseDateLocal(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, dateStr, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

// ValidateNotFutureDate rejects dates after today. Only the calendar day is compared.
func ValidateNotFutureDate(d time.Time) error {
	if startOfDay(d).After(startOfDay(time.Now())) {
		return fmt.Errorf("date cannot be in the future")
	}
	return nil
}

// Today formats the current local date for a date input default.
func Today() string {
	return time.Now().Format(DateLayout)
}
