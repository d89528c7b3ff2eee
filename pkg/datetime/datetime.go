// Package datetime provides date and time utility functions, including the
// mapping between 1-based period indices and calendar months.
package datetime

import (
	"time"

	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout

	// LabelLayout is the human-readable month label format, e.g. "Jan 2030".
	LabelLayout = "Jan 2006"
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// PeriodIndex converts a target calendar month into a 1-based period index
// relative to the simulation start date. The month containing startDate is
// period 1.
func PeriodIndex(startDate, targetDate string) (int, error) {
	startT, err := time.Parse(DateTimeLayout, startDate)
	if err != nil {
		return 0, err
	}
	targetT, err := time.Parse(DateTimeLayout, targetDate)
	if err != nil {
		return 0, err
	}
	years := targetT.Year() - startT.Year()
	months := int(targetT.Month()) - int(startT.Month())
	return years*constants.MonthsPerYear + months + 1, nil
}

// PeriodLabel renders the human-readable calendar label for a 1-based period
// index relative to the simulation start date.
func PeriodLabel(startDate string, periodIndex int) (string, error) {
	startT, err := time.Parse(DateTimeLayout, startDate)
	if err != nil {
		return "", err
	}
	return startT.AddDate(0, periodIndex-1, 0).Format(LabelLayout), nil
}

// PeriodDate returns the config-format date string for a 1-based period index
// relative to the simulation start date.
func PeriodDate(startDate string, periodIndex int) (string, error) {
	return OffsetDate(startDate, DateTimeLayout, periodIndex-1)
}

// DateBeforeDate returns true if firstDate is strictly before secondDate.
func DateBeforeDate(firstDate string, secondDate string) (bool, error) {
	firstDateT, err := time.Parse(DateTimeLayout, firstDate)
	if err != nil {
		return false, err
	}
	secondDateT, err := time.Parse(DateTimeLayout, secondDate)
	if err != nil {
		return false, err
	}
	return firstDateT.Before(secondDateT), nil
}
