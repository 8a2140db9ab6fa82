/*
Copyright © 2025 the GoTAP authors.
This file is part of GoTAP.

GoTAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoTAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoTAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package timeutil provides the date arithmetic used by production cycles.
//
// Most jobs work on "today's" model run together with "yesterday's"
// observations, with the reference day sometimes shifted when a job reruns
// late. These helpers keep that arithmetic and the associated formatting
// in one place.
package timeutil

import (
	"fmt"
	"time"
)

// LayoutYMD is the compact date layout used in meteorological file names.
const LayoutYMD = "20060102"

// DateParts holds the zero-padded components of a date.
type DateParts struct {
	Year  string // e.g. "2025"
	Month string // e.g. "01"
	Day   string // e.g. "05"
}

// Parts splits t into zero-padded year, month and day strings.
func Parts(t time.Time) DateParts {
	return DateParts{
		Year:  t.Format("2006"),
		Month: t.Format("01"),
		Day:   t.Format("02"),
	}
}

// CyclePair describes the two dates a production job works on.
type CyclePair struct {
	Today     time.Time
	Yesterday time.Time
}

// Cycle returns the today/yesterday pair for a job run at base.
// todayOffsetDays shifts "today" from base (0 for the current day, -1 when
// rerunning yesterday's cycle); yesterdayOffsetDays is the number of days
// "yesterday" lies before the shifted today, normally 1.
func Cycle(base time.Time, todayOffsetDays, yesterdayOffsetDays int) CyclePair {
	today := base.AddDate(0, 0, todayOffsetDays)
	return CyclePair{
		Today:     today,
		Yesterday: today.AddDate(0, 0, -yesterdayOffsetDays),
	}
}

// Strings formats both dates of the pair with the given layout.
func (c CyclePair) Strings(layout string) (today, yesterday string) {
	return c.Today.Format(layout), c.Yesterday.Format(layout)
}

// Parts returns the date components of both dates of the pair.
func (c CyclePair) Parts() (today, yesterday DateParts) {
	return Parts(c.Today), Parts(c.Yesterday)
}

// DaysFrom returns the date n days after base (negative n for the past),
// formatted with layout if layout is nonempty.
func DaysFrom(base time.Time, n int, layout string) (time.Time, string) {
	d := base.AddDate(0, 0, n)
	if layout == "" {
		return d, ""
	}
	return d, d.Format(layout)
}

// Parse parses a date string with the given layout, wrapping the error with
// both inputs so a bad configuration value is easy to track down.
func Parse(value, layout string) (time.Time, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parsing %q with layout %q: %v", value, layout, err)
	}
	return t, nil
}
