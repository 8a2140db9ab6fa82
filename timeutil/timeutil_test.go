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

package timeutil

import (
	"testing"
	"time"
)

var base = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestCycle(t *testing.T) {
	c := Cycle(base, 0, 1)
	today, yesterday := c.Strings(LayoutYMD)
	if today != "20250301" {
		t.Errorf("today = %s, want 20250301", today)
	}
	if yesterday != "20250228" {
		t.Errorf("yesterday = %s, want 20250228", yesterday)
	}
}

func TestCycleOffsets(t *testing.T) {
	// Rerunning yesterday's cycle: today shifts back one day.
	c := Cycle(base, -1, 1)
	today, yesterday := c.Strings(LayoutYMD)
	if today != "20250228" || yesterday != "20250227" {
		t.Errorf("got %s/%s, want 20250228/20250227", today, yesterday)
	}
}

func TestParts(t *testing.T) {
	p := Parts(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))
	if p.Year != "2025" || p.Month != "01" || p.Day != "05" {
		t.Errorf("parts = %+v, want zero-padded 2025/01/05", p)
	}
}

func TestDaysFrom(t *testing.T) {
	_, s := DaysFrom(base, -2, LayoutYMD)
	if s != "20250227" {
		t.Errorf("got %s, want 20250227", s)
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("20250301", LayoutYMD)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed %v", d)
	}
	if _, err := Parse("2025-03-01", LayoutYMD); err == nil {
		t.Error("expected error for mismatched layout")
	}
}
