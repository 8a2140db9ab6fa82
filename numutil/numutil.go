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

// Package numutil provides the NaN-aware series statistics used when
// summarizing station extractions. A missing value at one forecast step is
// represented as NaN and must not poison the aggregate for the station.
package numutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMaxByEntity computes per-entity extrema from row-per-step data:
// rows[t][e] is the value for entity e at time step t. The returned slices
// hold, for each entity, the minimum and maximum over all steps with NaN
// values ignored. An entity with no finite value at all gets NaN extrema.
// All rows must have the same length as the first one; shorter rows are
// treated as ending in missing values.
func MinMaxByEntity(rows [][]float64) (mins, maxs []float64) {
	if len(rows) == 0 {
		return nil, nil
	}
	n := len(rows[0])
	mins = make([]float64, n)
	maxs = make([]float64, n)
	for e := 0; e < n; e++ {
		mins[e] = math.NaN()
		maxs[e] = math.NaN()
		for _, row := range rows {
			if e >= len(row) {
				continue
			}
			v := row[e]
			if math.IsNaN(v) {
				continue
			}
			// gonum's floats.Min propagates NaN, so the scan is done by hand.
			if math.IsNaN(mins[e]) || v < mins[e] {
				mins[e] = v
			}
			if math.IsNaN(maxs[e]) || v > maxs[e] {
				maxs[e] = v
			}
		}
	}
	return mins, maxs
}

// NaNMean returns the mean of the finite values of s, or NaN if there are
// none.
func NaNMean(s []float64) float64 {
	var sum float64
	var n int
	for _, v := range s {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// KelvinToCelsius converts s from kelvins to degrees Celsius in place and
// returns it.
func KelvinToCelsius(s []float64) []float64 {
	floats.AddConst(-273.15, s)
	return s
}

// CountFinite returns the number of non-NaN values in s.
func CountFinite(s []float64) int {
	var n int
	for _, v := range s {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}
