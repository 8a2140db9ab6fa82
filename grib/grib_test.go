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

package grib

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteoalgerie/gotap/table"
)

const sampleGridData = `Latitude Longitude Value
  36.000   3.000 300.15
  36.000   3.500 301.15
  36.500   3.000 299.15
  36.500   3.500 missing
1 of 1 messages in sample.grb
`

func TestParseGridData(t *testing.T) {
	points, err := parseGridData(sampleGridData)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, GridPoint{Lat: 36, Lon: 3, Value: 300.15}, points[0])
	assert.True(t, math.IsNaN(points[3].Value))
}

func TestParseGridDataEmpty(t *testing.T) {
	_, err := parseGridData("Latitude Longitude Value\n")
	assert.Error(t, err)
}

// The trailing message count ends with tokens like "1 of 1 messages";
// its first token parses as a number, so the whole line must be
// required to parse before it counts as a grid point.
func TestParseGridDataSkipsSummaryLine(t *testing.T) {
	points, err := parseGridData("36.0 3.0 300.15\n2 of 2 messages in f.grb\n")
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, GridPoint{Lat: 36, Lon: 3, Value: 300.15}, points[0])
}

func TestParseGridDataMalformed(t *testing.T) {
	// A file with no parseable data rows at all is an error.
	_, err := parseGridData("36.0 3.0 not-a-number\n")
	assert.Error(t, err)

	// A stray unparseable row among good ones is dropped.
	points, err := parseGridData("36.0 3.0 not-a-number\n36.0 3.5 301.15\n")
	require.NoError(t, err)
	require.Len(t, points, 1)
}

func TestNearestValue(t *testing.T) {
	points, err := parseGridData(sampleGridData)
	require.NoError(t, err)

	// Dead on a grid point.
	assert.Equal(t, 301.15, NearestValue(points, 36.0, 3.5))
	// Closest to the first point.
	assert.Equal(t, 300.15, NearestValue(points, 36.1, 3.1))
	// Nearest point is missing.
	assert.True(t, math.IsNaN(NearestValue(points, 36.5, 3.5)))
	// No points at all.
	assert.True(t, math.IsNaN(NearestValue(nil, 36, 3)))
}

// fakeGetData installs a shell script in place of grib_get_data that
// prints canned grid output, restoring the real tool name on cleanup.
func fakeGetData(t *testing.T, output string) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_grib_get_data")
	err := os.WriteFile(script, []byte("#!/bin/sh\ncat <<'EOF'\n"+output+"EOF\n"), 0755)
	require.NoError(t, err)
	orig := GetDataTool
	GetDataTool = script
	t.Cleanup(func() { GetDataTool = orig })
}

func TestExtractField(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable on windows")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake_grib_copy")
	err := os.WriteFile(script, []byte("#!/bin/sh\ncp \"$3\" \"$4\"\n"), 0755)
	require.NoError(t, err)
	orig := CopyTool
	CopyTool = script
	t.Cleanup(func() { CopyTool = orig })

	src := filepath.Join(dir, "full.grb")
	dst := filepath.Join(dir, "t2m.grb")
	require.NoError(t, os.WriteFile(src, []byte("GRIB"), 0644))
	require.NoError(t, ExtractField(context.Background(), src, dst, "2t"))
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "GRIB", string(b))
}

func TestReadPoints(t *testing.T) {
	fakeGetData(t, sampleGridData)
	points, err := ReadPoints(context.Background(), "/dev/null", "2t")
	require.NoError(t, err)
	assert.Len(t, points, 4)
}

func TestExtractSeries(t *testing.T) {
	fakeGetData(t, sampleGridData)
	stations := []table.Station{
		{Name: "DAR EL BEIDA", SID: "60390", Lon: 3.0, Lat: 36.0},
		{Name: "TIZI OUZOU", SID: "60395", Lon: 3.5, Lat: 36.0},
	}
	existing := "/dev/null"
	missingStep := 25
	s, err := ExtractSeries(context.Background(), stations, func(step int) string {
		if step == missingStep {
			return filepath.Join(t.TempDir(), "missing.grb")
		}
		return existing
	}, SeriesOptions{FirstStep: 24, LastStep: 26, KelvinToCelsius: true})
	require.NoError(t, err)
	require.Equal(t, []int{24, 25, 26}, s.Steps)
	require.Len(t, s.Values, 3)

	assert.InDelta(t, 27.0, s.Values[0][0], 1e-9)
	assert.InDelta(t, 28.0, s.Values[0][1], 1e-9)
	// Missing file fills the whole row with NaN.
	assert.True(t, math.IsNaN(s.Values[1][0]))
	assert.True(t, math.IsNaN(s.Values[1][1]))

	df := s.Frame(stations, SeriesOptions{FirstStep: 24, LastStep: 26, ColumnPrefix: "t2m"})
	require.NoError(t, df.Err)
	assert.Equal(t, 2, df.Nrow())
	assert.Contains(t, df.Names(), "t2m_24")
	assert.Contains(t, df.Names(), "t2m_min")
	assert.Contains(t, df.Names(), "t2m_max")
}

func TestFrameColumnPrefixDefaultsToShortName(t *testing.T) {
	s := &Series{Steps: []int{24, 25}, Values: [][]float64{{280.15}, {281.15}}}
	stations := []table.Station{{Name: "DAR EL BEIDA", SID: "60390", Lon: 3.0, Lat: 36.0}}

	df := s.Frame(stations, SeriesOptions{ShortName: "2d"})
	require.NoError(t, df.Err)
	assert.Contains(t, df.Names(), "2d_24")
	assert.Contains(t, df.Names(), "2d_25")
	assert.Contains(t, df.Names(), "2d_min")
	assert.Contains(t, df.Names(), "2d_max")
}

func TestExtractSeriesBadRange(t *testing.T) {
	stations := []table.Station{{Name: "X", SID: "1"}}
	_, err := ExtractSeries(context.Background(), stations, func(int) string { return "" },
		SeriesOptions{FirstStep: 48, LastStep: 24})
	assert.Error(t, err)

	_, err = ExtractSeries(context.Background(), nil, func(int) string { return "" }, SeriesOptions{})
	assert.Error(t, err)
}
