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
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"

	"github.com/meteoalgerie/gotap/numutil"
	"github.com/meteoalgerie/gotap/table"
)

// SeriesOptions control a station time-series extraction.
type SeriesOptions struct {
	// ShortName is the GRIB shortName of the field to extract.
	// Defaults to "2t", the 2-meter temperature.
	ShortName string
	// FirstStep and LastStep bound the forecast steps to extract,
	// inclusive. Defaults cover day-two of a 00Z run, steps 24–48.
	FirstStep, LastStep int
	// KelvinToCelsius converts the extracted values from K to °C.
	KelvinToCelsius bool
	// ColumnPrefix names the per-step columns of the result frame,
	// for example "t2m" yields t2m_24 … t2m_48. Defaults to the
	// shortName.
	ColumnPrefix string
}

func (o *SeriesOptions) setDefaults() {
	if o.ShortName == "" {
		o.ShortName = "2t"
	}
	if o.FirstStep == 0 && o.LastStep == 0 {
		o.FirstStep, o.LastStep = 24, 48
	}
	if o.ColumnPrefix == "" {
		o.ColumnPrefix = o.ShortName
	}
}

// Series is the result of a station extraction: one row of values per
// forecast step, one column per station.
type Series struct {
	Steps  []int
	Values [][]float64 // Values[i][j]: step Steps[i], station j
}

// ExtractSeries extracts, for every station, the value of the
// configured field at every forecast step, by calling fileForStep to
// locate the GRIB file of each step. Missing files and failed decodes
// yield NaN rows with a warning instead of aborting, so one absent
// forecast range does not lose the whole chain.
func ExtractSeries(ctx context.Context, stations []table.Station, fileForStep func(step int) string, opts SeriesOptions) (*Series, error) {
	opts.setDefaults()
	if len(stations) == 0 {
		return nil, fmt.Errorf("grib: no stations to extract")
	}
	if opts.LastStep < opts.FirstStep {
		return nil, fmt.Errorf("grib: invalid step range %d–%d", opts.FirstStep, opts.LastStep)
	}
	s := &Series{}
	for step := opts.FirstStep; step <= opts.LastStep; step++ {
		row := make([]float64, len(stations))
		path := fileForStep(step)
		points, err := readStep(ctx, path, opts.ShortName)
		if err != nil {
			Logger.Warnf("grib: step %d: %v; filling with NaN", step, err)
			for j := range row {
				row[j] = math.NaN()
			}
		} else {
			for j, st := range stations {
				row[j] = NearestValue(points, st.Lat, st.Lon)
			}
			if opts.KelvinToCelsius {
				row = numutil.KelvinToCelsius(row)
			}
		}
		s.Steps = append(s.Steps, step)
		s.Values = append(s.Values, row)
	}
	return s, nil
}

func readStep(ctx context.Context, path, shortName string) ([]GridPoint, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("missing file %s", path)
	}
	return ReadPoints(ctx, path, shortName)
}

// Frame assembles the extraction into a data frame with one row per
// station: the station metadata, one column per forecast step, and the
// per-station extrema over the whole range.
func (s *Series) Frame(stations []table.Station, opts SeriesOptions) dataframe.DataFrame {
	opts.setDefaults()
	mins, maxs := numutil.MinMaxByEntity(s.Values)

	header := []string{"station", "SID", "lon", "lat"}
	for _, step := range s.Steps {
		header = append(header, fmt.Sprintf("%s_%d", opts.ColumnPrefix, step))
	}
	header = append(header, opts.ColumnPrefix+"_min", opts.ColumnPrefix+"_max")

	records := [][]string{header}
	for j, st := range stations {
		row := []string{
			st.Name,
			st.SID,
			strconv.FormatFloat(st.Lon, 'f', -1, 64),
			strconv.FormatFloat(st.Lat, 'f', -1, 64),
		}
		for i := range s.Steps {
			row = append(row, formatValue(s.Values[i][j]))
		}
		row = append(row, formatValue(mins[j]), formatValue(maxs[j]))
		records = append(records, row)
	}
	return dataframe.LoadRecords(records)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
