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

// Package grib extracts point values from GRIB model output by driving
// the ecCodes command-line tools (grib_get_data and grib_copy), which
// must be installed on the host. Decoding the GRIB binary format itself
// is out of scope; the operational ARPEGE and ALADIN chains already
// ship ecCodes.
package grib

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/meteoalgerie/gotap/executil"
)

// Logger logs progress and warnings. It can be swapped for a
// job-specific logger before use.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Names of the ecCodes tools. They are variables so tests and
// non-standard installations can point elsewhere.
var (
	GetDataTool = "grib_get_data"
	CopyTool    = "grib_copy"
)

// GridPoint is one grid point value as reported by grib_get_data.
type GridPoint struct {
	Lat, Lon, Value float64
}

// Available reports whether the ecCodes extraction tool can be found
// on the host.
func Available() bool {
	return executil.Available(GetDataTool)
}

// ReadPoints decodes the field with the given shortName (for example
// "2t") from the GRIB file at path, returning every grid point.
// An empty shortName decodes the first field in the file.
func ReadPoints(ctx context.Context, path, shortName string) ([]GridPoint, error) {
	args := []string{}
	if shortName != "" {
		args = append(args, "-w", "shortName="+shortName)
	}
	args = append(args, path)
	res, err := executil.Run(ctx, "", GetDataTool, args...)
	if err != nil {
		return nil, fmt.Errorf("grib: reading %s: %v", path, err)
	}
	points, err := parseGridData(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("grib: parsing %s output for %s: %v", GetDataTool, path, err)
	}
	return points, nil
}

// ExtractField copies the field with the given shortName from src into
// a new GRIB file at dst using grib_copy.
func ExtractField(ctx context.Context, src, dst, shortName string) error {
	_, err := executil.Run(ctx, "", CopyTool, "-w", "shortName="+shortName, src, dst)
	if err != nil {
		return fmt.Errorf("grib: extracting %s from %s: %v", shortName, src, err)
	}
	return nil
}

// parseGridData parses the "lat lon value" text emitted by
// grib_get_data. A line only counts as data when all three tokens
// parse; the header and the trailing message count ("1 of 1 messages
// in x.grb") are skipped that way. "missing" values become NaN.
func parseGridData(text string) ([]GridPoint, error) {
	var points []GridPoint
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		lat, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		value := math.NaN()
		if fields[2] != "missing" {
			value, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				continue
			}
		}
		points = append(points, GridPoint{Lat: lat, Lon: lon, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no grid points found")
	}
	return points, nil
}

// NearestValue returns the value of the grid point nearest to the
// given location. Distances are compared in squared degrees, which is
// adequate for the limited-area domains the chains run on. It returns
// NaN when points is empty or the nearest point is missing.
func NearestValue(points []GridPoint, lat, lon float64) float64 {
	best := math.Inf(1)
	value := math.NaN()
	for _, p := range points {
		dLat := p.Lat - lat
		dLon := p.Lon - lon
		if d := dLat*dLat + dLon*dLon; d < best {
			best = d
			value = p.Value
		}
	}
	return value
}
