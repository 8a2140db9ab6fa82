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

package table

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/tealeg/xlsx"
)

// Station is one synoptic station of the observation network.
type Station struct {
	Name string  // human-readable station name
	SID  string  // WMO station identifier
	Lon  float64 // longitude [degrees east]
	Lat  float64 // latitude [degrees north]
}

// Station tables and workbooks are read by every job of a chain, so opens
// are memoized in small in-memory caches.
var (
	stationCache  *requestcache.Cache
	stationInit   sync.Once
	workbookCache *requestcache.Cache
	workbookInit  sync.Once
)

// LoadStations reads the station table from the CSV file at path. The
// file must have columns "station", "SID", "lon" and "lat". Results are
// cached per path, so repeated loads within a process are free.
func LoadStations(path string) ([]Station, error) {
	stationInit.Do(func() {
		stationCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			return readStations(req.(string))
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := stationCache.NewRequest(context.Background(), path, path)
	v, err := r.Result()
	if err != nil {
		return nil, err
	}
	return v.([]Station), nil
}

func readStations(path string) ([]Station, error) {
	df, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	df, err = SelectExisting(df, []string{"station", "SID", "lon", "lat"})
	if err != nil {
		return nil, fmt.Errorf("table: station file %s: %v", path, err)
	}
	if len(df.Names()) != 4 {
		return nil, fmt.Errorf("table: station file %s is missing one of the columns station, SID, lon, lat", path)
	}
	records := df.Records()
	stations := make([]Station, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		lon, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("table: station %s has bad longitude %q", rec[0], rec[2])
		}
		lat, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("table: station %s has bad latitude %q", rec[0], rec[3])
		}
		stations = append(stations, Station{Name: rec[0], SID: rec[1], Lon: lon, Lat: lat})
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("table: station file %s holds no stations", path)
	}
	return stations, nil
}

// openWorkbook opens an Excel workbook from disk, using a cache to avoid
// reading the same file more than once.
func openWorkbook(fileName string) (*xlsx.File, error) {
	workbookInit.Do(func() {
		workbookCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			f, err := xlsx.OpenFile(req.(string))
			if err != nil {
				return nil, fmt.Errorf("table: opening workbook: %v", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := workbookCache.NewRequest(context.Background(), fileName, fileName)
	v, err := r.Result()
	if err != nil {
		return nil, err
	}
	return v.(*xlsx.File), nil
}
