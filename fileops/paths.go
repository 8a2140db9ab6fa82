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

package fileops

import (
	"fmt"
	"path/filepath"
	"time"
)

// TimeSeriesPath builds the conventional path of a dated observation file
// in a base/YYYY/MM/DD tree:
//
//	base/2025/03/01/Synop_202503011200.bufr
//
// for prefix "Synop_", hour 12 and suffix ".bufr".
func TimeSeriesPath(baseDir string, t time.Time, hour int, prefix, suffix string) string {
	return filepath.Join(
		baseDir,
		t.Format("2006"), t.Format("01"), t.Format("02"),
		fmt.Sprintf("%s%s%02d00%s", prefix, t.Format("20060102"), hour, suffix),
	)
}
