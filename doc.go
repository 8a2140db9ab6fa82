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

// Package gotap is a toolkit for automating the daily production tasks of a
// numerical weather prediction (NWP) operations suite: fetching model output
// and observation files from remote servers, shuffling and merging dated
// files on disk, extracting station point values from GRIB fields, wrangling
// station tables between CSV and Excel, and reporting results by email.
//
// The functionality is split into small packages that are meant to be
// composed by short job programs chained together by a scheduler:
//
//   - fetch: FTP, SFTP, HTTP and blob-storage retrieval of dated files.
//   - fileops: pattern-based file moving, merging, and cleanup.
//   - timeutil: production-cycle date arithmetic and formatting.
//   - config: validated access to the shared job configuration file.
//   - logx: logrus setup with a per-job or shared log file.
//   - table: station lists and dataframes in CSV and Excel form.
//   - numutil: NaN-aware series statistics.
//   - grib: station point-value extraction from GRIB files via ecCodes.
//   - executil: logged execution of external commands.
//   - email: production report delivery with attachments.
//
// The gotap command in cmd/gotap exposes the most common jobs as a CLI.
package gotap

// Version gives the version of this toolkit.
const Version = "1.0.0"
