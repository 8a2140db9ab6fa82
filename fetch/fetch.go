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

// Package fetch retrieves model output and observation files from the
// remote servers of a production chain, over FTP, SFTP, HTTP or blob
// storage. File selection uses glob patterns against remote base names;
// transient transfer failures are retried with exponential backoff.
package fetch

import (
	"path"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// Logger is used for progress and warning messages. Jobs that set up a
// shared log file replace it with their own logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// DialTimeout is the connection timeout for FTP and SFTP servers.
const DialTimeout = 30 * time.Second

// PatternForDate substitutes the compact YYYYMMDD form of date for each
// "{date}" placeholder in a filename pattern template, e.g.
// "*SP1*{date}000*" becomes "*SP1*20231026000*".
func PatternForDate(template string, date time.Time) string {
	return strings.ReplaceAll(template, "{date}", date.Format("20060102"))
}

// matchNames returns the subset of names matching the glob pattern. An
// empty pattern matches everything.
func matchNames(names []string, pattern string) ([]string, error) {
	if pattern == "" {
		return names, nil
	}
	var out []string
	for _, name := range names {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, name)
		}
	}
	return out, nil
}

// retry runs op with exponential backoff, logging each retry, giving up
// after maxTries attempts.
func retry(maxTries uint64, op func() error) error {
	return backoff.RetryNotify(
		op,
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxTries-1),
		func(err error, d time.Duration) {
			Logger.Warnf("fetch: %v: retrying in %v", err, d)
		},
	)
}
