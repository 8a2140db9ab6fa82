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

// Package logx configures logrus for GoTAP job programs.
//
// Production jobs are usually short programs chained together by a
// scheduler. Each job logs to the console and to a log file; when several
// jobs belong to the same production chain they share a single log file so
// the whole chain can be read in one place.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// SharedLogEnv is the environment variable that, when set, gives the path
// of a log file shared by all jobs in a production chain.
const SharedLogEnv = "GOTAP_SHARED_LOG"

// Options control logger setup.
type Options struct {
	// JobName names the job; it is used for the log file name when no
	// shared log file is configured.
	JobName string

	// LogDir is the directory holding per-job log files. If empty, a
	// "logs" directory next to the running executable is used.
	LogDir string

	// SharedLogFile, if nonempty, is an explicit path of a log file to
	// append to, overriding LogDir and JobName. If empty, the SharedLogEnv
	// environment variable is consulted before falling back to a per-job
	// file.
	SharedLogFile string

	// Level is the minimum level to log, named as in the configuration
	// file ("panic", "error", "info", "debug", ...). Empty means info.
	// A name is used instead of a logrus.Level because PanicLevel is
	// the logrus zero value and could not be told apart from unset.
	Level string
}

// Setup creates a logrus logger writing to both standard output and a log
// file, and returns the logger together with the path of the log file in
// use. The log file is always opened in append mode.
func Setup(o Options) (*logrus.Logger, string, error) {
	level := logrus.InfoLevel
	if o.Level != "" {
		var err error
		if level, err = ParseLevel(o.Level); err != nil {
			return nil, "", err
		}
	}

	path := o.SharedLogFile
	if path == "" {
		path = os.Getenv(SharedLogEnv)
	}
	if path == "" {
		dir := o.LogDir
		if dir == "" {
			exe, err := os.Executable()
			if err != nil {
				return nil, "", fmt.Errorf("logx: finding executable directory: %v", err)
			}
			dir = filepath.Join(filepath.Dir(exe), "logs")
		}
		name := o.JobName
		if name == "" {
			name = "gotap"
		}
		path = filepath.Join(dir, name+".log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, "", fmt.Errorf("logx: creating log directory: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("logx: opening log file %s: %v", path, err)
	}

	logger := logrus.New()
	logger.SetOutput(io.MultiWriter(os.Stdout, f))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
	logger.SetLevel(level)
	return logger, path, nil
}

// ParseLevel converts a configuration level string such as "DEBUG" or
// "info" to a logrus level, returning an error naming the valid choices
// for anything unrecognized.
func ParseLevel(s string) (logrus.Level, error) {
	l, err := logrus.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("logx: invalid log level %q; must be one of panic, fatal, error, warn, info, debug, trace", s)
	}
	return l, nil
}
