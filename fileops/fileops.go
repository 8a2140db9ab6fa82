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

// Package fileops moves, merges and cleans up the dated files produced by
// NWP jobs. File selection is done with glob-style patterns matched
// against base names, the convention inherited from the production
// scripts this toolkit automates.
package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is used for progress and warning messages. Jobs that set up a
// shared log file replace it with their own logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// MetFilenamePattern returns the glob pattern matching the SP1 model
// output files for the given date, e.g. "*SP1*20231026000*".
func MetFilenamePattern(date time.Time) string {
	return "*SP1*" + date.Format("20060102") + "000*"
}

// Glob returns the names of the files in dir whose base names match the
// glob pattern. Directories are skipped.
func Glob(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fileops: listing %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, fmt.Errorf("fileops: bad pattern %q: %v", pattern, err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// HasMatch reports whether dir contains at least one file matching pattern.
// A missing directory counts as no match rather than an error, so jobs can
// probe for data that has not arrived yet.
func HasMatch(dir, pattern string) bool {
	names, err := Glob(dir, pattern)
	if err != nil {
		Logger.Debugf("fileops: no match in %s: %v", dir, err)
		return false
	}
	return len(names) > 0
}

// MoveByPattern moves the files in srcDir matching pattern into dstDir,
// creating dstDir if needed, and returns the destination paths of the
// files that were moved. Failures on individual files are logged and the
// remaining files are still attempted.
func MoveByPattern(srcDir, pattern, dstDir string) ([]string, error) {
	names, err := Glob(srcDir, pattern)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		Logger.Infof("fileops: no files matching %q in %s", pattern, srcDir)
		return nil, nil
	}
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return nil, fmt.Errorf("fileops: creating destination %s: %v", dstDir, err)
	}
	var moved []string
	for _, name := range names {
		src := filepath.Join(srcDir, name)
		dst := filepath.Join(dstDir, name)
		if err := os.Rename(src, dst); err != nil {
			// Fall back to copy+remove for cross-device moves.
			if err = copyFile(src, dst); err != nil {
				Logger.Errorf("fileops: moving %s: %v", src, err)
				continue
			}
			if err = os.Remove(src); err != nil {
				Logger.Errorf("fileops: removing %s after copy: %v", src, err)
				continue
			}
		}
		moved = append(moved, dst)
		Logger.Infof("fileops: moved %s to %s", name, dstDir)
	}
	return moved, nil
}

// MergeBinary concatenates the raw contents of the input files into a
// single output file, in order. Missing inputs are skipped with a warning;
// this is how split GRIB downloads are reassembled even when a segment
// never arrived.
func MergeBinary(output string, inputs []string) error {
	w, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("fileops: creating %s: %v", output, err)
	}
	defer w.Close()
	for _, input := range inputs {
		r, err := os.Open(input)
		if err != nil {
			if os.IsNotExist(err) {
				Logger.Warnf("fileops: merge input %s not found, skipping", input)
				continue
			}
			return fmt.Errorf("fileops: opening %s: %v", input, err)
		}
		_, err = io.Copy(w, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("fileops: appending %s to %s: %v", input, output, err)
		}
	}
	Logger.Infof("fileops: merged %d files into %s", len(inputs), output)
	return nil
}

// DeletePaths removes the given files and directories. Missing paths are
// skipped. If ignoreErrors is true, failures are logged and deletion
// continues; otherwise the first failure is returned. The paths that were
// actually removed are returned either way.
func DeletePaths(paths []string, ignoreErrors bool) ([]string, error) {
	var deleted []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if os.IsNotExist(err) {
			Logger.Debugf("fileops: %s not found, skipping deletion", p)
			continue
		}
		if err == nil && fi.IsDir() {
			err = os.RemoveAll(p)
		} else if err == nil {
			err = os.Remove(p)
		}
		if err != nil {
			Logger.Errorf("fileops: deleting %s: %v", p, err)
			if !ignoreErrors {
				return deleted, fmt.Errorf("fileops: deleting %s: %v", p, err)
			}
			continue
		}
		deleted = append(deleted, p)
	}
	return deleted, nil
}

// CleanDirectory deletes the files in dir matching pattern (all files if
// pattern is empty) and returns the paths it deleted. A missing directory
// is not an error. Subdirectories are left alone.
func CleanDirectory(dir, pattern string, ignoreErrors bool) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		Logger.Warnf("fileops: directory %s not found, skipping cleanup", dir)
		return nil, nil
	}
	if pattern == "" {
		pattern = "*"
	}
	names, err := Glob(dir, pattern)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	deleted, err := DeletePaths(paths, ignoreErrors)
	Logger.Infof("fileops: deleted %d files from %s", len(deleted), dir)
	return deleted, err
}

// CopyDirectory recursively copies src to dst. If dst exists and overwrite
// is true it is removed first; if overwrite is false an error is returned.
func CopyDirectory(src, dst string, overwrite bool) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("fileops: source directory %s: %v", src, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("fileops: source %s is not a directory", src)
	}
	if _, err := os.Stat(dst); err == nil {
		if !overwrite {
			return fmt.Errorf("fileops: destination %s already exists", dst)
		}
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("fileops: removing existing destination %s: %v", dst, err)
		}
	}
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target)
	})
	if err != nil {
		return fmt.Errorf("fileops: copying %s to %s: %v", src, dst, err)
	}
	Logger.Infof("fileops: copied directory %s to %s", src, dst)
	return nil
}

// EnsureParentDir creates the parent directory of path if it does not
// already exist.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("fileops: creating directory %s: %v", dir, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := EnsureParentDir(dst); err != nil {
		return err
	}
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
