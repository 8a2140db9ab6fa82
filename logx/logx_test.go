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

package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetupPerJobFile(t *testing.T) {
	dir := t.TempDir()
	logger, path, err := Setup(Options{JobName: "fetch_arpege", LogDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "fetch_arpege.log"); path != want {
		t.Errorf("log path = %s, want %s", path, want)
	}
	logger.Info("hello")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Errorf("log file does not contain message: %q", string(b))
	}
}

func TestSetupSharedFileFromEnv(t *testing.T) {
	shared := filepath.Join(t.TempDir(), "chain", "production.log")
	t.Setenv(SharedLogEnv, shared)
	_, path, err := Setup(Options{JobName: "ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if path != shared {
		t.Errorf("log path = %s, want shared path %s", path, shared)
	}
	if _, err := os.Stat(filepath.Dir(shared)); err != nil {
		t.Errorf("shared log directory was not created: %v", err)
	}
}

func TestSetupAppends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		logger, _, err := Setup(Options{JobName: "job", LogDir: dir})
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("entry")
	}
	b, err := os.ReadFile(filepath.Join(dir, "job.log"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(b), "entry"); n != 2 {
		t.Errorf("expected 2 entries after two setups, got %d", n)
	}
}

func TestSetupLevels(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"panic", logrus.PanicLevel},
		{"debug", logrus.DebugLevel},
	}
	for _, c := range cases {
		logger, _, err := Setup(Options{JobName: "job", LogDir: dir, Level: c.level})
		if err != nil {
			t.Fatal(err)
		}
		if logger.GetLevel() != c.want {
			t.Errorf("level %q: got %v, want %v", c.level, logger.GetLevel(), c.want)
		}
	}
	if _, _, err := Setup(Options{JobName: "job", LogDir: dir, Level: "verbose"}); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("DEBUG")
	if err != nil {
		t.Fatal(err)
	}
	if l != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for invalid level")
	}
}
