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

package executil

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
	res, err := Run(context.Background(), "", "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("stderr = %q", res.Stderr)
	}
}

func TestRunFailureIncludesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
	_, err := Run(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry stderr: %v", err)
	}
}

func TestRunMissingCommand(t *testing.T) {
	if _, err := Run(context.Background(), "", "gotap-no-such-tool"); err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestRunInDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell required")
	}
	dir := t.TempDir()
	res, err := Run(context.Background(), dir, "pwd")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Stdout, dir) {
		t.Errorf("pwd = %q, want %s", res.Stdout, dir)
	}
}

func TestAvailable(t *testing.T) {
	if !Available("sh") && runtime.GOOS != "windows" {
		t.Error("sh should be available")
	}
	if Available("gotap-no-such-tool") {
		t.Error("nonexistent tool reported available")
	}
}
