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

// Package executil runs the external tools a production chain depends on
// (ecCodes utilities, archivers, converters) with consistent logging and
// error reporting.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is used for command and output logging. Jobs that set up a shared
// log file replace it with their own logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Run executes the named command with the given arguments, waiting for it
// to finish and capturing its output. If dir is nonempty the command runs
// in that directory. Cancellation and deadlines come from ctx. A non-zero
// exit is returned as an error that includes the captured standard error,
// so the caller's log shows why the tool failed.
func Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	Logger.Infof("executil: running %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if res.Stdout != "" {
		Logger.Debugf("executil: %s stdout: %s", name, strings.TrimSpace(res.Stdout))
	}
	if res.Stderr != "" {
		Logger.Debugf("executil: %s stderr: %s", name, strings.TrimSpace(res.Stderr))
	}
	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("executil: %s: %v", name, ctx.Err())
		}
		return res, fmt.Errorf("executil: %s failed: %v; stderr: %s", name, err, strings.TrimSpace(res.Stderr))
	}
	Logger.Infof("executil: %s completed", name)
	return res, nil
}

// Available reports whether the named command can be found in PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
