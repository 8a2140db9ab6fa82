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

package gotaputil

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/meteoalgerie/gotap/executil"
	"github.com/meteoalgerie/gotap/timeutil"
)

// Chain describes a sequence of production jobs run one after another,
// the way the operational cron entries chain the individual scripts.
type Chain struct {
	Title string     `toml:"title"`
	Jobs  []ChainJob `toml:"job"`
}

// ChainJob is one command of a chain. The {date} placeholder in the
// arguments is replaced with the run date before execution.
type ChainJob struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Dir     string   `toml:"dir"`
}

// LoadChain decodes a chain definition from the TOML file at path.
func LoadChain(path string) (*Chain, error) {
	var c Chain
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("gotap: reading chain file %s: %v", path, err)
	}
	if len(c.Jobs) == 0 {
		return nil, fmt.Errorf("gotap: chain file %s defines no jobs", path)
	}
	for i, j := range c.Jobs {
		if j.Command == "" {
			return nil, fmt.Errorf("gotap: chain file %s: job %d has no command", path, i+1)
		}
	}
	return &c, nil
}

// Run executes the chain's jobs in order for the given date. When
// continueOnError is false the first failing job stops the chain. It
// returns the names of the jobs that failed.
func (c *Chain) Run(ctx context.Context, date time.Time, continueOnError bool) ([]string, error) {
	dateStr := date.Format(timeutil.LayoutYMD)
	var failed []string
	for _, job := range c.Jobs {
		args := make([]string, len(job.Args))
		for i, a := range job.Args {
			args[i] = strings.ReplaceAll(a, "{date}", dateStr)
		}
		executil.Logger.Infof("gotap: chain %q: running job %q", c.Title, job.Name)
		if _, err := executil.Run(ctx, job.Dir, job.Command, args...); err != nil {
			failed = append(failed, job.Name)
			if !continueOnError {
				return failed, fmt.Errorf("gotap: chain %q: job %q: %v", c.Title, job.Name, err)
			}
			executil.Logger.Errorf("gotap: chain %q: job %q failed: %v; continuing", c.Title, job.Name, err)
		}
	}
	return failed, nil
}

var chainCmd = &cobra.Command{
	Use:   "chain [chain file]",
	Short: "Run a sequence of jobs from a TOML chain file",
	Long: `chain runs the jobs of a TOML chain definition in order, replacing
the {date} placeholder in job arguments with today's date. For example:

  title = "arpege day two"

  [[job]]
  name = "fetch"
  command = "gotap"
  args = ["fetch", "--date", "{date}"]

  [[job]]
  name = "extract"
  command = "gotap"
  args = ["extract", "--date", "{date}", "--send_email"]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chain, err := LoadChain(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		failed, err := chain.Run(ctx, time.Now().UTC(), Cfg.GetBool("continue_on_error"))
		if len(failed) > 0 {
			fmt.Printf("failed jobs: %s\n", strings.Join(failed, ", "))
		}
		return err
	},
}
