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

// Package gotaputil wires the gotap packages into the command-line
// interface used by the operational chains.
package gotaputil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/meteoalgerie/gotap"
	"github.com/meteoalgerie/gotap/config"
	"github.com/meteoalgerie/gotap/email"
	"github.com/meteoalgerie/gotap/executil"
	"github.com/meteoalgerie/gotap/fetch"
	"github.com/meteoalgerie/gotap/fileops"
	"github.com/meteoalgerie/gotap/grib"
	"github.com/meteoalgerie/gotap/logx"
	"github.com/meteoalgerie/gotap/table"
	"github.com/meteoalgerie/gotap/timeutil"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gotap.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location (JSON or TOML).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "job",
			usage: `
              job names the running job; it selects the per-job log file.`,
			defaultVal: "gotap",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "shared_log",
			usage: `
              shared_log is the path of a log file shared by a chain of jobs.
              When empty, the GOTAP_SHARED_LOG environment variable is
              consulted, then a per-job file is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "log_level",
			usage: `
              log_level sets the logging verbosity: debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "date",
			usage: `
              date is the model run date in YYYYMMDD form. The default is
              today in UTC.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags(), extractCmd.Flags()},
		},
		{
			name: "protocol",
			usage: `
              protocol selects the transfer protocol: ftp or sftp.`,
			defaultVal: "ftp",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "pattern",
			usage: `
              pattern is the remote filename pattern; the {date} placeholder
              is replaced with the run date.`,
			defaultVal: "*SP1*{date}000*",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "remote_dir",
			usage: `
              remote_dir is the remote directory to fetch from. The default
              is the remote base directory of the configuration file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "local_dir",
			usage: `
              local_dir is the local directory downloads are written to.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "stations",
			usage: `
              stations is the station table (CSV with columns station, SID,
              lon, lat). It may be a local path, an http(s) URL, or a blob
              URL (s3://, gs://, file://).`,
			defaultVal: "stations.csv",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "file_template",
			usage: `
              file_template locates the GRIB file of each forecast step;
              {date} and {step} are replaced with the run date and the
              three-digit step, for example grib/ARPEGE_{date}_{step}.grb.`,
			defaultVal: "ARPEGE_{date}_{step}.grb",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "grib_dir",
			usage: `
              grib_dir is the directory holding the per-step GRIB files.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "short_name",
			usage: `
              short_name is the GRIB shortName of the field to extract.`,
			defaultVal: "2t",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "first_step",
			usage: `
              first_step is the first forecast step to extract, inclusive.`,
			defaultVal: 24,
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "last_step",
			usage: `
              last_step is the last forecast step to extract, inclusive.`,
			defaultVal: 48,
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "celsius",
			usage: `
              celsius converts extracted values from Kelvin to Celsius.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output is the result table path; a .xlsx extension selects an
              Excel workbook, anything else a CSV file.`,
			shorthand:  "o",
			defaultVal: "t2m.xlsx",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "sheet",
			usage: `
              sheet names the Excel sheet of the result workbook.`,
			defaultVal: "t2m",
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "send_email",
			usage: `
              send_email emails the result table to the recipients of the
              configuration file's email section.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{extractCmd.Flags()},
		},
		{
			name: "dir",
			usage: `
              dir is the directory to clean.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cleanCmd.Flags()},
		},
		{
			name: "clean_pattern",
			usage: `
              clean_pattern is the glob pattern of the files to remove.`,
			defaultVal: "*",
			flagsets:   []*pflag.FlagSet{cleanCmd.Flags()},
		},
		{
			name: "ignore_errors",
			usage: `
              ignore_errors keeps going when individual removals fail.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{cleanCmd.Flags()},
		},
		{
			name: "continue_on_error",
			usage: `
              continue_on_error runs the remaining jobs of a chain after one
              of them fails.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{chainCmd.Flags()},
		},
	}

	Cfg = viper.New()
	Cfg.AutomaticEnv()
	Cfg.SetEnvPrefix("GOTAP")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(fetchCmd)
	Root.AddCommand(extractCmd)
	Root.AddCommand(cleanCmd)
	Root.AddCommand(chainCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gotap: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// setupLogging initializes the job logger and points every package
// logger at it.
func setupLogging() error {
	logger, path, err := logx.Setup(logx.Options{
		JobName:       Cfg.GetString("job"),
		SharedLogFile: Cfg.GetString("shared_log"),
		Level:         Cfg.GetString("log_level"),
	})
	if err != nil {
		return err
	}
	for _, l := range []*logrus.FieldLogger{
		&fetch.Logger, &fileops.Logger, &table.Logger,
		&grib.Logger, &email.Logger, &executil.Logger,
	} {
		*l = logger
	}
	logger.Debugf("gotap: logging to %s", path)
	return nil
}

// runDate resolves the --date flag, defaulting to today in UTC.
func runDate() (time.Time, error) {
	s := Cfg.GetString("date")
	if s == "" {
		return time.Now().UTC(), nil
	}
	return timeutil.Parse(s, timeutil.LayoutYMD)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gotap",
	Short: "Helpers for automated NWP production chains.",
	Long: `gotap automates the recurring work of numerical weather prediction
production chains: fetching model output over FTP and SFTP, moving and
merging the files, extracting station values from GRIB fields, and
mailing the resulting tables.

Refer to the subcommand documentation for configuration options and
default settings. Configuration can be changed by using a configuration
file (and providing the location of the file with the --config flag),
by command-line flags, or by environment variables prefixed with GOTAP_.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		if err := setConfig(); err != nil {
			return err
		}
		return setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gotap.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gotap v%s\n", gotap.Version)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download model output matching a dated pattern",
	Long: `fetch connects to the server of the configuration file's ftp or
sftp section and downloads every file of the remote directory matching
the dated pattern into the local directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := runDate()
		if err != nil {
			return err
		}
		pattern := fetch.PatternForDate(Cfg.GetString("pattern"), date)
		localDir := Cfg.GetString("local_dir")
		cfg := config.FromViper(Cfg)

		var files []string
		switch proto := Cfg.GetString("protocol"); proto {
		case "ftp":
			fc, err := cfg.FTP()
			if err != nil {
				return err
			}
			remoteDir := Cfg.GetString("remote_dir")
			if remoteDir == "" {
				remoteDir = fc.RemoteBaseDir
			}
			client, err := fetch.DialFTP(fc.Host, fc.Port, fc.Username, fc.Password)
			if err != nil {
				return err
			}
			defer client.Close()
			files, err = client.FetchPattern(remoteDir, pattern, localDir)
			if err != nil {
				return err
			}
		case "sftp":
			sc, err := cfg.SFTP()
			if err != nil {
				return err
			}
			remoteDir := Cfg.GetString("remote_dir")
			if remoteDir == "" {
				return fmt.Errorf("gotap: remote_dir is required with sftp")
			}
			client, err := fetch.DialSFTP(sc.Host, sc.Port, sc.Username, sc.Password)
			if err != nil {
				return err
			}
			defer client.Close()
			files, err = client.FetchPattern(remoteDir, pattern, localDir)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("gotap: unknown protocol %q (want ftp or sftp)", proto)
		}
		fmt.Printf("fetched %d files into %s\n", len(files), localDir)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract station values from GRIB forecast files",
	Long: `extract reads the GRIB file of every forecast step of the
configured range, picks the grid point nearest to each station of the
station table, and writes one table row per station with the per-step
values and their extrema. With --send_email the table is mailed to the
recipients of the configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		date, err := runDate()
		if err != nil {
			return err
		}

		stationPath, err := fetch.MaybeDownload(ctx, Cfg.GetString("stations"))
		if err != nil {
			return err
		}
		stations, err := table.LoadStations(stationPath)
		if err != nil {
			return err
		}

		dir := Cfg.GetString("grib_dir")
		tmpl := Cfg.GetString("file_template")
		dateStr := date.Format(timeutil.LayoutYMD)
		fileForStep := func(step int) string {
			name := strings.ReplaceAll(tmpl, "{date}", dateStr)
			name = strings.ReplaceAll(name, "{step}", fmt.Sprintf("%03d", step))
			return filepath.Join(dir, name)
		}

		opts := grib.SeriesOptions{
			ShortName:       Cfg.GetString("short_name"),
			FirstStep:       Cfg.GetInt("first_step"),
			LastStep:        Cfg.GetInt("last_step"),
			KelvinToCelsius: Cfg.GetBool("celsius"),
		}
		series, err := grib.ExtractSeries(ctx, stations, fileForStep, opts)
		if err != nil {
			return err
		}
		df := series.Frame(stations, opts)
		if df.Err != nil {
			return fmt.Errorf("gotap: assembling result table: %v", df.Err)
		}

		output := Cfg.GetString("output")
		if strings.EqualFold(filepath.Ext(output), ".xlsx") {
			err = table.SaveExcel(df, output, Cfg.GetString("sheet"))
		} else {
			err = table.SaveCSV(df, output)
		}
		if err != nil {
			return err
		}
		fmt.Printf("wrote %d stations to %s\n", df.Nrow(), output)

		if Cfg.GetBool("send_email") {
			ec, err := config.FromViper(Cfg).Email()
			if err != nil {
				return err
			}
			_, err = email.NewSender(ec).Send(email.Message{
				Subject:     fmt.Sprintf("%s extraction %s", opts.ShortName, dateStr),
				Body:        fmt.Sprintf("Station extraction for %s is attached.", dateStr),
				Attachments: []string{output},
			})
			return err
		}
		return nil
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove files matching a pattern from a directory",
	Long: `clean removes every file of the directory matching the glob
pattern, leaving subdirectories alone. A missing directory is a
warning, not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := Cfg.GetString("dir")
		if dir == "" {
			return fmt.Errorf("gotap: --dir is required")
		}
		removed, err := fileops.CleanDirectory(dir, Cfg.GetString("clean_pattern"), Cfg.GetBool("ignore_errors"))
		if err != nil {
			return err
		}
		fmt.Printf("removed %d files from %s\n", len(removed), dir)
		return nil
	},
}
