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

// Package config reads the shared configuration file used by the
// production jobs. The file is JSON or TOML with one section per concern
// (ftp, sftp, logging, email, and model-specific sections such as arpege
// and aladin); jobs extract the sections they need through typed accessors
// that validate required keys up front, so a bad deployment fails at
// startup rather than halfway through a transfer.
package config

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Default ports for the transfer protocols, used when a section leaves
// the port unset.
const (
	DefaultFTPPort  = 21
	DefaultSFTPPort = 22
)

// Config provides access to a loaded configuration file.
type Config struct {
	v *viper.Viper
}

// Load reads the configuration file at path. The format is inferred from
// the file extension (.json, .toml, .yaml, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %v", path, err)
	}
	return &Config{v: v}, nil
}

// FromViper wraps an already-populated viper instance, such as the one
// bound to the gotap command-line flags.
func FromViper(v *viper.Viper) *Config { return &Config{v: v} }

// FTP holds the settings of the "ftp" section.
type FTP struct {
	Host          string
	Username      string
	Password      string
	RemoteBaseDir string
	Port          int
}

// FTP extracts and validates the "ftp" section.
func (c *Config) FTP() (FTP, error) {
	s, err := c.section("ftp")
	if err != nil {
		return FTP{}, err
	}
	f := FTP{Port: DefaultFTPPort}
	if f.Host, err = requiredString(s, "ftp", "host"); err != nil {
		return FTP{}, err
	}
	if f.Username, err = requiredString(s, "ftp", "username"); err != nil {
		return FTP{}, err
	}
	if f.Password, err = requiredString(s, "ftp", "password"); err != nil {
		return FTP{}, err
	}
	if f.RemoteBaseDir, err = requiredString(s, "ftp", "remote_base_directory"); err != nil {
		return FTP{}, err
	}
	if p, ok := s["port"]; ok {
		if f.Port, err = cast.ToIntE(p); err != nil {
			return FTP{}, fmt.Errorf("config: ftp.port must be an integer: %v", err)
		}
	}
	return f, nil
}

// SFTP holds the settings of the "sftp" section.
type SFTP struct {
	Host     string
	Username string
	Password string
	Port     int
}

// SFTP extracts and validates the "sftp" section.
func (c *Config) SFTP() (SFTP, error) {
	s, err := c.section("sftp")
	if err != nil {
		return SFTP{}, err
	}
	f := SFTP{Port: DefaultSFTPPort}
	if f.Host, err = requiredString(s, "sftp", "host"); err != nil {
		return SFTP{}, err
	}
	if f.Username, err = requiredString(s, "sftp", "username"); err != nil {
		return SFTP{}, err
	}
	if f.Password, err = requiredString(s, "sftp", "password"); err != nil {
		return SFTP{}, err
	}
	if p, ok := s["port"]; ok {
		if f.Port, err = cast.ToIntE(p); err != nil {
			return SFTP{}, fmt.Errorf("config: sftp.port must be an integer: %v", err)
		}
	}
	return f, nil
}

// Logging holds the settings of the "logging" section.
type Logging struct {
	LogFileBaseName string
	LogLevel        string
}

// Logging extracts and validates the "logging" section.
func (c *Config) Logging() (Logging, error) {
	s, err := c.section("logging")
	if err != nil {
		return Logging{}, err
	}
	var l Logging
	if l.LogFileBaseName, err = requiredString(s, "logging", "log_file_base_name"); err != nil {
		return Logging{}, err
	}
	if l.LogLevel, err = requiredString(s, "logging", "log_level"); err != nil {
		return Logging{}, err
	}
	return l, nil
}

// Email holds the settings of the "email" section.
type Email struct {
	Sender     string
	Password   string
	SMTPServer string
	SMTPPort   int
	Recipients []string
}

// Email extracts and validates the "email" section.
func (c *Config) Email() (Email, error) {
	s, err := c.section("email")
	if err != nil {
		return Email{}, err
	}
	var e Email
	if e.Sender, err = requiredString(s, "email", "sender"); err != nil {
		return Email{}, err
	}
	if e.Password, err = requiredString(s, "email", "password"); err != nil {
		return Email{}, err
	}
	if e.SMTPServer, err = requiredString(s, "email", "smtp_server"); err != nil {
		return Email{}, err
	}
	p, ok := s["smtp_port"]
	if !ok {
		return Email{}, fmt.Errorf("config: missing required key email.smtp_port")
	}
	if e.SMTPPort, err = cast.ToIntE(p); err != nil {
		return Email{}, fmt.Errorf("config: email.smtp_port must be an integer: %v", err)
	}
	r, ok := s["recipients"]
	if !ok {
		return Email{}, fmt.Errorf("config: missing required key email.recipients")
	}
	if e.Recipients, err = cast.ToStringSliceE(r); err != nil {
		return Email{}, fmt.Errorf("config: email.recipients must be a list of strings: %v", err)
	}
	return e, nil
}

// Arpege holds the settings of the "arpege" section.
type Arpege struct {
	ExpectedForecastSteps []int
}

// Arpege extracts and validates the "arpege" section.
func (c *Config) Arpege() (Arpege, error) {
	s, err := c.section("arpege")
	if err != nil {
		return Arpege{}, err
	}
	steps, ok := s["expected_forecast_steps"]
	if !ok {
		return Arpege{}, fmt.Errorf("config: missing required key arpege.expected_forecast_steps")
	}
	a := Arpege{}
	if a.ExpectedForecastSteps, err = cast.ToIntSliceE(steps); err != nil {
		return Arpege{}, fmt.Errorf("config: arpege.expected_forecast_steps must be a list of integers: %v", err)
	}
	return a, nil
}

// Aladin holds the settings of the "aladin" section. StepRange is the
// inclusive start, inclusive end, and stride of the forecast steps to
// fetch.
type Aladin struct {
	RemotePathTemplate      string
	LocalTempSubdir         string
	FilenamePatternTemplate string
	StepRange               [3]int
}

// Aladin extracts and validates the "aladin" section.
func (c *Config) Aladin() (Aladin, error) {
	s, err := c.section("aladin")
	if err != nil {
		return Aladin{}, err
	}
	var a Aladin
	if a.RemotePathTemplate, err = requiredString(s, "aladin", "remote_path_template"); err != nil {
		return Aladin{}, err
	}
	if a.LocalTempSubdir, err = requiredString(s, "aladin", "local_temp_subdir"); err != nil {
		return Aladin{}, err
	}
	if a.FilenamePatternTemplate, err = requiredString(s, "aladin", "filename_pattern_template"); err != nil {
		return Aladin{}, err
	}
	r, ok := s["ech_ranges"]
	if !ok {
		return Aladin{}, fmt.Errorf("config: missing required key aladin.ech_ranges")
	}
	rr, err := cast.ToIntSliceE(r)
	if err != nil || len(rr) != 3 {
		return Aladin{}, fmt.Errorf("config: aladin.ech_ranges must be a list of 3 integers (start, end, step)")
	}
	copy(a.StepRange[:], rr)
	return a, nil
}

// App returns a free-form application-specific section as a map, failing
// if the section is absent. Validation of individual keys is left to the
// calling job.
func (c *Config) App(name string) (map[string]interface{}, error) {
	return c.section(name)
}

func (c *Config) section(name string) (map[string]interface{}, error) {
	if !c.v.IsSet(name) {
		return nil, fmt.Errorf("config: missing required section %q", name)
	}
	s, err := cast.ToStringMapE(c.v.Get(name))
	if err != nil {
		return nil, fmt.Errorf("config: section %q is not a table: %v", name, err)
	}
	return s, nil
}

func requiredString(s map[string]interface{}, section, key string) (string, error) {
	val, ok := s[key]
	if !ok {
		return "", fmt.Errorf("config: missing required key %s.%s", section, key)
	}
	str, err := cast.ToStringE(val)
	if err != nil {
		return "", fmt.Errorf("config: %s.%s must be a string: %v", section, key, err)
	}
	if str == "" {
		return "", fmt.Errorf("config: %s.%s must not be empty", section, key)
	}
	return str, nil
}
