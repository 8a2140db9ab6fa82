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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `{
  "ftp": {
    "host": "ftp.example.dz",
    "username": "prod",
    "password": "secret",
    "remote_base_directory": "/pub/arpege",
    "port": "2121"
  },
  "sftp": {
    "host": "sftp.example.dz",
    "username": "prod",
    "password": "secret",
    "port": 2222
  },
  "logging": {
    "log_file_base_name": "fetch_arpege",
    "log_level": "DEBUG"
  },
  "email": {
    "sender": "prod@example.dz",
    "password": "secret",
    "smtp_server": "smtp.example.dz",
    "smtp_port": 587,
    "recipients": ["forecaster@example.dz"]
  },
  "arpege": {
    "expected_forecast_steps": [24, 25, 26]
  },
  "aladin": {
    "remote_path_template": "/pub/aladin/%s",
    "local_temp_subdir": "aladin_tmp",
    "filename_pattern_template": "*SP1*%s000*",
    "ech_ranges": [0, 72, 3]
  },
  "bqrm_ref_app": {
    "station_file": "stations.csv"
  }
}`

func load(t *testing.T, content string) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	return c
}

func TestFTP(t *testing.T) {
	c := load(t, testConfig)
	f, err := c.FTP()
	require.NoError(t, err)
	assert.Equal(t, "ftp.example.dz", f.Host)
	assert.Equal(t, "/pub/arpege", f.RemoteBaseDir)
	assert.Equal(t, 2121, f.Port, "string port should be coerced")
}

func TestFTPDefaultPort(t *testing.T) {
	c := load(t, `{"ftp": {"host": "h", "username": "u", "password": "p", "remote_base_directory": "/d"}}`)
	f, err := c.FTP()
	require.NoError(t, err)
	assert.Equal(t, DefaultFTPPort, f.Port)
}

func TestFTPMissingKey(t *testing.T) {
	c := load(t, `{"ftp": {"host": "h", "username": "u"}}`)
	_, err := c.FTP()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp.password")
}

func TestSFTP(t *testing.T) {
	c := load(t, testConfig)
	s, err := c.SFTP()
	require.NoError(t, err)
	assert.Equal(t, "sftp.example.dz", s.Host)
	assert.Equal(t, 2222, s.Port)
}

func TestLogging(t *testing.T) {
	c := load(t, testConfig)
	l, err := c.Logging()
	require.NoError(t, err)
	assert.Equal(t, "fetch_arpege", l.LogFileBaseName)
	assert.Equal(t, "DEBUG", l.LogLevel)
}

func TestEmail(t *testing.T) {
	c := load(t, testConfig)
	e, err := c.Email()
	require.NoError(t, err)
	assert.Equal(t, 587, e.SMTPPort)
	assert.Equal(t, []string{"forecaster@example.dz"}, e.Recipients)
}

func TestArpege(t *testing.T) {
	c := load(t, testConfig)
	a, err := c.Arpege()
	require.NoError(t, err)
	assert.Equal(t, []int{24, 25, 26}, a.ExpectedForecastSteps)
}

func TestAladin(t *testing.T) {
	c := load(t, testConfig)
	a, err := c.Aladin()
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 72, 3}, a.StepRange)
	assert.Equal(t, "aladin_tmp", a.LocalTempSubdir)
}

func TestAladinBadStepRange(t *testing.T) {
	c := load(t, `{"aladin": {
		"remote_path_template": "x", "local_temp_subdir": "x",
		"filename_pattern_template": "x", "ech_ranges": [0, 72]}}`)
	_, err := c.Aladin()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ech_ranges")
}

func TestAppSection(t *testing.T) {
	c := load(t, testConfig)
	app, err := c.App("bqrm_ref_app")
	require.NoError(t, err)
	assert.Equal(t, "stations.csv", app["station_file"])

	_, err = c.App("nope")
	require.Error(t, err)
}

func TestMissingSection(t *testing.T) {
	c := load(t, `{"ftp": {"host": "h", "username": "u", "password": "p", "remote_base_directory": "/d"}}`)
	_, err := c.SFTP()
	require.Error(t, err)
	if !strings.Contains(err.Error(), `"sftp"`) {
		t.Errorf("error should name the missing section: %v", err)
	}
}

func TestTOMLConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
log_file_base_name = "job"
log_level = "INFO"
`), 0644))
	c, err := Load(path)
	require.NoError(t, err)
	l, err := c.Logging()
	require.NoError(t, err)
	assert.Equal(t, "job", l.LogFileBaseName)
}
