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

package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jlaffaye/ftp"
)

// FTPClient wraps an FTP server connection.
type FTPClient struct {
	conn *ftp.ServerConn
	host string
}

// DialFTP connects and logs in to an FTP server. The connection uses
// passive mode and times out after DialTimeout.
func DialFTP(host string, port int, username, password string) (*FTPClient, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	Logger.Infof("fetch: connecting to ftp://%s", addr)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(DialTimeout))
	if err != nil {
		return nil, fmt.Errorf("fetch: connecting to FTP server %s: %v", addr, err)
	}
	if err := conn.Login(username, password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("fetch: FTP login failed for %s on %s: %v", username, host, err)
	}
	Logger.Infof("fetch: logged in to %s", host)
	return &FTPClient{conn: conn, host: host}, nil
}

// List returns the names of the files in the remote directory matching
// the glob pattern; an empty pattern returns everything.
func (c *FTPClient) List(remoteDir, pattern string) ([]string, error) {
	names, err := c.conn.NameList(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("fetch: listing %s on %s: %v", remoteDir, c.host, err)
	}
	Logger.Debugf("fetch: %d files in %s before filtering", len(names), remoteDir)
	matched, err := matchNames(names, pattern)
	if err != nil {
		return nil, fmt.Errorf("fetch: bad pattern %q: %v", pattern, err)
	}
	Logger.Infof("fetch: %d files in %s match %q", len(matched), remoteDir, pattern)
	return matched, nil
}

// FetchPattern downloads every file in remoteDir whose name matches the
// glob pattern into localDir, creating localDir if needed, and returns
// the local paths. Finding no matching file is a logged warning, not an
// error: the data may simply not have arrived yet. Each download is
// retried on transient failures.
func (c *FTPClient) FetchPattern(remoteDir, pattern, localDir string) ([]string, error) {
	if err := c.conn.ChangeDir(remoteDir); err != nil {
		return nil, fmt.Errorf("fetch: remote directory %s not accessible on %s: %v", remoteDir, c.host, err)
	}
	names, err := c.conn.NameList("")
	if err != nil {
		return nil, fmt.Errorf("fetch: listing %s on %s: %v", remoteDir, c.host, err)
	}
	matched, err := matchNames(names, pattern)
	if err != nil {
		return nil, fmt.Errorf("fetch: bad pattern %q: %v", pattern, err)
	}
	if len(matched) == 0 {
		Logger.Warnf("fetch: no files matching %q in %s on %s", pattern, remoteDir, c.host)
		return nil, nil
	}
	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, fmt.Errorf("fetch: creating local directory %s: %v", localDir, err)
	}

	var local []string
	for _, name := range matched {
		dst := filepath.Join(localDir, filepath.Base(name))
		err := retry(3, func() error { return c.retrieve(name, dst) })
		if err != nil {
			return local, fmt.Errorf("fetch: downloading %s from %s: %v", name, c.host, err)
		}
		Logger.Infof("fetch: downloaded %s to %s", name, dst)
		local = append(local, dst)
	}
	return local, nil
}

func (c *FTPClient) retrieve(name, dst string) error {
	r, err := c.conn.Retr(name)
	if err != nil {
		return err
	}
	defer r.Close()
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

// Close terminates the FTP session.
func (c *FTPClient) Close() error {
	return c.conn.Quit()
}
