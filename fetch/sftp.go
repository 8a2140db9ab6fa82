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
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPClient wraps an SFTP session over SSH.
type SFTPClient struct {
	ssh  *ssh.Client
	sftp *sftp.Client
	host string
}

// DialSFTP connects to an SSH server with password authentication and
// opens an SFTP session on it.
//
// The servers of a production chain live on a private network and are
// provisioned without known_hosts distribution, so host keys are not
// verified here.
func DialSFTP(host string, port int, username, password string) (*SFTPClient, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	Logger.Infof("fetch: connecting to sftp://%s", addr)
	cfg := &ssh.ClientConfig{
		User:            username,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DialTimeout,
	}
	conn, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("fetch: connecting to SSH server %s: %v", addr, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: opening SFTP session on %s: %v", host, err)
	}
	Logger.Infof("fetch: SFTP session open on %s", host)
	return &SFTPClient{ssh: conn, sftp: client, host: host}, nil
}

// List returns the names of the files in the remote directory matching
// the glob pattern; an empty pattern returns everything. Subdirectories
// are skipped.
func (c *SFTPClient) List(remoteDir, pattern string) ([]string, error) {
	infos, err := c.sftp.ReadDir(remoteDir)
	if err != nil {
		return nil, fmt.Errorf("fetch: listing %s on %s: %v", remoteDir, c.host, err)
	}
	var names []string
	for _, fi := range infos {
		if !fi.IsDir() {
			names = append(names, fi.Name())
		}
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
// error. Each download is retried on transient failures.
func (c *SFTPClient) FetchPattern(remoteDir, pattern, localDir string) ([]string, error) {
	matched, err := c.List(remoteDir, pattern)
	if err != nil {
		return nil, err
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
		src := path.Join(remoteDir, name)
		dst := filepath.Join(localDir, name)
		err := retry(3, func() error { return c.retrieve(src, dst) })
		if err != nil {
			return local, fmt.Errorf("fetch: downloading %s from %s: %v", src, c.host, err)
		}
		Logger.Infof("fetch: downloaded %s to %s", src, dst)
		local = append(local, dst)
	}
	return local, nil
}

// Fetch downloads a single remote file to the given local path, creating
// the parent directory if needed.
func (c *SFTPClient) Fetch(remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("fetch: creating directory for %s: %v", localPath, err)
	}
	err := retry(3, func() error { return c.retrieve(remotePath, localPath) })
	if err != nil {
		return fmt.Errorf("fetch: downloading %s from %s: %v", remotePath, c.host, err)
	}
	Logger.Infof("fetch: downloaded %s to %s", remotePath, localPath)
	return nil
}

func (c *SFTPClient) retrieve(src, dst string) error {
	r, err := c.sftp.Open(src)
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

// Close terminates the SFTP session and the underlying SSH connection.
func (c *SFTPClient) Close() error {
	serr := c.sftp.Close()
	cerr := c.ssh.Close()
	if serr != nil {
		return serr
	}
	return cerr
}
