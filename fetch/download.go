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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// MaybeDownload checks whether the given path is an existing local file.
// If it is, the path is returned unchanged. If instead it is an http(s)
// URL or a blob URL (s3://, gs://, file://), the file is downloaded into
// a temporary directory and the local path of the copy is returned. Any
// other nonexistent path is returned unchanged for the caller to deal
// with.
func MaybeDownload(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path)
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns the
// path to the downloaded file.
func downloadHTTP(path string) (string, error) {
	dir, err := os.MkdirTemp("", "gotap")
	if err != nil {
		return path, fmt.Errorf("fetch: creating temporary download directory: %v", err)
	}
	w, err := os.Create(filepath.Join(dir, filepath.Base(path)))
	if err != nil {
		return path, fmt.Errorf("fetch: creating file for download: %v", err)
	}
	defer w.Close()
	resp, err := http.Get(path)
	if err != nil {
		return path, fmt.Errorf("fetch: downloading %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return path, fmt.Errorf("fetch: downloading %s: %s", path, resp.Status)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return path, fmt.Errorf("fetch: downloading %s: %v", path, err)
	}
	Logger.Infof("fetch: downloaded %s to %s", path, w.Name())
	return w.Name(), nil
}

// IsBlob returns whether the given filename represents a blob
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local
// filesystem (e.g., for testing), "gs" for Google Cloud Storage, and "s3"
// for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("fetch.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(filepath.Join(u.Host, u.Path), nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("fetch.OpenBucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s := session.Must(session.NewSession(c))
	return s3blob.OpenBucket(ctx, s, name, nil)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return path, fmt.Errorf("fetch: parsing %s: %v", path, err)
	}
	var bucket *blob.Bucket
	var key string
	if u.Scheme == "file" {
		// Local blobs address a file directly; the containing directory
		// is the bucket.
		full := filepath.Join(u.Host, u.Path)
		bucket, err = fileblob.OpenBucket(filepath.Dir(full), nil)
		key = filepath.Base(full)
	} else {
		bucket, err = OpenBucket(ctx, u.Scheme+"://"+u.Host)
		key = strings.TrimPrefix(u.Path, "/")
	}
	if err != nil {
		return path, err
	}
	defer bucket.Close()
	dir, err := os.MkdirTemp("", "gotap")
	if err != nil {
		return path, fmt.Errorf("fetch: creating temporary download directory: %v", err)
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return path, fmt.Errorf("fetch: opening blob %s: %v", path, err)
	}
	defer r.Close()
	w, err := os.Create(filepath.Join(dir, filepath.Base(key)))
	if err != nil {
		return path, fmt.Errorf("fetch: creating file for download: %v", err)
	}
	defer w.Close()
	if _, err := io.Copy(w, r); err != nil {
		return path, fmt.Errorf("fetch: downloading blob %s: %v", path, err)
	}
	Logger.Infof("fetch: downloaded %s to %s", path, w.Name())
	return w.Name(), nil
}
