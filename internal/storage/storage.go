// Package storage handles uploaded statement files in Google Cloud
// Storage, addressed by gs:// URIs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

// Client wraps a GCS client for statement uploads and downloads. It
// satisfies the pipeline's FileFetcher.
type Client struct {
	client *gcs.Client
	bucket string
}

// NewClient creates a storage client against the given bucket. It assumes
// Application Default Credentials are configured.
func NewClient(ctx context.Context, bucket string) (*Client, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}
	return &Client{client: client, bucket: bucket}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Upload writes r to the bucket under objectName and returns the resulting
// gs:// URI.
func (c *Client) Upload(ctx context.Context, objectName string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := c.client.Bucket(c.bucket).Object(objectName).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize upload: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", c.bucket, objectName), nil
}

// Fetch downloads the file bytes behind a gs:// URI.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", uri, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", uri, err)
	}
	return data, nil
}

// ParseURI splits a gs:// URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("storage: invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("storage: invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" -> "file.pdf"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
