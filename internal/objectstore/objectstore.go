// Package objectstore archives raw benchmark uploads in MinIO so the
// original spreadsheet can be re-examined after its rows were normalized.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps a MinIO connection and the archive bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New connects to MinIO and ensures the archive bucket exists.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, fmt.Errorf("minio endpoint, access key, secret key and bucket must be set")
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket %q exists: %w", bucket, err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
	}

	return &Client{mc: mc, bucket: bucket}, nil
}

// Archive stores the raw upload under a unique object name that keeps the
// original extension, and returns that name.
func (c *Client) Archive(ctx context.Context, originalFilename, contentType string, data []byte) (string, error) {
	objectName := uuid.New().String() + filepath.Ext(originalFilename)

	_, err := c.mc.PutObject(ctx, c.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive upload (bucket: %s, object: %s): %w", c.bucket, objectName, err)
	}
	return objectName, nil
}

// Remove deletes an archived upload.
func (c *Client) Remove(ctx context.Context, objectName string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove archived upload %q: %w", objectName, err)
	}
	return nil
}

// PresignedURL returns a time-limited download link for an archived upload.
func (c *Client) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %q: %w", objectName, err)
	}
	return u.String(), nil
}
