// Package blob stores export artifacts. Drivers cover local development
// (filesystem), production (S3-compatible object storage) and tests
// (memory); the factory picks one from the environment.
package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a blob store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ErrNotFound is returned when a key has no stored artifact.
var ErrNotFound = errors.New("blob not found")

// Info describes one stored artifact.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// PutOptions carries optional artifact metadata.
type PutOptions struct {
	ContentType string
}

// Store is the artifact sink the export worker writes to. Put overwrites:
// export artifacts have fixed names and each run replaces the previous one.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
}
