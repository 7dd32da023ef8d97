// Package blob re-exports the blob abstractions and selects a backend. It is the
// only package allowed to import the infra blob implementations.
package blob

import (
	"nutritrack/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// SignedURLOptions configures URL pre-signing.
	SignedURLOptions = core.SignedURLOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory
)

var (
	// ErrUnsupported indicates an operation isn't supported by a driver.
	ErrUnsupported = core.ErrUnsupported
	// ErrNotFound is wrapped by Get and Head for missing keys.
	ErrNotFound = core.ErrNotFound
	// ErrExists is wrapped by Put when the key is taken.
	ErrExists = core.ErrExists
)
