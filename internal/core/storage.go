package core

import (
	"context"
	"fmt"

	"nutritrack/internal/blob"
	"nutritrack/internal/infra/persistence/blobslot"
	"nutritrack/internal/infra/persistence/memory"
	"nutritrack/internal/infra/persistence/mongo"
	"nutritrack/internal/infra/persistence/postgres"
	"nutritrack/internal/infra/persistence/sealed"
	"nutritrack/internal/infra/persistence/sqlite"
	"nutritrack/pkg/domain"
)

// StorageDriver identifies a durable slot backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMongo    StorageDriver = "mongo"    // MongoDB collection
	StorageBlob     StorageDriver = "blob"     // object in a blob store
)

// StorageConfig selects and parameterises the slot backend.
type StorageConfig struct {
	Driver        StorageDriver // default sqlite
	SQLitePath    string
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
	Blob          blob.Config
	BlobPrefix    string
	// Passphrase, when set, seals payloads before they reach the backend.
	Passphrase string
	SealParams sealed.Params
}

// OpenSlot builds the configured slot. The returned close function releases
// the backend's resources and is never nil.
func OpenSlot(ctx context.Context, cfg StorageConfig) (domain.StateSlot, func() error, error) {
	noClose := func() error { return nil }
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	var (
		slot    domain.StateSlot
		closeFn = noClose
	)
	switch driver {
	case StorageMemory:
		slot = memory.NewSlot()
	case StorageSQLite:
		s, err := sqlite.NewSlot(cfg.SQLitePath)
		if err != nil {
			return nil, noClose, err
		}
		slot, closeFn = s, s.Close
	case StoragePostgres:
		s, err := postgres.NewSlot(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noClose, err
		}
		slot, closeFn = s, s.Close
	case StorageMongo:
		s, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, noClose, err
		}
		slot, closeFn = s, func() error { return s.Close(context.Background()) }
	case StorageBlob:
		store, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, noClose, err
		}
		slot = blobslot.New(store, cfg.BlobPrefix)
	default:
		return nil, noClose, fmt.Errorf("unknown storage driver %s", driver)
	}
	if cfg.Passphrase != "" {
		s, err := sealed.New(slot, cfg.Passphrase, cfg.SealParams)
		if err != nil {
			_ = closeFn()
			return nil, noClose, err
		}
		slot = s
	}
	return slot, closeFn, nil
}
