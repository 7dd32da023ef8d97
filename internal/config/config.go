// Package config reads runtime settings from the environment, optionally seeded
// from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"nutritrack/internal/blob"
	"nutritrack/internal/core"
	"nutritrack/internal/infra/persistence/sqlite"
	"nutritrack/pkg/domain"
)

// Environment variable names.
const (
	EnvStorageDriver   = "NUTRITRACK_STORAGE_DRIVER"
	EnvSQLitePath      = "NUTRITRACK_SQLITE_PATH"
	EnvPostgresDSN     = "NUTRITRACK_POSTGRES_DSN"
	EnvMongoURI        = "NUTRITRACK_MONGO_URI"
	EnvMongoDatabase   = "NUTRITRACK_MONGO_DATABASE"
	EnvStateKey        = "NUTRITRACK_STATE_KEY"
	EnvPassphrase      = "NUTRITRACK_STATE_PASSPHRASE"
	EnvBlobDriver      = "NUTRITRACK_BLOB_DRIVER"
	EnvBlobFSRoot      = "NUTRITRACK_BLOB_FS_ROOT"
	EnvBlobPrefix      = "NUTRITRACK_BLOB_STATE_PREFIX"
	EnvS3Bucket        = "NUTRITRACK_BLOB_S3_BUCKET"
	EnvS3Region        = "NUTRITRACK_BLOB_S3_REGION"
	EnvS3Endpoint      = "NUTRITRACK_BLOB_S3_ENDPOINT"
	EnvS3PathStyle     = "NUTRITRACK_BLOB_S3_PATH_STYLE"
	EnvS3AccessKeyID   = "NUTRITRACK_BLOB_S3_ACCESS_KEY_ID"
	EnvS3SecretKey     = "NUTRITRACK_BLOB_S3_SECRET_ACCESS_KEY"
	EnvLogLevel        = "NUTRITRACK_LOG_LEVEL"
	EnvMetrics         = "NUTRITRACK_METRICS"
	defaultMongoDBName = "nutritrack"
	defaultBlobFSRoot  = "./blobdata"
)

// Metrics selects the metrics recorder.
type Metrics string

const (
	MetricsNone       Metrics = "none"
	MetricsExpvar     Metrics = "expvar"
	MetricsPrometheus Metrics = "prometheus"
)

// Config is the resolved runtime configuration.
type Config struct {
	StateKey string
	Storage  core.StorageConfig
	// Blob is the store report exports are written to. The blob slot driver
	// shares it.
	Blob     blob.Config
	LogLevel slog.Level
	Metrics  Metrics
}

// Load resolves the configuration from the process environment. Variables in
// envFiles fill in anything the environment does not set; missing files are
// skipped and earlier files win over later ones.
func Load(envFiles ...string) (Config, error) {
	fileVars := make(map[string]string)
	for _, name := range envFiles {
		vars, err := godotenv.Read(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", name, err)
		}
		for k, v := range vars {
			if _, taken := fileVars[k]; !taken {
				fileVars[k] = v
			}
		}
	}
	return Parse(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// Parse builds a Config from lookup, applying defaults for unset or blank
// variables.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	cfg := Config{StateKey: get(EnvStateKey, domain.DefaultStateKey)}

	driver := core.StorageDriver(strings.ToLower(get(EnvStorageDriver, string(core.StorageSQLite))))
	switch driver {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres, core.StorageMongo, core.StorageBlob:
	default:
		return Config{}, fmt.Errorf("%s: unknown storage driver %q", EnvStorageDriver, driver)
	}

	blobDriver := blob.Driver(strings.ToLower(get(EnvBlobDriver, string(blob.DriverFilesystem))))
	switch blobDriver {
	case blob.DriverFilesystem, blob.DriverS3, blob.DriverMemory:
	default:
		return Config{}, fmt.Errorf("%s: unknown blob driver %q", EnvBlobDriver, blobDriver)
	}
	pathStyle := false
	if raw := get(EnvS3PathStyle, ""); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvS3PathStyle, err)
		}
		pathStyle = v
	}
	cfg.Blob = blob.Config{
		Driver: blobDriver,
		FSRoot: get(EnvBlobFSRoot, defaultBlobFSRoot),
		S3: blob.S3Config{
			Bucket:          get(EnvS3Bucket, ""),
			Region:          get(EnvS3Region, ""),
			Endpoint:        get(EnvS3Endpoint, ""),
			PathStyle:       pathStyle,
			AccessKeyID:     get(EnvS3AccessKeyID, ""),
			SecretAccessKey: get(EnvS3SecretKey, ""),
		},
	}

	cfg.Storage = core.StorageConfig{
		Driver:        driver,
		SQLitePath:    get(EnvSQLitePath, sqlite.DefaultPath),
		PostgresDSN:   get(EnvPostgresDSN, ""),
		MongoURI:      get(EnvMongoURI, ""),
		MongoDatabase: get(EnvMongoDatabase, defaultMongoDBName),
		Blob:          cfg.Blob,
		BlobPrefix:    get(EnvBlobPrefix, ""),
	}
	// The passphrase is taken verbatim.
	if v, ok := lookup(EnvPassphrase); ok {
		cfg.Storage.Passphrase = v
	}
	if driver == core.StorageMongo && cfg.Storage.MongoURI == "" {
		return Config{}, fmt.Errorf("%s is required for the mongo driver", EnvMongoURI)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get(EnvLogLevel, "info"))); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}

	cfg.Metrics = Metrics(strings.ToLower(get(EnvMetrics, string(MetricsNone))))
	switch cfg.Metrics {
	case MetricsNone, MetricsExpvar, MetricsPrometheus:
	default:
		return Config{}, fmt.Errorf("%s: unknown metrics recorder %q", EnvMetrics, cfg.Metrics)
	}
	return cfg, nil
}
