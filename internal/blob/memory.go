package blob

import (
	memorystore "nutritrack/internal/infra/blob/memory"
)

// NewMemory returns an in-memory blob.Store for tests and throwaway runs.
func NewMemory() Store { return memorystore.New() }
