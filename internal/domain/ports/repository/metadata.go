package repository

import (
	"ruga-file-analysis/internal/domain/model"
)

// SidecarEntry pairs an analyzed file (relative to the scanned root)
// with its sidecar record.
type SidecarEntry struct {
	RelPath string
	Record  *model.MetadataRecord
}

// MetadataStore reads and writes the per-file sidecar records.
// Writes are per-file; no cross-file locking is needed.
type MetadataStore interface {
	// SidecarPath returns the sidecar path for filePath.
	SidecarPath(filePath string) string

	// Has reports whether a sidecar exists for filePath.
	Has(filePath string) bool

	// Save writes (or overwrites) the sidecar for filePath.
	Save(filePath string, rec *model.MetadataRecord) error

	// Load reads the sidecar for filePath; domain.ErrNotFound when absent.
	Load(filePath string) (*model.MetadataRecord, error)

	// FindAll scans root recursively and returns every readable sidecar
	// paired with its source file.
	FindAll(root string) ([]SidecarEntry, error)
}
