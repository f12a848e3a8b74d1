package repository

import (
	"ruga-file-analysis/internal/domain/model"
)

// PlanStore keeps generated folder structures by id. Write-once,
// read-many; plans are immutable after Save.
type PlanStore interface {
	Save(s *model.StoredStructure) error
	// Get fails with domain.ErrNotFound for unknown ids.
	Get(structureID string) (*model.StoredStructure, error)
}
