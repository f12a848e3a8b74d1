// File: internal/infra/ruga/store.go

// Package ruga implements the sidecar metadata store. A .ruga file holds
// the JSON metadata record for the file it sits next to:
//
//	document.pdf -> document.pdf.ruga
//
// If the sidecar exists, the file counts as analyzed.
package ruga

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/repository"
)

const Ext = ".ruga"

var _ repository.MetadataStore = (*Store)(nil)

type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) SidecarPath(filePath string) string {
	return filePath + Ext
}

func (s *Store) Has(filePath string) bool {
	info, err := os.Stat(s.SidecarPath(filePath))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) Save(filePath string, rec *model.MetadataRecord) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("source file: %w", err)
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(s.SidecarPath(filePath), b, 0o644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

func (s *Store) Load(filePath string) (*model.MetadataRecord, error) {
	b, err := os.ReadFile(s.SidecarPath(filePath))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("sidecar for %s: %w", filePath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	var rec model.MetadataRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}
	return &rec, nil
}

// FindAll walks root and returns every source file that has a readable
// sidecar, paths relative to root. Unreadable sidecars are skipped.
func (s *Store) FindAll(root string) ([]repository.SidecarEntry, error) {
	var out []repository.SidecarEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, Ext) {
			return nil
		}
		if !s.Has(path) {
			return nil
		}
		rec, err := s.Load(path)
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		out = append(out, repository.SidecarEntry{RelPath: filepath.ToSlash(rel), Record: rec})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return out, nil
}
