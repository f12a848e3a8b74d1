// File: internal/usecase/files_uc.go
package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/ruga"
)

// FilesUC serves the recursive directory listing with per-file analysis
// state attached.
type FilesUC struct {
	store repository.MetadataStore
	log   *zerolog.Logger
}

func NewFilesUC(store repository.MetadataStore, log *zerolog.Logger) *FilesUC {
	return &FilesUC{store: store, log: log}
}

// List walks rootPath recursively. Directories are included, sidecar
// files themselves are not; analyzed files carry their record inline.
func (uc *FilesUC) List(ctx context.Context, rootPath string) ([]model.FileInfo, error) {
	if err := ValidateRootPath(rootPath); err != nil {
		return nil, err
	}
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory %s: %w", rootPath, domain.ErrNotFound)
	}

	var out []model.FileInfo
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return nil
		}
		if strings.HasSuffix(path, ruga.Ext) {
			return nil
		}
		entry := model.FileInfo{Path: path, IsDirectory: d.IsDir()}
		if !d.IsDir() {
			if fi, err := d.Info(); err == nil {
				entry.Size = fi.Size()
			}
			if uc.store.Has(path) {
				entry.HasRuga = true
				if rec, err := uc.store.Load(path); err == nil {
					entry.RugaContent = rec
				}
			}
		}
		out = append(out, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", rootPath, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// ValidateRootPath rejects paths too short to be a real directory.
func ValidateRootPath(rootPath string) error {
	if len(rootPath) < 3 {
		return fmt.Errorf("root_path %q too short: %w", rootPath, domain.ErrInvalidArgument)
	}
	return nil
}
