// File: internal/usecase/organize_uc.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/adapter"
	"ruga-file-analysis/internal/domain/ports/repository"
	"ruga-file-analysis/internal/infra/logging"
)

// OrganizeUC generates reorganization plans from the analyzed corpus and
// applies them by copying into a fresh sibling tree. Source files are
// never touched.
type OrganizeUC struct {
	store repository.MetadataStore
	plans repository.PlanStore
	ai    adapter.AIServiceAdapter
	log   *zerolog.Logger
}

func NewOrganizeUC(store repository.MetadataStore, plans repository.PlanStore, ai adapter.AIServiceAdapter, log *zerolog.Logger) *OrganizeUC {
	return &OrganizeUC{store: store, plans: plans, ai: ai, log: log}
}

// Generate collects every sidecar under rootPath and asks the planner
// for a structure grouped by category and academic year.
func (uc *OrganizeUC) Generate(ctx context.Context, rootPath string) (*model.StoredStructure, error) {
	defer logging.TraceDuration(uc.log, "OrganizeUC.Generate")()

	if err := ValidateRootPath(rootPath); err != nil {
		return nil, err
	}
	info, err := os.Stat(rootPath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("directory %s: %w", rootPath, domain.ErrNotFound)
	}

	entries, err := uc.store.FindAll(rootPath)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no analyzed files under %s: %w", rootPath, domain.ErrEmptyCorpus)
	}

	summaries := make([]model.FileSummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, summarize(e))
	}

	structure, err := uc.ai.GeneratePlan(ctx, summaries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPlanning, err)
	}

	stored := &model.StoredStructure{
		ID:         uuid.NewString(),
		RootPath:   rootPath,
		Structure:  *structure,
		TotalFiles: len(entries),
	}
	if err := uc.plans.Save(stored); err != nil {
		return nil, err
	}
	uc.log.Info().Str("structure_id", stored.ID).Int("total_files", stored.TotalFiles).
		Int("moves", len(structure.FileMoves)).Msg("plan generated")
	return stored, nil
}

// Apply materializes a stored plan into <uuid8>_<root_folder_name> next
// to the original root. Each application gets its own prefix, so
// re-applying never collides with a prior run. With dryRun the counts
// are computed without touching the filesystem.
func (uc *OrganizeUC) Apply(ctx context.Context, structureID string, dryRun bool) (*model.ApplyResult, error) {
	defer logging.TraceDuration(uc.log, "OrganizeUC.Apply")()

	stored, err := uc.plans.Get(structureID)
	if err != nil {
		return nil, err
	}
	plan := stored.Structure

	prefix := uuid.NewString()[:8]
	newRoot := filepath.Join(filepath.Dir(stored.RootPath), prefix+"_"+plan.RootFolderName)

	result := &model.ApplyResult{StructureID: structureID, Errors: []string{}}

	if !dryRun {
		if err := os.MkdirAll(newRoot, 0o755); err != nil {
			return nil, fmt.Errorf("create root %s: %w", newRoot, err)
		}
		result.NewRootPath = newRoot
	}

	for _, folder := range plan.Folders {
		if dryRun {
			result.FoldersCreated++
			continue
		}
		if err := os.MkdirAll(filepath.Join(newRoot, filepath.FromSlash(folder)), 0o755); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("folder %s: %v", folder, err))
			continue
		}
		result.FoldersCreated++
	}

	for _, move := range plan.FileMoves {
		src := filepath.Join(stored.RootPath, filepath.FromSlash(move.SourcePath))
		if dryRun {
			if _, err := os.Stat(src); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("copy %s: source missing", move.SourcePath))
				continue
			}
			result.FilesCopied++
			continue
		}
		dst := filepath.Join(newRoot, filepath.FromSlash(move.DestinationPath))
		if err := copyFile(src, dst); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("copy %s: %v", move.SourcePath, err))
			continue
		}
		// The sidecar travels with its file; losing it is not fatal.
		srcSidecar := uc.store.SidecarPath(src)
		if _, err := os.Stat(srcSidecar); err == nil {
			if err := copyFile(srcSidecar, uc.store.SidecarPath(dst)); err != nil {
				uc.log.Warn().Err(err).Str("path", src).Msg("sidecar copy failed")
			}
		}
		result.FilesCopied++
	}

	uc.log.Info().Str("structure_id", structureID).Bool("dry_run", dryRun).
		Int("files_copied", result.FilesCopied).Int("errors", len(result.Errors)).
		Msg("plan applied")
	return result, nil
}

// summarize condenses one sidecar record for the planning prompt.
func summarize(e repository.SidecarEntry) model.FileSummary {
	rec := e.Record
	s := model.FileSummary{
		Path:       e.RelPath,
		Title:      rec.Title,
		Categories: rec.Categories,
		Topics:     capStrings(rec.Topics, 5),
		Tags:       capStrings(rec.Tags, 5),
		Summary:    rec.Summary,
	}
	if len(s.Summary) > 200 {
		s.Summary = s.Summary[:200]
	}
	for _, a := range rec.Authors {
		s.Authors = append(s.Authors, a.Name)
	}
	if rec.CreationDate != nil {
		s.CreationDate = rec.CreationDate.Format("2006-01-02")
	}
	if !rec.LastModifiedDate.IsZero() {
		s.LastModifiedDate = rec.LastModifiedDate.Format("2006-01-02")
	}
	return s
}

func capStrings(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
