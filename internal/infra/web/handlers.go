// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain sentinels onto status codes.
func writeError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrEmptyCorpus):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPlanning), errors.Is(err, domain.ErrCompletion):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func filesHandler(uc *usecase.FilesUC) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rootPath := r.URL.Query().Get("root_path")
		files, err := uc.List(r.Context(), rootPath)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrInvalidArgument) {
				status = http.StatusBadRequest
			} else if errors.Is(err, domain.ErrNotFound) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			RootPath string `json:"root_path"`
			Files    any    `json:"files"`
		}{RootPath: rootPath, Files: files})
	}
}

func analyzeFolderHandler(uc *usecase.AnalysisUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RootPath string `json:"root_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		job, err := uc.StartFolder(r.Context(), req.RootPath)
		if err != nil {
			writeError(w, log, err)
			return
		}

		filePaths := make([]string, 0, len(job.FileStatuses))
		for p := range job.FileStatuses {
			filePaths = append(filePaths, p)
		}
		sort.Strings(filePaths)

		writeJSON(w, http.StatusAccepted, struct {
			JobID       string   `json:"job_id"`
			JobType     string   `json:"job_type"`
			FilesQueued int      `json:"files_queued"`
			FilePaths   []string `json:"file_paths"`
		}{
			JobID:       job.ID,
			JobType:     string(job.Kind),
			FilesQueued: job.FilesQueued,
			FilePaths:   filePaths,
		})
	}
}

func analyzeFileHandler(uc *usecase.AnalysisUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AbsolutePath string `json:"absolute_path"`
			RootPath     string `json:"root_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		job, err := uc.StartFile(r.Context(), req.AbsolutePath, req.RootPath)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusAccepted, struct {
			JobID       string `json:"job_id"`
			TargetPath  string `json:"target_path"`
			FilesQueued int    `json:"files_queued"`
		}{
			JobID:       job.ID,
			TargetPath:  job.TargetPath,
			FilesQueued: job.FilesQueued,
		})
	}
}

func jobsListHandler(uc *usecase.AnalysisUC) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		include := r.URL.Query().Get("include_file_statuses") == "true"
		jobs := uc.List(include)
		writeJSON(w, http.StatusOK, struct {
			Jobs any `json:"jobs"`
		}{Jobs: jobs})
	}
}

func jobGetHandler(uc *usecase.AnalysisUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := uc.Get(chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func organizeGenerateHandler(uc *usecase.OrganizeUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RootPath string `json:"root_path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		stored, err := uc.Generate(r.Context(), req.RootPath)
		if err != nil {
			writeError(w, log, err)
			return
		}

		writeJSON(w, http.StatusOK, struct {
			StructureID string `json:"structure_id"`
			Structure   any    `json:"structure"`
			TotalFiles  int    `json:"total_files"`
		}{
			StructureID: stored.ID,
			Structure:   stored.Structure,
			TotalFiles:  stored.TotalFiles,
		})
	}
}

func organizeApplyHandler(uc *usecase.OrganizeUC, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StructureID string `json:"structure_id"`
			DryRun      bool   `json:"dry_run"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.StructureID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "structure_id required"})
			return
		}

		result, err := uc.Apply(r.Context(), req.StructureID, req.DryRun)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
