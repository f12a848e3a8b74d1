// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ruga-file-analysis/internal/usecase"
)

// Server exposes the REST surface: file listing, analysis jobs, folder
// organization and the chat stream.
type Server struct {
	filesUC    *usecase.FilesUC
	analysisUC *usecase.AnalysisUC
	organizeUC *usecase.OrganizeUC
	chatUC     *usecase.ChatUC
	log        *zerolog.Logger
}

func NewServer(
	filesUC *usecase.FilesUC,
	analysisUC *usecase.AnalysisUC,
	organizeUC *usecase.OrganizeUC,
	chatUC *usecase.ChatUC,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		filesUC:    filesUC,
		analysisUC: analysisUC,
		organizeUC: organizeUC,
		chatUC:     chatUC,
		log:        logger,
	}
}

// Router builds the chi router with the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/files", filesHandler(s.filesUC))

	r.Post("/analyze/folder", analyzeFolderHandler(s.analysisUC, s.log))
	r.Post("/analyze/file", analyzeFileHandler(s.analysisUC, s.log))

	r.Get("/jobs", jobsListHandler(s.analysisUC))
	r.Get("/jobs/{jobID}", jobGetHandler(s.analysisUC, s.log))

	r.Post("/organize/generate", organizeGenerateHandler(s.organizeUC, s.log))
	r.Post("/organize/apply", organizeApplyHandler(s.organizeUC, s.log))

	r.Post("/chat", chatHandler(s.chatUC, s.log))

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
