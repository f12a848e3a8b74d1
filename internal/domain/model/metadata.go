package model

import "time"

type Author struct {
	Name  string `json:"name"`
	ORCID string `json:"orcid,omitempty"`
}

type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition,omitempty"`
	Source     string `json:"source"`
}

// MetadataRecord is the sidecar record written next to an analyzed file
// (<name>.<ext>.ruga). Created or overwritten by the analyzer only.
type MetadataRecord struct {
	FileID            string         `json:"file_id"`
	OriginalPath      string         `json:"original_path"`
	FileType          string         `json:"file_type"`
	ContentHash       string         `json:"content_hash"`
	Title             string         `json:"title"`
	SuggestedFilename string         `json:"suggested_filename"`
	Categories        []string       `json:"categories"`
	CreationDate      *time.Time     `json:"creation_date,omitempty"`
	LastModifiedDate  time.Time      `json:"last_modified_date"`
	AnalysisDate      time.Time      `json:"analysis_date"`
	Authors           []Author       `json:"authors"`
	Topics            []string       `json:"topics"`
	Tags              []string       `json:"tags"`
	Summary           string         `json:"summary"`
	GlossaryTerms     []GlossaryTerm `json:"glossary_terms"`
	PossibleDuplicate bool           `json:"possible_duplicate"`
	ReviewedByHuman   bool           `json:"reviewed_by_human"`
	LLMModel          string         `json:"llm_model"`
	ExtractedAt       time.Time      `json:"extracted_at"`
	ChunkCount        int            `json:"chunk_count"`
}

// FileInfo is one entry in the recursive directory listing.
type FileInfo struct {
	Path        string          `json:"path"`
	IsDirectory bool            `json:"is_directory"`
	HasRuga     bool            `json:"has_ruga"`
	RugaContent *MetadataRecord `json:"ruga_content,omitempty"`
	Size        int64           `json:"size,omitempty"`
}
