package model

// FileMove relocates one file inside a proposed layout.
type FileMove struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
	Reason          string `json:"reason,omitempty"`
}

// FolderStructure is the planner's proposal for a reorganized tree.
// Immutable once stored; applying it never mutates it or the source tree.
type FolderStructure struct {
	RootFolderName        string     `json:"root_folder_name"`
	Folders               []string   `json:"folders"`
	FileMoves             []FileMove `json:"file_moves"`
	OrganizationRationale string     `json:"organization_rationale"`
}

// StoredStructure pairs a generated plan with the root it was computed
// from and the number of metadata records considered.
type StoredStructure struct {
	ID         string
	RootPath   string
	Structure  FolderStructure
	TotalFiles int
}

// ApplyResult reports one application of a stored plan.
type ApplyResult struct {
	StructureID    string   `json:"structure_id"`
	NewRootPath    string   `json:"new_root_path"`
	FilesCopied    int      `json:"files_copied"`
	FoldersCreated int      `json:"folders_created"`
	Errors         []string `json:"errors"`
}

// FileSummary is the condensed metadata handed to the planner.
type FileSummary struct {
	Path             string
	Title            string
	Categories       []string
	Topics           []string
	Tags             []string
	Summary          string
	Authors          []string
	CreationDate     string
	LastModifiedDate string
}
