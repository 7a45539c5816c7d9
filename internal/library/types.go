package library

import "errors"

// Folder is a node in the asset folder tree. A nil ParentID marks a
// root-level folder.
type Folder struct {
	ID       int64  `json:"id"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
}

// Asset is a reusable token image stored in a folder. Width and height
// are recorded at upload time when known.
type Asset struct {
	ID       int64  `json:"id"`
	FolderID int64  `json:"folder_id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Width    *int   `json:"width,omitempty"`
	Height   *int   `json:"height,omitempty"`
}

// Sentinel errors for library operations.
var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrAssetNotFound  = errors.New("asset not found")
	ErrFolderNotEmpty = errors.New("folder not empty")
)
