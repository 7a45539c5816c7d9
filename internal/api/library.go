package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmavtt/tabletop-core/internal/library"
)

// maxUploadSize is the maximum accepted asset upload size (10 MB).
const maxUploadSize = 10 << 20

// allowedImageExtensions are the accepted asset file extensions.
var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// createFolderRequest is the request body for POST /api/library/folders.
type createFolderRequest struct {
	ParentID *int64 `json:"parent_id"`
	Name     string `json:"name"`
}

// handleListFolders returns the whole folder tree as a flat list.
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.library.ListFolders(r.Context())
	if err != nil {
		s.logger.Error("listing folders failed", "error", err)
		writeInternalError(w, "failed to list folders")
		return
	}
	writeJSON(w, http.StatusOK, folders)
}

// handleCreateFolder creates an asset folder. GM only.
func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "folder name is required")
		return
	}

	f := &library.Folder{ParentID: req.ParentID, Name: req.Name}
	if err := s.library.CreateFolder(r.Context(), f); err != nil {
		if errors.Is(err, library.ErrFolderNotFound) {
			writeNotFound(w, "parent folder not found")
			return
		}
		s.logger.Error("folder create failed", "error", err)
		writeInternalError(w, "failed to create folder")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleDeleteFolder removes an empty folder. GM only.
func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.library.DeleteFolder(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, library.ErrFolderNotFound):
			writeNotFound(w, "folder not found")
		case errors.Is(err, library.ErrFolderNotEmpty):
			writeConflict(w, "folder still has subfolders")
		default:
			s.logger.Error("folder delete failed", "folder_id", id, "error", err)
			writeInternalError(w, "failed to delete folder")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListAssets returns the assets in one folder.
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	folderID, ok := parseID(w, r, "folderID")
	if !ok {
		return
	}

	assets, err := s.library.ListAssets(r.Context(), folderID)
	if err != nil {
		s.logger.Error("listing assets failed", "folder_id", folderID, "error", err)
		writeInternalError(w, "failed to list assets")
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// handleUploadAsset accepts a multipart image upload, stores the file in
// the uploads directory under a random name, and records the asset.
// GM only.
func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	folderID, err := strconv.ParseInt(r.FormValue("folder_id"), 10, 64)
	if err != nil || folderID < 1 {
		writeBadRequest(w, "invalid folder_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		writeBadRequest(w, "unsupported file type")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, ext)
	}

	// Random server-side filename; the original name is kept only as the
	// asset's display name.
	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(s.uploadsDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		s.logger.Error("creating upload file failed", "path", storedPath, "error", err)
		writeInternalError(w, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.logger.Error("writing upload failed", "path", storedPath, "error", err)
		os.Remove(storedPath)
		writeInternalError(w, "failed to store file")
		return
	}

	a := &library.Asset{
		FolderID: folderID,
		Name:     name,
		Path:     "uploads/" + storedName,
	}
	if err := s.library.CreateAsset(r.Context(), a); err != nil {
		os.Remove(storedPath)
		if errors.Is(err, library.ErrFolderNotFound) {
			writeNotFound(w, "folder not found")
			return
		}
		s.logger.Error("asset create failed", "folder_id", folderID, "error", err)
		writeInternalError(w, "failed to record asset")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleDeleteAsset removes an asset record. GM only. The stored file
// stays on disk; scenes may still reference its path.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := s.library.DeleteAsset(r.Context(), id); err != nil {
		if errors.Is(err, library.ErrAssetNotFound) {
			writeNotFound(w, "asset not found")
			return
		}
		s.logger.Error("asset delete failed", "asset_id", id, "error", err)
		writeInternalError(w, "failed to delete asset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
