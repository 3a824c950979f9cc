package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/netlens/netlens/pkg/manager"
	"github.com/netlens/netlens/pkg/parser"
	"github.com/netlens/netlens/pkg/types"
)

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.mgr.ListDocuments(chi.URLParam(r, "pid"), r.URL.Query().Get("folder_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

type uploadResult struct {
	Document *types.Document        `json:"document"`
	Version  *types.DocumentVersion `json:"version"`
	Error    string                 `json:"error,omitempty"`
	Filename string                 `json:"filename"`
}

// handleUpload accepts multipart/form-data with one or more "files"
// parts plus the 5W metadata fields.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, fmt.Errorf("%w: malformed multipart body: %v", manager.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, fmt.Errorf("%w: no files in upload", manager.ErrValidation))
		return
	}

	projectID := chi.URLParam(r, "pid")
	folderID := r.FormValue("folder_id")
	uploader := callerFrom(r.Context()).Username
	meta := types.VersionMetadata{
		Who:         r.FormValue("who"),
		What:        r.FormValue("what"),
		Where:       r.FormValue("where"),
		When:        r.FormValue("when"),
		Why:         r.FormValue("why"),
		Description: r.FormValue("description"),
	}

	results := make([]uploadResult, 0, len(files))
	failed := 0
	for _, header := range files {
		result := uploadResult{Filename: header.Filename}
		data, err := readPart(header)
		if err == nil {
			result.Document, result.Version, err = s.mgr.Upload(
				projectID, folderID, header.Filename,
				header.Header.Get("Content-Type"), data, uploader, meta)
		}
		if err != nil {
			result.Error = err.Error()
			failed++
			// A single bad file fails the whole request only when it is
			// the only file.
			if len(files) == 1 {
				writeError(w, err)
				return
			}
		}
		results = append(results, result)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"failed":  failed,
	})
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload part: %v", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.mgr.GetDocument(chi.URLParam(r, "pid"), chi.URLParam(r, "did"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type patchDocumentRequest struct {
	Filename *string `json:"filename"`
	FolderID *string `json:"folder_id"`
}

// handlePatchDocument accepts the same rename/move fields as the
// dedicated endpoints, applied in one call.
func (s *Server) handlePatchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	projectID, docID := chi.URLParam(r, "pid"), chi.URLParam(r, "did")

	var doc *types.Document
	var err error
	if req.FolderID != nil {
		if doc, err = s.mgr.MoveDocument(projectID, docID, *req.FolderID); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Filename != nil {
		if doc, err = s.mgr.RenameDocument(projectID, docID, *req.Filename); err != nil {
			writeError(w, err)
			return
		}
	}
	if doc == nil {
		if doc, err = s.mgr.GetDocument(projectID, docID); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.mgr.DeleteDocument(chi.URLParam(r, "pid"), chi.URLParam(r, "did")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type moveDocumentRequest struct {
	FolderID string `json:"folder_id"`
}

func (s *Server) handleMoveDocument(w http.ResponseWriter, r *http.Request) {
	var req moveDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.mgr.MoveDocument(chi.URLParam(r, "pid"), chi.URLParam(r, "did"), req.FolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type renameDocumentRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handleRenameDocument(w http.ResponseWriter, r *http.Request) {
	var req renameDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.mgr.RenameDocument(chi.URLParam(r, "pid"), chi.URLParam(r, "did"), req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.mgr.ListVersions(chi.URLParam(r, "pid"), chi.URLParam(r, "did"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// handlePreviewDocument streams the latest version inline.
func (s *Server) handlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	projectID, docID := chi.URLParam(r, "pid"), chi.URLParam(r, "did")
	doc, err := s.mgr.GetDocument(projectID, docID)
	if err != nil {
		writeError(w, err)
		return
	}
	data, _, err := s.mgr.VersionContent(projectID, docID, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "inline")
	w.Write(data)
}

// handleDownloadDocument returns the original bytes of the requested
// version, defaulting to the latest.
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	projectID, docID := chi.URLParam(r, "pid"), chi.URLParam(r, "did")
	doc, err := s.mgr.GetDocument(projectID, docID)
	if err != nil {
		writeError(w, err)
		return
	}

	versionNumber := 0
	if v := r.URL.Query().Get("version"); v != "" {
		versionNumber, err = strconv.Atoi(v)
		if err != nil || versionNumber < 1 {
			writeError(w, fmt.Errorf("%w: invalid version %q", manager.ErrValidation, v))
			return
		}
	}

	data, _, err := s.mgr.VersionContent(projectID, docID, versionNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Write(data)
}

type documentContent struct {
	Content      string              `json:"content"`
	DeviceRecord *types.DeviceRecord `json:"device_record,omitempty"`
}

// handleDocumentContent returns the latest content as JSON text. With
// extract_config=true the text is also run through the parser.
func (s *Server) handleDocumentContent(w http.ResponseWriter, r *http.Request) {
	projectID, docID := chi.URLParam(r, "pid"), chi.URLParam(r, "did")
	data, _, err := s.mgr.VersionContent(projectID, docID, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	out := documentContent{Content: string(data)}
	if r.URL.Query().Get("extract_config") == "true" {
		out.DeviceRecord = parser.Parse(string(data))
	}
	writeJSON(w, http.StatusOK, out)
}
