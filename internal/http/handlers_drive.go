package http

import (
	"net/http"
	"strconv"
)

// handleListDocuments lists a folder when folderId is given, otherwise the
// most recently modified files.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	if folderID := r.URL.Query().Get("folderId"); folderID != "" {
		refs, err := s.documents.ListFolder(ctx, folderID)
		if err != nil {
			writeError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, refs)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	refs, err := s.documents.ListRecent(ctx, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, refs)
}

const maxUploadSize = 20 << 20

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid multipart body"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	folderID := r.FormValue("folderId")
	if folderID == "" {
		folderID = s.documentFolderID
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	ref, err := s.documents.Upload(ctx, folderID, header.Filename, mimeType, file)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, ref)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "missing fileId"})
		return
	}

	ctx, cancel := s.upstreamCtx(r.Context())
	defer cancel()

	if err := s.documents.Delete(ctx, fileID); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"ok": true})
}
