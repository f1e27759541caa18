package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mwantia/docarchive/internal/service/upload"
	"github.com/mwantia/docarchive/pkg/apperror"
)

func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteProblem(w, http.StatusRequestEntityTooLarge, "upload exceeds the allowed size")
			return
		}
		WriteError(w, r, apperror.Validation("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var ref upload.FolderRef
	if value := r.FormValue("folderId"); value != "" {
		id, err := parseID(value, "folderId")
		if err != nil {
			WriteError(w, r, err)
			return
		}
		ref.FolderID = &id
	}
	ref.Path = r.FormValue("path")

	headers := r.MultipartForm.File["files"]
	batch := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		batch = append(batch, multipartFile(fh))
	}

	created, err := s.uploads.Upload(r.Context(), ref, batch, r.FormValue("notes"), PrincipalFromContext(r.Context()))
	if err != nil && len(created) == 0 {
		WriteError(w, r, err)
		return
	}

	resp := make([]FileResponse, 0, len(created))
	for i := range created {
		resp = append(resp, toFileResponse(&created[i]))
	}
	if err != nil {
		// Part of the batch was stored before an infrastructure fault.
		s.log.Error("Upload stopped after %d file(s): %v", len(created), err)
		WriteJSON(w, http.StatusMultiStatus, map[string]any{
			"files": resp,
			"error": http.StatusText(apperror.StatusCode(err)),
		})
		return
	}
	WriteJSON(w, http.StatusCreated, resp)
}

func multipartFile(fh *multipart.FileHeader) upload.File {
	return upload.File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	file, err := s.files.Get(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toFileResponse(file))
}

func (s *Server) downloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	file, content, err := s.files.Open(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer content.Close()

	disposition := "attachment"
	if inline, _ := strconv.ParseBool(r.URL.Query().Get("inline")); inline {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", file.FileType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": file.OriginalFilename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, file.StoredFilename, file.CreatedAt, content)
}

func (s *Server) previewFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	preview, err := s.files.Preview(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, preview)
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	result, err := s.files.Delete(r.Context(), id, PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
