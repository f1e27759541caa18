package api

import (
	"net/http"
	"strconv"

	"github.com/mwantia/docarchive/pkg/apperror"
)

func (s *Server) explorerRoot(w http.ResponseWriter, r *http.Request) {
	yearID, err := queryID(r, "academicYearId")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	semesterID, err := queryID(r, "semesterId")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	node, err := s.explorer.GetRoot(r.Context(), yearID, semesterID, PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, node)
}

func (s *Server) explorerNode(w http.ResponseWriter, r *http.Request) {
	node, err := s.explorer.GetNode(r.Context(), r.URL.Query().Get("path"), PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, node)
}

func (s *Server) explorerChildren(w http.ResponseWriter, r *http.Request) {
	children, err := s.explorer.GetChildren(r.Context(), r.URL.Query().Get("path"), PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, children)
}

func (s *Server) explorerBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	crumbs, err := s.explorer.Breadcrumbs(r.Context(), r.URL.Query().Get("path"), PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, crumbs)
}

func (s *Server) explorerPermissions(w http.ResponseWriter, r *http.Request) {
	decision, err := s.explorer.Permissions(r.Context(), r.URL.Query().Get("path"), PrincipalFromContext(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, decision)
}

func queryID(r *http.Request, name string) (uint, error) {
	return parseID(r.URL.Query().Get(name), name)
}

func parseID(value, name string) (uint, error) {
	if value == "" {
		return 0, apperror.Validation("%s is required", name)
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("%s must be a positive integer", name)
	}
	return uint(id), nil
}
