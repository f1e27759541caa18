package api

import (
	"encoding/json"
	"net/http"

	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
)

type ProfessorRootRequest struct {
	ProfessorID    uint `json:"professorId"    validate:"required"`
	AcademicYearID uint `json:"academicYearId" validate:"required"`
	SemesterID     uint `json:"semesterId"     validate:"required"`
}

type CourseStructureRequest struct {
	ProfessorID    uint `json:"professorId"    validate:"required"`
	CourseID       uint `json:"courseId"       validate:"required"`
	AcademicYearID uint `json:"academicYearId" validate:"required"`
	SemesterID     uint `json:"semesterId"     validate:"required"`
}

func (s *Server) createProfessorRoot(w http.ResponseWriter, r *http.Request) {
	var req ProfessorRootRequest
	if err := s.decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := s.authorizeProvision(r, req.ProfessorID); err != nil {
		WriteError(w, r, err)
		return
	}

	root, err := s.folders.EnsureProfessorRoot(r.Context(), req.ProfessorID, req.AcademicYearID, req.SemesterID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toFolderResponse(root))
}

func (s *Server) createCourseStructure(w http.ResponseWriter, r *http.Request) {
	var req CourseStructureRequest
	if err := s.decode(r, &req); err != nil {
		WriteError(w, r, err)
		return
	}
	if err := s.authorizeProvision(r, req.ProfessorID); err != nil {
		WriteError(w, r, err)
		return
	}

	folders, err := s.folders.EnsureCourseStructure(r.Context(), req.ProfessorID, req.CourseID, req.AcademicYearID, req.SemesterID)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	resp := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		resp = append(resp, toFolderResponse(f))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// authorizeProvision looks up the professor first so missing users are
// reported as NotFound.
func (s *Server) authorizeProvision(r *http.Request, professorID uint) error {
	professor, err := s.store.GetUser(r.Context(), professorID)
	if err != nil {
		return err
	}
	return s.access.Authorize(access.ActionProvision, PrincipalFromContext(r.Context()), access.ProfessorTarget(professor))
}

// decode parses a JSON body and validates its struct tags.
func (s *Server) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.Validation("invalid request body: %v", err)
	}
	if err := s.validate.Struct(v); err != nil {
		return apperror.Validation("invalid request: %v", err)
	}
	return nil
}
