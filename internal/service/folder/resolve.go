package folder

import (
	"context"

	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/vpath"
)

// Resolved holds the entities behind a virtual path. Fields below the
// path depth are nil.
type Resolved struct {
	Path       vpath.VirtualPath
	Year       *models.AcademicYear
	Semester   *models.Semester
	Professor  *models.User
	Course     *models.Course
	Assignment *models.CourseAssignment
}

// Target returns the permission target of the path.
func (r *Resolved) Target() access.Target {
	return access.PathTarget(r.Path, r.Professor)
}

// Resolve looks up every entity a parsed path names. A course segment only
// resolves when the professor holds an active assignment for it in that
// semester.
func (s *Service) Resolve(ctx context.Context, vp vpath.VirtualPath) (*Resolved, error) {
	if !vp.IsValid() {
		return nil, apperror.Validation("path %q is not a node path", vp.String())
	}

	r := &Resolved{Path: vp}

	year, err := s.store.GetAcademicYearByCode(ctx, vp.YearCode)
	if err != nil {
		return nil, err
	}
	r.Year = year
	if vp.Depth() == vpath.DepthYear {
		return r, nil
	}

	semester, err := s.store.GetSemesterByType(ctx, year.ID, vp.Semester)
	if err != nil {
		return nil, err
	}
	r.Semester = semester
	if vp.Depth() == vpath.DepthSemester {
		return r, nil
	}

	professor, err := s.store.GetUserByExternalID(ctx, vp.ProfessorID)
	if err != nil {
		return nil, err
	}
	if professor.Role != models.RoleProfessor {
		return nil, apperror.NotFound("professor", vp.ProfessorID)
	}
	r.Professor = professor
	if vp.Depth() == vpath.DepthProfessor {
		return r, nil
	}

	assignment, err := s.store.FindCourseAssignmentByCode(ctx, semester.ID, vp.CourseCode, professor.ID)
	if err != nil {
		return nil, err
	}
	r.Assignment = assignment
	r.Course = assignment.Course

	return r, nil
}
