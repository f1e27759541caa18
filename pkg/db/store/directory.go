package store

import (
	"context"
	"fmt"

	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/vpath"
)

// Department operations

func (s *GORMStore) CreateDepartment(ctx context.Context, dept *models.Department) error {
	return create(s.db, ctx, dept, apperror.Conflict("department", dept.Shortcut))
}

func (s *GORMStore) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	return getByField[models.Department](s.db, ctx, "id", id, apperror.NotFound("department", id))
}

func (s *GORMStore) GetDepartmentByShortcut(ctx context.Context, shortcut string) (*models.Department, error) {
	return getByField[models.Department](s.db, ctx, "shortcut", shortcut, apperror.NotFound("department", shortcut))
}

// User operations

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) error {
	return create(s.db, ctx, user, apperror.Conflict("user", user.ExternalID))
}

func (s *GORMStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "id", id, apperror.NotFound("user", id), "Department")
}

func (s *GORMStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "external_id", externalID, apperror.NotFound("professor", externalID), "Department")
}

// Academic calendar operations

func (s *GORMStore) CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error {
	return create(s.db, ctx, year, apperror.Conflict("academic year", year.Code))
}

func (s *GORMStore) GetAcademicYear(ctx context.Context, id uint) (*models.AcademicYear, error) {
	return getByField[models.AcademicYear](s.db, ctx, "id", id, apperror.NotFound("academic year", id))
}

func (s *GORMStore) GetAcademicYearByCode(ctx context.Context, code string) (*models.AcademicYear, error) {
	return getByField[models.AcademicYear](s.db, ctx, "code", code, apperror.NotFound("academic year", code))
}

func (s *GORMStore) CreateSemester(ctx context.Context, semester *models.Semester) error {
	return create(s.db, ctx, semester, apperror.Conflict("semester", fmt.Sprintf("%d/%s", semester.AcademicYearID, semester.Type)))
}

func (s *GORMStore) GetSemester(ctx context.Context, id uint) (*models.Semester, error) {
	return getByField[models.Semester](s.db, ctx, "id", id, apperror.NotFound("semester", id), "AcademicYear")
}

func (s *GORMStore) GetSemesterByType(ctx context.Context, yearID uint, semesterType vpath.SemesterType) (*models.Semester, error) {
	return getWhere[models.Semester](s.db, ctx,
		apperror.NotFound("semester", semesterType),
		[]string{"AcademicYear"},
		"academic_year_id = ? AND type = ?", yearID, semesterType)
}

func (s *GORMStore) ListSemesters(ctx context.Context, yearID uint) ([]models.Semester, error) {
	var semesters []models.Semester
	err := s.db.WithContext(ctx).
		Preload("AcademicYear").
		Where("academic_year_id = ?", yearID).
		Order("id").
		Find(&semesters).Error
	return semesters, err
}

// Course operations

func (s *GORMStore) CreateCourse(ctx context.Context, course *models.Course) error {
	return create(s.db, ctx, course, apperror.Conflict("course", course.Code))
}

func (s *GORMStore) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	return getByField[models.Course](s.db, ctx, "id", id, apperror.NotFound("course", id))
}

func (s *GORMStore) GetCourseByCode(ctx context.Context, code string) (*models.Course, error) {
	return getByField[models.Course](s.db, ctx, "code", code, apperror.NotFound("course", code))
}

// Course assignment operations

var assignmentPreloads = []string{"Semester.AcademicYear", "Course", "Professor.Department"}

func (s *GORMStore) CreateCourseAssignment(ctx context.Context, assignment *models.CourseAssignment) error {
	key := fmt.Sprintf("%d/%d/%d", assignment.SemesterID, assignment.CourseID, assignment.ProfessorID)
	return create(s.db, ctx, assignment, apperror.Conflict("course assignment", key))
}

func (s *GORMStore) FindCourseAssignment(ctx context.Context, semesterID, courseID, professorID uint) (*models.CourseAssignment, error) {
	return getWhere[models.CourseAssignment](s.db, ctx,
		apperror.NotFound("course assignment", fmt.Sprintf("%d/%d/%d", semesterID, courseID, professorID)),
		assignmentPreloads,
		"semester_id = ? AND course_id = ? AND professor_id = ? AND active = ?", semesterID, courseID, professorID, true)
}

func (s *GORMStore) FindCourseAssignmentByCode(ctx context.Context, semesterID uint, courseCode string, professorID uint) (*models.CourseAssignment, error) {
	courses := s.db.Model(&models.Course{}).Select("id").Where("code = ?", courseCode)
	return getWhere[models.CourseAssignment](s.db, ctx,
		apperror.NotFound("course assignment", courseCode),
		assignmentPreloads,
		"semester_id = ? AND course_id IN (?) AND professor_id = ? AND active = ?", semesterID, courses, professorID, true)
}

func (s *GORMStore) ListAssignmentsByProfessor(ctx context.Context, professorID, semesterID uint) ([]models.CourseAssignment, error) {
	var assignments []models.CourseAssignment
	q := s.db.WithContext(ctx)
	for _, p := range assignmentPreloads {
		q = q.Preload(p)
	}
	err := q.Where("professor_id = ? AND semester_id = ? AND active = ?", professorID, semesterID, true).
		Order("id").
		Find(&assignments).Error
	return assignments, err
}

// ListProfessorsBySemester returns every professor with at least one active
// assignment in the semester, optionally limited to one department.
func (s *GORMStore) ListProfessorsBySemester(ctx context.Context, semesterID uint, departmentID *uint) ([]models.User, error) {
	teaching := s.db.Model(&models.CourseAssignment{}).
		Select("professor_id").
		Where("semester_id = ? AND active = ?", semesterID, true)

	q := s.db.WithContext(ctx).
		Preload("Department").
		Where("id IN (?)", teaching)
	if departmentID != nil {
		q = q.Where("department_id = ?", *departmentID)
	}

	var users []models.User
	err := q.Order("id").Find(&users).Error
	return users, err
}
