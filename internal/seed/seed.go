// Package seed loads the university directory (departments, users, academic
// calendar, courses and course assignments) from a YAML fixture file.
// Applying fixtures is idempotent by natural key.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/vpath"
	"gopkg.in/yaml.v3"
)

type Fixtures struct {
	Departments   []Department   `yaml:"departments"`
	Users         []User         `yaml:"users"`
	AcademicYears []AcademicYear `yaml:"academic_years"`
	Courses       []Course       `yaml:"courses"`
	Assignments   []Assignment   `yaml:"assignments"`
}

type Department struct {
	Shortcut string `yaml:"shortcut"`
	Name     string `yaml:"name"`
}

type User struct {
	ExternalID string `yaml:"external_id"`
	Email      string `yaml:"email"`
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Role       string `yaml:"role"`
	Department string `yaml:"department,omitempty"`
}

type AcademicYear struct {
	Code      string   `yaml:"code"`
	Semesters []string `yaml:"semesters"`
}

type Course struct {
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
}

type Assignment struct {
	Year      string `yaml:"year"`
	Semester  string `yaml:"semester"`
	Course    string `yaml:"course"`
	Professor string `yaml:"professor"`
}

// Result counts the rows created by Apply.
type Result struct {
	Departments   int
	Users         int
	AcademicYears int
	Semesters     int
	Courses       int
	Assignments   int
}

func (r Result) Total() int {
	return r.Departments + r.Users + r.AcademicYears + r.Semesters + r.Courses + r.Assignments
}

// Load reads fixtures from a YAML file.
func Load(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes fixtures from YAML.
func Parse(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fx, nil
}

// Apply inserts every fixture that does not exist yet, in one transaction.
func Apply(ctx context.Context, st store.ArchiveStore, fx *Fixtures) (Result, error) {
	var result Result

	err := st.Transaction(ctx, func(tx store.ArchiveStore) error {
		result = Result{}

		for _, d := range fx.Departments {
			created, err := ensure(
				func() error { _, err := tx.GetDepartmentByShortcut(ctx, d.Shortcut); return err },
				func() error {
					return tx.CreateDepartment(ctx, &models.Department{Shortcut: d.Shortcut, Name: d.Name})
				})
			if err != nil {
				return fmt.Errorf("department %s: %w", d.Shortcut, err)
			}
			result.Departments += created
		}

		for _, u := range fx.Users {
			role, err := models.ParseRole(u.Role)
			if err != nil {
				return apperror.Validation("user %s: %v", u.ExternalID, err)
			}

			var deptID *uint
			if u.Department != "" {
				dept, err := tx.GetDepartmentByShortcut(ctx, u.Department)
				if err != nil {
					return fmt.Errorf("user %s: %w", u.ExternalID, err)
				}
				deptID = &dept.ID
			}

			created, err := ensure(
				func() error { _, err := tx.GetUserByExternalID(ctx, u.ExternalID); return err },
				func() error {
					return tx.CreateUser(ctx, &models.User{
						ExternalID:   u.ExternalID,
						Email:        u.Email,
						FirstName:    u.FirstName,
						LastName:     u.LastName,
						Role:         role,
						DepartmentID: deptID,
						Active:       true,
					})
				})
			if err != nil {
				return fmt.Errorf("user %s: %w", u.ExternalID, err)
			}
			result.Users += created
		}

		for _, y := range fx.AcademicYears {
			start, end, err := parseYearCode(y.Code)
			if err != nil {
				return err
			}

			created, err := ensure(
				func() error { _, err := tx.GetAcademicYearByCode(ctx, y.Code); return err },
				func() error {
					return tx.CreateAcademicYear(ctx, &models.AcademicYear{Code: y.Code, StartYear: start, EndYear: end, Active: true})
				})
			if err != nil {
				return fmt.Errorf("academic year %s: %w", y.Code, err)
			}
			result.AcademicYears += created

			year, err := tx.GetAcademicYearByCode(ctx, y.Code)
			if err != nil {
				return err
			}

			for _, s := range y.Semesters {
				semesterType, err := vpath.ParseSemesterType(s)
				if err != nil {
					return apperror.Validation("academic year %s: %v", y.Code, err)
				}
				created, err := ensure(
					func() error { _, err := tx.GetSemesterByType(ctx, year.ID, semesterType); return err },
					func() error {
						return tx.CreateSemester(ctx, &models.Semester{AcademicYearID: year.ID, Type: semesterType})
					})
				if err != nil {
					return fmt.Errorf("semester %s/%s: %w", y.Code, s, err)
				}
				result.Semesters += created
			}
		}

		for _, c := range fx.Courses {
			dept, err := tx.GetDepartmentByShortcut(ctx, c.Department)
			if err != nil {
				return fmt.Errorf("course %s: %w", c.Code, err)
			}
			created, err := ensure(
				func() error { _, err := tx.GetCourseByCode(ctx, c.Code); return err },
				func() error {
					return tx.CreateCourse(ctx, &models.Course{Code: c.Code, Name: c.Name, DepartmentID: dept.ID, Active: true})
				})
			if err != nil {
				return fmt.Errorf("course %s: %w", c.Code, err)
			}
			result.Courses += created
		}

		for _, a := range fx.Assignments {
			created, err := applyAssignment(ctx, tx, a)
			if err != nil {
				return fmt.Errorf("assignment %s/%s/%s/%s: %w", a.Year, a.Semester, a.Professor, a.Course, err)
			}
			result.Assignments += created
		}

		return nil
	})

	return result, err
}

func applyAssignment(ctx context.Context, tx store.ArchiveStore, a Assignment) (int, error) {
	year, err := tx.GetAcademicYearByCode(ctx, a.Year)
	if err != nil {
		return 0, err
	}
	semesterType, err := vpath.ParseSemesterType(a.Semester)
	if err != nil {
		return 0, apperror.Validation("%v", err)
	}
	semester, err := tx.GetSemesterByType(ctx, year.ID, semesterType)
	if err != nil {
		return 0, err
	}
	course, err := tx.GetCourseByCode(ctx, a.Course)
	if err != nil {
		return 0, err
	}
	professor, err := tx.GetUserByExternalID(ctx, a.Professor)
	if err != nil {
		return 0, err
	}
	if professor.Role != models.RoleProfessor {
		return 0, apperror.Validation("user %s is not a professor", a.Professor)
	}

	return ensure(
		func() error { _, err := tx.FindCourseAssignment(ctx, semester.ID, course.ID, professor.ID); return err },
		func() error {
			return tx.CreateCourseAssignment(ctx, &models.CourseAssignment{
				SemesterID:  semester.ID,
				CourseID:    course.ID,
				ProfessorID: professor.ID,
				Active:      true,
			})
		})
}

// ensure runs create if lookup reports NotFound and returns 1 if it did.
func ensure(lookup func() error, create func() error) (int, error) {
	err := lookup()
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return 0, err
	}
	if err := create(); err != nil {
		return 0, err
	}
	return 1, nil
}

func parseYearCode(code string) (int, int, error) {
	if _, err := vpath.YearPath(code); err != nil {
		return 0, 0, err
	}
	parts := strings.SplitN(code, "-", 2)
	start, _ := strconv.Atoi(parts[0])
	end, _ := strconv.Atoi(parts[1])
	if end != start+1 {
		return 0, 0, apperror.Validation("academic year %s must span two consecutive years", code)
	}
	return start, end, nil
}
