package store

import (
	"context"
	"time"

	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/vpath"
)

// ArchiveStore defines the interface for database operations.
//
// Lookups return *apperror.NotFoundError for missing rows and creates return
// *apperror.ConflictError on unique constraint violations.
type ArchiveStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Transaction runs fn against a store bound to a single transaction.
	// Inside fn only the passed store may be used.
	Transaction(ctx context.Context, fn func(tx ArchiveStore) error) error

	DirectoryStore
	FolderStore
	FileStore
}

// DirectoryStore gives read access to the university directory plus the
// creates used by seeding.
type DirectoryStore interface {
	// Department operations
	CreateDepartment(ctx context.Context, dept *models.Department) error
	GetDepartment(ctx context.Context, id uint) (*models.Department, error)
	GetDepartmentByShortcut(ctx context.Context, shortcut string) (*models.Department, error)

	// User operations, always with Department preloaded
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// Academic calendar operations
	CreateAcademicYear(ctx context.Context, year *models.AcademicYear) error
	GetAcademicYear(ctx context.Context, id uint) (*models.AcademicYear, error)
	GetAcademicYearByCode(ctx context.Context, code string) (*models.AcademicYear, error)
	CreateSemester(ctx context.Context, semester *models.Semester) error
	GetSemester(ctx context.Context, id uint) (*models.Semester, error)
	GetSemesterByType(ctx context.Context, yearID uint, semesterType vpath.SemesterType) (*models.Semester, error)
	ListSemesters(ctx context.Context, yearID uint) ([]models.Semester, error)

	// Course operations
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*models.Course, error)

	// Course assignment operations, active assignments only unless noted
	CreateCourseAssignment(ctx context.Context, assignment *models.CourseAssignment) error
	FindCourseAssignment(ctx context.Context, semesterID, courseID, professorID uint) (*models.CourseAssignment, error)
	FindCourseAssignmentByCode(ctx context.Context, semesterID uint, courseCode string, professorID uint) (*models.CourseAssignment, error)
	ListAssignmentsByProfessor(ctx context.Context, professorID, semesterID uint) ([]models.CourseAssignment, error)
	ListProfessorsBySemester(ctx context.Context, semesterID uint, departmentID *uint) ([]models.User, error)
}

// FolderStore persists the directory nodes of the archive.
type FolderStore interface {
	CreateFolder(ctx context.Context, folder *models.Folder) error
	GetFolder(ctx context.Context, id uint) (*models.Folder, error)
	GetFolderByPath(ctx context.Context, path string) (*models.Folder, error)
	FindProfessorRoot(ctx context.Context, ownerID, yearID, semesterID uint) (*models.Folder, error)
	FindCourseFolder(ctx context.Context, ownerID, semesterID, courseID uint) (*models.Folder, error)
}

// FileStore persists uploaded files and their document submissions.
type FileStore interface {
	CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error
	GetUploadedFile(ctx context.Context, id uint) (*models.UploadedFile, error)
	ListFilesBySubmission(ctx context.Context, submissionID uint) ([]models.UploadedFile, error)
	DeleteUploadedFile(ctx context.Context, id uint) error
	NextFileOrder(ctx context.Context, submissionID uint) (int, error)

	GetOrCreateSubmission(ctx context.Context, assignment *models.CourseAssignment, documentType vpath.DocumentType) (*models.DocumentSubmission, error)
	GetSubmission(ctx context.Context, assignmentID uint, documentType vpath.DocumentType) (*models.DocumentSubmission, error)
	ListSubmissions(ctx context.Context, assignmentID uint) ([]models.DocumentSubmission, error)
	AddToSubmission(ctx context.Context, submissionID uint, files int, bytes int64, notes string, at time.Time) error
}
