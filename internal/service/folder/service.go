// Package folder materializes the professor root, course and subfolder
// directories of the archive. Every ensure operation is idempotent: it looks
// up the canonical folder first and only then creates the directory and the
// row, in that order.
package folder

import (
	"context"
	"errors"

	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/docarchive/pkg/vpath"
)

type Service struct {
	store   store.ArchiveStore
	disk    *storage.Disk
	access  *access.Resolver
	metrics *metrics.Metrics
	log     log.LoggerService
}

func NewService(st store.ArchiveStore, disk *storage.Disk, resolver *access.Resolver, m *metrics.Metrics, logger log.LoggerService) *Service {
	return &Service{
		store:   st,
		disk:    disk,
		access:  resolver,
		metrics: m,
		log:     logger,
	}
}

// EnsureProfessorRoot returns the PROFESSOR_ROOT folder of the professor in
// the given semester, creating it if needed.
func (s *Service) EnsureProfessorRoot(ctx context.Context, professorID, yearID, semesterID uint) (*models.Folder, error) {
	professor, err := s.store.GetUser(ctx, professorID)
	if err != nil {
		return nil, err
	}
	if professor.Role != models.RoleProfessor {
		return nil, apperror.Validation("user %s is not a professor", professor.ExternalID)
	}

	year, err := s.store.GetAcademicYear(ctx, yearID)
	if err != nil {
		return nil, err
	}
	semester, err := s.store.GetSemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	if semester.AcademicYearID != year.ID {
		return nil, apperror.Validation("semester %d does not belong to academic year %s", semester.ID, year.Code)
	}

	existing, err := s.store.FindProfessorRoot(ctx, professor.ID, year.ID, semester.ID)
	if err == nil {
		return existing, s.heal(existing)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	return s.create(ctx, &models.Folder{
		Path:           vpath.ProfessorRootPath(year.Code, semester.Type, professor.ExternalID),
		Name:           professor.DisplayName(),
		Kind:           models.FolderProfessorRoot,
		OwnerID:        professor.ID,
		AcademicYearID: year.ID,
		SemesterID:     semester.ID,
		Owner:          professor,
	})
}

// EnsureCourseStructure ensures the professor root, the course folder and
// the standard subfolders. The course folder is returned first, followed by
// the subfolders in their standard order.
func (s *Service) EnsureCourseStructure(ctx context.Context, professorID, courseID, yearID, semesterID uint) ([]*models.Folder, error) {
	root, err := s.EnsureProfessorRoot(ctx, professorID, yearID, semesterID)
	if err != nil {
		return nil, err
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	courseFolder, err := s.ensureCourseFolder(ctx, root, course)
	if err != nil {
		return nil, err
	}

	folders := []*models.Folder{courseFolder}
	for _, name := range vpath.StandardSubfolders() {
		sub, err := s.ensureSubfolder(ctx, courseFolder, name)
		if err != nil {
			return nil, err
		}
		folders = append(folders, sub)
	}

	return folders, nil
}

// ResolveOrCreateByPath materializes the document type folder a virtual
// path at DOCUMENT_TYPE depth points to. Missing years, semesters,
// professors, courses or assignments are reported as NotFound before the
// caller's write permission is checked.
func (s *Service) ResolveOrCreateByPath(ctx context.Context, path string, user *models.User) (*models.Folder, error) {
	vp, err := vpath.Parse(path)
	if err != nil {
		return nil, err
	}
	if vp.Depth() != vpath.DepthDocumentType {
		return nil, apperror.Validation("path %s must name a document type, got %s", vp, vp.Depth())
	}

	resolved, err := s.Resolve(ctx, vp)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(access.ActionWrite, user, resolved.Target()); err != nil {
		return nil, err
	}

	folders, err := s.EnsureCourseStructure(ctx, resolved.Professor.ID, resolved.Course.ID, resolved.Year.ID, resolved.Semester.ID)
	if err != nil {
		return nil, err
	}

	return s.ensureSubfolder(ctx, folders[0], vp.DocumentType.FolderName())
}

func (s *Service) ensureCourseFolder(ctx context.Context, root *models.Folder, course *models.Course) (*models.Folder, error) {
	existing, err := s.store.FindCourseFolder(ctx, root.OwnerID, root.SemesterID, course.ID)
	if err == nil {
		return existing, s.heal(existing)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	return s.create(ctx, &models.Folder{
		Path:           vpath.CourseFolderPath(root.Path, course.Code, course.Name),
		Name:           vpath.CourseFolderName(course.Code, course.Name),
		Kind:           models.FolderCourse,
		OwnerID:        root.OwnerID,
		ParentID:       &root.ID,
		AcademicYearID: root.AcademicYearID,
		SemesterID:     root.SemesterID,
		CourseID:       &course.ID,
		Owner:          root.Owner,
		Course:         course,
	})
}

func (s *Service) ensureSubfolder(ctx context.Context, parent *models.Folder, name string) (*models.Folder, error) {
	path := vpath.SubfolderPath(parent.Path, name)

	existing, err := s.store.GetFolderByPath(ctx, path)
	if err == nil {
		return existing, s.heal(existing)
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	return s.create(ctx, &models.Folder{
		Path:           path,
		Name:           name,
		Kind:           models.FolderSubfolder,
		OwnerID:        parent.OwnerID,
		ParentID:       &parent.ID,
		AcademicYearID: parent.AcademicYearID,
		SemesterID:     parent.SemesterID,
		CourseID:       parent.CourseID,
		Owner:          parent.Owner,
		Course:         parent.Course,
	})
}

// create makes the directory, then inserts the row. Losing an insert race
// returns the row of the winner.
func (s *Service) create(ctx context.Context, folder *models.Folder) (*models.Folder, error) {
	if err := s.disk.MkdirAll(folder.Path); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx store.ArchiveStore) error {
		return tx.CreateFolder(ctx, folder)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.log.Debug("Folder '%s' was created concurrently, re-fetching", folder.Path)
			return s.store.GetFolderByPath(ctx, folder.Path)
		}
		return nil, err
	}

	s.metrics.RecordFolderCreated(string(folder.Kind))
	s.log.Info("Created %s folder '%s'", folder.Kind, folder.Path)
	return folder, nil
}

// heal recreates the directory of an existing folder row.
func (s *Service) heal(folder *models.Folder) error {
	exists, err := s.disk.DirExists(folder.Path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	s.log.Warn("Directory of folder #%d '%s' is missing, recreating", folder.ID, folder.Path)
	return s.disk.MkdirAll(folder.Path)
}
