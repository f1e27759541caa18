package store

import (
	"context"
	"fmt"

	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
)

var folderPreloads = []string{"Owner.Department", "Course"}

func (s *GORMStore) CreateFolder(ctx context.Context, folder *models.Folder) error {
	return create(s.db, ctx, folder, apperror.Conflict("folder", folder.Path))
}

func (s *GORMStore) GetFolder(ctx context.Context, id uint) (*models.Folder, error) {
	return getWhere[models.Folder](s.db, ctx, apperror.NotFound("folder", id), folderPreloads, "id = ?", id)
}

func (s *GORMStore) GetFolderByPath(ctx context.Context, path string) (*models.Folder, error) {
	return getWhere[models.Folder](s.db, ctx, apperror.NotFound("folder", path), folderPreloads, "path = ?", path)
}

func (s *GORMStore) FindProfessorRoot(ctx context.Context, ownerID, yearID, semesterID uint) (*models.Folder, error) {
	return getWhere[models.Folder](s.db, ctx,
		apperror.NotFound("professor root folder", fmt.Sprintf("%d/%d/%d", yearID, semesterID, ownerID)),
		folderPreloads,
		"kind = ? AND owner_id = ? AND academic_year_id = ? AND semester_id = ?",
		models.FolderProfessorRoot, ownerID, yearID, semesterID)
}

func (s *GORMStore) FindCourseFolder(ctx context.Context, ownerID, semesterID, courseID uint) (*models.Folder, error) {
	return getWhere[models.Folder](s.db, ctx,
		apperror.NotFound("course folder", fmt.Sprintf("%d/%d/%d", semesterID, courseID, ownerID)),
		folderPreloads,
		"kind = ? AND owner_id = ? AND semester_id = ? AND course_id = ?",
		models.FolderCourse, ownerID, semesterID, courseID)
}
