package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/vpath"
	"gorm.io/gorm"
)

var filePreloads = []string{"Uploader.Department", "Folder.Owner.Department", "DocumentSubmission"}

// Uploaded file operations

func (s *GORMStore) CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error {
	return create(s.db, ctx, file, apperror.Conflict("file", file.FileURL))
}

func (s *GORMStore) GetUploadedFile(ctx context.Context, id uint) (*models.UploadedFile, error) {
	return getWhere[models.UploadedFile](s.db, ctx, apperror.NotFound("file", id), filePreloads, "id = ?", id)
}

func (s *GORMStore) ListFilesBySubmission(ctx context.Context, submissionID uint) ([]models.UploadedFile, error) {
	return s.listFiles(ctx, "document_submission_id = ?", submissionID)
}

func (s *GORMStore) listFiles(ctx context.Context, query string, args ...any) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	q := s.db.WithContext(ctx)
	for _, p := range filePreloads {
		q = q.Preload(p)
	}
	err := q.Where(query, args...).Order("file_order, id").Find(&files).Error
	return files, err
}

func (s *GORMStore) DeleteUploadedFile(ctx context.Context, id uint) error {
	return deleteByID[models.UploadedFile](s.db, ctx, id, apperror.NotFound("file", id))
}

// NextFileOrder returns one past the highest file order in the submission.
func (s *GORMStore) NextFileOrder(ctx context.Context, submissionID uint) (int, error) {
	var max int64
	row := s.db.WithContext(ctx).
		Model(&models.UploadedFile{}).
		Select("COALESCE(MAX(file_order), 0)").
		Where("document_submission_id = ?", submissionID).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return int(max) + 1, nil
}

// Document submission operations

func (s *GORMStore) GetOrCreateSubmission(ctx context.Context, assignment *models.CourseAssignment, documentType vpath.DocumentType) (*models.DocumentSubmission, error) {
	existing, err := s.GetSubmission(ctx, assignment.ID, documentType)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	submission := &models.DocumentSubmission{
		CourseAssignmentID: assignment.ID,
		ProfessorID:        assignment.ProfessorID,
		DocumentType:       documentType,
	}
	if err := create(s.db, ctx, submission, apperror.Conflict("submission", documentType)); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return s.GetSubmission(ctx, assignment.ID, documentType)
		}
		return nil, err
	}

	return submission, nil
}

func (s *GORMStore) GetSubmission(ctx context.Context, assignmentID uint, documentType vpath.DocumentType) (*models.DocumentSubmission, error) {
	return getWhere[models.DocumentSubmission](s.db, ctx,
		apperror.NotFound("submission", fmt.Sprintf("%d/%s", assignmentID, documentType)),
		nil,
		"course_assignment_id = ? AND document_type = ?", assignmentID, documentType)
}

func (s *GORMStore) ListSubmissions(ctx context.Context, assignmentID uint) ([]models.DocumentSubmission, error) {
	var submissions []models.DocumentSubmission
	err := s.db.WithContext(ctx).
		Where("course_assignment_id = ?", assignmentID).
		Order("id").
		Find(&submissions).Error
	return submissions, err
}

// AddToSubmission adjusts the counters of a submission by the given deltas.
// A positive file delta also stamps SubmittedAt and, if notes is set,
// replaces the notes.
func (s *GORMStore) AddToSubmission(ctx context.Context, submissionID uint, files int, bytes int64, notes string, at time.Time) error {
	updates := map[string]any{
		"file_count": gorm.Expr("file_count + ?", files),
		"total_size": gorm.Expr("total_size + ?", bytes),
	}
	if files > 0 {
		updates["submitted_at"] = at
		if notes != "" {
			updates["notes"] = notes
		}
	}

	result := s.db.WithContext(ctx).
		Model(&models.DocumentSubmission{}).
		Where("id = ?", submissionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("submission", submissionID)
	}
	return nil
}
