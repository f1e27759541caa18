// Package files gates access to single stored files: metadata, content,
// preview classification and deletion.
package files

import (
	"context"
	"time"

	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/spf13/afero"
)

type Cleanup string

const (
	CleanupOK     Cleanup = "ok"
	CleanupFailed Cleanup = "failed"
)

// DeleteResult reports a committed delete and whether the physical file
// could be removed as well.
type DeleteResult struct {
	FileID       uint    `json:"fileId"`
	StoredPath   string  `json:"storedPath"`
	Cleanup      Cleanup `json:"cleanup"`
	CleanupError string  `json:"cleanupError,omitempty"`
}

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

// Get returns the file record if user may read it.
func (s *Service) Get(ctx context.Context, fileID uint, user *models.User) (*models.UploadedFile, error) {
	file, err := s.store.GetUploadedFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access.ActionRead, user, access.FileTarget(file)); err != nil {
		return nil, err
	}
	return file, nil
}

// Open returns the record and its content. The caller closes the content.
func (s *Service) Open(ctx context.Context, fileID uint, user *models.User) (*models.UploadedFile, afero.File, error) {
	file, err := s.Get(ctx, fileID, user)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.disk.Open(file.FileURL)
	if err != nil {
		return nil, nil, err
	}
	return file, content, nil
}

// Preview classifies a readable file for inline rendering.
func (s *Service) Preview(ctx context.Context, fileID uint, user *models.User) (*Preview, error) {
	file, err := s.Get(ctx, fileID, user)
	if err != nil {
		return nil, err
	}

	previewType := Classify(file.FileType, file.OriginalFilename)
	return &Preview{
		FileID:      file.ID,
		Filename:    file.OriginalFilename,
		PreviewType: previewType,
		ContentType: file.FileType,
		Previewable: previewType.Previewable(),
	}, nil
}

// Delete removes the record, then the physical file. A failed physical
// removal is logged and reported in the result; the record stays deleted.
func (s *Service) Delete(ctx context.Context, fileID uint, user *models.User) (*DeleteResult, error) {
	file, err := s.store.GetUploadedFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access.ActionDelete, user, access.FileTarget(file)); err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx store.ArchiveStore) error {
		if err := tx.DeleteUploadedFile(ctx, file.ID); err != nil {
			return err
		}
		if file.DocumentSubmissionID != nil {
			return tx.AddToSubmission(ctx, *file.DocumentSubmissionID, -1, -file.FileSize, "", time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{
		FileID:     file.ID,
		StoredPath: file.FileURL,
		Cleanup:    CleanupOK,
	}
	if err := s.disk.Remove(file.FileURL); err != nil {
		s.log.Error("Deleted file #%d but failed to remove '%s': %v", file.ID, file.FileURL, err)
		result.Cleanup = CleanupFailed
		result.CleanupError = err.Error()
	}

	s.metrics.RecordDeletion(string(result.Cleanup))
	s.log.Info("User #%d deleted file #%d '%s'", user.ID, file.ID, file.FileURL)
	return result, nil
}
