// Package upload stores batches of files in archive folders.
//
// A batch is validated as a whole before any byte is written. After
// validation each file is written to disk and then recorded; a failure
// from that point on stops the batch but keeps the files already stored.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/docarchive/pkg/vpath"
)

type Config struct {
	MaxFileSize       int64
	MaxFiles          int
	MaxBatchSize      int64
	AllowedExtensions []string
}

func (c Config) allows(ext string) bool {
	for _, allowed := range c.AllowedExtensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), ext) {
			return true
		}
	}
	return false
}

// FolderRef names the target folder by id or by virtual path. Exactly one
// must be set.
type FolderRef struct {
	FolderID *uint
	Path     string
}

// File is one validated input of a batch. Size is the declared size and is
// enforced again while writing.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// NewFile wraps an in-memory blob.
func NewFile(name string, data []byte) File {
	return File{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type Service struct {
	cfg     Config
	store   store.ArchiveStore
	disk    *storage.Disk
	folders *folder.Service
	access  *access.Resolver
	metrics *metrics.Metrics
	log     log.LoggerService
	policy  *bluemonday.Policy
}

func NewService(cfg Config, st store.ArchiveStore, disk *storage.Disk, folders *folder.Service, resolver *access.Resolver, m *metrics.Metrics, logger log.LoggerService) *Service {
	return &Service{
		cfg:     cfg,
		store:   st,
		disk:    disk,
		folders: folders,
		access:  resolver,
		metrics: m,
		log:     logger,
		policy:  bluemonday.StrictPolicy(),
	}
}

// Upload stores files in the referenced folder on behalf of uploader. On a
// storage failure the files stored before it are returned with the error.
func (s *Service) Upload(ctx context.Context, ref FolderRef, files []File, notes string, uploader *models.User) ([]models.UploadedFile, error) {
	target, err := s.resolveFolder(ctx, ref, uploader)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(access.ActionWrite, uploader, access.FolderTarget(target)); err != nil {
		return nil, err
	}

	if err := s.validate(files); err != nil {
		s.metrics.RecordUpload("rejected", 0)
		return nil, err
	}

	notes = s.cleanNotes(notes)

	submission, err := s.submissionFor(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := s.disk.MkdirAll(target.Path); err != nil {
		return nil, err
	}

	created := make([]models.UploadedFile, 0, len(files))
	for _, f := range files {
		stored, err := s.storeFile(ctx, target, submission, f, notes, uploader)
		if err != nil {
			s.metrics.RecordUpload("failed", 0)
			return created, err
		}
		s.metrics.RecordUpload("stored", stored.FileSize)
		created = append(created, *stored)
	}

	s.log.With("user", uploader.ExternalID).Info("Stored %d file(s) in '%s'", len(created), target.Path)
	return created, nil
}

func (s *Service) resolveFolder(ctx context.Context, ref FolderRef, uploader *models.User) (*models.Folder, error) {
	path := strings.TrimSpace(ref.Path)
	switch {
	case ref.FolderID != nil && path != "":
		return nil, apperror.Validation("either a folder id or a path must be given, not both")
	case ref.FolderID != nil:
		return s.store.GetFolder(ctx, *ref.FolderID)
	case path != "":
		return s.folders.ResolveOrCreateByPath(ctx, path, uploader)
	}
	return nil, apperror.Validation("a folder id or a path is required")
}

// validate rejects the whole batch if any file fails a check.
func (s *Service) validate(files []File) error {
	if len(files) == 0 {
		return apperror.Validation("no files uploaded")
	}
	if s.cfg.MaxFiles > 0 && len(files) > s.cfg.MaxFiles {
		return apperror.Validation("%d files exceed the limit of %d per upload", len(files), s.cfg.MaxFiles)
	}

	var (
		problems []apperror.Problem
		total    int64
	)
	for i, f := range files {
		field := f.Name
		if strings.TrimSpace(field) == "" {
			field = fmt.Sprintf("files[%d]", i)
			problems = append(problems, apperror.Problem{Field: field, Message: "filename is empty"})
			continue
		}

		switch {
		case f.Size <= 0:
			problems = append(problems, apperror.Problem{Field: field, Message: "file is empty"})
		case s.cfg.MaxFileSize > 0 && f.Size > s.cfg.MaxFileSize:
			problems = append(problems, apperror.Problem{
				Field:   field,
				Message: fmt.Sprintf("size %d exceeds the limit of %d bytes", f.Size, s.cfg.MaxFileSize),
			})
		}

		if ext := storage.Extension(f.Name); !s.cfg.allows(ext) {
			problems = append(problems, apperror.Problem{
				Field:   field,
				Message: fmt.Sprintf("extension %q is not allowed", ext),
			})
		}

		total += f.Size
	}

	if s.cfg.MaxBatchSize > 0 && total > s.cfg.MaxBatchSize {
		problems = append(problems, apperror.Problem{
			Message: fmt.Sprintf("batch size %d exceeds the limit of %d bytes", total, s.cfg.MaxBatchSize),
		})
	}

	if len(problems) > 0 {
		err := apperror.Validation("upload rejected")
		err.Problems = problems
		return err
	}
	return nil
}

// submissionFor returns the document submission files in target count
// towards, or nil if target is not a document type folder of an assigned
// course.
func (s *Service) submissionFor(ctx context.Context, target *models.Folder) (*models.DocumentSubmission, error) {
	if target.Kind != models.FolderSubfolder || target.CourseID == nil {
		return nil, nil
	}
	documentType, ok := vpath.DocumentTypeForFolder(target.Name)
	if !ok {
		return nil, nil
	}

	assignment, err := s.store.FindCourseAssignment(ctx, target.SemesterID, *target.CourseID, target.OwnerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.log.Debug("Folder '%s' has no active course assignment, skipping submission", target.Path)
			return nil, nil
		}
		return nil, err
	}

	return s.store.GetOrCreateSubmission(ctx, assignment, documentType)
}

// storeFile writes one file and records it. The physical file is removed
// again if the record cannot be inserted.
func (s *Service) storeFile(ctx context.Context, target *models.Folder, submission *models.DocumentSubmission, f File, notes string, uploader *models.User) (*models.UploadedFile, error) {
	name, err := s.disk.FreeName(target.Path, storage.SanitizeFilename(f.Name))
	if err != nil {
		return nil, err
	}
	location := vpath.FilePath(target.Path, name)

	rc, err := f.Open()
	if err != nil {
		return nil, apperror.Storage("read", f.Name, err)
	}
	defer rc.Close()

	limit := s.cfg.MaxFileSize
	if limit <= 0 {
		limit = f.Size
	}
	written, err := s.disk.WriteAtomic(target.Path, name, io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if written == 0 || written > limit {
		s.cleanup(location)
		return nil, apperror.Validation("file %s: content size %d does not match the allowed range", f.Name, written)
	}

	record := &models.UploadedFile{
		StoredFilename:   name,
		OriginalFilename: f.Name,
		FileURL:          location,
		FileSize:         written,
		FileType:         contentType(f),
		UploaderID:       uploader.ID,
		FolderID:         &target.ID,
		Notes:            notes,
	}

	err = s.store.Transaction(ctx, func(tx store.ArchiveStore) error {
		if submission != nil {
			order, err := tx.NextFileOrder(ctx, submission.ID)
			if err != nil {
				return err
			}
			record.DocumentSubmissionID = &submission.ID
			record.FileOrder = order
		}
		if err := tx.CreateUploadedFile(ctx, record); err != nil {
			return err
		}
		if submission != nil {
			return tx.AddToSubmission(ctx, submission.ID, 1, written, notes, time.Now())
		}
		return nil
	})
	if err != nil {
		s.cleanup(location)
		return nil, fmt.Errorf("failed to record %s: %w", location, err)
	}

	record.Uploader = uploader
	record.Folder = target
	return record, nil
}

func (s *Service) cleanup(location string) {
	if err := s.disk.Remove(location); err != nil {
		s.log.Error("Failed to remove '%s' after a failed upload: %v", location, err)
	}
}

// cleanNotes strips markup from notes. Notes are plain text served as
// JSON, so the entities the policy emits are decoded again.
func (s *Service) cleanNotes(notes string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(notes)))
}

func contentType(f File) string {
	if ct := strings.TrimSpace(f.ContentType); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension("." + storage.Extension(f.Name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
