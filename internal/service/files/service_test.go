package files_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/mwantia/docarchive/internal/service/files"
	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/internal/service/upload"
	"github.com/mwantia/docarchive/internal/testutil"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/docarchive/pkg/vpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *store.GORMStore
	fs    afero.Fs
	disk  *storage.Disk
	uni   *testutil.University
	svc   *files.Service
	files []models.UploadedFile
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st := testutil.NewStore(t)
	fs := afero.NewMemMapFs()
	disk := storage.NewDiskFs(fs)
	u := testutil.Seed(t, st)
	resolver := access.NewResolver(log.Discard(), nil)

	folders := folder.NewService(st, disk, resolver, nil, log.Discard())
	uploads := upload.NewService(upload.Config{
		MaxFileSize:       1 << 20,
		MaxFiles:          10,
		MaxBatchSize:      1 << 21,
		AllowedExtensions: []string{"pdf", "png", "docx", "txt"},
	}, st, disk, folders, resolver, nil, log.Discard())

	created, err := uploads.Upload(ctx, upload.FolderRef{Path: "/2024-2025/first/PROF11/CS101/exam"}, []upload.File{
		upload.NewFile("midterm.pdf", []byte("%PDF-1.4")),
		upload.NewFile("diagram.png", []byte("\x89PNG")),
	}, "", u.ProfCS)
	require.NoError(t, err)

	return &fixture{
		store: st,
		fs:    fs,
		disk:  disk,
		uni:   u,
		svc:   files.NewService(st, disk, resolver, nil, log.Discard()),
		files: created,
	}
}

func TestGetAppliesReadGate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id := f.files[0].ID

	for _, user := range []*models.User{f.uni.ProfCS, f.uni.ProfCS2, f.uni.HODCS, f.uni.Dean, f.uni.Admin} {
		got, err := f.svc.Get(ctx, id, user)
		require.NoError(t, err)
		assert.Equal(t, "midterm.pdf", got.OriginalFilename)
	}

	for _, user := range []*models.User{f.uni.ProfMath, f.uni.HODMath, f.uni.ProfLost, nil} {
		_, err := f.svc.Get(ctx, id, user)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}

	_, err := f.svc.Get(ctx, 9999, f.uni.HODMath)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestOrphanedUploaderFailsClosed(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	orphan := &models.UploadedFile{
		StoredFilename:   "old.pdf",
		OriginalFilename: "old.pdf",
		FileURL:          "legacy/old.pdf",
		FileType:         "application/pdf",
		UploaderID:       4242,
	}
	require.NoError(t, f.store.CreateUploadedFile(ctx, orphan))

	_, err := f.svc.Get(ctx, orphan.ID, f.uni.HODCS)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = f.svc.Get(ctx, orphan.ID, f.uni.Dean)
	assert.NoError(t, err)

	_, err = f.svc.Delete(ctx, orphan.ID, f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	file, content, err := f.svc.Open(ctx, f.files[0].ID, f.uni.HODCS)
	require.NoError(t, err)
	defer content.Close()

	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, f.files[0].FileURL, file.FileURL)

	require.NoError(t, f.disk.Remove(f.files[1].FileURL))
	_, _, err = f.svc.Open(ctx, f.files[1].ID, f.uni.HODCS)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	pdf, err := f.svc.Preview(ctx, f.files[0].ID, f.uni.Dean)
	require.NoError(t, err)
	assert.Equal(t, files.PreviewPDF, pdf.PreviewType)
	assert.True(t, pdf.Previewable)

	png, err := f.svc.Preview(ctx, f.files[1].ID, f.uni.ProfCS2)
	require.NoError(t, err)
	assert.Equal(t, files.PreviewImage, png.PreviewType)

	_, err = f.svc.Preview(ctx, f.files[1].ID, f.uni.ProfMath)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        files.PreviewType
	}{
		{"application/pdf", "a.pdf", files.PreviewPDF},
		{"image/jpeg", "a.jpg", files.PreviewImage},
		{"text/plain; charset=utf-8", "a.txt", files.PreviewText},
		{"application/json", "a.json", files.PreviewText},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "a.docx", files.PreviewOffice},
		{"application/msword", "a.doc", files.PreviewOffice},
		{"video/mp4", "a.mp4", files.PreviewVideo},
		{"audio/mpeg", "a.mp3", files.PreviewAudio},
		{"application/zip", "a.zip", files.PreviewUnsupported},
		{"", "slides.pptx", files.PreviewOffice},
		{"application/octet-stream", "notes.md", files.PreviewText},
		{"", "blob", files.PreviewUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, files.Classify(tt.contentType, tt.filename))
		})
	}

	assert.False(t, files.PreviewOffice.Previewable())
	assert.False(t, files.PreviewUnsupported.Previewable())
	assert.True(t, files.PreviewAudio.Previewable())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	target := f.files[0]

	for _, user := range []*models.User{f.uni.ProfCS2, f.uni.HODCS, f.uni.Dean, f.uni.Admin} {
		_, err := f.svc.Delete(ctx, target.ID, user)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}

	result, err := f.svc.Delete(ctx, target.ID, f.uni.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, files.DeleteResult{FileID: target.ID, StoredPath: target.FileURL, Cleanup: files.CleanupOK}, *result)

	_, err = f.store.GetUploadedFile(ctx, target.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	exists, err := f.disk.Exists(target.FileURL)
	require.NoError(t, err)
	assert.False(t, exists)

	assignment, err := f.store.FindCourseAssignment(ctx, f.uni.First.ID, f.uni.CS101.ID, f.uni.ProfCS.ID)
	require.NoError(t, err)
	sub, err := f.store.GetSubmission(ctx, assignment.ID, vpath.DocumentExam)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.FileCount)
	assert.EqualValues(t, f.files[1].FileSize, sub.TotalSize)

	_, err = f.svc.Delete(ctx, target.ID, f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

// stuckFs refuses to remove anything.
type stuckFs struct {
	afero.Fs
}

func (s stuckFs) Remove(name string) error {
	return &os.PathError{Op: "remove", Path: name, Err: errors.New("device busy")}
}

func TestDeleteReportsCleanupFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	target := f.files[1]

	svc := files.NewService(f.store, storage.NewDiskFs(stuckFs{Fs: f.fs}), access.NewResolver(log.Discard(), nil), nil, log.Discard())

	result, err := svc.Delete(ctx, target.ID, f.uni.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, files.CleanupFailed, result.Cleanup)
	assert.Contains(t, result.CleanupError, "device busy")

	_, err = f.store.GetUploadedFile(ctx, target.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	exists, err := f.disk.Exists(target.FileURL)
	require.NoError(t, err)
	assert.True(t, exists)
}
