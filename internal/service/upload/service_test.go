package upload_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

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

const examPath = "/2024-2025/first/PROF11/CS101/exam"

var testConfig = upload.Config{
	MaxFileSize:       1024,
	MaxFiles:          5,
	MaxBatchSize:      2048,
	AllowedExtensions: []string{"pdf", "docx", "txt"},
}

type fixture struct {
	store   *store.GORMStore
	disk    *storage.Disk
	uni     *testutil.University
	folders *folder.Service
	svc     *upload.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	disk := testutil.NewDisk(t)
	resolver := access.NewResolver(log.Discard(), nil)
	folders := folder.NewService(st, disk, resolver, nil, log.Discard())
	return &fixture{
		store:   st,
		disk:    disk,
		uni:     testutil.Seed(t, st),
		folders: folders,
		svc:     upload.NewService(testConfig, st, disk, folders, resolver, nil, log.Discard()),
	}
}

func (f *fixture) filesIn(t *testing.T, dir string) []string {
	t.Helper()
	exists, err := f.disk.DirExists(dir)
	require.NoError(t, err)
	if !exists {
		return nil
	}
	entries, err := afero.ReadDir(f.disk.Fs(), "/"+dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}

func pathRef(p string) upload.FolderRef {
	return upload.FolderRef{Path: p}
}

func TestUploadByPath(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	created, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{
		upload.NewFile("midterm.pdf", []byte("%PDF-1.4 midterm")),
		upload.NewFile("final exam.pdf", []byte("%PDF-1.4 final")),
	}, "<script>x</script>Midterm <b>and</b> final", u.ProfCS)
	require.NoError(t, err)
	require.Len(t, created, 2)

	dir := "2024-2025/first/PROF11/CS101 - Intro to Programming/Exams"
	assert.Equal(t, dir+"/midterm.pdf", created[0].FileURL)
	assert.Equal(t, "final exam.pdf", created[1].StoredFilename)
	assert.Equal(t, "application/pdf", created[0].FileType)
	assert.EqualValues(t, len("%PDF-1.4 midterm"), created[0].FileSize)
	assert.Equal(t, "Midterm and final", created[0].Notes)
	assert.Equal(t, 1, created[0].FileOrder)
	assert.Equal(t, 2, created[1].FileOrder)
	require.NotNil(t, created[0].DocumentSubmissionID)

	assert.ElementsMatch(t, []string{"midterm.pdf", "final exam.pdf"}, f.filesIn(t, dir))

	assignment, err := f.store.FindCourseAssignment(ctx, u.First.ID, u.CS101.ID, u.ProfCS.ID)
	require.NoError(t, err)
	sub, err := f.store.GetSubmission(ctx, assignment.ID, vpath.DocumentExam)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.FileCount)
	assert.EqualValues(t, created[0].FileSize+created[1].FileSize, sub.TotalSize)
	assert.Equal(t, "Midterm and final", sub.Notes)
	assert.NotNil(t, sub.SubmittedAt)

	stored, err := f.store.GetUploadedFile(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "PROF11", stored.Uploader.ExternalID)
}

func TestUploadFilenameCollision(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{upload.NewFile("report.pdf", []byte("one"))}, "", f.uni.ProfCS)
	require.NoError(t, err)
	second, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{upload.NewFile("report.pdf", []byte("two"))}, "", f.uni.ProfCS)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", first[0].StoredFilename)
	assert.Equal(t, "report(1).pdf", second[0].StoredFilename)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	for _, file := range append(first, second...) {
		exists, err := f.disk.Exists(file.FileURL)
		require.NoError(t, err)
		assert.True(t, exists, file.FileURL)
	}
}

func TestUploadKeepsNotesAsPlainText(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	created, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{
		upload.NewFile("qa.pdf", []byte("%PDF-1.4 qa")),
	}, `Q&A <b>session</b> on "final" & retake's`, u.ProfCS)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, `Q&A session on "final" & retake's`, created[0].Notes)

	assignment, err := f.store.FindCourseAssignment(ctx, u.First.ID, u.CS101.ID, u.ProfCS.ID)
	require.NoError(t, err)
	sub, err := f.store.GetSubmission(ctx, assignment.ID, vpath.DocumentExam)
	require.NoError(t, err)
	assert.Equal(t, `Q&A session on "final" & retake's`, sub.Notes)
}

func TestUploadSanitizesFilenames(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{
		upload.NewFile("../../etc/pass<wd>.txt", []byte("x")),
	}, "", f.uni.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, "pass_wd_.txt", created[0].StoredFilename)
	assert.Equal(t, "../../etc/pass<wd>.txt", created[0].OriginalFilename)
}

func TestUploadBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{
		upload.NewFile("a.pdf", []byte("a")),
		upload.NewFile("b.pdf", []byte("b")),
		upload.NewFile("c.pdf", []byte("c")),
		upload.NewFile("huge.pdf", make([]byte, 2000)),
	}, "", f.uni.ProfCS)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	var verr *apperror.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, "huge.pdf", verr.Problems[0].Field)

	var count int64
	require.NoError(t, f.store.DB().Model(&models.UploadedFile{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.filesIn(t, "2024-2025/first/PROF11/CS101 - Intro to Programming/Exams"))
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	many := make([]upload.File, 6)
	for i := range many {
		many[i] = upload.NewFile("f.pdf", []byte("x"))
	}

	tests := []struct {
		name  string
		files []upload.File
	}{
		{"no files", nil},
		{"too many files", many},
		{"empty file", []upload.File{upload.NewFile("empty.pdf", nil)}},
		{"bad extension", []upload.File{upload.NewFile("tool.exe", []byte("MZ"))}},
		{"no extension", []upload.File{upload.NewFile("README", []byte("x"))}},
		{"blank name", []upload.File{upload.NewFile("  ", []byte("x"))}},
		{"batch too large", []upload.File{
			upload.NewFile("a.pdf", make([]byte, 1000)),
			upload.NewFile("b.pdf", make([]byte, 1000)),
			upload.NewFile("c.pdf", make([]byte, 1000)),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, pathRef(examPath), tt.files, "", f.uni.ProfCS)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestUploadFolderReference(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	files := []upload.File{upload.NewFile("a.pdf", []byte("a"))}
	id := uint(1)

	_, err := f.svc.Upload(ctx, upload.FolderRef{FolderID: &id, Path: examPath}, files, "", f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Upload(ctx, upload.FolderRef{}, files, "", f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	missing := uint(9999)
	_, err = f.svc.Upload(ctx, upload.FolderRef{FolderID: &missing}, files, "", f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUploadByFolderID(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	folders, err := f.folders.EnsureCourseStructure(ctx, u.ProfCS.ID, u.CS201.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	syllabus := folders[1]
	require.Equal(t, "Syllabus", syllabus.Name)

	created, err := f.svc.Upload(ctx, upload.FolderRef{FolderID: &syllabus.ID}, []upload.File{
		upload.NewFile("outline.docx", []byte("PK")),
	}, "", u.ProfCS)
	require.NoError(t, err)
	require.NotNil(t, created[0].DocumentSubmissionID)

	// Files directly in the course folder belong to no submission.
	loose, err := f.svc.Upload(ctx, upload.FolderRef{FolderID: &folders[0].ID}, []upload.File{
		upload.NewFile("misc.pdf", []byte("x")),
	}, "", u.ProfCS)
	require.NoError(t, err)
	assert.Nil(t, loose[0].DocumentSubmissionID)
}

func TestUploadUnauthorizedBeforeDisk(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni
	files := []upload.File{upload.NewFile("a.pdf", []byte("a"))}

	for _, user := range []*models.User{u.ProfCS2, u.HODCS, u.Dean, u.Admin, u.ProfMath, nil} {
		_, err := f.svc.Upload(ctx, pathRef(examPath), files, "", user)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	}

	var count int64
	require.NoError(t, f.store.DB().Model(&models.Folder{}).Count(&count).Error)
	assert.Zero(t, count)

	folders, err := f.folders.EnsureCourseStructure(ctx, u.ProfCS.ID, u.CS101.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	exams := folders[2]

	_, err = f.svc.Upload(ctx, upload.FolderRef{FolderID: &exams.ID}, files, "", u.ProfCS2)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Empty(t, f.filesIn(t, exams.Path))

	root, err := f.folders.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, upload.FolderRef{FolderID: &root.ID}, files, "", u.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Empty(t, f.filesIn(t, root.Path))
}

func TestUploadStopsAtStorageFailure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	broken := upload.File{
		Name: "broken.pdf",
		Size: 3,
		Open: func() (io.ReadCloser, error) { return nil, errors.New("client went away") },
	}

	created, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{
		upload.NewFile("ok.pdf", []byte("ok")),
		broken,
		upload.NewFile("never.pdf", []byte("no")),
	}, "", f.uni.ProfCS)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrStorage)
	require.Len(t, created, 1)
	assert.Equal(t, "ok.pdf", created[0].StoredFilename)

	exists, err := f.disk.Exists(created[0].FileURL)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadRejectsOversizedContent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// Declared size lies about the content.
	liar := upload.NewFile("liar.pdf", []byte(strings.Repeat("x", 1500)))
	liar.Size = 10

	_, err := f.svc.Upload(ctx, pathRef(examPath), []upload.File{liar}, "", f.uni.ProfCS)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Empty(t, f.filesIn(t, "2024-2025/first/PROF11/CS101 - Intro to Programming/Exams"))
}

// failingStore fails every file insert, also inside transactions.
type failingStore struct {
	store.ArchiveStore
}

func (s *failingStore) Transaction(ctx context.Context, fn func(tx store.ArchiveStore) error) error {
	return s.ArchiveStore.Transaction(ctx, func(tx store.ArchiveStore) error {
		return fn(&failingStore{ArchiveStore: tx})
	})
}

func (s *failingStore) CreateUploadedFile(ctx context.Context, file *models.UploadedFile) error {
	return errors.New("disk quota for rows exceeded")
}

func TestUploadRemovesFileWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	resolver := access.NewResolver(log.Discard(), nil)
	failing := &failingStore{ArchiveStore: f.store}
	svc := upload.NewService(testConfig, failing, f.disk, f.folders, resolver, nil, log.Discard())

	created, err := svc.Upload(ctx, pathRef(examPath), []upload.File{upload.NewFile("a.pdf", []byte("a"))}, "", f.uni.ProfCS)
	require.Error(t, err)
	assert.Empty(t, created)
	assert.Empty(t, f.filesIn(t, "2024-2025/first/PROF11/CS101 - Intro to Programming/Exams"))
}
