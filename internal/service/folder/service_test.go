package folder_test

import (
	"context"
	"sync"
	"testing"

	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/internal/testutil"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/docarchive/pkg/vpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *store.GORMStore
	disk  *storage.Disk
	uni   *testutil.University
	svc   *folder.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	disk := testutil.NewDisk(t)
	return &fixture{
		store: st,
		disk:  disk,
		uni:   testutil.Seed(t, st),
		svc:   folder.NewService(st, disk, access.NewResolver(log.Discard(), nil), nil, log.Discard()),
	}
}

func TestEnsureProfessorRootIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	first, err := f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-2025/first/PROF11", first.Path)
	assert.Equal(t, "Zoe Zimmer", first.Name)
	assert.Equal(t, models.FolderProfessorRoot, first.Kind)
	assert.Nil(t, first.ParentID)

	second, err := f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Path, second.Path)

	var count int64
	require.NoError(t, f.store.DB().Model(&models.Folder{}).Where("path = ?", first.Path).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	exists, err := f.disk.DirExists(first.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEnsureProfessorRootValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	_, err := f.svc.EnsureProfessorRoot(ctx, 9999, u.Year.ID, u.First.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, 9999, u.First.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.OtherSem.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.EnsureProfessorRoot(ctx, u.HODCS.ID, u.Year.ID, u.First.ID)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestEnsureCourseStructure(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	folders, err := f.svc.EnsureCourseStructure(ctx, u.ProfCS.ID, u.CS101.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	require.Len(t, folders, 1+len(vpath.StandardSubfolders()))

	course := folders[0]
	assert.Equal(t, "2024-2025/first/PROF11/CS101 - Intro to Programming", course.Path)
	assert.Equal(t, models.FolderCourse, course.Kind)
	require.NotNil(t, course.CourseID)
	assert.Equal(t, u.CS101.ID, *course.CourseID)

	for i, name := range vpath.StandardSubfolders() {
		sub := folders[i+1]
		assert.Equal(t, course.Path+"/"+name, sub.Path)
		assert.Equal(t, models.FolderSubfolder, sub.Kind)
		require.NotNil(t, sub.ParentID)
		assert.Equal(t, course.ID, *sub.ParentID)
		assert.Equal(t, u.ProfCS.ID, sub.OwnerID)

		exists, err := f.disk.DirExists(sub.Path)
		require.NoError(t, err)
		assert.True(t, exists, sub.Path)
	}

	again, err := f.svc.EnsureCourseStructure(ctx, u.ProfCS.ID, u.CS101.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	for i := range folders {
		assert.Equal(t, folders[i].ID, again[i].ID)
	}

	var count int64
	require.NoError(t, f.store.DB().Model(&models.Folder{}).Count(&count).Error)
	assert.EqualValues(t, 2+len(vpath.StandardSubfolders()), count)
}

func TestEnsureCourseStructureHealsPartialState(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	root, err := f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)

	// Course folder row without subfolders and without its directory.
	courseID := u.CS201.ID
	course := &models.Folder{
		Path:           "2024-2025/first/PROF11/CS201 - Data Structures",
		Name:           "CS201 - Data Structures",
		Kind:           models.FolderCourse,
		OwnerID:        u.ProfCS.ID,
		ParentID:       &root.ID,
		AcademicYearID: u.Year.ID,
		SemesterID:     u.First.ID,
		CourseID:       &courseID,
	}
	require.NoError(t, f.store.CreateFolder(ctx, course))

	folders, err := f.svc.EnsureCourseStructure(ctx, u.ProfCS.ID, u.CS201.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, folders[0].ID)
	assert.Len(t, folders, 1+len(vpath.StandardSubfolders()))

	exists, err := f.disk.DirExists(course.Path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResolveOrCreateByPath(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	sub, err := f.svc.ResolveOrCreateByPath(ctx, "/2024-2025/first/PROF11/CS101/exam", u.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, "2024-2025/first/PROF11/CS101 - Intro to Programming/Exams", sub.Path)
	assert.Equal(t, models.FolderSubfolder, sub.Kind)

	// Non-standard document types are created on demand.
	other, err := f.svc.ResolveOrCreateByPath(ctx, "2024-2025/FIRST/PROF11/CS101/Project_Docs/", u.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, "2024-2025/first/PROF11/CS101 - Intro to Programming/Project Docs", other.Path)

	again, err := f.svc.ResolveOrCreateByPath(ctx, "/2024-2025/first/PROF11/CS101/exam", u.ProfCS)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID)
}

func TestResolveOrCreateByPathErrors(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	tests := []struct {
		name string
		path string
		user *models.User
		want error
	}{
		{"too shallow", "/2024-2025/first/PROF11/CS101", u.ProfCS, apperror.ErrValidation},
		{"malformed", "/2024/first/PROF11/CS101/exam", u.ProfCS, apperror.ErrValidation},
		{"unknown year", "/2030-2031/first/PROF11/CS101/exam", u.ProfCS, apperror.ErrNotFound},
		{"unknown semester", "/2024-2025/summer/PROF11/CS101/exam", u.ProfCS, apperror.ErrNotFound},
		{"unknown professor", "/2024-2025/first/PROF00/CS101/exam", u.ProfCS, apperror.ErrNotFound},
		{"not assigned", "/2024-2025/first/PROF11/MATH101/exam", u.ProfCS, apperror.ErrNotFound},
		{"other professor", "/2024-2025/first/PROF12/CS101/exam", u.ProfCS, apperror.ErrUnauthorized},
		{"other department", "/2024-2025/first/PROF77/MATH101/exam", u.ProfCS, apperror.ErrUnauthorized},
		{"head of department", "/2024-2025/first/PROF11/CS101/exam", u.HODCS, apperror.ErrUnauthorized},
		{"deanship", "/2024-2025/first/PROF11/CS101/exam", u.Dean, apperror.ErrUnauthorized},
		{"anonymous", "/2024-2025/first/PROF11/CS101/exam", nil, apperror.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ResolveOrCreateByPath(ctx, tt.path, tt.user)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, f.store.DB().Model(&models.Folder{}).Count(&count).Error)
	assert.Zero(t, count)
}

// racingStore hides existing folders from the first lookup, as if another
// writer inserted them between the lookup and the insert.
type racingStore struct {
	store.ArchiveStore
	mutex sync.Mutex
	hide  map[string]bool
}

func (r *racingStore) FindProfessorRoot(ctx context.Context, ownerID, yearID, semesterID uint) (*models.Folder, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.hide["root"] {
		r.hide["root"] = false
		return nil, apperror.NotFound("professor root folder", ownerID)
	}
	return r.ArchiveStore.FindProfessorRoot(ctx, ownerID, yearID, semesterID)
}

func TestCreateRaceReturnsExistingRow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	winner, err := f.svc.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)

	racing := &racingStore{ArchiveStore: f.store, hide: map[string]bool{"root": true}}
	loser := folder.NewService(racing, f.disk, access.NewResolver(log.Discard(), nil), nil, log.Discard())

	got, err := loser.EnsureProfessorRoot(ctx, u.ProfCS.ID, u.Year.ID, u.First.ID)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.False(t, racing.hide["root"])
}

func TestConcurrentEnsureCreatesOneRow(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			folders, err := f.svc.EnsureCourseStructure(ctx, u.ProfCS2.ID, u.CS101.ID, u.Year.ID, u.First.ID)
			errs[i] = err
			if err == nil {
				ids[i] = folders[0].ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, f.store.DB().Model(&models.Folder{}).Count(&count).Error)
	assert.EqualValues(t, 2+len(vpath.StandardSubfolders()), count)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	u := f.uni

	r, err := f.svc.Resolve(ctx, vpath.MustParse("/2024-2025/first/PROF77/MATH101/syllabus"))
	require.NoError(t, err)
	assert.Equal(t, u.Year.ID, r.Year.ID)
	assert.Equal(t, u.First.ID, r.Semester.ID)
	assert.Equal(t, u.ProfMath.ID, r.Professor.ID)
	assert.Equal(t, u.MATH101.ID, r.Course.ID)
	require.NotNil(t, r.Assignment)

	target := r.Target()
	assert.Equal(t, access.LevelDocumentType, target.Level)
	assert.Equal(t, u.ProfMath.ID, target.Owner.ID)

	r, err = f.svc.Resolve(ctx, vpath.MustParse("/2024-2025"))
	require.NoError(t, err)
	assert.Nil(t, r.Semester)
	assert.Nil(t, r.Professor)

	_, err = f.svc.Resolve(ctx, vpath.MustParse("/2024-2025/first/HODCS"))
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
