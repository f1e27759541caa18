// Package testutil builds in-memory archives for tests: a migrated SQLite
// store, a memory backed upload root and a small seeded university.
package testutil

import (
	"context"
	_ "embed"
	"fmt"
	"testing"

	"github.com/mwantia/docarchive/internal/seed"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/storage"
	"github.com/mwantia/docarchive/pkg/vpath"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

//go:embed university.yaml
var universityYAML []byte

// NewStore opens a private in-memory database with the full schema.
func NewStore(t *testing.T) *store.GORMStore {
	t.Helper()
	ctx := context.Background()

	st, err := store.New(&store.Config{
		Type:   store.DatabaseTypeSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	require.NoError(t, st.Connect(ctx))
	require.NoError(t, st.Migrate(ctx))

	t.Cleanup(func() { st.Close() })
	return st
}

// NewDisk returns an upload root backed by memory.
func NewDisk(t *testing.T) *storage.Disk {
	t.Helper()
	return storage.NewDiskFs(afero.NewMemMapFs())
}

// University holds the seeded rows most tests refer to.
type University struct {
	CS   *models.Department
	Math *models.Department

	Admin    *models.User
	Dean     *models.User
	HODCS    *models.User
	HODMath  *models.User
	ProfCS   *models.User // PROF11 Zoe Zimmer, teaches CS101 and CS201
	ProfCS2  *models.User // PROF12 Bob Adams, teaches CS101
	ProfMath *models.User // PROF77 Carla Diaz, teaches MATH101
	ProfIdle *models.User // PROF55, no assignments
	ProfLost *models.User // PROF99, no department, teaches MATH101

	Year      *models.AcademicYear // 2024-2025
	OtherYear *models.AcademicYear // 2023-2024
	First     *models.Semester
	Second    *models.Semester
	OtherSem  *models.Semester // 2023-2024 first

	CS101   *models.Course
	CS201   *models.Course
	MATH101 *models.Course
}

// Seed loads the fixture university into st.
func Seed(t *testing.T, st store.ArchiveStore) *University {
	t.Helper()
	ctx := context.Background()

	fx, err := seed.Parse(universityYAML)
	require.NoError(t, err)
	_, err = seed.Apply(ctx, st, fx)
	require.NoError(t, err)

	u := &University{}
	u.CS = must(st.GetDepartmentByShortcut(ctx, "cs"))
	u.Math = must(st.GetDepartmentByShortcut(ctx, "math"))

	user := func(id string) *models.User { return must(st.GetUserByExternalID(ctx, id)) }
	u.Admin = user("ADM1")
	u.Dean = user("DEAN1")
	u.HODCS = user("HODCS")
	u.HODMath = user("HODMATH")
	u.ProfCS = user("PROF11")
	u.ProfCS2 = user("PROF12")
	u.ProfMath = user("PROF77")
	u.ProfIdle = user("PROF55")
	u.ProfLost = user("PROF99")

	u.Year = must(st.GetAcademicYearByCode(ctx, "2024-2025"))
	u.OtherYear = must(st.GetAcademicYearByCode(ctx, "2023-2024"))
	u.First = must(st.GetSemesterByType(ctx, u.Year.ID, vpath.SemesterFirst))
	u.Second = must(st.GetSemesterByType(ctx, u.Year.ID, vpath.SemesterSecond))
	u.OtherSem = must(st.GetSemesterByType(ctx, u.OtherYear.ID, vpath.SemesterFirst))

	u.CS101 = must(st.GetCourseByCode(ctx, "CS101"))
	u.CS201 = must(st.GetCourseByCode(ctx, "CS201"))
	u.MATH101 = must(st.GetCourseByCode(ctx, "MATH101"))

	return u
}

// SeedYAML returns the raw fixture file.
func SeedYAML() []byte {
	return universityYAML
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("testutil: fixture lookup failed: %v", err))
	}
	return v
}
