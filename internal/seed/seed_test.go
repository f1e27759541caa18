package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwantia/docarchive/internal/seed"
	"github.com/mwantia/docarchive/internal/testutil"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	fx, err := seed.Parse(testutil.SeedYAML())
	require.NoError(t, err)

	first, err := seed.Apply(ctx, st, fx)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{
		Departments:   2,
		Users:         9,
		AcademicYears: 2,
		Semesters:     3,
		Courses:       3,
		Assignments:   6,
	}, first)

	second, err := seed.Apply(ctx, st, fx)
	require.NoError(t, err)
	assert.Zero(t, second.Total())

	hod, err := st.GetUserByExternalID(ctx, "HODCS")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHOD, hod.Role)
	require.NotNil(t, hod.Department)
	assert.Equal(t, "cs", hod.Department.Shortcut)
	assert.True(t, hod.Active)

	year, err := st.GetAcademicYearByCode(ctx, "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, 2024, year.StartYear)
	assert.Equal(t, 2025, year.EndYear)
}

func TestApplyRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	fx := &seed.Fixtures{
		Departments: []seed.Department{{Shortcut: "cs", Name: "Computer Science"}},
		Users: []seed.User{{
			ExternalID: "X1", Email: "x@uni.example", FirstName: "X", LastName: "Y",
			Role: "JANITOR",
		}},
	}

	_, err := seed.Apply(ctx, st, fx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = st.GetDepartmentByShortcut(ctx, "cs")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestApplyRejectsNonProfessorAssignment(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewStore(t)

	fx, err := seed.Parse(testutil.SeedYAML())
	require.NoError(t, err)
	fx.Assignments = append(fx.Assignments, seed.Assignment{
		Year: "2024-2025", Semester: "first", Course: "CS101", Professor: "HODCS",
	})

	_, err = seed.Apply(ctx, st, fx)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, testutil.SeedYAML(), 0o644))

	fx, err := seed.Load(path)
	require.NoError(t, err)
	assert.Len(t, fx.Courses, 3)
	assert.Equal(t, "PROF77", fx.Assignments[3].Professor)

	_, err = seed.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = seed.Parse([]byte("departments: {"))
	assert.Error(t, err)
}
