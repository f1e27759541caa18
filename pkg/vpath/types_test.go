package vpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemesterLabels(t *testing.T) {
	assert.Equal(t, "First Semester", SemesterFirst.Label())
	assert.Equal(t, "Second Semester", SemesterSecond.Label())
	assert.Equal(t, "Summer Semester", SemesterSummer.Label())

	got, err := ParseSemesterType(" Summer ")
	require.NoError(t, err)
	assert.Equal(t, SemesterSummer, got)

	_, err = ParseSemesterType("autumn")
	assert.Error(t, err)
}

func TestDocumentTypeFolders(t *testing.T) {
	for _, dt := range DocumentTypes() {
		back, ok := DocumentTypeForFolder(dt.FolderName())
		require.True(t, ok, dt)
		assert.Equal(t, dt, back)
		assert.NotEmpty(t, dt.Label())
	}

	dt, ok := DocumentTypeForFolder("course notes")
	require.True(t, ok)
	assert.Equal(t, DocumentLectureNotes, dt)

	_, ok = DocumentTypeForFolder("Random")
	assert.False(t, ok)
}

func TestStandardSubfolders(t *testing.T) {
	assert.Equal(t, []string{"Syllabus", "Exams", "Course Notes", "Assignments"}, StandardSubfolders())
}

func TestFolderPaths(t *testing.T) {
	root := ProfessorRootPath("2024-2025", SemesterFirst, "PROF77")
	assert.Equal(t, "2024-2025/first/PROF77", root)

	course := CourseFolderPath(root, "MATH101", "Calculus I")
	assert.Equal(t, "2024-2025/first/PROF77/MATH101 - Calculus I", course)

	assert.Equal(t, "2024-2025/first/PROF77/MATH101 - Calculus I/Exams", SubfolderPath(course, "Exams"))
	assert.Equal(t, "MATH101 - Algebra-Geometry", CourseFolderName("MATH101", "Algebra/Geometry"))
	assert.Equal(t, "MATH101", CourseFolderName("MATH101", "  "))
	assert.Equal(t, "a/b/report.pdf", FilePath("a/b/", "report.pdf"))
}
