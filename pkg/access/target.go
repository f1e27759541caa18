package access

import (
	"fmt"

	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/vpath"
)

// Level is the granularity of a permission target. The path levels line up
// with vpath.Depth; LevelFile is one below a document type bucket.
type Level int

const (
	LevelYear         = Level(vpath.DepthYear)
	LevelSemester     = Level(vpath.DepthSemester)
	LevelProfessor    = Level(vpath.DepthProfessor)
	LevelCourse       = Level(vpath.DepthCourse)
	LevelDocumentType = Level(vpath.DepthDocumentType)
	LevelFile         = LevelDocumentType + 1
)

func (l Level) String() string {
	if l == LevelFile {
		return "FILE"
	}
	return vpath.Depth(l).String()
}

// Target is the resolved subject of a permission decision. Owner is the
// professor the subtree belongs to and must carry its Department (or at
// least DepartmentID). A nil Owner at professor level or below denies.
type Target struct {
	Name  string
	Level Level
	Owner *models.User
}

func (t Target) String() string {
	return fmt.Sprintf("%s %s", t.Level, t.Name)
}

// PathTarget targets a virtual path. owner is the user behind the professor
// segment and may be nil above professor level.
func PathTarget(p vpath.VirtualPath, owner *models.User) Target {
	return Target{
		Name:  p.String(),
		Level: Level(p.Depth()),
		Owner: owner,
	}
}

// FileTarget targets an uploaded file, owned by its uploader.
func FileTarget(f *models.UploadedFile) Target {
	return Target{
		Name:  fmt.Sprintf("file #%d", f.ID),
		Level: LevelFile,
		Owner: f.Uploader,
	}
}

// FolderTarget targets a stored folder, owned by its owner.
func FolderTarget(f *models.Folder) Target {
	level := LevelDocumentType
	switch f.Kind {
	case models.FolderProfessorRoot:
		level = LevelProfessor
	case models.FolderCourse:
		level = LevelCourse
	}

	return Target{
		Name:  f.Path,
		Level: level,
		Owner: f.Owner,
	}
}

// AssignmentTarget targets a course assignment, owned by its professor.
func AssignmentTarget(a *models.CourseAssignment) Target {
	return Target{
		Name:  fmt.Sprintf("course assignment #%d", a.ID),
		Level: LevelCourse,
		Owner: a.Professor,
	}
}

// ProfessorTarget targets the whole subtree of one professor.
func ProfessorTarget(professor *models.User) Target {
	name := "professor"
	if professor != nil {
		name = "professor " + professor.ExternalID
	}
	return Target{
		Name:  name,
		Level: LevelProfessor,
		Owner: professor,
	}
}
