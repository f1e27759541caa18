package vpath

import (
	"fmt"
	"strings"
)

// Folder paths are the storage form of the hierarchy: no leading slash,
// course segment rendered as "{code} - {name}". They double as the
// directory layout below the upload root.

// ProfessorRootPath returns "{yearCode}/{semester}/{professorID}".
func ProfessorRootPath(yearCode string, semester SemesterType, professorID string) string {
	return joinFolder(yearCode, string(semester), professorID)
}

// CourseFolderName returns the display and directory name of a course folder.
func CourseFolderName(code, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return sanitizeFolderSegment(code)
	}
	return sanitizeFolderSegment(fmt.Sprintf("%s - %s", code, name))
}

// CourseFolderPath returns "{professorRoot}/{code} - {name}".
func CourseFolderPath(professorRoot, code, name string) string {
	return joinFolder(professorRoot, CourseFolderName(code, name))
}

// SubfolderPath returns "{coursePath}/{subfolder}".
func SubfolderPath(coursePath, subfolder string) string {
	return joinFolder(coursePath, sanitizeFolderSegment(subfolder))
}

// FilePath returns the upload-root relative location of a stored file.
func FilePath(folderPath, storedFilename string) string {
	return joinFolder(folderPath, storedFilename)
}

func joinFolder(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// sanitizeFolderSegment keeps a display name usable as a single directory.
func sanitizeFolderSegment(s string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", "\x00", "")
	s = strings.TrimSpace(r.Replace(s))
	s = strings.Trim(s, ".")
	return s
}
