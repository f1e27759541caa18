package vpath

import (
	"fmt"
	"strings"
)

// SemesterType is the canonical lowercase semester segment.
type SemesterType string

const (
	SemesterFirst  SemesterType = "first"
	SemesterSecond SemesterType = "second"
	SemesterSummer SemesterType = "summer"
)

// SemesterTypes returns all semester types in calendar order.
func SemesterTypes() []SemesterType {
	return []SemesterType{SemesterFirst, SemesterSecond, SemesterSummer}
}

// ParseSemesterType parses a semester segment case-insensitively.
func ParseSemesterType(s string) (SemesterType, error) {
	t := SemesterType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case SemesterFirst, SemesterSecond, SemesterSummer:
		return t, nil
	}
	return "", fmt.Errorf("unknown semester type %q (expected first, second or summer)", s)
}

// Label returns the human readable name, e.g. "First Semester".
func (t SemesterType) Label() string {
	switch t {
	case SemesterFirst:
		return "First Semester"
	case SemesterSecond:
		return "Second Semester"
	case SemesterSummer:
		return "Summer Semester"
	}
	return string(t)
}

// DocumentType is a category of required course document.
type DocumentType string

const (
	DocumentSyllabus     DocumentType = "syllabus"
	DocumentExam         DocumentType = "exam"
	DocumentAssignment   DocumentType = "assignment"
	DocumentProjectDocs  DocumentType = "project_docs"
	DocumentLectureNotes DocumentType = "lecture_notes"
	DocumentOther        DocumentType = "other"
)

var documentTypes = []struct {
	typ    DocumentType
	label  string
	folder string
}{
	{DocumentSyllabus, "Syllabus", "Syllabus"},
	{DocumentExam, "Exam", "Exams"},
	{DocumentAssignment, "Assignment", "Assignments"},
	{DocumentProjectDocs, "Project Documents", "Project Docs"},
	{DocumentLectureNotes, "Lecture Notes", "Course Notes"},
	{DocumentOther, "Other", "Other"},
}

// DocumentTypes returns every document type in display order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, 0, len(documentTypes))
	for _, d := range documentTypes {
		out = append(out, d.typ)
	}
	return out
}

// ParseDocumentType parses a document type segment case-insensitively.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToLower(strings.TrimSpace(s)))
	for _, d := range documentTypes {
		if d.typ == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Label returns the display label, e.g. "Lecture Notes".
func (d DocumentType) Label() string {
	for _, dt := range documentTypes {
		if dt.typ == d {
			return dt.label
		}
	}
	return string(d)
}

// FolderName returns the name of the course subfolder holding this type.
func (d DocumentType) FolderName() string {
	for _, dt := range documentTypes {
		if dt.typ == d {
			return dt.folder
		}
	}
	return string(d)
}

// DocumentTypeForFolder maps a course subfolder name back to its document type.
func DocumentTypeForFolder(name string) (DocumentType, bool) {
	for _, dt := range documentTypes {
		if strings.EqualFold(dt.folder, name) {
			return dt.typ, true
		}
	}
	return "", false
}

// StandardSubfolders are created beneath every course folder.
func StandardSubfolders() []string {
	return []string{
		DocumentSyllabus.FolderName(),
		DocumentExam.FolderName(),
		DocumentLectureNotes.FolderName(),
		DocumentAssignment.FolderName(),
	}
}
