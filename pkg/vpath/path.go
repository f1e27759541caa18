// Package vpath parses and formats the virtual archive path
//
//	/{yearCode}/{semesterType}/{professorExternalId}/{courseCode}/{documentType}
//
// Segments may only be omitted from the end. The number of segments present
// decides what the path denotes; Parse records that once as the path Depth so
// consumers never count segments themselves.
package vpath

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mwantia/docarchive/pkg/apperror"
)

// Root is the tree root marker. It is not a parseable node path.
const Root = "/"

// Depth is the kind of node a virtual path denotes.
type Depth int

const (
	DepthYear Depth = iota + 1
	DepthSemester
	DepthProfessor
	DepthCourse
	DepthDocumentType
)

// MaxDepth is the number of segments of a fully specified path.
const MaxDepth = DepthDocumentType

func (d Depth) String() string {
	switch d {
	case DepthYear:
		return "YEAR"
	case DepthSemester:
		return "SEMESTER"
	case DepthProfessor:
		return "PROFESSOR"
	case DepthCourse:
		return "COURSE"
	case DepthDocumentType:
		return "DOCUMENT_TYPE"
	}
	return "UNKNOWN"
}

var (
	yearCodePattern = regexp.MustCompile(`^\d{4}-\d{4}$`)
	identPattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// VirtualPath is a parsed virtual path. The zero value is invalid; obtain
// values from Parse or from Truncate/Child of a parsed path.
type VirtualPath struct {
	YearCode     string
	Semester     SemesterType
	ProfessorID  string
	CourseCode   string
	DocumentType DocumentType

	depth Depth
}

// Parse parses a virtual path. Leading and trailing slashes are ignored.
func Parse(path string) (VirtualPath, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return VirtualPath{}, apperror.Validation("path %q does not denote a node", path)
	}

	segments := strings.Split(trimmed, "/")
	if len(segments) > int(MaxDepth) {
		return VirtualPath{}, apperror.Validation("path %q has %d segments, at most %d allowed", path, len(segments), MaxDepth)
	}

	var vp VirtualPath
	for i, segment := range segments {
		if segment == "" {
			return VirtualPath{}, apperror.Validation("path %q contains an empty segment at position %d", path, i+1)
		}

		depth := Depth(i + 1)
		switch depth {
		case DepthYear:
			if !yearCodePattern.MatchString(segment) {
				return VirtualPath{}, apperror.Validation("invalid academic year code %q (expected YYYY-YYYY)", segment)
			}
			vp.YearCode = segment
		case DepthSemester:
			t, err := ParseSemesterType(segment)
			if err != nil {
				return VirtualPath{}, apperror.Validation("%v", err)
			}
			vp.Semester = t
		case DepthProfessor:
			if !identPattern.MatchString(segment) {
				return VirtualPath{}, apperror.Validation("invalid professor id %q", segment)
			}
			vp.ProfessorID = segment
		case DepthCourse:
			if !identPattern.MatchString(segment) {
				return VirtualPath{}, apperror.Validation("invalid course code %q", segment)
			}
			vp.CourseCode = segment
		case DepthDocumentType:
			t, err := ParseDocumentType(segment)
			if err != nil {
				return VirtualPath{}, apperror.Validation("%v", err)
			}
			vp.DocumentType = t
		}
		vp.depth = depth
	}

	return vp, nil
}

// MustParse is Parse for constant paths; it panics on error.
func MustParse(path string) VirtualPath {
	vp, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return vp
}

// Depth returns the deepest component present.
func (p VirtualPath) Depth() Depth {
	return p.depth
}

// IsValid reports whether p came out of a successful parse.
func (p VirtualPath) IsValid() bool {
	return p.depth >= DepthYear && p.depth <= MaxDepth
}

// Segment returns the formatted segment at depth d, or "" if absent.
func (p VirtualPath) Segment(d Depth) string {
	if d < DepthYear || d > p.depth {
		return ""
	}
	switch d {
	case DepthYear:
		return p.YearCode
	case DepthSemester:
		return string(p.Semester)
	case DepthProfessor:
		return p.ProfessorID
	case DepthCourse:
		return p.CourseCode
	case DepthDocumentType:
		return string(p.DocumentType)
	}
	return ""
}

// String formats p in canonical form with a leading slash.
func (p VirtualPath) String() string {
	if !p.IsValid() {
		return Root
	}
	var sb strings.Builder
	for d := DepthYear; d <= p.depth; d++ {
		sb.WriteString("/")
		sb.WriteString(p.Segment(d))
	}
	return sb.String()
}

// Truncate returns the ancestor of p at depth d. Depths deeper than p
// return p unchanged.
func (p VirtualPath) Truncate(d Depth) VirtualPath {
	if d >= p.depth {
		return p
	}
	out := VirtualPath{depth: d}
	if d >= DepthYear {
		out.YearCode = p.YearCode
	}
	if d >= DepthSemester {
		out.Semester = p.Semester
	}
	if d >= DepthProfessor {
		out.ProfessorID = p.ProfessorID
	}
	if d >= DepthCourse {
		out.CourseCode = p.CourseCode
	}
	return out
}

// Parent returns the immediate ancestor and false for year-level paths.
func (p VirtualPath) Parent() (VirtualPath, bool) {
	if p.depth <= DepthYear {
		return VirtualPath{}, false
	}
	return p.Truncate(p.depth - 1), true
}

// Prefixes returns every ancestor of p followed by p itself, root first.
func (p VirtualPath) Prefixes() []VirtualPath {
	out := make([]VirtualPath, 0, p.depth)
	for d := DepthYear; d <= p.depth; d++ {
		out = append(out, p.Truncate(d))
	}
	return out
}

// Child appends one segment to p and validates it.
func (p VirtualPath) Child(segment string) (VirtualPath, error) {
	if p.depth >= MaxDepth {
		return VirtualPath{}, apperror.Validation("path %s has no children", p)
	}
	return Parse(p.String() + "/" + segment)
}

// YearPath builds the path of an academic year node.
func YearPath(yearCode string) (VirtualPath, error) {
	return Parse(yearCode)
}

// SemesterPath builds the path of a semester node.
func SemesterPath(yearCode string, semester SemesterType) (VirtualPath, error) {
	return Parse(fmt.Sprintf("%s/%s", yearCode, semester))
}
