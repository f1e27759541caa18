package explorer

import "github.com/mwantia/docarchive/pkg/access"

type NodeKind string

const (
	KindYear         NodeKind = "YEAR"
	KindSemester     NodeKind = "SEMESTER"
	KindProfessor    NodeKind = "PROFESSOR"
	KindCourse       NodeKind = "COURSE"
	KindDocumentType NodeKind = "DOCUMENT_TYPE"
	KindFile         NodeKind = "FILE"
)

// Node is one point of the navigable tree. The permission flags are
// computed when the node is built and only drive rendering; mutating
// operations check again.
type Node struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Kind     NodeKind `json:"kind"`
	EntityID *uint    `json:"entityId"`

	access.Decision

	Metadata map[string]any `json:"metadata,omitempty"`
	Children []Node         `json:"children,omitempty"`
}

// Breadcrumb is one labelled prefix of a path.
type Breadcrumb struct {
	Name string   `json:"name"`
	Path string   `json:"path"`
	Kind NodeKind `json:"kind"`
}

func id(v uint) *uint {
	return &v
}
