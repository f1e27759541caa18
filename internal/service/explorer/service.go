// Package explorer builds the navigable archive tree: semester roots,
// professors, courses, document type buckets and files. Every node is read
// gated and carries advisory permission flags for its viewer.
package explorer

import (
	"context"
	"errors"
	"sort"

	"github.com/mwantia/docarchive/internal/service/folder"
	"github.com/mwantia/docarchive/pkg/access"
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/db/store"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/vpath"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Service struct {
	store   store.ArchiveStore
	folders *folder.Service
	access  *access.Resolver
	log     log.LoggerService
}

func NewService(st store.ArchiveStore, folders *folder.Service, resolver *access.Resolver, logger log.LoggerService) *Service {
	return &Service{
		store:   st,
		folders: folders,
		access:  resolver,
		log:     logger,
	}
}

// GetRoot returns the semester node with the professors visible to user.
func (s *Service) GetRoot(ctx context.Context, yearID, semesterID uint, user *models.User) (*Node, error) {
	year, err := s.store.GetAcademicYear(ctx, yearID)
	if err != nil {
		return nil, err
	}
	semester, err := s.store.GetSemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	if semester.AcademicYearID != year.ID {
		return nil, apperror.Validation("semester %d does not belong to academic year %s", semester.ID, year.Code)
	}

	vp, err := vpath.SemesterPath(year.Code, semester.Type)
	if err != nil {
		return nil, err
	}

	resolved := &folder.Resolved{Path: vp, Year: year, Semester: semester}
	if err := s.access.Authorize(access.ActionRead, user, resolved.Target()); err != nil {
		return nil, err
	}

	node := s.semesterNode(vp, year, semester, user)
	children, err := s.professorNodes(ctx, resolved, user)
	if err != nil {
		return nil, err
	}
	node.Children = children

	return &node, nil
}

// GetNode returns the node at path with its immediate children.
func (s *Service) GetNode(ctx context.Context, path string, user *models.User) (*Node, error) {
	resolved, err := s.resolveReadable(ctx, path, user)
	if err != nil {
		return nil, err
	}

	node, err := s.build(ctx, resolved, user)
	if err != nil {
		return nil, err
	}

	children, err := s.children(ctx, resolved, user)
	if err != nil {
		return nil, err
	}
	node.Children = children

	return node, nil
}

// GetChildren lists the immediate children of the node at parentPath.
func (s *Service) GetChildren(ctx context.Context, parentPath string, user *models.User) ([]Node, error) {
	resolved, err := s.resolveReadable(ctx, parentPath, user)
	if err != nil {
		return nil, err
	}
	return s.children(ctx, resolved, user)
}

// Permissions evaluates all three flags for user on path without logging
// denials.
func (s *Service) Permissions(ctx context.Context, path string, user *models.User) (access.Decision, error) {
	vp, err := vpath.Parse(path)
	if err != nil {
		return access.Decision{}, err
	}
	resolved, err := s.folders.Resolve(ctx, vp)
	if err != nil {
		return access.Decision{}, err
	}
	return access.Evaluate(user, resolved.Target()), nil
}

func (s *Service) CanRead(ctx context.Context, path string, user *models.User) (bool, error) {
	d, err := s.Permissions(ctx, path, user)
	return d.CanRead, err
}

func (s *Service) CanWrite(ctx context.Context, path string, user *models.User) (bool, error) {
	d, err := s.Permissions(ctx, path, user)
	return d.CanWrite, err
}

func (s *Service) CanDelete(ctx context.Context, path string, user *models.User) (bool, error) {
	d, err := s.Permissions(ctx, path, user)
	return d.CanDelete, err
}

// Breadcrumbs labels every prefix of path. The read gate of the full path
// applies first, so no trail is returned for a path user may not see.
func (s *Service) Breadcrumbs(ctx context.Context, path string, user *models.User) ([]Breadcrumb, error) {
	resolved, err := s.resolveReadable(ctx, path, user)
	if err != nil {
		return nil, err
	}

	prefixes := resolved.Path.Prefixes()
	crumbs := make([]Breadcrumb, 0, len(prefixes))
	for _, prefix := range prefixes {
		crumbs = append(crumbs, Breadcrumb{
			Name: label(resolved, prefix),
			Path: prefix.String(),
			Kind: kindOf(prefix.Depth()),
		})
	}

	return crumbs, nil
}

// label names one prefix from the entities already resolved for the path.
func label(r *folder.Resolved, prefix vpath.VirtualPath) string {
	switch prefix.Depth() {
	case vpath.DepthSemester:
		return prefix.Semester.Label()
	case vpath.DepthProfessor:
		return r.Professor.DisplayName()
	case vpath.DepthCourse:
		if r.Course != nil {
			return vpath.CourseFolderName(r.Course.Code, r.Course.Name)
		}
		return prefix.CourseCode
	case vpath.DepthDocumentType:
		return prefix.DocumentType.Label()
	}
	return prefix.YearCode
}

// resolveReadable parses and resolves path, then applies the read gate.
// Missing entities are reported before denials.
func (s *Service) resolveReadable(ctx context.Context, path string, user *models.User) (*folder.Resolved, error) {
	vp, err := vpath.Parse(path)
	if err != nil {
		return nil, err
	}
	resolved, err := s.folders.Resolve(ctx, vp)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(access.ActionRead, user, resolved.Target()); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *Service) build(ctx context.Context, r *folder.Resolved, user *models.User) (*Node, error) {
	var node Node

	switch r.Path.Depth() {
	case vpath.DepthYear:
		node = s.yearNode(r.Path, r.Year, user)
	case vpath.DepthSemester:
		node = s.semesterNode(r.Path, r.Year, r.Semester, user)
	case vpath.DepthProfessor:
		node = s.professorNode(r.Path, r.Professor, user)
	case vpath.DepthCourse:
		node = s.courseNode(ctx, r.Path, r.Assignment, user)
	case vpath.DepthDocumentType:
		submission, err := s.store.GetSubmission(ctx, r.Assignment.ID, r.Path.DocumentType)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		node = s.documentTypeNode(r.Path, r.Professor, submission, user)
	default:
		return nil, apperror.Validation("path %s has no node", r.Path)
	}

	return &node, nil
}

func (s *Service) children(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	switch r.Path.Depth() {
	case vpath.DepthYear:
		return s.semesterNodes(ctx, r, user)
	case vpath.DepthSemester:
		return s.professorNodes(ctx, r, user)
	case vpath.DepthProfessor:
		return s.courseNodes(ctx, r, user)
	case vpath.DepthCourse:
		return s.documentTypeNodes(ctx, r, user)
	case vpath.DepthDocumentType:
		return s.fileNodes(ctx, r, user)
	}
	return nil, apperror.Validation("path %s has no children", r.Path)
}

func (s *Service) semesterNodes(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	semesters, err := s.store.ListSemesters(ctx, r.Year.ID)
	if err != nil {
		return nil, err
	}

	order := map[vpath.SemesterType]int{}
	for i, t := range vpath.SemesterTypes() {
		order[t] = i
	}
	sort.SliceStable(semesters, func(i, j int) bool {
		return order[semesters[i].Type] < order[semesters[j].Type]
	})

	nodes := make([]Node, 0, len(semesters))
	for i := range semesters {
		vp, err := vpath.SemesterPath(r.Year.Code, semesters[i].Type)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, s.semesterNode(vp, r.Year, &semesters[i], user))
	}
	return nodes, nil
}

// professorNodes lists the professors teaching in the semester. Deanship
// and admins see all of them, everyone else only their own department.
func (s *Service) professorNodes(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	var department *uint
	switch user.Role {
	case models.RoleAdmin, models.RoleDeanship:
	default:
		if user.DepartmentID == nil {
			return nil, nil
		}
		department = user.DepartmentID
	}

	professors, err := s.store.ListProfessorsBySemester(ctx, r.Semester.ID, department)
	if err != nil {
		return nil, err
	}
	sortProfessors(professors)

	nodes := make([]Node, 0, len(professors))
	for i := range professors {
		vp, err := r.Path.Child(professors[i].ExternalID)
		if err != nil {
			s.log.Warn("Skipping professor #%d with unusable id '%s': %v", professors[i].ID, professors[i].ExternalID, err)
			continue
		}
		nodes = append(nodes, s.professorNode(vp, &professors[i], user))
	}
	return nodes, nil
}

func (s *Service) courseNodes(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	assignments, err := s.store.ListAssignmentsByProfessor(ctx, r.Professor.ID, r.Semester.ID)
	if err != nil {
		return nil, err
	}

	col := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(assignments, func(i, j int) bool {
		return col.CompareString(assignments[i].Course.Code, assignments[j].Course.Code) < 0
	})

	nodes := make([]Node, 0, len(assignments))
	for i := range assignments {
		vp, err := r.Path.Child(assignments[i].Course.Code)
		if err != nil {
			s.log.Warn("Skipping course '%s': %v", assignments[i].Course.Code, err)
			continue
		}
		nodes = append(nodes, s.courseNode(ctx, vp, &assignments[i], user))
	}
	return nodes, nil
}

func (s *Service) documentTypeNodes(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	submissions, err := s.store.ListSubmissions(ctx, r.Assignment.ID)
	if err != nil {
		return nil, err
	}

	byType := make(map[vpath.DocumentType]*models.DocumentSubmission, len(submissions))
	for i := range submissions {
		byType[submissions[i].DocumentType] = &submissions[i]
	}

	nodes := make([]Node, 0, len(submissions))
	for _, dt := range vpath.DocumentTypes() {
		submission, ok := byType[dt]
		if !ok {
			continue
		}
		vp, err := r.Path.Child(string(dt))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, s.documentTypeNode(vp, r.Professor, submission, user))
	}
	return nodes, nil
}

func (s *Service) fileNodes(ctx context.Context, r *folder.Resolved, user *models.User) ([]Node, error) {
	submission, err := s.store.GetSubmission(ctx, r.Assignment.ID, r.Path.DocumentType)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return []Node{}, nil
		}
		return nil, err
	}

	files, err := s.store.ListFilesBySubmission(ctx, submission.ID)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(files))
	for i := range files {
		nodes = append(nodes, s.fileNode(r.Path, &files[i], user))
	}
	return nodes, nil
}

func (s *Service) yearNode(vp vpath.VirtualPath, year *models.AcademicYear, user *models.User) Node {
	return Node{
		Path:     vp.String(),
		Name:     year.Code,
		Kind:     KindYear,
		EntityID: id(year.ID),
		Decision: access.Evaluate(user, access.PathTarget(vp, nil)),
		Metadata: map[string]any{
			"startYear": year.StartYear,
			"endYear":   year.EndYear,
			"active":    year.Active,
		},
	}
}

func (s *Service) semesterNode(vp vpath.VirtualPath, year *models.AcademicYear, semester *models.Semester, user *models.User) Node {
	return Node{
		Path:     vp.String(),
		Name:     semester.Type.Label(),
		Kind:     KindSemester,
		EntityID: id(semester.ID),
		Decision: access.Evaluate(user, access.PathTarget(vp, nil)),
		Metadata: map[string]any{
			"academicYearId": year.ID,
			"yearCode":       year.Code,
			"semesterType":   semester.Type,
		},
	}
}

func (s *Service) professorNode(vp vpath.VirtualPath, professor *models.User, user *models.User) Node {
	meta := map[string]any{
		"externalId": professor.ExternalID,
		"email":      professor.Email,
	}
	if professor.Department != nil {
		meta["department"] = professor.Department.Shortcut
	}

	return Node{
		Path:     vp.String(),
		Name:     professor.DisplayName(),
		Kind:     KindProfessor,
		EntityID: id(professor.ID),
		Decision: access.Evaluate(user, access.PathTarget(vp, professor)),
		Metadata: meta,
	}
}

func (s *Service) courseNode(ctx context.Context, vp vpath.VirtualPath, assignment *models.CourseAssignment, user *models.User) Node {
	meta := map[string]any{
		"courseCode":   assignment.Course.Code,
		"courseName":   assignment.Course.Name,
		"assignmentId": assignment.ID,
	}
	if f, err := s.store.FindCourseFolder(ctx, assignment.ProfessorID, assignment.SemesterID, assignment.CourseID); err == nil {
		meta["folderId"] = f.ID
	}

	return Node{
		Path:     vp.String(),
		Name:     vpath.CourseFolderName(assignment.Course.Code, assignment.Course.Name),
		Kind:     KindCourse,
		EntityID: id(assignment.Course.ID),
		Decision: access.Evaluate(user, access.AssignmentTarget(assignment)),
		Metadata: meta,
	}
}

func (s *Service) documentTypeNode(vp vpath.VirtualPath, professor *models.User, submission *models.DocumentSubmission, user *models.User) Node {
	meta := map[string]any{
		"documentType": vp.DocumentType,
		"fileCount":    0,
	}
	if submission != nil {
		meta["submissionId"] = submission.ID
		meta["fileCount"] = submission.FileCount
		meta["totalSize"] = submission.TotalSize
		if submission.SubmittedAt != nil {
			meta["submittedAt"] = submission.SubmittedAt
		}
		if submission.Notes != "" {
			meta["notes"] = submission.Notes
		}
	}

	return Node{
		Path:     vp.String(),
		Name:     vp.DocumentType.Label(),
		Kind:     KindDocumentType,
		Decision: access.Evaluate(user, access.PathTarget(vp, professor)),
		Metadata: meta,
	}
}

func (s *Service) fileNode(parent vpath.VirtualPath, f *models.UploadedFile, user *models.User) Node {
	return Node{
		Path:     parent.String() + "/" + f.StoredFilename,
		Name:     f.OriginalFilename,
		Kind:     KindFile,
		EntityID: id(f.ID),
		Decision: access.Evaluate(user, access.FileTarget(f)),
		Metadata: map[string]any{
			"storedFilename": f.StoredFilename,
			"fileUrl":        f.FileURL,
			"fileSize":       f.FileSize,
			"fileType":       f.FileType,
			"fileOrder":      f.FileOrder,
			"uploadedAt":     f.CreatedAt,
		},
	}
}

// sortProfessors orders by first name, then last name, using the root
// collation so accents and case sort naturally.
func sortProfessors(professors []models.User) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(professors, func(i, j int) bool {
		if c := col.CompareString(professors[i].FirstName, professors[j].FirstName); c != 0 {
			return c < 0
		}
		return col.CompareString(professors[i].LastName, professors[j].LastName) < 0
	})
}

func kindOf(d vpath.Depth) NodeKind {
	switch d {
	case vpath.DepthYear:
		return KindYear
	case vpath.DepthSemester:
		return KindSemester
	case vpath.DepthProfessor:
		return KindProfessor
	case vpath.DepthCourse:
		return KindCourse
	case vpath.DepthDocumentType:
		return KindDocumentType
	}
	return ""
}
