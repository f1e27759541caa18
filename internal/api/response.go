package api

import (
	"time"

	"github.com/mwantia/docarchive/pkg/db/models"
)

type FolderResponse struct {
	ID             uint              `json:"id"`
	Path           string            `json:"path"`
	Name           string            `json:"name"`
	Kind           models.FolderKind `json:"kind"`
	OwnerID        uint              `json:"ownerId"`
	ParentID       *uint             `json:"parentId,omitempty"`
	AcademicYearID uint              `json:"academicYearId"`
	SemesterID     uint              `json:"semesterId"`
	CourseID       *uint             `json:"courseId,omitempty"`
}

func toFolderResponse(f *models.Folder) FolderResponse {
	return FolderResponse{
		ID:             f.ID,
		Path:           f.Path,
		Name:           f.Name,
		Kind:           f.Kind,
		OwnerID:        f.OwnerID,
		ParentID:       f.ParentID,
		AcademicYearID: f.AcademicYearID,
		SemesterID:     f.SemesterID,
		CourseID:       f.CourseID,
	}
}

type FileResponse struct {
	ID                   uint      `json:"id"`
	StoredFilename       string    `json:"storedFilename"`
	OriginalFilename     string    `json:"originalFilename"`
	FileURL              string    `json:"fileUrl"`
	FileSize             int64     `json:"fileSize"`
	FileType             string    `json:"fileType"`
	UploaderID           uint      `json:"uploaderId"`
	FolderID             *uint     `json:"folderId,omitempty"`
	DocumentSubmissionID *uint     `json:"documentSubmissionId,omitempty"`
	FileOrder            int       `json:"fileOrder"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

func toFileResponse(f *models.UploadedFile) FileResponse {
	return FileResponse{
		ID:                   f.ID,
		StoredFilename:       f.StoredFilename,
		OriginalFilename:     f.OriginalFilename,
		FileURL:              f.FileURL,
		FileSize:             f.FileSize,
		FileType:             f.FileType,
		UploaderID:           f.UploaderID,
		FolderID:             f.FolderID,
		DocumentSubmissionID: f.DocumentSubmissionID,
		FileOrder:            f.FileOrder,
		Notes:                f.Notes,
		CreatedAt:            f.CreatedAt,
	}
}
