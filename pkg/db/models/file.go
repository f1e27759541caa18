package models

import (
	"time"

	"github.com/mwantia/docarchive/pkg/vpath"
)

// DocumentSubmission aggregates the files a professor handed in for one
// document type of one course assignment.
type DocumentSubmission struct {
	ID                 uint               `gorm:"primaryKey"`
	CourseAssignmentID uint               `gorm:"not null;uniqueIndex:idx_submission_type"`
	ProfessorID        uint               `gorm:"not null;index"`
	DocumentType       vpath.DocumentType `gorm:"type:text;not null;uniqueIndex:idx_submission_type"`
	FileCount          int                `gorm:"not null;default:0"`
	TotalSize          int64              `gorm:"not null;default:0"`
	Notes              string             `gorm:"type:text"`
	SubmittedAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	CourseAssignment *CourseAssignment `gorm:"foreignKey:CourseAssignmentID;references:ID"`
	Professor        *User             `gorm:"foreignKey:ProfessorID;references:ID"`
}

// UploadedFile is the record of one physical file below the upload root.
// FileURL is relative to that root: "{folder.Path}/{StoredFilename}".
type UploadedFile struct {
	ID                   uint   `gorm:"primaryKey"`
	StoredFilename       string `gorm:"type:text;not null"`
	OriginalFilename     string `gorm:"type:text;not null"`
	FileURL              string `gorm:"type:text;not null;uniqueIndex"`
	FileSize             int64  `gorm:"not null"`
	FileType             string `gorm:"type:text"`
	UploaderID           uint   `gorm:"not null;index"`
	FolderID             *uint  `gorm:"index"`
	DocumentSubmissionID *uint  `gorm:"index"`
	FileOrder            int    `gorm:"not null;default:0"`
	Notes                string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Uploader           *User               `gorm:"foreignKey:UploaderID;references:ID"`
	Folder             *Folder             `gorm:"foreignKey:FolderID;references:ID"`
	DocumentSubmission *DocumentSubmission `gorm:"foreignKey:DocumentSubmissionID;references:ID"`
}
