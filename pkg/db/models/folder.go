package models

import "time"

// FolderKind is the structural role of a folder below a professor root.
type FolderKind string

const (
	FolderProfessorRoot FolderKind = "PROFESSOR_ROOT"
	FolderCourse        FolderKind = "COURSE"
	FolderSubfolder     FolderKind = "SUBFOLDER"
)

// Folder is a directory node of the archive. Path is the storage form
// (no leading slash) and also the directory below the upload root.
type Folder struct {
	ID             uint       `gorm:"primaryKey"`
	Path           string     `gorm:"type:text;not null;uniqueIndex"`
	Name           string     `gorm:"type:text;not null"`
	Kind           FolderKind `gorm:"type:text;not null;index"`
	OwnerID        uint       `gorm:"not null;index"`
	ParentID       *uint      `gorm:"index"`
	AcademicYearID uint       `gorm:"not null;index:idx_folder_calendar"`
	SemesterID     uint       `gorm:"not null;index:idx_folder_calendar"`
	CourseID       *uint      `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Owner  *User   `gorm:"foreignKey:OwnerID;references:ID"`
	Parent *Folder `gorm:"foreignKey:ParentID;references:ID"`
	Course *Course `gorm:"foreignKey:CourseID;references:ID"`
}
