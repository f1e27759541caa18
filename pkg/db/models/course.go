package models

import "time"

// Course is offered by one department.
type Course struct {
	ID           uint   `gorm:"primaryKey"`
	Code         string `gorm:"type:text;not null;uniqueIndex"`
	Name         string `gorm:"type:text;not null"`
	DepartmentID uint   `gorm:"not null;index"`
	Active       bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Department *Department `gorm:"foreignKey:DepartmentID;references:ID"`
}

// CourseAssignment states that a professor teaches a course in a semester.
type CourseAssignment struct {
	ID          uint `gorm:"primaryKey"`
	SemesterID  uint `gorm:"not null;uniqueIndex:idx_assignment"`
	CourseID    uint `gorm:"not null;uniqueIndex:idx_assignment"`
	ProfessorID uint `gorm:"not null;uniqueIndex:idx_assignment;index"`
	Active      bool `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Semester  *Semester `gorm:"foreignKey:SemesterID;references:ID"`
	Course    *Course   `gorm:"foreignKey:CourseID;references:ID"`
	Professor *User     `gorm:"foreignKey:ProfessorID;references:ID"`
}
