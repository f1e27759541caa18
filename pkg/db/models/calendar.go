package models

import (
	"time"

	"github.com/mwantia/docarchive/pkg/vpath"
)

// AcademicYear is identified by its code, e.g. "2024-2025".
type AcademicYear struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"type:text;not null;uniqueIndex"`
	StartYear int    `gorm:"not null"`
	EndYear   int    `gorm:"not null"`
	Active    bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Semester belongs to exactly one academic year; a year has at most one
// semester of each type.
type Semester struct {
	ID             uint               `gorm:"primaryKey"`
	AcademicYearID uint               `gorm:"not null;uniqueIndex:idx_year_semester_type"`
	Type           vpath.SemesterType `gorm:"type:text;not null;uniqueIndex:idx_year_semester_type"`
	StartDate      *time.Time
	EndDate        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	AcademicYear *AcademicYear `gorm:"foreignKey:AcademicYearID;references:ID"`
}
