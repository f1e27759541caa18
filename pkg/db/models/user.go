package models

import (
	"fmt"
	"strings"
	"time"
)

// Role decides which parts of the archive a user may see and change.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeanship  Role = "DEANSHIP"
	RoleHOD       Role = "HOD"
	RoleProfessor Role = "PROFESSOR"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleDeanship, RoleHOD, RoleProfessor:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Department groups professors and courses.
type Department struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null"`
	Shortcut string `gorm:"type:text;not null;uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is an already authenticated principal. ExternalID is the professor
// identifier used as the third virtual path segment.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	ExternalID   string `gorm:"type:text;not null;uniqueIndex"`
	Email        string `gorm:"type:text;not null;uniqueIndex"`
	FirstName    string `gorm:"type:text;not null"`
	LastName     string `gorm:"type:text;not null"`
	Role         Role   `gorm:"type:text;not null;index"`
	DepartmentID *uint  `gorm:"index"`
	Active       bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Department *Department `gorm:"foreignKey:DepartmentID;references:ID"`
}

// DisplayName returns "First Last".
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
