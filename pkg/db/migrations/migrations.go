package migrations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mwantia/docarchive/pkg/db/models"
	"gorm.io/gorm"
)

// ErrNothingToRollback is returned when no schema version has been applied.
var ErrNothingToRollback = errors.New("no schema version to roll back")

// Migration is one numbered step of the archive schema.
type Migration struct {
	Version     int
	Description string
	Up          func(*gorm.DB) error
	Down        func(*gorm.DB) error
}

// schemaVersion records an applied migration.
type schemaVersion struct {
	Version     int       `gorm:"primaryKey;autoIncrement:false"`
	Description string    `gorm:"type:text"`
	AppliedAt   time.Time `gorm:"not null"`
}

func (schemaVersion) TableName() string {
	return "archive_schema_versions"
}

// MigrationStatus is one row of the archive schema report.
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
	AppliedAt   *time.Time
}

// Migrator applies the archive schema in version order.
type Migrator struct {
	db         *gorm.DB
	migrations []Migration
	now        func() time.Time
}

func NewMigrator(db *gorm.DB) *Migrator {
	steps := archiveSchema()
	sort.Slice(steps, func(i, j int) bool { return steps[i].Version < steps[j].Version })

	return &Migrator{
		db:         db,
		migrations: steps,
		now:        time.Now,
	}
}

// Migrate applies every pending version, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) error {
	applied, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, step := range m.migrations {
		if _, ok := applied[step.Version]; ok {
			continue
		}

		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaVersion{
				Version:     step.Version,
				Description: step.Description,
				AppliedAt:   m.now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("schema version %d (%s) failed: %w", step.Version, step.Description, err)
		}
	}

	return nil
}

// Rollback reverts the newest applied version.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}

	var last schemaVersion
	err := m.db.WithContext(ctx).Order("version DESC").Limit(1).Find(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read archive schema versions: %w", err)
	}
	if last.Version == 0 {
		return ErrNothingToRollback
	}

	step := m.find(last.Version)
	if step == nil {
		return fmt.Errorf("schema version %d is applied but unknown to this build", last.Version)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := step.Down(tx); err != nil {
			return fmt.Errorf("rollback of schema version %d failed: %w", step.Version, err)
		}
		return tx.Delete(&schemaVersion{}, "version = ?", last.Version).Error
	})
}

// Status reports every known version and when it was applied.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(m.migrations))
	for _, step := range m.migrations {
		status := MigrationStatus{
			Version:     step.Version,
			Description: step.Description,
		}
		if at, ok := applied[step.Version]; ok {
			status.Applied = true
			status.AppliedAt = &at
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// Pending counts the versions Migrate would still apply.
func (m *Migrator) Pending(ctx context.Context) (int, error) {
	statuses, err := m.Status(ctx)
	if err != nil {
		return 0, err
	}

	pending := 0
	for _, s := range statuses {
		if !s.Applied {
			pending++
		}
	}
	return pending, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&schemaVersion{}); err != nil {
		return fmt.Errorf("failed to create archive schema version table: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	var rows []schemaVersion
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read archive schema versions: %w", err)
	}

	applied := make(map[int]time.Time, len(rows))
	for _, row := range rows {
		applied[row.Version] = row.AppliedAt
	}
	return applied, nil
}

func (m *Migrator) find(version int) *Migration {
	for i := range m.migrations {
		if m.migrations[i].Version == version {
			return &m.migrations[i]
		}
	}
	return nil
}

// archiveSchema lists the schema versions. Down drops tables in reverse
// dependency order.
func archiveSchema() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "University directory: departments, users, academic years, semesters, courses and course assignments",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Department{},
					&models.User{},
					&models.AcademicYear{},
					&models.Semester{},
					&models.Course{},
					&models.CourseAssignment{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.CourseAssignment{},
					&models.Course{},
					&models.Semester{},
					&models.AcademicYear{},
					&models.User{},
					&models.Department{},
				)
			},
		},
		{
			Version:     2,
			Description: "Document archive: professor and course folders, document submissions and uploaded files",
			Up: func(db *gorm.DB) error {
				return db.AutoMigrate(
					&models.Folder{},
					&models.DocumentSubmission{},
					&models.UploadedFile{},
				)
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(
					&models.UploadedFile{},
					&models.DocumentSubmission{},
					&models.Folder{},
				)
			},
		},
	}
}
