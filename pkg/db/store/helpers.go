package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// getByField retrieves a single record of type T by matching field=value,
// converting gorm.ErrRecordNotFound to notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error, preloads ...string) (*T, error) {
	var result T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// getWhere is getByField for multi-column conditions.
func getWhere[T any](db *gorm.DB, ctx context.Context, notFoundErr error, preloads []string, query string, args ...any) (*T, error) {
	var result T
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Where(query, args...).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// create inserts entity without touching its associations and converts
// unique constraint violations to dupErr.
func create[T any](db *gorm.DB, ctx context.Context, entity *T, dupErr error) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return dupErr
		}
		return err
	}
	return nil
}

// deleteByID deletes the record of type T with the given primary key.
// Returns notFoundErr if no rows were affected.
func deleteByID[T any](db *gorm.DB, ctx context.Context, id uint, notFoundErr error) error {
	var zero T
	result := db.WithContext(ctx).Delete(&zero, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr
	}
	return nil
}
