package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// entityName is used in validation errors and log context.
func entityName(v any) string {
	if n, ok := v.(interface{ TableName() string }); ok {
		return n.TableName()
	}
	return "entity"
}

// createEntity validates and inserts one row.
func createEntity[T any](ctx context.Context, db *gorm.DB, entity *T) error {
	if err := entities.Validate(entity); err != nil {
		return validationError(err, entityName(entity))
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		return storageError(err, "create_"+entityName(entity))
	}
	return nil
}

// updateEntity validates and writes every column of an existing row.
func updateEntity[T any](ctx context.Context, db *gorm.DB, entity *T, id string, sentinel error) error {
	if err := entities.Validate(entity); err != nil {
		return validationError(err, entityName(entity))
	}
	result := db.WithContext(ctx).Model(entity).Select("*").Updates(entity)
	if result.Error != nil {
		return storageError(result.Error, "update_"+entityName(entity))
	}
	if result.RowsAffected == 0 {
		return notFound(sentinel, id)
	}
	return nil
}

// getEntity loads one row by primary key.
func getEntity[T any](ctx context.Context, db *gorm.DB, id string, sentinel error) (*T, error) {
	var entity T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, lookupError(err, sentinel, id, "get_"+entityName(&entity))
	}
	return &entity, nil
}

// getEntityByName loads the first row whose name matches, case-insensitively after trimming.
func getEntityByName[T any](ctx context.Context, db *gorm.DB, name string, sentinel error) (*T, error) {
	var entity T
	name = strings.TrimSpace(name)
	err := db.WithContext(ctx).
		Where("name = ? COLLATE NOCASE", name).
		Order("id ASC").
		First(&entity).Error
	if err != nil {
		return nil, lookupError(err, sentinel, name, "get_"+entityName(&entity)+"_by_name")
	}
	return &entity, nil
}

// deleteEntity removes one row by primary key.
func deleteEntity[T any](ctx context.Context, db *gorm.DB, id string, sentinel error) error {
	var entity T
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity)
	if result.Error != nil {
		return storageError(result.Error, "delete_"+entityName(&entity))
	}
	if result.RowsAffected == 0 {
		return notFound(sentinel, id)
	}
	return nil
}

// listEntities returns all rows in the given order.
func listEntities[T any](ctx context.Context, db *gorm.DB, order string) ([]*T, error) {
	var out []*T
	var zero T
	if err := db.WithContext(ctx).Order(order).Find(&out).Error; err != nil {
		return nil, storageError(err, "list_"+entityName(&zero))
	}
	return out, nil
}

// existsEntity reports whether a row with the primary key exists.
func existsEntity[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var n int64
	var zero T
	if err := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, storageError(err, "exists_"+entityName(&zero))
	}
	return n > 0, nil
}
