package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// MaintenanceFilter narrows MaintenanceRepository.List.
type MaintenanceFilter struct {
	ItemID   string
	ItemType entities.ItemType
	LogType  entities.MaintenanceType
	Limit    int
}

// MaintenanceRepository provides access to the append-only maintenance log.
type MaintenanceRepository interface {
	Add(ctx context.Context, l *entities.MaintenanceLog) error
	GetByID(ctx context.Context, id string) (*entities.MaintenanceLog, error)
	// List orders by date, newest first.
	List(ctx context.Context, filter MaintenanceFilter) ([]*entities.MaintenanceLog, error)
	// ListByItem returns every log of an item, newest first.
	ListByItem(ctx context.Context, itemID string) ([]*entities.MaintenanceLog, error)
	// GetLastCleaningDate returns the most recent CLEANING date, zero when never cleaned.
	GetLastCleaningDate(ctx context.Context, itemID string) (entities.EpochTime, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Add(ctx context.Context, l *entities.MaintenanceLog) error {
	return createEntity(ctx, r.db, l)
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id string) (*entities.MaintenanceLog, error) {
	return getEntity[entities.MaintenanceLog](ctx, r.db, id, ErrMaintenanceLogNotFound)
}

func (r *maintenanceRepository) List(ctx context.Context, filter MaintenanceFilter) ([]*entities.MaintenanceLog, error) {
	q := r.db.WithContext(ctx).Model(&entities.MaintenanceLog{})
	if filter.ItemID != "" {
		q = q.Where("item_id = ?", filter.ItemID)
	}
	if filter.ItemType != "" {
		q = q.Where("item_type = ?", filter.ItemType)
	}
	if filter.LogType != "" {
		q = q.Where("log_type = ?", filter.LogType)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var out []*entities.MaintenanceLog
	if err := q.Order("date DESC, rowid DESC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_maintenance_logs")
	}
	return out, nil
}

func (r *maintenanceRepository) ListByItem(ctx context.Context, itemID string) ([]*entities.MaintenanceLog, error) {
	return r.List(ctx, MaintenanceFilter{ItemID: itemID})
}

func (r *maintenanceRepository) GetLastCleaningDate(ctx context.Context, itemID string) (entities.EpochTime, error) {
	var last sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&entities.MaintenanceLog{}).
		Where("item_id = ? AND log_type = ?", itemID, entities.MaintCleaning).
		Select("MAX(date)").
		Scan(&last).Error
	if err != nil {
		return entities.EpochTime{}, storageError(err, "get_last_cleaning_date")
	}
	if !last.Valid {
		return entities.EpochTime{}, nil
	}
	var t entities.EpochTime
	if err := t.Scan(last.Int64); err != nil {
		return entities.EpochTime{}, storageError(err, "get_last_cleaning_date")
	}
	return t, nil
}
