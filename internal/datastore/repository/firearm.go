package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// FirearmFilter narrows FirearmRepository.List. The zero value lists every
// owned firearm.
type FirearmFilter struct {
	IncludeTransferred bool
	Status             entities.CheckoutStatus
	NFAOnly            bool
	Caliber            string
}

// FirearmRepository provides access to firearms.
type FirearmRepository interface {
	Add(ctx context.Context, f *entities.Firearm) error
	Update(ctx context.Context, f *entities.Firearm) error
	// Delete removes the firearm with its maintenance logs and checkouts.
	// Attachments and reload batches keep their now dangling reference.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Firearm, error)
	GetBySerial(ctx context.Context, serial string) (*entities.Firearm, error)
	// List orders by name. Transferred firearms are hidden unless requested.
	List(ctx context.Context, filter FirearmFilter) ([]*entities.Firearm, error)
	Exists(ctx context.Context, id string) (bool, error)
	SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error
	SetTransferStatus(ctx context.Context, id string, status entities.TransferStatus) error
	// AddRounds increments rounds_fired and returns the updated firearm.
	AddRounds(ctx context.Context, id string, rounds int) (*entities.Firearm, error)
	// AddCondition appends a maintenance condition token unless present.
	AddCondition(ctx context.Context, id, condition string) error
	SetNeedsMaintenance(ctx context.Context, id string, needs bool) error
	// ResetAfterCleaning zeroes rounds_fired and clears the maintenance flag and conditions.
	ResetAfterCleaning(ctx context.Context, id string) error
	// GetMaintenanceStatus derives the maintenance state from flags and cleaning history.
	GetMaintenanceStatus(ctx context.Context, id string, now time.Time) (*entities.MaintenanceStatus, error)
}

type firearmRepository struct {
	db *gorm.DB
}

// NewFirearmRepository creates a new FirearmRepository.
func NewFirearmRepository(db *gorm.DB) FirearmRepository {
	return &firearmRepository{db: db}
}

func (r *firearmRepository) Add(ctx context.Context, f *entities.Firearm) error {
	f.SerialNumber = strings.TrimSpace(f.SerialNumber)
	return createEntity(ctx, r.db, f)
}

func (r *firearmRepository) Update(ctx context.Context, f *entities.Firearm) error {
	f.SerialNumber = strings.TrimSpace(f.SerialNumber)
	return updateEntity(ctx, r.db, f, f.ID, ErrFirearmNotFound)
}

func (r *firearmRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := deleteItemHistory(tx, id, entities.ItemFirearm); err != nil {
			return err
		}
		return deleteEntity[entities.Firearm](ctx, tx, id, ErrFirearmNotFound)
	})
}

func (r *firearmRepository) GetByID(ctx context.Context, id string) (*entities.Firearm, error) {
	return getEntity[entities.Firearm](ctx, r.db, id, ErrFirearmNotFound)
}

func (r *firearmRepository) GetBySerial(ctx context.Context, serial string) (*entities.Firearm, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, notFound(ErrFirearmNotFound, "empty serial")
	}
	var f entities.Firearm
	err := r.db.WithContext(ctx).Where("serial_number = ?", serial).First(&f).Error
	if err != nil {
		return nil, lookupError(err, ErrFirearmNotFound, serial, "get_firearm_by_serial")
	}
	return &f, nil
}

func (r *firearmRepository) List(ctx context.Context, filter FirearmFilter) ([]*entities.Firearm, error) {
	q := r.db.WithContext(ctx).Model(&entities.Firearm{})
	if !filter.IncludeTransferred {
		q = q.Where("transfer_status <> ?", entities.TransferTransferred)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.NFAOnly {
		q = q.Where("is_nfa = ?", true)
	}
	if filter.Caliber != "" {
		q = q.Where("caliber = ? COLLATE NOCASE", filter.Caliber)
	}
	var out []*entities.Firearm
	if err := q.Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_firearms")
	}
	return out, nil
}

func (r *firearmRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsEntity[entities.Firearm](ctx, r.db, id)
}

func (r *firearmRepository) SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error {
	return r.updateColumns(ctx, id, "set_firearm_status", map[string]any{"status": status})
}

func (r *firearmRepository) SetTransferStatus(ctx context.Context, id string, status entities.TransferStatus) error {
	return r.updateColumns(ctx, id, "set_firearm_transfer_status", map[string]any{"transfer_status": status})
}

func (r *firearmRepository) AddRounds(ctx context.Context, id string, rounds int) (*entities.Firearm, error) {
	err := r.updateColumns(ctx, id, "add_rounds", map[string]any{
		"rounds_fired": gorm.Expr("rounds_fired + ?", rounds),
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *firearmRepository) AddCondition(ctx context.Context, id, condition string) error {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	before := f.MaintenanceConditions
	f.AddCondition(condition)
	if f.MaintenanceConditions == before {
		return nil
	}
	return r.updateColumns(ctx, id, "add_condition", map[string]any{"maintenance_conditions": f.MaintenanceConditions})
}

func (r *firearmRepository) SetNeedsMaintenance(ctx context.Context, id string, needs bool) error {
	return r.updateColumns(ctx, id, "set_needs_maintenance", map[string]any{"needs_maintenance": needs})
}

func (r *firearmRepository) ResetAfterCleaning(ctx context.Context, id string) error {
	return r.updateColumns(ctx, id, "reset_after_cleaning", map[string]any{
		"rounds_fired":           0,
		"needs_maintenance":      false,
		"maintenance_conditions": "",
	})
}

func (r *firearmRepository) GetMaintenanceStatus(ctx context.Context, id string, now time.Time) (*entities.MaintenanceStatus, error) {
	f, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lastClean, err := NewMaintenanceRepository(r.db).GetLastCleaningDate(ctx, id)
	if err != nil {
		return nil, err
	}
	status := entities.DeriveMaintenanceStatus(f, lastClean, now)
	return &status, nil
}

func (r *firearmRepository) updateColumns(ctx context.Context, id, operation string, values map[string]any) error {
	return updateColumns[entities.Firearm](ctx, r.db, id, operation, values, ErrFirearmNotFound)
}

// updateColumns writes selected columns of one row.
func updateColumns[T any](ctx context.Context, db *gorm.DB, id, operation string, values map[string]any, sentinel error) error {
	var zero T
	result := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return storageError(result.Error, operation)
	}
	if result.RowsAffected == 0 {
		return notFound(sentinel, id)
	}
	return nil
}

// deleteItemHistory removes maintenance logs and checkouts of a deleted item.
func deleteItemHistory(tx *gorm.DB, itemID string, itemType entities.ItemType) error {
	if err := tx.Where("item_id = ? AND item_type = ?", itemID, itemType).
		Delete(&entities.MaintenanceLog{}).Error; err != nil {
		return storageError(err, "delete_maintenance_logs")
	}
	if err := tx.Where("item_id = ? AND item_type = ?", itemID, itemType).
		Delete(&entities.Checkout{}).Error; err != nil {
		return storageError(err, "delete_checkouts")
	}
	return nil
}
