package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// LedgerEntry describes one stock movement applied through RecordTransaction.
type LedgerEntry struct {
	ConsumableID  string
	Type          entities.TransactionType
	Delta         int // signed quantity change
	Notes         string
	Date          entities.EpochTime // zero means now
	AllowNegative bool
}

// ConsumableRepository provides access to consumables and their ledger.
// Every quantity change is recorded as a transaction so that quantity always
// equals the sum of the ledger.
type ConsumableRepository interface {
	// Add inserts the consumable and records its initial stock as an ADJUST entry.
	Add(ctx context.Context, c *entities.Consumable) error
	// Update writes all fields and records any quantity change as an ADJUST entry.
	Update(ctx context.Context, c *entities.Consumable) error
	// Delete removes the consumable, its ledger and loadout references.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Consumable, error)
	GetByName(ctx context.Context, name string) (*entities.Consumable, error)
	// List orders by category then name.
	List(ctx context.Context) ([]*entities.Consumable, error)
	// ListLowStock returns consumables whose quantity is below min_quantity.
	ListLowStock(ctx context.Context) ([]*entities.Consumable, error)
	// RecordTransaction appends a ledger entry and applies its delta to the quantity.
	RecordTransaction(ctx context.Context, entry LedgerEntry) (*entities.Consumable, error)
	// Transactions returns the ledger of a consumable in recording order.
	Transactions(ctx context.Context, consumableID string) ([]*entities.ConsumableTransaction, error)
	// LedgerSum returns the sum of all ledger deltas.
	LedgerSum(ctx context.Context, consumableID string) (int, error)
}

type consumableRepository struct {
	db *gorm.DB
}

// NewConsumableRepository creates a new ConsumableRepository.
func NewConsumableRepository(db *gorm.DB) ConsumableRepository {
	return &consumableRepository{db: db}
}

func (r *consumableRepository) Add(ctx context.Context, c *entities.Consumable) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := createEntity(ctx, tx, c); err != nil {
			return err
		}
		if c.Quantity == 0 {
			return nil
		}
		return createLedgerRow(tx, &entities.ConsumableTransaction{
			ConsumableID:    c.ID,
			TransactionType: entities.TxAdjust,
			Quantity:        c.Quantity,
			Notes:           "initial stock",
		})
	})
}

func (r *consumableRepository) Update(ctx context.Context, c *entities.Consumable) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		existing, err := getEntity[entities.Consumable](ctx, tx, c.ID, ErrConsumableNotFound)
		if err != nil {
			return err
		}
		if err := updateEntity(ctx, tx, c, c.ID, ErrConsumableNotFound); err != nil {
			return err
		}
		delta := c.Quantity - existing.Quantity
		if delta == 0 {
			return nil
		}
		return createLedgerRow(tx, &entities.ConsumableTransaction{
			ConsumableID:    c.ID,
			TransactionType: entities.TxAdjust,
			Quantity:        delta,
			Notes:           "manual adjustment",
		})
	})
}

func (r *consumableRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Where("consumable_id = ?", id).Delete(&entities.ConsumableTransaction{}).Error; err != nil {
			return storageError(err, "delete_consumable_transactions")
		}
		if err := tx.Where("consumable_id = ?", id).Delete(&entities.LoadoutConsumable{}).Error; err != nil {
			return storageError(err, "delete_loadout_consumables")
		}
		return deleteEntity[entities.Consumable](ctx, tx, id, ErrConsumableNotFound)
	})
}

func (r *consumableRepository) GetByID(ctx context.Context, id string) (*entities.Consumable, error) {
	return getEntity[entities.Consumable](ctx, r.db, id, ErrConsumableNotFound)
}

func (r *consumableRepository) GetByName(ctx context.Context, name string) (*entities.Consumable, error) {
	return getEntityByName[entities.Consumable](ctx, r.db, name, ErrConsumableNotFound)
}

func (r *consumableRepository) List(ctx context.Context) ([]*entities.Consumable, error) {
	return listEntities[entities.Consumable](ctx, r.db, "category ASC, name ASC, id ASC")
}

func (r *consumableRepository) ListLowStock(ctx context.Context) ([]*entities.Consumable, error) {
	var out []*entities.Consumable
	err := r.db.WithContext(ctx).
		Where("quantity < min_quantity").
		Order("category ASC, name ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err, "list_low_stock")
	}
	return out, nil
}

func (r *consumableRepository) RecordTransaction(ctx context.Context, entry LedgerEntry) (*entities.Consumable, error) {
	if !entry.Type.Valid() {
		return nil, validationError(fmt.Errorf("transaction type %q", entry.Type), "consumable_transactions")
	}
	var updated *entities.Consumable
	err := inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		c, err := getEntity[entities.Consumable](ctx, tx, entry.ConsumableID, ErrConsumableNotFound)
		if err != nil {
			return err
		}
		next := c.Quantity + entry.Delta
		if next < 0 && !entry.AllowNegative {
			return preconditionError(ErrInsufficientStock, "record_transaction",
				"consumable_id", c.ID, "quantity", c.Quantity, "delta", entry.Delta)
		}
		if err := createLedgerRow(tx, &entities.ConsumableTransaction{
			ConsumableID:    c.ID,
			TransactionType: entry.Type,
			Quantity:        entry.Delta,
			Date:            entry.Date,
			Notes:           entry.Notes,
		}); err != nil {
			return err
		}
		if err := updateColumns[entities.Consumable](ctx, tx, c.ID, "apply_ledger_delta",
			map[string]any{"quantity": next}, ErrConsumableNotFound); err != nil {
			return err
		}
		c.Quantity = next
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *consumableRepository) Transactions(ctx context.Context, consumableID string) ([]*entities.ConsumableTransaction, error) {
	var out []*entities.ConsumableTransaction
	err := r.db.WithContext(ctx).
		Where("consumable_id = ?", consumableID).
		Order("date ASC, rowid ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err, "list_consumable_transactions")
	}
	return out, nil
}

func (r *consumableRepository) LedgerSum(ctx context.Context, consumableID string) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).
		Model(&entities.ConsumableTransaction{}).
		Where("consumable_id = ?", consumableID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, storageError(err, "ledger_sum")
	}
	return sum, nil
}

func createLedgerRow(tx *gorm.DB, t *entities.ConsumableTransaction) error {
	if err := entities.Validate(t); err != nil {
		return validationError(err, "consumable_transactions")
	}
	if err := tx.Create(t).Error; err != nil {
		return storageError(err, "create_consumable_transaction")
	}
	return nil
}
