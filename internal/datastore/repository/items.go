package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// Item is the checkout-relevant view of a firearm, NFA item or soft gear row.
type Item struct {
	ID     string
	Type   entities.ItemType
	Name   string
	Status entities.CheckoutStatus
}

// ItemRepository resolves items across the checkout-able tables by item type.
type ItemRepository interface {
	Get(ctx context.Context, itemType entities.ItemType, id string) (*Item, error)
	SetStatus(ctx context.Context, itemType entities.ItemType, id string, status entities.CheckoutStatus) error
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

type itemTable struct {
	model    any
	sentinel error
}

func lookupItemTable(itemType entities.ItemType) (itemTable, error) {
	switch itemType {
	case entities.ItemFirearm:
		return itemTable{model: &entities.Firearm{}, sentinel: ErrFirearmNotFound}, nil
	case entities.ItemNFA:
		return itemTable{model: &entities.NFAItem{}, sentinel: ErrNFAItemNotFound}, nil
	case entities.ItemSoftGear:
		return itemTable{model: &entities.SoftGear{}, sentinel: ErrSoftGearNotFound}, nil
	default:
		return itemTable{}, preconditionError(
			fmt.Errorf("%w: %s", ErrUnsupportedItemType, itemType), "resolve_item", "item_type", itemType)
	}
}

func (r *itemRepository) Get(ctx context.Context, itemType entities.ItemType, id string) (*Item, error) {
	t, err := lookupItemTable(itemType)
	if err != nil {
		return nil, err
	}
	var row struct {
		ID     string
		Name   string
		Status entities.CheckoutStatus
	}
	err = r.db.WithContext(ctx).Model(t.model).
		Select("id, name, status").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, lookupError(err, t.sentinel, id, "get_item")
	}
	return &Item{ID: row.ID, Type: itemType, Name: row.Name, Status: row.Status}, nil
}

func (r *itemRepository) SetStatus(ctx context.Context, itemType entities.ItemType, id string, status entities.CheckoutStatus) error {
	t, err := lookupItemTable(itemType)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(t.model).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return storageError(result.Error, "set_item_status")
	}
	if result.RowsAffected == 0 {
		return notFound(t.sentinel, id)
	}
	return nil
}
