package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// LoadoutRepository provides access to loadouts and the rows they own.
type LoadoutRepository interface {
	Add(ctx context.Context, l *entities.Loadout) error
	Update(ctx context.Context, l *entities.Loadout) error
	// Delete removes the loadout with its items, consumables and checkout records.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Loadout, error)
	GetByName(ctx context.Context, name string) (*entities.Loadout, error)
	// List orders by name.
	List(ctx context.Context) ([]*entities.Loadout, error)

	AddItem(ctx context.Context, item *entities.LoadoutItem) error
	UpdateItem(ctx context.Context, item *entities.LoadoutItem) error
	RemoveItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*entities.LoadoutItem, error)
	// FindItem returns the row placing itemID in the loadout.
	FindItem(ctx context.Context, loadoutID, itemID string) (*entities.LoadoutItem, error)
	// ListItems orders by item type then item id. An empty loadout id lists all rows.
	ListItems(ctx context.Context, loadoutID string) ([]*entities.LoadoutItem, error)

	AddConsumable(ctx context.Context, c *entities.LoadoutConsumable) error
	UpdateConsumable(ctx context.Context, c *entities.LoadoutConsumable) error
	RemoveConsumable(ctx context.Context, id string) error
	GetConsumable(ctx context.Context, id string) (*entities.LoadoutConsumable, error)
	// FindConsumable returns the row requesting consumableID in the loadout.
	FindConsumable(ctx context.Context, loadoutID, consumableID string) (*entities.LoadoutConsumable, error)
	// ListConsumables orders by consumable id. An empty loadout id lists all rows.
	ListConsumables(ctx context.Context, loadoutID string) ([]*entities.LoadoutConsumable, error)

	AddCheckout(ctx context.Context, c *entities.LoadoutCheckout) error
	GetCheckout(ctx context.Context, id string) (*entities.LoadoutCheckout, error)
	// GetActiveCheckout returns the open checkout record of a loadout.
	GetActiveCheckout(ctx context.Context, loadoutID string) (*entities.LoadoutCheckout, error)
	// CloseCheckout records the return summary on an open checkout record.
	CloseCheckout(ctx context.Context, c *entities.LoadoutCheckout, when time.Time) error
	// ListCheckouts returns the checkout history of a loadout, newest first.
	ListCheckouts(ctx context.Context, loadoutID string) ([]*entities.LoadoutCheckout, error)
}

type loadoutRepository struct {
	db *gorm.DB
}

// NewLoadoutRepository creates a new LoadoutRepository.
func NewLoadoutRepository(db *gorm.DB) LoadoutRepository {
	return &loadoutRepository{db: db}
}

func (r *loadoutRepository) Add(ctx context.Context, l *entities.Loadout) error {
	return createEntity(ctx, r.db, l)
}

func (r *loadoutRepository) Update(ctx context.Context, l *entities.Loadout) error {
	return updateEntity(ctx, r.db, l, l.ID, ErrLoadoutNotFound)
}

func (r *loadoutRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		owned := []any{&entities.LoadoutItem{}, &entities.LoadoutConsumable{}, &entities.LoadoutCheckout{}}
		for _, model := range owned {
			if err := tx.Where("loadout_id = ?", id).Delete(model).Error; err != nil {
				return storageError(err, "delete_"+entityName(model))
			}
		}
		return deleteEntity[entities.Loadout](ctx, tx, id, ErrLoadoutNotFound)
	})
}

func (r *loadoutRepository) GetByID(ctx context.Context, id string) (*entities.Loadout, error) {
	return getEntity[entities.Loadout](ctx, r.db, id, ErrLoadoutNotFound)
}

func (r *loadoutRepository) GetByName(ctx context.Context, name string) (*entities.Loadout, error) {
	return getEntityByName[entities.Loadout](ctx, r.db, name, ErrLoadoutNotFound)
}

func (r *loadoutRepository) List(ctx context.Context) ([]*entities.Loadout, error) {
	return listEntities[entities.Loadout](ctx, r.db, "name ASC, id ASC")
}

func (r *loadoutRepository) AddItem(ctx context.Context, item *entities.LoadoutItem) error {
	return createEntity(ctx, r.db, item)
}

func (r *loadoutRepository) UpdateItem(ctx context.Context, item *entities.LoadoutItem) error {
	return updateEntity(ctx, r.db, item, item.ID, ErrLoadoutItemNotFound)
}

func (r *loadoutRepository) RemoveItem(ctx context.Context, id string) error {
	return deleteEntity[entities.LoadoutItem](ctx, r.db, id, ErrLoadoutItemNotFound)
}

func (r *loadoutRepository) GetItem(ctx context.Context, id string) (*entities.LoadoutItem, error) {
	return getEntity[entities.LoadoutItem](ctx, r.db, id, ErrLoadoutItemNotFound)
}

func (r *loadoutRepository) FindItem(ctx context.Context, loadoutID, itemID string) (*entities.LoadoutItem, error) {
	var item entities.LoadoutItem
	err := r.db.WithContext(ctx).
		Where("loadout_id = ? AND item_id = ?", loadoutID, itemID).
		Order("id ASC").
		First(&item).Error
	if err != nil {
		return nil, lookupError(err, ErrLoadoutItemNotFound, loadoutID+"/"+itemID, "find_loadout_item")
	}
	return &item, nil
}

func (r *loadoutRepository) ListItems(ctx context.Context, loadoutID string) ([]*entities.LoadoutItem, error) {
	q := r.db.WithContext(ctx).Model(&entities.LoadoutItem{})
	if loadoutID != "" {
		q = q.Where("loadout_id = ?", loadoutID)
	}
	var out []*entities.LoadoutItem
	if err := q.Order("loadout_id ASC, item_type ASC, item_id ASC, id ASC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_loadout_items")
	}
	return out, nil
}

func (r *loadoutRepository) AddConsumable(ctx context.Context, c *entities.LoadoutConsumable) error {
	return createEntity(ctx, r.db, c)
}

func (r *loadoutRepository) UpdateConsumable(ctx context.Context, c *entities.LoadoutConsumable) error {
	return updateEntity(ctx, r.db, c, c.ID, ErrLoadoutConsumableNotFound)
}

func (r *loadoutRepository) RemoveConsumable(ctx context.Context, id string) error {
	return deleteEntity[entities.LoadoutConsumable](ctx, r.db, id, ErrLoadoutConsumableNotFound)
}

func (r *loadoutRepository) GetConsumable(ctx context.Context, id string) (*entities.LoadoutConsumable, error) {
	return getEntity[entities.LoadoutConsumable](ctx, r.db, id, ErrLoadoutConsumableNotFound)
}

func (r *loadoutRepository) FindConsumable(ctx context.Context, loadoutID, consumableID string) (*entities.LoadoutConsumable, error) {
	var c entities.LoadoutConsumable
	err := r.db.WithContext(ctx).
		Where("loadout_id = ? AND consumable_id = ?", loadoutID, consumableID).
		Order("id ASC").
		First(&c).Error
	if err != nil {
		return nil, lookupError(err, ErrLoadoutConsumableNotFound, loadoutID+"/"+consumableID, "find_loadout_consumable")
	}
	return &c, nil
}

func (r *loadoutRepository) ListConsumables(ctx context.Context, loadoutID string) ([]*entities.LoadoutConsumable, error) {
	q := r.db.WithContext(ctx).Model(&entities.LoadoutConsumable{})
	if loadoutID != "" {
		q = q.Where("loadout_id = ?", loadoutID)
	}
	var out []*entities.LoadoutConsumable
	if err := q.Order("loadout_id ASC, consumable_id ASC, id ASC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_loadout_consumables")
	}
	return out, nil
}

func (r *loadoutRepository) AddCheckout(ctx context.Context, c *entities.LoadoutCheckout) error {
	return createEntity(ctx, r.db, c)
}

func (r *loadoutRepository) GetCheckout(ctx context.Context, id string) (*entities.LoadoutCheckout, error) {
	return getEntity[entities.LoadoutCheckout](ctx, r.db, id, ErrLoadoutCheckoutNotFound)
}

func (r *loadoutRepository) GetActiveCheckout(ctx context.Context, loadoutID string) (*entities.LoadoutCheckout, error) {
	var c entities.LoadoutCheckout
	err := r.db.WithContext(ctx).
		Where("loadout_id = ? AND return_date IS NULL", loadoutID).
		Order("checkout_date DESC, id ASC").
		First(&c).Error
	if err != nil {
		return nil, lookupError(err, ErrLoadoutCheckoutNotFound, loadoutID, "get_active_loadout_checkout")
	}
	return &c, nil
}

func (r *loadoutRepository) CloseCheckout(ctx context.Context, c *entities.LoadoutCheckout, when time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.LoadoutCheckout{}).
		Where("id = ? AND return_date IS NULL", c.ID).
		Updates(map[string]any{
			"return_date":   entities.NewEpochTime(when),
			"rounds_fired":  c.RoundsFired,
			"rain_exposure": c.RainExposure,
			"ammo_type":     c.AmmoType,
			"notes":         c.Notes,
		})
	if result.Error != nil {
		return storageError(result.Error, "close_loadout_checkout")
	}
	if result.RowsAffected > 0 {
		c.ReturnDate = entities.NewEpochTime(when)
		return nil
	}
	if _, err := r.GetCheckout(ctx, c.ID); err != nil {
		return err
	}
	return preconditionError(ErrCheckoutAlreadyReturned, "close_loadout_checkout", "loadout_checkout_id", c.ID)
}

func (r *loadoutRepository) ListCheckouts(ctx context.Context, loadoutID string) ([]*entities.LoadoutCheckout, error) {
	var out []*entities.LoadoutCheckout
	err := r.db.WithContext(ctx).
		Where("loadout_id = ?", loadoutID).
		Order("checkout_date DESC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err, "list_loadout_checkouts")
	}
	return out, nil
}
