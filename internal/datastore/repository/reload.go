package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// ReloadBatchFilter narrows ReloadBatchRepository.List.
type ReloadBatchFilter struct {
	Cartridge string
	FirearmID string
	Status    entities.ReloadStatus
}

// ReloadBatchRepository provides access to handload recipes.
type ReloadBatchRepository interface {
	Add(ctx context.Context, b *entities.ReloadBatch) error
	Update(ctx context.Context, b *entities.ReloadBatch) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.ReloadBatch, error)
	// FindByRecipe returns the batch matching cartridge and bullet model, case-insensitively.
	FindByRecipe(ctx context.Context, cartridge, bulletModel string) (*entities.ReloadBatch, error)
	// List orders by date_created, newest first.
	List(ctx context.Context, filter ReloadBatchFilter) ([]*entities.ReloadBatch, error)
}

type reloadBatchRepository struct {
	db *gorm.DB
}

// NewReloadBatchRepository creates a new ReloadBatchRepository.
func NewReloadBatchRepository(db *gorm.DB) ReloadBatchRepository {
	return &reloadBatchRepository{db: db}
}

func (r *reloadBatchRepository) Add(ctx context.Context, b *entities.ReloadBatch) error {
	return createEntity(ctx, r.db, b)
}

func (r *reloadBatchRepository) Update(ctx context.Context, b *entities.ReloadBatch) error {
	return updateEntity(ctx, r.db, b, b.ID, ErrReloadBatchNotFound)
}

func (r *reloadBatchRepository) Delete(ctx context.Context, id string) error {
	return deleteEntity[entities.ReloadBatch](ctx, r.db, id, ErrReloadBatchNotFound)
}

func (r *reloadBatchRepository) GetByID(ctx context.Context, id string) (*entities.ReloadBatch, error) {
	return getEntity[entities.ReloadBatch](ctx, r.db, id, ErrReloadBatchNotFound)
}

func (r *reloadBatchRepository) FindByRecipe(ctx context.Context, cartridge, bulletModel string) (*entities.ReloadBatch, error) {
	cartridge = strings.TrimSpace(cartridge)
	bulletModel = strings.TrimSpace(bulletModel)
	var b entities.ReloadBatch
	err := r.db.WithContext(ctx).
		Where("cartridge = ? COLLATE NOCASE AND bullet_model = ? COLLATE NOCASE", cartridge, bulletModel).
		Order("id ASC").
		First(&b).Error
	if err != nil {
		return nil, lookupError(err, ErrReloadBatchNotFound, cartridge+"/"+bulletModel, "find_reload_batch")
	}
	return &b, nil
}

func (r *reloadBatchRepository) List(ctx context.Context, filter ReloadBatchFilter) ([]*entities.ReloadBatch, error) {
	q := r.db.WithContext(ctx).Model(&entities.ReloadBatch{})
	if filter.Cartridge != "" {
		q = q.Where("cartridge = ? COLLATE NOCASE", filter.Cartridge)
	}
	if filter.FirearmID != "" {
		q = q.Where("firearm_id = ?", filter.FirearmID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var out []*entities.ReloadBatch
	if err := q.Order("date_created DESC, id ASC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_reload_batches")
	}
	return out, nil
}
