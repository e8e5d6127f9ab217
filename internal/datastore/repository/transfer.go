package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// TransferRepository provides access to firearm transfer records.
// Transfers are history and are never deleted.
type TransferRepository interface {
	Add(ctx context.Context, t *entities.Transfer) error
	GetByID(ctx context.Context, id string) (*entities.Transfer, error)
	// List orders by transfer date, newest first.
	List(ctx context.Context) ([]*entities.Transfer, error)
	ListByFirearm(ctx context.Context, firearmID string) ([]*entities.Transfer, error)
}

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Add(ctx context.Context, t *entities.Transfer) error {
	return createEntity(ctx, r.db, t)
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	return getEntity[entities.Transfer](ctx, r.db, id, ErrTransferNotFound)
}

func (r *transferRepository) List(ctx context.Context) ([]*entities.Transfer, error) {
	return listEntities[entities.Transfer](ctx, r.db, "transfer_date DESC, id ASC")
}

func (r *transferRepository) ListByFirearm(ctx context.Context, firearmID string) ([]*entities.Transfer, error) {
	var out []*entities.Transfer
	err := r.db.WithContext(ctx).
		Where("firearm_id = ?", firearmID).
		Order("transfer_date DESC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err, "list_transfers_by_firearm")
	}
	return out, nil
}
