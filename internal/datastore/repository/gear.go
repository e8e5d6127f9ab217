package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// NFAItemRepository provides access to standalone NFA items.
type NFAItemRepository interface {
	Add(ctx context.Context, n *entities.NFAItem) error
	Update(ctx context.Context, n *entities.NFAItem) error
	// Delete removes the item with its maintenance logs and checkouts.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.NFAItem, error)
	GetByName(ctx context.Context, name string) (*entities.NFAItem, error)
	// List orders by name. An empty status lists all items.
	List(ctx context.Context, status entities.CheckoutStatus) ([]*entities.NFAItem, error)
	SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error
}

type nfaItemRepository struct {
	db *gorm.DB
}

// NewNFAItemRepository creates a new NFAItemRepository.
func NewNFAItemRepository(db *gorm.DB) NFAItemRepository {
	return &nfaItemRepository{db: db}
}

func (r *nfaItemRepository) Add(ctx context.Context, n *entities.NFAItem) error {
	return createEntity(ctx, r.db, n)
}

func (r *nfaItemRepository) Update(ctx context.Context, n *entities.NFAItem) error {
	return updateEntity(ctx, r.db, n, n.ID, ErrNFAItemNotFound)
}

func (r *nfaItemRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := deleteItemHistory(tx, id, entities.ItemNFA); err != nil {
			return err
		}
		return deleteEntity[entities.NFAItem](ctx, tx, id, ErrNFAItemNotFound)
	})
}

func (r *nfaItemRepository) GetByID(ctx context.Context, id string) (*entities.NFAItem, error) {
	return getEntity[entities.NFAItem](ctx, r.db, id, ErrNFAItemNotFound)
}

func (r *nfaItemRepository) GetByName(ctx context.Context, name string) (*entities.NFAItem, error) {
	return getEntityByName[entities.NFAItem](ctx, r.db, name, ErrNFAItemNotFound)
}

func (r *nfaItemRepository) List(ctx context.Context, status entities.CheckoutStatus) ([]*entities.NFAItem, error) {
	return listByStatus[entities.NFAItem](ctx, r.db, status)
}

func (r *nfaItemRepository) SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error {
	return updateColumns[entities.NFAItem](ctx, r.db, id, "set_nfa_item_status",
		map[string]any{"status": status}, ErrNFAItemNotFound)
}

// SoftGearRepository provides access to soft gear.
type SoftGearRepository interface {
	Add(ctx context.Context, g *entities.SoftGear) error
	Update(ctx context.Context, g *entities.SoftGear) error
	// Delete removes the gear with its maintenance logs and checkouts.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.SoftGear, error)
	GetByName(ctx context.Context, name string) (*entities.SoftGear, error)
	// List orders by name. An empty status lists all gear.
	List(ctx context.Context, status entities.CheckoutStatus) ([]*entities.SoftGear, error)
	SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error
}

type softGearRepository struct {
	db *gorm.DB
}

// NewSoftGearRepository creates a new SoftGearRepository.
func NewSoftGearRepository(db *gorm.DB) SoftGearRepository {
	return &softGearRepository{db: db}
}

func (r *softGearRepository) Add(ctx context.Context, g *entities.SoftGear) error {
	return createEntity(ctx, r.db, g)
}

func (r *softGearRepository) Update(ctx context.Context, g *entities.SoftGear) error {
	return updateEntity(ctx, r.db, g, g.ID, ErrSoftGearNotFound)
}

func (r *softGearRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := deleteItemHistory(tx, id, entities.ItemSoftGear); err != nil {
			return err
		}
		return deleteEntity[entities.SoftGear](ctx, tx, id, ErrSoftGearNotFound)
	})
}

func (r *softGearRepository) GetByID(ctx context.Context, id string) (*entities.SoftGear, error) {
	return getEntity[entities.SoftGear](ctx, r.db, id, ErrSoftGearNotFound)
}

func (r *softGearRepository) GetByName(ctx context.Context, name string) (*entities.SoftGear, error) {
	return getEntityByName[entities.SoftGear](ctx, r.db, name, ErrSoftGearNotFound)
}

func (r *softGearRepository) List(ctx context.Context, status entities.CheckoutStatus) ([]*entities.SoftGear, error) {
	return listByStatus[entities.SoftGear](ctx, r.db, status)
}

func (r *softGearRepository) SetStatus(ctx context.Context, id string, status entities.CheckoutStatus) error {
	return updateColumns[entities.SoftGear](ctx, r.db, id, "set_soft_gear_status",
		map[string]any{"status": status}, ErrSoftGearNotFound)
}

func listByStatus[T any](ctx context.Context, db *gorm.DB, status entities.CheckoutStatus) ([]*T, error) {
	var zero T
	q := db.WithContext(ctx).Model(&zero)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*T
	if err := q.Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, storageError(err, "list_"+entityName(&zero))
	}
	return out, nil
}

// AttachmentRepository provides access to attachments.
type AttachmentRepository interface {
	Add(ctx context.Context, a *entities.Attachment) error
	Update(ctx context.Context, a *entities.Attachment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Attachment, error)
	GetByName(ctx context.Context, name string) (*entities.Attachment, error)
	// List orders by name.
	List(ctx context.Context) ([]*entities.Attachment, error)
	// ListByFirearm returns the attachments mounted on a firearm.
	ListByFirearm(ctx context.Context, firearmID string) ([]*entities.Attachment, error)
	// Mount sets or, with an empty firearm id, clears the mount reference.
	Mount(ctx context.Context, id, firearmID, position string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Add(ctx context.Context, a *entities.Attachment) error {
	return createEntity(ctx, r.db, a)
}

func (r *attachmentRepository) Update(ctx context.Context, a *entities.Attachment) error {
	return updateEntity(ctx, r.db, a, a.ID, ErrAttachmentNotFound)
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	return deleteEntity[entities.Attachment](ctx, r.db, id, ErrAttachmentNotFound)
}

func (r *attachmentRepository) GetByID(ctx context.Context, id string) (*entities.Attachment, error) {
	return getEntity[entities.Attachment](ctx, r.db, id, ErrAttachmentNotFound)
}

func (r *attachmentRepository) GetByName(ctx context.Context, name string) (*entities.Attachment, error) {
	return getEntityByName[entities.Attachment](ctx, r.db, name, ErrAttachmentNotFound)
}

func (r *attachmentRepository) List(ctx context.Context) ([]*entities.Attachment, error) {
	return listEntities[entities.Attachment](ctx, r.db, "name ASC, id ASC")
}

func (r *attachmentRepository) ListByFirearm(ctx context.Context, firearmID string) ([]*entities.Attachment, error) {
	var out []*entities.Attachment
	err := r.db.WithContext(ctx).
		Where("mounted_on_firearm_id = ?", firearmID).
		Order("name ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, storageError(err, "list_attachments_by_firearm")
	}
	return out, nil
}

func (r *attachmentRepository) Mount(ctx context.Context, id, firearmID, position string) error {
	var ref any
	if firearmID != "" {
		ref = firearmID
	}
	return updateColumns[entities.Attachment](ctx, r.db, id, "mount_attachment", map[string]any{
		"mounted_on_firearm_id": ref,
		"mount_position":        position,
	}, ErrAttachmentNotFound)
}
