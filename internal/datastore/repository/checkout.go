package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// BorrowerRepository provides access to borrowers.
type BorrowerRepository interface {
	Add(ctx context.Context, b *entities.Borrower) error
	Update(ctx context.Context, b *entities.Borrower) error
	// Delete fails with ErrBorrowerHasActiveCheckouts while the borrower holds items.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Borrower, error)
	GetByName(ctx context.Context, name string) (*entities.Borrower, error)
	// List orders by name.
	List(ctx context.Context) ([]*entities.Borrower, error)
}

type borrowerRepository struct {
	db *gorm.DB
}

// NewBorrowerRepository creates a new BorrowerRepository.
func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) Add(ctx context.Context, b *entities.Borrower) error {
	return createEntity(ctx, r.db, b)
}

func (r *borrowerRepository) Update(ctx context.Context, b *entities.Borrower) error {
	return updateEntity(ctx, r.db, b, b.ID, ErrBorrowerNotFound)
}

func (r *borrowerRepository) Delete(ctx context.Context, id string) error {
	return inTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&entities.Checkout{}).
			Where("borrower_id = ? AND actual_return IS NULL", id).
			Count(&active).Error
		if err != nil {
			return storageError(err, "count_active_checkouts")
		}
		if active > 0 {
			return preconditionError(ErrBorrowerHasActiveCheckouts, "delete_borrower",
				"borrower_id", id, "active_checkouts", active)
		}
		return deleteEntity[entities.Borrower](ctx, tx, id, ErrBorrowerNotFound)
	})
}

func (r *borrowerRepository) GetByID(ctx context.Context, id string) (*entities.Borrower, error) {
	return getEntity[entities.Borrower](ctx, r.db, id, ErrBorrowerNotFound)
}

func (r *borrowerRepository) GetByName(ctx context.Context, name string) (*entities.Borrower, error) {
	return getEntityByName[entities.Borrower](ctx, r.db, name, ErrBorrowerNotFound)
}

func (r *borrowerRepository) List(ctx context.Context) ([]*entities.Borrower, error) {
	return listEntities[entities.Borrower](ctx, r.db, "name ASC, id ASC")
}

// CheckoutRepository provides access to checkouts. A checkout is active while
// actual_return is NULL, and storage allows at most one active checkout per item.
type CheckoutRepository interface {
	Add(ctx context.Context, c *entities.Checkout) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Checkout, error)
	// List orders by checkout date, newest first.
	List(ctx context.Context) ([]*entities.Checkout, error)
	// GetActive returns every active checkout, newest first.
	GetActive(ctx context.Context) ([]*entities.Checkout, error)
	// GetCheckoutByItem returns the active checkout of an item.
	GetCheckoutByItem(ctx context.Context, itemID string) (*entities.Checkout, error)
	IsItemCheckedOut(ctx context.Context, itemID string) (bool, error)
	// ListHistory returns every checkout of an item, newest first.
	ListHistory(ctx context.Context, itemID string) ([]*entities.Checkout, error)
	// ListByBorrower returns every checkout of a borrower, newest first.
	ListByBorrower(ctx context.Context, borrowerID string) ([]*entities.Checkout, error)
	// ListOverdue returns active checkouts whose expected return is before now.
	ListOverdue(ctx context.Context, now time.Time) ([]*entities.Checkout, error)
	// MarkReturned closes an active checkout.
	MarkReturned(ctx context.Context, id string, when time.Time) error
}

type checkoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository creates a new CheckoutRepository.
func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

const checkoutOrder = "checkout_date DESC, id ASC"

func (r *checkoutRepository) Add(ctx context.Context, c *entities.Checkout) error {
	return createEntity(ctx, r.db, c)
}

func (r *checkoutRepository) Delete(ctx context.Context, id string) error {
	return deleteEntity[entities.Checkout](ctx, r.db, id, ErrCheckoutNotFound)
}

func (r *checkoutRepository) GetByID(ctx context.Context, id string) (*entities.Checkout, error) {
	return getEntity[entities.Checkout](ctx, r.db, id, ErrCheckoutNotFound)
}

func (r *checkoutRepository) List(ctx context.Context) ([]*entities.Checkout, error) {
	return listEntities[entities.Checkout](ctx, r.db, checkoutOrder)
}

func (r *checkoutRepository) GetActive(ctx context.Context) ([]*entities.Checkout, error) {
	return r.find(ctx, "list_active_checkouts", "actual_return IS NULL")
}

func (r *checkoutRepository) GetCheckoutByItem(ctx context.Context, itemID string) (*entities.Checkout, error) {
	var c entities.Checkout
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND actual_return IS NULL", itemID).
		First(&c).Error
	if err != nil {
		return nil, lookupError(err, ErrCheckoutNotFound, itemID, "get_checkout_by_item")
	}
	return &c, nil
}

func (r *checkoutRepository) IsItemCheckedOut(ctx context.Context, itemID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entities.Checkout{}).
		Where("item_id = ? AND actual_return IS NULL", itemID).
		Count(&n).Error
	if err != nil {
		return false, storageError(err, "is_item_checked_out")
	}
	return n > 0, nil
}

func (r *checkoutRepository) ListHistory(ctx context.Context, itemID string) ([]*entities.Checkout, error) {
	return r.find(ctx, "list_checkout_history", "item_id = ?", itemID)
}

func (r *checkoutRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*entities.Checkout, error) {
	return r.find(ctx, "list_checkouts_by_borrower", "borrower_id = ?", borrowerID)
}

func (r *checkoutRepository) ListOverdue(ctx context.Context, now time.Time) ([]*entities.Checkout, error) {
	return r.find(ctx, "list_overdue_checkouts",
		"actual_return IS NULL AND expected_return IS NOT NULL AND expected_return < ?", now.Unix())
}

func (r *checkoutRepository) MarkReturned(ctx context.Context, id string, when time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Checkout{}).
		Where("id = ? AND actual_return IS NULL", id).
		Update("actual_return", entities.NewEpochTime(when))
	if result.Error != nil {
		return storageError(result.Error, "mark_returned")
	}
	if result.RowsAffected > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return preconditionError(ErrCheckoutAlreadyReturned, "mark_returned", "checkout_id", id)
}

func (r *checkoutRepository) find(ctx context.Context, operation, query string, args ...any) ([]*entities.Checkout, error) {
	var out []*entities.Checkout
	if err := r.db.WithContext(ctx).Where(query, args...).Order(checkoutOrder).Find(&out).Error; err != nil {
		return nil, storageError(err, operation)
	}
	return out, nil
}
