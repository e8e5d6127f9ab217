package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// CheckoutRequest describes a single item checkout.
type CheckoutRequest struct {
	ItemID         string
	ItemType       entities.ItemType
	BorrowerName   string
	ExpectedReturn time.Time // zero when open-ended
	Notes          string
}

// CheckoutService moves single items between AVAILABLE and CHECKED_OUT.
type CheckoutService struct {
	service
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(store Store, opts ...Option) *CheckoutService {
	return &CheckoutService{service: newService(store, opts)}
}

// CheckoutItem assigns an item to the borrower with the given name. The
// checkout row and the status flip are committed together.
func (s *CheckoutService) CheckoutItem(ctx context.Context, req CheckoutRequest) (*entities.Checkout, error) {
	var checkout *entities.Checkout
	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		borrower, err := repos.Borrowers.GetByName(ctx, req.BorrowerName)
		if err != nil {
			return err
		}
		checkout, err = checkoutItem(ctx, repos, &entities.Checkout{
			ItemID:         req.ItemID,
			ItemType:       req.ItemType,
			BorrowerID:     borrower.ID,
			CheckoutDate:   entities.NewEpochTime(s.now()),
			ExpectedReturn: entities.NewEpochTime(req.ExpectedReturn),
			Notes:          req.Notes,
		}, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item checked out",
		logger.String("item_id", checkout.ItemID),
		logger.String("item_type", string(checkout.ItemType)),
		logger.String("borrower_id", checkout.BorrowerID),
		logger.String("checkout_id", checkout.ID))
	return checkout, nil
}

// ReturnItem closes an active checkout and makes the item available again.
func (s *CheckoutService) ReturnItem(ctx context.Context, checkoutID string) (*entities.Checkout, error) {
	var checkout *entities.Checkout
	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		var err error
		checkout, err = returnCheckout(ctx, repos, checkoutID, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item returned",
		logger.String("item_id", checkout.ItemID),
		logger.String("checkout_id", checkout.ID))
	return checkout, nil
}

// IsItemCheckedOut reports whether the item has an active checkout.
func (s *CheckoutService) IsItemCheckedOut(ctx context.Context, itemID string) (bool, error) {
	return s.repos().Checkouts.IsItemCheckedOut(ctx, itemID)
}

// ActiveCheckouts lists open checkouts, newest first.
func (s *CheckoutService) ActiveCheckouts(ctx context.Context) ([]*entities.Checkout, error) {
	return s.repos().Checkouts.GetActive(ctx)
}

// OverdueCheckouts lists open checkouts past their expected return.
func (s *CheckoutService) OverdueCheckouts(ctx context.Context) ([]*entities.Checkout, error) {
	return s.repos().Checkouts.ListOverdue(ctx, s.now())
}

// checkoutItem verifies the item can leave and records the checkout.
func checkoutItem(ctx context.Context, repos *repository.Repositories, c *entities.Checkout, now time.Time) (*entities.Checkout, error) {
	item, err := repos.Items.Get(ctx, c.ItemType, c.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status != entities.StatusAvailable {
		return nil, preconditionError(ErrItemUnavailable, "checkout_item",
			"item_id", item.ID, "item_name", item.Name, "status", item.Status)
	}
	if item.Type == entities.ItemFirearm {
		status, err := repos.Firearms.GetMaintenanceStatus(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		if status.NeedsMaintenance {
			return nil, preconditionError(ErrNeedsMaintenance, "checkout_item",
				"item_id", item.ID, "item_name", item.Name, "reasons", strings.Join(status.Reasons, "; "))
		}
	}
	if err := repos.Checkouts.Add(ctx, c); err != nil {
		return nil, err
	}
	if err := repos.Items.SetStatus(ctx, c.ItemType, c.ItemID, entities.StatusCheckedOut); err != nil {
		return nil, err
	}
	return c, nil
}

// returnCheckout closes the checkout and flips a CHECKED_OUT item back to
// AVAILABLE. Items marked LOST or RETIRED meanwhile keep their status.
func returnCheckout(ctx context.Context, repos *repository.Repositories, checkoutID string, now time.Time) (*entities.Checkout, error) {
	checkout, err := repos.Checkouts.GetByID(ctx, checkoutID)
	if err != nil {
		return nil, err
	}
	if err := repos.Checkouts.MarkReturned(ctx, checkoutID, now); err != nil {
		return nil, err
	}
	checkout.ActualReturn = entities.NewEpochTime(now)

	if !checkout.ItemType.Checkoutable() {
		return checkout, nil
	}
	item, err := repos.Items.Get(ctx, checkout.ItemType, checkout.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == entities.StatusCheckedOut {
		if err := repos.Items.SetStatus(ctx, item.Type, item.ID, entities.StatusAvailable); err != nil {
			return nil, err
		}
	}
	return checkout, nil
}
