package inventory

import (
	"context"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// TransferService finalizes firearm sales and dispositions.
type TransferService struct {
	service
}

// NewTransferService creates a TransferService.
func NewTransferService(store Store, opts ...Option) *TransferService {
	return &TransferService{service: newService(store, opts)}
}

// Transfer records the transfer and marks the firearm TRANSFERRED. A firearm
// that is checked out or already transferred is rejected.
func (s *TransferService) Transfer(ctx context.Context, t *entities.Transfer) error {
	if !t.TransferDate.Valid() {
		t.TransferDate = entities.NewEpochTime(s.now())
	}
	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		f, err := repos.Firearms.GetByID(ctx, t.FirearmID)
		if err != nil {
			return err
		}
		if f.TransferStatus == entities.TransferTransferred {
			return preconditionError(ErrFirearmTransferred, "transfer_firearm", "firearm_id", f.ID)
		}
		checkedOut, err := repos.Checkouts.IsItemCheckedOut(ctx, f.ID)
		if err != nil {
			return err
		}
		if f.Status == entities.StatusCheckedOut || checkedOut {
			return preconditionError(ErrFirearmCheckedOut, "transfer_firearm",
				"firearm_id", f.ID, "firearm_name", f.Name)
		}
		if err := repos.Transfers.Add(ctx, t); err != nil {
			return err
		}
		return repos.Firearms.SetTransferStatus(ctx, f.ID, entities.TransferTransferred)
	})
	if err != nil {
		return err
	}
	s.log.Info("firearm transferred",
		logger.String("firearm_id", t.FirearmID),
		logger.String("transfer_id", t.ID))
	return nil
}

// History returns the transfers of a firearm, newest first.
func (s *TransferService) History(ctx context.Context, firearmID string) ([]*entities.Transfer, error) {
	return s.repos().Transfers.ListByFirearm(ctx, firearmID)
}
