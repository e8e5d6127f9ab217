package inventory

import (
	"context"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// ConsumableService moves consumable stock through the ledger.
type ConsumableService struct {
	service
}

// NewConsumableService creates a ConsumableService.
func NewConsumableService(store Store, opts ...Option) *ConsumableService {
	return &ConsumableService{service: newService(store, opts)}
}

// Restock adds quantity units to stock.
func (s *ConsumableService) Restock(ctx context.Context, consumableID string, quantity int, notes string) (*entities.Consumable, error) {
	if quantity <= 0 {
		return nil, quantityError("restock", quantity)
	}
	return s.record(ctx, consumableID, entities.TxRestock, quantity, notes)
}

// Use withdraws quantity units. Stock may not go negative unless the service
// was created WithAllowNegativeStock.
func (s *ConsumableService) Use(ctx context.Context, consumableID string, quantity int, notes string) (*entities.Consumable, error) {
	if quantity <= 0 {
		return nil, quantityError("use", quantity)
	}
	return s.record(ctx, consumableID, entities.TxUse, -quantity, notes)
}

// Adjust applies a signed correction, for example after a physical count.
func (s *ConsumableService) Adjust(ctx context.Context, consumableID string, delta int, notes string) (*entities.Consumable, error) {
	if delta == 0 {
		return s.repos().Consumables.GetByID(ctx, consumableID)
	}
	return s.record(ctx, consumableID, entities.TxAdjust, delta, notes)
}

// LowStock lists consumables below their minimum quantity.
func (s *ConsumableService) LowStock(ctx context.Context) ([]*entities.Consumable, error) {
	return s.repos().Consumables.ListLowStock(ctx)
}

// Ledger returns the transactions of a consumable in recording order.
func (s *ConsumableService) Ledger(ctx context.Context, consumableID string) ([]*entities.ConsumableTransaction, error) {
	return s.repos().Consumables.Transactions(ctx, consumableID)
}

func (s *ConsumableService) record(ctx context.Context, consumableID string, txType entities.TransactionType, delta int, notes string) (*entities.Consumable, error) {
	c, err := s.repos().Consumables.RecordTransaction(ctx, repository.LedgerEntry{
		ConsumableID:  consumableID,
		Type:          txType,
		Delta:         delta,
		Date:          entities.NewEpochTime(s.now()),
		Notes:         notes,
		AllowNegative: s.allowNegative,
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("consumable stock changed",
		logger.String("consumable_id", consumableID),
		logger.String("type", string(txType)),
		logger.Int("delta", delta),
		logger.Int("quantity", c.Quantity))
	if c.BelowMinimum() {
		s.log.Warn("consumable below minimum",
			logger.String("consumable_id", c.ID),
			logger.String("name", c.Name),
			logger.Int("quantity", c.Quantity),
			logger.Int("min_quantity", c.MinQuantity))
	}
	return c, nil
}
