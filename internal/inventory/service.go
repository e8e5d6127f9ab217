// Package inventory holds the services that keep cross-entity invariants:
// checkouts and returns, loadout trips, maintenance bookkeeping, transfers and
// consumable stock movements. Every multi-step operation runs in one store
// transaction so observers never see a partial result.
package inventory

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// Store is the part of datastore.Store the services need.
type Store interface {
	DB() *gorm.DB
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Option configures a service.
type Option func(*service)

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAllowNegativeStock lets consumable withdrawals drive stock below zero.
func WithAllowNegativeStock(allow bool) Option {
	return func(s *service) {
		s.allowNegative = allow
	}
}

type service struct {
	store         Store
	log           logger.Logger
	now           func() time.Time
	allowNegative bool
}

func newService(store Store, opts []Option) service {
	s := service{
		store: store,
		log:   logger.Global().Module(component),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// repos returns repositories bound to the store outside any transaction.
func (s *service) repos() *repository.Repositories {
	return repository.New(s.store.DB())
}

// inTx runs fn with repositories bound to a single transaction.
func (s *service) inTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return s.store.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(repository.New(tx))
	})
}
