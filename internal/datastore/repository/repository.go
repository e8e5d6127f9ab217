// Package repository provides typed data access for every gear tracker entity family.
//
// Each repository wraps a *gorm.DB and holds no transaction of its own. Build a
// Repositories set on a transaction handle to run several calls atomically:
//
//	err := store.Transaction(ctx, func(tx *gorm.DB) error {
//	    repos := repository.New(tx)
//	    ...
//	})
package repository

import "gorm.io/gorm"

// Repositories bundles every repository bound to the same database handle.
type Repositories struct {
	Firearms      FirearmRepository
	NFAItems      NFAItemRepository
	SoftGear      SoftGearRepository
	Attachments   AttachmentRepository
	Consumables   ConsumableRepository
	ReloadBatches ReloadBatchRepository
	Borrowers     BorrowerRepository
	Checkouts     CheckoutRepository
	Maintenance   MaintenanceRepository
	Loadouts      LoadoutRepository
	Transfers     TransferRepository
	Items         ItemRepository
}

// New binds all repositories to db, which may be a transaction handle.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Firearms:      NewFirearmRepository(db),
		NFAItems:      NewNFAItemRepository(db),
		SoftGear:      NewSoftGearRepository(db),
		Attachments:   NewAttachmentRepository(db),
		Consumables:   NewConsumableRepository(db),
		ReloadBatches: NewReloadBatchRepository(db),
		Borrowers:     NewBorrowerRepository(db),
		Checkouts:     NewCheckoutRepository(db),
		Maintenance:   NewMaintenanceRepository(db),
		Loadouts:      NewLoadoutRepository(db),
		Transfers:     NewTransferRepository(db),
		Items:         NewItemRepository(db),
	}
}

// inTransaction runs fn in a transaction, or a savepoint when db is already one.
func inTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
