// Package entities defines the GORM entity models for the gear tracker database.
//
// All ids are UUID strings generated in BeforeCreate when empty. Timestamps are
// stored as whole-second epoch integers through EpochTime, booleans as 0/1 and
// enumerations as their textual names.
//
// # Inventory
//
//   - Firearm, NFAItem, SoftGear, Attachment
//   - Consumable and its append-only ConsumableTransaction ledger
//   - ReloadBatch: handload recipe plus test results
//
// # Activity
//
//   - Borrower, Checkout
//   - MaintenanceLog: append-only maintenance history
//   - Transfer: firearm disposition record
//
// # Loadouts
//
//   - Loadout with its LoadoutItem, LoadoutConsumable and LoadoutCheckout rows
//
// Attachment.MountedOnFirearmID and ReloadBatch.FirearmID are weak references
// that may dangle after the firearm is deleted.
package entities
