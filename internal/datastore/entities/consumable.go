package entities

import "gorm.io/gorm"

// Consumable represents stock-tracked supplies such as ammunition, batteries or cleaning patches.
// Quantity is the running sum of its ledger transactions.
type Consumable struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name;not null" validate:"required"`
	Category    string `gorm:"column:category;not null" validate:"required"`
	Unit        string `gorm:"column:unit;not null" validate:"required"`
	Quantity    int    `gorm:"column:quantity"`
	MinQuantity int    `gorm:"column:min_quantity" validate:"gte=0"`
	Notes       string `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Consumable) TableName() string {
	return "consumables"
}

// BeforeCreate assigns an id.
func (c *Consumable) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// BelowMinimum reports whether stock is under the minimum level.
func (c *Consumable) BelowMinimum() bool {
	return c.Quantity < c.MinQuantity
}

// ConsumableTransaction is one append-only ledger entry with a signed quantity delta.
type ConsumableTransaction struct {
	ID              string          `gorm:"column:id;primaryKey"`
	ConsumableID    string          `gorm:"column:consumable_id;not null" validate:"required"`
	TransactionType TransactionType `gorm:"column:transaction_type;not null" validate:"enum"`
	Quantity        int             `gorm:"column:quantity;not null"`
	Date            EpochTime       `gorm:"column:date;not null"`
	Notes           string          `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (ConsumableTransaction) TableName() string {
	return "consumable_transactions"
}

// BeforeCreate assigns an id and timestamp.
func (t *ConsumableTransaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	if !t.Date.Valid() {
		t.Date = Now()
	}
	return nil
}
