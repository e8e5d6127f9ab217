package entities

import "gorm.io/gorm"

// Loadout is a named reusable bundle of items and consumables checked out together.
type Loadout struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;not null" validate:"required"`
	Description string    `gorm:"column:description"`
	CreatedDate EpochTime `gorm:"column:created_date"`
	Notes       string    `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Loadout) TableName() string {
	return "loadouts"
}

// BeforeCreate assigns an id and creation date.
func (l *Loadout) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	if !l.CreatedDate.Valid() {
		l.CreatedDate = Now()
	}
	return nil
}

// LoadoutItem places one checkout-able item in a loadout.
type LoadoutItem struct {
	ID        string   `gorm:"column:id;primaryKey"`
	LoadoutID string   `gorm:"column:loadout_id;not null" validate:"required"`
	ItemID    string   `gorm:"column:item_id;not null" validate:"required"`
	ItemType  ItemType `gorm:"column:item_type;not null" validate:"enum"`
	Notes     string   `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (LoadoutItem) TableName() string {
	return "loadout_items"
}

// BeforeCreate assigns an id.
func (i *LoadoutItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}

// LoadoutConsumable requests a quantity of a consumable for a loadout.
type LoadoutConsumable struct {
	ID           string `gorm:"column:id;primaryKey"`
	LoadoutID    string `gorm:"column:loadout_id;not null" validate:"required"`
	ConsumableID string `gorm:"column:consumable_id;not null" validate:"required"`
	Quantity     int    `gorm:"column:quantity;not null" validate:"gte=1"`
	Notes        string `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (LoadoutConsumable) TableName() string {
	return "loadout_consumables"
}

// BeforeCreate assigns an id.
func (c *LoadoutConsumable) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// LoadoutCheckout records one loadout trip. CheckoutID points at the first
// item checkout and is empty for consumable-only loadouts. It is active while
// ReturnDate is unset.
type LoadoutCheckout struct {
	ID           string    `gorm:"column:id;primaryKey"`
	LoadoutID    string    `gorm:"column:loadout_id;not null" validate:"required"`
	CheckoutID   string    `gorm:"column:checkout_id"`
	BorrowerID   string    `gorm:"column:borrower_id"`
	CheckoutDate EpochTime `gorm:"column:checkout_date;not null"`
	ReturnDate   EpochTime `gorm:"column:return_date"`
	RoundsFired  int       `gorm:"column:rounds_fired" validate:"gte=0"`
	RainExposure bool      `gorm:"column:rain_exposure"`
	AmmoType     string    `gorm:"column:ammo_type"`
	Notes        string    `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (LoadoutCheckout) TableName() string {
	return "loadout_checkouts"
}

// BeforeCreate assigns an id and checkout date.
func (c *LoadoutCheckout) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if !c.CheckoutDate.Valid() {
		c.CheckoutDate = Now()
	}
	return nil
}

// Active reports whether the loadout has not been returned.
func (c *LoadoutCheckout) Active() bool {
	return !c.ReturnDate.Valid()
}
