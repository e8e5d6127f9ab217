package entities

import "gorm.io/gorm"

// MaintenanceLog is an append-only maintenance history entry for any item.
type MaintenanceLog struct {
	ID        string          `gorm:"column:id;primaryKey"`
	ItemID    string          `gorm:"column:item_id;not null" validate:"required"`
	ItemType  ItemType        `gorm:"column:item_type;not null" validate:"enum"`
	LogType   MaintenanceType `gorm:"column:log_type;not null" validate:"enum"`
	Date      EpochTime       `gorm:"column:date;not null"`
	Details   string          `gorm:"column:details"`
	AmmoCount *int            `gorm:"column:ammo_count" validate:"omitempty,gte=0"`
}

// TableName returns the table name for GORM.
func (MaintenanceLog) TableName() string {
	return "maintenance_logs"
}

// BeforeCreate assigns an id and timestamp.
func (m *MaintenanceLog) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	if !m.Date.Valid() {
		m.Date = Now()
	}
	return nil
}

// Borrower is a person items can be checked out to.
type Borrower struct {
	ID    string `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name;not null" validate:"required"`
	Phone string `gorm:"column:phone"`
	Email string `gorm:"column:email" validate:"omitempty,email"`
	Notes string `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Borrower) TableName() string {
	return "borrowers"
}

// BeforeCreate assigns an id.
func (b *Borrower) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// Checkout assigns an item to a borrower. It is active while ActualReturn is unset.
type Checkout struct {
	ID             string    `gorm:"column:id;primaryKey"`
	ItemID         string    `gorm:"column:item_id;not null" validate:"required"`
	ItemType       ItemType  `gorm:"column:item_type;not null" validate:"enum"`
	BorrowerID     string    `gorm:"column:borrower_id;not null" validate:"required"`
	CheckoutDate   EpochTime `gorm:"column:checkout_date;not null"`
	ExpectedReturn EpochTime `gorm:"column:expected_return"`
	ActualReturn   EpochTime `gorm:"column:actual_return"`
	Notes          string    `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Checkout) TableName() string {
	return "checkouts"
}

// BeforeCreate assigns an id and checkout date.
func (c *Checkout) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if !c.CheckoutDate.Valid() {
		c.CheckoutDate = Now()
	}
	return nil
}

// Active reports whether the item has not been returned.
func (c *Checkout) Active() bool {
	return !c.ActualReturn.Valid()
}

// Transfer records the sale or disposition of a firearm.
type Transfer struct {
	ID             string    `gorm:"column:id;primaryKey"`
	FirearmID      string    `gorm:"column:firearm_id;not null" validate:"required"`
	TransferDate   EpochTime `gorm:"column:transfer_date;not null"`
	BuyerName      string    `gorm:"column:buyer_name;not null" validate:"required"`
	BuyerAddress   string    `gorm:"column:buyer_address"`
	BuyerDLNumber  string    `gorm:"column:buyer_dl_number;not null" validate:"required"`
	BuyerLTCNumber string    `gorm:"column:buyer_ltc_number"`
	SalePrice      *float64  `gorm:"column:sale_price" validate:"omitempty,gte=0"`
	FFLDealer      string    `gorm:"column:ffl_dealer"`
	FFLLicense     string    `gorm:"column:ffl_license"`
	Notes          string    `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Transfer) TableName() string {
	return "transfers"
}

// BeforeCreate assigns an id and transfer date.
func (t *Transfer) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	if !t.TransferDate.Valid() {
		t.TransferDate = Now()
	}
	return nil
}
