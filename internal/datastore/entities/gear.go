package entities

import "gorm.io/gorm"

// SoftGear represents non-firearm equipment such as packs, optics cases or clothing.
type SoftGear struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name;not null" validate:"required"`
	Category     string         `gorm:"column:category;not null" validate:"required"`
	Brand        string         `gorm:"column:brand"`
	PurchaseDate EpochTime      `gorm:"column:purchase_date"`
	Notes        string         `gorm:"column:notes"`
	Status       CheckoutStatus `gorm:"column:status;not null" validate:"enum"`
}

// TableName returns the table name for GORM.
func (SoftGear) TableName() string {
	return "soft_gear"
}

// SetDefaults fills an unset status.
func (g *SoftGear) SetDefaults() {
	if g.Status == "" {
		g.Status = StatusAvailable
	}
}

// BeforeCreate assigns an id and default status.
func (g *SoftGear) BeforeCreate(_ *gorm.DB) error {
	if g.ID == "" {
		g.ID = NewID()
	}
	g.SetDefaults()
	return nil
}

// Attachment represents an optic, light or other accessory that may be mounted on a firearm.
type Attachment struct {
	ID                 string    `gorm:"column:id;primaryKey"`
	Name               string    `gorm:"column:name;not null" validate:"required"`
	Category           string    `gorm:"column:category;not null" validate:"required"`
	Brand              string    `gorm:"column:brand"`
	Model              string    `gorm:"column:model"`
	PurchaseDate       EpochTime `gorm:"column:purchase_date"`
	SerialNumber       string    `gorm:"column:serial_number"`
	MountedOnFirearmID *string   `gorm:"column:mounted_on_firearm_id"` // weak reference, may dangle
	MountPosition      string    `gorm:"column:mount_position"`
	ZeroDistanceYards  *int      `gorm:"column:zero_distance_yards" validate:"omitempty,gte=0"`
	ZeroNotes          string    `gorm:"column:zero_notes"`
	Notes              string    `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (Attachment) TableName() string {
	return "attachments"
}

// BeforeCreate assigns an id.
func (a *Attachment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}

// MountedOn returns the mounted firearm id or "".
func (a *Attachment) MountedOn() string {
	if a.MountedOnFirearmID == nil {
		return ""
	}
	return *a.MountedOnFirearmID
}
