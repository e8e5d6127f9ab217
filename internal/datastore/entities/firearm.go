package entities

import (
	"strings"

	"gorm.io/gorm"
)

// Firearm represents an owned firearm, including NFA-registered SBR/SBS rifles and shotguns.
type Firearm struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name;not null" validate:"required"`
	Caliber      string         `gorm:"column:caliber;not null" validate:"required"`
	SerialNumber string         `gorm:"column:serial_number"` // unique when not empty
	PurchaseDate EpochTime      `gorm:"column:purchase_date"`
	Notes        string         `gorm:"column:notes"`
	Status       CheckoutStatus `gorm:"column:status;not null" validate:"enum"`

	// NFA registration details
	IsNFA      bool    `gorm:"column:is_nfa"`
	NFAType    NFAType `gorm:"column:nfa_type" validate:"omitempty,nfafirearm"`
	TaxStampID string  `gorm:"column:tax_stamp_id"`
	FormType   string  `gorm:"column:form_type"`
	BarrelLen  string  `gorm:"column:barrel_length"`
	TrustName  string  `gorm:"column:trust_name"`

	TransferStatus TransferStatus `gorm:"column:transfer_status;not null" validate:"enum"`

	// Maintenance tracking
	RoundsFired           int    `gorm:"column:rounds_fired" validate:"gte=0"`
	CleanIntervalRounds   int    `gorm:"column:clean_interval_rounds" validate:"gte=0"`
	OilIntervalDays       int    `gorm:"column:oil_interval_days" validate:"gte=0"`
	NeedsMaintenance      bool   `gorm:"column:needs_maintenance"`
	MaintenanceConditions string `gorm:"column:maintenance_conditions"` // comma separated reasons
}

// TableName returns the table name for GORM.
func (Firearm) TableName() string {
	return "firearms"
}

// SetDefaults fills unset enum values.
func (f *Firearm) SetDefaults() {
	if f.Status == "" {
		f.Status = StatusAvailable
	}
	if f.TransferStatus == "" {
		f.TransferStatus = TransferOwned
	}
}

// BeforeCreate assigns an id and default enum values.
func (f *Firearm) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	f.SetDefaults()
	return nil
}

// Conditions splits MaintenanceConditions into trimmed, non-empty tokens.
func (f *Firearm) Conditions() []string {
	return SplitConditions(f.MaintenanceConditions)
}

// AddCondition appends a condition token unless already present.
func (f *Firearm) AddCondition(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	existing := f.Conditions()
	for _, c := range existing {
		if strings.EqualFold(c, token) {
			return
		}
	}
	f.MaintenanceConditions = strings.Join(append(existing, token), ",")
}

// SplitConditions splits a comma separated condition list.
func SplitConditions(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NFAItem represents a standalone NFA-registered item such as a suppressor.
type NFAItem struct {
	ID           string         `gorm:"column:id;primaryKey"`
	Name         string         `gorm:"column:name;not null" validate:"required"`
	NFAType      NFAType        `gorm:"column:nfa_type;not null" validate:"enum"`
	Manufacturer string         `gorm:"column:manufacturer"`
	SerialNumber string         `gorm:"column:serial_number"`
	TaxStampID   string         `gorm:"column:tax_stamp_id;not null" validate:"required"`
	CaliberBore  string         `gorm:"column:caliber_bore"`
	PurchaseDate EpochTime      `gorm:"column:purchase_date"`
	FormType     string         `gorm:"column:form_type"`
	BarrelLen    string         `gorm:"column:barrel_length"`
	TrustName    string         `gorm:"column:trust_name"`
	Notes        string         `gorm:"column:notes"`
	Status       CheckoutStatus `gorm:"column:status;not null" validate:"enum"`
}

// TableName returns the table name for GORM.
func (NFAItem) TableName() string {
	return "nfa_items"
}

// SetDefaults fills an unset status.
func (n *NFAItem) SetDefaults() {
	if n.Status == "" {
		n.Status = StatusAvailable
	}
}

// BeforeCreate assigns an id and default status.
func (n *NFAItem) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = NewID()
	}
	n.SetDefaults()
	return nil
}
