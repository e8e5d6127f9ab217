package entities

import "gorm.io/gorm"

// ReloadBatch is a handload recipe together with its chronograph and group test results.
// All measurement fields are optional.
type ReloadBatch struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Cartridge   string    `gorm:"column:cartridge;not null" validate:"required"`
	FirearmID   *string   `gorm:"column:firearm_id"` // weak reference, may dangle
	DateCreated EpochTime `gorm:"column:date_created"`

	// Components
	BulletMaker    string   `gorm:"column:bullet_maker"`
	BulletModel    string   `gorm:"column:bullet_model"`
	BulletWeightGr *float64 `gorm:"column:bullet_weight_gr" validate:"omitempty,gte=0"`
	PowderName     string   `gorm:"column:powder_name"`
	PowderChargeGr *float64 `gorm:"column:powder_charge_gr" validate:"omitempty,gte=0"`
	PowderLot      string   `gorm:"column:powder_lot"`
	PrimerMaker    string   `gorm:"column:primer_maker"`
	PrimerType     string   `gorm:"column:primer_type"`
	CaseBrand      string   `gorm:"column:case_brand"`
	CaseTimesFired *int     `gorm:"column:case_times_fired" validate:"omitempty,gte=0"`
	CasePrepNotes  string   `gorm:"column:case_prep_notes"`
	COALIn         *float64 `gorm:"column:coal_in" validate:"omitempty,gte=0"`
	CrimpStyle     string   `gorm:"column:crimp_style"`

	// Test results
	TestDate           EpochTime `gorm:"column:test_date"`
	AvgVelocity        *float64  `gorm:"column:avg_velocity" validate:"omitempty,gte=0"`
	ES                 *float64  `gorm:"column:es" validate:"omitempty,gte=0"`
	SD                 *float64  `gorm:"column:sd" validate:"omitempty,gte=0"`
	GroupSizeInches    *float64  `gorm:"column:group_size_inches" validate:"omitempty,gte=0"`
	GroupDistanceYards *int      `gorm:"column:group_distance_yards" validate:"omitempty,gte=0"`

	IntendedUse string       `gorm:"column:intended_use"`
	Status      ReloadStatus `gorm:"column:status;not null" validate:"enum"`
	Notes       string       `gorm:"column:notes"`
}

// TableName returns the table name for GORM.
func (ReloadBatch) TableName() string {
	return "reload_batches"
}

// SetDefaults fills an unset status and creation date.
func (r *ReloadBatch) SetDefaults() {
	if r.Status == "" {
		r.Status = ReloadWorkup
	}
	if !r.DateCreated.Valid() {
		r.DateCreated = Now()
	}
}

// BeforeCreate assigns an id and defaults.
func (r *ReloadBatch) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	r.SetDefaults()
	return nil
}

// Firearm returns the linked firearm id or "".
func (r *ReloadBatch) Firearm() string {
	if r.FirearmID == nil {
		return ""
	}
	return *r.FirearmID
}
