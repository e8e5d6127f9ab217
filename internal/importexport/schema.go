// Package importexport reads and writes the sectioned CSV document that backs
// up the whole gear tracker database, and restores it with duplicate handling.
package importexport

import (
	"regexp"
	"slices"
	"strings"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// Section names as they appear between the === markers.
const (
	SectionMetadata           = "METADATA"
	SectionFirearms           = "FIREARMS"
	SectionNFAItems           = "NFA ITEMS"
	SectionSoftGear           = "SOFT GEAR"
	SectionAttachments        = "ATTACHMENTS"
	SectionConsumables        = "CONSUMABLES"
	SectionReloadBatches      = "RELOAD BATCHES"
	SectionLoadouts           = "LOADOUTS"
	SectionLoadoutItems       = "LOADOUT ITEMS"
	SectionLoadoutConsumables = "LOADOUT CONSUMABLES"
	SectionBorrowers          = "BORROWERS"
)

// ExportType is written to the METADATA export_type column.
const ExportType = "complete"

// SectionSpec describes the columns of one CSV section.
type SectionSpec struct {
	Name     string
	Entity   string              // singular entity label used in issues and callbacks
	Columns  []string            // export order
	Required []string            // must be non-empty on import
	Enums    map[string][]string // allowed values, empty cells allowed unless required
	model    func() any
}

// HasColumn reports whether the section declares column.
func (s *SectionSpec) HasColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

var metadataSpec = &SectionSpec{
	Name:    SectionMetadata,
	Entity:  "Metadata",
	Columns: []string{"export_date", "version", "export_type", "dry_run"},
}

// entitySpecs lists the entity sections in export order.
var entitySpecs = []*SectionSpec{
	{
		Name:   SectionFirearms,
		Entity: "Firearm",
		Columns: []string{
			"id", "name", "caliber", "serial_number", "purchase_date", "notes", "status",
			"is_nfa", "nfa_type", "tax_stamp_id", "form_type", "barrel_length", "trust_name",
			"transfer_status", "rounds_fired", "clean_interval_rounds", "oil_interval_days",
			"needs_maintenance", "maintenance_conditions",
		},
		Required: []string{"name", "caliber", "purchase_date"},
		Enums: map[string][]string{
			"status":          entities.EnumNames(entities.CheckoutStatuses),
			"transfer_status": entities.EnumNames(entities.TransferStatuses),
			"nfa_type":        entities.EnumNames(entities.NFAFirearmTypes),
		},
		model: func() any { return &entities.Firearm{} },
	},
	{
		Name:   SectionNFAItems,
		Entity: "NFAItem",
		Columns: []string{
			"id", "name", "nfa_type", "manufacturer", "serial_number", "tax_stamp_id", "caliber_bore",
			"purchase_date", "form_type", "barrel_length", "trust_name", "notes", "status",
		},
		Required: []string{"name", "nfa_type", "tax_stamp_id", "purchase_date"},
		Enums: map[string][]string{
			"nfa_type": entities.EnumNames(entities.NFATypes),
			"status":   entities.EnumNames(entities.CheckoutStatuses),
		},
		model: func() any { return &entities.NFAItem{} },
	},
	{
		Name:     SectionSoftGear,
		Entity:   "SoftGear",
		Columns:  []string{"id", "name", "category", "brand", "purchase_date", "notes", "status"},
		Required: []string{"name", "category", "purchase_date"},
		Enums: map[string][]string{
			"status": entities.EnumNames(entities.CheckoutStatuses),
		},
		model: func() any { return &entities.SoftGear{} },
	},
	{
		Name:   SectionAttachments,
		Entity: "Attachment",
		Columns: []string{
			"id", "name", "category", "brand", "model", "purchase_date", "serial_number",
			"mounted_on_firearm_id", "mount_position", "zero_distance_yards", "zero_notes", "notes",
		},
		Required: []string{"name", "category"},
		model:    func() any { return &entities.Attachment{} },
	},
	{
		Name:     SectionConsumables,
		Entity:   "Consumable",
		Columns:  []string{"id", "name", "category", "unit", "quantity", "min_quantity", "notes"},
		Required: []string{"name", "category", "unit"},
		model:    func() any { return &entities.Consumable{} },
	},
	{
		Name:   SectionReloadBatches,
		Entity: "ReloadBatch",
		Columns: []string{
			"id", "cartridge", "firearm_id", "date_created", "bullet_maker", "bullet_model",
			"bullet_weight_gr", "powder_name", "powder_charge_gr", "powder_lot", "primer_maker",
			"primer_type", "case_brand", "case_times_fired", "case_prep_notes", "coal_in",
			"crimp_style", "test_date", "avg_velocity", "es", "sd", "group_size_inches",
			"group_distance_yards", "intended_use", "status", "notes",
		},
		Required: []string{"cartridge", "date_created"},
		Enums: map[string][]string{
			"status": entities.EnumNames(entities.ReloadStatuses),
		},
		model: func() any { return &entities.ReloadBatch{} },
	},
	{
		Name:     SectionLoadouts,
		Entity:   "Loadout",
		Columns:  []string{"id", "name", "description", "created_date", "notes"},
		Required: []string{"name"},
		model:    func() any { return &entities.Loadout{} },
	},
	{
		Name:     SectionLoadoutItems,
		Entity:   "LoadoutItem",
		Columns:  []string{"id", "loadout_id", "item_id", "item_type", "notes"},
		Required: []string{"loadout_id", "item_id", "item_type"},
		Enums: map[string][]string{
			"item_type": entities.EnumNames(entities.ItemTypes),
		},
		model: func() any { return &entities.LoadoutItem{} },
	},
	{
		Name:     SectionLoadoutConsumables,
		Entity:   "LoadoutConsumable",
		Columns:  []string{"id", "loadout_id", "consumable_id", "quantity", "notes"},
		Required: []string{"loadout_id", "consumable_id", "quantity"},
		model:    func() any { return &entities.LoadoutConsumable{} },
	},
	{
		Name:     SectionBorrowers,
		Entity:   "Borrower",
		Columns:  []string{"id", "name", "phone", "email", "notes"},
		Required: []string{"name"},
		model:    func() any { return &entities.Borrower{} },
	},
}

// ImportOrder is the dependency order sections are restored in.
var ImportOrder = []string{
	SectionBorrowers,
	SectionFirearms,
	SectionNFAItems,
	SectionSoftGear,
	SectionAttachments,
	SectionConsumables,
	SectionReloadBatches,
	SectionLoadouts,
	SectionLoadoutItems,
	SectionLoadoutConsumables,
}

// Spec returns the section description for a section or entity name, matched
// case-insensitively.
func Spec(name string) (*SectionSpec, bool) {
	norm := NormalizeSectionName(name)
	if norm == SectionMetadata {
		return metadataSpec, true
	}
	for _, s := range entitySpecs {
		if s.Name == norm || strings.EqualFold(s.Entity, strings.ReplaceAll(name, " ", "")) {
			return s, true
		}
	}
	return nil, false
}

// Specs returns the entity sections in export order.
func Specs() []*SectionSpec {
	return slices.Clone(entitySpecs)
}

var spaceRun = regexp.MustCompile(`[\s_]+`)

// NormalizeSectionName upper-cases a section name and collapses separators to single spaces.
func NormalizeSectionName(name string) string {
	return strings.ToUpper(spaceRun.ReplaceAllString(strings.TrimSpace(name), " "))
}

var sectionHeader = regexp.MustCompile(`^===\s*(.*?)\s*===$`)

// parseSectionHeader returns the normalized section name when cell is a section marker.
func parseSectionHeader(cell string) (string, bool) {
	m := sectionHeader.FindStringSubmatch(strings.TrimSpace(cell))
	if m == nil || m[1] == "" {
		return "", false
	}
	return NormalizeSectionName(m[1]), true
}

func knownSection(name string) bool {
	_, ok := Spec(name)
	return ok
}
