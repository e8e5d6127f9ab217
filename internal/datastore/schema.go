package datastore

import "fmt"

// column describes one desired column. DDL is the type, constraint and default
// clause used both when creating the table and when adding the column later.
// Ref is a REFERENCES hint applied only at table creation.
type column struct {
	Name string
	DDL  string
	Ref  string
}

// table is the desired column set of one table.
type table struct {
	Name    string
	Columns []column
}

// Common column definitions
const (
	ddlID       = "TEXT PRIMARY KEY"
	ddlText     = "TEXT NOT NULL DEFAULT ''"
	ddlInt      = "INTEGER NOT NULL DEFAULT 0"
	ddlBool     = "INTEGER NOT NULL DEFAULT 0"
	ddlEpoch    = "INTEGER"
	ddlNullInt  = "INTEGER"
	ddlNullReal = "REAL"
)

// legacyRename is a known misspelled column renamed once when detected.
type legacyRename struct {
	Table string
	From  string
	To    string
}

var legacyRenames = []legacyRename{
	{Table: "firearms", From: "maintenance_conditons", To: "maintenance_conditions"},
}

// schema lists every table in dependency order. Migration converges any prior
// shape of the database onto this column set without dropping data.
var schema = []table{
	{Name: "borrowers", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "phone", DDL: ddlText},
		{Name: "email", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "firearms", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "caliber", DDL: ddlText},
		{Name: "serial_number", DDL: ddlText},
		{Name: "purchase_date", DDL: ddlEpoch},
		{Name: "notes", DDL: ddlText},
		{Name: "status", DDL: "TEXT NOT NULL DEFAULT 'AVAILABLE'"},
		{Name: "is_nfa", DDL: ddlBool},
		{Name: "nfa_type", DDL: ddlText},
		{Name: "tax_stamp_id", DDL: ddlText},
		{Name: "form_type", DDL: ddlText},
		{Name: "barrel_length", DDL: ddlText},
		{Name: "trust_name", DDL: ddlText},
		{Name: "transfer_status", DDL: "TEXT NOT NULL DEFAULT 'OWNED'"},
		{Name: "rounds_fired", DDL: ddlInt},
		{Name: "clean_interval_rounds", DDL: ddlInt},
		{Name: "oil_interval_days", DDL: ddlInt},
		{Name: "needs_maintenance", DDL: ddlBool},
		{Name: "maintenance_conditions", DDL: ddlText},
	}},
	{Name: "nfa_items", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "nfa_type", DDL: ddlText},
		{Name: "manufacturer", DDL: ddlText},
		{Name: "serial_number", DDL: ddlText},
		{Name: "tax_stamp_id", DDL: ddlText},
		{Name: "caliber_bore", DDL: ddlText},
		{Name: "purchase_date", DDL: ddlEpoch},
		{Name: "form_type", DDL: ddlText},
		{Name: "barrel_length", DDL: ddlText},
		{Name: "trust_name", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
		{Name: "status", DDL: "TEXT NOT NULL DEFAULT 'AVAILABLE'"},
	}},
	{Name: "soft_gear", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "category", DDL: ddlText},
		{Name: "brand", DDL: ddlText},
		{Name: "purchase_date", DDL: ddlEpoch},
		{Name: "notes", DDL: ddlText},
		{Name: "status", DDL: "TEXT NOT NULL DEFAULT 'AVAILABLE'"},
	}},
	{Name: "attachments", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "category", DDL: ddlText},
		{Name: "brand", DDL: ddlText},
		{Name: "model", DDL: ddlText},
		{Name: "purchase_date", DDL: ddlEpoch},
		{Name: "serial_number", DDL: ddlText},
		{Name: "mounted_on_firearm_id", DDL: "TEXT", Ref: "firearms(id)"},
		{Name: "mount_position", DDL: ddlText},
		{Name: "zero_distance_yards", DDL: ddlNullInt},
		{Name: "zero_notes", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "consumables", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "category", DDL: ddlText},
		{Name: "unit", DDL: ddlText},
		{Name: "quantity", DDL: ddlInt},
		{Name: "min_quantity", DDL: ddlInt},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "consumable_transactions", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "consumable_id", DDL: ddlText, Ref: "consumables(id)"},
		{Name: "transaction_type", DDL: ddlText},
		{Name: "quantity", DDL: ddlInt},
		{Name: "date", DDL: ddlEpoch},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "reload_batches", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "cartridge", DDL: ddlText},
		{Name: "firearm_id", DDL: "TEXT", Ref: "firearms(id)"},
		{Name: "date_created", DDL: ddlEpoch},
		{Name: "bullet_maker", DDL: ddlText},
		{Name: "bullet_model", DDL: ddlText},
		{Name: "bullet_weight_gr", DDL: ddlNullReal},
		{Name: "powder_name", DDL: ddlText},
		{Name: "powder_charge_gr", DDL: ddlNullReal},
		{Name: "powder_lot", DDL: ddlText},
		{Name: "primer_maker", DDL: ddlText},
		{Name: "primer_type", DDL: ddlText},
		{Name: "case_brand", DDL: ddlText},
		{Name: "case_times_fired", DDL: ddlNullInt},
		{Name: "case_prep_notes", DDL: ddlText},
		{Name: "coal_in", DDL: ddlNullReal},
		{Name: "crimp_style", DDL: ddlText},
		{Name: "test_date", DDL: ddlEpoch},
		{Name: "avg_velocity", DDL: ddlNullReal},
		{Name: "es", DDL: ddlNullReal},
		{Name: "sd", DDL: ddlNullReal},
		{Name: "group_size_inches", DDL: ddlNullReal},
		{Name: "group_distance_yards", DDL: ddlNullInt},
		{Name: "intended_use", DDL: ddlText},
		{Name: "status", DDL: "TEXT NOT NULL DEFAULT 'WORKUP'"},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "maintenance_logs", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "item_id", DDL: ddlText},
		{Name: "item_type", DDL: ddlText},
		{Name: "log_type", DDL: ddlText},
		{Name: "date", DDL: ddlEpoch},
		{Name: "details", DDL: ddlText},
		{Name: "ammo_count", DDL: ddlNullInt},
	}},
	{Name: "checkouts", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "item_id", DDL: ddlText},
		{Name: "item_type", DDL: ddlText},
		{Name: "borrower_id", DDL: ddlText, Ref: "borrowers(id)"},
		{Name: "checkout_date", DDL: ddlEpoch},
		{Name: "expected_return", DDL: ddlEpoch},
		{Name: "actual_return", DDL: ddlEpoch},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "transfers", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "firearm_id", DDL: ddlText, Ref: "firearms(id)"},
		{Name: "transfer_date", DDL: ddlEpoch},
		{Name: "buyer_name", DDL: ddlText},
		{Name: "buyer_address", DDL: ddlText},
		{Name: "buyer_dl_number", DDL: ddlText},
		{Name: "buyer_ltc_number", DDL: ddlText},
		{Name: "sale_price", DDL: ddlNullReal},
		{Name: "ffl_dealer", DDL: ddlText},
		{Name: "ffl_license", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "loadouts", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "name", DDL: ddlText},
		{Name: "description", DDL: ddlText},
		{Name: "created_date", DDL: ddlEpoch},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "loadout_items", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "loadout_id", DDL: ddlText, Ref: "loadouts(id)"},
		{Name: "item_id", DDL: ddlText},
		{Name: "item_type", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "loadout_consumables", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "loadout_id", DDL: ddlText, Ref: "loadouts(id)"},
		{Name: "consumable_id", DDL: ddlText, Ref: "consumables(id)"},
		{Name: "quantity", DDL: "INTEGER NOT NULL DEFAULT 1"},
		{Name: "notes", DDL: ddlText},
	}},
	{Name: "loadout_checkouts", Columns: []column{
		{Name: "id", DDL: ddlID},
		{Name: "loadout_id", DDL: ddlText, Ref: "loadouts(id)"},
		{Name: "checkout_id", DDL: ddlText},
		{Name: "borrower_id", DDL: ddlText},
		{Name: "checkout_date", DDL: ddlEpoch},
		{Name: "return_date", DDL: ddlEpoch},
		{Name: "rounds_fired", DDL: ddlInt},
		{Name: "rain_exposure", DDL: ddlBool},
		{Name: "ammo_type", DDL: ddlText},
		{Name: "notes", DDL: ddlText},
	}},
}

// index is a named index created after columns converge. Where makes it partial.
type index struct {
	Name    string
	Table   string
	Columns string
	Unique  bool
	Where   string
}

func (i index) sql() string {
	stmt := "CREATE INDEX "
	if i.Unique {
		stmt = "CREATE UNIQUE INDEX "
	}
	stmt += fmt.Sprintf("IF NOT EXISTS %s ON %s(%s)", i.Name, i.Table, i.Columns)
	if i.Where != "" {
		stmt += " WHERE " + i.Where
	}
	return stmt
}

var indexes = []index{
	{Name: "idx_checkouts_active_item", Table: "checkouts", Columns: "item_id", Unique: true, Where: "actual_return IS NULL"},
	{Name: "idx_firearms_serial", Table: "firearms", Columns: "serial_number", Unique: true, Where: "serial_number <> ''"},
	{Name: "idx_checkouts_borrower", Table: "checkouts", Columns: "borrower_id"},
	{Name: "idx_maintenance_logs_item", Table: "maintenance_logs", Columns: "item_id, log_type"},
	{Name: "idx_consumable_transactions_consumable", Table: "consumable_transactions", Columns: "consumable_id"},
	{Name: "idx_loadout_items_loadout", Table: "loadout_items", Columns: "loadout_id"},
	{Name: "idx_loadout_consumables_loadout", Table: "loadout_consumables", Columns: "loadout_id"},
	{Name: "idx_loadout_checkouts_loadout", Table: "loadout_checkouts", Columns: "loadout_id"},
}

// TableNames returns every managed table in dependency order.
func TableNames() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.Name
	}
	return names
}
