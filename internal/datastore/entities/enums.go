package entities

import (
	"fmt"
	"slices"
	"strings"
)

// CheckoutStatus is the availability state of a checkout-able item.
type CheckoutStatus string

const (
	StatusAvailable  CheckoutStatus = "AVAILABLE"
	StatusCheckedOut CheckoutStatus = "CHECKED_OUT"
	StatusLost       CheckoutStatus = "LOST"
	StatusRetired    CheckoutStatus = "RETIRED"
)

// CheckoutStatuses lists all checkout statuses in declaration order.
var CheckoutStatuses = []CheckoutStatus{StatusAvailable, StatusCheckedOut, StatusLost, StatusRetired}

// Valid reports whether s is a declared status.
func (s CheckoutStatus) Valid() bool { return slices.Contains(CheckoutStatuses, s) }

// Terminal reports whether s excludes the item from checkout bookkeeping.
func (s CheckoutStatus) Terminal() bool { return s == StatusLost || s == StatusRetired }

// ParseCheckoutStatus parses a status name case-insensitively.
func ParseCheckoutStatus(s string) (CheckoutStatus, error) {
	return parseEnum(s, CheckoutStatuses)
}

// TransferStatus is the ownership state of a firearm.
type TransferStatus string

const (
	TransferOwned       TransferStatus = "OWNED"
	TransferTransferred TransferStatus = "TRANSFERRED"
)

// TransferStatuses lists all transfer statuses.
var TransferStatuses = []TransferStatus{TransferOwned, TransferTransferred}

// Valid reports whether s is a declared transfer status.
func (s TransferStatus) Valid() bool { return slices.Contains(TransferStatuses, s) }

// ParseTransferStatus parses a transfer status case-insensitively.
func ParseTransferStatus(s string) (TransferStatus, error) {
	return parseEnum(s, TransferStatuses)
}

// NFAType classifies regulated items. Firearms may only carry SBR or SBS.
type NFAType string

const (
	NFASuppressor NFAType = "SUPPRESSOR"
	NFASBR        NFAType = "SBR"
	NFASBS        NFAType = "SBS"
	NFAAOW        NFAType = "AOW"
	NFADD         NFAType = "DD"
)

// NFATypes lists all NFA item types.
var NFATypes = []NFAType{NFASuppressor, NFASBR, NFASBS, NFAAOW, NFADD}

// NFAFirearmTypes lists the NFA types valid on a Firearm row.
var NFAFirearmTypes = []NFAType{NFASBR, NFASBS}

// Valid reports whether t is a declared NFA type.
func (t NFAType) Valid() bool { return slices.Contains(NFATypes, t) }

// ValidForFirearm reports whether t may be set on a firearm. Empty is allowed.
func (t NFAType) ValidForFirearm() bool { return t == "" || slices.Contains(NFAFirearmTypes, t) }

// ParseNFAType parses an NFA type case-insensitively.
func ParseNFAType(s string) (NFAType, error) {
	return parseEnum(s, NFATypes)
}

// ItemType identifies which inventory table an item id refers to.
type ItemType string

const (
	ItemFirearm    ItemType = "FIREARM"
	ItemSoftGear   ItemType = "SOFT_GEAR"
	ItemConsumable ItemType = "CONSUMABLE"
	ItemNFA        ItemType = "NFA_ITEM"
)

// ItemTypes lists all gear categories.
var ItemTypes = []ItemType{ItemFirearm, ItemSoftGear, ItemConsumable, ItemNFA}

// Valid reports whether t is a declared item type.
func (t ItemType) Valid() bool { return slices.Contains(ItemTypes, t) }

// Checkoutable reports whether items of this type carry a checkout status.
func (t ItemType) Checkoutable() bool { return t == ItemFirearm || t == ItemSoftGear || t == ItemNFA }

// ParseItemType parses an item type case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	return parseEnum(s, ItemTypes)
}

// MaintenanceType is the kind of a maintenance log entry.
type MaintenanceType string

const (
	MaintCleaning      MaintenanceType = "CLEANING"
	MaintLubrication   MaintenanceType = "LUBRICATION"
	MaintRepair        MaintenanceType = "REPAIR"
	MaintZeroing       MaintenanceType = "ZEROING"
	MaintHunting       MaintenanceType = "HUNTING"
	MaintInspection    MaintenanceType = "INSPECTION"
	MaintFiredRounds   MaintenanceType = "FIRED_ROUNDS"
	MaintOiling        MaintenanceType = "OILING"
	MaintRainExposure  MaintenanceType = "RAIN_EXPOSURE"
	MaintCorrosiveAmmo MaintenanceType = "CORROSIVE_AMMO"
	MaintLeadAmmo      MaintenanceType = "LEAD_AMMO"
)

// MaintenanceTypes lists all maintenance log types.
var MaintenanceTypes = []MaintenanceType{
	MaintCleaning, MaintLubrication, MaintRepair, MaintZeroing, MaintHunting, MaintInspection,
	MaintFiredRounds, MaintOiling, MaintRainExposure, MaintCorrosiveAmmo, MaintLeadAmmo,
}

// Valid reports whether t is a declared maintenance type.
func (t MaintenanceType) Valid() bool { return slices.Contains(MaintenanceTypes, t) }

// ParseMaintenanceType parses a maintenance type case-insensitively.
func ParseMaintenanceType(s string) (MaintenanceType, error) {
	return parseEnum(s, MaintenanceTypes)
}

// ReloadStatus is the workflow state of a reload batch.
type ReloadStatus string

const (
	ReloadWorkup   ReloadStatus = "WORKUP"
	ReloadApproved ReloadStatus = "APPROVED"
	ReloadRejected ReloadStatus = "REJECTED"
)

// ReloadStatuses lists all reload batch statuses.
var ReloadStatuses = []ReloadStatus{ReloadWorkup, ReloadApproved, ReloadRejected}

// Valid reports whether s is a declared reload status.
func (s ReloadStatus) Valid() bool { return slices.Contains(ReloadStatuses, s) }

// ParseReloadStatus parses a reload status case-insensitively.
func ParseReloadStatus(s string) (ReloadStatus, error) {
	return parseEnum(s, ReloadStatuses)
}

// TransactionType is the kind of a consumable ledger entry.
type TransactionType string

const (
	TxRestock TransactionType = "RESTOCK"
	TxUse     TransactionType = "USE"
	TxAdjust  TransactionType = "ADJUST"
)

// TransactionTypes lists all ledger transaction types.
var TransactionTypes = []TransactionType{TxRestock, TxUse, TxAdjust}

// Valid reports whether t is a declared transaction type.
func (t TransactionType) Valid() bool { return slices.Contains(TransactionTypes, t) }

// ParseTransactionType parses a transaction type case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	return parseEnum(s, TransactionTypes)
}

// parseEnum matches s against values after trimming and upper-casing.
func parseEnum[T ~string](s string, values []T) (T, error) {
	norm := T(strings.ToUpper(strings.TrimSpace(s)))
	if slices.Contains(values, norm) {
		return norm, nil
	}
	return "", fmt.Errorf("invalid value %q, expected one of %s", s, joinEnum(values))
}

// EnumNames returns the textual names of an enumeration.
func EnumNames[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func joinEnum[T ~string](values []T) string {
	return strings.Join(EnumNames(values), ", ")
}
