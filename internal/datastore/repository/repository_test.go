package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRepos(t *testing.T) (*datastore.Store, *Repositories) {
	t.Helper()
	store, err := datastore.Open(t.Context(), datastore.Options{
		Path:   filepath.Join(t.TempDir(), "tracker.db"),
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, New(store.DB())
}

func TestFirearm_CRUDAndListing(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	b := &entities.Firearm{Name: "Bravo", Caliber: "9mm", SerialNumber: " SN-2 "}
	a := &entities.Firearm{Name: "Alpha", Caliber: "5.56", SerialNumber: "SN-1"}
	c := &entities.Firearm{Name: "Charlie", Caliber: "5.56", TransferStatus: entities.TransferTransferred}
	for _, f := range []*entities.Firearm{b, a, c} {
		require.NoError(t, repos.Firearms.Add(ctx, f))
		assert.NotEmpty(t, f.ID)
	}

	got, err := repos.Firearms.GetBySerial(ctx, "SN-2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, entities.StatusAvailable, got.Status)

	list, err := repos.Firearms.List(ctx, FirearmFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2, "transferred firearms are hidden")
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Bravo", list[1].Name)

	all, err := repos.Firearms.List(ctx, FirearmFilter{IncludeTransferred: true, Caliber: "5.56"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	a.Notes = "updated"
	require.NoError(t, repos.Firearms.Update(ctx, a))
	got, err = repos.Firearms.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Notes)

	err = repos.Firearms.Update(ctx, &entities.Firearm{ID: "missing", Name: "X", Caliber: "Y"})
	require.ErrorIs(t, err, ErrFirearmNotFound)
	assert.True(t, errors.IsNotFound(err))

	err = repos.Firearms.Add(ctx, &entities.Firearm{Name: "Dup", Caliber: "9mm", SerialNumber: "SN-1"})
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.True(t, errors.IsConflict(err))

	err = repos.Firearms.Add(ctx, &entities.Firearm{Caliber: "9mm"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, errors.IsValidation(err))
}

func TestFirearm_EmptySerialsDoNotCollide(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)

	require.NoError(t, repos.Firearms.Add(t.Context(), &entities.Firearm{Name: "A", Caliber: "22"}))
	require.NoError(t, repos.Firearms.Add(t.Context(), &entities.Firearm{Name: "B", Caliber: "22"}))
	_, err := repos.Firearms.GetBySerial(t.Context(), "")
	require.ErrorIs(t, err, ErrFirearmNotFound)
}

func TestFirearm_DeleteCascadesHistoryButNotAttachments(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	f := &entities.Firearm{Name: "Rifle", Caliber: "308"}
	require.NoError(t, repos.Firearms.Add(ctx, f))
	borrower := &entities.Borrower{Name: "Alice"}
	require.NoError(t, repos.Borrowers.Add(ctx, borrower))
	require.NoError(t, repos.Checkouts.Add(ctx, &entities.Checkout{ItemID: f.ID, ItemType: entities.ItemFirearm, BorrowerID: borrower.ID}))
	require.NoError(t, repos.Maintenance.Add(ctx, &entities.MaintenanceLog{ItemID: f.ID, ItemType: entities.ItemFirearm, LogType: entities.MaintCleaning}))
	att := &entities.Attachment{Name: "Scope", Category: "Optic", MountedOnFirearmID: &f.ID}
	require.NoError(t, repos.Attachments.Add(ctx, att))

	require.NoError(t, repos.Firearms.Delete(ctx, f.ID))

	checkouts, err := repos.Checkouts.ListHistory(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, checkouts)
	logs, err := repos.Maintenance.ListByItem(ctx, f.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	kept, err := repos.Attachments.GetByID(ctx, att.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, kept.MountedOn(), "weak reference dangles")

	require.ErrorIs(t, repos.Firearms.Delete(ctx, f.ID), ErrFirearmNotFound)
}

func TestFirearm_MaintenanceStatus(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	f := &entities.Firearm{Name: "Rifle", Caliber: "308", RoundsFired: 450, CleanIntervalRounds: 500, OilIntervalDays: 30}
	require.NoError(t, repos.Firearms.Add(ctx, f))

	now := time.Now()
	st, err := repos.Firearms.GetMaintenanceStatus(ctx, f.ID, now)
	require.NoError(t, err)
	assert.False(t, st.NeedsMaintenance)

	updated, err := repos.Firearms.AddRounds(ctx, f.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, 510, updated.RoundsFired)

	old := entities.NewEpochTime(now.AddDate(0, 0, -40))
	require.NoError(t, repos.Maintenance.Add(ctx, &entities.MaintenanceLog{ItemID: f.ID, ItemType: entities.ItemFirearm, LogType: entities.MaintCleaning, Date: old}))
	require.NoError(t, repos.Firearms.AddCondition(ctx, f.ID, "RAIN_EXPOSURE"))
	require.NoError(t, repos.Firearms.AddCondition(ctx, f.ID, "rain_exposure"))

	st, err = repos.Firearms.GetMaintenanceStatus(ctx, f.ID, now)
	require.NoError(t, err)
	assert.True(t, st.NeedsMaintenance)
	assert.Len(t, st.Reasons, 3)
	assert.Equal(t, old, st.LastCleaning)

	require.NoError(t, repos.Firearms.ResetAfterCleaning(ctx, f.ID))
	got, err := repos.Firearms.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RoundsFired)
	assert.False(t, got.NeedsMaintenance)
	assert.Empty(t, got.MaintenanceConditions)
}

func TestBorrower_DeleteGuard(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	b := &entities.Borrower{Name: "Alice"}
	require.NoError(t, repos.Borrowers.Add(ctx, b))
	co := &entities.Checkout{ItemID: "item-1", ItemType: entities.ItemSoftGear, BorrowerID: b.ID}
	require.NoError(t, repos.Checkouts.Add(ctx, co))

	err := repos.Borrowers.Delete(ctx, b.ID)
	require.ErrorIs(t, err, ErrBorrowerHasActiveCheckouts)
	assert.True(t, errors.IsPrecondition(err))

	_, err = repos.Borrowers.GetByID(ctx, b.ID)
	require.NoError(t, err)
	active, err := repos.Checkouts.IsItemCheckedOut(ctx, "item-1")
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, repos.Checkouts.MarkReturned(ctx, co.ID, time.Now()))
	require.NoError(t, repos.Borrowers.Delete(ctx, b.ID))

	byName, err := repos.Borrowers.GetByName(ctx, "alice")
	require.ErrorIs(t, err, ErrBorrowerNotFound)
	assert.Nil(t, byName)
}

func TestCheckout_Queries(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()
	now := time.Now()

	first := &entities.Checkout{ItemID: "i1", ItemType: entities.ItemFirearm, BorrowerID: "b1",
		CheckoutDate: entities.NewEpochTime(now.Add(-72 * time.Hour)), ExpectedReturn: entities.NewEpochTime(now.Add(-24 * time.Hour))}
	second := &entities.Checkout{ItemID: "i2", ItemType: entities.ItemFirearm, BorrowerID: "b1",
		CheckoutDate: entities.NewEpochTime(now.Add(-1 * time.Hour))}
	require.NoError(t, repos.Checkouts.Add(ctx, first))
	require.NoError(t, repos.Checkouts.Add(ctx, second))

	err := repos.Checkouts.Add(ctx, &entities.Checkout{ItemID: "i1", ItemType: entities.ItemFirearm, BorrowerID: "b2"})
	require.ErrorIs(t, err, ErrDuplicateKey, "one active checkout per item")

	active, err := repos.Checkouts.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, second.ID, active[0].ID, "newest first")

	overdue, err := repos.Checkouts.ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, first.ID, overdue[0].ID)

	byItem, err := repos.Checkouts.GetCheckoutByItem(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byItem.ID)

	require.NoError(t, repos.Checkouts.MarkReturned(ctx, first.ID, now))
	err = repos.Checkouts.MarkReturned(ctx, first.ID, now)
	require.ErrorIs(t, err, ErrCheckoutAlreadyReturned)
	require.ErrorIs(t, repos.Checkouts.MarkReturned(ctx, "nope", now), ErrCheckoutNotFound)

	_, err = repos.Checkouts.GetCheckoutByItem(ctx, "i1")
	require.ErrorIs(t, err, ErrCheckoutNotFound)

	history, err := repos.Checkouts.ListByBorrower(ctx, "b1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConsumable_LedgerConservation(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	c := &entities.Consumable{Name: "9mm FMJ", Category: "Ammo", Unit: "rounds", Quantity: 100, MinQuantity: 50}
	require.NoError(t, repos.Consumables.Add(ctx, c))

	_, err := repos.Consumables.RecordTransaction(ctx, LedgerEntry{ConsumableID: c.ID, Type: entities.TxUse, Delta: -20})
	require.NoError(t, err)
	_, err = repos.Consumables.RecordTransaction(ctx, LedgerEntry{ConsumableID: c.ID, Type: entities.TxUse, Delta: -200})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.True(t, errors.IsPrecondition(err))

	c.Quantity = 70
	c.Notes = "recount"
	require.NoError(t, repos.Consumables.Update(ctx, c))

	updated, err := repos.Consumables.RecordTransaction(ctx, LedgerEntry{ConsumableID: c.ID, Type: entities.TxRestock, Delta: 15})
	require.NoError(t, err)
	assert.Equal(t, 85, updated.Quantity)

	sum, err := repos.Consumables.LedgerSum(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, sum)

	ledger, err := repos.Consumables.Transactions(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 4)
	assert.Equal(t, entities.TxAdjust, ledger[0].TransactionType)
	assert.Equal(t, 100, ledger[0].Quantity)
	assert.Equal(t, -20, ledger[1].Quantity)
	assert.Equal(t, -10, ledger[2].Quantity)
	assert.Equal(t, 15, ledger[3].Quantity)

	low, err := repos.Consumables.ListLowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)

	negative, err := repos.Consumables.RecordTransaction(ctx, LedgerEntry{ConsumableID: c.ID, Type: entities.TxUse, Delta: -100, AllowNegative: true})
	require.NoError(t, err)
	assert.Equal(t, -15, negative.Quantity)
	low, err = repos.Consumables.ListLowStock(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)

	require.NoError(t, repos.Consumables.Delete(ctx, c.ID))
	sum, err = repos.Consumables.LedgerSum(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestLoadout_DeleteCascades(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	l := &entities.Loadout{Name: "Range day"}
	require.NoError(t, repos.Loadouts.Add(ctx, l))
	require.NoError(t, repos.Loadouts.AddItem(ctx, &entities.LoadoutItem{LoadoutID: l.ID, ItemID: "f1", ItemType: entities.ItemFirearm}))
	require.NoError(t, repos.Loadouts.AddConsumable(ctx, &entities.LoadoutConsumable{LoadoutID: l.ID, ConsumableID: "c1", Quantity: 20}))
	lc := &entities.LoadoutCheckout{LoadoutID: l.ID, CheckoutID: "co1"}
	require.NoError(t, repos.Loadouts.AddCheckout(ctx, lc))

	active, err := repos.Loadouts.GetActiveCheckout(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, lc.ID, active.ID)

	lc.RoundsFired = 50
	lc.RainExposure = true
	require.NoError(t, repos.Loadouts.CloseCheckout(ctx, lc, time.Now()))
	require.ErrorIs(t, repos.Loadouts.CloseCheckout(ctx, lc, time.Now()), ErrCheckoutAlreadyReturned)
	_, err = repos.Loadouts.GetActiveCheckout(ctx, l.ID)
	require.ErrorIs(t, err, ErrLoadoutCheckoutNotFound)

	require.NoError(t, repos.Loadouts.Delete(ctx, l.ID))
	items, err := repos.Loadouts.ListItems(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	consumables, err := repos.Loadouts.ListConsumables(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, consumables)
	history, err := repos.Loadouts.ListCheckouts(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestItems_GetAndSetStatus(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	g := &entities.SoftGear{Name: "Pack", Category: "Bags"}
	require.NoError(t, repos.SoftGear.Add(ctx, g))

	item, err := repos.Items.Get(ctx, entities.ItemSoftGear, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pack", item.Name)
	assert.Equal(t, entities.StatusAvailable, item.Status)

	require.NoError(t, repos.Items.SetStatus(ctx, entities.ItemSoftGear, g.ID, entities.StatusCheckedOut))
	got, err := repos.SoftGear.GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCheckedOut, got.Status)

	_, err = repos.Items.Get(ctx, entities.ItemFirearm, g.ID)
	require.ErrorIs(t, err, ErrFirearmNotFound)
	_, err = repos.Items.Get(ctx, entities.ItemConsumable, g.ID)
	require.ErrorIs(t, err, ErrUnsupportedItemType)
}

func TestReloadBatch_ListAndRecipe(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	older := &entities.ReloadBatch{Cartridge: "308 Win", BulletModel: "SMK", DateCreated: entities.Date(2023, time.January, 1)}
	newer := &entities.ReloadBatch{Cartridge: "308 Win", BulletModel: "ELD-M", DateCreated: entities.Date(2024, time.January, 1)}
	require.NoError(t, repos.ReloadBatches.Add(ctx, older))
	require.NoError(t, repos.ReloadBatches.Add(ctx, newer))

	list, err := repos.ReloadBatches.List(ctx, ReloadBatchFilter{Cartridge: "308 win"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, entities.ReloadWorkup, list[0].Status)
	assert.Nil(t, list[0].AvgVelocity)

	found, err := repos.ReloadBatches.FindByRecipe(ctx, "308 WIN", "smk")
	require.NoError(t, err)
	assert.Equal(t, older.ID, found.ID)
}

func TestTransfer_ListByFirearm(t *testing.T) {
	t.Parallel()
	_, repos := newTestRepos(t)
	ctx := t.Context()

	price := 450.5
	tr := &entities.Transfer{FirearmID: "f1", BuyerName: "Bob", BuyerDLNumber: "DL1", SalePrice: &price}
	require.NoError(t, repos.Transfers.Add(ctx, tr))

	list, err := repos.Transfers.ListByFirearm(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].SalePrice)
	assert.InDelta(t, 450.5, *list[0].SalePrice, 0.001)
	assert.True(t, list[0].TransferDate.Valid())
}
