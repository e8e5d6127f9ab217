package importexport

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/gear-tracker/internal/datastore"
	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedClock = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

func newStore(t *testing.T) (*datastore.Store, *repository.Repositories) {
	t.Helper()
	store, err := datastore.Open(t.Context(), datastore.Options{
		Path:   filepath.Join(t.TempDir(), "tracker.db"),
		Logger: logger.Discard(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, repository.New(store.DB())
}

func newEngine(store Store, opts ...Option) *Engine {
	return NewEngine(store, append([]Option{WithLogger(logger.Discard()), WithClock(fixedClock)}, opts...)...)
}

func ptr[T any](v T) *T { return &v }

// seed fills the store with one or more rows for every section.
func seed(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	ctx := t.Context()

	rifle := &entities.Firearm{
		Name: "AR-15", Caliber: "5.56", SerialNumber: "SN-100",
		PurchaseDate: entities.Date(2020, 5, 1), Notes: "first line\nsecond, with \"quotes\"",
		RoundsFired: 120, CleanIntervalRounds: 500, OilIntervalDays: 90,
	}
	require.NoError(t, repos.Firearms.Add(ctx, rifle))
	sbr := &entities.Firearm{
		Name: "Short Barrel", Caliber: "300BLK", PurchaseDate: entities.Date(2021, 7, 4),
		IsNFA: true, NFAType: entities.NFASBR, TaxStampID: "TS-1", TrustName: "Family Trust",
		NeedsMaintenance: true, MaintenanceConditions: "Rain exposure",
	}
	require.NoError(t, repos.Firearms.Add(ctx, sbr))

	require.NoError(t, repos.NFAItems.Add(ctx, &entities.NFAItem{
		Name: "Can", NFAType: entities.NFASuppressor, TaxStampID: "TS-2",
		PurchaseDate: entities.Date(2022, 1, 10), CaliberBore: "30",
	}))
	require.NoError(t, repos.SoftGear.Add(ctx, &entities.SoftGear{
		Name: "Plate Carrier", Category: "Armor", PurchaseDate: entities.Date(2019, 2, 3),
	}))
	require.NoError(t, repos.Attachments.Add(ctx, &entities.Attachment{
		Name: "LPVO", Category: "Optic", MountedOnFirearmID: &rifle.ID,
		ZeroDistanceYards: ptr(100), MountPosition: "top rail",
	}))
	ammo := &entities.Consumable{Name: "5.56 FMJ", Category: "Ammo", Unit: "rounds", Quantity: 500, MinQuantity: 100}
	require.NoError(t, repos.Consumables.Add(ctx, ammo))
	require.NoError(t, repos.ReloadBatches.Add(ctx, &entities.ReloadBatch{
		Cartridge: "308 Win", FirearmID: &sbr.ID, DateCreated: entities.Date(2023, 6, 1),
		BulletModel: "SMK 175", BulletWeightGr: ptr(175.0), PowderChargeGr: ptr(43.5),
		CaseTimesFired: ptr(2), AvgVelocity: ptr(2650.25),
	}))
	loadout := &entities.Loadout{Name: "Range Day", CreatedDate: entities.Date(2024, 8, 8)}
	require.NoError(t, repos.Loadouts.Add(ctx, loadout))
	require.NoError(t, repos.Loadouts.AddItem(ctx, &entities.LoadoutItem{
		LoadoutID: loadout.ID, ItemID: rifle.ID, ItemType: entities.ItemFirearm,
	}))
	require.NoError(t, repos.Loadouts.AddConsumable(ctx, &entities.LoadoutConsumable{
		LoadoutID: loadout.ID, ConsumableID: ammo.ID, Quantity: 60,
	}))
	require.NoError(t, repos.Borrowers.Add(ctx, &entities.Borrower{Name: "Alice", Email: "alice@example.com"}))
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	src, srcRepos := newStore(t)
	seed(t, srcRepos)

	var first bytes.Buffer
	require.NoError(t, newEngine(src).Export(t.Context(), &first))

	dst, _ := newStore(t)
	engine := newEngine(dst)
	res, err := engine.Import(t.Context(), bytes.NewReader(first.Bytes()), ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 11, res.Imported)
	assert.Zero(t, res.Failed)

	var second bytes.Buffer
	require.NoError(t, engine.Export(t.Context(), &second))
	assert.Equal(t, first.String(), second.String())
}

func TestExport_Format(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	seed(t, repos)

	var buf bytes.Buffer
	require.NoError(t, newEngine(store, WithVersion("2.1")).Export(t.Context(), &buf))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, byteOrderMark+"=== METADATA ===\n"))
	assert.Contains(t, out, "export_date,version,export_type,dry_run\n2025-03-14 09:26:53,2.1,complete,0\n\n")
	assert.Contains(t, out, "=== NFA ITEMS ===\n")
	assert.Contains(t, out, ",Short Barrel,300BLK,,2021-07-04,,AVAILABLE,1,SBR,TS-1,,,Family Trust,OWNED,0,0,0,1,Rain exposure\n")
	assert.Contains(t, out, "2650.25")

	// fixed section order
	var last int
	for _, spec := range entitySpecs {
		idx := strings.Index(out, "=== "+spec.Name+" ===")
		require.Positive(t, idx, spec.Name)
		assert.Greater(t, idx, last, spec.Name)
		last = idx
	}
}

func TestImport_OverwriteKeepsExistingID(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	existing := &entities.Firearm{Name: "OldName", Caliber: "9mm", SerialNumber: "SN1", PurchaseDate: entities.Date(2020, 1, 1), Notes: "keep me"}
	require.NoError(t, repos.Firearms.Add(t.Context(), existing))

	csv := "=== FIREARMS ===\n" +
		"id,name,caliber,serial_number,purchase_date,notes\n" +
		",NewName,9mm,SN1,2020-01-01,\n"
	var seen []Duplicate
	res, err := newEngine(store).Import(t.Context(), strings.NewReader(csv), ImportOptions{
		Resolver: func(d Duplicate) Resolution {
			seen = append(seen, d)
			return ResolveOverwrite
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Overwritten)
	assert.Zero(t, res.Imported)
	assert.Zero(t, res.Skipped)

	require.Len(t, seen, 1)
	assert.Equal(t, "Firearm", seen[0].Entity)
	assert.Equal(t, "OldName", seen[0].Existing.(*entities.Firearm).Name)

	all, err := repos.Firearms.List(t.Context(), repository.FirearmFilter{IncludeTransferred: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, existing.ID, all[0].ID)
	assert.Equal(t, "NewName", all[0].Name)
	assert.Equal(t, "keep me", all[0].Notes, "empty incoming cells fall back to the stored value")
}

func statusWarnings(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Type == IssueStatusAdjusted {
			out = append(out, i)
		}
	}
	return out
}

func TestImport_OverwriteKeepsStatusOfCheckedOutItem(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	ctx := t.Context()
	existing := &entities.Firearm{Name: "Rifle", Caliber: "308", SerialNumber: "SN1",
		PurchaseDate: entities.Date(2020, 1, 1), Status: entities.StatusCheckedOut}
	require.NoError(t, repos.Firearms.Add(ctx, existing))
	b := &entities.Borrower{Name: "Alex"}
	require.NoError(t, repos.Borrowers.Add(ctx, b))
	require.NoError(t, repos.Checkouts.Add(ctx, &entities.Checkout{
		ItemID: existing.ID, ItemType: entities.ItemFirearm, BorrowerID: b.ID,
	}))

	csv := "=== FIREARMS ===\n" +
		"id,name,caliber,serial_number,purchase_date,status\n" +
		",Rifle renamed,308,SN1,2020-01-01,AVAILABLE\n"
	res, err := newEngine(store).Import(ctx, strings.NewReader(csv), ImportOptions{DefaultResolution: ResolveOverwrite})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Overwritten)

	warnings := statusWarnings(res.Warnings)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Row)

	got, err := repos.Firearms.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rifle renamed", got.Name)
	assert.Equal(t, entities.StatusCheckedOut, got.Status)
}

func TestImport_CheckedOutWithoutCheckoutBecomesAvailable(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	ctx := t.Context()

	csv := "=== SOFT_GEAR ===\n" +
		"id,name,category,status\n" +
		"g1,Plate carrier,Armor,CHECKED_OUT\n" +
		"g2,Helmet,Armor,LOST\n"
	res, err := newEngine(store).Import(ctx, strings.NewReader(csv), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)

	warnings := statusWarnings(res.Warnings)
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Row)
	assert.Equal(t, "status", warnings[0].Field)

	gear, err := repos.SoftGear.List(ctx, "")
	require.NoError(t, err)
	got := make(map[string]entities.CheckoutStatus, len(gear))
	for _, g := range gear {
		got[g.Name] = g.Status
	}
	assert.Equal(t, map[string]entities.CheckoutStatus{
		"Plate carrier": entities.StatusAvailable,
		"Helmet":        entities.StatusLost,
	}, got)
}

func TestImport_CancelRollsBackSectionAndStops(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	for serial, name := range map[string]string{"SN1": "Alpha", "SN2": "Bravo"} {
		require.NoError(t, repos.Firearms.Add(t.Context(), &entities.Firearm{Name: name, Caliber: "9mm", SerialNumber: serial}))
	}

	csv := "=== FIREARMS ===\n" +
		"name,caliber,serial_number,purchase_date\n" +
		"Alpha2,9mm,SN1,2020-01-01\n" +
		"Bravo2,9mm,SN2,2020-01-01\n" +
		"\n" +
		"=== CONSUMABLES ===\n" +
		"name,category,unit,quantity\n" +
		"Primers,Components,each,1000\n"
	calls := 0
	res, err := newEngine(store).Import(t.Context(), strings.NewReader(csv), ImportOptions{
		Resolver: func(Duplicate) Resolution {
			calls++
			if calls == 1 {
				return ResolveOverwrite
			}
			return ResolveCancel
		},
	})
	require.ErrorIs(t, err, ErrImportCancelled)
	require.NotNil(t, res)
	assert.True(t, res.Cancelled)
	assert.Zero(t, res.Overwritten)
	require.Len(t, res.Sections, 1)
	assert.True(t, res.Sections[0].RolledBack)

	for serial, name := range map[string]string{"SN1": "Alpha", "SN2": "Bravo"} {
		f, err := repos.Firearms.GetBySerial(t.Context(), serial)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name)
	}
	_, err = repos.Consumables.GetByName(t.Context(), "Primers")
	assert.True(t, errors.IsNotFound(err), "later sections must not be processed")
}

func TestImport_DuplicateResolutions(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	store, repos := newStore(t)
	stored := &entities.Firearm{Name: "Rifle", Caliber: "308", SerialNumber: "SN1"}
	require.NoError(t, repos.Firearms.Add(ctx, stored))
	loadout := &entities.Loadout{Name: "Range Day"}
	require.NoError(t, repos.Loadouts.Add(ctx, loadout))

	csv := "=== FIREARMS ===\n" +
		"id,name,caliber,serial_number,purchase_date\n" +
		"F-old,Rifle,308,SN1,2020-01-01\n" +
		"\n" +
		"=== ATTACHMENTS ===\n" +
		"id,name,category,mounted_on_firearm_id\n" +
		",Scope,Optic,F-old\n" +
		"\n" +
		"=== LOADOUTS ===\n" +
		"id,name\n" +
		"L-old,Range Day\n" +
		"\n" +
		"=== LOADOUT ITEMS ===\n" +
		"loadout_id,item_id,item_type\n" +
		"L-old,F-old,firearm\n"
	res, err := newEngine(store).Import(ctx, strings.NewReader(csv), ImportOptions{
		Resolver: func(d Duplicate) Resolution {
			if d.Entity == "Loadout" {
				return ResolveRename
			}
			return ResolveSkip
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 3, res.Imported)

	// skip maps the incoming id onto the stored firearm
	scope, err := repos.Attachments.GetByName(ctx, "Scope")
	require.NoError(t, err)
	require.NotNil(t, scope.MountedOnFirearmID)
	assert.Equal(t, stored.ID, *scope.MountedOnFirearmID)

	// rename creates a second loadout under a fresh id
	loadouts, err := repos.Loadouts.List(ctx)
	require.NoError(t, err)
	require.Len(t, loadouts, 2)
	var renamed *entities.Loadout
	for _, l := range loadouts {
		if l.ID != loadout.ID {
			renamed = l
		}
	}
	require.NotNil(t, renamed)
	assert.NotEqual(t, "L-old", renamed.ID)

	items, err := repos.Loadouts.ListItems(ctx, renamed.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, stored.ID, items[0].ItemID)
	assert.Equal(t, entities.ItemFirearm, items[0].ItemType)
}

func TestImport_DefaultResolutionSkipsWithoutWrites(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	b := &entities.Borrower{Name: "Alice", Phone: "555"}
	require.NoError(t, repos.Borrowers.Add(t.Context(), b))

	csv := "=== BORROWERS ===\nname,phone\nalice,777\n"
	res, err := newEngine(store).Import(t.Context(), strings.NewReader(csv), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)

	got, err := repos.Borrowers.GetByID(t.Context(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "555", got.Phone)
}

func TestImport_IDCollisionIsDuplicate(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	f := &entities.Firearm{Name: "No Serial", Caliber: "22LR"}
	require.NoError(t, repos.Firearms.Add(t.Context(), f))

	csv := "=== FIREARMS ===\nid,name,caliber,purchase_date\n" + f.ID + ",Renamed,22LR,2020-01-01\n"
	res, err := newEngine(store).Import(t.Context(), strings.NewReader(csv), ImportOptions{DefaultResolution: ResolveOverwrite})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Overwritten)

	got, err := repos.Firearms.GetByID(t.Context(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestImport_RowErrorsDoNotAbortSection(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)

	csv := "=== CONSUMABLES ===\n" +
		"id,name,category,unit,quantity\n" +
		"C1,Primers,Components,each,100\n" +
		"\n" +
		"=== ATTACHMENTS ===\n" +
		"name,category,mounted_on_firearm_id\n" +
		"Light,Illumination,missing-firearm\n" +
		"\n" +
		"=== LOADOUTS ===\n" +
		"id,name\n" +
		"L1,Hunt\n" +
		"\n" +
		"=== LOADOUT CONSUMABLES ===\n" +
		"loadout_id,consumable_id,quantity\n" +
		"L1,nope,5\n" +
		"L1,C1,abc\n" +
		"L1,C1,20\n"
	res, err := newEngine(store).Import(t.Context(), strings.NewReader(csv), ImportOptions{})
	require.NoError(t, err)

	var section SectionResult
	for _, s := range res.Sections {
		if s.Name == SectionLoadoutConsumables {
			section = s
		}
	}
	assert.Equal(t, 3, section.Rows)
	assert.Equal(t, 1, section.Imported)
	assert.Equal(t, 2, section.Failed)

	types := make(map[IssueType]int)
	for _, i := range res.Errors {
		types[i.Type]++
	}
	assert.Equal(t, 1, types[IssueDanglingReference])
	assert.Equal(t, 1, types[IssueInvalidNumber])

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, IssueDanglingReference, res.Warnings[0].Type)
	light, err := repos.Attachments.GetByName(t.Context(), "Light")
	require.NoError(t, err)
	require.NotNil(t, light.MountedOnFirearmID)
	assert.Equal(t, "missing-firearm", *light.MountedOnFirearmID, "weak references are kept verbatim")

	rows, err := repos.Loadouts.ListConsumables(t.Context(), "L1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].Quantity)
}

func TestImport_ProgressAndMetrics(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)
	m, err := metrics.NewImportExportMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	csv := "=== BORROWERS ===\nname\nAlice\nBob\n\n=== SOFT GEAR ===\nname,category,purchase_date\nPack,Bags,2020-01-01\n"
	var percents []int
	res, err := newEngine(store, WithMetrics(m)).Import(t.Context(), strings.NewReader(csv), ImportOptions{
		Progress: func(percent, total int, entity, _ string) {
			assert.Equal(t, 100, total)
			assert.NotEmpty(t, entity)
			percents = append(percents, percent)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, []int{33, 66, 100}, percents)
	assert.Equal(t, 2, testutil.CollectAndCount(m, "geartracker_import_rows_total"))
}

func TestPreview_IsReadOnly(t *testing.T) {
	t.Parallel()
	store, repos := newStore(t)
	require.NoError(t, repos.Firearms.Add(t.Context(), &entities.Firearm{Name: "Rifle", Caliber: "308", SerialNumber: "SN1"}))

	csv := "# generated by hand\n" +
		"=== METADATA ===\nexport_date,version,export_type,dry_run\n2025-01-01 00:00:00,1.0,complete,0\n\n" +
		"=== FIREARMS ===\nname,caliber,serial_number,purchase_date\n" +
		"Rifle,308,SN1,2020-01-01\n" +
		"Pistol,9mm,SN9,2020-01-01\n" +
		"Broken,,SN10,01/02/2020\n" +
		"\n=== WISHLIST ===\nname\nThing\n"
	p, err := newEngine(store).Preview(t.Context(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, "1.0", p.Metadata["version"])
	assert.Equal(t, []string{"WISHLIST"}, p.UnknownSections)
	assert.False(t, p.CanImport())
	assert.Len(t, p.Errors, 2)
	require.Len(t, p.Sections, 1)
	assert.Equal(t, SectionPreview{Name: SectionFirearms, Entity: "Firearm", Rows: 3, Duplicates: 1}, p.Sections[0])

	all, err := repos.Firearms.List(t.Context(), repository.FirearmFilter{IncludeTransferred: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTemplate(t *testing.T) {
	t.Parallel()
	store, _ := newStore(t)
	engine := newEngine(store)

	var one bytes.Buffer
	require.NoError(t, engine.Template(&one, "borrowers"))
	assert.Equal(t, "=== BORROWERS ===\nid,name,phone,email,notes\n\n", one.String())

	var all bytes.Buffer
	require.NoError(t, engine.Template(&all, ""))
	doc, err := Parse(&all)
	require.NoError(t, err)
	assert.Len(t, doc.Order, len(entitySpecs))
	for _, spec := range entitySpecs {
		s := doc.Section(spec.Name)
		require.NotNil(t, s, spec.Name)
		assert.Equal(t, spec.Columns, s.Header)
		assert.Empty(t, s.Rows)
	}

	err = engine.Template(&bytes.Buffer{}, "wishlist")
	require.ErrorIs(t, err, ErrUnknownSection)
}

func TestParse(t *testing.T) {
	t.Parallel()
	input := byteOrderMark +
		"stray,row\n" +
		"=== firearms ===\n" +
		"ID , Name,Caliber\n" +
		"# a comment\n" +
		"f1,\"Rifle, long\",308\n" +
		"f2,\"multi\nline\",9mm\n" +
		"\n" +
		"f3,after blank,ignored\n" +
		"===  Soft_Gear ===\n" +
		"name,category\n" +
		"Pack\n" +
		"=== Mystery ===\n" +
		"a,b\n" +
		"1,2\n"
	doc, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{SectionFirearms, SectionSoftGear, "MYSTERY"}, doc.Order)
	assert.Equal(t, []string{"MYSTERY"}, doc.Unknown)
	assert.Empty(t, doc.Section("mystery").Rows)

	firearms := doc.Section("FIREARMS")
	require.NotNil(t, firearms)
	assert.Equal(t, []string{"id", "name", "caliber"}, firearms.Header)
	require.Len(t, firearms.Rows, 2)
	assert.Equal(t, "Rifle, long", firearms.Rows[0].Get("name"))
	assert.Equal(t, 5, firearms.Rows[0].Line)
	assert.Equal(t, "multi\nline", firearms.Rows[1].Get("name"))

	gear := doc.Section("soft gear")
	require.Len(t, gear.Rows, 1)
	assert.True(t, gear.Rows[0].Has("category"))
	assert.Empty(t, gear.Rows[0].Get("category"))
}

func TestParse_MalformedCSV(t *testing.T) {
	t.Parallel()
	_, err := Parse(strings.NewReader("=== BORROWERS ===\nname\n\"unterminated\n"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}

func TestParse_InvalidUTF8(t *testing.T) {
	t.Parallel()
	input := "=== BORROWERS ===\n" +
		"id,name,phone,email,notes\n" +
		"b1,Alice,,,\n" +
		",Al\xff\xfeice,,,\n"
	_, err := Parse(strings.NewReader(input))
	require.ErrorIs(t, err, ErrInvalidEncoding)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))

	var ee *errors.EnhancedError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 4, ee.GetContext()["row"])
}

func TestParse_ByteOrderMarkKeepsValidText(t *testing.T) {
	t.Parallel()
	doc, err := Parse(strings.NewReader(byteOrderMark + "=== BORROWERS ===\nname\nZoë\n"))
	require.NoError(t, err)
	require.Len(t, doc.Section(SectionBorrowers).Rows, 1)
	assert.Equal(t, "Zoë", doc.Section(SectionBorrowers).Rows[0].Get("name"))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	csv := "=== FIREARMS ===\n" +
		"id,name,caliber,purchase_date,status,is_nfa,rounds_fired\n" +
		"a,Rifle,308,2020-01-01,available,TRUE,10\n" +
		"b,,308,2020-13-01,GONE,maybe,ten\n" +
		"a,Dup,308,2020-01-01,,0,\n"
	doc, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	issues := Validate(doc)

	got := make(map[string]IssueType)
	for _, i := range issues {
		got[i.Field] = i.Type
		if i.Type == IssueDuplicateID {
			assert.Equal(t, SeverityWarning, i.Severity)
			assert.Equal(t, 5, i.Row)
			continue
		}
		assert.Equal(t, 4, i.Row, i.String())
		assert.Equal(t, SeverityError, i.Severity)
		assert.Equal(t, "Firearm", i.Entity)
	}
	assert.Equal(t, map[string]IssueType{
		"name":          IssueMissingRequired,
		"purchase_date": IssueInvalidDate,
		"status":        IssueInvalidEnum,
		"is_nfa":        IssueInvalidBoolean,
		"rounds_fired":  IssueInvalidNumber,
		"id":            IssueDuplicateID,
	}, got)
}

func TestParseResolution(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{"skip", ResolveSkip, false},
		{" Overwrite ", ResolveOverwrite, false},
		{"RENAME", ResolveRename, false},
		{"cancel", ResolveCancel, false},
		{"merge", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseResolution(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinder_BooleansNormalizeOnExport(t *testing.T) {
	t.Parallel()
	f := &entities.Firearm{}
	b := binderFor(f)
	for _, in := range []string{"TRUE", "true", "1"} {
		require.NoError(t, b.set(f, "is_nfa", in))
		assert.Equal(t, "1", b.get(f, "is_nfa"))
	}
	require.NoError(t, b.set(f, "is_nfa", "False"))
	assert.Equal(t, "0", b.get(f, "is_nfa"))
	require.Error(t, b.set(f, "is_nfa", "yes"))

	a := &entities.Attachment{}
	ab := binderFor(a)
	require.NoError(t, ab.set(a, "zero_distance_yards", "50"))
	assert.Equal(t, "50", ab.get(a, "zero_distance_yards"))
	require.NoError(t, ab.set(a, "zero_distance_yards", ""))
	assert.Nil(t, a.ZeroDistanceYards)
	assert.Empty(t, ab.get(a, "zero_distance_yards"))
}
