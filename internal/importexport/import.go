package importexport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
	"github.com/tphakala/gear-tracker/internal/observability/metrics"
)

// Resolution is the decision taken for an incoming row whose natural key
// already exists.
type Resolution string

const (
	ResolveSkip      Resolution = "skip"
	ResolveOverwrite Resolution = "overwrite"
	ResolveRename    Resolution = "rename"
	ResolveCancel    Resolution = "cancel"
)

// ParseResolution parses a resolution name case-insensitively.
func ParseResolution(s string) (Resolution, error) {
	switch r := Resolution(strings.ToLower(strings.TrimSpace(s))); r {
	case ResolveSkip, ResolveOverwrite, ResolveRename, ResolveCancel:
		return r, nil
	default:
		return "", errors.Newf("invalid duplicate resolution %q, expected skip, overwrite, rename or cancel", s).
			Component(component).
			Category(errors.CategoryValidation).
			Build()
	}
}

// Duplicate describes an incoming row that collides with a stored entity.
type Duplicate struct {
	Section  string
	Entity   string
	Row      int
	Existing any // pointer to the stored entity
	Incoming any // pointer to the parsed row
}

// Resolver decides what to do with a duplicate.
type Resolver func(Duplicate) Resolution

// ProgressFunc is called after every processed row.
type ProgressFunc func(percent, total int, entity, message string)

// ImportOptions controls duplicate handling and progress reporting.
type ImportOptions struct {
	Resolver          Resolver
	DefaultResolution Resolution // used when Resolver is nil or returns ""; skip when empty
	Progress          ProgressFunc
}

// SectionResult counts row outcomes of one section.
type SectionResult struct {
	Name        string
	Rows        int
	Imported    int
	Overwritten int
	Skipped     int
	Failed      int
	RolledBack  bool
}

// Result summarizes an import run. Counts of rolled back sections are not
// included in the totals.
type Result struct {
	Sections    []SectionResult
	Imported    int
	Overwritten int
	Skipped     int
	Failed      int
	Errors      []Issue
	Warnings    []Issue
	Cancelled   bool
	Duration    time.Duration
}

func (r *Result) add(s SectionResult) {
	r.Sections = append(r.Sections, s)
	if s.RolledBack {
		return
	}
	r.Imported += s.Imported
	r.Overwritten += s.Overwritten
	r.Skipped += s.Skipped
	r.Failed += s.Failed
}

// Import parses r and restores it into the store.
func (e *Engine) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return e.ImportDocument(ctx, doc, opts)
}

// ImportDocument restores a parsed document section by section in ImportOrder.
// Every section runs in its own transaction and every row in its own
// savepoint, so a failing row is reported without losing the section. A
// cancel decision rolls back the current section and stops the import with
// ErrImportCancelled; sections committed earlier stay.
func (e *Engine) ImportDocument(ctx context.Context, doc *Document, opts ImportOptions) (result *Result, err error) {
	start := time.Now()
	defer func() { e.recordRun("import", start, err) }()

	result = &Result{}
	issues := Validate(doc)
	for _, issue := range issues {
		e.metrics.RecordValidationIssue(string(issue.Severity))
	}
	result.Errors, result.Warnings = splitIssues(issues)

	run := &importRun{
		engine: e,
		opts:   opts,
		issues: issues,
		ids:    make(idMap),
		result: result,
	}
	for _, name := range ImportOrder {
		run.total += doc.RowCount(name)
	}

	for _, name := range ImportOrder {
		section := doc.Section(name)
		if section == nil || len(section.Rows) == 0 {
			continue
		}
		if err := run.section(ctx, importers[name], section); err != nil {
			result.Duration = time.Since(start)
			if errors.Is(err, ErrImportCancelled) {
				result.Cancelled = true
				e.log.Info("import cancelled",
					logger.String("section", name),
					logger.Int("imported", result.Imported))
			}
			return result, err
		}
	}

	result.Duration = time.Since(start)
	e.log.Info("import completed",
		logger.Int("imported", result.Imported),
		logger.Int("overwritten", result.Overwritten),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
		logger.Int("warnings", len(result.Warnings)),
		logger.Duration("elapsed", result.Duration))
	return result, nil
}

// idMap maps section -> incoming id -> stored id.
type idMap map[string]map[string]string

func (m idMap) lookup(section, id string) (string, bool) {
	stored, ok := m[section][id]
	return stored, ok
}

func (m idMap) merge(section string, pending map[string]string) {
	if len(pending) == 0 {
		return
	}
	if m[section] == nil {
		m[section] = make(map[string]string, len(pending))
	}
	for k, v := range pending {
		m[section][k] = v
	}
}

type importRun struct {
	engine    *Engine
	opts      ImportOptions
	issues    []Issue
	ids       idMap
	result    *Result
	total     int
	processed int
}

type rowOutcome int

const (
	rowImported rowOutcome = iota
	rowOverwritten
	rowSkipped
)

func (run *importRun) section(ctx context.Context, imp sectionImporter, section *Section) error {
	spec := imp.spec()
	log := run.engine.log.With(logger.String("section", spec.Name))
	sr := SectionResult{Name: spec.Name, Rows: len(section.Rows)}
	pending := make(map[string]string)
	var warnings []Issue

	err := run.engine.store.Transaction(ctx, func(tx *gorm.DB) error {
		for _, row := range section.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.processed++
			if rowHasErrors(run.issues, spec.Entity, row.Line) {
				sr.Failed++
				run.progress(spec, row, "skipped invalid row")
				continue
			}

			var (
				outcome  rowOutcome
				rowWarns []Issue
			)
			err := tx.Transaction(func(sp *gorm.DB) error {
				rc := &rowContext{
					tx:      sp,
					repos:   repository.New(sp),
					row:     row,
					ids:     run.ids,
					pending: pending,
					resolve: run.resolve,
				}
				var err error
				outcome, err = imp.importRow(ctx, rc)
				rowWarns = rc.warnings
				return err
			})
			switch {
			case err == nil:
				warnings = append(warnings, rowWarns...)
				switch outcome {
				case rowImported:
					sr.Imported++
				case rowOverwritten:
					sr.Overwritten++
				case rowSkipped:
					sr.Skipped++
				}
			case errors.Is(err, ErrImportCancelled):
				return err
			case rowLevel(err):
				sr.Failed++
				run.result.Errors = append(run.result.Errors, rowIssue(spec, row, err))
				log.Debug("row rejected", logger.Int("line", row.Line), logger.Error(err))
			default:
				return err
			}
			run.progress(spec, row, "")
		}
		return nil
	})
	if err != nil {
		sr.RolledBack = true
		run.result.add(sr)
		log.Warn("section rolled back",
			logger.Int("rows", sr.Rows),
			logger.Error(err))
		if !errors.Is(err, ErrImportCancelled) {
			return storageError(err, "import_section")
		}
		return err
	}

	run.ids.merge(spec.Name, pending)
	run.result.Warnings = append(run.result.Warnings, warnings...)
	run.result.add(sr)
	m := run.engine.metrics
	m.RecordRows(spec.Name, metrics.RowImported, sr.Imported+sr.Overwritten)
	m.RecordRows(spec.Name, metrics.RowSkipped, sr.Skipped)
	m.RecordRows(spec.Name, metrics.RowFailed, sr.Failed)
	log.Debug("section committed",
		logger.Int("imported", sr.Imported),
		logger.Int("overwritten", sr.Overwritten),
		logger.Int("skipped", sr.Skipped),
		logger.Int("failed", sr.Failed))
	return nil
}

func (run *importRun) resolve(d Duplicate) Resolution {
	var r Resolution
	if run.opts.Resolver != nil {
		r = run.opts.Resolver(d)
	}
	if r == "" {
		r = run.opts.DefaultResolution
	}
	switch r {
	case ResolveOverwrite, ResolveRename, ResolveCancel:
		return r
	default:
		return ResolveSkip
	}
}

func (run *importRun) progress(spec *SectionSpec, row Row, message string) {
	if run.opts.Progress == nil {
		return
	}
	percent := 100
	if run.total > 0 {
		percent = run.processed * 100 / run.total
	}
	if message == "" {
		message = fmt.Sprintf("imported %s row at line %d", strings.ToLower(spec.Name), row.Line)
	}
	run.opts.Progress(percent, 100, spec.Entity, message)
}

func rowIssue(spec *SectionSpec, row Row, err error) Issue {
	t := IssueStorage
	if errors.Is(err, ErrDanglingReference) {
		t = IssueDanglingReference
	}
	return Issue{
		Row:      row.Line,
		Entity:   spec.Entity,
		Type:     t,
		Message:  err.Error(),
		Severity: SeverityError,
	}
}

// rowContext carries the per-row state handed to a section importer.
type rowContext struct {
	tx       *gorm.DB
	repos    *repository.Repositories
	row      Row
	ids      idMap
	pending  map[string]string
	resolve  func(Duplicate) Resolution
	warnings []Issue
}

func (rc *rowContext) warn(spec *SectionSpec, field string, t IssueType, format string, args ...any) {
	rc.warnings = append(rc.warnings, Issue{
		Row:      rc.row.Line,
		Entity:   spec.Entity,
		Field:    field,
		Type:     t,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	})
}

// reference declares a column holding the id of a row in an earlier section.
type reference struct {
	column   string
	target   func(values map[string]string) string
	required bool
}

func inSection(name string) func(map[string]string) string {
	return func(map[string]string) string { return name }
}

var itemSections = map[entities.ItemType]string{
	entities.ItemFirearm:    SectionFirearms,
	entities.ItemNFA:        SectionNFAItems,
	entities.ItemSoftGear:   SectionSoftGear,
	entities.ItemConsumable: SectionConsumables,
}

func itemSection(values map[string]string) string {
	return itemSections[entities.ItemType(values["item_type"])]
}

// values returns the non-empty cells of the row with enums upper-cased and
// references remapped to stored ids.
func (rc *rowContext) values(ctx context.Context, spec *SectionSpec, refs []reference) (map[string]string, error) {
	values := make(map[string]string, len(spec.Columns))
	for _, column := range spec.Columns {
		v := rc.row.Get(column)
		if v == "" {
			continue
		}
		if _, ok := spec.Enums[column]; ok {
			v = strings.ToUpper(v)
		}
		values[column] = v
	}

	for _, ref := range refs {
		id, ok := values[ref.column]
		if !ok {
			continue
		}
		target := ref.target(values)
		if stored, ok := rc.ids.lookup(target, id); ok {
			values[ref.column] = stored
			continue
		}
		found, err := exists(ctx, rc.tx, target, id)
		if err != nil {
			return nil, err
		}
		if found {
			continue
		}
		if ref.required {
			return nil, danglingError(ref.column, id)
		}
		rc.warn(spec, ref.column, IssueDanglingReference, "%s %q does not exist, kept as is", ref.column, id)
	}
	return values, nil
}

func exists(ctx context.Context, tx *gorm.DB, section, id string) (bool, error) {
	spec, ok := Spec(section)
	if !ok || spec.model == nil {
		return false, nil
	}
	var n int64
	if err := tx.WithContext(ctx).Model(spec.model()).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, storageError(err, "check_reference")
	}
	return n > 0, nil
}

// sectionImporter restores the rows of one section.
type sectionImporter interface {
	spec() *SectionSpec
	importRow(ctx context.Context, rc *rowContext) (rowOutcome, error)
	isDuplicate(ctx context.Context, repos *repository.Repositories, row Row) (bool, error)
}

// handler implements sectionImporter for entity type T.
type handler[T any] struct {
	section string
	refs    []reference
	id      func(*T) *string
	find    func(ctx context.Context, repos *repository.Repositories, incoming *T) (*T, error)
	create  func(ctx context.Context, repos *repository.Repositories, entity *T) error
	update  func(ctx context.Context, repos *repository.Repositories, entity *T) error
	// status is set for checkoutable sections.
	status func(*T) *entities.CheckoutStatus
}

func (h *handler[T]) spec() *SectionSpec {
	s, _ := Spec(h.section)
	return s
}

func (h *handler[T]) bind(entity *T, values map[string]string, skipID bool) error {
	b := binderFor(entity)
	for column, v := range values {
		if skipID && column == "id" {
			continue
		}
		if err := b.set(entity, column, v); err != nil {
			return cellError(err, column)
		}
	}
	return nil
}

func (h *handler[T]) lookup(ctx context.Context, repos *repository.Repositories, incoming *T) (*T, error) {
	existing, err := h.find(ctx, repos, incoming)
	if errors.IsNotFound(err) {
		return nil, nil
	}
	return existing, err
}

func (h *handler[T]) importRow(ctx context.Context, rc *rowContext) (rowOutcome, error) {
	spec := h.spec()
	values, err := rc.values(ctx, spec, h.refs)
	if err != nil {
		return 0, err
	}
	incoming := new(T)
	if err := h.bind(incoming, values, false); err != nil {
		return 0, err
	}
	incomingID := values["id"]

	existing, err := h.lookup(ctx, rc.repos, incoming)
	if err == nil && existing == nil && incomingID != "" {
		// no natural key match, but the stored row may share the id
		existing, err = byID[T](ctx, rc.tx, incomingID)
	}
	if err != nil {
		return 0, err
	}
	if existing == nil {
		if err := h.reconcileStatus(ctx, rc, incoming, nil); err != nil {
			return 0, err
		}
		if err := h.create(ctx, rc.repos, incoming); err != nil {
			return 0, err
		}
		rc.remember(incomingID, *h.id(incoming))
		return rowImported, nil
	}

	storedID := *h.id(existing)
	switch rc.resolve(Duplicate{
		Section:  spec.Name,
		Entity:   spec.Entity,
		Row:      rc.row.Line,
		Existing: existing,
		Incoming: incoming,
	}) {
	case ResolveCancel:
		return 0, ErrImportCancelled
	case ResolveOverwrite:
		merged := *existing
		if err := h.bind(&merged, values, true); err != nil {
			return 0, err
		}
		if err := h.reconcileStatus(ctx, rc, &merged, existing); err != nil {
			return 0, err
		}
		if err := h.update(ctx, rc.repos, &merged); err != nil {
			return 0, err
		}
		rc.remember(incomingID, storedID)
		return rowOverwritten, nil
	case ResolveRename:
		*h.id(incoming) = entities.NewID()
		if err := h.reconcileStatus(ctx, rc, incoming, nil); err != nil {
			return 0, err
		}
		if err := h.create(ctx, rc.repos, incoming); err != nil {
			return 0, err
		}
		rc.remember(incomingID, *h.id(incoming))
		return rowImported, nil
	default:
		rc.remember(incomingID, storedID)
		return rowSkipped, nil
	}
}

// reconcileStatus keeps the item status in line with the checkout ledger.
// An item with an active checkout keeps its stored status, and a CHECKED_OUT
// item without one is restored as AVAILABLE.
func (h *handler[T]) reconcileStatus(ctx context.Context, rc *rowContext, entity, stored *T) error {
	if h.status == nil {
		return nil
	}
	status := h.status(entity)
	id := *h.id(entity)
	active := false
	if id != "" {
		var err error
		if active, err = rc.repos.Checkouts.IsItemCheckedOut(ctx, id); err != nil {
			return err
		}
	}

	switch {
	case active && stored != nil:
		if kept := *h.status(stored); *status != kept {
			rc.warn(h.spec(), "status", IssueStatusAdjusted,
				"%s has an active checkout, status kept as %s", id, kept)
			*status = kept
		}
	case active:
		*status = entities.StatusCheckedOut
	case *status == entities.StatusCheckedOut:
		rc.warn(h.spec(), "status", IssueStatusAdjusted,
			"no active checkout for %s, status set to %s", rowLabel(id), entities.StatusAvailable)
		*status = entities.StatusAvailable
	}
	return nil
}

func rowLabel(id string) string {
	if id == "" {
		return "new item"
	}
	return id
}

func (h *handler[T]) isDuplicate(ctx context.Context, repos *repository.Repositories, row Row) (bool, error) {
	spec := h.spec()
	values := make(map[string]string, len(spec.Columns))
	for _, column := range spec.Columns {
		if v := row.Get(column); v != "" {
			values[column] = v
		}
	}
	incoming := new(T)
	if err := h.bind(incoming, values, false); err != nil {
		return false, nil
	}
	existing, err := h.lookup(ctx, repos, incoming)
	return existing != nil, err
}

func byID[T any](ctx context.Context, tx *gorm.DB, id string) (*T, error) {
	var entity T
	res := tx.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&entity)
	if res.Error != nil {
		return nil, storageError(res.Error, "get_by_id")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &entity, nil
}

func (rc *rowContext) remember(incomingID, storedID string) {
	if incomingID != "" {
		rc.pending[incomingID] = storedID
	}
}

// importers holds the importer of every entity section, keyed by section name.
var importers = map[string]sectionImporter{
	SectionBorrowers: &handler[entities.Borrower]{
		section: SectionBorrowers,
		id:      func(b *entities.Borrower) *string { return &b.ID },
		find: func(ctx context.Context, r *repository.Repositories, b *entities.Borrower) (*entities.Borrower, error) {
			return r.Borrowers.GetByName(ctx, b.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, b *entities.Borrower) error {
			return r.Borrowers.Add(ctx, b)
		},
		update: func(ctx context.Context, r *repository.Repositories, b *entities.Borrower) error {
			return r.Borrowers.Update(ctx, b)
		},
	},
	SectionFirearms: &handler[entities.Firearm]{
		section: SectionFirearms,
		id:      func(f *entities.Firearm) *string { return &f.ID },
		status:  func(f *entities.Firearm) *entities.CheckoutStatus { return &f.Status },
		find: func(ctx context.Context, r *repository.Repositories, f *entities.Firearm) (*entities.Firearm, error) {
			if f.SerialNumber == "" {
				return nil, nil
			}
			return r.Firearms.GetBySerial(ctx, f.SerialNumber)
		},
		create: func(ctx context.Context, r *repository.Repositories, f *entities.Firearm) error {
			return r.Firearms.Add(ctx, f)
		},
		update: func(ctx context.Context, r *repository.Repositories, f *entities.Firearm) error {
			return r.Firearms.Update(ctx, f)
		},
	},
	SectionNFAItems: &handler[entities.NFAItem]{
		section: SectionNFAItems,
		id:      func(n *entities.NFAItem) *string { return &n.ID },
		status:  func(n *entities.NFAItem) *entities.CheckoutStatus { return &n.Status },
		find: func(ctx context.Context, r *repository.Repositories, n *entities.NFAItem) (*entities.NFAItem, error) {
			return r.NFAItems.GetByName(ctx, n.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, n *entities.NFAItem) error {
			return r.NFAItems.Add(ctx, n)
		},
		update: func(ctx context.Context, r *repository.Repositories, n *entities.NFAItem) error {
			return r.NFAItems.Update(ctx, n)
		},
	},
	SectionSoftGear: &handler[entities.SoftGear]{
		section: SectionSoftGear,
		id:      func(g *entities.SoftGear) *string { return &g.ID },
		status:  func(g *entities.SoftGear) *entities.CheckoutStatus { return &g.Status },
		find: func(ctx context.Context, r *repository.Repositories, g *entities.SoftGear) (*entities.SoftGear, error) {
			return r.SoftGear.GetByName(ctx, g.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, g *entities.SoftGear) error {
			return r.SoftGear.Add(ctx, g)
		},
		update: func(ctx context.Context, r *repository.Repositories, g *entities.SoftGear) error {
			return r.SoftGear.Update(ctx, g)
		},
	},
	SectionAttachments: &handler[entities.Attachment]{
		section: SectionAttachments,
		refs:    []reference{{column: "mounted_on_firearm_id", target: inSection(SectionFirearms)}},
		id:      func(a *entities.Attachment) *string { return &a.ID },
		find: func(ctx context.Context, r *repository.Repositories, a *entities.Attachment) (*entities.Attachment, error) {
			return r.Attachments.GetByName(ctx, a.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, a *entities.Attachment) error {
			return r.Attachments.Add(ctx, a)
		},
		update: func(ctx context.Context, r *repository.Repositories, a *entities.Attachment) error {
			return r.Attachments.Update(ctx, a)
		},
	},
	SectionConsumables: &handler[entities.Consumable]{
		section: SectionConsumables,
		id:      func(c *entities.Consumable) *string { return &c.ID },
		find: func(ctx context.Context, r *repository.Repositories, c *entities.Consumable) (*entities.Consumable, error) {
			return r.Consumables.GetByName(ctx, c.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, c *entities.Consumable) error {
			return r.Consumables.Add(ctx, c)
		},
		update: func(ctx context.Context, r *repository.Repositories, c *entities.Consumable) error {
			return r.Consumables.Update(ctx, c)
		},
	},
	SectionReloadBatches: &handler[entities.ReloadBatch]{
		section: SectionReloadBatches,
		refs:    []reference{{column: "firearm_id", target: inSection(SectionFirearms)}},
		id:      func(b *entities.ReloadBatch) *string { return &b.ID },
		find: func(ctx context.Context, r *repository.Repositories, b *entities.ReloadBatch) (*entities.ReloadBatch, error) {
			return r.ReloadBatches.FindByRecipe(ctx, b.Cartridge, b.BulletModel)
		},
		create: func(ctx context.Context, r *repository.Repositories, b *entities.ReloadBatch) error {
			return r.ReloadBatches.Add(ctx, b)
		},
		update: func(ctx context.Context, r *repository.Repositories, b *entities.ReloadBatch) error {
			return r.ReloadBatches.Update(ctx, b)
		},
	},
	SectionLoadouts: &handler[entities.Loadout]{
		section: SectionLoadouts,
		id:      func(l *entities.Loadout) *string { return &l.ID },
		find: func(ctx context.Context, r *repository.Repositories, l *entities.Loadout) (*entities.Loadout, error) {
			return r.Loadouts.GetByName(ctx, l.Name)
		},
		create: func(ctx context.Context, r *repository.Repositories, l *entities.Loadout) error {
			return r.Loadouts.Add(ctx, l)
		},
		update: func(ctx context.Context, r *repository.Repositories, l *entities.Loadout) error {
			return r.Loadouts.Update(ctx, l)
		},
	},
	SectionLoadoutItems: &handler[entities.LoadoutItem]{
		section: SectionLoadoutItems,
		refs: []reference{
			{column: "loadout_id", target: inSection(SectionLoadouts), required: true},
			{column: "item_id", target: itemSection, required: true},
		},
		id: func(i *entities.LoadoutItem) *string { return &i.ID },
		find: func(ctx context.Context, r *repository.Repositories, i *entities.LoadoutItem) (*entities.LoadoutItem, error) {
			return r.Loadouts.FindItem(ctx, i.LoadoutID, i.ItemID)
		},
		create: func(ctx context.Context, r *repository.Repositories, i *entities.LoadoutItem) error {
			return r.Loadouts.AddItem(ctx, i)
		},
		update: func(ctx context.Context, r *repository.Repositories, i *entities.LoadoutItem) error {
			return r.Loadouts.UpdateItem(ctx, i)
		},
	},
	SectionLoadoutConsumables: &handler[entities.LoadoutConsumable]{
		section: SectionLoadoutConsumables,
		refs: []reference{
			{column: "loadout_id", target: inSection(SectionLoadouts), required: true},
			{column: "consumable_id", target: inSection(SectionConsumables), required: true},
		},
		id: func(c *entities.LoadoutConsumable) *string { return &c.ID },
		find: func(ctx context.Context, r *repository.Repositories, c *entities.LoadoutConsumable) (*entities.LoadoutConsumable, error) {
			return r.Loadouts.FindConsumable(ctx, c.LoadoutID, c.ConsumableID)
		},
		create: func(ctx context.Context, r *repository.Repositories, c *entities.LoadoutConsumable) error {
			return r.Loadouts.AddConsumable(ctx, c)
		},
		update: func(ctx context.Context, r *repository.Repositories, c *entities.LoadoutConsumable) error {
			return r.Loadouts.UpdateConsumable(ctx, c)
		},
	},
}
