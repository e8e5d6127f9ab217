package inventory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/errors"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// Severity grades a loadout pre-flight issue.
type Severity string

const (
	SeverityCritical Severity = "critical" // blocks checkout
	SeverityWarning  Severity = "warning"
)

// Issue is one finding of ValidateCheckout.
type Issue struct {
	Severity Severity
	ItemID   string
	ItemType entities.ItemType
	Message  string
}

// Validation is the pre-flight result for a loadout checkout.
type Validation struct {
	LoadoutID   string
	Issues      []Issue
	CanCheckout bool
}

// Critical returns the blocking issues.
func (v *Validation) Critical() []Issue {
	return v.filter(SeverityCritical)
}

// Warnings returns the advisory issues.
func (v *Validation) Warnings() []Issue {
	return v.filter(SeverityWarning)
}

func (v *Validation) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range v.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func (v *Validation) add(severity Severity, itemID string, itemType entities.ItemType, format string, args ...any) {
	v.Issues = append(v.Issues, Issue{
		Severity: severity,
		ItemID:   itemID,
		ItemType: itemType,
		Message:  fmt.Sprintf(format, args...),
	})
}

// LoadoutCheckoutOptions tunes CheckoutLoadout.
type LoadoutCheckoutOptions struct {
	ExpectedReturn time.Time
	Notes          string
	// AllowNegativeStock overrides the service default for this checkout.
	AllowNegativeStock *bool
}

// LoadoutCheckoutResult is what CheckoutLoadout committed.
type LoadoutCheckoutResult struct {
	LoadoutCheckout *entities.LoadoutCheckout
	Checkouts       []*entities.Checkout
	Warnings        []Issue
}

// Restock returns unused consumables to inventory.
type Restock struct {
	ConsumableID string
	Quantity     int
}

// LoadoutReturn describes what happened on a loadout trip.
type LoadoutReturn struct {
	RoundsFired  map[string]int // firearm id to rounds fired
	RainExposure bool
	AmmoType     string
	Restock      []Restock
	Notes        string
}

// LoadoutService checks whole loadouts in and out.
type LoadoutService struct {
	service
}

// NewLoadoutService creates a LoadoutService.
func NewLoadoutService(store Store, opts ...Option) *LoadoutService {
	return &LoadoutService{service: newService(store, opts)}
}

// ValidateCheckout reports what would block or complicate checking out the loadout.
func (s *LoadoutService) ValidateCheckout(ctx context.Context, loadoutID string) (*Validation, error) {
	return validateLoadout(ctx, s.repos(), loadoutID, s.now())
}

// CheckoutLoadout checks out every item of the loadout to the borrower and
// withdraws its consumables. Nothing is written when any step fails.
func (s *LoadoutService) CheckoutLoadout(ctx context.Context, loadoutID, borrowerID string, opts LoadoutCheckoutOptions) (*LoadoutCheckoutResult, error) {
	allowNegative := s.allowNegative
	if opts.AllowNegativeStock != nil {
		allowNegative = *opts.AllowNegativeStock
	}
	now := s.now()
	result := &LoadoutCheckoutResult{}

	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		loadout, err := repos.Loadouts.GetByID(ctx, loadoutID)
		if err != nil {
			return err
		}
		if _, err := repos.Loadouts.GetActiveCheckout(ctx, loadoutID); err == nil {
			return preconditionError(ErrLoadoutCheckedOut, "checkout_loadout", "loadout_id", loadoutID)
		} else if !errors.IsNotFound(err) {
			return err
		}

		validation, err := validateLoadout(ctx, repos, loadoutID, now)
		if err != nil {
			return err
		}
		if !validation.CanCheckout {
			return preconditionError(ErrLoadoutNotReady, "checkout_loadout",
				"loadout_id", loadoutID, "issues", issueMessages(validation.Critical()))
		}
		result.Warnings = validation.Warnings()

		borrower, err := repos.Borrowers.GetByID(ctx, borrowerID)
		if err != nil {
			return err
		}
		items, err := repos.Loadouts.ListItems(ctx, loadoutID)
		if err != nil {
			return err
		}
		requested, err := repos.Loadouts.ListConsumables(ctx, loadoutID)
		if err != nil {
			return err
		}
		if len(items) == 0 && len(requested) == 0 {
			return preconditionError(ErrLoadoutEmpty, "checkout_loadout", "loadout_id", loadoutID)
		}

		for _, item := range items {
			c, err := checkoutItem(ctx, repos, &entities.Checkout{
				ItemID:         item.ItemID,
				ItemType:       item.ItemType,
				BorrowerID:     borrower.ID,
				CheckoutDate:   entities.NewEpochTime(now),
				ExpectedReturn: entities.NewEpochTime(opts.ExpectedReturn),
				Notes:          "loadout: " + loadout.Name,
			}, now)
			if err != nil {
				return err
			}
			result.Checkouts = append(result.Checkouts, c)
		}

		for _, lc := range requested {
			if _, err := repos.Consumables.RecordTransaction(ctx, repository.LedgerEntry{
				ConsumableID:  lc.ConsumableID,
				Type:          entities.TxUse,
				Delta:         -lc.Quantity,
				Date:          entities.NewEpochTime(now),
				Notes:         "loadout checkout: " + loadout.Name,
				AllowNegative: allowNegative,
			}); err != nil {
				return err
			}
		}

		result.LoadoutCheckout = &entities.LoadoutCheckout{
			LoadoutID:    loadoutID,
			BorrowerID:   borrower.ID,
			CheckoutDate: entities.NewEpochTime(now),
			Notes:        opts.Notes,
		}
		if len(result.Checkouts) > 0 {
			result.LoadoutCheckout.CheckoutID = result.Checkouts[0].ID
		}
		return repos.Loadouts.AddCheckout(ctx, result.LoadoutCheckout)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("loadout checked out",
		logger.String("loadout_id", loadoutID),
		logger.String("borrower_id", borrowerID),
		logger.Int("items", len(result.Checkouts)),
		logger.Int("warnings", len(result.Warnings)))
	return result, nil
}

// ReturnLoadout closes the loadout's active checkout, returns its items,
// books rounds and exposure events against the firearms and restocks unused
// consumables, all in one transaction.
func (s *LoadoutService) ReturnLoadout(ctx context.Context, loadoutID string, ret LoadoutReturn) (*entities.LoadoutCheckout, error) {
	for _, r := range ret.Restock {
		if r.Quantity <= 0 {
			return nil, quantityError("return_loadout", r.Quantity)
		}
	}
	for _, rounds := range ret.RoundsFired {
		if rounds < 0 {
			return nil, quantityError("return_loadout", rounds)
		}
	}
	now := s.now()
	var closed *entities.LoadoutCheckout

	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		loadout, err := repos.Loadouts.GetByID(ctx, loadoutID)
		if err != nil {
			return err
		}
		active, err := repos.Loadouts.GetActiveCheckout(ctx, loadoutID)
		if errors.IsNotFound(err) {
			return preconditionError(ErrLoadoutNotCheckedOut, "return_loadout", "loadout_id", loadoutID)
		}
		if err != nil {
			return err
		}

		borrowerID, err := loadoutBorrower(ctx, repos, active)
		if err != nil {
			return err
		}
		items, err := repos.Loadouts.ListItems(ctx, loadoutID)
		if err != nil {
			return err
		}
		var firearmIDs []string
		for _, item := range items {
			if item.ItemType == entities.ItemFirearm {
				firearmIDs = append(firearmIDs, item.ItemID)
			}
			if err := s.returnLoadoutItem(ctx, repos, item, borrowerID, now); err != nil {
				return err
			}
		}

		exposures := AmmoExposures(ret.AmmoType)
		total := 0
		for _, firearmID := range slices.Sorted(maps.Keys(ret.RoundsFired)) {
			rounds := ret.RoundsFired[firearmID]
			if rounds == 0 {
				continue
			}
			total += rounds
			details := fmt.Sprintf("%d rounds fired with loadout %s", rounds, loadout.Name)
			if _, err := logFiredRounds(ctx, repos, firearmID, rounds, details, now); err != nil {
				return err
			}
			for _, exposure := range exposures {
				details := fmt.Sprintf("%s used with loadout %s", ret.AmmoType, loadout.Name)
				if err := logExposure(ctx, repos, firearmID, exposure, details, now); err != nil {
					return err
				}
			}
		}
		if ret.RainExposure {
			for _, firearmID := range firearmIDs {
				details := "exposed to rain with loadout " + loadout.Name
				if err := logExposure(ctx, repos, firearmID, entities.MaintRainExposure, details, now); err != nil {
					return err
				}
			}
		}

		for _, r := range ret.Restock {
			if _, err := repos.Consumables.RecordTransaction(ctx, repository.LedgerEntry{
				ConsumableID: r.ConsumableID,
				Type:         entities.TxRestock,
				Delta:        r.Quantity,
				Date:         entities.NewEpochTime(now),
				Notes:        "returned from loadout: " + loadout.Name,
			}); err != nil {
				return err
			}
		}

		active.RoundsFired = total
		active.RainExposure = ret.RainExposure
		active.AmmoType = ret.AmmoType
		if ret.Notes != "" {
			active.Notes = ret.Notes
		}
		if err := repos.Loadouts.CloseCheckout(ctx, active, now); err != nil {
			return err
		}
		closed = active
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("loadout returned",
		logger.String("loadout_id", loadoutID),
		logger.Int("rounds_fired", closed.RoundsFired),
		logger.Bool("rain_exposure", closed.RainExposure))
	return closed, nil
}

// History returns the checkout records of a loadout, newest first.
func (s *LoadoutService) History(ctx context.Context, loadoutID string) ([]*entities.LoadoutCheckout, error) {
	return s.repos().Loadouts.ListCheckouts(ctx, loadoutID)
}

// loadoutBorrower resolves who holds the loadout. Rows written before the
// borrower was stored fall back to the representative checkout.
func loadoutBorrower(ctx context.Context, repos *repository.Repositories, active *entities.LoadoutCheckout) (string, error) {
	if active.BorrowerID != "" || active.CheckoutID == "" {
		return active.BorrowerID, nil
	}
	representative, err := repos.Checkouts.GetByID(ctx, active.CheckoutID)
	if err != nil {
		return "", err
	}
	return representative.BorrowerID, nil
}

// returnLoadoutItem closes the item's active checkout when it belongs to the
// loadout's borrower. Items returned individually in the meantime are skipped.
func (s *LoadoutService) returnLoadoutItem(ctx context.Context, repos *repository.Repositories, item *entities.LoadoutItem, borrowerID string, now time.Time) error {
	checkout, err := repos.Checkouts.GetCheckoutByItem(ctx, item.ItemID)
	if errors.IsNotFound(err) {
		s.log.Debug("loadout item already returned", logger.String("item_id", item.ItemID))
		return nil
	}
	if err != nil {
		return err
	}
	if checkout.BorrowerID != borrowerID {
		s.log.Warn("loadout item checked out to another borrower",
			logger.String("item_id", item.ItemID),
			logger.String("checkout_id", checkout.ID))
		return nil
	}
	_, err = returnCheckout(ctx, repos, checkout.ID, now)
	return err
}

func validateLoadout(ctx context.Context, repos *repository.Repositories, loadoutID string, now time.Time) (*Validation, error) {
	if _, err := repos.Loadouts.GetByID(ctx, loadoutID); err != nil {
		return nil, err
	}
	v := &Validation{LoadoutID: loadoutID}

	items, err := repos.Loadouts.ListItems(ctx, loadoutID)
	if err != nil {
		return nil, err
	}
	for _, li := range items {
		if !li.ItemType.Checkoutable() {
			v.add(SeverityCritical, li.ItemID, li.ItemType, "%s items cannot be checked out", li.ItemType)
			continue
		}
		item, err := repos.Items.Get(ctx, li.ItemType, li.ItemID)
		if errors.IsNotFound(err) {
			v.add(SeverityCritical, li.ItemID, li.ItemType, "%s %s no longer exists", li.ItemType, li.ItemID)
			continue
		}
		if err != nil {
			return nil, err
		}
		if item.Status != entities.StatusAvailable {
			v.add(SeverityCritical, item.ID, item.Type, "%s is %s", item.Name, item.Status)
			continue
		}
		if item.Type == entities.ItemFirearm {
			status, err := repos.Firearms.GetMaintenanceStatus(ctx, item.ID, now)
			if err != nil {
				return nil, err
			}
			if status.NeedsMaintenance {
				v.add(SeverityCritical, item.ID, item.Type, "%s needs maintenance: %s",
					item.Name, strings.Join(status.Reasons, "; "))
			}
		}
	}

	requested, err := repos.Loadouts.ListConsumables(ctx, loadoutID)
	if err != nil {
		return nil, err
	}
	for _, lc := range requested {
		c, err := repos.Consumables.GetByID(ctx, lc.ConsumableID)
		if errors.IsNotFound(err) {
			v.add(SeverityCritical, lc.ConsumableID, entities.ItemConsumable, "consumable %s no longer exists", lc.ConsumableID)
			continue
		}
		if err != nil {
			return nil, err
		}
		after := c.Quantity - lc.Quantity
		switch {
		case after < 0:
			v.add(SeverityWarning, c.ID, entities.ItemConsumable, "%s will go negative (%d %s on hand, %d requested)",
				c.Name, c.Quantity, c.Unit, lc.Quantity)
		case after < c.MinQuantity:
			v.add(SeverityWarning, c.ID, entities.ItemConsumable, "%s will be below minimum (%d left, minimum %d)",
				c.Name, after, c.MinQuantity)
		}
	}

	v.CanCheckout = len(v.Critical()) == 0
	return v, nil
}

func issueMessages(issues []Issue) string {
	msgs := make([]string, 0, len(issues))
	for _, issue := range issues {
		msgs = append(msgs, issue.Message)
	}
	return strings.Join(msgs, "; ")
}
