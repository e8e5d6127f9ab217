package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
	"github.com/tphakala/gear-tracker/internal/datastore/repository"
	"github.com/tphakala/gear-tracker/internal/logger"
)

// Condition tokens appended to a firearm's maintenance_conditions.
const (
	ConditionRainExposure  = "Rain exposure"
	ConditionCorrosiveAmmo = "Corrosive ammo"
	ConditionLeadAmmo      = "Lead ammo"
)

// FirearmMaintenance pairs a firearm with its derived maintenance state.
type FirearmMaintenance struct {
	Firearm *entities.Firearm
	Status  *entities.MaintenanceStatus
}

// MaintenanceService records maintenance events and derives maintenance state.
type MaintenanceService struct {
	service
}

// NewMaintenanceService creates a MaintenanceService.
func NewMaintenanceService(store Store, opts ...Option) *MaintenanceService {
	return &MaintenanceService{service: newService(store, opts)}
}

// LogCleaning records a CLEANING event and resets the firearm's round count,
// maintenance flag and conditions in the same transaction.
func (s *MaintenanceService) LogCleaning(ctx context.Context, firearmID, details string) (*entities.MaintenanceLog, error) {
	entry := &entities.MaintenanceLog{
		ItemID:   firearmID,
		ItemType: entities.ItemFirearm,
		LogType:  entities.MaintCleaning,
		Date:     entities.NewEpochTime(s.now()),
		Details:  details,
	}
	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		return logCleaning(ctx, repos, entry)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("firearm cleaned", logger.String("firearm_id", firearmID))
	return entry, nil
}

// LogFiredRounds adds rounds to the firearm, records a FIRED_ROUNDS event and
// returns the resulting maintenance state.
func (s *MaintenanceService) LogFiredRounds(ctx context.Context, firearmID string, rounds int, details string) (*entities.MaintenanceStatus, error) {
	if rounds <= 0 {
		return nil, quantityError("log_fired_rounds", rounds)
	}
	var status *entities.MaintenanceStatus
	err := s.inTx(ctx, func(repos *repository.Repositories) error {
		var err error
		status, err = logFiredRounds(ctx, repos, firearmID, rounds, details, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("rounds logged",
		logger.String("firearm_id", firearmID),
		logger.Int("rounds", rounds),
		logger.Bool("needs_maintenance", status.NeedsMaintenance))
	return status, nil
}

// LogEvent records an arbitrary maintenance event. CLEANING and FIRED_ROUNDS
// events on firearms take the same path as LogCleaning and LogFiredRounds, and
// exposure events add the matching condition to the firearm.
func (s *MaintenanceService) LogEvent(ctx context.Context, entry *entities.MaintenanceLog) error {
	if !entry.Date.Valid() {
		entry.Date = entities.NewEpochTime(s.now())
	}
	if entry.ItemType != entities.ItemFirearm {
		return s.repos().Maintenance.Add(ctx, entry)
	}

	switch entry.LogType {
	case entities.MaintCleaning:
		return s.inTx(ctx, func(repos *repository.Repositories) error {
			return logCleaning(ctx, repos, entry)
		})
	case entities.MaintFiredRounds:
		if entry.AmmoCount == nil || *entry.AmmoCount <= 0 {
			return s.repos().Maintenance.Add(ctx, entry)
		}
		return s.inTx(ctx, func(repos *repository.Repositories) error {
			if err := repos.Maintenance.Add(ctx, entry); err != nil {
				return err
			}
			_, err := addRounds(ctx, repos, entry.ItemID, *entry.AmmoCount, s.now())
			return err
		})
	default:
		return s.inTx(ctx, func(repos *repository.Repositories) error {
			if err := repos.Maintenance.Add(ctx, entry); err != nil {
				return err
			}
			if token := conditionFor(entry.LogType); token != "" {
				return repos.Firearms.AddCondition(ctx, entry.ItemID, token)
			}
			return nil
		})
	}
}

// GetMaintenanceStatus derives the maintenance state of a firearm.
func (s *MaintenanceService) GetMaintenanceStatus(ctx context.Context, firearmID string) (*entities.MaintenanceStatus, error) {
	return s.repos().Firearms.GetMaintenanceStatus(ctx, firearmID, s.now())
}

// History returns the maintenance log of an item, newest first.
func (s *MaintenanceService) History(ctx context.Context, itemID string) ([]*entities.MaintenanceLog, error) {
	return s.repos().Maintenance.ListByItem(ctx, itemID)
}

// ListFirearmsNeedingMaintenance returns owned firearms whose derived state
// needs maintenance, ordered by name.
func (s *MaintenanceService) ListFirearmsNeedingMaintenance(ctx context.Context) ([]FirearmMaintenance, error) {
	repos := s.repos()
	firearms, err := repos.Firearms.List(ctx, repository.FirearmFilter{})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []FirearmMaintenance
	for _, f := range firearms {
		lastClean, err := repos.Maintenance.GetLastCleaningDate(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		status := entities.DeriveMaintenanceStatus(f, lastClean, now)
		if status.NeedsMaintenance {
			out = append(out, FirearmMaintenance{Firearm: f, Status: &status})
		}
	}
	return out, nil
}

func logCleaning(ctx context.Context, repos *repository.Repositories, entry *entities.MaintenanceLog) error {
	if _, err := repos.Firearms.GetByID(ctx, entry.ItemID); err != nil {
		return err
	}
	if err := repos.Maintenance.Add(ctx, entry); err != nil {
		return err
	}
	return repos.Firearms.ResetAfterCleaning(ctx, entry.ItemID)
}

func logFiredRounds(ctx context.Context, repos *repository.Repositories, firearmID string, rounds int, details string, now time.Time) (*entities.MaintenanceStatus, error) {
	if details == "" {
		details = fmt.Sprintf("%d rounds fired", rounds)
	}
	if err := repos.Maintenance.Add(ctx, &entities.MaintenanceLog{
		ItemID:    firearmID,
		ItemType:  entities.ItemFirearm,
		LogType:   entities.MaintFiredRounds,
		Date:      entities.NewEpochTime(now),
		Details:   details,
		AmmoCount: &rounds,
	}); err != nil {
		return nil, err
	}
	return addRounds(ctx, repos, firearmID, rounds, now)
}

// addRounds increments rounds_fired and persists the maintenance flag once the
// cleaning interval is reached.
func addRounds(ctx context.Context, repos *repository.Repositories, firearmID string, rounds int, now time.Time) (*entities.MaintenanceStatus, error) {
	f, err := repos.Firearms.AddRounds(ctx, firearmID, rounds)
	if err != nil {
		return nil, err
	}
	if f.CleanIntervalRounds > 0 && f.RoundsFired >= f.CleanIntervalRounds && !f.NeedsMaintenance {
		if err := repos.Firearms.SetNeedsMaintenance(ctx, firearmID, true); err != nil {
			return nil, err
		}
		f.NeedsMaintenance = true
	}
	lastClean, err := repos.Maintenance.GetLastCleaningDate(ctx, firearmID)
	if err != nil {
		return nil, err
	}
	status := entities.DeriveMaintenanceStatus(f, lastClean, now)
	return &status, nil
}

// logExposure records an exposure event and its condition token on a firearm.
func logExposure(ctx context.Context, repos *repository.Repositories, firearmID string, logType entities.MaintenanceType, details string, now time.Time) error {
	if err := repos.Maintenance.Add(ctx, &entities.MaintenanceLog{
		ItemID:   firearmID,
		ItemType: entities.ItemFirearm,
		LogType:  logType,
		Date:     entities.NewEpochTime(now),
		Details:  details,
	}); err != nil {
		return err
	}
	return repos.Firearms.AddCondition(ctx, firearmID, conditionFor(logType))
}

func conditionFor(t entities.MaintenanceType) string {
	switch t {
	case entities.MaintRainExposure:
		return ConditionRainExposure
	case entities.MaintCorrosiveAmmo:
		return ConditionCorrosiveAmmo
	case entities.MaintLeadAmmo:
		return ConditionLeadAmmo
	default:
		return ""
	}
}

var ammoNegations = strings.NewReplacer(
	"non-corrosive", "",
	"noncorrosive", "",
	"non corrosive", "",
	"lead-free", "",
	"lead free", "",
	"unleaded", "",
)

// AmmoExposures returns the exposure event types implied by an ammo label,
// for example "Surplus corrosive 7.62x54R" or "lead round nose".
func AmmoExposures(ammoType string) []entities.MaintenanceType {
	label := ammoNegations.Replace(strings.ToLower(ammoType))
	var out []entities.MaintenanceType
	if strings.Contains(label, "corrosive") {
		out = append(out, entities.MaintCorrosiveAmmo)
	}
	if strings.Contains(label, "lead") {
		out = append(out, entities.MaintLeadAmmo)
	}
	return out
}
