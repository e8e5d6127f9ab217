package entities

import (
	"fmt"
	"time"
)

// MaintenanceStatus is the derived maintenance state of a firearm.
type MaintenanceStatus struct {
	NeedsMaintenance bool
	Reasons          []string
	RoundsFired      int
	LastCleaning     EpochTime // zero when never cleaned
	DaysSinceClean   int
}

// DeriveMaintenanceStatus combines the persisted firearm flags with the date of
// its most recent cleaning. lastClean is zero when no cleaning was ever logged.
func DeriveMaintenanceStatus(f *Firearm, lastClean EpochTime, now time.Time) MaintenanceStatus {
	status := MaintenanceStatus{
		RoundsFired:  f.RoundsFired,
		LastCleaning: lastClean,
	}

	if f.CleanIntervalRounds > 0 && f.RoundsFired >= f.CleanIntervalRounds {
		status.Reasons = append(status.Reasons,
			fmt.Sprintf("%d rounds fired since cleaning (interval %d)", f.RoundsFired, f.CleanIntervalRounds))
	}

	if lastClean.Valid() {
		status.DaysSinceClean = lastClean.DaysSince(now)
		if f.OilIntervalDays > 0 && status.DaysSinceClean >= f.OilIntervalDays {
			status.Reasons = append(status.Reasons,
				fmt.Sprintf("%d days since last cleaning (interval %d)", status.DaysSinceClean, f.OilIntervalDays))
		}
	}

	if f.NeedsMaintenance {
		status.Reasons = append(status.Reasons, "flagged as needing maintenance")
	}

	status.Reasons = append(status.Reasons, f.Conditions()...)
	status.NeedsMaintenance = len(status.Reasons) > 0
	return status
}
