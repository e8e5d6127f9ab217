package entities

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used for display and CSV.
const DateLayout = "2006-01-02"

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// EpochTime is a wall-clock time persisted as integer seconds since the epoch.
// The zero value is stored as NULL.
type EpochTime struct {
	time.Time
}

// NewEpochTime truncates t to whole seconds in UTC.
func NewEpochTime(t time.Time) EpochTime {
	if t.IsZero() {
		return EpochTime{}
	}
	return EpochTime{Time: time.Unix(t.Unix(), 0).UTC()}
}

// Now returns the current time as an EpochTime.
func Now() EpochTime {
	return NewEpochTime(time.Now())
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) EpochTime {
	return EpochTime{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (EpochTime, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return EpochTime{}, err
	}
	return EpochTime{Time: t}, nil
}

// Valid reports whether the time is set.
func (t EpochTime) Valid() bool {
	return !t.IsZero()
}

// DateString formats the UTC calendar date, or "" when unset.
func (t EpochTime) DateString() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// Value implements driver.Valuer.
func (t EpochTime) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.Unix(), nil
}

// Scan implements sql.Scanner.
func (t *EpochTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
	case int64:
		t.Time = time.Unix(v, 0).UTC()
	case float64:
		t.Time = time.Unix(int64(v), 0).UTC()
	case time.Time:
		*t = NewEpochTime(v)
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into EpochTime", src)
	}
	return nil
}

func (t *EpochTime) scanString(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(n, 0).UTC()
		return nil
	}
	if d, err := ParseDate(s); err == nil {
		*t = d
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into EpochTime", s)
	}
	*t = NewEpochTime(parsed)
	return nil
}

// GormDataType tells GORM the column storage type.
func (EpochTime) GormDataType() string {
	return "integer"
}

// DaysSince returns whole days elapsed between t and now.
func (t EpochTime) DaysSince(now time.Time) int {
	if t.IsZero() {
		return 0
	}
	return int(now.Sub(t.Time).Hours() / 24)
}
