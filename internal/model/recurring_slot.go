package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// RecurringSlot is a monitor's standing weekly office hour
type RecurringSlot struct {
	ID           int64        `json:"id"`
	ProfessorID  *int64       `json:"professor_id"` // professor the monitor assists, optional
	DisciplineID int64        `json:"discipline_id"`
	MonitorID    int64        `json:"monitor_id"`
	Weekday      time.Weekday `json:"weekday"` // 1 = Monday .. 6 = Saturday
	Start        TimeOfDay    `json:"start"`
	End          TimeOfDay    `json:"end"`
	Location     string       `json:"location"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

const LocationMaxLength = 255

// SlotPatch holds the updatable slot fields. Nil means "keep".
type SlotPatch struct {
	ProfessorID  *int64
	DisciplineID *int64
	MonitorID    *int64
	Weekday      *time.Weekday
	Start        *TimeOfDay
	End          *TimeOfDay
	Location     *string
}

// SlotFilter narrows a slot listing. Zero values mean "any".
type SlotFilter struct {
	DisciplineIDs []int64 // nil = any discipline; empty non-nil = none
	MonitorID     *int64
	Weekday       *time.Weekday
}

// IsWorkingDay reports whether d is one of the six working days.
func IsWorkingDay(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Saturday
}

// Apply copies the non-nil patch fields into s.
func (s *RecurringSlot) Apply(p SlotPatch) {
	if p.ProfessorID != nil {
		id := *p.ProfessorID
		s.ProfessorID = &id
	}
	if p.DisciplineID != nil {
		s.DisciplineID = *p.DisciplineID
	}
	if p.MonitorID != nil {
		s.MonitorID = *p.MonitorID
	}
	if p.Weekday != nil {
		s.Weekday = *p.Weekday
	}
	if p.Start != nil {
		s.Start = *p.Start
	}
	if p.End != nil {
		s.End = *p.End
	}
	if p.Location != nil {
		s.Location = *p.Location
	}
}

// Matches reports whether s passes every constraint of f.
func (f SlotFilter) Matches(s *RecurringSlot) bool {
	if f.DisciplineIDs != nil && !slices.Contains(f.DisciplineIDs, s.DisciplineID) {
		return false
	}
	if f.MonitorID != nil && s.MonitorID != *f.MonitorID {
		return false
	}
	if f.Weekday != nil && s.Weekday != *f.Weekday {
		return false
	}
	return true
}

// TimeOfDay is a wall-clock time without a date, serialized as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("time of day %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time of day %q: bad hour", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("time of day %q: bad minute", s)
	}
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("time of day %q: out of range", s)
	}
	return t, nil
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
