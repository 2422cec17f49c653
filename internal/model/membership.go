package model

import "slices"

// Membership is the set of disciplines a user monitors or teaches, as resolved
// from the discipline catalog. Predicates are pure functions over the sets.
type Membership struct {
	UserID      int64   `json:"user_id"`
	Admin       bool    `json:"admin"`
	MonitorOf   []int64 `json:"monitor_of"`
	ProfessorOf []int64 `json:"professor_of"`
}

func (m Membership) IsMonitorOf(disciplineID int64) bool {
	return slices.Contains(m.MonitorOf, disciplineID)
}

func (m Membership) IsProfessorOf(disciplineID int64) bool {
	return slices.Contains(m.ProfessorOf, disciplineID)
}

// MonitorsAny reports whether the user monitors at least one discipline.
func (m Membership) MonitorsAny() bool {
	return len(m.MonitorOf) > 0
}

// TeachesAny reports whether the user is a professor of at least one discipline.
func (m Membership) TeachesAny() bool {
	return len(m.ProfessorOf) > 0
}

// IsStaffOf reports whether the user monitors or teaches the discipline.
func (m Membership) IsStaffOf(disciplineID int64) bool {
	return m.IsMonitorOf(disciplineID) || m.IsProfessorOf(disciplineID)
}
