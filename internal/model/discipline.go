package model

import "slices"

// Discipline is read-only catalog data
type Discipline struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Monitors   []int64 `json:"monitors"`
	Professors []int64 `json:"professors"`
}

func (d *Discipline) HasMonitor(userID int64) bool {
	return slices.Contains(d.Monitors, userID)
}

func (d *Discipline) HasProfessor(userID int64) bool {
	return slices.Contains(d.Professors, userID)
}
