package models

import "gorm.io/gorm"

// Status is a seeded lookup table of trip states. Rows are inserted at
// startup rather than baked into the schema, so deployments can extend
// the set without a migration.
type Status struct {
	gorm.Model
	Name string `json:"status" gorm:"uniqueIndex;size:50;not null"`
}

// StatusCompleted is the seeded row the notebook date rules key off.
const StatusCompleted = "completed"

// DefaultStatuses are inserted once, on first boot against an empty table.
var DefaultStatuses = []string{"not started", "in progress", StatusCompleted}

func (s *Status) IsCompleted() bool { return s.Name == StatusCompleted }
