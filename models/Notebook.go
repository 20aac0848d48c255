package models

import (
	"time"

	"gorm.io/gorm"
)

// Notebook is a member's journal for one route: impressions, notes, a
// photo, and the trip's lifecycle dates driven by its status.
type Notebook struct {
	gorm.Model
	RouteID  uint  `json:"route" gorm:"not null;index"`
	MemberID uint  `json:"member" gorm:"not null;index"`
	StatusID *uint `json:"status" gorm:"index"`

	Title         string     `json:"title" gorm:"size:100"`
	Note          string     `json:"note" gorm:"type:text"`
	Photo         string     `json:"photo" gorm:"size:512"`
	DateStarted   *time.Time `json:"dateStarted"`
	DateCompleted *time.Time `json:"dateCompleted"`

	RouteRef  Route   `json:"routeRef,omitempty" gorm:"foreignKey:RouteID"`
	MemberRef Member  `json:"memberRef,omitempty" gorm:"foreignKey:MemberID"`
	StatusRef *Status `json:"statusRef,omitempty" gorm:"foreignKey:StatusID"`
}

// ApplyStatusTransition updates the notebook's status reference and its
// lifecycle dates. Moving into "completed" stamps DateCompleted with
// today; moving out of it clears DateCompleted and resets DateStarted to
// today. Any other transition leaves the dates alone.
func (n *Notebook) ApplyStatusTransition(from, to *Status, today time.Time) {
	wasCompleted := from != nil && from.IsCompleted()
	isCompleted := to != nil && to.IsCompleted()

	if to == nil {
		n.StatusID = nil
	} else {
		n.StatusID = &to.ID
	}

	switch {
	case isCompleted && !wasCompleted:
		n.DateCompleted = &today
	case wasCompleted && !isCompleted:
		n.DateCompleted = nil
		n.DateStarted = &today
	}
}
