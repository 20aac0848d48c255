package models

import (
	"time"

	"gorm.io/gorm"
)

// Route is a shareable itinerary of ordered attractions. It is owned by
// exactly one of a Member (UserID) or a Group (GroupID), never both.
type Route struct {
	gorm.Model
	Title            string    `json:"title" gorm:"size:50;not null"`
	Description      string    `json:"description" gorm:"size:3000"`
	Verified         bool      `json:"verified"` // admin-only mutable
	Public           bool      `json:"public"`
	StartingPointLat float64   `json:"startingPointLat"`
	StartingPointLon float64   `json:"startingPointLon"`
	PublicationDate  time.Time `json:"publicationDate" gorm:"autoCreateTime"`

	UserID  *uint `json:"user" gorm:"index"`
	GroupID *uint `json:"group" gorm:"index"`

	Owner       *Member    `json:"owner,omitempty" gorm:"foreignKey:UserID"`
	OwnerGroup  *Group     `json:"ownerGroup,omitempty" gorm:"foreignKey:GroupID"`
	Attractions []IsWithin `json:"attractions,omitempty" gorm:"foreignKey:RouteID"`
}

// OwnedByMember reports whether the route's owner is a member profile.
func (r *Route) OwnedByMember() bool { return r.UserID != nil }

// OwnedByGroup reports whether the route's owner is a group.
func (r *Route) OwnedByGroup() bool { return r.GroupID != nil }
