package models

import (
	"time"

	"gorm.io/gorm"
)

// RatingFlag is a member's review of a route or an attraction: a star
// rating, a flag referencing a FlagType, or both. The target is exactly
// one of RouteID or AttractionID, and a member gets one row per target.
type RatingFlag struct {
	ID           uint  `json:"id" gorm:"primaryKey"`
	MemberID     uint  `json:"member" gorm:"not null;index;uniqueIndex:idx_member_route_attraction"`
	RouteID      *uint `json:"route" gorm:"index;uniqueIndex:idx_member_route_attraction"`
	AttractionID *uint `json:"attraction" gorm:"index;uniqueIndex:idx_member_route_attraction"`

	Rating     *int   `json:"rating" gorm:"check:rating >= 1 AND rating <= 5"`
	FlagTypeID *uint  `json:"flagType" gorm:"index"`
	Comment    string `json:"comment" gorm:"size:1000"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	MemberRef     Member      `json:"memberRef,omitempty" gorm:"foreignKey:MemberID"`
	RouteRef      *Route      `json:"routeRef,omitempty" gorm:"foreignKey:RouteID"`
	AttractionRef *Attraction `json:"attractionRef,omitempty" gorm:"foreignKey:AttractionID"`
	FlagTypeRef   *FlagType   `json:"flagTypeRef,omitempty" gorm:"foreignKey:FlagTypeID"`
}

// TargetsRoute reports whether the rating is attached to a route.
func (r *RatingFlag) TargetsRoute() bool { return r.RouteID != nil }

// FlagType is a seeded lookup table of reasons a rating can flag content.
type FlagType struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
}

// DefaultFlagTypes are inserted once, on first boot against an empty table.
var DefaultFlagTypes = []string{"inappropriate", "spam", "inaccurate"}
