package models

import "time"

// IsWithin places an attraction inside a route at a given position.
// One row per (route, attraction) pair; no soft delete so a removed
// attraction can be re-added.
type IsWithin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RouteID      uint      `json:"route" gorm:"not null;index;uniqueIndex:idx_route_attraction"`
	AttractionID uint      `json:"attraction" gorm:"not null;index;uniqueIndex:idx_route_attraction"`
	OrderNumber  int       `json:"orderNumber" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	RouteRef      Route      `json:"routeRef,omitempty" gorm:"foreignKey:RouteID"`
	AttractionRef Attraction `json:"attractionRef,omitempty" gorm:"foreignKey:AttractionID"`
}
