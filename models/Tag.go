package models

import (
	"time"

	"gorm.io/gorm"
)

type Tag struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
}

// IsTagged associates a tag with an attraction. One live row per
// (attraction, tag) pair; the unique index is the authority under
// concurrent tagging. No soft delete: an untagged pair must be
// re-taggable immediately.
type IsTagged struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AttractionID uint      `json:"attraction" gorm:"not null;index;uniqueIndex:idx_attraction_tag"`
	TagID        uint      `json:"tag" gorm:"not null;index;uniqueIndex:idx_attraction_tag"`
	CreatedAt    time.Time `json:"createdAt"`

	AttractionRef Attraction `json:"attractionRef,omitempty" gorm:"foreignKey:AttractionID"`
	TagRef        Tag        `json:"tagRef,omitempty" gorm:"foreignKey:TagID"`
}
