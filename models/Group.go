package models

import "gorm.io/gorm"

type Group struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:30;not null"`
	Description string `json:"description" gorm:"size:1500"`

	Members []BelongsTo `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}
