package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username       string `json:"username" gorm:"uniqueIndex;size:150;not null"`
	FirstName      string `json:"firstName" gorm:"size:150"`
	LastName       string `json:"lastName" gorm:"size:150"`
	Email          string `json:"email" gorm:"uniqueIndex;size:254"`
	Password       string `json:"-"`
	SocialLogin    bool   `json:"socialLogin"`
	SocialProvider string `json:"socialProvider"`
	Role           string `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin

	Member *Member `json:"member,omitempty" gorm:"foreignKey:UserID"`
}
