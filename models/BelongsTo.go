package models

import "time"

// BelongsTo links a Member to a Group. One row per (member, group) pair;
// isAdmin grants elevated rights within that group only. No soft delete:
// a member who left must be able to rejoin.
type BelongsTo struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MemberID  uint      `json:"member" gorm:"not null;index;uniqueIndex:idx_member_group"`
	GroupID   uint      `json:"group" gorm:"not null;index;uniqueIndex:idx_member_group"`
	IsAdmin   bool      `json:"isAdmin"`
	Nickname  string    `json:"nickname" gorm:"size:50"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	MemberRef Member `json:"memberRef,omitempty" gorm:"foreignKey:MemberID"`
	GroupRef  Group  `json:"groupRef,omitempty" gorm:"foreignKey:GroupID"`
}
