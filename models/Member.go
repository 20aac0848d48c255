package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Member is the application profile wrapping a User. One is created
// alongside every User at registration.
type Member struct {
	gorm.Model
	UserID       uint           `json:"userID" gorm:"uniqueIndex;not null"`
	User         User           `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ProfilePhoto string         `json:"profilePhoto" gorm:"size:512;default:default-profile-photo.jpeg"`
	BirthDate    *time.Time     `json:"birthDate"`
	SavedRoutes  datatypes.JSON `json:"savedRoutes"`

	Memberships []BelongsTo  `json:"memberships,omitempty" gorm:"foreignKey:MemberID"`
	Routes      []Route      `json:"routes,omitempty" gorm:"foreignKey:UserID"`
	Notebooks   []Notebook   `json:"notebooks,omitempty" gorm:"foreignKey:MemberID"`
	Ratings     []RatingFlag `json:"ratings,omitempty" gorm:"foreignKey:MemberID"`
}

func (m *Member) MarshalJSON() ([]byte, error) {
	type Alias Member
	aux := &struct {
		SavedRoutes []int `json:"savedRoutes,omitempty"`
		*Alias
	}{
		SavedRoutes: []int{},
		Alias:       (*Alias)(m),
	}

	if m.SavedRoutes != nil {
		var saved []int
		if err := json.Unmarshal(m.SavedRoutes, &saved); err == nil {
			aux.SavedRoutes = saved
		}
	}

	return json.Marshal(aux)
}
