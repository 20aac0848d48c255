package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attraction is a point of interest. It has no owner and is globally readable.
type Attraction struct {
	gorm.Model
	Name               string         `json:"name" gorm:"size:100;not null"`
	GeneralDescription string         `json:"generalDescription" gorm:"size:3000"`
	Latitude           float64        `json:"latitude"`
	Longitude          float64        `json:"longitude"`
	Images             datatypes.JSON `json:"images"`

	Tags []IsTagged `json:"tags,omitempty" gorm:"foreignKey:AttractionID"`
}

func (a *Attraction) MarshalJSON() ([]byte, error) {
	type Alias Attraction
	aux := &struct {
		Images []string `json:"images,omitempty"`
		*Alias
	}{
		Images: []string{},
		Alias:  (*Alias)(a),
	}

	if a.Images != nil {
		var images []string
		if err := json.Unmarshal(a.Images, &images); err == nil {
			aux.Images = images
		}
	}

	return json.Marshal(aux)
}
