package models

import "gorm.io/datatypes"

const (
	SiteAvailable   = "available"
	SiteUnavailable = "unavailable"
)

type Site struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	CampingID    uint           `gorm:"not null" json:"camping_id"`
	Status       string         `gorm:"size:20;not null;default:'available'" json:"status"`
	MaxOfPeople  int            `gorm:"not null" json:"max_of_people"`
	Price        float64        `gorm:"not null" json:"price"`
	Facilities   datatypes.JSON `json:"facilities"`
	Dimensions   datatypes.JSON `json:"dimensions"`
	Review       *string        `gorm:"type:text" json:"review"`
	URLMapSite   *string        `gorm:"size:255" json:"url_map_site"`
	URLPhotoSite *string        `gorm:"size:255" json:"url_photo_site"`

	Camping      *Camping      `gorm:"foreignKey:CampingID" json:"-"`
	Reservations []Reservation `gorm:"foreignKey:SiteID" json:"-"`
}

func (Site) TableName() string {
	return "site"
}
