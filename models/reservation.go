package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type Reservation struct {
	ID               uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint           `gorm:"not null" json:"user_id"`
	SiteID           uint           `gorm:"not null;index" json:"site_id"`
	StartDate        time.Time      `gorm:"not null" json:"start_date"`
	EndDate          time.Time      `gorm:"not null" json:"end_date"`
	NumberOfPeople   int            `gorm:"not null" json:"number_of_people"`
	ReservationDate  time.Time      `gorm:"autoCreateTime" json:"reservation_date"`
	SelectedServices datatypes.JSON `json:"selected_services"`
	TotalAmount      float64        `gorm:"not null" json:"total_amount"`
	ConfirmationCode string         `gorm:"size:36;unique" json:"confirmation_code"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Site *Site `gorm:"foreignKey:SiteID" json:"-"`
}

func (Reservation) TableName() string {
	return "reservation"
}

func (r *Reservation) ServiceNames() []string {
	if len(r.SelectedServices) == 0 {
		return nil
	}
	var names []string
	if err := json.Unmarshal(r.SelectedServices, &names); err != nil {
		return nil
	}
	return names
}
