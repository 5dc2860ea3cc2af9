package models

import "time"

type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName        string    `gorm:"size:100;not null" json:"first_name"`
	LastName         string    `gorm:"size:100;not null" json:"last_name"`
	Rut              string    `gorm:"size:12;unique;not null" json:"rut"`
	Email            string    `gorm:"size:100;unique;not null" json:"email"`
	Password         string    `gorm:"size:255;not null" json:"-"`
	Phone            *string   `gorm:"size:15" json:"phone"`
	RoleID           uint      `gorm:"not null" json:"role_id"`
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`

	Role         *Role         `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Campings     []Camping     `gorm:"foreignKey:ProviderID" json:"-"`
	Reservations []Reservation `gorm:"foreignKey:UserID" json:"-"`
	Reviews      []Review      `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "user"
}
