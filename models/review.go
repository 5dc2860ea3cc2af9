package models

import "time"

type Review struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	CampingID uint      `gorm:"not null;index" json:"camping_id"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	Rating    int       `gorm:"not null" json:"rating"`
	Date      time.Time `gorm:"autoCreateTime" json:"date"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Camping *Camping `gorm:"foreignKey:CampingID" json:"-"`
}

func (Review) TableName() string {
	return "review"
}
