package models

// Seeded role ids, referenced by the route allow-lists.
const (
	RoleAdmin    uint = 1
	RoleProvider uint = 2
	RoleClient   uint = 3
)

type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

func (Role) TableName() string {
	return "role"
}
