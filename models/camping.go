package models

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

type Camping struct {
	ID            uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderID    uint              `gorm:"not null" json:"provider_id"`
	Name          string            `gorm:"size:100;not null" json:"name"`
	CampingRut    string            `gorm:"size:12;not null" json:"camping_rut"`
	RazonSocial   string            `gorm:"size:100;not null" json:"razon_social"`
	Comuna        string            `gorm:"size:100;not null" json:"comuna"`
	Region        string            `gorm:"size:100;not null" json:"region"`
	Landscape     *string           `gorm:"size:100" json:"landscape"`
	Type          *string           `gorm:"size:100" json:"type"`
	Phone         string            `gorm:"size:15;not null" json:"phone"`
	Address       string            `gorm:"size:255;not null" json:"address"`
	URLWeb        *string           `gorm:"size:255" json:"url_web"`
	URLGoogleMaps *string           `gorm:"size:255" json:"url_google_maps"`
	Description   *string           `gorm:"type:text" json:"description"`
	Rules         datatypes.JSON    `json:"rules"`
	MainImage     *string           `gorm:"size:255" json:"main_image"`
	Images        datatypes.JSON    `json:"images"`
	Services      datatypes.JSONMap `json:"services"`

	Provider *User    `gorm:"foreignKey:ProviderID" json:"-"`
	Sites    []Site   `gorm:"foreignKey:CampingID" json:"-"`
	Reviews  []Review `gorm:"foreignKey:CampingID" json:"-"`
}

func (Camping) TableName() string {
	return "camping"
}

// ServicePrice resolves a named add-on against the camping's service
// price list. Names match case-insensitively; the canonical key from
// the price list is returned alongside the price. JSON numbers arrive
// as float64 or json.Number depending on the driver.
func (c *Camping) ServicePrice(name string) (string, float64, bool) {
	for k, v := range c.Services {
		if !strings.EqualFold(k, name) {
			continue
		}
		switch p := v.(type) {
		case float64:
			return k, p, true
		case int:
			return k, float64(p), true
		case int64:
			return k, float64(p), true
		case json.Number:
			f, err := p.Float64()
			if err != nil {
				return "", 0, false
			}
			return k, f, true
		}
		return "", 0, false
	}
	return "", 0, false
}
