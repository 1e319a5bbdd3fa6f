package models

import "time"

// Place is created lazily on the first review at a coordinate pair.
// Coordinates are stored with 6 fractional digits; deduplication is by
// exact equality on (latitude, longitude), handled by the PlaceResolver.
type Place struct {
	PlaceID     uint      `json:"place_id" gorm:"primaryKey;column:place_id"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Latitude    float64   `json:"latitude" gorm:"type:decimal(9,6);not null"`
	Longitude   float64   `json:"longitude" gorm:"type:decimal(9,6);not null"`
	CategoryID  *uint     `json:"category_id" gorm:"column:category_id"`
	Category    *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Address     string    `json:"address" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Place) TableName() string {
	return "places"
}
