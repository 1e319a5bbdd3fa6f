package models

import "time"

// Photo is place-level imagery, independent of per-review images.
type Photo struct {
	PhotoID    uint      `json:"photo_id" gorm:"primaryKey;column:photo_id"`
	PlaceID    uint      `json:"place_id" gorm:"column:place_id;not null"`
	Place      *Place    `json:"-" gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	PhotoURL   string    `json:"photo_url" gorm:"column:photo_url;type:text;not null"`
	UploadedAt time.Time `json:"uploaded_at" gorm:"column:uploaded_at;autoCreateTime"`
}

func (Photo) TableName() string {
	return "photos"
}
