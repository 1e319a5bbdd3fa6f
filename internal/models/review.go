package models

import "time"

// Review links a user to a place with a rating in [1,5].
// Reviews are immutable after creation; they disappear only via cascade
// when the owning user or place is deleted.
type Review struct {
	ReviewID  uint      `json:"review_id" gorm:"primaryKey;column:review_id"`
	UserID    uint      `json:"user_id" gorm:"column:user_id;not null"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PlaceID   uint      `json:"place_id" gorm:"column:place_id;not null"`
	Place     *Place    `json:"-" gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE"`
	Rating    int       `json:"rating" gorm:"check:rating >= 1 AND rating <= 5;not null"`
	Title     string    `json:"title" gorm:"type:varchar(200)"`
	Comment   string    `json:"comment" gorm:"type:text"`
	ImagePath string    `json:"image_path" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewDetail is the denormalized read model returned by review queries:
// the review joined with the reviewer's username and the place fields.
type ReviewDetail struct {
	ReviewID  uint      `json:"review_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"user_name"`
	PlaceID   uint      `json:"place_id"`
	PlaceName string    `json:"place_name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	ImagePath string    `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
}
