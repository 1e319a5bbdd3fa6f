package models

import "time"

// User represents a registered account.
// PasswordHash is never serialized in responses.
type User struct {
	UserID       uint      `json:"user_id" gorm:"primaryKey;column:user_id"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null" validate:"required,min=3,max=50"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:text;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

// TableName overrides GORM's default pluralization to match the schema.
func (User) TableName() string {
	return "users"
}
