package models

import "time"

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedOn    time.Time `gorm:"autoCreateTime" json:"created_on"`
	UpdatedOn    time.Time `gorm:"autoUpdateTime" json:"updated_on"`
}
