package models

import (
	"time"

	"gorm.io/gorm"
)

type LostFoundStatus string

const (
	ItemLost    LostFoundStatus = "Lost"
	ItemFound   LostFoundStatus = "Found"
	ItemClaimed LostFoundStatus = "Claimed"
)

type LostFoundItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string          `json:"description" gorm:"type:text;not null" validate:"required,max=5000"`
	Location    *string         `json:"location" gorm:"size:200"`
	ImageURL    *string         `json:"image_url" gorm:"size:500" validate:"omitempty,url"`
	Status      LostFoundStatus `json:"status" gorm:"default:Lost;size:10;index" validate:"omitempty,oneof=Lost Found Claimed"`

	PostedBy  string  `json:"posted_by" gorm:"not null;index;size:255"`
	ClaimedBy *string `json:"claimed_by" gorm:"size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Poster  User  `json:"poster" gorm:"foreignKey:PostedBy"`
	Claimer *User `json:"claimer,omitempty" gorm:"foreignKey:ClaimedBy"`
}

func (LostFoundItem) TableName() string {
	return "lost_found_items"
}
