package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Opportunity is a job posting created by faculty, authority or admin.
type Opportunity struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string  `json:"description" gorm:"type:text;not null" validate:"required,max=5000"`
	Company     *string `json:"company" gorm:"size:200"`

	// Skills is a JSON array of required skill names.
	Skills   datatypes.JSON `json:"skills"`
	Stipend  *string        `json:"stipend" gorm:"size:100"`
	Location *string        `json:"location" gorm:"size:200"`
	Deadline *time.Time     `json:"deadline"`

	PostedBy  string         `json:"posted_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Poster User `json:"poster" gorm:"foreignKey:PostedBy"`
}

func (Opportunity) TableName() string {
	return "opportunities"
}

// Internship is structurally close to Opportunity but carries a
// duration and is tracked as a distinct parent type for applications.
type Internship struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string  `json:"description" gorm:"type:text;not null" validate:"required,max=5000"`
	Company     *string `json:"company" gorm:"size:200"`

	Skills   datatypes.JSON `json:"skills"`
	Stipend  *string        `json:"stipend" gorm:"size:100"`
	Duration *string        `json:"duration" gorm:"size:100"`
	Location *string        `json:"location" gorm:"size:200"`
	Deadline *time.Time     `json:"deadline"`

	PostedBy  string         `json:"posted_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Poster User `json:"poster" gorm:"foreignKey:PostedBy"`
}

func (Internship) TableName() string {
	return "internships"
}
