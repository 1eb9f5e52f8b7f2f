package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:20" validate:"required,max=20"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=5000"`
	Department  *string `json:"department" gorm:"size:100"`

	// FacultyID is the owning faculty member.
	FacultyID string `json:"faculty_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Faculty     User         `json:"faculty" gorm:"foreignKey:FacultyID"`
	Resources   []Resource   `json:"resources,omitempty" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

// Resource is an uploaded course material reference; the object store
// itself is external, only the URL is kept.
type Resource struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	CourseID uint    `json:"course_id" gorm:"not null;index"`
	Title    string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Kind     *string `json:"kind" gorm:"size:30"`
	FileURL  string  `json:"file_url" gorm:"not null;size:500" validate:"required,url"`

	UploadedBy string         `json:"uploaded_by" gorm:"not null;index;size:255"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Course Course `json:"course" gorm:"foreignKey:CourseID"`
}

func (Resource) TableName() string {
	return "resources"
}

type Enrollment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollments_course_student,priority:1"`
	StudentID string `json:"student_id" gorm:"not null;size:255;index;uniqueIndex:idx_enrollments_course_student,priority:2"`

	CreatedAt time.Time `json:"created_at"`

	Course  Course `json:"course" gorm:"foreignKey:CourseID"`
	Student User   `json:"student" gorm:"foreignKey:StudentID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// AcademicEvent is a calendar entry. Events with no course are global;
// course-bound events are visible to enrolled students only, filtered
// at read time.
type AcademicEvent struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=5000"`
	CourseID    *uint   `json:"course_id" gorm:"index"`

	StartsAt time.Time  `json:"starts_at" validate:"required"`
	EndsAt   *time.Time `json:"ends_at"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (AcademicEvent) TableName() string {
	return "academic_events"
}
