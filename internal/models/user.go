package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent   UserRole = "student"
	RoleFaculty   UserRole = "faculty"
	RoleAuthority UserRole = "authority"
	RoleAdmin     UserRole = "admin"
)

type AccountStatus string

const (
	AccountActive  AccountStatus = "active"
	AccountBlocked AccountStatus = "blocked"
)

// IsOverseer reports whether the role has cross-record visibility and
// status-mutation rights.
func (r UserRole) IsOverseer() bool {
	return r == RoleAuthority || r == RoleAdmin
}

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;default:student;size:20;index"`

	// Profile info
	Department *string `json:"department" gorm:"size:100"`
	AvatarURL  *string `json:"avatar_url" gorm:"size:500"`

	// Status; blocked users are rejected at the authorization boundary
	// before any role check.
	Status        AccountStatus `json:"status" gorm:"not null;default:active;size:20;index"`
	EmailVerified bool          `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsBlocked() bool {
	return u.Status == AccountBlocked
}

// AllowedDomain is an email-domain allow-list entry. Registration with
// an email under a privileged domain yields the admin role.
type AllowedDomain struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Domain     string `json:"domain" gorm:"uniqueIndex;not null;size:255" validate:"required,fqdn"`
	Privileged bool   `json:"privileged" gorm:"default:false"`

	CreatedBy string    `json:"created_by" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AllowedDomain) TableName() string {
	return "allowed_domains"
}
