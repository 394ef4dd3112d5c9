// File: /models/user.go
package models

import (
	"time"
)

type User struct {
	Email                  string      `json:"email" gorm:"primaryKey;size:191"`
	Password               string      `json:"-" gorm:"not null;size:255"`
	FirstName              string      `json:"first_name" gorm:"size:255"`
	LastName               string      `json:"last_name" gorm:"size:255"`
	Age                    int         `json:"age"`
	PhoneNumber            string      `json:"phone_number,omitempty" gorm:"size:50"`
	Points                 float64     `json:"points" gorm:"default:0"`
	Events                 StringSlice `json:"events"`
	Provider               string      `json:"provider,omitempty" gorm:"size:50"` // google, facebook, github or empty
	RefreshToken           string      `json:"-" gorm:"type:text"`
	SixDigitCode           string      `json:"-" gorm:"size:6"`
	SixDigitCodeExpiration *time.Time  `json:"-"`
	PasswordChangeApproved bool        `json:"-" gorm:"not null;default:false"`
	Version                int64       `json:"-" gorm:"not null;default:0"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// PublicInfo is what other users may see about a user
type PublicInfo struct {
	Email          string  `json:"email"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	ProfilePicture *string `json:"profile_picture"`
}

// LeaderboardEntry is one row of the points ranking
type LeaderboardEntry struct {
	Email     string  `json:"email"`
	Points    float64 `json:"points"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}
