// File: /models/club.go
package models

import (
	"time"
)

// Club is an organizer account. ClubID is the login e-mail.
type Club struct {
	ClubID              string      `json:"club_id" gorm:"primaryKey;size:191"`
	Password            string      `json:"-" gorm:"not null;size:255"`
	ClubName            string      `json:"club_name" gorm:"not null;size:255"`
	DefaultWorkingHours string      `json:"default_working_hours" gorm:"size:255"`
	WorkingDays         string      `json:"working_days" gorm:"size:255"`
	Latitude            float64     `json:"latitude" gorm:"index"`
	Longitude           float64     `json:"longitude" gorm:"index"`
	Events              StringSlice `json:"events"`
	Giveaways           StringSlice `json:"giveaways"`
	RefreshToken        string      `json:"-" gorm:"type:text"`
	Version             int64       `json:"-" gorm:"not null;default:0"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func (Club) TableName() string {
	return "clubs"
}
