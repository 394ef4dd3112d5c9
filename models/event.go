// File: /models/event.go
package models

import (
	"time"
)

// StartingAtLayout is the fixed-width layout of Event.StartingAt and Event.EndingAt.
// Values in this layout order lexically the same way they order in time.
const StartingAtLayout = "2006-01-02T15:04:05"

type Event struct {
	EventID      string      `json:"event_id" gorm:"primaryKey;size:191"`
	ClubID       string      `json:"club_id" gorm:"not null;size:191;index"`
	Title        string      `json:"title" gorm:"not null;size:255"`
	Category     string      `json:"category" gorm:"size:255"`
	Description  string      `json:"description" gorm:"type:text"`
	StartingAt   string      `json:"startingAt" gorm:"column:starting_at;not null;size:19;index"`
	EndingAt     string      `json:"endingAt" gorm:"column:ending_at;size:19"`
	Theme        *string     `json:"theme,omitempty" gorm:"size:100"`
	Genre        *string     `json:"genre,omitempty" gorm:"size:100"`
	Type         *string     `json:"type,omitempty" gorm:"size:100"`
	Latitude     *string     `json:"latitude,omitempty" gorm:"size:32"`  // decimal degrees as text
	Longitude    *string     `json:"longitude,omitempty" gorm:"size:32"` // decimal degrees as text
	Participants int         `json:"participants" gorm:"not null;default:0"`
	Performers   StringSlice `json:"performers"`
	GiveawayID   *string     `json:"giveaway_id,omitempty" gorm:"size:191"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// EventImage is a community photo link attached to an event by a user.
type EventImage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	EventID   string    `json:"event_id" gorm:"not null;size:191;index"`
	UserID    string    `json:"user_id" gorm:"not null;size:191"`
	FirstName string    `json:"first_name" gorm:"size:255"`
	LastName  string    `json:"last_name" gorm:"size:255"`
	ImageLink string    `json:"image_link" gorm:"not null;size:1000"`
	CreatedAt time.Time `json:"created_at"`
}

func (EventImage) TableName() string {
	return "event_images"
}

// EventResult is an event as returned by listings, with an optional cover image.
type EventResult struct {
	Event
	Image *string `json:"image"` // base64 JPEG, null when unavailable
}
