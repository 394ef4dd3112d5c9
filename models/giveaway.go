// File: /models/giveaway.go
package models

import (
	"time"
)

// Giveaway holds a weighted prize draw. Participants and Weights are parallel
// lists: Weights[i] is the number of entries Participants[i] bought with that
// join. A participant may appear more than once.
type Giveaway struct {
	GiveawayID   string      `json:"giveaway_id" gorm:"primaryKey;size:191"`
	EventID      string      `json:"event_id" gorm:"not null;size:191;index"`
	ClubID       string      `json:"club_id" gorm:"not null;size:191;index"`
	Prize        string      `json:"prize" gorm:"not null;size:255"`
	Name         string      `json:"name" gorm:"not null;size:255"`
	Description  string      `json:"description" gorm:"type:text"`
	Participants StringSlice `json:"users"`
	Weights      IntSlice    `json:"entries"`
	Version      int64       `json:"-" gorm:"not null;default:0"`
	// AnnouncedAt is set by the first draw that sends a winner notice
	AnnouncedAt  *time.Time  `json:"announced_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Giveaway) TableName() string {
	return "giveaways"
}

// Winner is the result of a giveaway draw.
type Winner struct {
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}
