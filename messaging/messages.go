package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// WinnerDrawn is published after a giveaway draw picks a winner.
type WinnerDrawn struct {
	GiveawayID string    `json:"giveaway_id"`
	EventID    string    `json:"event_id"`
	Prize      string    `json:"prize"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	DrawnAt    time.Time `json:"drawn_at"`
}

type publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// WinnerPublisher encodes WinnerDrawn notifications onto a publisher.
type WinnerPublisher struct {
	pub publisher
}

func NewWinnerPublisher(pub publisher) *WinnerPublisher {
	return &WinnerPublisher{pub: pub}
}

func (p *WinnerPublisher) PublishWinner(ctx context.Context, msg WinnerDrawn) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.pub.Publish(ctx, body)
}

// DecodeWinner parses a WinnerDrawn message body.
func DecodeWinner(body []byte) (WinnerDrawn, error) {
	var msg WinnerDrawn
	err := json.Unmarshal(body, &msg)
	return msg, err
}
