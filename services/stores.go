package services

import (
	"context"
	"errors"
	"time"

	"clubnight-api/messaging"
	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
)

// EventScanner is the paged read side of the event store.
type EventScanner interface {
	ScanEvents(ctx context.Context, filter repositories.EventScanFilter, startKey string) (*repositories.EventPage, error)
}

type EventStore interface {
	EventScanner
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, eventID string) (*models.Event, error)
	IncrementParticipants(ctx context.Context, eventID string) error
	DecrementParticipants(ctx context.Context, eventID string) error
	CreateImage(ctx context.Context, image *models.EventImage) error
	ListImages(ctx context.Context, eventID string) ([]models.EventImage, error)
}

type GiveawayStore interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, giveawayID string) (*models.Giveaway, error)
	AppendEntry(ctx context.Context, giveawayID, participant string, weight int) (*models.Giveaway, error)
	ClaimAnnouncement(ctx context.Context, giveawayID string, at time.Time) (bool, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
	AppendEvent(ctx context.Context, email, eventID string) error
	SetEvents(ctx context.Context, email string, events models.StringSlice) error
	Delete(ctx context.Context, email string) error
	ListByPoints(ctx context.Context) ([]models.User, error)
	ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

type ClubStore interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, clubID string) (*models.Club, error)
	Update(ctx context.Context, clubID string, updates map[string]interface{}) error
	AppendEvent(ctx context.Context, clubID, eventID, giveawayID string) error
	FindInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Club, error)
}

// WinnerPublisher announces a drawn giveaway winner.
type WinnerPublisher interface {
	PublishWinner(ctx context.Context, msg messaging.WinnerDrawn) error
}

// CodeSender delivers verification codes and notices by e-mail.
type CodeSender interface {
	SendLoginCode(to, firstName, code string) error
	SendPasswordChangeCode(to, firstName, code string) error
}

// storeError converts a repository error into an AppError. what names the
// record for the message, e.g. "event".
func storeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return utils.NewNotFound(what + " not found")
	case errors.Is(err, repositories.ErrAlreadyExists):
		return utils.NewConflict(what + " already exists")
	default:
		return utils.NewDependencyError("failed to access "+what+" store", err)
	}
}
