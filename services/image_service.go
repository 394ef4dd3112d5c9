package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"clubnight-api/models"
	"clubnight-api/storage"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

const maxImageWidth = 1280

var ErrInvalidImage = errors.New("invalid image")

type ImageService struct {
	store         storage.ObjectStore
	eventBucket   string
	profileBucket string
	profilePrefix string
	log           *zerolog.Logger
}

func NewImageService(store storage.ObjectStore, eventBucket, profileBucket, profilePrefix string, log *zerolog.Logger) *ImageService {
	return &ImageService{
		store:         store,
		eventBucket:   eventBucket,
		profileBucket: profileBucket,
		profilePrefix: profilePrefix,
		log:           log,
	}
}

func coverKey(eventID string) string {
	return eventID + ".jpg"
}

func (s *ImageService) profileKey(email string) string {
	return s.profilePrefix + email + ".jpg"
}

// CoverImage returns the base64 cover of an event, or nil when it cannot be read.
// A failed read is logged and never returned to the caller.
func (s *ImageService) CoverImage(ctx context.Context, eventID string) *string {
	data, err := s.store.GetObject(ctx, s.eventBucket, coverKey(eventID))
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("cover image unavailable")
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return &encoded
}

// WithCovers pairs every event with its cover image
func (s *ImageService) WithCovers(ctx context.Context, events []models.Event) []models.EventResult {
	results := make([]models.EventResult, 0, len(events))
	for _, event := range events {
		results = append(results, models.EventResult{
			Event: event,
			Image: s.CoverImage(ctx, event.EventID),
		})
	}
	return results
}

// UploadCover normalises an uploaded picture to JPEG and stores it as the event cover.
func (s *ImageService) UploadCover(ctx context.Context, eventID string, data []byte) error {
	normalized, err := NormalizeImage(data)
	if err != nil {
		return err
	}
	s.log.Debug().Str("event_id", eventID).Int("bytes", len(normalized)).Msg("storing cover image")
	return s.store.PutObject(ctx, s.eventBucket, coverKey(eventID), normalized, "image/jpeg")
}

// ProfilePicture returns the base64 profile picture of a user, or nil.
func (s *ImageService) ProfilePicture(ctx context.Context, email string) *string {
	data, err := s.store.GetObject(ctx, s.profileBucket, s.profileKey(email))
	if err != nil {
		s.log.Debug().Err(err).Str("email", email).Msg("profile picture unavailable")
		return nil
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return &encoded
}

// PutProfilePicture stores a base64 encoded picture for a user.
func (s *ImageService) PutProfilePicture(ctx context.Context, email, encoded string) error {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: bad base64: %v", ErrInvalidImage, err)
	}
	return s.PutProfilePictureBytes(ctx, email, raw)
}

// PutProfilePictureBytes stores a raw picture for a user.
func (s *ImageService) PutProfilePictureBytes(ctx context.Context, email string, raw []byte) error {
	normalized, err := NormalizeImage(raw)
	if err != nil {
		return err
	}
	return s.store.PutObject(ctx, s.profileBucket, s.profileKey(email), normalized, "image/jpeg")
}

func (s *ImageService) DeleteProfilePicture(ctx context.Context, email string) error {
	return s.store.DeleteObject(ctx, s.profileBucket, s.profileKey(email))
}

// NormalizeImage decodes any supported picture, limits its width and re-encodes it as JPEG.
func NormalizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
