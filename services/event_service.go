package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"clubnight-api/models"
	"clubnight-api/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type GiveawayInput struct {
	Prize       string `json:"prize"`
	Description string `json:"description"`
	Name        string `json:"name"`
}

type RegisterEventInput struct {
	ClubID      string         `json:"club_id"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	StartingAt  string         `json:"startingAt"`
	EndingAt    string         `json:"endingAt"`
	Performers  []string       `json:"performers"`
	Giveaway    *GiveawayInput `json:"giveaway"`
	Genre       *string        `json:"genre"`
	Type        *string        `json:"type"`
	Theme       *string        `json:"theme"`
	Latitude    *json.Number   `json:"latitude"`
	Longitude   *json.Number   `json:"longitude"`
}

// EventInfo is an event with its community image links
type EventInfo struct {
	Event  *models.Event       `json:"event_info"`
	Images []models.EventImage `json:"event_images"`
}

type EventService struct {
	events    EventStore
	giveaways GiveawayStore
	clubs     ClubStore
	users     UserStore
	images    *ImageService
	log       *zerolog.Logger
}

func NewEventService(events EventStore, giveaways GiveawayStore, clubs ClubStore, users UserStore, images *ImageService, log *zerolog.Logger) *EventService {
	return &EventService{
		events:    events,
		giveaways: giveaways,
		clubs:     clubs,
		users:     users,
		images:    images,
		log:       log,
	}
}

func validateRegisterEvent(in RegisterEventInput) error {
	var missing []string
	for name, value := range map[string]string{
		"club_id":     in.ClubID,
		"title":       in.Title,
		"category":    in.Category,
		"description": in.Description,
		"startingAt":  in.StartingAt,
		"endingAt":    in.EndingAt,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if in.Performers == nil {
		missing = append(missing, "performers")
	}
	if in.Giveaway == nil || in.Giveaway.Prize == "" || in.Giveaway.Name == "" || in.Giveaway.Description == "" {
		missing = append(missing, "giveaway")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return utils.NewValidationError(strings.Join(missing, ", ") + " missing, please check and try again")
	}

	if valueOf(in.Genre) == "" && valueOf(in.Type) == "" && valueOf(in.Theme) == "" {
		return utils.NewValidationError("at least one of genre, type or theme is required")
	}

	starting, err := time.Parse(models.StartingAtLayout, in.StartingAt)
	if err != nil {
		return utils.NewValidationError("startingAt must be formatted as YYYY-MM-DDTHH:MM:SS")
	}
	ending, err := time.Parse(models.StartingAtLayout, in.EndingAt)
	if err != nil {
		return utils.NewValidationError("endingAt must be formatted as YYYY-MM-DDTHH:MM:SS")
	}
	if ending.Before(starting) {
		return utils.NewValidationError("endingAt must not be before startingAt")
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return utils.NewValidationError("latitude and longitude must be supplied together")
	}
	if in.Latitude != nil {
		lat, latErr := in.Latitude.Float64()
		lng, lngErr := in.Longitude.Float64()
		if latErr != nil || lngErr != nil || !utils.IsValidLatitude(lat) || !utils.IsValidLongitude(lng) {
			return utils.NewValidationError("latitude and longitude must be valid numbers")
		}
	}
	return nil
}

func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Register stores an event, its giveaway and the club back references, in
// that order. Nothing is rolled back when a later step fails.
func (s *EventService) Register(ctx context.Context, in RegisterEventInput) (*models.Event, *models.Giveaway, error) {
	if err := validateRegisterEvent(in); err != nil {
		return nil, nil, err
	}
	if _, err := s.clubs.GetByID(ctx, in.ClubID); err != nil {
		return nil, nil, storeError(err, "club")
	}

	eventID := uuid.New().String()
	giveawayID := uuid.New().String()

	event := &models.Event{
		EventID:     eventID,
		ClubID:      in.ClubID,
		Title:       in.Title,
		Category:    in.Category,
		Description: in.Description,
		StartingAt:  in.StartingAt,
		EndingAt:    in.EndingAt,
		Genre:       optional(in.Genre),
		Type:        optional(in.Type),
		Theme:       optional(in.Theme),
		Performers:  models.StringSlice(in.Performers),
		GiveawayID:  &giveawayID,
	}
	if in.Latitude != nil {
		lat, lng := in.Latitude.String(), in.Longitude.String()
		event.Latitude = &lat
		event.Longitude = &lng
	}

	s.log.Info().Str("event_id", eventID).Str("club_id", in.ClubID).Msg("registering event")
	if err := s.events.Create(ctx, event); err != nil {
		return nil, nil, storeError(err, "event")
	}

	giveaway := &models.Giveaway{
		GiveawayID:   giveawayID,
		EventID:      eventID,
		ClubID:       in.ClubID,
		Prize:        in.Giveaway.Prize,
		Name:         in.Giveaway.Name,
		Description:  in.Giveaway.Description,
		Participants: models.StringSlice{},
		Weights:      models.IntSlice{},
	}
	if err := s.giveaways.Create(ctx, giveaway); err != nil {
		s.log.Error().Err(err).Str("event_id", eventID).Msg("event stored without giveaway")
		return nil, nil, utils.NewDependencyError("event was registered but its giveaway could not be stored", err)
	}

	if err := s.clubs.AppendEvent(ctx, in.ClubID, eventID, giveawayID); err != nil {
		s.log.Error().Err(err).Str("event_id", eventID).Str("club_id", in.ClubID).Msg("event not linked to club")
		return nil, nil, utils.NewDependencyError("event was registered but could not be linked to the club", err)
	}

	return event, giveaway, nil
}

func (s *EventService) Info(ctx context.Context, eventID string) (*EventInfo, error) {
	if eventID == "" {
		return nil, utils.NewValidationError("event_id is required")
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "event")
	}
	images, err := s.events.ListImages(ctx, eventID)
	if err != nil {
		return nil, storeError(err, "event image")
	}
	if images == nil {
		images = []models.EventImage{}
	}
	return &EventInfo{Event: event, Images: images}, nil
}

// AddImageLink attaches a community photo link, signed with the poster's names.
func (s *EventService) AddImageLink(ctx context.Context, email, eventID, link string) (*models.EventImage, error) {
	if eventID == "" || link == "" {
		return nil, utils.NewValidationError("event_id and image_link are required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, storeError(err, "event")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "user")
	}

	image := &models.EventImage{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ImageLink: link,
	}
	if err := s.events.CreateImage(ctx, image); err != nil {
		return nil, storeError(err, "event image")
	}
	return image, nil
}

// UploadCover replaces the cover image of an event owned by clubID.
func (s *EventService) UploadCover(ctx context.Context, clubID, eventID string, data []byte) error {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return storeError(err, "event")
	}
	if event.ClubID != clubID {
		return utils.NewAuthError("event does not belong to this club")
	}
	if err := s.images.UploadCover(ctx, eventID, data); err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return utils.NewValidationError("image could not be processed")
		}
		return utils.NewDependencyError("failed to store cover image", err)
	}
	return nil
}
