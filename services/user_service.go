package services

import (
	"context"
	"errors"

	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/storage"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
)

type UpdatePublicInput struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	ProfilePicture *string `json:"profile_picture"`
}

type UpdatePrivateInput struct {
	Age         *int    `json:"age"`
	PhoneNumber *string `json:"phone_number"`
}

type UserService struct {
	users  UserStore
	events EventStore
	images *ImageService
	log    *zerolog.Logger
}

func NewUserService(users UserStore, events EventStore, images *ImageService, log *zerolog.Logger) *UserService {
	return &UserService{users: users, events: events, images: images, log: log}
}

func (s *UserService) PublicInfo(ctx context.Context, email string) (*models.PublicInfo, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return &models.PublicInfo{
		Email:          user.Email,
		FirstName:      &user.FirstName,
		LastName:       &user.LastName,
		ProfilePicture: s.images.ProfilePicture(ctx, user.Email),
	}, nil
}

func (s *UserService) UpdatePublicInfo(ctx context.Context, email string, in UpdatePublicInput) error {
	updates := map[string]interface{}{}
	if in.FirstName != nil {
		if *in.FirstName == "" {
			return utils.NewValidationError("first_name must not be empty")
		}
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		if *in.LastName == "" {
			return utils.NewValidationError("last_name must not be empty")
		}
		updates["last_name"] = *in.LastName
	}
	if len(updates) == 0 && in.ProfilePicture == nil {
		return utils.NewValidationError("nothing to update")
	}

	if len(updates) > 0 {
		if err := s.users.Update(ctx, email, updates); err != nil {
			return storeError(err, "user")
		}
	}
	if in.ProfilePicture != nil {
		if err := s.images.PutProfilePicture(ctx, email, *in.ProfilePicture); err != nil {
			return utils.NewValidationError("profile picture could not be stored")
		}
	}
	return nil
}

func (s *UserService) UpdatePrivateInfo(ctx context.Context, email string, in UpdatePrivateInput) error {
	updates := map[string]interface{}{}
	if in.Age != nil {
		if *in.Age < 0 {
			return utils.NewValidationError("age must not be negative")
		}
		updates["age"] = *in.Age
	}
	if in.PhoneNumber != nil {
		updates["phone_number"] = *in.PhoneNumber
	}
	if len(updates) == 0 {
		return utils.NewValidationError("nothing to update")
	}
	return storeError(s.users.Update(ctx, email, updates), "user")
}

// DeleteProfile removes the profile picture and then the user record.
func (s *UserService) DeleteProfile(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return storeError(err, "user")
	}
	if err := s.images.DeleteProfilePicture(ctx, email); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return utils.NewDependencyError("failed to delete profile picture", err)
	}
	return storeError(s.users.Delete(ctx, email), "user")
}

func (s *UserService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	users, err := s.users.ListByPoints(ctx)
	if err != nil {
		return nil, storeError(err, "user")
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.LeaderboardEntry{
			Email:     u.Email,
			Points:    u.Points,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return entries, nil
}

// JoinedEvents lists the events a user joined. Events that no longer exist are skipped.
func (s *UserService) JoinedEvents(ctx context.Context, email string) ([]models.EventResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeError(err, "user")
	}

	events := make([]models.Event, 0, len(user.Events))
	for _, eventID := range user.Events {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.log.Warn().Str("event_id", eventID).Str("email", email).Msg("joined event no longer exists")
				continue
			}
			return nil, storeError(err, "event")
		}
		events = append(events, *event)
	}
	return s.images.WithCovers(ctx, events), nil
}
