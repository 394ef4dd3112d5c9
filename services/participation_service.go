package services

import (
	"context"
	"errors"

	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
)

// ParticipationService joins users to events and removes them again.
// Each operation is a short sequence of single-record updates with no
// rollback: a failure midway leaves the earlier steps applied.
type ParticipationService struct {
	events EventStore
	users  UserStore
	log    *zerolog.Logger
}

func NewParticipationService(events EventStore, users UserStore, log *zerolog.Logger) *ParticipationService {
	return &ParticipationService{events: events, users: users, log: log}
}

func (s *ParticipationService) JoinEvent(ctx context.Context, email, eventID string) error {
	if eventID == "" {
		return utils.NewValidationError("event_id is required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return storeError(err, "event")
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return storeError(err, "user")
	}

	s.log.Debug().Str("event_id", eventID).Str("email", email).Msg("incrementing participants")
	if err := s.events.IncrementParticipants(ctx, eventID); err != nil {
		return storeError(err, "event")
	}

	if err := s.users.AppendEvent(ctx, email, eventID); err != nil {
		s.log.Error().Err(err).Str("event_id", eventID).Str("email", email).Msg("participant counted but not added to user events")
		return storeError(err, "user")
	}
	return nil
}

func (s *ParticipationService) LeaveEvent(ctx context.Context, email, eventID string) error {
	if eventID == "" {
		return utils.NewValidationError("event_id is required")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return storeError(err, "event")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return storeError(err, "user")
	}
	if !user.Events.Contains(eventID) {
		return utils.New(utils.KindNotJoined, "user has not joined this event")
	}

	s.log.Debug().Str("event_id", eventID).Str("email", email).Msg("removing event from user")
	if err := s.users.SetEvents(ctx, email, user.Events.Without(eventID)); err != nil {
		return storeError(err, "user")
	}

	if err := s.events.DecrementParticipants(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return utils.NewValidationError("participant counter already at zero")
		}
		return storeError(err, "event")
	}
	return nil
}
