package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type RegisterClubInput struct {
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	ClubName            string   `json:"club_name"`
	DefaultWorkingHours string   `json:"default_working_hours"`
	WorkingDays         string   `json:"working_days"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
}

type UpdateClubInput struct {
	ClubName            *string `json:"club_name"`
	DefaultWorkingHours *string `json:"default_working_hours"`
	WorkingDays         *string `json:"working_days"`
}

type ClubService struct {
	clubs     ClubStore
	events    EventStore
	giveaways GiveawayStore
	tokens    *TokenService
	images    *ImageService
	log       *zerolog.Logger
}

func NewClubService(clubs ClubStore, events EventStore, giveaways GiveawayStore, tokens *TokenService, images *ImageService, log *zerolog.Logger) *ClubService {
	return &ClubService{
		clubs:     clubs,
		events:    events,
		giveaways: giveaways,
		tokens:    tokens,
		images:    images,
		log:       log,
	}
}

func (s *ClubService) Register(ctx context.Context, in RegisterClubInput) error {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	switch {
	case in.Email == "" || in.Password == "" || in.ClubName == "" ||
		in.DefaultWorkingHours == "" || in.WorkingDays == "" ||
		in.Latitude == nil || in.Longitude == nil:
		return utils.NewValidationError("email, password, club_name, default_working_hours, working_days, latitude and longitude are required")
	case !utils.IsValidEmail(in.Email):
		return utils.NewValidationError("email is not valid")
	case !utils.IsValidLatitude(*in.Latitude) || !utils.IsValidLongitude(*in.Longitude):
		return utils.NewValidationError("invalid coordinates")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return err
	}

	club := &models.Club{
		ClubID:              in.Email,
		Password:            hashed,
		ClubName:            in.ClubName,
		DefaultWorkingHours: in.DefaultWorkingHours,
		WorkingDays:         in.WorkingDays,
		Latitude:            *in.Latitude,
		Longitude:           *in.Longitude,
	}

	s.log.Info().Str("club_id", club.ClubID).Msg("registering club")
	if err := s.clubs.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return utils.NewConflict("Club with this email already exists")
		}
		return storeError(err, "club")
	}
	return nil
}

func (s *ClubService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		return nil, utils.NewValidationError("email and password are required")
	}

	club, err := s.clubs.GetByID(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewAuthError("invalid credentials")
		}
		return nil, storeError(err, "club")
	}
	if bcrypt.CompareHashAndPassword([]byte(club.Password), []byte(password)) != nil {
		return nil, utils.NewAuthError("invalid credentials")
	}

	pair, err := s.tokens.IssuePair(ctx, club.ClubID, RoleClub)
	if err != nil {
		return nil, utils.NewDependencyError("failed to issue tokens", err)
	}
	if err := s.clubs.Update(ctx, club.ClubID, map[string]interface{}{"refresh_token": pair.RefreshToken}); err != nil {
		return nil, storeError(err, "club")
	}
	return pair, nil
}

func (s *ClubService) Refresh(ctx context.Context, clubID, refreshToken string) (string, error) {
	subject, role, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", tokenError(err)
	}
	if subject != strings.ToLower(clubID) || role != RoleClub {
		return "", utils.NewAuthError("refresh token does not belong to this club")
	}

	club, err := s.clubs.GetByID(ctx, subject)
	if err != nil {
		return "", storeError(err, "club")
	}
	if club.RefreshToken == "" || club.RefreshToken != refreshToken {
		return "", utils.NewAuthError("refresh token is not valid")
	}

	access, err := s.tokens.IssueAccessToken(ctx, subject, RoleClub)
	if err != nil {
		return "", utils.NewDependencyError("failed to issue token", err)
	}
	return access, nil
}

func (s *ClubService) Update(ctx context.Context, clubID string, in UpdateClubInput) error {
	updates := map[string]interface{}{}
	if in.ClubName != nil {
		updates["club_name"] = *in.ClubName
	}
	if in.DefaultWorkingHours != nil {
		updates["default_working_hours"] = *in.DefaultWorkingHours
	}
	if in.WorkingDays != nil {
		updates["working_days"] = *in.WorkingDays
	}
	if len(updates) == 0 {
		return utils.NewValidationError("nothing to update")
	}
	return storeError(s.clubs.Update(ctx, clubID, updates), "club")
}

// Nearby returns clubs within a small square around the given point.
func (s *ClubService) Nearby(ctx context.Context, latitude, longitude string) ([]models.Club, error) {
	if latitude == "" || longitude == "" {
		return nil, utils.NewValidationError("Longitude and latitude are required.")
	}
	lat, err := strconv.ParseFloat(latitude, 64)
	if err != nil {
		return nil, utils.NewValidationError("latitude must be a number")
	}
	lng, err := strconv.ParseFloat(longitude, 64)
	if err != nil {
		return nil, utils.NewValidationError("longitude must be a number")
	}

	clubs, err := s.clubs.FindInBox(ctx,
		lat-nearbyBoxDegrees, lat+nearbyBoxDegrees,
		lng-nearbyBoxDegrees, lng+nearbyBoxDegrees)
	if err != nil {
		return nil, storeError(err, "club")
	}
	if clubs == nil {
		clubs = []models.Club{}
	}
	return clubs, nil
}

// Events lists the events a club registered, with their covers.
func (s *ClubService) Events(ctx context.Context, clubID string) ([]models.EventResult, error) {
	if clubID == "" {
		return nil, utils.NewValidationError("club_id is required")
	}
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, storeError(err, "club")
	}

	events := make([]models.Event, 0, len(club.Events))
	for _, eventID := range club.Events {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.log.Warn().Str("event_id", eventID).Str("club_id", clubID).Msg("club event no longer exists")
				continue
			}
			return nil, storeError(err, "event")
		}
		events = append(events, *event)
	}
	return s.images.WithCovers(ctx, events), nil
}

func (s *ClubService) Giveaways(ctx context.Context, clubID string) ([]models.Giveaway, error) {
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, storeError(err, "club")
	}

	giveaways := make([]models.Giveaway, 0, len(club.Giveaways))
	for _, giveawayID := range club.Giveaways {
		giveaway, err := s.giveaways.GetByID(ctx, giveawayID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				s.log.Warn().Str("giveaway_id", giveawayID).Str("club_id", clubID).Msg("club giveaway no longer exists")
				continue
			}
			return nil, storeError(err, "giveaway")
		}
		giveaways = append(giveaways, *giveaway)
	}
	return giveaways, nil
}
