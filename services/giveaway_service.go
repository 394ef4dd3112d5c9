package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"clubnight-api/messaging"
	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyPool      = errors.New("no entries to draw from")
	ErrNegativeWeight = errors.New("entry weight is negative")
)

type GiveawayService struct {
	giveaways GiveawayStore
	users     UserStore
	publisher WinnerPublisher
	log       *zerolog.Logger

	// pick returns a uniform value in [0, n)
	pick func(n int64) int64
}

// NewGiveawayService builds the service. publisher may be nil, in which case
// winners are not announced.
func NewGiveawayService(giveaways GiveawayStore, users UserStore, publisher WinnerPublisher, log *zerolog.Logger) *GiveawayService {
	return &GiveawayService{
		giveaways: giveaways,
		users:     users,
		publisher: publisher,
		log:       log,
		pick:      rand.Int63n,
	}
}

// WeightedIndex selects index i with probability weights[i]/sum(weights)
// using a single draw from pick. Zero weights are never selected.
func WeightedIndex(weights []int, pick func(int64) int64) (int, error) {
	var total int64
	for _, w := range weights {
		if w < 0 {
			return -1, ErrNegativeWeight
		}
		total += int64(w)
	}
	if total == 0 {
		return -1, ErrEmptyPool
	}

	r := pick(total)
	for i, w := range weights {
		if r < int64(w) {
			return i, nil
		}
		r -= int64(w)
	}
	return -1, errors.New("random value out of range")
}

// Draw picks one winner of a giveaway. The giveaway is read once and the
// draw works on that snapshot. Only the first successful draw of a giveaway
// sends a winner notice; later draws still return a fresh pick.
func (s *GiveawayService) Draw(ctx context.Context, giveawayID string) (*models.Winner, error) {
	if giveawayID == "" {
		return nil, utils.NewValidationError("giveaway_id is required")
	}

	s.log.Debug().Str("giveaway_id", giveawayID).Msg("loading giveaway for draw")
	giveaway, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, storeError(err, "giveaway")
	}

	participants, weights := giveaway.Participants, giveaway.Weights
	if len(participants) == 0 || len(weights) == 0 {
		return nil, utils.New(utils.KindNoParticipants, "giveaway has no participants")
	}
	if len(participants) != len(weights) {
		s.log.Error().
			Str("giveaway_id", giveawayID).
			Int("participants", len(participants)).
			Int("weights", len(weights)).
			Msg("giveaway entry lists differ in length")
		return nil, utils.NewDependencyError("giveaway record is inconsistent", errors.New("participants and weights differ in length"))
	}

	idx, err := WeightedIndex(weights, s.pick)
	switch {
	case errors.Is(err, ErrEmptyPool):
		return nil, utils.New(utils.KindNoParticipants, "giveaway has no participants")
	case err != nil:
		return nil, utils.NewDependencyError("giveaway record is inconsistent", err)
	}

	winner := &models.Winner{Email: participants[idx]}
	user, err := s.users.GetByEmail(ctx, winner.Email)
	switch {
	case err == nil:
		winner.FirstName = &user.FirstName
		winner.LastName = &user.LastName
	case errors.Is(err, repositories.ErrNotFound):
		s.log.Warn().Str("email", winner.Email).Msg("winner has no profile")
	default:
		return nil, utils.NewDependencyError("failed to read winner profile", err)
	}

	s.announce(ctx, giveaway, winner)
	return winner, nil
}

func (s *GiveawayService) announce(ctx context.Context, giveaway *models.Giveaway, winner *models.Winner) {
	if s.publisher == nil || giveaway.AnnouncedAt != nil {
		return
	}

	drawnAt := time.Now().UTC()
	claimed, err := s.giveaways.ClaimAnnouncement(ctx, giveaway.GiveawayID, drawnAt)
	if err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", giveaway.GiveawayID).Msg("failed to claim winner announcement")
		return
	}
	if !claimed {
		return
	}

	err = s.publisher.PublishWinner(ctx, messaging.WinnerDrawn{
		GiveawayID: giveaway.GiveawayID,
		EventID:    giveaway.EventID,
		Prize:      giveaway.Prize,
		Name:       giveaway.Name,
		Email:      winner.Email,
		FirstName:  winner.FirstName,
		LastName:   winner.LastName,
		DrawnAt:    drawnAt,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("giveaway_id", giveaway.GiveawayID).Msg("failed to announce winner")
	}
}

// Join adds one entry of the given weight for email.
func (s *GiveawayService) Join(ctx context.Context, giveawayID, email string, entranceNumber int) error {
	if giveawayID == "" {
		return utils.NewValidationError("giveaway_id is required")
	}
	if entranceNumber < 0 {
		return utils.NewValidationError("entrance_number must not be negative")
	}

	s.log.Debug().Str("giveaway_id", giveawayID).Str("email", email).Int("weight", entranceNumber).Msg("joining giveaway")
	if _, err := s.giveaways.AppendEntry(ctx, giveawayID, email, entranceNumber); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return utils.NewDependencyError("giveaway is busy, try again", err)
		}
		return storeError(err, "giveaway")
	}
	return nil
}

// Get returns a giveaway record
func (s *GiveawayService) Get(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	giveaway, err := s.giveaways.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, storeError(err, "giveaway")
	}
	return giveaway, nil
}
