package repositories

import (
	"context"
	"errors"
	"time"

	"clubnight-api/models"
	"gorm.io/gorm"
)

type GiveawayRepository struct {
	db *gorm.DB
}

func NewGiveawayRepository(db *gorm.DB) *GiveawayRepository {
	return &GiveawayRepository{db: db}
}

// Create stores a new giveaway
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if giveaway.Participants == nil {
		giveaway.Participants = models.StringSlice{}
	}
	if giveaway.Weights == nil {
		giveaway.Weights = models.IntSlice{}
	}
	err := r.db.WithContext(ctx).Create(giveaway).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a single giveaway
func (r *GiveawayRepository) GetByID(ctx context.Context, giveawayID string) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	err := r.db.WithContext(ctx).Where("giveaway_id = ?", giveawayID).First(&giveaway).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &giveaway, nil
}

// AppendEntry adds one (participant, weight) pair to the parallel lists.
// The write is conditional on the version read, so both lists always change together.
func (r *GiveawayRepository) AppendEntry(ctx context.Context, giveawayID, participant string, weight int) (*models.Giveaway, error) {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		giveaway, err := r.GetByID(ctx, giveawayID)
		if err != nil {
			return nil, err
		}

		participants := append(append(models.StringSlice{}, giveaway.Participants...), participant)
		weights := append(append(models.IntSlice{}, giveaway.Weights...), weight)

		res := r.db.WithContext(ctx).Model(&models.Giveaway{}).
			Where("giveaway_id = ? AND version = ?", giveawayID, giveaway.Version).
			Updates(map[string]interface{}{
				"participants": participants,
				"weights":      weights,
				"version":      giveaway.Version + 1,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			giveaway.Participants = participants
			giveaway.Weights = weights
			giveaway.Version++
			return giveaway, nil
		}
	}
	return nil, ErrConditionFailed
}

// ClaimAnnouncement marks the giveaway as announced. It reports false when
// an earlier draw already holds the claim.
func (r *GiveawayRepository) ClaimAnnouncement(ctx context.Context, giveawayID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Giveaway{}).
		Where("giveaway_id = ? AND announced_at IS NULL", giveawayID).
		Update("announced_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
