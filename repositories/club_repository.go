package repositories

import (
	"context"
	"errors"

	"clubnight-api/models"
	"gorm.io/gorm"
)

type ClubRepository struct {
	db *gorm.DB
}

func NewClubRepository(db *gorm.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// Create stores a new club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	if club.Events == nil {
		club.Events = models.StringSlice{}
	}
	if club.Giveaways == nil {
		club.Giveaways = models.StringSlice{}
	}
	err := r.db.WithContext(ctx).Create(club).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a club by its login e-mail
func (r *ClubRepository) GetByID(ctx context.Context, clubID string) (*models.Club, error) {
	var club models.Club
	err := r.db.WithContext(ctx).Where("club_id = ?", clubID).First(&club).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &club, nil
}

// Update sets the given columns on a club
func (r *ClubRepository) Update(ctx context.Context, clubID string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Club{}).Where("club_id = ?", clubID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// mysql reports zero rows when the values did not change
		return r.exists(ctx, clubID)
	}
	return nil
}

func (r *ClubRepository) exists(ctx context.Context, clubID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Club{}).Where("club_id = ?", clubID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendEvent records an owned event and, when giveawayID is not empty, its giveaway
func (r *ClubRepository) AppendEvent(ctx context.Context, clubID, eventID, giveawayID string) error {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		club, err := r.GetByID(ctx, clubID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"events":  append(append(models.StringSlice{}, club.Events...), eventID),
			"version": club.Version + 1,
		}
		if giveawayID != "" {
			updates["giveaways"] = append(append(models.StringSlice{}, club.Giveaways...), giveawayID)
		}

		res := r.db.WithContext(ctx).Model(&models.Club{}).
			Where("club_id = ? AND version = ?", clubID, club.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return ErrConditionFailed
}

// FindInBox returns clubs inside the given latitude/longitude rectangle
func (r *ClubRepository) FindInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Club, error) {
	var clubs []models.Club
	err := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Order("club_id ASC").
		Find(&clubs).Error
	return clubs, err
}
