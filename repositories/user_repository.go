package repositories

import (
	"context"
	"errors"
	"time"

	"clubnight-api/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Events == nil {
		user.Events = models.StringSlice{}
	}
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetByEmail retrieves a user by its e-mail key
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update sets the given columns on a user
func (r *UserRepository) Update(ctx context.Context, email string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// mysql reports zero rows when the values did not change
		return r.exists(ctx, email)
	}
	return nil
}

func (r *UserRepository) exists(ctx context.Context, email string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendEvent appends an event id to the user's joined events list
func (r *UserRepository) AppendEvent(ctx context.Context, email, eventID string) error {
	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		user, err := r.GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		events := append(append(models.StringSlice{}, user.Events...), eventID)
		res := r.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND version = ?", email, user.Version).
			Updates(map[string]interface{}{
				"events":  events,
				"version": user.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			return nil
		}
	}
	return ErrConditionFailed
}

// SetEvents overwrites the user's joined events list
func (r *UserRepository) SetEvents(ctx context.Context, email string, events models.StringSlice) error {
	if events == nil {
		events = models.StringSlice{}
	}
	return r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).
		Updates(map[string]interface{}{
			"events":  events,
			"version": gorm.Expr("version + ?", 1),
		}).Error
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPoints returns every user ordered by points, highest first
func (r *UserRepository) ListByPoints(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("points DESC").Order("email ASC").Find(&users).Error
	return users, err
}

// ClearExpiredCodes removes six digit codes that expired before the given time
func (r *UserRepository) ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("six_digit_code_expiration IS NOT NULL AND six_digit_code_expiration < ?", before).
		Updates(map[string]interface{}{
			"six_digit_code":            "",
			"six_digit_code_expiration": nil,
		})
	return res.RowsAffected, res.Error
}
