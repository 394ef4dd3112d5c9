package repositories

import (
	"context"
	"errors"

	"clubnight-api/models"
	"gorm.io/gorm"
)

// EventScanFilter restricts a scan to events whose starting_at lies in [From, To].
// Bounds are compared as strings. An empty From disables the filter.
type EventScanFilter struct {
	From string
	To   string
}

// EventPage is one bounded page of a scan. An empty LastEvaluatedKey means the scan is complete.
type EventPage struct {
	Items            []models.Event
	LastEvaluatedKey string
}

type EventRepository struct {
	db       *gorm.DB
	pageSize int
}

func NewEventRepository(db *gorm.DB, pageSize int) *EventRepository {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &EventRepository{db: db, pageSize: pageSize}
}

// Create stores a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a single event
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ScanEvents returns one page of events ordered by id, starting after startKey.
func (r *EventRepository) ScanEvents(ctx context.Context, filter EventScanFilter, startKey string) (*EventPage, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})

	if filter.From != "" {
		query = query.Where("starting_at BETWEEN ? AND ?", filter.From, filter.To)
	}
	if startKey != "" {
		query = query.Where("event_id > ?", startKey)
	}

	var events []models.Event
	if err := query.Order("event_id ASC").Limit(r.pageSize).Find(&events).Error; err != nil {
		return nil, err
	}

	page := &EventPage{Items: events}
	if len(events) == r.pageSize {
		page.LastEvaluatedKey = events[len(events)-1].EventID
	}
	return page, nil
}

// IncrementParticipants atomically adds one to the participant counter
func (r *EventRepository) IncrementParticipants(ctx context.Context, eventID string) error {
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("event_id = ?", eventID).
		UpdateColumn("participants", gorm.Expr("participants + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementParticipants atomically subtracts one from the participant counter.
// It fails with ErrConditionFailed when the counter is not greater than zero.
func (r *EventRepository) DecrementParticipants(ctx context.Context, eventID string) error {
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("event_id = ? AND participants > ?", eventID, 0).
		UpdateColumn("participants", gorm.Expr("participants - ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		return ErrConditionFailed
	}
	return nil
}

// CreateImage stores a community image link for an event
func (r *EventRepository) CreateImage(ctx context.Context, image *models.EventImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// ListImages returns all community image links of an event
func (r *EventRepository) ListImages(ctx context.Context, eventID string) ([]models.EventImage, error) {
	var images []models.EventImage
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Find(&images).Error
	return images, err
}
