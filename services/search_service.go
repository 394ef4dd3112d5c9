package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/utils"
	"github.com/rs/zerolog"
)

// searchWindow is how far after the reference date an event may start.
const searchWindow = 10 * 24 * time.Hour

// SearchQuery holds the raw search parameters. Empty fields are not applied.
type SearchQuery struct {
	Name      string
	Theme     string
	Genre     string
	Type      string
	Date      string
	Latitude  string
	Longitude string
}

type geoPoint struct {
	lat float64
	lng float64
}

type SearchService struct {
	events EventScanner
	images *ImageService
	log    *zerolog.Logger
	now    func() time.Time
}

func NewSearchService(events EventScanner, images *ImageService, log *zerolog.Logger) *SearchService {
	return &SearchService{
		events: events,
		images: images,
		log:    log,
		now:    time.Now,
	}
}

// Search returns the events starting within ten days of the query date that
// match every supplied filter. The result order is not defined.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) ([]models.EventResult, error) {
	origin, err := parseOrigin(q.Latitude, q.Longitude)
	if err != nil {
		return nil, err
	}

	filter, err := s.dateWindow(q.Date)
	if err != nil {
		return nil, err
	}

	events, err := s.scanAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Event, 0)
	for _, event := range events {
		if matchesQuery(event, q, filter, origin) {
			matched = append(matched, event)
		}
	}

	s.log.Debug().
		Int("scanned", len(events)).
		Int("matched", len(matched)).
		Str("from", filter.From).
		Msg("event search finished")

	return s.images.WithCovers(ctx, matched), nil
}

// dateWindow builds [date, date+10d] in the fixed starting_at layout.
func (s *SearchService) dateWindow(date string) (repositories.EventScanFilter, error) {
	ref := s.now().UTC()
	if date != "" {
		parsed, err := time.Parse(models.StartingAtLayout, date)
		if err != nil {
			return repositories.EventScanFilter{}, utils.NewValidationError("date must be formatted as YYYY-MM-DDTHH:MM:SS")
		}
		ref = parsed
	}

	return repositories.EventScanFilter{
		From: ref.Format(models.StartingAtLayout),
		To:   ref.Add(searchWindow).Format(models.StartingAtLayout),
	}, nil
}

// scanAll follows LastEvaluatedKey until the store reports no further pages.
func (s *SearchService) scanAll(ctx context.Context, filter repositories.EventScanFilter) ([]models.Event, error) {
	var all []models.Event
	startKey := ""
	for {
		page, err := s.events.ScanEvents(ctx, filter, startKey)
		if err != nil {
			s.log.Error().Err(err).Str("start_key", startKey).Msg("event scan failed")
			return nil, utils.NewDependencyError("failed to scan events", err)
		}
		all = append(all, page.Items...)
		if page.LastEvaluatedKey == "" {
			return all, nil
		}
		startKey = page.LastEvaluatedKey
	}
}

func parseOrigin(lat, lng string) (*geoPoint, error) {
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, utils.NewValidationError("latitude and longitude must be supplied together")
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, utils.NewValidationError("latitude must be a number")
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, utils.NewValidationError("longitude must be a number")
	}
	return &geoPoint{lat: latitude, lng: longitude}, nil
}

func matchesQuery(event models.Event, q SearchQuery, window repositories.EventScanFilter, origin *geoPoint) bool {
	if event.StartingAt < window.From || event.StartingAt > window.To {
		return false
	}
	if q.Name != "" && !strings.Contains(strings.ToLower(event.Title), strings.ToLower(q.Name)) {
		return false
	}
	if q.Theme != "" && !strings.EqualFold(valueOf(event.Theme), q.Theme) {
		return false
	}
	if q.Genre != "" && !strings.EqualFold(valueOf(event.Genre), q.Genre) {
		return false
	}
	if q.Type != "" && !strings.EqualFold(valueOf(event.Type), q.Type) {
		return false
	}
	if origin != nil {
		return withinSearchRadius(event, *origin)
	}
	return true
}

// withinSearchRadius rejects events without a usable coordinate.
func withinSearchRadius(event models.Event, origin geoPoint) bool {
	if event.Latitude == nil || event.Longitude == nil {
		return false
	}
	lat, err := strconv.ParseFloat(*event.Latitude, 64)
	if err != nil {
		return false
	}
	lng, err := strconv.ParseFloat(*event.Longitude, 64)
	if err != nil {
		return false
	}
	return withinRadius(HaversineKm(origin.lat, origin.lng, lat, lng))
}

// withinRadius keeps events at exactly SearchRadiusKm.
func withinRadius(distanceKm float64) bool {
	return distanceKm <= SearchRadiusKm
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
