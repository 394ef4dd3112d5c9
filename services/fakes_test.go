package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"clubnight-api/logger"
	"clubnight-api/models"
	"clubnight-api/repositories"
	"clubnight-api/storage"
)

// fakeEvents is an in-memory EventStore. pageSize controls ScanEvents paging.
type fakeEvents struct {
	mu       sync.Mutex
	events   map[string]*models.Event
	images   []models.EventImage
	pageSize int
	scans    int
	scanErr  error
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{events: make(map[string]*models.Event), pageSize: 2}
	for i := range events {
		e := events[i]
		f.events[e.EventID] = &e
	}
	return f
}

func (f *fakeEvents) ScanEvents(_ context.Context, filter repositories.EventScanFilter, startKey string) (*repositories.EventPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	ids := make([]string, 0, len(f.events))
	for id := range f.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	page := &repositories.EventPage{}
	for _, id := range ids {
		if id <= startKey {
			continue
		}
		e := f.events[id]
		if filter.From != "" && (e.StartingAt < filter.From || e.StartingAt > filter.To) {
			continue
		}
		page.Items = append(page.Items, *e)
		if len(page.Items) == f.pageSize {
			page.LastEvaluatedKey = id
			break
		}
	}
	return page, nil
}

func (f *fakeEvents) Create(_ context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.EventID]; ok {
		return repositories.ErrAlreadyExists
	}
	e := *event
	f.events[e.EventID] = &e
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, eventID string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (f *fakeEvents) IncrementParticipants(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return repositories.ErrNotFound
	}
	e.Participants++
	return nil
}

func (f *fakeEvents) DecrementParticipants(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return repositories.ErrNotFound
	}
	if e.Participants <= 0 {
		return repositories.ErrConditionFailed
	}
	e.Participants--
	return nil
}

func (f *fakeEvents) CreateImage(_ context.Context, image *models.EventImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, *image)
	return nil
}

func (f *fakeEvents) ListImages(_ context.Context, eventID string) ([]models.EventImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EventImage
	for _, img := range f.images {
		if img.EventID == eventID {
			out = append(out, img)
		}
	}
	return out, nil
}

type fakeGiveaways struct {
	mu        sync.Mutex
	giveaways map[string]*models.Giveaway
	createErr error
}

func newFakeGiveaways(giveaways ...models.Giveaway) *fakeGiveaways {
	f := &fakeGiveaways{giveaways: make(map[string]*models.Giveaway)}
	for i := range giveaways {
		g := giveaways[i]
		f.giveaways[g.GiveawayID] = &g
	}
	return f
}

func (f *fakeGiveaways) Create(_ context.Context, giveaway *models.Giveaway) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	g := *giveaway
	f.giveaways[g.GiveawayID] = &g
	return nil
}

func (f *fakeGiveaways) GetByID(_ context.Context, giveawayID string) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[giveawayID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (f *fakeGiveaways) AppendEntry(_ context.Context, giveawayID, participant string, weight int) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[giveawayID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	g.Participants = append(g.Participants, participant)
	g.Weights = append(g.Weights, weight)
	out := *g
	return &out, nil
}

func (f *fakeGiveaways) ClaimAnnouncement(_ context.Context, giveawayID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[giveawayID]
	if !ok || g.AnnouncedAt != nil {
		return false, nil
	}
	g.AnnouncedAt = &at
	return true, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		f.users[u.Email] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Email]; ok {
		return repositories.ErrAlreadyExists
	}
	u := *user
	f.users[u.Email] = &u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *u
	out.Events = append(models.StringSlice{}, u.Events...)
	return &out, nil
}

func (f *fakeUsers) Update(_ context.Context, email string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "first_name":
			u.FirstName = v.(string)
		case "last_name":
			u.LastName = v.(string)
		case "age":
			u.Age = v.(int)
		case "phone_number":
			u.PhoneNumber = v.(string)
		case "password":
			u.Password = v.(string)
		case "refresh_token":
			u.RefreshToken = v.(string)
		case "six_digit_code":
			u.SixDigitCode = v.(string)
		case "six_digit_code_expiration":
			if t, ok := v.(time.Time); ok {
				u.SixDigitCodeExpiration = &t
			} else {
				u.SixDigitCodeExpiration = nil
			}
		case "password_change_approved":
			u.PasswordChangeApproved = v.(bool)
		}
	}
	return nil
}

func (f *fakeUsers) AppendEvent(_ context.Context, email, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Events = append(u.Events, eventID)
	return nil
}

func (f *fakeUsers) SetEvents(_ context.Context, email string, events models.StringSlice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Events = append(models.StringSlice{}, events...)
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.users, email)
	return nil
}

func (f *fakeUsers) ListByPoints(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	return out, nil
}

func (f *fakeUsers) ClearExpiredCodes(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeClubs struct {
	mu        sync.Mutex
	clubs     map[string]*models.Club
	appendErr error
}

func newFakeClubs(clubs ...models.Club) *fakeClubs {
	f := &fakeClubs{clubs: make(map[string]*models.Club)}
	for i := range clubs {
		c := clubs[i]
		f.clubs[c.ClubID] = &c
	}
	return f
}

func (f *fakeClubs) Create(_ context.Context, club *models.Club) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clubs[club.ClubID]; ok {
		return repositories.ErrAlreadyExists
	}
	c := *club
	f.clubs[c.ClubID] = &c
	return nil
}

func (f *fakeClubs) GetByID(_ context.Context, clubID string) (*models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clubs[clubID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeClubs) Update(_ context.Context, clubID string, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clubs[clubID]
	if !ok {
		return repositories.ErrNotFound
	}
	for k, v := range updates {
		switch k {
		case "club_name":
			c.ClubName = v.(string)
		case "default_working_hours":
			c.DefaultWorkingHours = v.(string)
		case "working_days":
			c.WorkingDays = v.(string)
		case "refresh_token":
			c.RefreshToken = v.(string)
		}
	}
	return nil
}

func (f *fakeClubs) AppendEvent(_ context.Context, clubID, eventID, giveawayID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	c, ok := f.clubs[clubID]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Events = append(c.Events, eventID)
	if giveawayID != "" {
		c.Giveaways = append(c.Giveaways, giveawayID)
	}
	return nil
}

func (f *fakeClubs) FindInBox(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.Club, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Club
	for _, c := range f.clubs {
		if c.Latitude >= minLat && c.Latitude <= maxLat && c.Longitude >= minLng && c.Longitude <= maxLng {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeMailer records the last code sent
type fakeMailer struct {
	mu       sync.Mutex
	lastTo   string
	lastCode string
	err      error
}

func (m *fakeMailer) SendLoginCode(to, _ string, code string) error {
	return m.record(to, code)
}

func (m *fakeMailer) SendPasswordChangeCode(to, _ string, code string) error {
	return m.record(to, code)
}

func (m *fakeMailer) record(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lastTo, m.lastCode = to, code
	return nil
}

func newTestImages(store storage.ObjectStore) *ImageService {
	return NewImageService(store, "event-pictures", "profile-pictures", "profile-pictures/", logger.Nop())
}

func strPtr(s string) *string {
	return &s
}
