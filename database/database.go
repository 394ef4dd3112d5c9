// File: /database/database.go
package database

import (
	"fmt"
	"time"

	"clubnight-api/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize connects to MySQL. verbose logs every statement.
func Initialize(databaseURL string, verbose bool) (*gorm.DB, error) {
	level := logger.Warn
	if verbose {
		level = logger.Info
	}

	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(level),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Club{},
		&models.Event{},
		&models.EventImage{},
		&models.Giveaway{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}
	return nil
}

// addCustomIndexes creates the composite indexes the struct tags cannot express
func addCustomIndexes(db *gorm.DB) error {
	indexes := []struct {
		model interface{}
		name  string
		sql   string
	}{
		{&models.Club{}, "idx_clubs_lat_lng", "CREATE INDEX idx_clubs_lat_lng ON clubs(latitude, longitude)"},
		{&models.User{}, "idx_users_points_email", "CREATE INDEX idx_users_points_email ON users(points, email)"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", idx.name, err)
		}
	}
	return nil
}

// SeedData adds a demo club with one event and giveaway to an empty database.
func SeedData(db *gorm.DB, log *zerolog.Logger) error {
	var clubCount int64
	if err := db.Model(&models.Club{}).Count(&clubCount).Error; err != nil {
		return err
	}
	if clubCount > 0 {
		log.Debug().Msg("database already has data, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Clubnight1!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	eventID, giveawayID := uuid.New().String(), uuid.New().String()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	lat, lng := "52.520008", "13.404954"
	genre := "techno"

	club := models.Club{
		ClubID:              "demo@clubnight.app",
		Password:            string(hashed),
		ClubName:            "Demo Club",
		DefaultWorkingHours: "23:00-06:00",
		WorkingDays:         "Fri,Sat",
		Latitude:            52.520008,
		Longitude:           13.404954,
		Events:              models.StringSlice{eventID},
		Giveaways:           models.StringSlice{giveawayID},
	}
	event := models.Event{
		EventID:     eventID,
		ClubID:      club.ClubID,
		Title:       "Opening Night",
		Category:    "party",
		Description: "Demo event",
		StartingAt:  start.Format(models.StartingAtLayout),
		EndingAt:    start.Add(7 * time.Hour).Format(models.StartingAtLayout),
		Genre:       &genre,
		Latitude:    &lat,
		Longitude:   &lng,
		Performers:  models.StringSlice{"Resident DJ"},
		GiveawayID:  &giveawayID,
	}
	giveaway := models.Giveaway{
		GiveawayID:   giveawayID,
		EventID:      eventID,
		ClubID:       club.ClubID,
		Prize:        "Two guest list spots",
		Name:         "Opening giveaway",
		Participants: models.StringSlice{},
		Weights:      models.IntSlice{},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, record := range []interface{}{&club, &event, &giveaway} {
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		log.Info().Str("club_id", club.ClubID).Msg("seeded demo data")
		return nil
	})
}
