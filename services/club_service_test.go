package services

import (
	"context"
	"testing"

	"clubnight-api/logger"
	"clubnight-api/models"
	"clubnight-api/storage"
	"clubnight-api/utils"
)

func float(v float64) *float64 {
	return &v
}

func TestClubService(t *testing.T) {
	ctx := context.Background()
	clubs := newFakeClubs(
		models.Club{ClubID: "far@x.io", Latitude: 48.85, Longitude: 2.35},
		models.Club{ClubID: "edge@x.io", Latitude: 52.539, Longitude: 13.42},
	)
	events := newFakeEvents(models.Event{EventID: "e1", ClubID: "near@x.io"})
	giveaways := newFakeGiveaways(models.Giveaway{GiveawayID: "g1", EventID: "e1"})
	s := NewClubService(clubs, events, giveaways, newTestTokens(), newTestImages(storage.NewMemoryStore()), logger.Nop())

	in := RegisterClubInput{
		Email:               "Near@x.io",
		Password:            "Secret1!",
		ClubName:            "Near",
		DefaultWorkingHours: "22-06",
		WorkingDays:         "Fri,Sat",
		Latitude:            float(52.52),
		Longitude:           float(13.405),
	}

	t.Run("register and login", func(t *testing.T) {
		if err := s.Register(ctx, in); err != nil {
			t.Fatalf("register: %v", err)
		}
		if err := s.Register(ctx, in); !utils.IsKind(err, utils.KindConflict) {
			t.Fatalf("expected Conflict, got %v", err)
		}

		pair, err := s.Login(ctx, "near@x.io", "Secret1!")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if _, err := s.Login(ctx, "near@x.io", "wrong"); !utils.IsKind(err, utils.KindAuth) {
			t.Fatalf("expected AuthError, got %v", err)
		}

		access, err := s.Refresh(ctx, "near@x.io", pair.RefreshToken)
		if err != nil || access == "" {
			t.Fatalf("refresh: %v", err)
		}
	})

	t.Run("register needs coordinates", func(t *testing.T) {
		bad := in
		bad.Email = "nocoords@x.io"
		bad.Latitude = nil
		if err := s.Register(ctx, bad); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		name := "Nearer"
		if err := s.Update(ctx, "near@x.io", UpdateClubInput{ClubName: &name}); err != nil {
			t.Fatalf("update: %v", err)
		}
		club, _ := clubs.GetByID(ctx, "near@x.io")
		if club.ClubName != "Nearer" {
			t.Fatalf("name not updated: %q", club.ClubName)
		}
		if err := s.Update(ctx, "near@x.io", UpdateClubInput{}); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("nearby", func(t *testing.T) {
		found, err := s.Nearby(ctx, "52.52", "13.405")
		if err != nil {
			t.Fatalf("nearby: %v", err)
		}
		ids := map[string]bool{}
		for _, c := range found {
			ids[c.ClubID] = true
		}
		if len(found) != 2 || !ids["near@x.io"] || !ids["edge@x.io"] {
			t.Fatalf("unexpected clubs %v", ids)
		}

		if _, err := s.Nearby(ctx, "52.52", ""); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("events and giveaways", func(t *testing.T) {
		_ = clubs.AppendEvent(ctx, "near@x.io", "e1", "g1")
		_ = clubs.AppendEvent(ctx, "near@x.io", "gone", "gone")

		list, err := s.Events(ctx, "near@x.io")
		if err != nil || len(list) != 1 || list[0].EventID != "e1" {
			t.Fatalf("unexpected events %v %v", list, err)
		}
		gs, err := s.Giveaways(ctx, "near@x.io")
		if err != nil || len(gs) != 1 || gs[0].GiveawayID != "g1" {
			t.Fatalf("unexpected giveaways %v %v", gs, err)
		}
	})
}
