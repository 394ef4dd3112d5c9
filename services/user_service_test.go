package services

import (
	"context"
	"encoding/base64"
	"testing"

	"clubnight-api/logger"
	"clubnight-api/models"
	"clubnight-api/storage"
	"clubnight-api/utils"
)

func TestUserProfile(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(models.User{Email: "u@x.io", FirstName: "Uma", LastName: "Ulm"})
	store := storage.NewMemoryStore()
	s := NewUserService(users, newFakeEvents(), newTestImages(store), logger.Nop())

	t.Run("public info without picture", func(t *testing.T) {
		info, err := s.PublicInfo(ctx, "u@x.io")
		if err != nil {
			t.Fatalf("public info: %v", err)
		}
		if *info.FirstName != "Uma" || info.ProfilePicture != nil {
			t.Fatalf("unexpected info %+v", info)
		}
	})

	t.Run("update public info with picture", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString(pngBytes(t, 10, 10))
		if err := s.UpdatePublicInfo(ctx, "u@x.io", UpdatePublicInput{FirstName: strPtr("Ursa"), ProfilePicture: &encoded}); err != nil {
			t.Fatalf("update: %v", err)
		}
		info, err := s.PublicInfo(ctx, "u@x.io")
		if err != nil || *info.FirstName != "Ursa" || info.ProfilePicture == nil {
			t.Fatalf("unexpected info %+v %v", info, err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		if err := s.UpdatePublicInfo(ctx, "u@x.io", UpdatePublicInput{LastName: strPtr("")}); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("private info", func(t *testing.T) {
		age := 31
		if err := s.UpdatePrivateInfo(ctx, "u@x.io", UpdatePrivateInput{Age: &age, PhoneNumber: strPtr("+49 30 1234")}); err != nil {
			t.Fatalf("update: %v", err)
		}
		u, _ := users.GetByEmail(ctx, "u@x.io")
		if u.Age != 31 || u.PhoneNumber != "+49 30 1234" {
			t.Fatalf("unexpected user %+v", u)
		}
		if err := s.UpdatePrivateInfo(ctx, "u@x.io", UpdatePrivateInput{}); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("delete removes picture and record", func(t *testing.T) {
		if err := s.DeleteProfile(ctx, "u@x.io"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.GetObject(ctx, "profile-pictures", "profile-pictures/u@x.io.jpg"); err == nil {
			t.Fatal("picture still stored")
		}
		if err := s.DeleteProfile(ctx, "u@x.io"); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}

func TestLeaderboardAndJoinedEvents(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(
		models.User{Email: "low@x.io", Points: 1},
		models.User{Email: "high@x.io", Points: 9, Events: models.StringSlice{"e1", "deleted"}},
	)
	events := newFakeEvents(models.Event{EventID: "e1", Title: "Opening"})
	s := NewUserService(users, events, newTestImages(storage.NewMemoryStore()), logger.Nop())

	board, err := s.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Email != "high@x.io" {
		t.Fatalf("unexpected order %+v", board)
	}

	joined, err := s.JoinedEvents(ctx, "high@x.io")
	if err != nil {
		t.Fatalf("joined: %v", err)
	}
	if len(joined) != 1 || joined[0].EventID != "e1" || joined[0].Image != nil {
		t.Fatalf("unexpected events %+v", joined)
	}
}
