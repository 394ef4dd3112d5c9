package services

import (
	"context"
	"testing"

	"clubnight-api/logger"
	"clubnight-api/models"
	"clubnight-api/utils"
)

func TestParticipation(t *testing.T) {
	ctx := context.Background()
	events := newFakeEvents(
		models.Event{EventID: "e1", Title: "Opening"},
		models.Event{EventID: "e2", Title: "Closing"},
	)
	users := newFakeUsers(models.User{Email: "u@x.io"})
	s := NewParticipationService(events, users, logger.Nop())

	t.Run("join increments and records", func(t *testing.T) {
		if err := s.JoinEvent(ctx, "u@x.io", "e1"); err != nil {
			t.Fatalf("join: %v", err)
		}
		e, _ := events.GetByID(ctx, "e1")
		u, _ := users.GetByEmail(ctx, "u@x.io")
		if e.Participants != 1 || !u.Events.Contains("e1") {
			t.Fatalf("unexpected state: participants=%d events=%v", e.Participants, u.Events)
		}
	})

	t.Run("leave reverses join", func(t *testing.T) {
		if err := s.LeaveEvent(ctx, "u@x.io", "e1"); err != nil {
			t.Fatalf("leave: %v", err)
		}
		e, _ := events.GetByID(ctx, "e1")
		u, _ := users.GetByEmail(ctx, "u@x.io")
		if e.Participants != 0 || u.Events.Contains("e1") {
			t.Fatalf("unexpected state: participants=%d events=%v", e.Participants, u.Events)
		}
	})

	t.Run("leave without join", func(t *testing.T) {
		err := s.LeaveEvent(ctx, "u@x.io", "e2")
		if !utils.IsKind(err, utils.KindNotJoined) {
			t.Fatalf("expected NotJoined, got %v", err)
		}
	})

	t.Run("counter never goes negative", func(t *testing.T) {
		// The user list claims the event but the counter is already zero.
		_ = users.SetEvents(ctx, "u@x.io", models.StringSlice{"e2"})

		err := s.LeaveEvent(ctx, "u@x.io", "e2")
		if !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected guard failure, got %v", err)
		}
		e, _ := events.GetByID(ctx, "e2")
		if e.Participants != 0 {
			t.Fatalf("counter went to %d", e.Participants)
		}
	})

	t.Run("leave removes only one occurrence", func(t *testing.T) {
		_ = users.SetEvents(ctx, "u@x.io", models.StringSlice{"e1", "e1"})
		_ = events.IncrementParticipants(ctx, "e1")
		_ = events.IncrementParticipants(ctx, "e1")

		if err := s.LeaveEvent(ctx, "u@x.io", "e1"); err != nil {
			t.Fatalf("leave: %v", err)
		}
		u, _ := users.GetByEmail(ctx, "u@x.io")
		if len(u.Events) != 1 || u.Events[0] != "e1" {
			t.Fatalf("expected one remaining entry, got %v", u.Events)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		if err := s.JoinEvent(ctx, "u@x.io", "nope"); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if err := s.JoinEvent(ctx, "ghost@x.io", "e1"); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}
