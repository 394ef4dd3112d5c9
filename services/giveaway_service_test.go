package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"clubnight-api/logger"
	"clubnight-api/messaging"
	"clubnight-api/models"
	"clubnight-api/utils"
)

type capturedWinners struct {
	mu   sync.Mutex
	msgs []messaging.WinnerDrawn
	err  error
}

func (c *capturedWinners) PublishWinner(_ context.Context, msg messaging.WinnerDrawn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestWeightedIndex(t *testing.T) {
	t.Run("cumulative walk", func(t *testing.T) {
		weights := []int{2, 0, 3}
		want := map[int64]int{0: 0, 1: 0, 2: 2, 3: 2, 4: 2}
		for r, idx := range want {
			got, err := WeightedIndex(weights, func(n int64) int64 {
				if n != 5 {
					t.Fatalf("expected total 5, got %d", n)
				}
				return r
			})
			if err != nil || got != idx {
				t.Fatalf("r=%d: expected %d, got %d (%v)", r, idx, got, err)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := WeightedIndex(nil, rand.Int63n); !errors.Is(err, ErrEmptyPool) {
			t.Fatalf("expected ErrEmptyPool, got %v", err)
		}
	})

	t.Run("all zero", func(t *testing.T) {
		if _, err := WeightedIndex([]int{0, 0}, rand.Int63n); !errors.Is(err, ErrEmptyPool) {
			t.Fatalf("expected ErrEmptyPool, got %v", err)
		}
	})

	t.Run("negative", func(t *testing.T) {
		if _, err := WeightedIndex([]int{1, -1}, rand.Int63n); !errors.Is(err, ErrNegativeWeight) {
			t.Fatalf("expected ErrNegativeWeight, got %v", err)
		}
	})

	t.Run("distribution", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		wins := [2]int{}
		const trials = 100000
		for i := 0; i < trials; i++ {
			idx, err := WeightedIndex([]int{1, 99}, rng.Int63n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			wins[idx]++
		}
		share := float64(wins[1]) / trials
		if share < 0.985 || share > 0.995 {
			t.Fatalf("expected about 99%% for the heavy entry, got %.4f", share)
		}
	})

	t.Run("zero weight never wins", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 20000; i++ {
			idx, err := WeightedIndex([]int{3, 0, 1, 0}, rng.Int63n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if idx == 1 || idx == 3 {
				t.Fatalf("zero weight entry %d selected", idx)
			}
		}
	})
}

func TestGiveawayDraw(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers(models.User{Email: "b@x.io", FirstName: "Bea", LastName: "Berg"})

	giveaways := newFakeGiveaways(
		models.Giveaway{GiveawayID: "full", EventID: "e1", Prize: "vinyl", Participants: models.StringSlice{"a@x.io", "b@x.io"}, Weights: models.IntSlice{0, 4}},
		models.Giveaway{GiveawayID: "empty"},
		models.Giveaway{GiveawayID: "zero", Participants: models.StringSlice{"a@x.io"}, Weights: models.IntSlice{0}},
		models.Giveaway{GiveawayID: "corrupt", Participants: models.StringSlice{"a@x.io", "b@x.io"}, Weights: models.IntSlice{1}},
		models.Giveaway{GiveawayID: "ghost", Participants: models.StringSlice{"ghost@x.io"}, Weights: models.IntSlice{1}},
	)

	winners := &capturedWinners{}
	s := NewGiveawayService(giveaways, users, winners, logger.Nop())

	t.Run("resolves names and announces", func(t *testing.T) {
		winner, err := s.Draw(ctx, "full")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if winner.Email != "b@x.io" || winner.FirstName == nil || *winner.FirstName != "Bea" {
			t.Fatalf("unexpected winner %+v", winner)
		}
		if len(winners.msgs) != 1 || winners.msgs[0].Prize != "vinyl" || winners.msgs[0].Email != "b@x.io" {
			t.Fatalf("expected one announcement, got %+v", winners.msgs)
		}
	})

	t.Run("later draws are not announced", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			if _, err := s.Draw(ctx, "full"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if len(winners.msgs) != 1 {
			t.Fatalf("expected a single announcement, got %d", len(winners.msgs))
		}
	})

	t.Run("empty pool", func(t *testing.T) {
		_, err := s.Draw(ctx, "empty")
		if !utils.IsKind(err, utils.KindNoParticipants) {
			t.Fatalf("expected NoParticipants, got %v", err)
		}
	})

	t.Run("only zero weights", func(t *testing.T) {
		_, err := s.Draw(ctx, "zero")
		if !utils.IsKind(err, utils.KindNoParticipants) {
			t.Fatalf("expected NoParticipants, got %v", err)
		}
	})

	t.Run("mismatched lists", func(t *testing.T) {
		_, err := s.Draw(ctx, "corrupt")
		if !utils.IsKind(err, utils.KindDependency) {
			t.Fatalf("expected DependencyError, got %v", err)
		}
	})

	t.Run("unknown giveaway", func(t *testing.T) {
		_, err := s.Draw(ctx, "missing")
		if !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})

	t.Run("winner without profile", func(t *testing.T) {
		winner, err := s.Draw(ctx, "ghost")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if winner.Email != "ghost@x.io" || winner.FirstName != nil || winner.LastName != nil {
			t.Fatalf("expected null names, got %+v", winner)
		}
	})

	t.Run("publish failure does not fail the draw", func(t *testing.T) {
		failing := NewGiveawayService(giveaways, users, &capturedWinners{err: errors.New("broker down")}, logger.Nop())
		if _, err := failing.Draw(ctx, "full"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("no publisher", func(t *testing.T) {
		quiet := NewGiveawayService(giveaways, users, nil, logger.Nop())
		if _, err := quiet.Draw(ctx, "full"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestGiveawayJoin(t *testing.T) {
	ctx := context.Background()
	giveaways := newFakeGiveaways(models.Giveaway{GiveawayID: "g1"})
	s := NewGiveawayService(giveaways, newFakeUsers(), nil, logger.Nop())

	t.Run("appends pairs including duplicates", func(t *testing.T) {
		for _, weight := range []int{3, 1} {
			if err := s.Join(ctx, "g1", "a@x.io", weight); err != nil {
				t.Fatalf("join: %v", err)
			}
		}
		g, _ := giveaways.GetByID(ctx, "g1")
		if len(g.Participants) != 2 || len(g.Weights) != 2 {
			t.Fatalf("lists out of step: %v %v", g.Participants, g.Weights)
		}
		if g.Weights[0] != 3 || g.Weights[1] != 1 || g.Participants[1] != "a@x.io" {
			t.Fatalf("unexpected entries %v %v", g.Participants, g.Weights)
		}
	})

	t.Run("negative weight rejected", func(t *testing.T) {
		if err := s.Join(ctx, "g1", "a@x.io", -2); !utils.IsKind(err, utils.KindValidation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown giveaway", func(t *testing.T) {
		if err := s.Join(ctx, "nope", "a@x.io", 1); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("expected NotFound, got %v", err)
		}
	})
}
