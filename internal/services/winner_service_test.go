package services

import (
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

func sequentialRandomness() []byte {
	b := make([]byte, 32)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestExpandRandomnessKnownValues(t *testing.T) {
	randomness := sequentialRandomness()
	want := []uint32{1023472752, 960461668, 3621782504}
	for n, expected := range want {
		if got := ExpandRandomness(randomness, uint32(n)); got != expected {
			t.Errorf("ExpandRandomness(_, %d) = %d, want %d", n, got, expected)
		}
	}
}

func TestDrawWinners(t *testing.T) {
	revealed := models.Raffle{
		ID:           "r1",
		EndTimestamp: testNow.Add(-24 * time.Hour),
		TotalPrizes:  3,
		Entrants:     models.EntrantSet{"w0", "w1", "w2", "w3", "w4"},
		Prizes:       []models.Prize{{Index: 0, Mint: "mint-a", Amount: 1}, {Index: 2, Mint: "mint-c", Amount: 5}},
		Randomness:   sequentialRandomness(),
	}

	winners, err := DrawWinners(revealed, "w3")
	if err != nil {
		t.Fatalf("DrawWinners: %v", err)
	}
	if len(winners) != 3 {
		t.Fatalf("expected 3 winners, got %d", len(winners))
	}

	wantTickets := []uint32{2, 3, 4}
	for i, w := range winners {
		if w.PrizeIndex != uint32(i) {
			t.Errorf("winner %d: prize index %d", i, w.PrizeIndex)
		}
		if w.TicketIndex != wantTickets[i] {
			t.Errorf("winner %d: ticket %d, want %d", i, w.TicketIndex, wantTickets[i])
		}
		if w.Wallet != revealed.Entrants[wantTickets[i]] {
			t.Errorf("winner %d: wallet %q", i, w.Wallet)
		}
		if w.IsYou != (w.Wallet == "w3") {
			t.Errorf("winner %d: IsYou = %v", i, w.IsYou)
		}
	}
	if winners[0].Prize == nil || winners[0].Prize.Mint != "mint-a" {
		t.Errorf("prize 0 not attached: %+v", winners[0].Prize)
	}
	if winners[1].Prize != nil {
		t.Errorf("prize 1 was never deposited, got %+v", winners[1].Prize)
	}
	if winners[2].Prize == nil || winners[2].Prize.Amount != 5 {
		t.Errorf("prize 2 not attached: %+v", winners[2].Prize)
	}
}

func TestDrawWinnersEdgeCases(t *testing.T) {
	t.Run("not revealed", func(t *testing.T) {
		_, err := DrawWinners(models.Raffle{TotalPrizes: 1, Entrants: models.EntrantSet{"w"}}, "")
		if !errors.Is(err, ErrWinnersNotRevealed) {
			t.Fatalf("expected ErrWinnersNotRevealed, got %v", err)
		}
	})

	t.Run("bad randomness", func(t *testing.T) {
		_, err := DrawWinners(models.Raffle{TotalPrizes: 1, Randomness: []byte{1, 2, 3}}, "")
		if !errors.Is(err, ErrInvalidRandomness) {
			t.Fatalf("expected ErrInvalidRandomness, got %v", err)
		}
	})

	t.Run("prize count above limit", func(t *testing.T) {
		r := models.Raffle{TotalPrizes: 4294967295, Entrants: models.EntrantSet{"w"}, Randomness: sequentialRandomness()}
		winners, err := DrawWinners(r, "")
		if !errors.Is(err, ErrTooManyPrizes) {
			t.Fatalf("expected ErrTooManyPrizes, got %v", err)
		}
		if winners != nil {
			t.Fatalf("expected no winners, got %d", len(winners))
		}
	})

	t.Run("prize count at limit", func(t *testing.T) {
		r := models.Raffle{TotalPrizes: MaxPrizes, Entrants: models.EntrantSet{"w"}, Randomness: sequentialRandomness()}
		winners, err := DrawWinners(r, "")
		if err != nil {
			t.Fatalf("DrawWinners: %v", err)
		}
		if len(winners) != MaxPrizes {
			t.Fatalf("expected %d winners, got %d", MaxPrizes, len(winners))
		}
	})

	t.Run("no entrants", func(t *testing.T) {
		winners, err := DrawWinners(models.Raffle{TotalPrizes: 2, Randomness: sequentialRandomness()}, "")
		if err != nil {
			t.Fatalf("DrawWinners: %v", err)
		}
		if winners == nil || len(winners) != 0 {
			t.Fatalf("expected an empty winner list, got %v", winners)
		}
	})

	t.Run("empty identity is never you", func(t *testing.T) {
		winners, err := DrawWinners(models.Raffle{TotalPrizes: 1, Entrants: models.EntrantSet{""}, Randomness: sequentialRandomness()}, "")
		if err != nil {
			t.Fatalf("DrawWinners: %v", err)
		}
		if winners[0].IsYou {
			t.Fatal("empty identity matched a winner")
		}
	})
}

func TestRaffleWinnersStatus(t *testing.T) {
	r := models.Raffle{ID: "r1", EndTimestamp: testNow.Add(-24 * time.Hour), TotalPrizes: 1, Entrants: models.EntrantSet{"w"}, Randomness: sequentialRandomness()}
	got, err := RaffleWinners(r, "w", testNow)
	if err != nil {
		t.Fatalf("RaffleWinners: %v", err)
	}
	if got.RaffleID != "r1" || got.Status != models.RaffleStatusRevealed {
		t.Fatalf("unexpected result %+v", got)
	}
	if len(got.Winners) != 1 || !got.Winners[0].IsYou {
		t.Fatalf("expected w to win the only prize, got %+v", got.Winners)
	}
}
