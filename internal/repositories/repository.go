package repositories

import (
	"context"
	"errors"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

// ErrRaffleNotFound is returned when no raffle has the requested ID
var ErrRaffleNotFound = errors.New("raffle not found")

// RaffleSource defines where raffle snapshots come from
type RaffleSource interface {
	FetchRaffles(ctx context.Context) ([]models.Raffle, error)
}

// RaffleFinder looks a single raffle up in persisted data
type RaffleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Raffle, error)
}

// RaffleRepository defines the interface for persisted raffle data
type RaffleRepository interface {
	RaffleSource
	RaffleFinder
	UpsertMany(ctx context.Context, raffles []models.Raffle) error
	Count(ctx context.Context) (int64, error)
}
