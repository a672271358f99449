package services

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

var (
	// ErrWinnersNotRevealed is returned while a raffle has no randomness yet
	ErrWinnersNotRevealed = errors.New("winners not revealed yet")
	// ErrInvalidRandomness is returned when the stored randomness is not 32 bytes
	ErrInvalidRandomness = errors.New("invalid raffle randomness")
	// ErrTooManyPrizes is returned when a raffle claims more prizes than MaxPrizes
	ErrTooManyPrizes = errors.New("too many prizes")
)

const randomnessLen = 32

// MaxPrizes bounds the prizes drawn for one raffle
const MaxPrizes = 1000

// ExpandRandomness derives the n-th draw from the revealed randomness:
// the first four bytes, little endian, of sha256(randomness || le32(n)).
func ExpandRandomness(randomness []byte, n uint32) uint32 {
	var index [4]byte
	binary.LittleEndian.PutUint32(index[:], n)

	h := sha256.New()
	h.Write(randomness)
	h.Write(index[:])
	return binary.LittleEndian.Uint32(h.Sum(nil)[:4])
}

// DrawWinners returns the winning ticket of every prize of a revealed raffle.
// A raffle without entrants has no winners.
func DrawWinners(raffle models.Raffle, identity string) ([]models.Winner, error) {
	if len(raffle.Randomness) == 0 {
		return nil, ErrWinnersNotRevealed
	}
	if len(raffle.Randomness) != randomnessLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidRandomness, len(raffle.Randomness))
	}
	if raffle.TotalPrizes > MaxPrizes {
		return nil, fmt.Errorf("%w: %d, limit %d", ErrTooManyPrizes, raffle.TotalPrizes, MaxPrizes)
	}

	winners := make([]models.Winner, 0, raffle.TotalPrizes)
	total := uint32(len(raffle.Entrants))
	if total == 0 {
		return winners, nil
	}

	for prizeIndex := uint32(0); prizeIndex < raffle.TotalPrizes; prizeIndex++ {
		ticket := ExpandRandomness(raffle.Randomness, prizeIndex) % total
		winner := models.Winner{
			PrizeIndex:  prizeIndex,
			TicketIndex: ticket,
			Wallet:      raffle.Entrants[ticket],
			IsYou:       identity != "" && raffle.Entrants[ticket] == identity,
		}
		if prize, ok := raffle.PrizeByIndex(prizeIndex); ok {
			winner.Prize = &prize
		}
		winners = append(winners, winner)
	}
	return winners, nil
}

// RaffleWinners wraps DrawWinners with the raffle status seen at now
func RaffleWinners(raffle models.Raffle, identity string, now time.Time) (models.RaffleWinners, error) {
	winners, err := DrawWinners(raffle, identity)
	if err != nil {
		return models.RaffleWinners{}, err
	}
	return models.RaffleWinners{
		RaffleID: raffle.ID,
		Status:   raffle.Status(now),
		Winners:  winners,
	}, nil
}
