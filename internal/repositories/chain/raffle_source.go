package chain

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/pkg/solana"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// maxAccountsPerRequest is the getMultipleAccounts limit of public RPC nodes
const maxAccountsPerRequest = 100

// AccountReader is the part of the RPC client the source needs
type AccountReader interface {
	GetProgramAccounts(ctx context.Context, programID string, filter solana.ProgramAccountsFilter) ([]solana.KeyedAccount, error)
	GetMultipleAccounts(ctx context.Context, addresses []string) ([][]byte, error)
}

// RaffleSource reads raffles straight from the raffle programme accounts
type RaffleSource struct {
	rpc       AccountReader
	programID string
	MockAPI   bool
}

// NewRaffleSource creates a RaffleSource. With mockAPI set no RPC call is made.
func NewRaffleSource(rpc AccountReader, programID string, mockAPI bool) *RaffleSource {
	return &RaffleSource{
		rpc:       rpc,
		programID: programID,
		MockAPI:   mockAPI,
	}
}

// FetchRaffles loads every raffle account of the programme together with its entrants
func (s *RaffleSource) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	if s.MockAPI {
		return mockRaffles(time.Now()), nil
	}

	logger.Debug("chain source: fetching raffle accounts...", zap.String("program", s.programID))
	accounts, err := s.rpc.GetProgramAccounts(ctx, s.programID, solana.ProgramAccountsFilter{
		DataSize: solana.RaffleAccountSize,
		Memcmp:   &solana.MemcmpFilter{Offset: 0, Bytes: solana.AccountDiscriminator("Raffle")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch raffle accounts: %w", err)
	}

	raffles := make([]models.Raffle, 0, len(accounts))
	entrantsAddresses := make([]string, 0, len(accounts))
	for _, account := range accounts {
		decoded, err := solana.DecodeRaffleAccount(account.Data)
		if err != nil {
			logger.Warn("chain source: skipping undecodable raffle account", zap.String("raffle", account.Pubkey), zap.Error(err))
			continue
		}
		raffles = append(raffles, models.Raffle{
			ID:              account.Pubkey,
			Creator:         decoded.Creator,
			Name:            decoded.Name,
			ImageURI:        decoded.ImageURI,
			EndTimestamp:    decoded.EndTimestamp,
			TicketPrice:     decoded.TicketPrice,
			TotalPrizes:     decoded.TotalPrizes,
			ClaimedPrizes:   decoded.ClaimedPrizes,
			EntrantsAccount: decoded.Entrants,
			Randomness:      decoded.Randomness,
			Entrants:        models.EntrantSet{},
			Prizes:          []models.Prize{},
		})
		entrantsAddresses = append(entrantsAddresses, decoded.Entrants)
	}

	for start := 0; start < len(entrantsAddresses); start += maxAccountsPerRequest {
		end := start + maxAccountsPerRequest
		if end > len(entrantsAddresses) {
			end = len(entrantsAddresses)
		}

		data, err := s.rpc.GetMultipleAccounts(ctx, entrantsAddresses[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch entrants accounts: %w", err)
		}

		for i, raw := range data {
			raffle := &raffles[start+i]
			// closed entrants accounts are gone once every prize was claimed
			if raw == nil {
				continue
			}
			entrants, err := solana.DecodeEntrantsAccount(raw)
			if err != nil {
				logger.Warn("chain source: skipping undecodable entrants account", zap.String("raffle", raffle.ID), zap.Error(err))
				continue
			}
			raffle.Entrants = models.EntrantSet(entrants.Entrants)
			raffle.MaxEntrants = entrants.Max
		}
	}

	logger.Debug("chain source: fetching raffle accounts... done", zap.Int("raffles", len(raffles)))
	return raffles, nil
}

// mockRaffles generates a fixed set of sample raffles around now
func mockRaffles(now time.Time) []models.Raffle {
	rng := rand.New(rand.NewSource(42))
	key := func() string {
		b := make([]byte, 32)
		rng.Read(b)
		return base58.Encode(b)
	}

	wallets := make([]string, 8)
	for i := range wallets {
		wallets[i] = key()
	}

	offsets := []time.Duration{72 * time.Hour, 6 * time.Hour, 30 * time.Minute, -2 * time.Hour, -48 * time.Hour, 240 * time.Hour}
	raffles := make([]models.Raffle, 0, len(offsets))
	for i, offset := range offsets {
		entrants := make(models.EntrantSet, 0, 16)
		for n := rng.Intn(16); n > 0; n-- {
			entrants = append(entrants, wallets[rng.Intn(len(wallets))])
		}

		raffle := models.Raffle{
			ID:              key(),
			Creator:         wallets[0],
			Name:            fmt.Sprintf("Sample raffle #%d", i+1),
			ImageURI:        fmt.Sprintf("https://example.com/raffles/%d.png", i+1),
			EndTimestamp:    now.Add(offset).Truncate(time.Second).UTC(),
			TicketPrice:     uint64(rng.Intn(10)+1) * 1_000_000,
			TotalPrizes:     1,
			EntrantsAccount: key(),
			MaxEntrants:     solana.EntrantsCapacity,
			Entrants:        entrants,
			Prizes:          []models.Prize{{Index: 0, Mint: key(), Amount: 1}},
		}
		if offset < -24*time.Hour {
			raffle.Randomness = make([]byte, 32)
			rng.Read(raffle.Randomness)
		}
		raffles = append(raffles, raffle)
	}
	return raffles
}
