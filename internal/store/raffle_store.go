package store

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"go.uber.org/zap"
)

// RafflesStore holds the latest raffle snapshot read from a source.
// At most one fetch runs at a time.
type RafflesStore struct {
	source       repositories.RaffleSource
	fetchTimeout time.Duration
	log          *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.RWMutex
	raffles     map[string]models.Raffle
	fetching    bool
	lastErr     error
	lastFetched time.Time
}

// NewRafflesStore creates an empty store. fetchTimeout <= 0 means no timeout.
func NewRafflesStore(source repositories.RaffleSource, fetchTimeout time.Duration, log *zap.Logger) *RafflesStore {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RafflesStore{
		source:       source,
		fetchTimeout: fetchTimeout,
		log:          log.Named("raffles-store"),
		ctx:          ctx,
		cancel:       cancel,
		raffles:      map[string]models.Raffle{},
	}
}

// Raffles returns a copy of the current snapshot keyed by raffle ID
func (s *RafflesStore) Raffles() map[string]models.Raffle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]models.Raffle, len(s.raffles))
	for id, raffle := range s.raffles {
		snapshot[id] = raffle
	}
	return snapshot
}

// Raffle returns a single raffle of the snapshot
func (s *RafflesStore) Raffle(id string) (models.Raffle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raffle, ok := s.raffles[id]
	return raffle, ok
}

// Fetching reports whether a fetch is in flight
func (s *RafflesStore) Fetching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetching
}

// LastError returns the error of the latest fetch, nil if it succeeded
func (s *RafflesStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// LastFetched returns when the snapshot was last replaced
func (s *RafflesStore) LastFetched() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetched
}

// FetchAllRaffles starts a background fetch and returns immediately.
// The call is dropped when a fetch is already running.
func (s *RafflesStore) FetchAllRaffles() {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		s.log.Debug("fetch already in flight, skipping")
		return
	}
	s.fetching = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.fetch()
}

func (s *RafflesStore) fetch() {
	defer s.wg.Done()

	ctx := s.ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	started := time.Now()
	raffles, err := s.source.FetchRaffles(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false

	if err != nil {
		s.lastErr = err
		s.log.Error("failed to fetch raffles, keeping previous snapshot",
			zap.Error(err),
			zap.Int("raffles", len(s.raffles)),
			zap.Duration("elapsed", time.Since(started)))
		return
	}

	snapshot := make(map[string]models.Raffle, len(raffles))
	for _, raffle := range raffles {
		snapshot[raffle.ID] = raffle
	}
	s.raffles = snapshot
	s.lastErr = nil
	s.lastFetched = time.Now()
	s.log.Info("raffles fetched", zap.Int("raffles", len(snapshot)), zap.Duration("elapsed", time.Since(started)))
}

// Wait blocks until the in-flight fetch, if any, has finished
func (s *RafflesStore) Wait() {
	s.wg.Wait()
}

// Run refreshes the snapshot every interval until ctx is done. interval <= 0 returns at once.
func (s *RafflesStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.FetchAllRaffles()
		}
	}
}

// Close cancels the in-flight fetch and waits for it to return
func (s *RafflesStore) Close() {
	s.cancel()
	s.wg.Wait()
}
