package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

// gatedSource blocks every fetch until a result is sent on results
type gatedSource struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	results chan fetchResult
}

type fetchResult struct {
	raffles []models.Raffle
	err     error
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		started: make(chan struct{}, 10),
		results: make(chan fetchResult),
	}
}

func (g *gatedSource) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.started <- struct{}{}

	select {
	case r := <-g.results:
		return r.raffles, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSource) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func sample(ids ...string) []models.Raffle {
	raffles := make([]models.Raffle, 0, len(ids))
	for _, id := range ids {
		raffles = append(raffles, models.Raffle{ID: id, EndTimestamp: time.Unix(1700000000, 0).UTC()})
	}
	return raffles
}

func TestFetchAllRafflesDeduplicates(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 0, nil)
	defer s.Close()

	s.FetchAllRaffles()
	<-source.started
	if !s.Fetching() {
		t.Fatal("store should report an in-flight fetch")
	}

	s.FetchAllRaffles()
	s.FetchAllRaffles()

	source.results <- fetchResult{raffles: sample("a", "b")}
	s.Wait()

	if got := source.callCount(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
	if s.Fetching() {
		t.Error("fetch should be finished")
	}
	if got := len(s.Raffles()); got != 2 {
		t.Errorf("snapshot holds %d raffles, want 2", got)
	}
	if s.LastFetched().IsZero() {
		t.Error("LastFetched not recorded")
	}
}

func TestFetchFailureKeepsSnapshot(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 0, nil)
	defer s.Close()

	s.FetchAllRaffles()
	<-source.started
	source.results <- fetchResult{raffles: sample("a")}
	s.Wait()

	s.FetchAllRaffles()
	<-source.started
	source.results <- fetchResult{err: errors.New("rpc down")}
	s.Wait()

	if _, ok := s.Raffle("a"); !ok {
		t.Error("previous snapshot was dropped after a failed fetch")
	}
	if s.LastError() == nil {
		t.Error("LastError should record the failure")
	}

	s.FetchAllRaffles()
	<-source.started
	source.results <- fetchResult{raffles: sample("b", "c")}
	s.Wait()

	if s.LastError() != nil {
		t.Errorf("LastError = %v after a successful fetch", s.LastError())
	}
	if _, ok := s.Raffle("a"); ok {
		t.Error("snapshot should be replaced, not merged")
	}
	if got := len(s.Raffles()); got != 2 {
		t.Errorf("snapshot holds %d raffles, want 2", got)
	}
}

func TestRafflesReturnsCopy(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 0, nil)
	defer s.Close()

	s.FetchAllRaffles()
	<-source.started
	source.results <- fetchResult{raffles: sample("a")}
	s.Wait()

	snapshot := s.Raffles()
	delete(snapshot, "a")
	if _, ok := s.Raffle("a"); !ok {
		t.Error("mutating the returned map changed the store")
	}
}

func TestFetchTimeout(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 20*time.Millisecond, nil)
	defer s.Close()

	s.FetchAllRaffles()
	<-source.started
	s.Wait()

	if !errors.Is(s.LastError(), context.DeadlineExceeded) {
		t.Errorf("LastError = %v, want deadline exceeded", s.LastError())
	}
}

func TestCloseCancelsFetch(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 0, nil)

	s.FetchAllRaffles()
	<-source.started
	s.Close()

	if !errors.Is(s.LastError(), context.Canceled) {
		t.Errorf("LastError = %v, want canceled", s.LastError())
	}
}

func TestRunRefreshesPeriodically(t *testing.T) {
	source := newGatedSource()
	s := NewRafflesStore(source, 0, nil)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-source.started:
			source.results <- fetchResult{raffles: sample("a")}
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not trigger a fetch")
		}
	}

	cancel()
	<-done
	if source.callCount() < 2 {
		t.Errorf("source called %d times, want at least 2", source.callCount())
	}
}
