package routes

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/config"
	"github.com/ArowuTest/raffle-explorer/internal/handlers"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"github.com/ArowuTest/raffle-explorer/internal/services"
	"github.com/ArowuTest/raffle-explorer/internal/store"
	"github.com/ArowuTest/raffle-explorer/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

type staticSource struct {
	raffles []models.Raffle
}

func (s *staticSource) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	return s.raffles, nil
}

func (s *staticSource) FindByID(ctx context.Context, id string) (*models.Raffle, error) {
	for i := range s.raffles {
		if s.raffles[i].ID == id {
			raffle := s.raffles[i]
			return &raffle, nil
		}
	}
	return nil, repositories.ErrRaffleNotFound
}

type testServer struct {
	router *gin.Engine
	store  *store.RafflesStore
	source *staticSource
}

func newTestServer(t *testing.T, raffles []models.Raffle) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-key"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedHosts: []string{"*"}},
		Admin:  config.AdminConfig{APIKeyHash: string(hash)},
	}

	source := &staticSource{raffles: raffles}
	rafflesStore := store.NewRafflesStore(source, time.Second, nil)
	t.Cleanup(rafflesStore.Close)

	controller := services.NewRaffleListController(rafflesStore, time.Now)
	rafflesStore.Wait()

	tokens, err := jwt.NewWalletTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	router := SetupRouter(cfg, HandlerDependencies{
		RaffleHandler: handlers.NewRaffleHandler(controller, rafflesStore, source),
		AuthHandler:   handlers.NewAuthHandler(services.NewAuthService(tokens, time.Minute)),
		Tokens:        tokens,
	})
	return &testServer{router: router, store: rafflesStore, source: source}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func signIn(t *testing.T, s *testServer) (string, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	wallet := base58.Encode(pub)

	w := s.do(t, http.MethodPost, "/api/v1/auth/challenge", models.ChallengeRequest{PublicKey: wallet}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("challenge status = %d: %s", w.Code, w.Body.String())
	}
	var challenge models.ChallengeResponse
	decode(t, w, &challenge)

	signature := base58.Encode(ed25519.Sign(priv, []byte(challenge.Message)))
	w = s.do(t, http.MethodPost, "/api/v1/auth/verify", models.VerifyRequest{PublicKey: wallet, Signature: signature}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d: %s", w.Code, w.Body.String())
	}
	var verified models.VerifyResponse
	decode(t, w, &verified)
	return wallet, verified.Token
}

func TestListRafflesAsSignedInWallet(t *testing.T) {
	now := time.Now().UTC()
	s := newTestServer(t, nil)
	wallet, token := signIn(t, s)

	s.source.raffles = []models.Raffle{
		{ID: "R1", EndTimestamp: now.Add(-24 * time.Hour), Entrants: models.EntrantSet{wallet}},
		{ID: "R2", EndTimestamp: now.Add(24 * time.Hour), Entrants: models.EntrantSet{"someone"}},
		{ID: "R3", EndTimestamp: now.Add(48 * time.Hour), Entrants: models.EntrantSet{wallet}, TicketPrice: 1_500_000},
	}
	s.store.FetchAllRaffles()
	s.store.Wait()

	w := s.do(t, http.MethodGet, "/api/v1/raffles?own=true&hideEnded=true&device=phone", nil,
		map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var view models.RaffleListView
	decode(t, w, &view)
	if view.State != models.ViewStatePopulated || len(view.Raffles) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
	card := view.Raffles[0]
	if card.Raffle.ID != "R3" || card.ClassName != "raffleCardContainer--phone" || card.Tickets != 1 {
		t.Errorf("unexpected card %+v", card)
	}
	if card.TicketPriceSOL != "0.0015" {
		t.Errorf("ticketPriceSol = %s, want 0.0015", card.TicketPriceSOL)
	}

	// anonymous owned-only lists nothing
	w = s.do(t, http.MethodGet, "/api/v1/raffles?own=true", nil, nil)
	decode(t, w, &view)
	if view.State != models.ViewStatePopulated || view.Message != models.MessageNoFilteredHits || len(view.Raffles) != 0 {
		t.Errorf("unexpected anonymous view %+v", view)
	}
}

func TestListRafflesEmptySourceAndBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/raffles", nil, nil)
	var view models.RaffleListView
	decode(t, w, &view)
	if view.State != models.ViewStateEmptySource || view.Message != models.MessageNoRafflesYet {
		t.Errorf("unexpected view %+v", view)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/raffles?hideEnded=maybe", nil, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/raffles", nil, map[string]string{"Authorization": "Bearer forged"}); w.Code != http.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", w.Code)
	}
}

func TestGetRaffle(t *testing.T) {
	s := newTestServer(t, []models.Raffle{{ID: "R1", EndTimestamp: time.Now().Add(-time.Hour), Randomness: []byte{1}}})

	w := s.do(t, http.MethodGet, "/api/v1/raffles/R1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var card models.RaffleCard
	decode(t, w, &card)
	if card.Raffle.ID != "R1" || card.Status != models.RaffleStatusRevealed {
		t.Errorf("unexpected card %+v", card)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/raffles/missing", nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("missing raffle status = %d, want 404", w.Code)
	}

	// stored after the last refresh: not in the snapshot, found in the repository
	s.source.raffles = append(s.source.raffles, models.Raffle{ID: "R2", EndTimestamp: time.Now().Add(time.Hour)})
	if _, ok := s.store.Raffle("R2"); ok {
		t.Fatal("R2 should not be in the snapshot yet")
	}
	w = s.do(t, http.MethodGet, "/api/v1/raffles/R2", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("repository lookup status = %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &card)
	if card.Raffle.ID != "R2" || card.Status != models.RaffleStatusOngoing {
		t.Errorf("unexpected card %+v", card)
	}
}

func TestRefreshRaffles(t *testing.T) {
	s := newTestServer(t, nil)
	s.source.raffles = []models.Raffle{{ID: "R1", EndTimestamp: time.Now().Add(time.Hour)}}

	if w := s.do(t, http.MethodPost, "/api/v1/raffles/refresh", nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh without key status = %d, want 401", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/v1/raffles/refresh", nil, map[string]string{"X-Admin-Key": "admin-key"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("refresh status = %d, want 202", w.Code)
	}
	s.store.Wait()
	if _, ok := s.store.Raffle("R1"); !ok {
		t.Error("refresh did not reload the snapshot")
	}
}

func TestHealthAndTheme(t *testing.T) {
	s := newTestServer(t, []models.Raffle{{ID: "R1", EndTimestamp: time.Now()}})

	w := s.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	var health map[string]interface{}
	decode(t, w, &health)
	if health["status"] != "ok" || health["raffles"] != float64(1) {
		t.Errorf("unexpected health %v", health)
	}

	w = s.do(t, http.MethodGet, "/api/v1/theme?device=phone", nil, nil)
	var theme models.Theme
	decode(t, w, &theme)
	if theme.Device != models.DevicePhone || theme.Typography["h1"].FontSize != "20px" {
		t.Errorf("unexpected theme %+v", theme)
	}
}

func TestVerifyRejectsUnknownChallenge(t *testing.T) {
	s := newTestServer(t, nil)
	pub, _, _ := ed25519.GenerateKey(nil)
	w := s.do(t, http.MethodPost, "/api/v1/auth/verify",
		models.VerifyRequest{PublicKey: base58.Encode(pub), Signature: "abc"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	if w := s.do(t, http.MethodPost, "/api/v1/auth/challenge", map[string]string{}, nil); w.Code != http.StatusBadRequest {
		t.Errorf("empty challenge request status = %d, want 400", w.Code)
	}
}

func TestRaffleWinnersRoute(t *testing.T) {
	now := time.Now().UTC()
	randomness := make([]byte, 32)
	for i := range randomness {
		randomness[i] = byte(i)
	}
	s := newTestServer(t, []models.Raffle{
		{ID: "revealed", EndTimestamp: now.Add(-time.Hour), TotalPrizes: 1, Entrants: models.EntrantSet{"a", "b", "c", "d", "e"}, Randomness: randomness},
		{ID: "pending", EndTimestamp: now.Add(time.Hour), TotalPrizes: 1, Entrants: models.EntrantSet{"a"}},
		{ID: "oversized", EndTimestamp: now.Add(-time.Hour), TotalPrizes: 4294967295, Entrants: models.EntrantSet{"a"}, Randomness: randomness},
	})

	w := s.do(t, http.MethodGet, "/api/v1/raffles/revealed/winners", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got models.RaffleWinners
	decode(t, w, &got)
	if got.Status != models.RaffleStatusRevealed || len(got.Winners) != 1 || got.Winners[0].Wallet != "c" {
		t.Fatalf("unexpected winners %+v", got)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/raffles/pending/winners", nil, nil); w.Code != http.StatusConflict {
		t.Fatalf("pending raffle status = %d, want 409", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/raffles/oversized/winners", nil, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("oversized raffle status = %d, want 422", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/v1/raffles/missing/winners", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing raffle status = %d, want 404", w.Code)
	}
}
