package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/middleware"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"github.com/ArowuTest/raffle-explorer/internal/services"
	"github.com/ArowuTest/raffle-explorer/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RaffleLister renders the raffle list
type RaffleLister interface {
	Render(filters models.RaffleFilters, identity string, device models.DeviceClass) models.RaffleListView
}

// RaffleSnapshot is the read and refresh side of the raffle store
type RaffleSnapshot interface {
	Raffle(id string) (models.Raffle, bool)
	Raffles() map[string]models.Raffle
	FetchAllRaffles()
	Fetching() bool
	LastError() error
	LastFetched() time.Time
}

// RaffleHandler handles raffle related HTTP requests
type RaffleHandler struct {
	lister RaffleLister
	store  RaffleSnapshot
	finder repositories.RaffleFinder
	now    func() time.Time
}

// NewRaffleHandler creates a new RaffleHandler. finder may be nil; when set, raffles missing
// from the snapshot are looked up there, e.g. ones imported since the last refresh.
func NewRaffleHandler(lister RaffleLister, store RaffleSnapshot, finder repositories.RaffleFinder) *RaffleHandler {
	return &RaffleHandler{
		lister: lister,
		store:  store,
		finder: finder,
		now:    time.Now,
	}
}

// lookupRaffle resolves the :id raffle, writing the error response when it cannot
func (h *RaffleHandler) lookupRaffle(c *gin.Context) (models.Raffle, bool) {
	id := c.Param("id")
	if raffle, ok := h.store.Raffle(id); ok {
		return raffle, true
	}
	if h.finder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
		return models.Raffle{}, false
	}

	raffle, err := h.finder.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrRaffleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
			return models.Raffle{}, false
		}
		logger.Error("failed to look up raffle", zap.String("raffle", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve raffle"})
		return models.Raffle{}, false
	}
	return *raffle, true
}

func bindFilters(c *gin.Context) (models.RaffleFilters, error) {
	var filters models.RaffleFilters
	var err error
	if filters.OwnedOnly, err = utils.ParseBool(c.Query("own")); err != nil {
		return filters, err
	}
	if filters.HideEnded, err = utils.ParseBool(c.Query("hideEnded")); err != nil {
		return filters, err
	}
	return filters, nil
}

func deviceClass(c *gin.Context) models.DeviceClass {
	return utils.ResolveDeviceClass(c.Query("device"), c.GetHeader("User-Agent"))
}

// ListRaffles handles GET /raffles
func (h *RaffleHandler) ListRaffles(c *gin.Context) {
	filters, err := bindFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter value: " + err.Error()})
		return
	}

	view := h.lister.Render(filters, middleware.Wallet(c), deviceClass(c))
	c.JSON(http.StatusOK, view)
}

// GetRaffle handles GET /raffles/:id
func (h *RaffleHandler) GetRaffle(c *gin.Context) {
	raffle, ok := h.lookupRaffle(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.NewRaffleCard(raffle, services.CardClassName(deviceClass(c)), middleware.Wallet(c), h.now()))
}

// GetRaffleWinners handles GET /raffles/:id/winners
func (h *RaffleHandler) GetRaffleWinners(c *gin.Context) {
	raffle, ok := h.lookupRaffle(c)
	if !ok {
		return
	}

	winners, err := services.RaffleWinners(raffle, middleware.Wallet(c), h.now())
	if err != nil {
		if errors.Is(err, services.ErrWinnersNotRevealed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Winners not revealed yet", "status": raffle.Status(h.now())})
			return
		}
		if errors.Is(err, services.ErrTooManyPrizes) || errors.Is(err, services.ErrInvalidRandomness) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot draw winners: " + err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to draw winners: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// RefreshRaffles handles POST /raffles/refresh
func (h *RaffleHandler) RefreshRaffles(c *gin.Context) {
	alreadyRunning := h.store.Fetching()
	h.store.FetchAllRaffles()
	c.JSON(http.StatusAccepted, gin.H{
		"message":        "Raffle refresh started",
		"alreadyRunning": alreadyRunning,
	})
}

// Health handles GET /health
func (h *RaffleHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":   "ok",
		"raffles":  len(h.store.Raffles()),
		"fetching": h.store.Fetching(),
	}
	if fetched := h.store.LastFetched(); !fetched.IsZero() {
		body["lastFetched"] = fetched
	}
	if err := h.store.LastError(); err != nil {
		body["lastError"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
