package services

import (
	"sort"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
)

// RaffleStore defines what the raffle list reads from the raffle store
type RaffleStore interface {
	Raffles() map[string]models.Raffle
	FetchAllRaffles()
	Fetching() bool
}

// RaffleListController derives and renders the explore list of raffles
type RaffleListController struct {
	store RaffleStore
	now   func() time.Time
}

// NewRaffleListController mounts the raffle list: it triggers the store fetch exactly once.
// now defaults to time.Now.
func NewRaffleListController(store RaffleStore, now func() time.Time) *RaffleListController {
	if now == nil {
		now = time.Now
	}
	store.FetchAllRaffles()
	return &RaffleListController{
		store: store,
		now:   now,
	}
}

// DeriveRaffles sorts the raffles latest-ending first and applies the filters.
// Equal end timestamps are ordered by ID. Owned-only with an empty identity keeps nothing;
// hide-ended keeps raffles ending strictly after now.
func DeriveRaffles(raffles map[string]models.Raffle, filters models.RaffleFilters, identity string, now time.Time) []models.Raffle {
	toShow := make([]models.Raffle, 0, len(raffles))
	for _, raffle := range raffles {
		toShow = append(toShow, raffle)
	}
	sort.SliceStable(toShow, func(i, j int) bool {
		if !toShow[i].EndTimestamp.Equal(toShow[j].EndTimestamp) {
			return toShow[i].EndTimestamp.After(toShow[j].EndTimestamp)
		}
		return toShow[i].ID < toShow[j].ID
	})

	if filters.OwnedOnly {
		toShow = filterRaffles(toShow, func(r models.Raffle) bool { return r.Entrants.Has(identity) })
	}
	if filters.HideEnded {
		toShow = filterRaffles(toShow, func(r models.Raffle) bool { return r.IsOngoing(now) })
	}
	return toShow
}

func filterRaffles(raffles []models.Raffle, keep func(models.Raffle) bool) []models.Raffle {
	kept := raffles[:0:0]
	for _, raffle := range raffles {
		if keep(raffle) {
			kept = append(kept, raffle)
		}
	}
	return kept
}

// CardClassName is the style class handed to every raffle card for a device class
func CardClassName(device models.DeviceClass) string {
	if device == "" {
		device = models.DeviceDesktop
	}
	return "raffleCardContainer--" + string(device)
}

// Render evaluates the view state against the current store snapshot
func (c *RaffleListController) Render(filters models.RaffleFilters, identity string, device models.DeviceClass) models.RaffleListView {
	raffles := c.store.Raffles()

	if len(raffles) == 0 {
		if c.store.Fetching() {
			return models.RaffleListView{State: models.ViewStateLoading, Raffles: []models.RaffleCard{}}
		}
		return models.RaffleListView{
			State:   models.ViewStateEmptySource,
			Message: models.MessageNoRafflesYet,
			Raffles: []models.RaffleCard{},
		}
	}

	now := c.now()
	derived := DeriveRaffles(raffles, filters, identity, now)
	view := models.RaffleListView{
		State:   models.ViewStatePopulated,
		Filters: &filters,
		Raffles: make([]models.RaffleCard, 0, len(derived)),
	}
	if len(derived) == 0 {
		view.Message = models.MessageNoFilteredHits
		return view
	}

	className := CardClassName(device)
	for _, raffle := range derived {
		view.Raffles = append(view.Raffles, models.NewRaffleCard(raffle, className, identity, now))
	}
	return view
}
