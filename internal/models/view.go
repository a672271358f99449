package models

import "time"

// ViewState is one of the three mutually exclusive states of the raffle list
type ViewState string

const (
	ViewStateLoading     ViewState = "LOADING"
	ViewStateEmptySource ViewState = "EMPTY_SOURCE"
	ViewStatePopulated   ViewState = "POPULATED"
)

const (
	MessageNoRafflesYet   = "More raffles will be coming soon!"
	MessageNoFilteredHits = "No raffles to display."
)

// RaffleFilters holds the two user toggles of the raffle list
type RaffleFilters struct {
	OwnedOnly bool `form:"own" json:"ownedOnly"`
	HideEnded bool `form:"hideEnded" json:"hideEnded"`
}

// RaffleCard is what the card component receives for a single raffle
type RaffleCard struct {
	Raffle         Raffle       `json:"raffle"`
	ClassName      string       `json:"className"`
	Status         RaffleStatus `json:"status"`
	TicketPriceSOL string       `json:"ticketPriceSol"`
	Tickets        int          `json:"tickets,omitempty"` // tickets held by the current wallet
}

// NewRaffleCard builds the card of raffle as seen by identity at now
func NewRaffleCard(raffle Raffle, className, identity string, now time.Time) RaffleCard {
	return RaffleCard{
		Raffle:         raffle,
		ClassName:      className,
		Status:         raffle.Status(now),
		TicketPriceSOL: raffle.TicketPriceSOL().String(),
		Tickets:        raffle.Entrants.Tickets(identity),
	}
}

// RaffleListView is the rendered raffle list.
// Filters and Raffles are only meaningful in the populated state.
type RaffleListView struct {
	State   ViewState      `json:"state"`
	Message string         `json:"message,omitempty"`
	Filters *RaffleFilters `json:"filters,omitempty"`
	Raffles []RaffleCard   `json:"raffles"`
}
