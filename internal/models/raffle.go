package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// RaffleStatus is derived at read time from the end timestamp, never stored
type RaffleStatus string

const (
	RaffleStatusOngoing  RaffleStatus = "ONGOING"
	RaffleStatusEnded    RaffleStatus = "ENDED"
	RaffleStatusRevealed RaffleStatus = "REVEALED" // ended and winners revealed
)

// Raffle represents a raffle account read from the raffle programme
type Raffle struct {
	ID              string     `bson:"_id" json:"id" yaml:"id"`
	Creator         string     `bson:"creator" json:"creator" yaml:"creator"`
	Name            string     `bson:"name" json:"name" yaml:"name"`
	ImageURI        string     `bson:"imageUri" json:"imageUri" yaml:"imageUri"`
	EndTimestamp    time.Time  `bson:"endTimestamp" json:"endTimestamp" yaml:"endTimestamp"`
	TicketPrice     uint64     `bson:"ticketPrice" json:"ticketPrice" yaml:"ticketPrice"`
	TotalPrizes     uint32     `bson:"totalPrizes" json:"totalPrizes" yaml:"totalPrizes"`
	ClaimedPrizes   uint32     `bson:"claimedPrizes" json:"claimedPrizes" yaml:"claimedPrizes"`
	EntrantsAccount string     `bson:"entrantsAccount" json:"entrantsAccount" yaml:"entrantsAccount"`
	MaxEntrants     uint32     `bson:"maxEntrants" json:"maxEntrants" yaml:"maxEntrants"`
	Entrants        EntrantSet `bson:"entrants" json:"entrants" yaml:"entrants"`
	Prizes          []Prize    `bson:"prizes" json:"prizes" yaml:"prizes"`
	Randomness      []byte     `bson:"randomness,omitempty" json:"randomness,omitempty" yaml:"randomness,omitempty"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

// IsOngoing reports whether the raffle ends strictly after now
func (r Raffle) IsOngoing(now time.Time) bool {
	return now.Before(r.EndTimestamp)
}

// Status returns the status of the raffle as seen at now
func (r Raffle) Status(now time.Time) RaffleStatus {
	if r.IsOngoing(now) {
		return RaffleStatusOngoing
	}
	if len(r.Randomness) > 0 {
		return RaffleStatusRevealed
	}
	return RaffleStatusEnded
}

// TicketPriceSOL returns the ticket price converted from lamports to SOL
func (r Raffle) TicketPriceSOL() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(r.TicketPrice), -9)
}

// EntrantSet is the ordered list of entrant identities of a raffle.
// An identity may appear more than once, one entry per ticket bought.
type EntrantSet []string

// Has reports whether id holds at least one ticket. The empty identity never matches.
func (s EntrantSet) Has(id string) bool {
	if id == "" {
		return false
	}
	for _, entrant := range s {
		if entrant == id {
			return true
		}
	}
	return false
}

// Tickets counts the tickets held by id
func (s EntrantSet) Tickets(id string) int {
	if id == "" {
		return 0
	}
	n := 0
	for _, entrant := range s {
		if entrant == id {
			n++
		}
	}
	return n
}
