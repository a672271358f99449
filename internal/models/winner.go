package models

// Winner is the drawn ticket of one prize of a revealed raffle
type Winner struct {
	PrizeIndex  uint32 `json:"prizeIndex"`
	TicketIndex uint32 `json:"ticketIndex"`
	Wallet      string `json:"wallet"`
	Prize       *Prize `json:"prize,omitempty"` // nil when the prize was never deposited
	IsYou       bool   `json:"isYou"`
}

// RaffleWinners lists the winners of a raffle in prize order
type RaffleWinners struct {
	RaffleID string       `json:"raffleId"`
	Status   RaffleStatus `json:"status"`
	Winners  []Winner     `json:"winners"`
}
