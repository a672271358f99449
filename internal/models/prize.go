package models

// Prize defines a single prize deposited into a raffle.
// Index is the prize position, prize 0 is drawn first.
type Prize struct {
	Index  uint32 `bson:"index" json:"index" yaml:"index"`
	Mint   string `bson:"mint" json:"mint" yaml:"mint"`
	Amount uint64 `bson:"amount" json:"amount" yaml:"amount"`
}

// PrizeByIndex returns the prize deposited at index, if any
func (r Raffle) PrizeByIndex(index uint32) (Prize, bool) {
	for _, prize := range r.Prizes {
		if prize.Index == index {
			return prize, true
		}
	}
	return Prize{}, false
}
