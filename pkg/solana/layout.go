package solana

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
)

const (
	// RaffleAccountSize is the allocated size of a raffle account
	RaffleAccountSize = 8 + 300
	// EntrantsCapacity is the fixed number of entrant slots of an entrants account
	EntrantsCapacity = 1000
	// EntrantsAccountSize is the allocated size of an entrants account
	EntrantsAccountSize = 8 + 4 + 4 + 32*EntrantsCapacity

	pubkeyLen = 32
)

var errShortAccount = errors.New("account data too short")

// AccountDiscriminator returns the 8-byte tag the programme writes in front of an account of the named type
func AccountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:8]
}

// RaffleAccount is the decoded raffle account
type RaffleAccount struct {
	Creator       string
	TotalPrizes   uint32
	ClaimedPrizes uint32
	Randomness    []byte // nil until winners are revealed
	EndTimestamp  time.Time
	TicketPrice   uint64
	Entrants      string
	Name          string
	ImageURI      string
}

// EntrantsAccount is the decoded entrants account
type EntrantsAccount struct {
	Total    uint32
	Max      uint32
	Entrants []string // one entry per ticket, in purchase order
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) next(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", errShortAccount, n, r.off, len(r.buf))
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) pubkey() (string, error) {
	b, err := r.next(pubkeyLen)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkDiscriminator(r *reader, name string) error {
	tag, err := r.next(8)
	if err != nil {
		return err
	}
	want := AccountDiscriminator(name)
	for i := range want {
		if tag[i] != want[i] {
			return fmt.Errorf("not a %s account", name)
		}
	}
	return nil
}

// DecodeRaffleAccount decodes raffle account data, discriminator included
func DecodeRaffleAccount(data []byte) (*RaffleAccount, error) {
	r := &reader{buf: data}
	if err := checkDiscriminator(r, "Raffle"); err != nil {
		return nil, err
	}

	var (
		acc RaffleAccount
		err error
	)
	if acc.Creator, err = r.pubkey(); err != nil {
		return nil, err
	}
	if acc.TotalPrizes, err = r.u32(); err != nil {
		return nil, err
	}
	if acc.ClaimedPrizes, err = r.u32(); err != nil {
		return nil, err
	}

	hasRandomness, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch hasRandomness {
	case 0:
	case 1:
		b, err := r.next(32)
		if err != nil {
			return nil, err
		}
		acc.Randomness = append([]byte(nil), b...)
	default:
		return nil, fmt.Errorf("invalid randomness option tag %d", hasRandomness)
	}

	end, err := r.u64()
	if err != nil {
		return nil, err
	}
	acc.EndTimestamp = time.Unix(int64(end), 0).UTC()

	if acc.TicketPrice, err = r.u64(); err != nil {
		return nil, err
	}
	if acc.Entrants, err = r.pubkey(); err != nil {
		return nil, err
	}
	if acc.Name, err = r.str(); err != nil {
		return nil, err
	}
	if acc.ImageURI, err = r.str(); err != nil {
		return nil, err
	}
	return &acc, nil
}

// DecodeEntrantsAccount decodes entrants account data, discriminator included.
// Only the first Total slots are read.
func DecodeEntrantsAccount(data []byte) (*EntrantsAccount, error) {
	r := &reader{buf: data}
	if err := checkDiscriminator(r, "Entrants"); err != nil {
		return nil, err
	}

	total, err := r.u32()
	if err != nil {
		return nil, err
	}
	capacity, err := r.u32()
	if err != nil {
		return nil, err
	}
	if total > capacity || capacity > EntrantsCapacity {
		return nil, fmt.Errorf("invalid entrants counters total=%d max=%d", total, capacity)
	}

	entrants := make([]string, 0, total)
	for i := uint32(0); i < total; i++ {
		key, err := r.pubkey()
		if err != nil {
			return nil, err
		}
		entrants = append(entrants, key)
	}
	return &EntrantsAccount{Total: total, Max: capacity, Entrants: entrants}, nil
}
