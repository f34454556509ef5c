package cards

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource is the randomness dependency injected into the engine and
// orchestrator. It must never be a module-level mutable default.
type RandomSource interface {
	Intn(n int) int
}

// cryptoRNG draws from crypto/rand, suitable for networked play.
type cryptoRNG struct{}

func (cryptoRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.IntN(n)
	}
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}

// DefaultRNG returns the crypto-backed source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG is a replicable source for tests and simulations.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic source seeded with seed.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

// Shuffle permutes the slice in place with a Fisher-Yates walk over rng.
// Length and multiset of elements are preserved for any input.
func Shuffle(rng RandomSource, deck []*Card) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}
