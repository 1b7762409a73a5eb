package engine

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the event-draw randomness. The default is
// crypto-backed; tests and the simulator inject seeded sources.
type RandomSource interface {
	Float64() float64
	Uint64() uint64
}

type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

func (cryptoRNG) Uint64() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
func (s *seededRNG) Uint64() uint64   { return s.r.Uint64() }

// turnRoll derives the event roll for one turn of one game. Keying the PCG
// on (seed, turn) makes the draw independent of how many RNG calls earlier
// turns consumed.
func turnRoll(seed uint64, turn int) float64 {
	return rand.New(rand.NewPCG(seed, uint64(turn))).Float64()
}
