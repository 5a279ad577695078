package services

import (
	cryptorand "crypto/rand"
	"encoding/binary"
)

// Rand is the randomness the engine draws from. Production uses a
// crypto-backed source for gambling fairness; tests inject deterministic
// implementations.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

type secureRand struct{}

// NewSecureRand returns a Rand backed by crypto/rand.
func NewSecureRand() Rand {
	return secureRand{}
}

func (secureRand) Intn(n int) int {
	if n <= 0 {
		panic("Intn: n must be positive")
	}
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err != nil {
		panic(err)
	}
	return int(binary.BigEndian.Uint64(b[:]) % uint64(n))
}

func (r secureRand) Float64() float64 {
	// 53 bits of precision, uniform in [0, 1).
	return float64(r.Intn(1<<53)) / (1 << 53)
}

// randRange returns a uniform integer in [min, max].
func randRange(rng Rand, min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + int64(rng.Intn(int(max-min+1)))
}
