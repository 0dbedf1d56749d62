package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// checkBound panics on a bound no die could have.
func checkBound(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("dice: no faces to draw from (n=%d)", n))
	}
}

// cryptoSource draws faces from the operating system's CSPRNG. It holds no
// state, so one value serves every concurrent roller.
type cryptoSource struct{}

// NewCryptoSource returns the Source used for live play, where a roll must
// not be predictable from earlier rolls.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn draws uniformly from [0, n). A failing CSPRNG panics rather than
// yielding a biased face.
func (cryptoSource) Intn(n int) int {
	checkBound(n)
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("dice: reading crypto/rand: %v", err))
	}
	return int(v.Int64())
}

// seededSource is a reproducible Source for replaying a session's rolls.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source; the same seed yields the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a pseudo-random int in [0, n).
func (s *seededSource) Intn(n int) int {
	checkBound(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
