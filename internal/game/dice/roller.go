package dice

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Roller produces the faces of a whole pool in one call. It is the only
// suspension point of a resolution; implementations must not return partial pools.
type Roller interface {
	RollPool(ctx context.Context, n int) ([]int, error)
}

// ErrExhausted is returned by FixedRoller when it has too few faces left.
var ErrExhausted = errors.New("dice: fixed roller exhausted")

// FixedRoller replays a predetermined sequence of faces. It is used for
// deterministic tests and for replaying recorded sessions.
type FixedRoller struct {
	mu    sync.Mutex
	faces []int
}

// NewFixedRoller returns a FixedRoller that hands out faces in order.
//
// Precondition: every face is in [1, 12].
func NewFixedRoller(faces ...int) *FixedRoller {
	return &FixedRoller{faces: append([]int(nil), faces...)}
}

// RollPool returns the next n faces.
//
// Postcondition: when fewer than n faces remain nothing is consumed and
// ErrExhausted is returned.
func (f *FixedRoller) RollPool(ctx context.Context, n int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("dice: pool size %d must be >= 1", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.faces) < n {
		return nil, fmt.Errorf("%w: want %d faces, have %d", ErrExhausted, n, len(f.faces))
	}
	out := append([]int(nil), f.faces[:n]...)
	f.faces = f.faces[n:]
	return out, nil
}

// Remaining reports how many faces are left.
func (f *FixedRoller) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.faces)
}

// Resolve rolls a pool of n dice with roller and counts successes under bands.
//
// Precondition: roller must be non-nil; n >= 1.
// Postcondition: Result.Successes == bands.Count(Result.Dice).
func Resolve(ctx context.Context, roller Roller, bands Bands, n int) (Result, error) {
	faces, err := roller.RollPool(ctx, n)
	if err != nil {
		return Result{}, err
	}
	return Result{Pool: n, Dice: faces, Successes: bands.Count(faces)}, nil
}
