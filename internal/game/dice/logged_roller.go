package dice

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PoolRoller rolls d12 pools from a Source and logs each pool at debug level
// with its size and faces.
type PoolRoller struct {
	src    Source
	logger *zap.Logger
}

// NewPoolRoller creates a PoolRoller that rolls with src and logs to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewPoolRoller(src Source, logger *zap.Logger) *PoolRoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolRoller{src: src, logger: logger}
}

// RollPool rolls n d12s as one unit.
//
// Precondition: n >= 1.
// Postcondition: on success len(result) == n and every face is in [1, 12];
// if ctx is already done no die is rolled and ctx.Err() is returned.
func (r *PoolRoller) RollPool(ctx context.Context, n int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("dice: pool size %d must be >= 1", n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	faces := make([]int, n)
	for i := range faces {
		faces[i] = r.src.Intn(Sides) + 1
	}
	r.logger.Debug("pool roll",
		zap.Int("pool", n),
		zap.Ints("dice", faces),
	)
	return faces, nil
}
