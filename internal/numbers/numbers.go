package numbers

import (
	"errors"
	"fmt"
	"time"
)

// ErrNegative reports a duration parameter that is required to be non-negative.
var ErrNegative = errors.New("negative duration")

// NonNegative returns d unchanged, or ErrNegative if d < 0.
//
// Lifespan parameters across the module share this check so they all fail
// the same way, before any state is touched.
func NonNegative(d time.Duration) (time.Duration, error) {
	if d < 0 {
		return d, fmt.Errorf("%w: %s", ErrNegative, d)
	}
	return d, nil
}
