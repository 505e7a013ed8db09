package ephemqd

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

var maxTimeoutSeconds = float64(math.MaxInt64 / int64(time.Second))

// ParseTimeout accepts Go duration strings ("200ms", "5s", "1m30s") and bare
// numbers meaning seconds ("5", "0.25"). Negative values are rejected.
func ParseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("timeout %q must not be negative", s)
		}
		return d, nil
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	if secs < 0 {
		return 0, fmt.Errorf("timeout %q must not be negative", s)
	}
	if secs > maxTimeoutSeconds {
		return 0, fmt.Errorf("timeout %q out of range", s)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
