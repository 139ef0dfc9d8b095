package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// DefaultKeyLifetime is used when a key request omits expiresIn.
const DefaultKeyLifetime = "1d"

var durationPattern = regexp.MustCompile(`^(\d+)([hdw])$`)

var unitMillis = map[string]int64{
	"h": 60 * 60 * 1000,
	"d": 24 * 60 * 60 * 1000,
	"w": 7 * 24 * 60 * 60 * 1000,
}

// ParseDuration turns a specifier such as "1h", "7d" or "2w" into a duration.
// Zero and values that overflow time.Duration are rejected.
func ParseDuration(spec string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(spec)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, spec)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, spec)
	}

	perUnit := unitMillis[m[2]] * int64(time.Millisecond)
	if n > math.MaxInt64/perUnit {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidDuration, spec)
	}
	return time.Duration(n * perUnit), nil
}
