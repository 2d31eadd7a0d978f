// Package timerange resolves relative range tokens into concrete day intervals.
package timerange

import (
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/report-bot/internal/command"
)

// ErrUnknownToken is returned for a range token outside the recognized set.
// The parser rejects such tokens before they get here, so seeing this error
// at runtime indicates a caller bug rather than bad user input.
var ErrUnknownToken = errors.New("unknown range token")

// Interval is a half-open calendar interval [Start, End). Both bounds are
// naive dates (midnight UTC, no time-of-day component).
type Interval struct {
	Start time.Time
	End   time.Time
}

// String renders the interval for captions and log lines.
func (iv Interval) String() string {
	return fmt.Sprintf("%s to %s", iv.Start.Format("2006-01-02"), iv.End.Format("2006-01-02"))
}

// Resolve converts a recognized range token into an interval anchored at now.
// The running day is always excluded to avoid partial-day data: End is
// yesterday relative to now, and Start is End minus the token's day count.
func Resolve(token string, now time.Time) (Interval, error) {
	n, ok := command.Days(token)
	if !ok {
		return Interval{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -n)
	return Interval{Start: start, End: end}, nil
}
