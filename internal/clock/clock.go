// Package clock provides an injectable time source so calendar-boundary
// logic can be exercised with fixed dates in tests.
package clock

import "time"

// ISODateFormat is the canonical date-string layout used for seeds and
// last-reset bookkeeping.
const ISODateFormat = "2006-01-02"

// Clock supplies the current time. Production uses the wall clock; tests
// inject fixed instants to hit boundary conditions exactly.
type Clock interface {
	Now() time.Time
}

// ISODate formats t as YYYY-MM-DD in t's location.
func ISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}

// Real is the wall-clock implementation.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

// NewFixed returns a Fixed clock pinned to t.
func NewFixed(t time.Time) Fixed { return Fixed{T: t} }

func (f Fixed) Now() time.Time { return f.T }
