// Package tzconv converts locally-quoted wall-clock times into exact UTC
// instants. This is the one genuinely delicate piece of arithmetic in the
// engine: a zone's UTC offset depends on the civil date (standard vs
// daylight time), so the offset must be derived per date, never reused from
// "now" or from another date.
//
// The conversion leans on the Go runtime's zone database: constructing a
// time.Time with time.Date in a loaded *time.Location applies the offset in
// force on that specific date, which is exactly the re-derivation the
// correctness property requires. Converting the result with .UTC() yields
// the true instant.
package tzconv

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

var (
	// ErrInvalidTimeString indicates a wall-clock string that is not
	// HH:MM or HH:MM:SS. Surfaced to the caller: silently guessing a time
	// would produce a plausible-looking but wrong calendar event.
	ErrInvalidTimeString = errors.New("invalid time string")

	// ErrUnknownTimezone indicates an IANA identifier the zone database
	// cannot resolve.
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// Clock is a parsed time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses "HH:MM" (optionally "HH:MM:SS") strictly: two-digit
// fields, in-range values, nothing else. It is decoupled from any upstream
// wire format; callers strip provider decorations before parsing.
func ParseClock(s string) (Clock, error) {
	var c Clock
	switch len(s) {
	case 5:
		if s[2] != ':' {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
		}
	case 8:
		if s[2] != ':' || s[5] != ':' {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
		}
	default:
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	var err error
	if c.Hour, err = twoDigits(s[0:2]); err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if c.Minute, err = twoDigits(s[3:5]); err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	if len(s) == 8 {
		if c.Second, err = twoDigits(s[6:8]); err != nil {
			return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
		}
	}
	if c.Hour > 23 || c.Minute > 59 || c.Second > 59 {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}
	return c, nil
}

func twoDigits(s string) (int, error) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, errors.New("not digits")
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), nil
}

// Converter turns (civil date, wall clock, zone) triples into UTC instants.
// Loaded locations are memoized so an export touching many events pays the
// zone-database read once per zone, not once per event. Memoization does not
// change observable behavior: the location object itself carries the full
// transition table, and the per-date offset is still derived per call.
type Converter struct {
	mu   sync.Mutex
	locs map[domain.TimezoneID]*time.Location
}

// NewConverter returns a Converter with an empty location cache.
func NewConverter() *Converter {
	return &Converter{locs: make(map[domain.TimezoneID]*time.Location)}
}

// ToUTC computes the exact UTC instant at which the given wall clock occurs
// on the given civil date in the given zone.
func (c *Converter) ToUTC(date domain.CivilDate, clockStr string, tz domain.TimezoneID) (time.Time, error) {
	clock, err := ParseClock(clockStr)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := c.location(tz)
	if err != nil {
		return time.Time{}, err
	}
	// time.Date resolves the zone offset as of this exact civil timestamp,
	// which is what makes the conversion DST-correct.
	local := time.Date(date.Year, date.Month, date.Day, clock.Hour, clock.Minute, clock.Second, 0, loc)
	return local.UTC(), nil
}

// location loads and memoizes an IANA zone.
func (c *Converter) location(tz domain.TimezoneID) (*time.Location, error) {
	if tz == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownTimezone)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if loc, ok := c.locs[tz]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(string(tz))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, tz)
	}
	c.locs[tz] = loc
	return loc, nil
}

// Location exposes the memoized loader for callers that need the zone
// itself (e.g. to compute the civil date at a coordinate).
func (c *Converter) Location(tz domain.TimezoneID) (*time.Location, error) {
	return c.location(tz)
}
