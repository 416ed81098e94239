// Package domain defines the value types shared by the prayer-time engine:
// coordinates, civil dates, calculation methods, prayer-time sets, cache
// entries and keys, and calendar events. Everything here is plain data;
// behavior lives in the services that compose these types.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Coordinate is a geographic position in floating-point degrees. It is the
// identity component of cache keys, so it is rounded to a fixed precision
// before use (about 11 m at the equator) to keep keys stable across callers
// that supply slightly different precision.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Round returns the coordinate rounded to four decimal places.
func (c Coordinate) Round() Coordinate {
	return Coordinate{
		Lat: math.Round(c.Lat*10000) / 10000,
		Lon: math.Round(c.Lon*10000) / 10000,
	}
}

// Key returns the canonical string form used inside cache keys,
// e.g. "51.5072,-0.1276".
func (c Coordinate) Key() string {
	r := c.Round()
	return fmt.Sprintf("%.4f,%.4f", r.Lat, r.Lon)
}

// Valid reports whether the coordinate lies within the WGS84 range.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// CivilDate is a calendar day with no time-of-day or zone attached.
// Prayer-time data is indexed at this granularity.
type CivilDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// CivilDateOf returns the civil date observed at instant t in loc.
// The zone matters: the same instant is a different calendar day on
// either side of local midnight.
func CivilDateOf(t time.Time, loc *time.Location) CivilDate {
	y, m, d := t.In(loc).Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// String renders the date as YYYY-MM-DD, the form used in cache keys and
// upstream requests.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AddDays returns the civil date n days after d.
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	y, m, day := t.Date()
	return CivilDate{Year: y, Month: m, Day: day}
}

// TimezoneID is an IANA zone identifier such as "Europe/London". Once
// resolved for a coordinate it is treated as a permanent fact and is never
// re-derived except by explicit cache eviction.
type TimezoneID string

// CalculationMethod identifies the astronomical convention used to compute
// prayer times. The numeric values mirror the upstream provider's fixed
// enumeration and are a data contract: they must not be renumbered.
type CalculationMethod int

const (
	MethodShiaIthnaAshari CalculationMethod = 0
	MethodKarachi         CalculationMethod = 1
	MethodISNA            CalculationMethod = 2
	MethodMWL             CalculationMethod = 3
	MethodUmmAlQura       CalculationMethod = 4
	MethodEgyptian        CalculationMethod = 5
	MethodTehran          CalculationMethod = 7

	// DefaultMethod is used when a caller does not specify one.
	DefaultMethod = MethodMWL
)

// methodNames maps upstream method identifiers to their issuing authorities.
var methodNames = map[CalculationMethod]string{
	MethodShiaIthnaAshari: "Shia Ithna-Ashari",
	MethodKarachi:         "University of Islamic Sciences, Karachi",
	MethodISNA:            "Islamic Society of North America",
	MethodMWL:             "Muslim World League",
	MethodUmmAlQura:       "Umm Al-Qura University, Makkah",
	MethodEgyptian:        "Egyptian General Authority of Survey",
	MethodTehran:          "Institute of Geophysics, University of Tehran",
}

// Name returns the human-readable authority behind the method, or "Unknown"
// for identifiers outside the supported enumeration.
func (m CalculationMethod) Name() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return "Unknown"
}

// Known reports whether m is one of the supported upstream identifiers.
func (m CalculationMethod) Known() bool {
	_, ok := methodNames[m]
	return ok
}

// KnownMethods returns the supported identifiers in ascending order.
func KnownMethods() []CalculationMethod {
	ms := make([]CalculationMethod, 0, len(methodNames))
	for m := range methodNames {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i] < ms[j] })
	return ms
}

// Prayer names, in canonical daily order. Sunrise is informational only and
// is never exported as a calendar event.
const (
	PrayerFajr    = "Fajr"
	PrayerSunrise = "Sunrise"
	PrayerDhuhr   = "Dhuhr"
	PrayerAsr     = "Asr"
	PrayerMaghrib = "Maghrib"
	PrayerIsha    = "Isha"
)

// PrayerTimeSet holds one day's prayer times as local wall-clock strings
// ("HH:MM") for a single coordinate and calculation method. Values are
// immutable once produced; copies are cheap (plain struct of strings).
type PrayerTimeSet struct {
	Fajr    string `json:"fajr"`
	Sunrise string `json:"sunrise"`
	Dhuhr   string `json:"dhuhr"`
	Asr     string `json:"asr"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isha"`
}

// EventTimes returns the (name, wall-clock) pairs that become calendar
// events, in canonical order. Sunrise is deliberately absent.
func (p PrayerTimeSet) EventTimes() []PrayerTime {
	return []PrayerTime{
		{Name: PrayerFajr, Clock: p.Fajr},
		{Name: PrayerDhuhr, Clock: p.Dhuhr},
		{Name: PrayerAsr, Clock: p.Asr},
		{Name: PrayerMaghrib, Clock: p.Maghrib},
		{Name: PrayerIsha, Clock: p.Isha},
	}
}

// Complete reports whether every exportable prayer has a non-empty time.
func (p PrayerTimeSet) Complete() bool {
	for _, pt := range p.EventTimes() {
		if pt.Clock == "" {
			return false
		}
	}
	return true
}

// PrayerTime pairs a prayer name with its local wall-clock time.
type PrayerTime struct {
	Name  string
	Clock string
}

// FallbackTimes returns the static, deliberately non-authoritative set
// served when every cache tier fails. It exists solely so a calendar export
// is never empty while fully offline; callers should label it degraded.
func FallbackTimes() PrayerTimeSet {
	return PrayerTimeSet{
		Fajr:    "05:30",
		Sunrise: "06:45",
		Dhuhr:   "12:00",
		Asr:     "15:30",
		Maghrib: "17:15",
		Isha:    "18:45",
	}
}

// CacheKey is the deterministic composite under which one day's data is
// stored. The Date component is always the civil date at the coordinate's
// own zone, never the calling process's local calendar day.
type CacheKey struct {
	Coord  Coordinate
	Date   CivilDate
	Method CalculationMethod
}

// String renders the key, e.g. "times:51.5072,-0.1276:2025-06-13:3".
// Two requests that produce the same string must be served identical data
// regardless of which tier satisfied them.
func (k CacheKey) String() string {
	return fmt.Sprintf("times:%s:%s:%d", k.Coord.Key(), k.Date, k.Method)
}

// CacheEntry wraps a PrayerTimeSet with its creation instant. An entry is
// valid while now-CreatedAt < TTL; timezone metadata entries never expire.
type CacheEntry struct {
	CreatedAt time.Time     `json:"created_at"`
	Times     PrayerTimeSet `json:"times"`
}

// Fresh reports whether the entry is still within its TTL at instant now.
func (e CacheEntry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CreatedAt) < ttl
}

// Encode serializes the entry for the durable byte store.
func (e CacheEntry) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeCacheEntry parses a durable-store value back into a CacheEntry.
func DecodeCacheEntry(b []byte) (CacheEntry, error) {
	var e CacheEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return CacheEntry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	return e, nil
}

// CalendarEvent is one exportable timed block: a prayer with its exact UTC
// start and end. Events are constructed transiently per export and never
// persisted. UID derivation lives in the encoder so that identical inputs
// always produce identical identifiers.
type CalendarEvent struct {
	Name        string
	StartUTC    time.Time
	EndUTC      time.Time
	Location    string
	AlarmOffset time.Duration // before start; zero disables the alarm
}
