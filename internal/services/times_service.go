// Package services – TimesService
//
// This file implements the tiered prayer-time cache. A lookup consults, in
// strict order: the volatile in-process store, the durable cross-session
// store, and finally the upstream provider. Each tier is consulted only if
// the previous one missed or held an expired entry. A durable hit is
// rehydrated into the volatile tier; a successful fetch is written through
// to both. When the fetch fails, a stale entry from either tier is served
// rather than failing, since stale real data beats the static fallback;
// only when nothing usable exists anywhere does the lookup report
// ErrAllTiersExhausted.
//
// Durable writes after a successful flow are best-effort: a write failure
// is logged and does not alter the primary result.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gfarooqi/prayersync-sub001/internal/cache"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/tzconv"
)

// TimezoneResolver is the slice of TimezoneService the times cache needs.
type TimezoneResolver interface {
	Resolve(ctx context.Context, coord domain.Coordinate) (domain.TimezoneID, error)
}

// TimesService is the tiered cache facade. Construct once per process and
// share; the volatile tier is owned by this instance and never implicitly
// reinitialized.
type TimesService struct {
	Volatile cache.Store
	Durable  cache.Store
	Fetch    TimingsFetcher
	Zones    TimezoneResolver
	Conv     *tzconv.Converter

	// TTL for prayer-time entries. Timezone metadata is handled by the
	// resolver and never expires.
	TTL time.Duration

	// FetchTimeout bounds each upstream call; on expiry the fetch is
	// treated exactly like a transport failure.
	FetchTimeout time.Duration

	// Now is the clock seam; defaults to time.Now via the constructor.
	Now func() time.Time
}

// NewTimesService wires the cache tiers with the given TTL and fetch timeout.
func NewTimesService(volatile, durable cache.Store, fetch TimingsFetcher, zones TimezoneResolver, conv *tzconv.Converter, ttl, fetchTimeout time.Duration) *TimesService {
	return &TimesService{
		Volatile:     volatile,
		Durable:      durable,
		Fetch:        fetch,
		Zones:        zones,
		Conv:         conv,
		TTL:          ttl,
		FetchTimeout: fetchTimeout,
		Now:          time.Now,
	}
}

// KeyFor computes the cache key for a lookup at instant `at`. The civil
// date is taken in the coordinate's own zone: a request issued just before
// or after the caller's local midnight must land on the same calendar day
// as an observer standing at the coordinate.
func (s *TimesService) KeyFor(ctx context.Context, coord domain.Coordinate, at time.Time, method domain.CalculationMethod) (domain.CacheKey, domain.TimezoneID, error) {
	tz, err := s.Zones.Resolve(ctx, coord)
	if err != nil {
		return domain.CacheKey{}, "", err
	}
	loc, err := s.Conv.Location(tz)
	if err != nil {
		return domain.CacheKey{}, "", err
	}
	key := domain.CacheKey{
		Coord:  coord.Round(),
		Date:   domain.CivilDateOf(at, loc),
		Method: method,
	}
	return key, tz, nil
}

// GetPrayerTimes returns the prayer times governing instant `at` at the
// coordinate, under the given calculation method.
func (s *TimesService) GetPrayerTimes(ctx context.Context, coord domain.Coordinate, at time.Time, method domain.CalculationMethod) (domain.PrayerTimeSet, error) {
	if !coord.Valid() {
		return domain.PrayerTimeSet{}, ErrInvalidCoordinate
	}
	if !method.Known() {
		return domain.PrayerTimeSet{}, ErrUnknownMethod
	}
	key, _, err := s.KeyFor(ctx, coord, at, method)
	if err != nil {
		return domain.PrayerTimeSet{}, err
	}
	return s.GetByKey(ctx, key)
}

// GetByKey runs the tier cascade for an already-derived cache key.
func (s *TimesService) GetByKey(ctx context.Context, key domain.CacheKey) (domain.PrayerTimeSet, error) {
	now := s.Now()
	k := key.String()

	// Stale entries are remembered across tiers so a failed fetch can fall
	// back to the freshest expired data instead of the static default.
	var stale *domain.CacheEntry

	// Tier 1: volatile.
	if entry, ok := s.load(ctx, s.Volatile, tierVolatile, k); ok {
		if entry.Fresh(now, s.TTL) {
			cacheLookups.WithLabelValues(tierVolatile, outcomeHit).Inc()
			return entry.Times, nil
		}
		cacheLookups.WithLabelValues(tierVolatile, outcomeStale).Inc()
		stale = &entry
	} else {
		cacheLookups.WithLabelValues(tierVolatile, outcomeMiss).Inc()
	}

	// Tier 2: durable.
	if entry, ok := s.load(ctx, s.Durable, tierDurable, k); ok {
		if entry.Fresh(now, s.TTL) {
			cacheLookups.WithLabelValues(tierDurable, outcomeHit).Inc()
			s.store(ctx, s.Volatile, tierVolatile, k, entry) // rehydrate
			return entry.Times, nil
		}
		cacheLookups.WithLabelValues(tierDurable, outcomeStale).Inc()
		if stale == nil || entry.CreatedAt.After(stale.CreatedAt) {
			stale = &entry
		}
	} else {
		cacheLookups.WithLabelValues(tierDurable, outcomeMiss).Inc()
	}

	// Tier 3: upstream fetch, write-through on success.
	fetchCtx := ctx
	if s.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
	}
	day, err := s.Fetch.DayTimings(fetchCtx, key.Date, key.Coord, key.Method)
	if err == nil {
		cacheLookups.WithLabelValues(tierUpstream, outcomeHit).Inc()
		entry := domain.CacheEntry{CreatedAt: now, Times: day.Times}
		s.store(ctx, s.Volatile, tierVolatile, k, entry)
		s.store(ctx, s.Durable, tierDurable, k, entry)
		return day.Times, nil
	}
	cacheLookups.WithLabelValues(tierUpstream, outcomeError).Inc()
	if errors.Is(err, ErrInvalidUpstreamPayload) {
		// Logged at error: an outage is expected life but a malformed
		// payload means the provider contract moved under us.
		log.Error().Err(err).Str("key", k).Msg("upstream payload invalid")
	} else {
		log.Warn().Err(err).Str("key", k).Msg("upstream fetch failed")
	}

	if stale != nil {
		log.Warn().Str("key", k).Time("created_at", stale.CreatedAt).Msg("serving stale cache entry")
		return stale.Times, nil
	}
	return domain.PrayerTimeSet{}, ErrAllTiersExhausted
}

// Invalidate removes an entry from both writable tiers.
func (s *TimesService) Invalidate(ctx context.Context, key domain.CacheKey) error {
	k := key.String()
	verr := s.Volatile.Invalidate(ctx, k)
	derr := s.Durable.Invalidate(ctx, k)
	if verr != nil {
		return verr
	}
	return derr
}

// load reads and decodes an entry from one tier. Store errors and corrupt
// entries count as misses; both are logged and never abort the cascade.
func (s *TimesService) load(ctx context.Context, st cache.Store, tier, key string) (domain.CacheEntry, bool) {
	v, ok, err := st.Get(ctx, key)
	if err != nil {
		cacheLookups.WithLabelValues(tier, outcomeError).Inc()
		log.Warn().Err(err).Str("tier", tier).Str("key", key).Msg("cache read failed")
		return domain.CacheEntry{}, false
	}
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry, err := domain.DecodeCacheEntry(v)
	if err != nil {
		log.Warn().Err(err).Str("tier", tier).Str("key", key).Msg("corrupt cache entry")
		return domain.CacheEntry{}, false
	}
	return entry, true
}

// store encodes and writes an entry to one tier, best-effort.
func (s *TimesService) store(ctx context.Context, st cache.Store, tier, key string, entry domain.CacheEntry) {
	b, err := entry.Encode()
	if err != nil {
		log.Warn().Err(err).Str("tier", tier).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := st.Set(ctx, key, b); err != nil {
		log.Warn().Err(err).Str("tier", tier).Str("key", key).Msg("cache write failed")
	}
}
