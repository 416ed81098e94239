// Package services – TimezoneService
//
// This file implements the resolver that maps a coordinate to the IANA
// timezone governing it. A zone identifier is a permanent fact about a
// location, so resolution results are cached without expiry: first in a
// process-local map, then in the durable store under a "tz:" key. The
// network is consulted at most once per distinct (rounded) coordinate for
// the lifetime of the durable cache.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gfarooqi/prayersync-sub001/internal/cache"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/upstream"
)

// TimingsFetcher is the upstream capability the services need: one day of
// timings plus location metadata, or an error. Satisfied by *upstream.Client.
type TimingsFetcher interface {
	DayTimings(ctx context.Context, date domain.CivilDate, coord domain.Coordinate, method domain.CalculationMethod) (upstream.DayTimings, error)
}

// TimezoneService resolves and permanently caches coordinate → zone.
type TimezoneService struct {
	Durable cache.Store
	Fetch   TimingsFetcher

	// Now is the clock seam; defaults to time.Now. The resolver only needs
	// it to pick a civil date for the metadata lookup.
	Now func() time.Time

	mu    sync.Mutex
	known map[string]domain.TimezoneID
}

// NewTimezoneService constructs a resolver over the given durable store and
// fetch capability.
func NewTimezoneService(durable cache.Store, fetch TimingsFetcher) *TimezoneService {
	return &TimezoneService{
		Durable: durable,
		Fetch:   fetch,
		Now:     time.Now,
		known:   make(map[string]domain.TimezoneID),
	}
}

// tzKey builds the durable-store key for a coordinate's zone metadata.
func tzKey(coord domain.Coordinate) string {
	return "tz:" + coord.Key()
}

// Resolve returns the IANA zone for the coordinate.
//
// Lookup order: process-local map, durable store (no freshness check,
// these entries never expire), then exactly one upstream metadata lookup.
// The metadata lookup is a minimal timings request for the current civil
// date; the times are discarded and only the zone identifier is kept.
func (s *TimezoneService) Resolve(ctx context.Context, coord domain.Coordinate) (domain.TimezoneID, error) {
	if !coord.Valid() {
		return "", fmt.Errorf("%w: %.4f,%.4f", ErrInvalidCoordinate, coord.Lat, coord.Lon)
	}
	coord = coord.Round()
	key := tzKey(coord)

	s.mu.Lock()
	if tz, ok := s.known[key]; ok {
		s.mu.Unlock()
		return tz, nil
	}
	s.mu.Unlock()

	if v, ok, err := s.Durable.Get(ctx, key); err != nil {
		// A broken durable store does not block resolution; fall through
		// to the network.
		log.Warn().Err(err).Str("key", key).Msg("timezone durable read failed")
	} else if ok {
		tz := domain.TimezoneID(v)
		s.remember(key, tz)
		return tz, nil
	}

	// UTC is as good as any zone for picking "today" here: the metadata
	// lookup only needs a date the provider will answer for.
	date := domain.CivilDateOf(s.Now(), time.UTC)
	day, err := s.Fetch.DayTimings(ctx, date, coord, domain.DefaultMethod)
	if err != nil {
		return "", err
	}
	if day.Timezone == "" {
		return "", fmt.Errorf("%w: coordinate %s", ErrMetadataMissing, coord.Key())
	}

	// Best-effort durable write: a failure costs a refetch next process,
	// not correctness.
	if err := s.Durable.Set(ctx, key, []byte(day.Timezone)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("timezone durable write failed")
	}
	s.remember(key, day.Timezone)
	return day.Timezone, nil
}

// Evict drops a coordinate's zone from both caches. The only way a zone is
// ever re-derived.
func (s *TimezoneService) Evict(ctx context.Context, coord domain.Coordinate) error {
	key := tzKey(coord.Round())
	s.mu.Lock()
	delete(s.known, key)
	s.mu.Unlock()
	return s.Durable.Invalidate(ctx, key)
}

func (s *TimezoneService) remember(key string, tz domain.TimezoneID) {
	s.mu.Lock()
	s.known[key] = tz
	s.mu.Unlock()
}
