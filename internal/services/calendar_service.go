// Package services – CalendarService
//
// This file orchestrates calendar export: for each requested civil day at
// the coordinate it obtains prayer times through the tiered cache, converts
// every wall-clock time to an exact UTC instant with the zone resolved for
// that coordinate, and hands the event list to the iCalendar encoder.
//
// Total cache exhaustion does not abort an export. The affected days fall
// back to the static default set so the subscriber always receives a
// calendar; the export is marked degraded so surfaces can say so.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/ics"
	"github.com/gfarooqi/prayersync-sub001/internal/tzconv"
)

// PrayerTimesSource is the slice of TimesService the exporter needs.
type PrayerTimesSource interface {
	GetByKey(ctx context.Context, key domain.CacheKey) (domain.PrayerTimeSet, error)
}

// Export is the result of one calendar export.
type Export struct {
	ICS      string
	Events   int
	Degraded bool // true when any day used the static fallback set
}

// CalendarService builds exportable calendars from the tiered cache.
type CalendarService struct {
	Times PrayerTimesSource
	Zones TimezoneResolver
	Conv  *tzconv.Converter

	// EventDuration is each event's end-start span (default 30m upstream
	// of here, in config). AlarmOffset is the reminder lead time; zero
	// disables alarms.
	EventDuration time.Duration
	AlarmOffset   time.Duration

	// Now is the clock seam; it stamps the generated document.
	Now func() time.Time
}

// NewCalendarService wires the exporter.
func NewCalendarService(times PrayerTimesSource, zones TimezoneResolver, conv *tzconv.Converter, eventDuration, alarmOffset time.Duration) *CalendarService {
	return &CalendarService{
		Times:         times,
		Zones:         zones,
		Conv:          conv,
		EventDuration: eventDuration,
		AlarmOffset:   alarmOffset,
		Now:           time.Now,
	}
}

// BuildCalendar exports `days` civil days of prayer events starting from
// the civil day observed at instant `from` at the coordinate.
func (s *CalendarService) BuildCalendar(ctx context.Context, coord domain.Coordinate, method domain.CalculationMethod, from time.Time, days int) (Export, error) {
	if !coord.Valid() {
		return Export{}, ErrInvalidCoordinate
	}
	if !method.Known() {
		return Export{}, ErrUnknownMethod
	}
	if days < 1 {
		days = 1
	}

	tz, err := s.Zones.Resolve(ctx, coord)
	if err != nil {
		return Export{}, err
	}
	loc, err := s.Conv.Location(tz)
	if err != nil {
		return Export{}, err
	}

	return s.buildRange(ctx, coord, method, tz, domain.CivilDateOf(from, loc), days)
}

// BuildCalendarRange is BuildCalendar with an explicit starting civil day,
// for callers that already hold a calendar date rather than an instant.
func (s *CalendarService) BuildCalendarRange(ctx context.Context, coord domain.Coordinate, method domain.CalculationMethod, start domain.CivilDate, days int) (Export, error) {
	if !coord.Valid() {
		return Export{}, ErrInvalidCoordinate
	}
	if !method.Known() {
		return Export{}, ErrUnknownMethod
	}
	if days < 1 {
		days = 1
	}

	tz, err := s.Zones.Resolve(ctx, coord)
	if err != nil {
		return Export{}, err
	}
	return s.buildRange(ctx, coord, method, tz, start, days)
}

func (s *CalendarService) buildRange(ctx context.Context, coord domain.Coordinate, method domain.CalculationMethod, tz domain.TimezoneID, start domain.CivilDate, days int) (Export, error) {
	coord = coord.Round()

	var (
		events   []domain.CalendarEvent
		degraded bool
	)
	for i := 0; i < days; i++ {
		date := start.AddDays(i)
		key := domain.CacheKey{Coord: coord, Date: date, Method: method}

		times, err := s.Times.GetByKey(ctx, key)
		if errors.Is(err, ErrAllTiersExhausted) {
			times = domain.FallbackTimes()
			degraded = true
			fallbackServed.Inc()
		} else if err != nil {
			return Export{}, err
		}

		for _, pt := range times.EventTimes() {
			startUTC, err := s.Conv.ToUTC(date, pt.Clock, tz)
			if err != nil {
				// Malformed time data is a hard error: inventing an
				// instant would yield a plausible but wrong event.
				return Export{}, fmt.Errorf("convert %s %s: %w", pt.Name, date, err)
			}
			events = append(events, domain.CalendarEvent{
				Name:        pt.Name,
				StartUTC:    startUTC,
				EndUTC:      startUTC.Add(s.EventDuration),
				Location:    coord.Key(),
				AlarmOffset: s.AlarmOffset,
			})
		}
	}

	title := "Prayer Times"
	desc := fmt.Sprintf("Daily prayer times at %s (%s)", coord.Key(), method.Name())
	if degraded {
		desc += " (includes offline fallback times)"
	}
	doc := ics.Encode(events, title, desc, s.Now().UTC())
	return Export{ICS: doc, Events: len(events), Degraded: degraded}, nil
}
