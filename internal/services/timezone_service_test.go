package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gfarooqi/prayersync-sub001/internal/cache"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/upstream"
)

// ----- Fakes -----

// fakeFetcher scripts upstream responses and records call counts.
type fakeFetcher struct {
	calls int
	day   upstream.DayTimings
	err   error

	lastDate   domain.CivilDate
	lastCoord  domain.Coordinate
	lastMethod domain.CalculationMethod
}

func (f *fakeFetcher) DayTimings(ctx context.Context, date domain.CivilDate, coord domain.Coordinate, method domain.CalculationMethod) (upstream.DayTimings, error) {
	f.calls++
	f.lastDate, f.lastCoord, f.lastMethod = date, coord, method
	return f.day, f.err
}

// failingStore always errors, simulating a broken durable tier.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte) error  { return errors.New("store down") }
func (failingStore) Invalidate(context.Context, string) error   { return errors.New("store down") }

var londonCoord = domain.Coordinate{Lat: 51.5072, Lon: -0.1276}

func sampleDay() upstream.DayTimings {
	return upstream.DayTimings{
		Times: domain.PrayerTimeSet{
			Fajr: "05:42", Sunrise: "06:40", Dhuhr: "12:05",
			Asr: "14:23", Maghrib: "16:41", Isha: "18:15",
		},
		Timezone: "Europe/London",
	}
}

// ----- Tests -----

func TestResolve_FetchesOncePerCoordinate(t *testing.T) {
	f := &fakeFetcher{day: sampleDay()}
	s := NewTimezoneService(cache.NewMemory(), f)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tz, err := s.Resolve(ctx, londonCoord)
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if tz != "Europe/London" {
			t.Fatalf("tz = %q", tz)
		}
	}
	if f.calls != 1 {
		t.Fatalf("upstream calls = %d; want exactly 1", f.calls)
	}
}

func TestResolve_DurableHitSkipsNetwork(t *testing.T) {
	durable := cache.NewMemory()
	durable.Set(context.Background(), "tz:51.5072,-0.1276", []byte("Europe/London"))

	f := &fakeFetcher{err: errors.New("network disabled")}
	s := NewTimezoneService(durable, f)

	tz, err := s.Resolve(context.Background(), londonCoord)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tz != "Europe/London" {
		t.Fatalf("tz = %q", tz)
	}
	if f.calls != 0 {
		t.Fatalf("upstream calls = %d; want 0", f.calls)
	}
}

func TestResolve_NearbyCoordinatesShareEntry(t *testing.T) {
	f := &fakeFetcher{day: sampleDay()}
	s := NewTimezoneService(cache.NewMemory(), f)
	ctx := context.Background()

	if _, err := s.Resolve(ctx, domain.Coordinate{Lat: 51.50721, Lon: -0.12762}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := s.Resolve(ctx, domain.Coordinate{Lat: 51.50718, Lon: -0.12758}); err != nil {
		t.Fatalf("second: %v", err)
	}
	if f.calls != 1 {
		t.Fatalf("upstream calls = %d; rounding should collapse these", f.calls)
	}
}

func TestResolve_MetadataMissing(t *testing.T) {
	day := sampleDay()
	day.Timezone = ""
	f := &fakeFetcher{day: day}
	s := NewTimezoneService(cache.NewMemory(), f)

	_, err := s.Resolve(context.Background(), londonCoord)
	if !errors.Is(err, ErrMetadataMissing) {
		t.Fatalf("err = %v; want ErrMetadataMissing", err)
	}
}

func TestResolve_UpstreamFailurePropagates(t *testing.T) {
	f := &fakeFetcher{err: upstream.ErrUnavailable}
	s := NewTimezoneService(cache.NewMemory(), f)

	_, err := s.Resolve(context.Background(), londonCoord)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v; want ErrUpstreamUnavailable", err)
	}
}

func TestResolve_InvalidCoordinate(t *testing.T) {
	s := NewTimezoneService(cache.NewMemory(), &fakeFetcher{})
	_, err := s.Resolve(context.Background(), domain.Coordinate{Lat: 123, Lon: 0})
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("err = %v; want ErrInvalidCoordinate", err)
	}
}

func TestResolve_BrokenDurableStillResolves(t *testing.T) {
	f := &fakeFetcher{day: sampleDay()}
	s := NewTimezoneService(failingStore{}, f)

	tz, err := s.Resolve(context.Background(), londonCoord)
	if err != nil {
		t.Fatalf("Resolve with broken durable: %v", err)
	}
	if tz != "Europe/London" {
		t.Fatalf("tz = %q", tz)
	}
}

func TestEvict_ForcesRefetch(t *testing.T) {
	f := &fakeFetcher{day: sampleDay()}
	s := NewTimezoneService(cache.NewMemory(), f)
	ctx := context.Background()

	if _, err := s.Resolve(ctx, londonCoord); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := s.Evict(ctx, londonCoord); err != nil {
		t.Fatalf("Evict: %v", err)
	}
	if _, err := s.Resolve(ctx, londonCoord); err != nil {
		t.Fatalf("Resolve after evict: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("upstream calls = %d; want 2 after eviction", f.calls)
	}
}

func TestResolve_UsesCurrentDateForLookup(t *testing.T) {
	f := &fakeFetcher{day: sampleDay()}
	s := NewTimezoneService(cache.NewMemory(), f)
	s.Now = func() time.Time { return time.Date(2025, 6, 13, 12, 0, 0, 0, time.UTC) }

	if _, err := s.Resolve(context.Background(), londonCoord); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := (domain.CivilDate{Year: 2025, Month: time.June, Day: 13}); f.lastDate != want {
		t.Fatalf("lookup date = %v; want %v", f.lastDate, want)
	}
}
