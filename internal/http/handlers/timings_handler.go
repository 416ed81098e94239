// Prayer timings HTTP handler.
//
//   - GET /timings  (prayer times for a coordinate, civil date, and method)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/services"
	"github.com/gfarooqi/prayersync-sub001/internal/tzconv"
)

//
// Service contracts (context-aware)
//

// TimesProvider defines the timing-resolution operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context for cancellation and timeouts.
type TimesProvider interface {
	// KeyFor resolves the coordinate's zone and derives the cache key for
	// the civil date observed there at instant `at`.
	KeyFor(ctx context.Context, coord domain.Coordinate, at time.Time, method domain.CalculationMethod) (domain.CacheKey, domain.TimezoneID, error)
	// GetByKey returns the prayer times for an already-derived key.
	GetByKey(ctx context.Context, key domain.CacheKey) (domain.PrayerTimeSet, error)
}

// CalendarExporter defines the calendar-export operations consumed by HTTP
// handlers.
type CalendarExporter interface {
	// BuildCalendar exports a day range starting at the civil day observed
	// at instant `from` at the coordinate.
	BuildCalendar(ctx context.Context, coord domain.Coordinate, method domain.CalculationMethod, from time.Time, days int) (services.Export, error)
	// BuildCalendarRange exports a day range starting at an explicit date.
	BuildCalendarRange(ctx context.Context, coord domain.Coordinate, method domain.CalculationMethod, start domain.CivilDate, days int) (services.Export, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for timings and calendar export. It
// depends on abstract service interfaces to keep transport concerns
// separate from resolution logic.
type Handlers struct {
	times   TimesProvider
	cal     CalendarExporter
	maxDays int

	// now is the clock seam for date defaulting; tests override it.
	now func() time.Time
}

// New constructs a Handlers instance bound to the given services. maxDays
// caps the calendar export range per request.
func New(times TimesProvider, cal CalendarExporter, maxDays int) *Handlers {
	if maxDays < 1 {
		maxDays = 1
	}
	return &Handlers{times: times, cal: cal, maxDays: maxDays, now: time.Now}
}

//
// DTOs
//

// TimingsResponse is the JSON payload returned by GET /timings.
type TimingsResponse struct {
	Date       string               `json:"date"`
	Timezone   string               `json:"timezone"`
	Method     int                  `json:"method"`
	MethodName string               `json:"method_name"`
	Times      domain.PrayerTimeSet `json:"times"`
}

// GetTimings handles GET /timings.
//
// Query parameters:
//   - lat, lon: coordinate (required, decimal degrees)
//   - method:   calculation method id (optional, defaults to Muslim World League)
//   - date:     civil date YYYY-MM-DD in the coordinate's own zone
//     (optional, defaults to today there)
func (h *Handlers) GetTimings(c *gin.Context) {
	coord, valid := parseCoordinate(c)
	if !valid {
		return
	}
	method, valid := parseMethod(c)
	if !valid {
		return
	}

	ctx := c.Request.Context()
	key, tz, err := h.times.KeyFor(ctx, coord, h.now(), method)
	if err != nil {
		failFromService(c, err)
		return
	}

	if raw := c.Query("date"); raw != "" {
		date, perr := parseCivilDate(raw)
		if perr != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date must be YYYY-MM-DD")
			return
		}
		key.Date = date
	}

	times, err := h.times.GetByKey(ctx, key)
	if err != nil {
		failFromService(c, err)
		return
	}

	ok(c, http.StatusOK, TimingsResponse{
		Date:       key.Date.String(),
		Timezone:   string(tz),
		Method:     int(key.Method),
		MethodName: key.Method.Name(),
		Times:      times,
	})
}

//
// Shared query parsing and error mapping
//

// parseCoordinate reads lat/lon and fails the request on bad input.
func parseCoordinate(c *gin.Context) (domain.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lat and lon are required decimal degrees")
		return domain.Coordinate{}, false
	}
	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "coordinate out of range")
		return domain.Coordinate{}, false
	}
	return coord, true
}

// parseMethod reads the optional method id, defaulting when absent.
func parseMethod(c *gin.Context) (domain.CalculationMethod, bool) {
	raw := c.Query("method")
	if raw == "" {
		return domain.DefaultMethod, true
	}
	n, err := strconv.Atoi(raw)
	method := domain.CalculationMethod(n)
	if err != nil || !method.Known() {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown calculation method")
		return 0, false
	}
	return method, true
}

// parseCivilDate parses a strict YYYY-MM-DD string.
func parseCivilDate(s string) (domain.CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return domain.CivilDate{}, err
	}
	return domain.CivilDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// failFromService maps service-layer sentinel errors onto HTTP statuses and
// stable codes.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCoordinate):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "coordinate out of range")
	case errors.Is(err, services.ErrUnknownMethod):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown calculation method")
	case errors.Is(err, services.ErrAllTiersExhausted):
		fail(c, http.StatusServiceUnavailable, ErrCodeTimesUnavailable, "prayer times temporarily unavailable")
	case errors.Is(err, services.ErrInvalidUpstreamPayload),
		errors.Is(err, tzconv.ErrUnknownTimezone),
		errors.Is(err, tzconv.ErrInvalidTimeString):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamPayload, "prayer time provider returned invalid data")
	case errors.Is(err, services.ErrUpstreamUnavailable),
		errors.Is(err, services.ErrMetadataMissing):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamUnavailable, "prayer time provider unreachable")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		fail(c, http.StatusGatewayTimeout, ErrCodeUpstreamUnavailable, "request timed out")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
