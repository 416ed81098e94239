package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/services"
)

func TestGetCalendar_OK(t *testing.T) {
	cal := &stubCalendar{out: services.Export{ICS: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", Events: 5}}
	r := newTestRouter(&stubTimes{tz: "UTC"}, cal)

	w := doRequest(t, r, "/calendar.ics?lat=51.5&lon=-0.1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "prayer-times.ics") {
		t.Errorf("content disposition = %q", cd)
	}
	if w.Header().Get("X-Fallback-Times") != "" {
		t.Error("fallback header set on a clean export")
	}
	if !strings.Contains(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Error("body is not an iCalendar document")
	}
	if cal.lastDays != 7 {
		t.Errorf("default days = %d; want 7", cal.lastDays)
	}
}

func TestGetCalendar_ExplicitRange(t *testing.T) {
	cal := &stubCalendar{out: services.Export{ICS: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}}
	r := newTestRouter(&stubTimes{tz: "UTC"}, cal)

	w := doRequest(t, r, "/calendar.ics?lat=51.5&lon=-0.1&from=2025-07-01&days=3")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !cal.rangeUsed {
		t.Fatal("explicit from should use the date-range path")
	}
	want := domain.CivilDate{Year: 2025, Month: time.July, Day: 1}
	if cal.lastStart != want || cal.lastDays != 3 {
		t.Fatalf("start = %v days = %d", cal.lastStart, cal.lastDays)
	}
}

func TestGetCalendar_DaysCapped(t *testing.T) {
	cal := &stubCalendar{out: services.Export{ICS: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}}
	r := newTestRouter(&stubTimes{tz: "UTC"}, cal)

	w := doRequest(t, r, "/calendar.ics?lat=0&lon=0&days=400")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cal.lastDays != 31 {
		t.Fatalf("days = %d; want capped at 31", cal.lastDays)
	}
}

func TestGetCalendar_DegradedExportMarked(t *testing.T) {
	cal := &stubCalendar{out: services.Export{ICS: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n", Events: 5, Degraded: true}}
	r := newTestRouter(&stubTimes{tz: "UTC"}, cal)

	w := doRequest(t, r, "/calendar.ics?lat=0&lon=0")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("X-Fallback-Times") != "true" {
		t.Error("degraded export missing X-Fallback-Times header")
	}
}

func TestGetCalendar_BadInput(t *testing.T) {
	r := newTestRouter(&stubTimes{tz: "UTC"}, &stubCalendar{})

	for name, url := range map[string]string{
		"bad days": "/calendar.ics?lat=0&lon=0&days=zero",
		"zero days": "/calendar.ics?lat=0&lon=0&days=0",
		"bad from": "/calendar.ics?lat=0&lon=0&from=01-07-2025",
		"no coords": "/calendar.ics",
	} {
		t.Run(name, func(t *testing.T) {
			if w := doRequest(t, r, url); w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
		})
	}
}

func TestGetCalendar_ServiceError(t *testing.T) {
	cal := &stubCalendar{err: services.ErrUpstreamUnavailable}
	r := newTestRouter(&stubTimes{tz: "UTC"}, cal)

	if w := doRequest(t, r, "/calendar.ics?lat=0&lon=0"); w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}
