package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gfarooqi/prayersync-sub001/internal/config"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

// sampleResponse returns a valid provider payload for testing.
func sampleResponse() response {
	return response{
		Code:   200,
		Status: "OK",
		Data: data{
			Timings: timings{
				Fajr:    "05:42 (BST)",
				Sunrise: "06:40",
				Dhuhr:   "12:05",
				Asr:     "14:23",
				Maghrib: "16:41",
				Isha:    "18:15",
			},
			Meta: meta{
				Latitude:  51.5072,
				Longitude: -0.1276,
				Timezone:  "Europe/London",
			},
		},
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.UpstreamConfig{BaseURL: baseURL, Timeout: 2 * time.Second})
}

var (
	testDate  = domain.CivilDate{Year: 2025, Month: time.June, Day: 13}
	testCoord = domain.Coordinate{Lat: 51.5072, Lon: -0.1276}
)

func TestDayTimings_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/timings/2025-06-13") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") == "" || q.Get("longitude") == "" {
			t.Error("missing coordinate params")
		}
		if q.Get("method") != "3" {
			t.Errorf("method = %q, want 3", q.Get("method"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	got, err := newTestClient(server.URL).DayTimings(context.Background(), testDate, testCoord, domain.MethodMWL)
	if err != nil {
		t.Fatalf("DayTimings: %v", err)
	}
	if got.Times.Fajr != "05:42" {
		t.Errorf("Fajr = %q; want zone suffix stripped", got.Times.Fajr)
	}
	if got.Times.Isha != "18:15" {
		t.Errorf("Isha = %q", got.Times.Isha)
	}
	if got.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q", got.Timezone)
	}
}

func TestDayTimings_TransportFailure(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).DayTimings(context.Background(), testDate, testCoord, domain.MethodMWL)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v; want ErrUnavailable", err)
	}
}

func TestDayTimings_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).DayTimings(context.Background(), testDate, testCoord, domain.MethodMWL)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v; want ErrUnavailable", err)
	}
}

func TestDayTimings_InvalidPayload(t *testing.T) {
	cases := []struct {
		name string
		body func(w http.ResponseWriter)
	}{
		{"garbage body", func(w http.ResponseWriter) {
			w.Write([]byte("{nope"))
		}},
		{"provider error code", func(w http.ResponseWriter) {
			json.NewEncoder(w).Encode(response{Code: 400, Status: "Bad Request"})
		}},
		{"missing timings", func(w http.ResponseWriter) {
			resp := sampleResponse()
			resp.Data.Timings.Asr = ""
			json.NewEncoder(w).Encode(resp)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.body(w)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).DayTimings(context.Background(), testDate, testCoord, domain.MethodMWL)
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("err = %v; want ErrInvalidPayload", err)
			}
		})
	}
}

func TestDayTimings_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).DayTimings(ctx, testDate, testCoord, domain.MethodMWL)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v; want ErrUnavailable", err)
	}
}

func TestCleanClock(t *testing.T) {
	cases := map[string]string{
		"05:42":        "05:42",
		"05:42 (BST)":  "05:42",
		" 05:42 (BST)": "05:42",
		"":             "",
	}
	for in, want := range cases {
		if got := cleanClock(in); got != want {
			t.Errorf("cleanClock(%q) = %q; want %q", in, got, want)
		}
	}
}
