// Package upstream implements the HTTP client for the prayer-timings
// provider (AlAdhan-compatible API). The client is a thin fetch capability:
// it issues one GET per day of data, enforces an explicit timeout, and
// normalizes the payload into domain types. All caching happens above it.
//
// Error contract:
//   - ErrUnavailable: transport failure, timeout, or non-2xx status.
//     Recoverable by falling back to cached data.
//   - ErrInvalidPayload: a response arrived but is structurally unusable
//     (undecodable, provider-level error code, or missing timings). Treated
//     like ErrUnavailable for fallback purposes but logged distinctly since
//     it signals a provider contract change rather than an outage.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gfarooqi/prayersync-sub001/internal/config"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

var (
	// ErrUnavailable indicates the provider could not be reached or
	// answered with a non-success status.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrInvalidPayload indicates a structurally invalid response.
	ErrInvalidPayload = errors.New("invalid upstream payload")
)

// Client fetches day timings from the provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Client from the upstream configuration. The configured
// timeout applies to the whole request including body read; on expiry the
// fetch reports ErrUnavailable.
func NewClient(cfg config.UpstreamConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// DayTimings fetches prayer times for one civil date at the given
// coordinate under the given calculation method.
func (c *Client) DayTimings(ctx context.Context, date domain.CivilDate, coord domain.Coordinate, method domain.CalculationMethod) (DayTimings, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.baseURL, date)

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", coord.Lat))
	params.Set("longitude", fmt.Sprintf("%f", coord.Lon))
	params.Set("method", fmt.Sprintf("%d", method))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return DayTimings{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DayTimings{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DayTimings{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return DayTimings{}, fmt.Errorf("%w: decode: %v", ErrInvalidPayload, err)
	}
	if payload.Code != http.StatusOK {
		return DayTimings{}, fmt.Errorf("%w: provider code %d (%s)", ErrInvalidPayload, payload.Code, payload.Status)
	}

	out := DayTimings{
		Times: domain.PrayerTimeSet{
			Fajr:    cleanClock(payload.Data.Timings.Fajr),
			Sunrise: cleanClock(payload.Data.Timings.Sunrise),
			Dhuhr:   cleanClock(payload.Data.Timings.Dhuhr),
			Asr:     cleanClock(payload.Data.Timings.Asr),
			Maghrib: cleanClock(payload.Data.Timings.Maghrib),
			Isha:    cleanClock(payload.Data.Timings.Isha),
		},
		Timezone: domain.TimezoneID(strings.TrimSpace(payload.Data.Meta.Timezone)),
	}
	if !out.Times.Complete() {
		return DayTimings{}, fmt.Errorf("%w: incomplete timings", ErrInvalidPayload)
	}
	return out, nil
}

// cleanClock strips the optional zone abbreviation the provider appends,
// e.g. "05:42 (BST)" -> "05:42".
func cleanClock(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return s
}
