package upstream

import "github.com/gfarooqi/prayersync-sub001/internal/domain"

// response is the top-level payload returned by the timings provider.
type response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   data   `json:"data"`
}

// data holds one day's timings plus request metadata.
type data struct {
	Timings timings `json:"timings"`
	Meta    meta    `json:"meta"`
}

// timings carries the provider's wall-clock strings. The provider may
// append a zone abbreviation suffix like " (BST)" which is stripped during
// normalization. Fields the engine does not use are omitted.
type timings struct {
	Fajr    string `json:"Fajr"`
	Sunrise string `json:"Sunrise"`
	Dhuhr   string `json:"Dhuhr"`
	Asr     string `json:"Asr"`
	Maghrib string `json:"Maghrib"`
	Isha    string `json:"Isha"`
}

// meta carries location metadata; Timezone is the IANA identifier the
// resolver depends on.
type meta struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// DayTimings is the client's normalized result: one day's prayer times and
// the zone identifier the provider reports for the coordinate.
type DayTimings struct {
	Times    domain.PrayerTimeSet
	Timezone domain.TimezoneID
}
