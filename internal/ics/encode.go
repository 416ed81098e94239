// Package ics renders calendar events as an iCalendar (RFC 5545) document
// using github.com/arran4/golang-ical, which handles the format's escaping
// and 75-octet line folding.
//
// Encoding is a pure transform: given the same events and the same
// generation timestamp it produces byte-identical output, including the
// per-event UIDs, which are derived deterministically from the prayer name
// and UTC start instant. Repeated exports of the same data therefore
// replace rather than duplicate events in any subscribing client.
package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/gfarooqi/prayersync-sub001/internal/domain"
)

const productID = "-//PrayerSync//Prayer Times//EN"

// EventUID derives the stable identifier for one event. Same name and same
// start instant always yield the same UID.
func EventUID(name string, startUTC time.Time) string {
	sum := sha256.Sum256([]byte(name + "|" + startUTC.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:8]) + "@prayersync"
}

// Encode renders the events as a VCALENDAR document. generatedAt becomes
// every event's DTSTAMP; callers pass time.Now().UTC() in production and a
// fixed instant in tests. An empty events slice yields a valid, empty
// calendar.
func Encode(events []domain.CalendarEvent, title, description string, generatedAt time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if title != "" {
		cal.SetXWRCalName(title)
	}
	if description != "" {
		cal.SetXWRCalDesc(description)
	}

	for _, ev := range events {
		e := cal.AddEvent(EventUID(ev.Name, ev.StartUTC))
		e.SetDtStampTime(generatedAt.UTC())
		e.SetStartAt(ev.StartUTC.UTC())
		e.SetEndAt(ev.EndUTC.UTC())
		e.SetSummary(ev.Name)
		e.SetDescription(fmt.Sprintf("%s prayer time", ev.Name))
		if ev.Location != "" {
			e.SetLocation(ev.Location)
		}
		e.SetProperty(ical.ComponentPropertyCategories, "Prayer")

		if ev.AlarmOffset > 0 {
			a := e.AddAlarm()
			a.SetAction(ical.ActionDisplay)
			a.SetTrigger(triggerOffset(ev.AlarmOffset))
			a.SetProperty(ical.ComponentPropertyDescription, ev.Name)
		}
	}

	return cal.Serialize()
}

// triggerOffset renders a duration before start as an RFC 5545 relative
// trigger, e.g. 15m -> "-PT15M".
func triggerOffset(d time.Duration) string {
	mins := int(d.Minutes())
	if mins < 1 {
		mins = 1
	}
	return fmt.Sprintf("-PT%dM", mins)
}
