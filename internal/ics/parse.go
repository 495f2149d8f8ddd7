package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "shiftsync/internal/log"
	"shiftsync/internal/model"
)

// ParseFeed parses an ICS payload into raw events. Only VEVENT components are
// read. Floating date-times (no TZID, no trailing Z) and bare dates are read in
// loc; everything else is converted to loc.
//
// Any VEVENT without DTSTART or SUMMARY fails the whole feed: a malformed
// calendar must not silently produce a partial ledger.
func ParseFeed(body []byte, loc *time.Location) ([]model.RawEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	vevents := cal.Events()
	events := make([]model.RawEvent, 0, len(vevents))
	for i, ve := range vevents {
		ev, err := parseVEvent(ve, loc)
		if err != nil {
			return nil, fmt.Errorf("vevent %d: %w", i, err)
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.RawEvent, error) {
	var out model.RawEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}

	p := ve.GetProperty(ical.ComponentPropertySummary)
	if p == nil || strings.TrimSpace(p.Value) == "" {
		return out, fmt.Errorf("uid %q: %w", out.UID, model.ErrMissingSummary)
	}
	out.Summary = p.Value

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	start, allDay, ok, err := dateProp(ve.GetProperty(ical.ComponentPropertyDtStart), loc, ve.GetStartAt)
	if err != nil {
		return out, fmt.Errorf("uid %q: %w: %w", out.UID, model.ErrMissingStart, err)
	}
	if !ok {
		return out, fmt.Errorf("uid %q: %w", out.UID, model.ErrMissingStart)
	}
	out.Start = start
	out.AllDay = allDay

	// DTEND is optional; a timed event without it ends where it starts.
	end, _, ok, err := dateProp(ve.GetProperty(ical.ComponentPropertyDtEnd), loc, ve.GetEndAt)
	if err != nil {
		return out, fmt.Errorf("uid %q: DTEND: %w", out.UID, err)
	}
	if ok {
		out.End = end
	}

	return out, nil
}

// dateProp reads a DTSTART/DTEND style property. ok is false when prop is nil.
// Values carrying a TZID are resolved by the ical library through libGetter so
// VTIMEZONE handling stays in one place.
func dateProp(prop *ical.IANAProperty, loc *time.Location, libGetter func() (time.Time, error)) (t time.Time, allDay bool, ok bool, err error) {
	if prop == nil {
		return time.Time{}, false, false, nil
	}
	val := strings.TrimSpace(prop.Value)
	if val == "" {
		return time.Time{}, false, false, errors.New("empty value")
	}

	// VALUE=DATE or no 'T' in the value -> all-day
	if vs, found := prop.ICalParameters["VALUE"]; found && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}
	if !strings.Contains(val, "T") {
		allDay = true
	}

	if allDay {
		if len(val) > 8 {
			val = val[:8]
		}
		t, err = parseICSTime(val, loc)
		if err != nil {
			return time.Time{}, true, false, err
		}
		return t, true, true, nil
	}

	if tzs, found := prop.ICalParameters["TZID"]; found && len(tzs) > 0 {
		t, err = libGetter()
		if err != nil {
			return time.Time{}, false, false, err
		}
		return t.In(loc), false, true, nil
	}

	t, err = parseICSTime(val, loc)
	if err != nil {
		return time.Time{}, false, false, err
	}
	return t.In(loc), false, true, nil
}

// parseICSTime parses a basic ICS date or date-time. Floating values are read
// in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}

	// Floating date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}

	// Date-only (all-day), e.g., 20250101
	return time.ParseInLocation("20060102", v, loc)
}
