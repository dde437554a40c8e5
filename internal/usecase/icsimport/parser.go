package icsimport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// ParsedEvent is one VEVENT. Err is set when the event cannot become a meeting.
type ParsedEvent struct {
	Event entities.ProviderEvent
	Err   error
}

var (
	errMissingUID   = errors.New("event has no UID")
	errMissingStart = errors.New("event has no start time")
)

// ParseCalendar decodes every VCALENDAR in data and returns its VEVENTs in file order
func ParseCalendar(data []byte) ([]ParsedEvent, error) {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("BEGIN:VCALENDAR")) {
		return nil, fmt.Errorf("expected BEGIN:VCALENDAR")
	}

	decoder := ical.NewDecoder(bytes.NewReader(trimmed))
	var out []ParsedEvent
	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			out = append(out, parseEvent(comp))
		}
	}
	return out, nil
}

func parseEvent(comp *ical.Component) ParsedEvent {
	event := entities.ProviderEvent{Status: entities.EventStatusConfirmed}

	if p := comp.Props.Get(ical.PropUID); p != nil {
		event.ExternalID = strings.TrimSpace(p.Value)
	}
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		event.Title = strings.TrimSpace(p.Value)
	}
	if p := comp.Props.Get(ical.PropDescription); p != nil && p.Value != "" {
		v := p.Value
		event.Description = &v
	}
	if p := comp.Props.Get(ical.PropLocation); p != nil && p.Value != "" {
		v := p.Value
		event.Location = &v
	}
	if p := comp.Props.Get(ical.PropStatus); p != nil && strings.EqualFold(p.Value, "CANCELLED") {
		event.Status = entities.EventStatusCancelled
	}

	if p := comp.Props.Get(ical.PropDateTimeStart); p != nil {
		if t, allDay, ok := parseTime(p); ok {
			event.Start = &t
			event.AllDay = allDay
		}
	}
	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		if t, _, ok := parseTime(p); ok {
			event.End = &t
		}
	}

	event.Attendees = parseAttendees(comp.Props.Values(ical.PropAttendee))

	switch {
	case event.ExternalID == "":
		return ParsedEvent{Event: event, Err: errMissingUID}
	case event.Start == nil && !event.IsCancelled():
		return ParsedEvent{Event: event, Err: errMissingStart}
	}
	return ParsedEvent{Event: event}
}

// parseTime reads DATE and DATE-TIME values; dates are midnight UTC
func parseTime(p *ical.Prop) (time.Time, bool, bool) {
	value := strings.TrimSpace(p.Value)
	if p.ValueType() == ical.ValueDate || len(value) == len("20060102") {
		t, err := time.ParseInLocation("20060102", value, time.UTC)
		if err != nil {
			return time.Time{}, false, false
		}
		return t, true, true
	}
	t, err := p.DateTime(time.UTC)
	if err != nil {
		return time.Time{}, false, false
	}
	return t.UTC(), false, true
}

func parseAttendees(props []ical.Prop) []entities.Attendee {
	out := make([]entities.Attendee, 0, len(props))
	for _, p := range props {
		email := strings.TrimSpace(p.Value)
		if len(email) > 7 && strings.EqualFold(email[:7], "mailto:") {
			email = email[7:]
		}
		a := entities.Attendee{Email: email, DisplayName: p.Params.Get(ical.ParamCommonName)}
		if a.Email == "" && a.DisplayName == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}
