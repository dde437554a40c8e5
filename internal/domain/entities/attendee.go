package entities

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Attendee is one invitee of a meeting
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// ParseAttendees decodes a jsonb attendee list. Anything that is not a list of
// attendee objects is treated as no attendees.
func ParseAttendees(raw datatypes.JSON) []Attendee {
	if len(raw) == 0 {
		return []Attendee{}
	}
	var attendees []Attendee
	if err := json.Unmarshal(raw, &attendees); err != nil {
		return []Attendee{}
	}
	out := make([]Attendee, 0, len(attendees))
	for _, a := range attendees {
		if a.Email == "" && a.DisplayName == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// EncodeAttendees encodes attendees for storage, preserving order
func EncodeAttendees(attendees []Attendee) datatypes.JSON {
	if attendees == nil {
		attendees = []Attendee{}
	}
	b, err := json.Marshal(attendees)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// SameAttendees compares two attendee lists including order
func SameAttendees(a, b []Attendee) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
