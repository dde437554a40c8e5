package calendarsync

import (
	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

// Bucket is the reconciliation category of a provider event or local meeting
type Bucket string

const (
	BucketActive       Bucket = "active"
	BucketInconsistent Bucket = "inconsistent"
	BucketDeleted      Bucket = "deleted"
	BucketOrphaned     Bucket = "orphaned"
	BucketNew          Bucket = "new"
	// BucketExcluded holds live local meetings that cannot take part in the
	// join: ICS imports without a provider counterpart and unlinked meetings.
	BucketExcluded Bucket = "excluded"
)

// InconsistencyDeletedButExists marks a soft-deleted meeting whose event is still live
const InconsistencyDeletedButExists = "deleted_but_exists"

// DeletionReason explains why a meeting is in the deleted bucket
type DeletionReason string

const (
	DeletionReasonCancelled DeletionReason = "cancelled"
	DeletionReasonMissing   DeletionReason = "missing"
)

// MatchedMeeting pairs a local meeting with its live provider event
type MatchedMeeting struct {
	Meeting *entities.Meeting      `json:"meeting"`
	Event   entities.ProviderEvent `json:"event"`
}

// InconsistentMeeting is a soft-deleted meeting whose provider event is live
type InconsistentMeeting struct {
	Meeting *entities.Meeting      `json:"meeting"`
	Event   entities.ProviderEvent `json:"event"`
	Type    string                 `json:"type"`
}

// DeletedMeeting is a live local meeting whose provider event is gone
type DeletedMeeting struct {
	Meeting *entities.Meeting `json:"meeting"`
	Reason  DeletionReason    `json:"reason"`
}

// CategorizationSummary counts both sides of the join
type CategorizationSummary struct {
	CalendarEvents   int `json:"calendarEvents"`
	CancelledEvents  int `json:"cancelledEvents"`
	DatabaseMeetings int `json:"databaseMeetings"`
	ActiveMeetings   int `json:"activeMeetings"`
	DeletedMeetings  int `json:"deletedMeetings"`
}

// Categorization is the result of joining provider events and local meetings on external id
type Categorization struct {
	Active       []MatchedMeeting         `json:"active"`
	Inconsistent []InconsistentMeeting    `json:"inconsistent"`
	Deleted      []DeletedMeeting         `json:"deleted"`
	Orphaned     []*entities.Meeting      `json:"orphaned"`
	New          []entities.ProviderEvent `json:"new"`
	Excluded     []*entities.Meeting      `json:"excluded"`
	Summary      CategorizationSummary    `json:"summary"`
}

// NeedsAction reports whether applying the categorization would change anything
func (c *Categorization) NeedsAction() bool {
	return len(c.Inconsistent) > 0 || len(c.Deleted) > 0 || len(c.New) > 0
}

// Detect performs a full outer join of provider events and local meetings on
// external id. Cancelled events count as absent. Every live event and every
// meeting lands in exactly one bucket.
func Detect(events []entities.ProviderEvent, meetings []*entities.Meeting) *Categorization {
	cat := &Categorization{
		Active:       []MatchedMeeting{},
		Inconsistent: []InconsistentMeeting{},
		Deleted:      []DeletedMeeting{},
		Orphaned:     []*entities.Meeting{},
		New:          []entities.ProviderEvent{},
		Excluded:     []*entities.Meeting{},
	}

	live := make(map[string]entities.ProviderEvent, len(events))
	liveOrder := make([]string, 0, len(events))
	cancelled := make(map[string]struct{})
	for _, e := range events {
		if e.IsCancelled() {
			cancelled[e.ExternalID] = struct{}{}
			continue
		}
		if _, dup := live[e.ExternalID]; !dup {
			liveOrder = append(liveOrder, e.ExternalID)
		}
		live[e.ExternalID] = e
	}
	for id := range cancelled {
		// a live instance of the same id wins over a cancelled one
		if _, ok := live[id]; ok {
			delete(cancelled, id)
		}
	}

	matched := make(map[string]struct{}, len(meetings))
	for _, m := range meetings {
		if m.IsDeleted {
			cat.Summary.DeletedMeetings++
		} else {
			cat.Summary.ActiveMeetings++
		}

		var (
			event entities.ProviderEvent
			found bool
		)
		if m.HasExternalID() {
			event, found = live[*m.ExternalID]
		}

		switch {
		case found && !m.IsDeleted:
			matched[event.ExternalID] = struct{}{}
			cat.Active = append(cat.Active, MatchedMeeting{Meeting: m, Event: event})
		case found && m.IsDeleted:
			matched[event.ExternalID] = struct{}{}
			cat.Inconsistent = append(cat.Inconsistent, InconsistentMeeting{
				Meeting: m,
				Event:   event,
				Type:    InconsistencyDeletedButExists,
			})
		case m.IsDeleted:
			cat.Orphaned = append(cat.Orphaned, m)
		case m.ImportedFromICS || !m.HasExternalID():
			cat.Excluded = append(cat.Excluded, m)
		default:
			reason := DeletionReasonMissing
			if _, ok := cancelled[*m.ExternalID]; ok {
				reason = DeletionReasonCancelled
			}
			cat.Deleted = append(cat.Deleted, DeletedMeeting{Meeting: m, Reason: reason})
		}
	}

	for _, id := range liveOrder {
		if _, ok := matched[id]; ok {
			continue
		}
		cat.New = append(cat.New, live[id])
	}

	cat.Summary.CalendarEvents = len(live)
	cat.Summary.CancelledEvents = len(cancelled)
	cat.Summary.DatabaseMeetings = len(meetings)
	return cat
}
