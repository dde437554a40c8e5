package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	TypeClientStatusTouched = "client.status_touched"
)

// ClientStatusTouched is emitted after a client's meetings changed
// and its aggregate counters need recomputing.
type ClientStatusTouched struct {
	ClientID  uuid.UUID `json:"client_id"`
	AdvisorID uuid.UUID `json:"advisor_id"`
	TouchedAt time.Time `json:"touched_at"`
}

func (e ClientStatusTouched) EventType() string {
	return TypeClientStatusTouched
}

func (e ClientStatusTouched) Payload() map[string]interface{} {
	return map[string]interface{}{
		"client_id":  e.ClientID.String(),
		"advisor_id": e.AdvisorID.String(),
		"touched_at": e.TouchedAt.Format(time.RFC3339Nano),
	}
}

func (e ClientStatusTouched) Timestamp() time.Time {
	return e.TouchedAt
}
