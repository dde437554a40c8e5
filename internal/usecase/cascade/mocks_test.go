package cascade

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ ClientToucher = &clientToucherMock{}

type clientToucherMock struct {
	TouchFunc func(ctx context.Context, clientID, advisorID uuid.UUID) error

	calls struct {
		Touch []struct {
			ClientID  uuid.UUID
			AdvisorID uuid.UUID
		}
	}
	lockTouch sync.RWMutex
}

func (mock *clientToucherMock) Touch(ctx context.Context, clientID, advisorID uuid.UUID) error {
	if mock.TouchFunc == nil {
		panic("clientToucherMock.TouchFunc: method is nil but ClientToucher.Touch was just called")
	}
	callInfo := struct {
		ClientID  uuid.UUID
		AdvisorID uuid.UUID
	}{ClientID: clientID, AdvisorID: advisorID}
	mock.lockTouch.Lock()
	mock.calls.Touch = append(mock.calls.Touch, callInfo)
	mock.lockTouch.Unlock()
	return mock.TouchFunc(ctx, clientID, advisorID)
}

func (mock *clientToucherMock) TouchCalls() []struct {
	ClientID  uuid.UUID
	AdvisorID uuid.UUID
} {
	mock.lockTouch.RLock()
	calls := mock.calls.Touch
	mock.lockTouch.RUnlock()
	return calls
}
