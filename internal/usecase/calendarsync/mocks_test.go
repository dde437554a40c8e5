package calendarsync

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

var _ EventFetcher = &eventFetcherMock{}

type eventFetcherMock struct {
	ListEventsFunc func(ctx context.Context, creds *entities.CalendarCredentials, query entities.EventQuery) ([]entities.ProviderEvent, error)
	GetEventFunc   func(ctx context.Context, creds *entities.CalendarCredentials, externalID string) (*entities.ProviderEvent, error)

	calls struct {
		ListEvents []struct {
			Creds *entities.CalendarCredentials
			Query entities.EventQuery
		}
		GetEvent []struct {
			Creds      *entities.CalendarCredentials
			ExternalID string
		}
	}
	lockListEvents sync.RWMutex
	lockGetEvent   sync.RWMutex
}

func (mock *eventFetcherMock) ListEvents(ctx context.Context, creds *entities.CalendarCredentials, query entities.EventQuery) ([]entities.ProviderEvent, error) {
	if mock.ListEventsFunc == nil {
		panic("eventFetcherMock.ListEventsFunc: method is nil but EventFetcher.ListEvents was just called")
	}
	callInfo := struct {
		Creds *entities.CalendarCredentials
		Query entities.EventQuery
	}{Creds: creds, Query: query}
	mock.lockListEvents.Lock()
	mock.calls.ListEvents = append(mock.calls.ListEvents, callInfo)
	mock.lockListEvents.Unlock()
	return mock.ListEventsFunc(ctx, creds, query)
}

func (mock *eventFetcherMock) ListEventsCalls() []struct {
	Creds *entities.CalendarCredentials
	Query entities.EventQuery
} {
	mock.lockListEvents.RLock()
	calls := mock.calls.ListEvents
	mock.lockListEvents.RUnlock()
	return calls
}

func (mock *eventFetcherMock) GetEvent(ctx context.Context, creds *entities.CalendarCredentials, externalID string) (*entities.ProviderEvent, error) {
	if mock.GetEventFunc == nil {
		panic("eventFetcherMock.GetEventFunc: method is nil but EventFetcher.GetEvent was just called")
	}
	callInfo := struct {
		Creds      *entities.CalendarCredentials
		ExternalID string
	}{Creds: creds, ExternalID: externalID}
	mock.lockGetEvent.Lock()
	mock.calls.GetEvent = append(mock.calls.GetEvent, callInfo)
	mock.lockGetEvent.Unlock()
	return mock.GetEventFunc(ctx, creds, externalID)
}

func (mock *eventFetcherMock) GetEventCalls() []struct {
	Creds      *entities.CalendarCredentials
	ExternalID string
} {
	mock.lockGetEvent.RLock()
	calls := mock.calls.GetEvent
	mock.lockGetEvent.RUnlock()
	return calls
}

var _ TokenRefresher = &tokenRefresherMock{}

type tokenRefresherMock struct {
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

	calls struct {
		RefreshToken []struct {
			RefreshToken string
		}
	}
	lockRefreshToken sync.RWMutex
}

func (mock *tokenRefresherMock) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if mock.RefreshTokenFunc == nil {
		panic("tokenRefresherMock.RefreshTokenFunc: method is nil but TokenRefresher.RefreshToken was just called")
	}
	mock.lockRefreshToken.Lock()
	mock.calls.RefreshToken = append(mock.calls.RefreshToken, struct{ RefreshToken string }{RefreshToken: refreshToken})
	mock.lockRefreshToken.Unlock()
	return mock.RefreshTokenFunc(ctx, refreshToken)
}

func (mock *tokenRefresherMock) RefreshTokenCalls() []struct{ RefreshToken string } {
	mock.lockRefreshToken.RLock()
	calls := mock.calls.RefreshToken
	mock.lockRefreshToken.RUnlock()
	return calls
}

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
