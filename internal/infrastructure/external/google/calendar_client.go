package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/johnquangdev/advisor-calendar-sync/internal/domain/entities"
)

const (
	// PrimaryCalendarID is the calendar synced for every user
	PrimaryCalendarID = "primary"

	pageSize   = 250
	dateLayout = "2006-01-02"
)

// CalendarClient reads events from the Google Calendar API on behalf of a user
type CalendarClient struct {
	calendarID string
	options    []option.ClientOption
	logger     *zap.Logger
}

// NewCalendarClient creates a Google Calendar client. Extra options are
// appended after the per-user token source.
func NewCalendarClient(logger *zap.Logger, opts ...option.ClientOption) *CalendarClient {
	return &CalendarClient{
		calendarID: PrimaryCalendarID,
		options:    opts,
		logger:     logger,
	}
}

func (c *CalendarClient) service(ctx context.Context, creds *entities.CalendarCredentials) (*calendar.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.AccessToken, TokenType: "Bearer"})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.options...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

// ListEvents lists every event page matching the query, expanding recurring events
func (c *CalendarClient) ListEvents(ctx context.Context, creds *entities.CalendarCredentials, query entities.EventQuery) ([]entities.ProviderEvent, error) {
	svc, err := c.service(ctx, creds)
	if err != nil {
		return nil, err
	}

	call := svc.Events.List(c.calendarID).
		SingleEvents(true).
		ShowDeleted(query.IncludeCancelled).
		MaxResults(pageSize)
	if query.TimeMin != nil {
		call = call.TimeMin(query.TimeMin.UTC().Format(time.RFC3339))
	}
	if query.TimeMax != nil {
		call = call.TimeMax(query.TimeMax.UTC().Format(time.RFC3339))
	}

	events := make([]entities.ProviderEvent, 0)
	err = call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			event, err := toProviderEvent(item)
			if err != nil {
				if c.logger != nil {
					c.logger.Warn("skipping unparsable calendar event",
						zap.String("event_id", item.Id),
						zap.Error(err),
					)
				}
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("calendar events fetched",
			zap.String("calendar_id", c.calendarID),
			zap.Int("count", len(events)),
		)
	}
	return events, nil
}

// GetEvent fetches a single event. A missing event yields entities.ErrProviderEventNotFound.
func (c *CalendarClient) GetEvent(ctx context.Context, creds *entities.CalendarCredentials, externalID string) (*entities.ProviderEvent, error) {
	svc, err := c.service(ctx, creds)
	if err != nil {
		return nil, err
	}

	item, err := svc.Events.Get(c.calendarID, externalID).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			return nil, entities.ErrProviderEventNotFound
		}
		return nil, fmt.Errorf("failed to get calendar event: %w", err)
	}

	event, err := toProviderEvent(item)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func toProviderEvent(item *calendar.Event) (entities.ProviderEvent, error) {
	event := entities.ProviderEvent{
		ExternalID: item.Id,
		Status:     entities.EventStatusConfirmed,
		Title:      item.Summary,
	}
	if item.Status == string(entities.EventStatusCancelled) {
		event.Status = entities.EventStatusCancelled
	}
	if item.Description != "" {
		desc := item.Description
		event.Description = &desc
	}
	if item.Location != "" {
		loc := item.Location
		event.Location = &loc
	}

	start, allDay, err := parseEventTime(item.Start)
	if err != nil {
		return event, fmt.Errorf("invalid start: %w", err)
	}
	end, _, err := parseEventTime(item.End)
	if err != nil {
		return event, fmt.Errorf("invalid end: %w", err)
	}
	event.Start = start
	event.End = end
	event.AllDay = allDay

	for _, a := range item.Attendees {
		if a == nil || (a.Email == "" && a.DisplayName == "") {
			continue
		}
		event.Attendees = append(event.Attendees, entities.Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
		})
	}
	return event, nil
}

// parseEventTime reads either a dateTime or an all-day date (midnight UTC)
func parseEventTime(t *calendar.EventDateTime) (*time.Time, bool, error) {
	if t == nil {
		return nil, false, nil
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			return nil, false, err
		}
		return &parsed, false, nil
	}
	if t.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, t.Date, time.UTC)
		if err != nil {
			return nil, false, err
		}
		return &parsed, true, nil
	}
	return nil, false, nil
}
