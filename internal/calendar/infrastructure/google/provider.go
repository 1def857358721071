// Package google implements the calendar provider port against the
// Google Calendar API.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// propTempora marks events this scheduler created, stored as a private
// extended property.
const propTempora = "tempora"

// Provider implements calendarApp.Provider on Google Calendar.
type Provider struct {
	srv        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewProvider wraps an authenticated calendar service. calendarID is
// usually "primary".
func NewProvider(srv *calendar.Service, calendarID string, logger *slog.Logger) *Provider {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Provider{srv: srv, calendarID: calendarID, logger: logger}
}

// NewService builds an authenticated calendar service from OAuth
// credentials and a stored refresh token.
func NewService(ctx context.Context, clientID, clientSecret, refreshToken string) (*calendar.Service, error) {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleOAuth.Endpoint,
		Scopes:       []string{calendar.CalendarScope},
	}
	tokenSource := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	srv, err := calendar.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	return srv, nil
}

// Name identifies the provider in configuration.
func (p *Provider) Name() string { return "google" }

// ListBusyIntervals returns occupied spans overlapping [from, to).
// All-day events carry no clock time and are skipped.
func (p *Provider) ListBusyIntervals(ctx context.Context, from, to time.Time) ([]calendarApp.BusyInterval, error) {
	events, err := p.srv.Events.List(p.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}

	intervals := make([]calendarApp.BusyInterval, 0, len(events.Items))
	for _, event := range events.Items {
		if event.Start == nil || event.End == nil ||
			event.Start.DateTime == "" || event.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, event.Start.DateTime)
		if err != nil {
			p.logger.Warn("skipping event with unparseable start",
				slog.String("event_id", event.Id))
			continue
		}
		end, err := time.Parse(time.RFC3339, event.End.DateTime)
		if err != nil {
			p.logger.Warn("skipping event with unparseable end",
				slog.String("event_id", event.Id))
			continue
		}
		intervals = append(intervals, calendarApp.BusyInterval{
			EventID: event.Id,
			Start:   start.UTC(),
			End:     end.UTC(),
		})
	}
	return intervals, nil
}

// CreateEvent inserts a new event and returns its ID.
func (p *Provider) CreateEvent(ctx context.Context, input calendarApp.EventInput) (string, error) {
	created, err := p.srv.Events.Insert(p.calendarID, toGoogleEvent(input)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("creating event: %w", err)
	}
	return created.Id, nil
}

// UpdateEvent patches an existing event's window and text.
func (p *Provider) UpdateEvent(ctx context.Context, eventID string, input calendarApp.EventInput) error {
	_, err := p.srv.Events.Patch(p.calendarID, eventID, toGoogleEvent(input)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (p *Provider) DeleteEvent(ctx context.Context, eventID string) error {
	if err := p.srv.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func toGoogleEvent(input calendarApp.EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: input.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: input.Timezone,
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{propTempora: "1"},
		},
	}
}
