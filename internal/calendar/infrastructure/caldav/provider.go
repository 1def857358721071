// Package caldav implements the calendar provider port against CalDAV
// servers (Apple Calendar, Fastmail, Nextcloud, etc.).
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	calendarApp "github.com/felixgeelhaar/tempora/internal/calendar/application"
	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

// Common CalDAV server URLs.
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXTempora marks events this scheduler created.
const PropXTempora = "X-TEMPORA"

// Provider implements calendarApp.Provider on CalDAV.
type Provider struct {
	baseURL      string
	username     string
	password     string // app-specific password for Apple
	calendarPath string // specific calendar path, or empty for default
	logger       *slog.Logger
}

// NewProvider creates a CalDAV provider.
func NewProvider(baseURL, username, password string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// WithCalendarPath sets the specific calendar path to use.
func (p *Provider) WithCalendarPath(path string) *Provider {
	p.calendarPath = path
	return p
}

// Name identifies the provider in configuration.
func (p *Provider) Name() string { return "caldav" }

// ListBusyIntervals returns occupied spans overlapping [from, to).
func (p *Provider) ListBusyIntervals(ctx context.Context, from, to time.Time) ([]calendarApp.BusyInterval, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}
	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", "DTSTART", "DTEND", "SUMMARY", PropXTempora},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: from,
					End:   to,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	intervals := make([]calendarApp.BusyInterval, 0, len(objects))
	for _, obj := range objects {
		if interval, ok := parseBusyInterval(&obj); ok {
			intervals = append(intervals, interval)
		}
	}
	return intervals, nil
}

// CreateEvent writes a new event and returns its UID.
func (p *Provider) CreateEvent(ctx context.Context, input calendarApp.EventInput) (string, error) {
	client, err := p.getClient()
	if err != nil {
		return "", err
	}
	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar: %w", err)
	}

	eventID := uuid.NewString()
	eventPath := fmt.Sprintf("%s%s.ics", calPath, eventID)
	if _, err := client.PutCalendarObject(ctx, eventPath, toICalendar(eventID, input)); err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return eventID, nil
}

// UpdateEvent rewrites an existing event in place.
func (p *Provider) UpdateEvent(ctx context.Context, eventID string, input calendarApp.EventInput) error {
	client, err := p.getClient()
	if err != nil {
		return err
	}
	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}

	eventPath := fmt.Sprintf("%s%s.ics", calPath, eventID)
	if _, err := client.PutCalendarObject(ctx, eventPath, toICalendar(eventID, input)); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (p *Provider) DeleteEvent(ctx context.Context, eventID string) error {
	client, err := p.getClient()
	if err != nil {
		return err
	}
	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}
	return client.RemoveAll(ctx, fmt.Sprintf("%s%s.ics", calPath, eventID))
}

func (p *Provider) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: p.username,
			password: p.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (p *Provider) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.calendarPath != "" {
		return p.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	// Use first calendar as default
	return cals[0].Path, nil
}

// toICalendar builds the VCALENDAR for one scheduled task.
func toICalendar(eventID string, input calendarApp.EventInput) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Tempora//Scheduler//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventID)
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, input.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, input.End.UTC())
	event.Props.SetText(ical.PropSummary, input.Summary)
	if input.Description != "" {
		event.Props.SetText(ical.PropDescription, input.Description)
	}

	// Custom property to identify scheduler-created events
	temporaProp := ical.NewProp(PropXTempora)
	temporaProp.Value = "1"
	event.Props[PropXTempora] = []ical.Prop{*temporaProp}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

func parseBusyInterval(obj *caldav.CalendarObject) (calendarApp.BusyInterval, bool) {
	if obj == nil || obj.Data == nil {
		return calendarApp.BusyInterval{}, false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		interval := calendarApp.BusyInterval{EventID: obj.Path}
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			interval.EventID = props[0].Value
		}

		icalEvent := &ical.Event{Component: child}
		start, err := icalEvent.DateTimeStart(time.UTC)
		if err != nil {
			return calendarApp.BusyInterval{}, false
		}
		end, err := icalEvent.DateTimeEnd(time.UTC)
		if err != nil {
			return calendarApp.BusyInterval{}, false
		}
		interval.Start = start.UTC()
		interval.End = end.UTC()
		return interval, interval.End.After(interval.Start)
	}
	return calendarApp.BusyInterval{}, false
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
