// Package gcal implements the calendar collaborator on the Google Calendar
// API: free/busy queries for the slot surface and event creation for
// confirmed interviews.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client implements core.CalendarClient
type Client struct {
	svc             *calendar.Service
	defaultLocation string
	logger          *zap.Logger
}

// NewClient creates a calendar client from the same credentials/token file
// pair the inbox gateway uses
func NewClient(ctx context.Context, credentialsFile, tokenFile, defaultLocation string, logger *zap.Logger) (*Client, error) {
	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(credBytes, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	tokBytes, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(tokBytes, token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Client{
		svc:             svc,
		defaultLocation: defaultLocation,
		logger:          logger,
	}, nil
}

// BusyWindows returns the occupied intervals for a calendar within [from, to)
func (c *Client) BusyWindows(ctx context.Context, calendarID string, from, to time.Time) ([]core.BusyWindow, error) {
	resp, err := c.svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("free/busy query failed: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, fmt.Errorf("calendar %s missing from free/busy response", calendarID)
	}

	windows := make([]core.BusyWindow, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			c.logger.Warn("Skipping busy period with bad start", zap.String("start", period.Start), zap.Error(err))
			continue
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			c.logger.Warn("Skipping busy period with bad end", zap.String("end", period.End), zap.Error(err))
			continue
		}
		windows = append(windows, core.BusyWindow{Start: start.UTC(), End: end.UTC()})
	}

	return windows, nil
}

// CreateEvent creates a calendar event with both parties as attendees and
// returns the provider event id
func (c *Client) CreateEvent(ctx context.Context, calendarID string, req core.EventRequest) (string, error) {
	summary := req.Summary
	if summary == "" {
		summary = "Interview"
	}
	location := req.Location
	if location == "" {
		location = c.defaultLocation
	}

	event := &calendar.Event{
		Summary:  summary,
		Location: location,
		Start: &calendar.EventDateTime{
			DateTime: req.StartTime.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: req.EndTime.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
	if req.RecruiterEmail != "" {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: req.RecruiterEmail})
	}
	if req.CandidateEmail != "" {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: req.CandidateEmail})
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert event: %w", err)
	}

	c.logger.Info("Calendar event created",
		zap.String("event_id", created.Id),
		zap.String("calendar_id", calendarID))
	return created.Id, nil
}
