package calendar

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
	"go.uber.org/zap"
)

// Booking the details for one demo appointment
type Booking struct {
	Summary       string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	AttendeeEmail string
}

// Result what the calendar returned for a created event
type Result struct {
	EventID string
	Link    string
}

// Service books appointments on a Google calendar
type Service struct {
	api        *calendar.Service
	calendarID string
	timeZone   string
}

// NewService builds a calendar service from a service account credentials file
func NewService(ctx context.Context, credentialsFile, calendarID, timeZone string) (*Service, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("calendar credentials file is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	api, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarEventsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &Service{
		api:        api,
		calendarID: calendarID,
		timeZone:   timeZone,
	}, nil
}

// Book creates the calendar event and invites the caller when an email is known
func (s *Service) Book(ctx context.Context, booking Booking) (*Result, error) {
	if booking.Summary == "" {
		return nil, fmt.Errorf("booking summary is required")
	}
	if booking.StartTime.IsZero() || booking.EndTime.IsZero() {
		return nil, fmt.Errorf("booking start and end times are required")
	}

	event := &calendar.Event{
		Summary:     booking.Summary,
		Description: booking.Description,
		Start: &calendar.EventDateTime{
			DateTime: booking.StartTime.Format(time.RFC3339),
			TimeZone: s.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: booking.EndTime.Format(time.RFC3339),
			TimeZone: s.timeZone,
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	if booking.AttendeeEmail != "" {
		event.Attendees = []*calendar.EventAttendee{
			{Email: booking.AttendeeEmail},
		}
	}

	created, err := s.api.Events.Insert(s.calendarID, event).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	logger.Info("calendar event created",
		zap.String("eventId", created.Id),
		zap.String("summary", booking.Summary),
		zap.String("start", booking.StartTime.Format(time.RFC3339)))

	return &Result{EventID: created.Id, Link: created.HtmlLink}, nil
}
