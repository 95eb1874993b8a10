// Package calendar talks to the mentor's external calendar: it reads busy
// periods and creates events, optionally with a generated video link.
//
// Every call may refresh the OAuth access token. When it does, the rotated
// credential is returned alongside the result so the caller can persist it,
// including when the call itself fails after the refresh.
package calendar

import (
	"context"
	"time"

	"github.com/yoockh/mentorloop/internal/interval"
	"github.com/yoockh/mentorloop/internal/models"
)

type EventRequest struct {
	Summary     string
	Description string
	Window      interval.Interval
	TimeZone    string
	Attendees   []string

	// WantVideoLink asks the provider to attach a generated meeting link.
	// RequestID makes that conference request idempotent across retries.
	WantVideoLink bool
	RequestID     string
}

type Event struct {
	ID          string
	MeetingLink string
}

type Provider interface {
	// ListBusy returns the busy periods overlapping window.
	ListBusy(ctx context.Context, cred models.CalendarCredential, window interval.Interval) ([]interval.Interval, *models.CalendarCredential, error)
	CreateEvent(ctx context.Context, cred models.CalendarCredential, req EventRequest) (*Event, *models.CalendarCredential, error)
}

// rotated returns the new credential when the access token changed, else nil.
func rotated(before models.CalendarCredential, accessToken, refreshToken string, expiry time.Time) *models.CalendarCredential {
	if accessToken == "" || accessToken == before.AccessToken {
		return nil
	}
	out := models.CalendarCredential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Expiry:       expiry.UTC(),
	}
	if out.RefreshToken == "" {
		out.RefreshToken = before.RefreshToken
	}
	return &out
}
