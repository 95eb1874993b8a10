package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/yoockh/mentorloop/internal/interval"
	"github.com/yoockh/mentorloop/internal/models"
)

const primaryCalendar = "primary"

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overrides for non-production endpoints. Empty means Google's defaults.
	TokenURL    string
	APIEndpoint string
}

type GoogleCalendar struct {
	oauth       *oauth2.Config
	apiEndpoint string
}

func NewGoogleCalendar(cfg GoogleConfig) *GoogleCalendar {
	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint = oauth2.Endpoint{TokenURL: cfg.TokenURL, AuthStyle: oauth2.AuthStyleInParams}
	}
	return &GoogleCalendar{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{gcal.CalendarScope},
		},
		apiEndpoint: cfg.APIEndpoint,
	}
}

func (g *GoogleCalendar) ListBusy(ctx context.Context, cred models.CalendarCredential, window interval.Interval) ([]interval.Interval, *models.CalendarCredential, error) {
	svc, ts, err := g.service(ctx, cred)
	if err != nil {
		return nil, nil, err
	}

	resp, err := svc.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: window.Start.UTC().Format(time.RFC3339),
		TimeMax: window.End.UTC().Format(time.RFC3339),
		Items:   []*gcal.FreeBusyRequestItem{{Id: primaryCalendar}},
	}).Context(ctx).Do()
	newCred := g.rotation(cred, ts)
	if err != nil {
		return nil, newCred, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[primaryCalendar]
	if !ok {
		return nil, newCred, errors.New("freebusy query: primary calendar missing from response")
	}
	if len(cal.Errors) > 0 {
		return nil, newCred, fmt.Errorf("freebusy query: %s", cal.Errors[0].Reason)
	}

	busy := make([]interval.Interval, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err := time.Parse(time.RFC3339, p.Start)
		if err != nil {
			return nil, newCred, fmt.Errorf("freebusy start %q: %w", p.Start, err)
		}
		end, err := time.Parse(time.RFC3339, p.End)
		if err != nil {
			return nil, newCred, fmt.Errorf("freebusy end %q: %w", p.End, err)
		}
		busy = append(busy, interval.New(start, end))
	}
	return busy, newCred, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, cred models.CalendarCredential, req EventRequest) (*Event, *models.CalendarCredential, error) {
	svc, ts, err := g.service(ctx, cred)
	if err != nil {
		return nil, nil, err
	}

	ev := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &gcal.EventDateTime{DateTime: req.Window.Start.Format(time.RFC3339), TimeZone: req.TimeZone},
		End:         &gcal.EventDateTime{DateTime: req.Window.End.Format(time.RFC3339), TimeZone: req.TimeZone},
	}
	for _, email := range req.Attendees {
		if email = strings.TrimSpace(email); email != "" {
			ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: email})
		}
	}
	if req.WantVideoLink {
		ev.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             req.RequestID,
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
	}

	created, err := svc.Events.Insert(primaryCalendar, ev).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	newCred := g.rotation(cred, ts)
	if err != nil {
		return nil, newCred, fmt.Errorf("insert event: %w", err)
	}

	return &Event{ID: created.Id, MeetingLink: meetingLink(created)}, newCred, nil
}

func (g *GoogleCalendar) service(ctx context.Context, cred models.CalendarCredential) (*gcal.Service, oauth2.TokenSource, error) {
	ts := g.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	})

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return svc, ts, nil
}

// rotation reads the token source's current token; it does not trigger a
// refresh of its own when the cached token is still valid.
func (g *GoogleCalendar) rotation(before models.CalendarCredential, ts oauth2.TokenSource) *models.CalendarCredential {
	tok, err := ts.Token()
	if err != nil || tok == nil {
		return nil
	}
	return rotated(before, tok.AccessToken, tok.RefreshToken, tok.Expiry)
}

func meetingLink(ev *gcal.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" && ep.Uri != "" {
				return ep.Uri
			}
		}
	}
	return ""
}
