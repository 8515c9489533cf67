package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// CalendarClient reads availability and books meetings through the calendar
// provider's REST API.
type CalendarClient struct {
	rest restClient
}

// NewCalendarClient builds a calendar provider client.
func NewCalendarClient(cfg config.ChannelProviderConfig, hc *http.Client) *CalendarClient {
	return &CalendarClient{rest: newRESTClient(cfg, model.ActionMeeting, hc)}
}

type busyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type freeBusyResponse struct {
	Busy []busyInterval `json:"busy"`
}

// ListBusy returns the calendar's busy intervals inside the window.
func (c *CalendarClient) ListBusy(ctx context.Context, orgID string, window core.BusyWindow) ([]core.BusyWindow, error) {
	q := url.Values{}
	q.Set("org", orgID)
	q.Set("start", window.Start.UTC().Format(time.RFC3339))
	q.Set("end", window.End.UTC().Format(time.RFC3339))

	var resp freeBusyResponse
	if err := c.rest.getJSON(ctx, "/v1/freebusy?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	busy := make([]core.BusyWindow, len(resp.Busy))
	for i, b := range resp.Busy {
		busy[i] = core.BusyWindow{Start: b.Start, End: b.End}
	}
	return busy, nil
}

type createEventRequest struct {
	OrgID    string `json:"org"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Summary  string `json:"summary"`
	Attendee string `json:"attendee"`
	TimeZone string `json:"timeZone"`
	Draft    bool   `json:"draft"`
}

type createEventResponse struct {
	EventID  string `json:"eventId"`
	MeetLink string `json:"meetLink"`
}

// CreateEvent books the meeting, or saves an unsent invitation when DraftOnly
// is set. The provider returns the conferencing link alongside the event id.
func (c *CalendarClient) CreateEvent(ctx context.Context, orgID string, event core.CalendarEvent) (*core.CreatedEvent, error) {
	if !event.End.After(event.Start) {
		return nil, core.NewChannelError(model.ActionMeeting, "invalid_window",
			fmt.Errorf("event end %s not after start %s", event.End, event.Start))
	}

	var resp createEventResponse
	err := c.rest.postJSON(ctx, "/v1/events", createEventRequest{
		OrgID:    orgID,
		Start:    event.Start.UTC().Format(time.RFC3339),
		End:      event.End.UTC().Format(time.RFC3339),
		Summary:  event.Summary,
		Attendee: event.Attendee,
		TimeZone: event.TimeZone,
		Draft:    event.DraftOnly,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &core.CreatedEvent{EventID: resp.EventID, MeetLink: resp.MeetLink}, nil
}
