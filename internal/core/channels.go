package core

import (
	"context"
	"fmt"
	"time"

	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// Outbound channel ports. Each provider integration lives behind one of
// these interfaces; a nil port means the channel is not configured and the
// worker records a skipped receipt instead of failing the lead.

// ChannelError wraps a provider failure with enough context to classify it.
type ChannelError struct {
	Channel   string
	Code      string
	Retryable bool
	Err       error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %s: %v", e.Channel, e.Code, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// NewChannelError builds a ChannelError for the given channel and code.
func NewChannelError(channel, code string, err error) *ChannelError {
	return &ChannelError{Channel: channel, Code: code, Err: err}
}

// EmailMessage is one outbound email, optionally saved as a draft.
type EmailMessage struct {
	To        string
	Subject   string
	BodyHTML  string
	DraftOnly bool
}

// EmailSender delivers outreach email for a lead.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (providerID string, err error)
}

// SMSMessage is one outbound text message.
type SMSMessage struct {
	To   string
	Body string
}

// SMSSender delivers outreach text messages.
type SMSSender interface {
	Send(ctx context.Context, msg SMSMessage) (providerID string, err error)
}

// CallRequest is one outbound voice call with a synthesized script.
type CallRequest struct {
	To     string
	Script string
}

// CallPlacer places outbound voice calls.
type CallPlacer interface {
	Place(ctx context.Context, req CallRequest) (providerID string, err error)
}

// AvatarRequest is one personalized avatar video render.
type AvatarRequest struct {
	Script   string
	LeadName string
}

// AvatarRenderer produces personalized avatar videos.
type AvatarRenderer interface {
	Render(ctx context.Context, req AvatarRequest) (assetURL string, err error)
}

// BusyWindow is one calendar busy interval reported by the provider.
type BusyWindow struct {
	Start time.Time
	End   time.Time
}

// CalendarEvent is one meeting invitation to create.
type CalendarEvent struct {
	Start     time.Time
	End       time.Time
	Summary   string
	Attendee  string
	TimeZone  string
	DraftOnly bool
}

// CreatedEvent identifies a booked calendar event and its conferencing link.
type CreatedEvent struct {
	EventID  string
	MeetLink string
}

// CalendarClient reads availability and books meetings for an org calendar.
type CalendarClient interface {
	ListBusy(ctx context.Context, orgID string, window BusyWindow) ([]BusyWindow, error)
	CreateEvent(ctx context.Context, orgID string, event CalendarEvent) (*CreatedEvent, error)
}

// ChannelSet bundles the configured outbound ports for a worker.
type ChannelSet struct {
	Email    EmailSender
	SMS      SMSSender
	Voice    CallPlacer
	Avatar   AvatarRenderer
	Calendar CalendarClient
}

// Available reports whether the channel required by the action is wired.
func (c ChannelSet) Available(action string) bool {
	switch action {
	case model.ActionEmail:
		return c.Email != nil
	case model.ActionSMS:
		return c.SMS != nil
	case model.ActionCall:
		return c.Voice != nil
	case model.ActionAvatar:
		return c.Avatar != nil
	case model.ActionMeeting:
		return c.Calendar != nil
	default:
		return false
	}
}
