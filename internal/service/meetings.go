package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/domain/schedule"
)

// ErrNoSlotAvailable is returned when every search window came up busy.
var ErrNoSlotAvailable = errors.New("no available meeting slot")

// NoSlotError wraps ErrNoSlotAvailable with the scope of the failed search so
// receipts can record how hard the scheduler looked.
type NoSlotError struct {
	CandidatesChecked int
	PeakBusy          int
	WindowsTried      int
}

func (e *NoSlotError) Error() string {
	return fmt.Sprintf("no available meeting slot after %d windows (%d candidates, peak busy %d)",
		e.WindowsTried, e.CandidatesChecked, e.PeakBusy)
}

func (e *NoSlotError) Is(target error) bool { return target == ErrNoSlotAvailable }

// MeetingConfig holds meeting scheduling tunables.
type MeetingConfig struct {
	SlotMinutes int
}

// MeetingSchedulerOptions groups dependencies for MeetingScheduler.
type MeetingSchedulerOptions struct {
	Calendar core.CalendarClient
	Config   MeetingConfig
	Logger   *slog.Logger
	Time     core.TimeProvider
}

// MeetingScheduler finds a free calendar slot for a lead and books it. Slot
// search escalates through widening windows, and retry attempts shift the
// windows forward and rotate candidates so a retried lead probes different
// slots.
type MeetingScheduler struct {
	calendar core.CalendarClient
	cfg      MeetingConfig
	logger   *slog.Logger
	time     core.TimeProvider
}

// NewMeetingScheduler constructs a new MeetingScheduler.
func NewMeetingScheduler(opts MeetingSchedulerOptions) (*MeetingScheduler, error) {
	if opts.Calendar == nil {
		return nil, errors.New("CalendarClient is required")
	}
	cfg := opts.Config
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 30
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = systemTime{}
	}
	return &MeetingScheduler{
		calendar: opts.Calendar,
		cfg:      cfg,
		logger:   logger,
		time:     tp,
	}, nil
}

// ScheduleParams carries one scheduling attempt.
type ScheduleParams struct {
	OrgID        string
	Lead         model.Lead
	Config       model.RunConfig
	RetryAttempt int
}

// ScheduledMeeting reports a booked (or drafted) meeting.
type ScheduledMeeting struct {
	EventID      string    `json:"eventId,omitempty"`
	MeetLink     string    `json:"meetLink,omitempty"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	WindowIndex  int       `json:"windowIndex"`
	SlotsChecked int       `json:"slotsChecked"`
	Drafted      bool      `json:"drafted"`
}

// Schedule walks the escalating search windows, intersects candidates with
// the calendar's busy intervals, and books the first free slot. Returns a
// NoSlotError (matching ErrNoSlotAvailable) when every window is exhausted.
func (m *MeetingScheduler) Schedule(ctx context.Context, params ScheduleParams) (*ScheduledMeeting, error) {
	base := schedule.SlotSearch{
		Now:         m.time.Now(),
		TimeZone:    params.Config.TimeZone,
		SlotMinutes: m.cfg.SlotMinutes,
	}
	duration := time.Duration(m.cfg.SlotMinutes) * time.Minute

	exhausted := &NoSlotError{}
	for i, window := range schedule.Windows(base, params.RetryAttempt) {
		exhausted.WindowsTried = i + 1
		candidates, err := schedule.BuildCandidateSlots(window)
		if err != nil {
			return nil, fmt.Errorf("build candidate slots: %w", err)
		}
		if len(candidates) == 0 {
			continue
		}
		candidates = schedule.Rotate(candidates, params.RetryAttempt)

		// A dry run never touches the calendar: the first candidate stands
		// in for the slot the live path would have probed.
		if params.Config.DryRun {
			start := candidates[0]
			return &ScheduledMeeting{
				Start:        start,
				End:          start.Add(duration),
				WindowIndex:  i,
				SlotsChecked: 1,
				Drafted:      params.Config.DraftFirst,
			}, nil
		}

		busy, err := m.calendar.ListBusy(ctx, params.OrgID, core.BusyWindow{
			Start: candidates[0],
			End:   candidates[len(candidates)-1].Add(duration),
		})
		if err != nil {
			return nil, fmt.Errorf("list busy intervals: %w", err)
		}
		exhausted.CandidatesChecked += len(candidates)
		if len(busy) > exhausted.PeakBusy {
			exhausted.PeakBusy = len(busy)
		}

		ranges := make([]schedule.BusyRange, len(busy))
		for j, b := range busy {
			ranges[j] = schedule.BusyRange{Start: b.Start, End: b.End}
		}

		picked := schedule.FirstAvailable(candidates, duration, ranges)
		if picked == nil {
			m.logger.DebugContext(ctx, "search window exhausted",
				"window", i, "candidates", len(candidates), "busy", len(busy))
			continue
		}

		return m.book(ctx, params, picked, i)
	}
	return nil, exhausted
}

func (m *MeetingScheduler) book(ctx context.Context, params ScheduleParams, picked *schedule.Picked, windowIndex int) (*ScheduledMeeting, error) {
	meeting := &ScheduledMeeting{
		Start:        picked.Start,
		End:          picked.End,
		WindowIndex:  windowIndex,
		SlotsChecked: picked.Checked,
		Drafted:      params.Config.DraftFirst,
	}
	created, err := m.calendar.CreateEvent(ctx, params.OrgID, core.CalendarEvent{
		Start:     picked.Start,
		End:       picked.End,
		Summary:   fmt.Sprintf("Intro call with %s", params.Lead.DisplayName()),
		Attendee:  params.Lead.Email,
		TimeZone:  params.Config.TimeZone,
		DraftOnly: params.Config.DraftFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	meeting.EventID = created.EventID
	meeting.MeetLink = created.MeetLink

	m.logger.InfoContext(ctx, "meeting scheduled",
		"lead", params.Lead.DocID,
		"start", picked.Start.Format(time.RFC3339),
		"window", windowIndex,
		"drafted", meeting.Drafted)
	return meeting, nil
}
