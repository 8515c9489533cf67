package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
	"github.com/missionctl/leadrun-engine/internal/mocks"
)

func newMeetingFixture(t *testing.T) (*mocks.MockCalendarClient, *MeetingScheduler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	calendar := mocks.NewMockCalendarClient(ctrl)
	svc, err := NewMeetingScheduler(MeetingSchedulerOptions{
		Calendar: calendar,
		Config:   MeetingConfig{SlotMinutes: 30},
		Time:     testClock{now: testNow},
	})
	require.NoError(t, err)
	return calendar, svc
}

func scheduleParams() ScheduleParams {
	return ScheduleParams{
		OrgID: "org-1",
		Lead: model.Lead{
			DocID:       "lead-1",
			Email:       "founder@acme.io",
			FounderName: "Jo",
		},
		Config:       model.RunConfig{TimeZone: "UTC"},
		RetryAttempt: 1,
	}
}

func TestMeetingScheduler_Schedule_BooksFirstFreeSlot(t *testing.T) {
	t.Parallel()
	calendar, svc := newMeetingFixture(t)
	ctx := context.Background()

	calendar.EXPECT().
		ListBusy(ctx, "org-1", gomock.Any()).
		Return(nil, nil)
	calendar.EXPECT().
		CreateEvent(ctx, "org-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, event core.CalendarEvent) (*core.CreatedEvent, error) {
			assert.Equal(t, "founder@acme.io", event.Attendee)
			assert.Contains(t, event.Summary, "Jo")
			assert.Equal(t, 30*time.Minute, event.End.Sub(event.Start))
			assert.True(t, event.Start.After(testNow))
			return &core.CreatedEvent{EventID: "event-1", MeetLink: "https://meet.example.com/abc"}, nil
		})

	meeting, err := svc.Schedule(ctx, scheduleParams())
	require.NoError(t, err)
	assert.Equal(t, "event-1", meeting.EventID)
	assert.Equal(t, "https://meet.example.com/abc", meeting.MeetLink)
	assert.Equal(t, 0, meeting.WindowIndex)
	assert.False(t, meeting.Drafted)
	assert.Equal(t, 30*time.Minute, meeting.End.Sub(meeting.Start))
}

func TestMeetingScheduler_Schedule_DryRunSkipsCalendar(t *testing.T) {
	t.Parallel()
	_, svc := newMeetingFixture(t)
	ctx := context.Background()

	// No ListBusy and no CreateEvent expectations: a dry run must not touch
	// the calendar at all, and still reports the slot it would have taken.
	params := scheduleParams()
	params.Config.DryRun = true
	params.Config.DraftFirst = true

	meeting, err := svc.Schedule(ctx, params)
	require.NoError(t, err)
	assert.Empty(t, meeting.EventID)
	assert.True(t, meeting.Drafted)
	assert.True(t, meeting.Start.After(testNow))
	assert.Equal(t, 30*time.Minute, meeting.End.Sub(meeting.Start))
}

func TestMeetingScheduler_Schedule_AllBusy(t *testing.T) {
	t.Parallel()
	calendar, svc := newMeetingFixture(t)
	ctx := context.Background()

	// Every window reports one busy block covering the whole search range.
	calendar.EXPECT().
		ListBusy(ctx, "org-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, window core.BusyWindow) ([]core.BusyWindow, error) {
			return []core.BusyWindow{{
				Start: window.Start.Add(-time.Hour),
				End:   window.End.Add(time.Hour),
			}}, nil
		}).
		Times(3)

	_, err := svc.Schedule(ctx, scheduleParams())
	require.ErrorIs(t, err, ErrNoSlotAvailable)

	var noSlot *NoSlotError
	require.ErrorAs(t, err, &noSlot)
	assert.Equal(t, 3, noSlot.WindowsTried)
	assert.Positive(t, noSlot.CandidatesChecked)
	assert.Equal(t, 1, noSlot.PeakBusy)
}

func TestMeetingScheduler_Schedule_CalendarError(t *testing.T) {
	t.Parallel()
	calendar, svc := newMeetingFixture(t)
	ctx := context.Background()

	calendar.EXPECT().
		ListBusy(ctx, "org-1", gomock.Any()).
		Return(nil, errors.New("calendar unreachable"))

	_, err := svc.Schedule(ctx, scheduleParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calendar unreachable")
}

func TestMeetingScheduler_Schedule_RetryShiftsWindows(t *testing.T) {
	t.Parallel()
	calendar, svc := newMeetingFixture(t)
	ctx := context.Background()

	var firstAttemptStart, retryStart time.Time
	calendar.EXPECT().
		ListBusy(ctx, "org-1", gomock.Any()).
		Return(nil, nil).
		Times(2)
	calendar.EXPECT().
		CreateEvent(ctx, "org-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, event core.CalendarEvent) (*core.CreatedEvent, error) {
			if firstAttemptStart.IsZero() {
				firstAttemptStart = event.Start
			} else {
				retryStart = event.Start
			}
			return &core.CreatedEvent{EventID: "event-1"}, nil
		}).
		Times(2)

	_, err := svc.Schedule(ctx, scheduleParams())
	require.NoError(t, err)

	retry := scheduleParams()
	retry.RetryAttempt = 2
	_, err = svc.Schedule(ctx, retry)
	require.NoError(t, err)

	// A retried lead probes a different slot than the first attempt.
	assert.NotEqual(t, firstAttemptStart, retryStart)
}
