package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionctl/leadrun-engine/internal/domain/schedule"
)

func TestWindows(t *testing.T) {
	t.Parallel()

	base := schedule.SlotSearch{
		Now:         time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		TimeZone:    "UTC",
		SlotMinutes: 30,
	}

	t.Run("first attempt", func(t *testing.T) {
		t.Parallel()
		windows := schedule.Windows(base, 1)
		require.Len(t, windows, 3)

		assert.Equal(t, 2, windows[0].LeadTimeDays)
		assert.Equal(t, 9, windows[0].BusinessStartHour)
		assert.Equal(t, 17, windows[0].BusinessEndHour)
		assert.Equal(t, 7, windows[0].SearchDays)
		assert.Equal(t, 40, windows[0].MaxSlots)
		assert.Equal(t, 14, windows[0].AnchorHour)
		assert.False(t, windows[0].IncludeWeekends)

		assert.Equal(t, 2, windows[1].LeadTimeDays)
		assert.Equal(t, 8, windows[1].BusinessStartHour)
		assert.Equal(t, 18, windows[1].BusinessEndHour)
		assert.Equal(t, 14, windows[1].SearchDays)
		assert.Equal(t, 100, windows[1].MaxSlots)
		assert.Equal(t, 13, windows[1].AnchorHour)
		assert.False(t, windows[1].IncludeWeekends)

		assert.Equal(t, 0, windows[2].LeadTimeDays)
		assert.Equal(t, 8, windows[2].BusinessStartHour)
		assert.Equal(t, 20, windows[2].BusinessEndHour)
		assert.Equal(t, 21, windows[2].SearchDays)
		assert.Equal(t, 160, windows[2].MaxSlots)
		assert.Equal(t, 11, windows[2].AnchorHour)
		assert.True(t, windows[2].IncludeWeekends)
	})

	t.Run("retries shift and widen", func(t *testing.T) {
		t.Parallel()
		windows := schedule.Windows(base, 3)
		require.Len(t, windows, 3)

		assert.Equal(t, 0, windows[0].LeadTimeDays)
		assert.Equal(t, 13, windows[0].SearchDays)
		assert.Equal(t, 16, windows[0].AnchorHour)

		assert.Equal(t, 22, windows[1].SearchDays)
		assert.Equal(t, 15, windows[1].AnchorHour)

		assert.Equal(t, 29, windows[2].SearchDays)
		assert.Equal(t, 11, windows[2].AnchorHour)
	})

	t.Run("anchor hour stays inside business hours", func(t *testing.T) {
		t.Parallel()
		windows := schedule.Windows(base, 10)
		assert.Equal(t, 16, windows[0].AnchorHour)
		assert.Equal(t, 17, windows[1].AnchorHour)
	})

	t.Run("base fields carry through", func(t *testing.T) {
		t.Parallel()
		windows := schedule.Windows(base, 1)
		for _, w := range windows {
			assert.Equal(t, base.Now, w.Now)
			assert.Equal(t, "UTC", w.TimeZone)
			assert.Equal(t, 30, w.SlotMinutes)
		}
	})
}
