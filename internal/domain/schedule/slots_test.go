package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionctl/leadrun-engine/internal/domain/schedule"
)

func TestBuildCandidateSlots(t *testing.T) {
	t.Parallel()

	// Monday.
	monday := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	t.Run("first day starts at anchor hour", func(t *testing.T) {
		t.Parallel()
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               monday,
			TimeZone:          "UTC",
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        1,
			MaxSlots:          40,
			AnchorHour:        14,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)

		// Day 0 runs 14:00..16:30, day 1 runs 9:00..16:30.
		assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), slots[0])
		assert.Len(t, slots, 6+16)
		assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), slots[6])
	})

	t.Run("weekend anchor advances to monday", func(t *testing.T) {
		t.Parallel()
		saturday := time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC)
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               saturday,
			TimeZone:          "UTC",
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        1,
			MaxSlots:          5,
			AnchorHour:        9,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, time.Monday, slots[0].Weekday())
	})

	t.Run("weekends included when requested", func(t *testing.T) {
		t.Parallel()
		saturday := time.Date(2026, 3, 7, 7, 0, 0, 0, time.UTC)
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               saturday,
			TimeZone:          "UTC",
			SlotMinutes:       30,
			BusinessStartHour: 8,
			BusinessEndHour:   20,
			SearchDays:        2,
			MaxSlots:          5,
			AnchorHour:        11,
			IncludeWeekends:   true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, time.Saturday, slots[0].Weekday())
	})

	t.Run("candidates are strictly future", func(t *testing.T) {
		t.Parallel()
		lateMonday := time.Date(2026, 3, 2, 16, 45, 0, 0, time.UTC)
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               lateMonday,
			TimeZone:          "UTC",
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        2,
			MaxSlots:          40,
			AnchorHour:        9,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), slots[0])
		for _, s := range slots {
			assert.True(t, s.After(lateMonday))
		}
	})

	t.Run("lead time pushes the anchor day", func(t *testing.T) {
		t.Parallel()
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               monday,
			TimeZone:          "UTC",
			LeadTimeDays:      2,
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        1,
			MaxSlots:          3,
			AnchorHour:        9,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), slots[0])
	})

	t.Run("timezone offsets track daylight saving", func(t *testing.T) {
		t.Parallel()
		// US eastern time springs forward on 2026-03-08.
		beforeShift := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               beforeShift,
			TimeZone:          "America/New_York",
			LeadTimeDays:      3,
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        0,
			MaxSlots:          1,
			AnchorHour:        9,
		})
		require.NoError(t, err)
		require.NotEmpty(t, slots)
		// 9:00 local on Monday 2026-03-09 is EDT, so 13:00 UTC.
		assert.Equal(t, time.Date(2026, 3, 9, 13, 0, 0, 0, time.UTC), slots[0])
	})

	t.Run("max slots caps output", func(t *testing.T) {
		t.Parallel()
		slots, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:               monday,
			TimeZone:          "UTC",
			SlotMinutes:       30,
			BusinessStartHour: 9,
			BusinessEndHour:   17,
			SearchDays:        14,
			MaxSlots:          10,
			AnchorHour:        9,
		})
		require.NoError(t, err)
		assert.Len(t, slots, 10)
	})

	t.Run("invalid timezone errors", func(t *testing.T) {
		t.Parallel()
		_, err := schedule.BuildCandidateSlots(schedule.SlotSearch{
			Now:      monday,
			TimeZone: "Not/AZone",
		})
		assert.Error(t, err)
	})
}

func TestRotate(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	in := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}

	assert.Equal(t, in, schedule.Rotate(in, 1))
	assert.Equal(t, []time.Time{in[1], in[2], in[0]}, schedule.Rotate(in, 2))
	assert.Equal(t, in, schedule.Rotate(in, 4))
	assert.Empty(t, schedule.Rotate(nil, 3))
}
