package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/missionctl/leadrun-engine/internal/domain/schedule"
)

func TestOverlaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	half := 30 * time.Minute

	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{
			name:   "touching edges do not overlap",
			aStart: base, aEnd: base.Add(half),
			bStart: base.Add(half), bEnd: base.Add(2 * half),
			want: false,
		},
		{
			name:   "partial overlap",
			aStart: base, aEnd: base.Add(2 * half),
			bStart: base.Add(half), bEnd: base.Add(3 * half),
			want: true,
		},
		{
			name:   "contained interval",
			aStart: base, aEnd: base.Add(4 * half),
			bStart: base.Add(half), bEnd: base.Add(2 * half),
			want: true,
		},
		{
			name:   "disjoint",
			aStart: base, aEnd: base.Add(half),
			bStart: base.Add(3 * half), bEnd: base.Add(4 * half),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, schedule.Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
		})
	}
}

func TestFirstAvailable(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	dur := 30 * time.Minute
	candidates := []time.Time{
		base,
		base.Add(30 * time.Minute),
		base.Add(60 * time.Minute),
	}

	t.Run("skips busy candidates", func(t *testing.T) {
		t.Parallel()
		busy := []schedule.BusyRange{
			{Start: base, End: base.Add(45 * time.Minute)},
		}
		picked := schedule.FirstAvailable(candidates, dur, busy)
		require.NotNil(t, picked)
		assert.Equal(t, base.Add(60*time.Minute), picked.Start)
		assert.Equal(t, base.Add(90*time.Minute), picked.End)
		assert.Equal(t, 3, picked.Checked)
	})

	t.Run("busy end touching candidate start is free", func(t *testing.T) {
		t.Parallel()
		busy := []schedule.BusyRange{
			{Start: base.Add(-time.Hour), End: base},
		}
		picked := schedule.FirstAvailable(candidates, dur, busy)
		require.NotNil(t, picked)
		assert.Equal(t, base, picked.Start)
		assert.Equal(t, 1, picked.Checked)
	})

	t.Run("all busy returns nil", func(t *testing.T) {
		t.Parallel()
		busy := []schedule.BusyRange{
			{Start: base, End: base.Add(2 * time.Hour)},
		}
		assert.Nil(t, schedule.FirstAvailable(candidates, dur, busy))
	})

	t.Run("zero candidates are ignored", func(t *testing.T) {
		t.Parallel()
		picked := schedule.FirstAvailable([]time.Time{{}, base}, dur, nil)
		require.NotNil(t, picked)
		assert.Equal(t, base, picked.Start)
	})
}
