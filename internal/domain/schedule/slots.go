package schedule

import (
	"fmt"
	"time"
)

// SlotSearch describes one candidate-generation window.
type SlotSearch struct {
	// Now anchors the search; zero means time.Now().
	Now time.Time
	// TimeZone is the lead's IANA timezone for business-hours math.
	TimeZone string
	// LeadTimeDays pushes the first candidate day into the future.
	LeadTimeDays int
	// SlotMinutes is the candidate grid step and meeting duration.
	SlotMinutes int
	// BusinessStartHour..BusinessEndHour bound candidate starts per day.
	BusinessStartHour int
	BusinessEndHour   int
	// SearchDays is the horizon scanned past the anchor day.
	SearchDays int
	// MaxSlots caps the number of generated candidates.
	MaxSlots int
	// AnchorHour is the earliest start considered on the first day.
	AnchorHour int
	// IncludeWeekends admits Saturday and Sunday candidate days.
	IncludeWeekends bool
}

func (s SlotSearch) withDefaults() SlotSearch {
	if s.Now.IsZero() {
		s.Now = time.Now()
	}
	if s.LeadTimeDays < 0 {
		s.LeadTimeDays = 0
	}
	if s.SlotMinutes <= 0 {
		s.SlotMinutes = 30
	}
	if s.BusinessStartHour == 0 {
		s.BusinessStartHour = 9
	}
	if s.BusinessEndHour == 0 {
		s.BusinessEndHour = 17
	}
	if s.SearchDays <= 0 {
		s.SearchDays = 7
	}
	if s.MaxSlots <= 0 {
		s.MaxSlots = 40
	}
	if s.AnchorHour == 0 {
		s.AnchorHour = 14
	}
	return s
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

func roundUpToSlot(minutes, slotMinutes int) int {
	remainder := minutes % slotMinutes
	if remainder == 0 {
		return minutes
	}
	return minutes + (slotMinutes - remainder)
}

// BuildCandidateSlots generates candidate meeting start instants in UTC for
// the given search window. Local wall-clock times are converted through the
// lead's timezone location, so candidates stay DST-correct across
// transitions. Results are strictly in the future, sorted ascending, and
// capped at MaxSlots.
func BuildCandidateSlots(search SlotSearch) ([]time.Time, error) {
	s := search.withDefaults()

	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.TimeZone, err)
	}

	nowLocal := s.Now.In(loc)
	anchor := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)
	anchor = anchor.AddDate(0, 0, s.LeadTimeDays)
	for !s.IncludeWeekends && isWeekend(anchor.Weekday()) {
		anchor = anchor.AddDate(0, 0, 1)
	}

	startMinuteBase := s.BusinessStartHour * 60
	lastStartMinute := s.BusinessEndHour*60 - s.SlotMinutes
	anchorMinute := s.AnchorHour * 60

	var slots []time.Time
	for dayOffset := 0; dayOffset <= s.SearchDays && len(slots) < s.MaxSlots; dayOffset++ {
		day := anchor.AddDate(0, 0, dayOffset)
		if !s.IncludeWeekends && isWeekend(day.Weekday()) {
			continue
		}

		firstMinute := startMinuteBase
		if dayOffset == 0 {
			if rounded := roundUpToSlot(anchorMinute, s.SlotMinutes); rounded > firstMinute {
				firstMinute = rounded
			}
		}
		if firstMinute > lastStartMinute {
			continue
		}

		for minute := firstMinute; minute <= lastStartMinute && len(slots) < s.MaxSlots; minute += s.SlotMinutes {
			slot := time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, loc)
			if slot.After(s.Now) {
				slots = append(slots, slot.UTC())
			}
		}
	}

	return slots, nil
}

// Rotate returns the candidate list rotated left by (retryAttempt-1) mod len,
// so repeated attempts never re-probe identical slots in the same order.
func Rotate(candidates []time.Time, retryAttempt int) []time.Time {
	if len(candidates) == 0 || retryAttempt <= 1 {
		return candidates
	}
	by := (retryAttempt - 1) % len(candidates)
	if by == 0 {
		return candidates
	}
	out := make([]time.Time, 0, len(candidates))
	out = append(out, candidates[by:]...)
	out = append(out, candidates[:by]...)
	return out
}
