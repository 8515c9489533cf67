package schedule

// maxSearchWindows is the number of escalating windows tried per attempt.
const maxSearchWindows = 3

// Windows returns the escalating search windows for one scheduling attempt.
// Each later window widens business hours, the horizon, and the slot cap,
// with the last also admitting weekends. retryAttempt shifts the windows
// forward so a retried lead probes later, less contended slots.
func Windows(base SlotSearch, retryAttempt int) []SlotSearch {
	shift := retryAttempt - 1
	if shift < 0 {
		shift = 0
	}

	leadTime := 2 - shift
	if leadTime < 0 {
		leadTime = 0
	}

	windows := make([]SlotSearch, 0, maxSearchWindows)

	first := base
	first.LeadTimeDays = leadTime
	first.BusinessStartHour = 9
	first.BusinessEndHour = 17
	first.SearchDays = 7 + 3*shift
	first.MaxSlots = 40
	first.AnchorHour = 14 + shift
	if first.AnchorHour > 16 {
		first.AnchorHour = 16
	}
	first.IncludeWeekends = false
	windows = append(windows, first)

	second := base
	second.LeadTimeDays = leadTime
	second.BusinessStartHour = 8
	second.BusinessEndHour = 18
	second.SearchDays = 14 + 4*shift
	second.MaxSlots = 100
	second.AnchorHour = 13 + shift
	if second.AnchorHour > 17 {
		second.AnchorHour = 17
	}
	second.IncludeWeekends = false
	windows = append(windows, second)

	third := base
	third.LeadTimeDays = 0
	third.BusinessStartHour = 8
	third.BusinessEndHour = 20
	third.SearchDays = 21 + 4*shift
	third.MaxSlots = 160
	third.AnchorHour = 11
	third.IncludeWeekends = true
	windows = append(windows, third)

	return windows
}
