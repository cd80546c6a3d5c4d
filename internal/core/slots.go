package core

import (
	"errors"
	"time"
)

// Working hours policy. Fixed by contract, not configuration: weekday
// business hours in UTC with a lunch exclusion.
const (
	WorkDayStartHour = 9
	WorkDayEndHour   = 17
	LunchStartHour   = 13
	LunchEndHour     = 14

	// MinSlotDuration is the floor for requested slot durations; shorter
	// requests are clamped up, never rejected.
	MinSlotDuration = 15 * time.Minute
)

// ErrInvalidWindow is returned when the requested window is empty or reversed
var ErrInvalidWindow = errors.New("window end must be after window start")

// ComputeSlots enumerates the bookable windows of the given duration between
// windowStart and windowEnd, skipping weekends, the lunch interval and any
// busy window. All interval comparisons are half-open. The result is ordered
// by ascending start time and is fully determined by the inputs.
func ComputeSlots(windowStart, windowEnd time.Time, duration time.Duration, busy []BusyWindow) ([]Slot, error) {
	if !windowEnd.After(windowStart) {
		return nil, ErrInvalidWindow
	}
	if duration < MinSlotDuration {
		duration = MinSlotDuration
	}

	windowStart = windowStart.UTC()
	windowEnd = windowEnd.UTC()

	slots := []Slot{}
	day := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)
	for ; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		dayStart := day.Add(WorkDayStartHour * time.Hour)
		dayEnd := day.Add(WorkDayEndHour * time.Hour)
		lunchStart := day.Add(LunchStartHour * time.Hour)
		lunchEnd := day.Add(LunchEndHour * time.Hour)

		cursor := dayStart
		if windowStart.After(cursor) {
			cursor = windowStart
		}
		limit := dayEnd
		if windowEnd.Before(limit) {
			limit = windowEnd
		}

		for ; !cursor.Add(duration).After(limit); cursor = cursor.Add(duration) {
			slot := Slot{StartTime: cursor, EndTime: cursor.Add(duration)}
			if slot.Overlaps(lunchStart, lunchEnd) {
				continue
			}
			if slotIsBusy(slot, busy) {
				continue
			}
			slots = append(slots, slot)
		}
	}

	return slots, nil
}

func slotIsBusy(slot Slot, busy []BusyWindow) bool {
	for _, w := range busy {
		if slot.Overlaps(w.Start, w.End) {
			return true
		}
	}
	return false
}
