package service

import (
	"fmt"
	"time"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"
)

const (
	// SlotInterval is the length of one bookable slot
	SlotInterval = 15 * time.Minute

	// SlotLabelLayout formats slot labels on the 12-hour clock, e.g. "09:00 AM"
	SlotLabelLayout = "03:04 PM"

	// DateLayout is the exchanged calendar date format
	DateLayout = "2006-01-02"

	workingHoursLayout = "15:04"
)

// Daily break window, [BreakStart, BreakEnd), as offsets from midnight
const (
	BreakStart = 13 * time.Hour
	BreakEnd   = 14 * time.Hour
)

var ErrInvalidWorkingHours = apperror.New(apperror.KindInvalidInput, "invalid working hours, use HH:MM")

// GenerateSlots returns the ordered slot labels for one working day.
// Slots start every SlotInterval from hours.Start while strictly before hours.End,
// skipping the daily break. A start at or after end yields no slots.
func GenerateSlots(hours entity.WorkingHours, date time.Time) ([]string, error) {
	start, err := parseClock(hours.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(hours.End)
	if err != nil {
		return nil, err
	}

	slots := []string{}
	if start >= end {
		return slots, nil
	}

	// Labels are computed on a fixed UTC midnight so DST shifts on date never skew the grid
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	for t := start; t < end; t += SlotInterval {
		if t >= BreakStart && t < BreakEnd {
			continue
		}
		slots = append(slots, midnight.Add(t).Format(SlotLabelLayout))
	}
	return slots, nil
}

// ValidateWorkingHours checks both bounds parse and start is before end
func ValidateWorkingHours(hours entity.WorkingHours) error {
	start, err := parseClock(hours.Start)
	if err != nil {
		return err
	}
	end, err := parseClock(hours.End)
	if err != nil {
		return err
	}
	if start >= end {
		return apperror.New(apperror.KindInvalidInput, "working hours start must be before end")
	}
	return nil
}

// parseClock converts HH:MM into an offset from midnight
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse(workingHoursLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWorkingHours, value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
