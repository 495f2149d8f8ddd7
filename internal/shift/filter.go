package shift

import (
	"slices"
	"time"

	"shiftsync/internal/model"
)

// Today is the current calendar date as seen from loc.
func Today(now time.Time, loc *time.Location) model.Date {
	if loc == nil {
		loc = time.Local
	}
	return model.DateOf(now.In(loc))
}

// FilterAndSort drops shifts starting after today and returns the rest ordered
// by start instant. Shifts sharing a start instant keep their input order.
// The input slice is not modified.
func FilterAndSort(shifts []model.Shift, today model.Date) []model.Shift {
	out := make([]model.Shift, 0, len(shifts))
	for _, s := range shifts {
		if s.StartDate().After(today) {
			continue
		}
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b model.Shift) int {
		return a.Start.Compare(b.Start)
	})
	return out
}
