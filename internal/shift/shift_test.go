package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftsync/internal/annotation"
	"shiftsync/internal/model"
)

var testLoc = time.FixedZone("Test", -7*60*60)

func at(day, hour int) time.Time {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, testLoc)
}

func allDay(day int) time.Time {
	return time.Date(2024, time.June, day, 0, 0, 0, 0, testLoc)
}

func timed(project string, day, from, to int, desc string) model.RawEvent {
	return model.RawEvent{Summary: project, Description: desc, Start: at(day, from), End: at(day, to)}
}

func payday(project string, day int, desc string) model.RawEvent {
	return model.RawEvent{Summary: project, Description: desc, AllDay: true, Start: allDay(day), End: allDay(day + 1)}
}

func normalizeAll(t *testing.T, events ...model.RawEvent) []model.Shift {
	t.Helper()
	n := NewNormalizer(annotation.NewParser(), testLoc)
	out, err := n.NormalizeAll(events)
	require.NoError(t, err)
	return out
}

func paidDates(shifts []model.Shift) []string {
	out := make([]string, len(shifts))
	for i, s := range shifts {
		if s.Paid != nil {
			out[i] = s.Paid.String()
		}
	}
	return out
}

func TestNormalizeTimedShift(t *testing.T) {
	shifts := normalizeAll(t, timed("deep CLEANING", 3, 9, 13, "Office\nIncome: $80\nTips: 5.5"))
	s := shifts[0]

	assert.False(t, s.AllDay)
	assert.Equal(t, at(3, 9), s.Start)
	assert.Equal(t, at(3, 13), s.End)
	assert.Equal(t, 4*time.Hour, s.Duration)
	assert.Equal(t, "Deep Cleaning", s.Project)
	assert.Equal(t, "Office", s.Description)
	require.True(t, s.Income.Valid)
	assert.Equal(t, "80", s.Income.Decimal.String())
	require.True(t, s.Tips.Valid)
	assert.Equal(t, "5.5", s.Tips.Decimal.String())
}

func TestNormalizeIncomeMarksPaidOnStartDate(t *testing.T) {
	shifts := normalizeAll(t,
		timed("Tutoring", 5, 18, 20, "Income: 40"),
		payday("Tutoring", 9, "Income: $300"),
	)

	for _, s := range shifts {
		require.NotNil(t, s.Paid)
		assert.Equal(t, s.StartDate(), *s.Paid)
	}
}

func TestNormalizeWithoutIncomeIsUnpaid(t *testing.T) {
	shifts := normalizeAll(t, timed("Tutoring", 5, 18, 20, "Tips: 10"))

	assert.Nil(t, shifts[0].Paid)
	assert.False(t, shifts[0].Income.Valid)
	assert.True(t, shifts[0].Tips.Valid)
}

func TestNormalizeAllDayHasZeroDuration(t *testing.T) {
	shifts := normalizeAll(t,
		payday("cleaning", 4, "Income: $50"),
		payday("cleaning", 7, ""),
	)

	for _, s := range shifts {
		assert.True(t, s.AllDay)
		assert.Equal(t, s.Start, s.End)
		assert.Zero(t, s.Duration)
	}
}

func TestNormalizeAllDayAnchorsToReferenceZone(t *testing.T) {
	// A bare date read in UTC still lands on the same calendar date.
	ev := model.RawEvent{Summary: "x", AllDay: true, Start: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)}
	shifts := normalizeAll(t, ev)

	assert.Equal(t, allDay(4), shifts[0].Start)
	assert.Equal(t, model.Date{Year: 2024, Month: time.June, Day: 4}, shifts[0].StartDate())
}

func TestNormalizeTimedWithoutEnd(t *testing.T) {
	ev := model.RawEvent{Summary: "x", Start: at(2, 10)}
	shifts := normalizeAll(t, ev)

	assert.Equal(t, shifts[0].Start, shifts[0].End)
	assert.Zero(t, shifts[0].Duration)
	assert.False(t, shifts[0].AllDay)
}

func TestNormalizeMissingFields(t *testing.T) {
	n := NewNormalizer(nil, testLoc)

	_, err := n.Normalize(model.RawEvent{Summary: "x"})
	assert.ErrorIs(t, err, model.ErrMissingStart)

	_, err = n.Normalize(model.RawEvent{Start: at(1, 9), Summary: "  "})
	assert.ErrorIs(t, err, model.ErrMissingSummary)

	_, err = n.NormalizeAll([]model.RawEvent{timed("a", 1, 9, 10, ""), {Start: at(1, 9)}})
	assert.ErrorIs(t, err, model.ErrMissingSummary)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Dog Walking", TitleCase("dog walking"))
	assert.Equal(t, "Dog Walking", TitleCase("DOG WALKING"))
	assert.Equal(t, "Cleaning", TitleCase("cleaning"))
	// An apostrophe does not start a new word.
	assert.Equal(t, "O'brien Cleaning", TitleCase("o'brien cleaning"))
	assert.Equal(t, "Tom's Garden", TitleCase("TOM'S GARDEN"))
}

func TestFilterAndSortDropsFutureShifts(t *testing.T) {
	now := time.Date(2024, time.June, 10, 23, 30, 0, 0, testLoc)
	today := Today(now, testLoc)

	shifts := normalizeAll(t,
		timed("a", 11, 0, 1, ""), // tomorrow
		timed("a", 10, 22, 23, ""),
		payday("a", 11, "Income: 5"), // tomorrow
		payday("a", 10, "Income: 5"),
	)

	got := FilterAndSort(shifts, today)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.False(t, s.StartDate().After(today))
	}
}

func TestTodayUsesReferenceZone(t *testing.T) {
	// 03:00 UTC on the 11th is still the 10th at UTC-7.
	now := time.Date(2024, time.June, 11, 3, 0, 0, 0, time.UTC)

	assert.Equal(t, model.Date{Year: 2024, Month: time.June, Day: 10}, Today(now, testLoc))
	assert.Equal(t, model.Date{Year: 2024, Month: time.June, Day: 11}, Today(now, time.UTC))
}

func TestFilterAndSortIsStable(t *testing.T) {
	shifts := normalizeAll(t,
		timed("c", 3, 9, 10, "first at 3"),
		timed("a", 1, 9, 10, ""),
		timed("b", 3, 9, 11, "second at 3"),
		payday("d", 2, ""),
	)

	got := FilterAndSort(shifts, model.Date{Year: 2024, Month: time.June, Day: 30})
	require.Len(t, got, 4)

	assert.Equal(t, "A", got[0].Project)
	assert.Equal(t, "D", got[1].Project)
	assert.Equal(t, "first at 3", got[2].Description)
	assert.Equal(t, "second at 3", got[3].Description)
}

func TestPropagateBackfillsFromPayday(t *testing.T) {
	shifts := normalizeAll(t,
		timed("Cleaning", 1, 9, 11, ""),
		timed("Cleaning", 2, 9, 11, ""),
		timed("Cleaning", 3, 9, 11, ""),
		payday("Cleaning", 4, "Income: $50"),
	)

	Propagate(shifts, nil)

	assert.Equal(t, []string{"2024-06-04", "2024-06-04", "2024-06-04", "2024-06-04"}, paidDates(shifts))
}

func TestPropagateResetByAllDayWithoutIncome(t *testing.T) {
	// All-day markers sort at midnight, so a reset dated on day 3 lands
	// between the day 2 and day 3 shifts.
	shifts := normalizeAll(t,
		timed("Cleaning", 1, 9, 11, ""),
		timed("Cleaning", 2, 9, 11, ""),
		timed("Cleaning", 3, 9, 11, ""),
		payday("Cleaning", 4, "Income: $50"),
		payday("Cleaning", 3, ""),
	)
	shifts = FilterAndSort(shifts, model.Date{Year: 2024, Month: time.June, Day: 30})

	Propagate(shifts, nil)

	got := paidDates(shifts)
	assert.Equal(t, []string{"", "", "", "2024-06-04", "2024-06-04"}, got)
	assert.True(t, shifts[2].AllDay)
	assert.Equal(t, at(3, 9), shifts[3].Start)
}

func TestPropagateDirectlyPaidShiftStopsChain(t *testing.T) {
	shifts := normalizeAll(t,
		timed("Cleaning", 1, 9, 11, ""),
		timed("Cleaning", 2, 9, 11, "Income: 30"),
		timed("Cleaning", 3, 9, 11, ""),
		payday("Cleaning", 4, "Income: 50"),
	)

	Propagate(shifts, nil)

	assert.Equal(t, []string{"", "2024-06-02", "2024-06-04", "2024-06-04"}, paidDates(shifts))
}

func TestPropagateKeepsProjectsApart(t *testing.T) {
	shifts := normalizeAll(t,
		timed("Cleaning", 1, 9, 11, ""),
		timed("Tutoring", 2, 9, 11, ""),
		payday("Cleaning", 3, "Income: 50"),
		timed("Tutoring", 4, 9, 11, ""),
		payday("Tutoring", 5, "Income: 70"),
	)

	pending := Propagate(shifts, nil)

	assert.Equal(t, []string{"2024-06-03", "2024-06-05", "2024-06-03", "2024-06-05", "2024-06-05"}, paidDates(shifts))
	assert.Equal(t, Pending{
		"Cleaning": {Year: 2024, Month: time.June, Day: 3},
		"Tutoring": {Year: 2024, Month: time.June, Day: 5},
	}, pending)
}

func TestPropagateShiftsAfterLastPaydayStayUnpaid(t *testing.T) {
	shifts := normalizeAll(t,
		payday("Cleaning", 1, "Income: 50"),
		timed("Cleaning", 2, 9, 11, ""),
	)

	Propagate(shifts, nil)

	assert.Equal(t, []string{"2024-06-01", ""}, paidDates(shifts))
}

func TestPropagateSeededPending(t *testing.T) {
	shifts := normalizeAll(t, timed("Cleaning", 1, 9, 11, ""))

	Propagate(shifts, Pending{"Cleaning": {Year: 2024, Month: time.July, Day: 1}})

	assert.Equal(t, []string{"2024-07-01"}, paidDates(shifts))
}

func TestPropagateIsIdempotent(t *testing.T) {
	shifts := normalizeAll(t,
		timed("Cleaning", 1, 9, 11, ""),
		payday("Cleaning", 2, ""),
		timed("Cleaning", 3, 9, 11, ""),
		timed("Tutoring", 3, 12, 14, "Income: 20"),
		timed("Cleaning", 4, 9, 11, "Income: 10"),
		timed("Cleaning", 5, 9, 11, ""),
		payday("Cleaning", 6, "Income: 50"),
		timed("Cleaning", 7, 9, 11, ""),
	)
	shifts = FilterAndSort(shifts, model.Date{Year: 2024, Month: time.June, Day: 30})

	Propagate(shifts, nil)
	first := paidDates(shifts)
	Propagate(shifts, nil)

	assert.Equal(t, first, paidDates(shifts))
}
