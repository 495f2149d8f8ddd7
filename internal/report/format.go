// Package report renders shift ledgers and hourly wage summaries.
package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shiftsync/internal/model"
)

const (
	// TimestampLayout renders instants in the ledger.
	TimestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// FormatTimestamp renders t in loc. For all-day values only the date is
// meaningful and the clock part is always 00:00:00.
func FormatTimestamp(t time.Time, allDay bool, loc *time.Location) string {
	if allDay {
		return model.DateOf(t).String() + " 00:00:00"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// FormatDuration renders d as H:MM:SS with a six digit fraction when d has
// sub-second precision. Spans of a day or more are prefixed with "N day(s), ",
// and negative spans borrow a whole day so the clock part stays positive.
func FormatDuration(d time.Duration) string {
	const usPerDay = int64(24 * time.Hour / time.Microsecond)

	us := d.Microseconds()
	days := us / usPerDay
	rem := us % usPerDay
	if rem < 0 {
		rem += usPerDay
		days--
	}

	secs := rem / 1_000_000
	frac := rem % 1_000_000

	s := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
	if frac != 0 {
		s += fmt.Sprintf(".%06d", frac)
	}
	if days != 0 {
		unit := "days"
		if days == 1 || days == -1 {
			unit = "day"
		}
		s = fmt.Sprintf("%d %s, %s", days, unit, s)
	}
	return s
}

// FormatDate renders an optional date; nil renders empty.
func FormatDate(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// FormatMoney renders an optional amount; absent renders empty.
func FormatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

// FormatFloat renders NaN as empty and infinities as inf/-inf.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
