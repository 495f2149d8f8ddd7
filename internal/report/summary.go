package report

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shiftsync/internal/model"
)

// SummaryRow aggregates every shift sharing a paid date and project.
type SummaryRow struct {
	Paid    model.Date
	Project string

	Hours  float64
	Income decimal.NullDecimal
	// Wage is Income / Hours. It is NaN when Income is absent and infinite
	// when a group has income but no worked time.
	Wage float64
}

type groupKey struct {
	paid    model.Date
	project string
}

type groupTotals struct {
	worked time.Duration
	income decimal.NullDecimal
}

// BuildSummary groups shifts by (paid date, project) and sums hours and
// income per group. Shifts without a paid date are left out. Absent income
// values are skipped; a group whose shifts all lack income has absent income.
// Rows are ordered by paid date, then project.
func BuildSummary(shifts []model.Shift) []SummaryRow {
	totals := make(map[groupKey]*groupTotals)
	for _, s := range shifts {
		if s.Paid == nil {
			continue
		}
		k := groupKey{paid: *s.Paid, project: s.Project}
		g, ok := totals[k]
		if !ok {
			g = &groupTotals{}
			totals[k] = g
		}
		g.worked += s.Duration
		g.income = addMoney(g.income, s.Income)
	}

	rows := make([]SummaryRow, 0, len(totals))
	for k, g := range totals {
		hours := g.worked.Hours()
		rows = append(rows, SummaryRow{
			Paid:    k.paid,
			Project: k.project,
			Hours:   hours,
			Income:  g.income,
			Wage:    hourlyWage(g.income, hours),
		})
	}

	slices.SortFunc(rows, func(a, b SummaryRow) int {
		switch {
		case a.Paid.Before(b.Paid):
			return -1
		case a.Paid.After(b.Paid):
			return 1
		}
		return strings.Compare(a.Project, b.Project)
	})
	return rows
}

func addMoney(sum, v decimal.NullDecimal) decimal.NullDecimal {
	if !v.Valid {
		return sum
	}
	if !sum.Valid {
		return v
	}
	return decimal.NewNullDecimal(sum.Decimal.Add(v.Decimal))
}

func hourlyWage(income decimal.NullDecimal, hours float64) float64 {
	if !income.Valid {
		return math.NaN()
	}
	// Float division: zero hours yields ±Inf (or NaN for 0/0) instead of panicking.
	return income.Decimal.InexactFloat64() / hours
}
