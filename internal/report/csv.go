package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"shiftsync/internal/model"
)

// LedgerHeader is the header of the per-shift ledger.
const LedgerHeader = "Start,End,Time,Income,Tips,Paid,Project,Description"

// SummaryHeader is the header of the hourly summary.
const SummaryHeader = "Paid,Project,Hours Worked,Income,Hourly Wage"

// MarshalShift converts one shift to a ledger row, rendering instants in loc.
func MarshalShift(s model.Shift, loc *time.Location) []string {
	return []string{
		FormatTimestamp(s.Start, s.AllDay, loc),
		FormatTimestamp(s.End, s.AllDay, loc),
		FormatDuration(s.Duration),
		FormatMoney(s.Income),
		FormatMoney(s.Tips),
		FormatDate(s.Paid),
		s.Project,
		s.Description,
	}
}

// MarshalSummary converts one summary row to a CSV row.
func MarshalSummary(r SummaryRow) []string {
	return []string{
		r.Paid.String(),
		r.Project,
		FormatFloat(r.Hours),
		FormatMoney(r.Income),
		FormatFloat(r.Wage),
	}
}

// WriteLedger writes the header and one row per shift, in the given order.
func WriteLedger(w io.Writer, shifts []model.Shift, loc *time.Location) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(LedgerHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, s := range shifts {
		if err := cw.Write(MarshalShift(s, loc)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the header and the summary rows.
func WriteSummary(w io.Writer, rows []SummaryRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SummaryHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(MarshalSummary(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
