// Package shift turns raw calendar events into shift records and resolves
// when each shift was paid.
package shift

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shiftsync/internal/annotation"
	"shiftsync/internal/model"
)

// Normalizer converts RawEvents into Shifts.
type Normalizer struct {
	parser *annotation.Parser
	loc    *time.Location
}

// NewNormalizer returns a Normalizer that reads pay annotations with parser and
// expresses every instant in loc. A nil parser uses the default allow-list and
// a nil loc means time.Local.
func NewNormalizer(parser *annotation.Parser, loc *time.Location) *Normalizer {
	if parser == nil {
		parser = annotation.NewParser()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{parser: parser, loc: loc}
}

// Normalize builds one Shift from ev. All-day events get End == Start so their
// duration is zero; the feed's DTEND is ignored for them. A shift carrying an
// Income annotation is considered paid on its own start date.
func (n *Normalizer) Normalize(ev model.RawEvent) (model.Shift, error) {
	if ev.Start.IsZero() {
		return model.Shift{}, fmt.Errorf("normalize %q: %w", ev.UID, model.ErrMissingStart)
	}
	if strings.TrimSpace(ev.Summary) == "" {
		return model.Shift{}, fmt.Errorf("normalize %q: %w", ev.UID, model.ErrMissingSummary)
	}

	var start, end time.Time
	if ev.AllDay {
		start = model.DateOf(ev.Start).In(n.loc)
		end = start
	} else {
		start = ev.Start.In(n.loc)
		end = start
		if !ev.End.IsZero() {
			end = ev.End.In(n.loc)
		}
	}

	pay := n.parser.Parse(ev.Description)

	s := model.Shift{
		Start:       start,
		End:         end,
		AllDay:      ev.AllDay,
		Duration:    end.Sub(start),
		Income:      pay.Values.Number(annotation.KeyIncome),
		Tips:        pay.Values.Number(annotation.KeyTips),
		Project:     TitleCase(ev.Summary),
		Description: pay.Cleaned,
	}

	if s.Income.Valid {
		d := s.StartDate()
		s.Paid = &d
	}

	return s, nil
}

// NormalizeAll normalizes every event, stopping at the first malformed one.
func (n *Normalizer) NormalizeAll(events []model.RawEvent) ([]model.Shift, error) {
	out := make([]model.Shift, 0, len(events))
	for _, ev := range events {
		s, err := n.Normalize(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// TitleCase upper-cases the first letter of every word and lower-cases the
// rest: "deep CLEANING" becomes "Deep Cleaning". Letters after an apostrophe
// stay lower-case, so "o'brien" becomes "O'brien".
func TitleCase(s string) string {
	return cases.Title(language.Und).String(s)
}
