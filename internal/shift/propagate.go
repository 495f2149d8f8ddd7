package shift

import "shiftsync/internal/model"

// Pending holds, per project, the paid date that earlier unpaid shifts will
// inherit. A missing entry means nothing is pending.
type Pending map[string]model.Date

// Propagate assigns paid dates to unpaid shifts, walking shifts (sorted
// ascending by start) from newest to oldest.
//
// An all-day shift with income is a payday: every earlier unpaid shift of the
// same project inherits its date. The chain for a project stops at an all-day
// shift without income or at any shift that was already paid directly.
//
// pending seeds the walk with dates owed by shifts newer than the slice and
// may be nil. The returned map is the state after the oldest shift; shifts is
// updated in place.
func Propagate(shifts []model.Shift, pending Pending) Pending {
	if pending == nil {
		pending = Pending{}
	}

	for i := len(shifts) - 1; i >= 0; i-- {
		s := &shifts[i]
		paid := s.IsPaid()

		if s.AllDay || paid {
			if paid && s.AllDay {
				pending[s.Project] = *s.Paid
			} else {
				delete(pending, s.Project)
			}
		}

		if !paid {
			if d, ok := pending[s.Project]; ok {
				s.Paid = &d
			}
		}
	}

	return pending
}
