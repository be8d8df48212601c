package engine

import (
	"sdwcal/internal/annot"
	"sdwcal/internal/dates"
	"sdwcal/internal/record"
)

// finalize applies the emission contract before a record leaves the
// engine: a defaulted end date, the audit field folded into the
// description, and beautified text. The serializer's terminator-last
// check still runs afterwards.
func (r Rules) finalize(ev *record.Record) error {
	if !ev.Has(record.FieldEnd) {
		end := ev.Value(record.FieldStart)
		if r.ExclusiveEnd {
			next, err := dates.NextDay(end)
			if err != nil {
				return err
			}
			end = next
		}
		ev.Set(record.FieldEnd, end)
		ev.MoveToEnd(record.FieldTerminator)
	}
	if r.BumpEndOnEmit {
		// Staged end dates are inclusive; the emitted DTEND must be one
		// day past the last covered day.
		next, err := dates.NextDay(ev.Value(record.FieldEnd))
		if err != nil {
			return err
		}
		ev.Set(record.FieldEnd, next)
	}

	if extra, ok := ev.Get(record.FieldExtra); ok {
		ev.Set(record.FieldDescription, ev.Value(record.FieldDescription)+": ["+extra+"]")
		ev.Remove(record.FieldExtra)
	}

	ev.Set(record.FieldSummary, annot.Beautify(ev.Value(record.FieldSummary)))
	ev.Set(record.FieldDescription, annot.Beautify(ev.Value(record.FieldDescription)))
	return nil
}
