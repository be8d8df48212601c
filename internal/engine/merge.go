package engine

import (
	"strconv"

	"sdwcal/internal/annot"
	"sdwcal/internal/dates"
	"sdwcal/internal/record"
)

// addTime returns a new accumulator with the incoming event's hours
// added to the summary's hour tag and an audit note recording the
// addition.
func addTime(r Rules, acc, in *record.Record) *record.Record {
	out := acc.Clone()
	added := r.eventTime(in)
	total := r.eventTime(acc) + added
	out.Set(record.FieldSummary, annot.SetHours(out.Value(record.FieldSummary), total))
	addExtra(out, "add time", in.Value(record.FieldDescription), strconv.Itoa(added)+"h")
	return out
}

// extendDates returns a new accumulator whose span covers through the
// incoming event's last covered date, with the summary's duration tag
// rewritten to the new day count and an audit note recording the
// extension.
func extendDates(r Rules, acc, in *record.Record) (*record.Record, error) {
	out := acc.Clone()

	var newEnd string
	var days int
	if r.ExclusiveEnd {
		// Incoming DTEND is already one past its last covered day, so it
		// is both the new end and the span bound for the day count.
		newEnd = in.Value(record.FieldEnd)
		gap, err := dates.DayGap(out.Value(record.FieldStart), newEnd)
		if err != nil {
			return nil, err
		}
		days = gap
	} else {
		newEnd = in.Value(record.FieldStart)
		gap, err := dates.DayGap(out.Value(record.FieldStart), newEnd)
		if err != nil {
			return nil, err
		}
		days = gap + 1
	}

	out.Set(record.FieldEnd, newEnd)
	out.Set(record.FieldSummary, annot.SetDays(out.Value(record.FieldSummary), days))
	addExtra(out, "add date", in.Value(record.FieldDescription), in.Value(record.FieldStart))
	return out, nil
}

// addExtra appends an audit note to the internal __EXTRA__ field and
// restores the terminator to last position.
func addExtra(ev *record.Record, what, desc, detail string) {
	entry := what + ": " + desc + " [" + detail + "]"
	if cur, ok := ev.Get(record.FieldExtra); ok {
		entry = cur + "; " + entry
	}
	ev.Set(record.FieldExtra, entry)
	ev.MoveToEnd(record.FieldTerminator)
}
