// Package normalize prepares merge-variant events for consolidation.
// Events that carry exact start/end instants are converted to local
// wall-clock time, their worked hours/days computed and written into the
// duration tags, and their date bounds collapsed to whole days with an
// exclusive end.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"sdwcal/internal/annot"
	"sdwcal/internal/dates"
	"sdwcal/internal/log"
	"sdwcal/internal/record"
)

const (
	// fullDayHours and above counts as one day of work.
	fullDayHours = 7
	// overrunHours is the slack for timezone offsets; elapsed hours above
	// it are flagged as an anomaly and kept.
	overrunHours = 9
	// halfDayHours and below gets an AM/PM half-day marker.
	halfDayHours = 4

	origPrefix = "ORIG"
)

// DefaultZone is the portal's wall-clock zone.
const DefaultZone = "Europe/Brussels"

type Normalizer struct {
	loc *time.Location
}

func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc}
}

// Apply normalizes one event in place. The transient ORIG* instant
// fields it creates are consumed before it returns; afterwards the event
// has whole-day DTSTART/DTEND bounds with DTEND exclusive and the
// terminator last.
func (n *Normalizer) Apply(ev *record.Record) error {
	if err := captureInstants(ev); err != nil {
		return err
	}
	return n.clean(ev)
}

// captureInstants moves high-precision DTSTART/DTEND values aside and
// truncates the fields to whole-day dates. An instant end falls during
// its day, so the whole-day exclusive end is the following day.
func captureInstants(ev *record.Record) error {
	for _, key := range []string{record.FieldStart, record.FieldEnd} {
		value, ok := ev.Get(key)
		if !ok || !strings.Contains(value, "T") {
			continue
		}
		if len(value) < len(dates.Layout) {
			return &dates.FormatError{Value: value, Layout: dates.LayoutInstant}
		}
		date := value[:len(dates.Layout)]
		if _, err := dates.Parse(date); err != nil {
			return err
		}
		if key == record.FieldEnd {
			next, err := dates.NextDay(date)
			if err != nil {
				return err
			}
			date = next
		}
		ev.Set(origPrefix+key, value)
		ev.Set(key, date)
	}
	return nil
}

func (n *Normalizer) clean(ev *record.Record) error {
	// Every event gets an end date; whole-day events cover exactly their
	// start day, so the exclusive end is start +1.
	if !ev.Has(record.FieldEnd) {
		next, err := dates.NextDay(ev.Value(record.FieldStart))
		if err != nil {
			return err
		}
		ev.Set(record.FieldEnd, next)
		ev.MoveToEnd(record.FieldTerminator)
	}

	exactStart, haveStart, err := n.takeInstant(ev, origPrefix+record.FieldStart)
	if err != nil {
		return err
	}
	exactEnd, haveEnd, err := n.takeInstant(ev, origPrefix+record.FieldEnd)
	if err != nil {
		return err
	}

	summary := ev.Value(record.FieldSummary)
	if !haveStart || !haveEnd {
		if annot.Hours(summary) >= fullDayHours {
			ev.Set(record.FieldSummary, annot.SetDays(summary, 1))
		}
		return nil
	}

	delta := exactEnd.Sub(exactStart)
	days := int(delta / (24 * time.Hour))
	hours := int(delta % (24 * time.Hour) / time.Hour)

	if hours >= fullDayHours {
		days++
		if hours > overrunHours {
			log.Warn("elapsed hours beyond timezone slack",
				"days", days, "hours", hours,
				"start", exactStart, "end", exactEnd, "summary", summary)
		} else {
			hours = 0
		}
	}

	if days > 0 {
		if hours > 0 {
			// Upstream export bug: an hour count written on an event that
			// spans more than a day. Mark it and round the span up.
			ev.Set(record.FieldSummary, summary+"?")
			ev.Set(record.FieldDescription, ev.Value(record.FieldDescription)+" hours: "+strconv.Itoa(hours))
			log.Warn("day span with hourly tag, rounding up",
				"days", days, "hours", hours,
				"start", exactStart, "end", exactEnd, "summary", summary)
			days++
		}
		ev.Set(record.FieldSummary, annot.SetDays(ev.Value(record.FieldSummary), days))
		ev.Set(record.FieldDescription, annot.SetDays(ev.Value(record.FieldDescription), days))
		return nil
	}

	if hours <= halfDayHours {
		half := "AM"
		if exactStart.Hour() >= 12 {
			half = "PM"
		}
		ev.Set(record.FieldSummary, half+" "+ev.Value(record.FieldSummary))
	}
	ev.Set(record.FieldSummary, annot.SetHours(ev.Value(record.FieldSummary), hours))
	ev.Set(record.FieldDescription, annot.SetHours(ev.Value(record.FieldDescription), hours))
	return nil
}

// takeInstant consumes a transient ORIG* field, returning its value as
// local wall-clock time.
func (n *Normalizer) takeInstant(ev *record.Record, key string) (time.Time, bool, error) {
	value, ok := ev.Get(key)
	if !ok {
		return time.Time{}, false, nil
	}
	ev.Remove(key)
	t, err := dates.ToLocal(value, n.loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
