package engine

import (
	"strings"

	"sdwcal/internal/annot"
	"sdwcal/internal/dates"
	"sdwcal/internal/log"
	"sdwcal/internal/record"
)

const (
	// fullDayHours is the hour-equivalent threshold at or above which an
	// event counts as a whole working day.
	fullDayHours = 7
	// hoursPerDay converts a day tag into hour-equivalents.
	hoursPerDay = 8
	// halfDayHours is assumed when only an AM/PM marker encodes duration.
	halfDayHours = 4
	// bridgeWindowDays bounds the weekend-bridging gap: a Friday-to-Monday
	// style gap merges only when shorter than one week.
	bridgeWindowDays = 7
)

// Rules captures the behavior differences between the two processing
// variants. Construct with ExpandRules or MergeRules.
type Rules struct {
	// TagField is the field whose duration tag encodes logged time.
	TagField string
	// FoldCase compares descriptions case-insensitively.
	FoldCase bool
	// StripDayTags also removes (Nd) tags for description equality.
	StripDayTags bool
	// ExclusiveEnd treats DTEND as midnight of the day after the last
	// covered day.
	ExclusiveEnd bool
	// RequireIncomingFullDay demands the incoming event also be full-day
	// for a date-extend merge.
	RequireIncomingFullDay bool
	// BumpEndOnEmit adds one day to DTEND at emission time, for the
	// variant that stages inclusive end dates.
	BumpEndOnEmit bool
}

// ExpandRules is the index variant: duration tags live in DESCRIPTION,
// staged end dates are inclusive and bumped at emission.
func ExpandRules() Rules {
	return Rules{
		TagField:      record.FieldDescription,
		BumpEndOnEmit: true,
	}
}

// MergeRules is the merge variant: normalized events carry exclusive end
// dates and summary tags, descriptions compare case-insensitively, and
// only full-day events extend a span.
func MergeRules() Rules {
	return Rules{
		TagField:               record.FieldSummary,
		FoldCase:               true,
		StripDayTags:           true,
		ExclusiveEnd:           true,
		RequireIncomingFullDay: true,
	}
}

// descKey is the comparison key deciding whether two events are the same
// activity: the description with duration tags stripped.
func (r Rules) descKey(ev *record.Record) string {
	desc := ev.Value(record.FieldDescription)
	if r.StripDayTags {
		desc = annot.StripTags(desc)
	} else {
		desc = annot.StripHourTag(desc)
	}
	if r.FoldCase {
		desc = strings.ToLower(desc)
	}
	return desc
}

// eventTime returns the event's duration in hour-equivalents: an hour
// tag wins, then a day tag at 8h per day, then an AM/PM marker as a half
// day, defaulting to a full day.
func (r Rules) eventTime(ev *record.Record) int {
	text := ev.Value(r.TagField)
	if h := annot.Hours(text); h > 0 {
		return h
	}
	if d := annot.Days(text); d > 0 {
		return d * hoursPerDay
	}
	if annot.HasMeridiem(ev.Value(record.FieldSummary)) {
		return halfDayHours
	}
	return hoursPerDay
}

func (r Rules) fullDay(ev *record.Record) bool {
	return r.eventTime(ev) >= fullDayHours
}

// lastCoveredDate returns the last day the event covers.
func (r Rules) lastCoveredDate(ev *record.Record) (string, error) {
	end, ok := ev.Get(record.FieldEnd)
	if !ok {
		if r.ExclusiveEnd {
			// Normalized events always carry an end date; fall back to the
			// start so processing can continue.
			log.Warn("event has no end date", "summary", ev.Value(record.FieldSummary))
		}
		return ev.Value(record.FieldStart), nil
	}
	if r.ExclusiveEnd {
		return dates.PrevDay(end)
	}
	return end, nil
}

// nextEligibleDate reports whether an event starting on next may extend
// a span whose last covered day is prev: strictly consecutive days, or a
// sub-week gap from a week-ending day onto a week-starting day (the
// weekend bridge).
func nextEligibleDate(prev, next string) (bool, error) {
	following, err := dates.NextDay(prev)
	if err != nil {
		return false, err
	}
	if following == next {
		return true, nil
	}
	gap, err := dates.DayGap(prev, next)
	if err != nil {
		return false, err
	}
	if gap >= bridgeWindowDays {
		return false, nil
	}
	ends, err := dates.EndsWeek(prev)
	if err != nil || !ends {
		return false, err
	}
	return dates.StartsWeek(next)
}
