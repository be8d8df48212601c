// Package engine implements the event consolidation state machine: a
// single pending accumulator event that each incoming event either folds
// into (same day → add logged time, next eligible day → extend the date
// span) or flushes to output.
package engine

import (
	"sdwcal/internal/record"
)

// Engine consumes events in staged order and owns the one accumulator
// event until it is emitted. emit receives fully finalized records.
type Engine struct {
	rules Rules
	emit  func(*record.Record) error
	acc   *record.Record
}

func New(rules Rules, emit func(*record.Record) error) *Engine {
	return &Engine{rules: rules, emit: emit}
}

// Feed processes one incoming event. Input is assumed to be staged in
// owner/category/date order; the engine never reorders.
func (e *Engine) Feed(in *record.Record) error {
	if e.acc == nil {
		e.acc = in.Clone()
		return nil
	}

	if e.rules.descKey(e.acc) != e.rules.descKey(in) {
		return e.restart(in)
	}

	last, err := e.rules.lastCoveredDate(e.acc)
	if err != nil {
		return err
	}
	if last == in.Value(record.FieldStart) {
		// Same day, additional time logged for the same activity.
		e.acc = addTime(e.rules, e.acc, in)
		return nil
	}

	mergeable, err := e.dateExtendEligible(in, last)
	if err != nil {
		return err
	}
	if mergeable {
		acc, err := extendDates(e.rules, e.acc, in)
		if err != nil {
			return err
		}
		e.acc = acc
		return nil
	}
	return e.restart(in)
}

// dateExtendEligible mirrors the merge condition ordering: accumulator
// full-day, then date adjacency, then (merge variant) incoming full-day.
func (e *Engine) dateExtendEligible(in *record.Record, last string) (bool, error) {
	if !e.rules.fullDay(e.acc) {
		return false, nil
	}
	next, err := nextEligibleDate(last, in.Value(record.FieldStart))
	if err != nil || !next {
		return false, err
	}
	if e.rules.RequireIncomingFullDay && !e.rules.fullDay(in) {
		return false, nil
	}
	return true, nil
}

// Flush emits whatever remains in the accumulator; called at end of
// stream, unconditionally even for a lone first event.
func (e *Engine) Flush() error {
	if e.acc == nil {
		return nil
	}
	ev := e.acc
	e.acc = nil
	if err := e.rules.finalize(ev); err != nil {
		return err
	}
	return e.emit(ev)
}

func (e *Engine) restart(in *record.Record) error {
	if err := e.Flush(); err != nil {
		return err
	}
	e.acc = in.Clone()
	return nil
}
