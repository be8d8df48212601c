package record

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	beginEventLine   = FieldBegin + ":" + BlockEvent
	endCalendarLine  = FieldTerminator + ":VCALENDAR"
	maxLineBytes     = 1 << 20
	initialLineBytes = 64 * 1024
)

// PumpOptions controls stream behavior that differs between the two
// processing variants.
type PumpOptions struct {
	// SkipEmptyValues drops any line whose value part is empty. The portal
	// export occasionally emits such lines; the merge variant discards
	// them, the index variant keeps them.
	SkipEmptyValues bool
}

// Pump reads a calendar stream line by line. Lines outside event blocks
// are echoed to out unchanged; each complete VEVENT block is delivered to
// onEvent as a Record (including its BEGIN and END fields). The final
// END:VCALENDAR line invokes onClose before being echoed, so callers can
// emit staged or pending events ahead of the closing marker.
//
// A field line without a colon, or an END terminator naming a block type
// other than VEVENT while inside a block, aborts with
// *MalformedRecordError.
func Pump(in io.Reader, out io.Writer, opts PumpOptions, onEvent func(*Record) error, onClose func() error) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, initialLineBytes), maxLineBytes)

	var cur *Record
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return &MalformedRecordError{Reason: "field line without separator", Line: line}
		}
		if opts.SkipEmptyValues && value == "" {
			continue
		}

		if cur == nil {
			if line != beginEventLine {
				if line == endCalendarLine && onClose != nil {
					if err := onClose(); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
				continue
			}
			cur = New()
		}

		cur.Set(key, value)

		if key == FieldTerminator {
			if value != BlockEvent {
				return &MalformedRecordError{Reason: "terminator for unexpected block type", Line: line}
			}
			if err := onEvent(cur); err != nil {
				return err
			}
			cur = nil
		}
	}
	return sc.Err()
}

// WriteRecord serializes a record in field order, one FIELD:VALUE line
// per field. The END terminator must be the last field.
func WriteRecord(w io.Writer, r *Record) error {
	if r.lastKey() != FieldTerminator {
		return &MalformedRecordError{Reason: "terminator field is not last"}
	}
	var err error
	r.Each(func(key, value string) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s:%s\n", key, value)
	})
	return err
}
