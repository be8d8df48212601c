// Package record implements the ordered field mapping used for one
// calendar event block, plus the line-oriented reader/writer for the
// block format the portal export uses.
package record

import "fmt"

// Field names emitted by the portal export. BEGIN is kept as an ordinary
// field so a block round-trips byte for byte; END doubles as the block
// terminator and must stay last.
const (
	FieldBegin       = "BEGIN"
	FieldStart       = "DTSTART"
	FieldEnd         = "DTEND"
	FieldSummary     = "SUMMARY"
	FieldDescription = "DESCRIPTION"
	FieldTerminator  = "END"

	// FieldExtra holds audit notes added during consolidation. It is never
	// part of the export format and is folded into DESCRIPTION on output.
	FieldExtra = "__EXTRA__"

	// BlockEvent is the block type this tool understands.
	BlockEvent = "VEVENT"
)

// MalformedRecordError reports a structural problem with a block: a field
// line without a separator, a terminator for an unexpected block type, or
// a record whose terminator is no longer the last field.
type MalformedRecordError struct {
	Reason string
	Line   string
}

func (e *MalformedRecordError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("malformed record: %s: %q", e.Reason, e.Line)
	}
	return "malformed record: " + e.Reason
}

// Record is an ordered field → value mapping. Field order is preserved
// from first insertion; setting an existing field keeps its position.
type Record struct {
	keys []string
	vals map[string]string
}

func New() *Record {
	return &Record{vals: make(map[string]string)}
}

func (r *Record) Get(key string) (string, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Value returns the field value, or "" when absent.
func (r *Record) Value(key string) string {
	return r.vals[key]
}

func (r *Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

func (r *Record) Set(key, value string) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = value
}

func (r *Record) Remove(key string) {
	if _, ok := r.vals[key]; !ok {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// MoveToEnd re-appends an existing field so it serializes last. Used to
// keep the END terminator in place after fields are added mid-merge.
func (r *Record) MoveToEnd(key string) {
	if _, ok := r.vals[key]; !ok {
		return
	}
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	r.keys = append(r.keys, key)
}

// Clone returns an independent copy, used to seed a new accumulator.
func (r *Record) Clone() *Record {
	c := &Record{
		keys: append([]string(nil), r.keys...),
		vals: make(map[string]string, len(r.vals)),
	}
	for k, v := range r.vals {
		c.vals[k] = v
	}
	return c
}

func (r *Record) Len() int {
	return len(r.keys)
}

// Each calls fn for every field in insertion order.
func (r *Record) Each(fn func(key, value string)) {
	for _, k := range r.keys {
		fn(k, r.vals[k])
	}
}

// lastKey returns the final field name, or "" for an empty record.
func (r *Record) lastKey() string {
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[len(r.keys)-1]
}
