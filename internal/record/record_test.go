package record

import (
	"errors"
	"strings"
	"testing"
)

func sample() *Record {
	r := New()
	r.Set(FieldBegin, BlockEvent)
	r.Set(FieldStart, "20230103")
	r.Set(FieldSummary, "john doe (off)")
	r.Set(FieldDescription, "annual leave")
	r.Set(FieldTerminator, BlockEvent)
	return r
}

func keysOf(r *Record) []string {
	var keys []string
	r.Each(func(k, _ string) { keys = append(keys, k) })
	return keys
}

func TestSetPreservesInsertionOrder(t *testing.T) {
	r := sample()
	want := []string{FieldBegin, FieldStart, FieldSummary, FieldDescription, FieldTerminator}
	got := keysOf(r)
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSetExistingKeepsPosition(t *testing.T) {
	r := sample()
	r.Set(FieldSummary, "updated")
	got := keysOf(r)
	if got[2] != FieldSummary {
		t.Fatalf("expected SUMMARY to stay at index 2, got order %v", got)
	}
	if r.Value(FieldSummary) != "updated" {
		t.Fatalf("expected updated value, got %q", r.Value(FieldSummary))
	}
}

func TestMoveToEnd(t *testing.T) {
	r := sample()
	r.Set(FieldEnd, "20230104") // lands after the terminator
	r.MoveToEnd(FieldTerminator)
	got := keysOf(r)
	if got[len(got)-1] != FieldTerminator {
		t.Fatalf("expected terminator last, got order %v", got)
	}
	if got[len(got)-2] != FieldEnd {
		t.Fatalf("expected DTEND before terminator, got order %v", got)
	}
}

func TestRemove(t *testing.T) {
	r := sample()
	r.Remove(FieldDescription)
	if r.Has(FieldDescription) {
		t.Fatal("expected DESCRIPTION removed")
	}
	if r.Len() != 4 {
		t.Fatalf("expected 4 fields, got %d", r.Len())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	r := sample()
	c := r.Clone()
	c.Set(FieldSummary, "changed")
	c.Set(FieldEnd, "20230104")
	if r.Value(FieldSummary) != "john doe (off)" {
		t.Fatalf("clone mutation leaked into original: %q", r.Value(FieldSummary))
	}
	if r.Has(FieldEnd) {
		t.Fatal("clone field addition leaked into original")
	}
}

func TestWriteRecord(t *testing.T) {
	r := sample()
	var b strings.Builder
	if err := WriteRecord(&b, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "BEGIN:VEVENT\n" +
		"DTSTART:20230103\n" +
		"SUMMARY:john doe (off)\n" +
		"DESCRIPTION:annual leave\n" +
		"END:VEVENT\n"
	if b.String() != want {
		t.Fatalf("unexpected serialization:\n%s", b.String())
	}
}

func TestWriteRecordTerminatorNotLast(t *testing.T) {
	r := sample()
	r.Set(FieldEnd, "20230104") // appended after the terminator, no fixup
	var b strings.Builder
	err := WriteRecord(&b, r)
	var merr *MalformedRecordError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
}

const pumpInput = `BEGIN:VCALENDAR
VERSION:2.0
BEGIN:VEVENT
DTSTART:20230103
SUMMARY:john doe (off)
DESCRIPTION:annual leave
END:VEVENT
X-NOTE:kept
END:VCALENDAR
`

func TestPumpDeliversEventsAndEchoesRest(t *testing.T) {
	var out strings.Builder
	var events []*Record
	closed := false

	err := Pump(strings.NewReader(pumpInput), &out, PumpOptions{},
		func(ev *Record) error {
			events = append(events, ev)
			return nil
		},
		func() error {
			closed = true
			out.WriteString("X-FLUSHED:1\n")
			return nil
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if got := events[0].Value(FieldStart); got != "20230103" {
		t.Fatalf("unexpected DTSTART %q", got)
	}
	if !closed {
		t.Fatal("expected close hook to run")
	}
	want := "BEGIN:VCALENDAR\n" +
		"VERSION:2.0\n" +
		"X-NOTE:kept\n" +
		"X-FLUSHED:1\n" +
		"END:VCALENDAR\n"
	if out.String() != want {
		t.Fatalf("unexpected passthrough:\n%s", out.String())
	}
}

func TestPumpFieldLineWithoutColon(t *testing.T) {
	in := "BEGIN:VCALENDAR\nBROKEN\n"
	var out strings.Builder
	err := Pump(strings.NewReader(in), &out, PumpOptions{}, nil, nil)
	var merr *MalformedRecordError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
}

func TestPumpUnexpectedBlockTerminator(t *testing.T) {
	in := "BEGIN:VEVENT\nDTSTART:20230103\nEND:VTODO\n"
	var out strings.Builder
	err := Pump(strings.NewReader(in), &out, PumpOptions{},
		func(*Record) error { return nil }, nil)
	var merr *MalformedRecordError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedRecordError, got %v", err)
	}
}

func TestPumpSkipEmptyValues(t *testing.T) {
	in := "BEGIN:VCALENDAR\nX-EMPTY:\nEND:VCALENDAR\n"
	var out strings.Builder
	err := Pump(strings.NewReader(in), &out, PumpOptions{SkipEmptyValues: true}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.String(), "X-EMPTY") {
		t.Fatalf("expected empty-value line dropped, got:\n%s", out.String())
	}
}
