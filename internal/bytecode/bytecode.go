// Package bytecode defines the seam between this repo and the external
// managed-bytecode decoder: an event stream the decoder produces and
// internal/codegen consumes. The decoder itself is out of scope (spec.md
// §1); this package owns only the interface and a small in-memory fake used
// by tests.
package bytecode

// EventKind identifies one step of the bytecode decoder's event stream.
type EventKind uint8

const (
	EventLoadConstantByte EventKind = iota
	EventLoadConstantWord
	EventLoadString
	EventCall
	EventReturn
)

// Event is one step of the stream. Origin/Offset identify where in the
// decoded bytecode method this event came from, for error reporting via
// asmerr.AtMethod; the other fields vary by Kind.
type Event struct {
	Kind   EventKind
	Origin string // enclosing bytecode method name
	Offset int    // event index within Origin

	ByteValue   byte   // EventLoadConstantByte
	WordValue   uint16 // EventLoadConstantWord
	StringValue string // EventLoadString: name of the RODATA label holding the string's bytes

	Target string // EventCall: runtime-library method name, overload already resolved by the decoder
}

// EventSource streams decoded bytecode events one at a time. Next returns
// ok=false once the stream is exhausted.
type EventSource interface {
	Next() (Event, bool, error)
}

// FakeSource is an in-memory EventSource backed by a fixed slice, used by
// codegen tests in place of the real external decoder.
type FakeSource struct {
	events []Event
	pos    int
}

// NewFakeSource wraps events as an EventSource.
func NewFakeSource(events []Event) *FakeSource {
	return &FakeSource{events: events}
}

func (f *FakeSource) Next() (Event, bool, error) {
	if f.pos >= len(f.events) {
		return Event{}, false, nil
	}
	ev := f.events[f.pos]
	f.pos++
	return ev, true, nil
}
