package vtcore

// OutboundEventKind identifies which variant of OutboundEvent a value
// holds.
type OutboundEventKind int

const (
	EventTitleChanged OutboundEventKind = iota
	EventIconChanged
	EventBellRung
	EventClipboardWrite
	EventClipboardReadRequest
	EventHyperlinkActivated
	EventUnknownSequence
	EventDcsPayload
)

// OutboundEvent is a single out-of-band notification produced while feeding
// bytes; only the fields relevant to Kind are populated. Events accumulate
// in emission order and are drained by Events().
type OutboundEvent struct {
	Kind OutboundEventKind

	// TitleChanged / IconChanged: the new string. For ClipboardWrite, the
	// decoded payload text.
	Text string

	// ClipboardWrite / ClipboardReadRequest: selection is 'c' (CLIPBOARD)
	// or 'p' (PRIMARY); Base64 is the OSC 52 payload as received.
	Selection byte
	Base64    string

	// HyperlinkActivated
	HyperlinkURI string
	HyperlinkID  string

	// UnknownSequence
	UnknownFinal byte
	UnknownKind  string // "csi", "esc", or "osc"

	// DcsPayload
	Payload *DcsPayload
}

// pushEvent appends an event to the outbound queue. Callers must hold the
// emulator's write lock.
func (e *Emulator) pushEvent(ev OutboundEvent) {
	e.events = append(e.events, ev)
}

// Events drains and returns every OutboundEvent queued since the last call,
// in emission order. Like TakeDamage, reading consumes: a second call
// returns only events produced in between.
func (e *Emulator) Events() []OutboundEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	evs := e.events
	e.events = nil
	return evs
}
