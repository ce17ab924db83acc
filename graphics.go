package vtcore

import "bytes"

// maxGraphicsBytes bounds how much of a DCS/APC graphics payload is
// retained before Truncated is set, independent of vtparser's own
// maxDCSBytes (which bounds Put delivery, not this accumulation).
const maxGraphicsBytes = 4 << 20

// DcsPayload is the opaque capture of a DCS or SOS/PM/APC string: the
// introducer and its structural control parameters, plus the raw payload
// bytes, undecoded. Sixel (DCS ... q) and Kitty graphics (APC "G...") both
// arrive this way; the core never decodes pixels or stores images in a
// Cell or Buffer. Callers that want to render images parse Data themselves -
// ParseKittyControlData and the numeric CSI-style Params are provided as
// a head start.
type DcsPayload struct {
	// Kind is the introducer byte: 'P' for DCS, 'X' for SOS, '^' for PM,
	// '_' for APC.
	Kind byte
	// Final is the DCS dispatch final byte (e.g. 'q' for Sixel). Zero for
	// SOS/PM/APC, which have no final byte.
	Final byte
	// Params holds DCS's CSI-style numeric parameters (e.g. Sixel's
	// P1;P2;P3). Empty for SOS/PM/APC.
	Params [][]int
	// Data is the raw payload bytes as streamed through Put, capped at
	// maxGraphicsBytes.
	Data []byte
	// Truncated is true if Data was capped before Unhook.
	Truncated bool
}

// graphicsCapture accumulates one DCS/SOS/PM/APC payload between Hook and
// Unhook. It is not safe for concurrent use; the executor owns exactly one
// instance and resets it per sequence.
type graphicsCapture struct {
	active    bool
	kind      byte
	final     byte
	params    [][]int
	buf       bytes.Buffer
	truncated bool
}

func (g *graphicsCapture) begin(params [][]int, intermediates []byte, final byte) {
	g.active = true
	g.final = final
	g.params = params
	g.buf.Reset()
	g.truncated = false
	if final != 0 {
		g.kind = 'P' // DCS
	} else if len(intermediates) > 0 {
		g.kind = intermediates[0] // 'X', '^', or '_'
	}
}

func (g *graphicsCapture) put(b byte) {
	if !g.active {
		return
	}
	if g.buf.Len() >= maxGraphicsBytes {
		g.truncated = true
		return
	}
	g.buf.WriteByte(b)
}

func (g *graphicsCapture) end() DcsPayload {
	p := DcsPayload{
		Kind:      g.kind,
		Final:     g.final,
		Params:    g.params,
		Data:      g.buf.Bytes(),
		Truncated: g.truncated,
	}
	g.active = false
	return p
}

// ParseKittyControlData splits a Kitty graphics APC payload ("G" prefix
// already stripped by the caller if present) into its comma-separated
// key=value control fields and the trailing base64 payload after the first
// ';'. Values are returned as raw strings; callers that need the
// numeric/enum forms (action, format, image id, ...) parse them from this
// map, matching the key set documented by the Kitty graphics protocol.
func ParseKittyControlData(data []byte) (fields map[string]string, payload []byte) {
	if len(data) > 0 && data[0] == 'G' {
		data = data[1:]
	}

	controlData := data
	if sep := bytes.IndexByte(data, ';'); sep >= 0 {
		controlData = data[:sep]
		payload = data[sep+1:]
	}

	fields = make(map[string]string)
	for _, pair := range bytes.Split(controlData, []byte(",")) {
		eq := bytes.IndexByte(pair, '=')
		if eq <= 0 {
			continue
		}
		fields[string(pair[:eq])] = string(pair[eq+1:])
	}
	return fields, payload
}
