package vtparser

import (
	"reflect"
	"strings"
	"testing"
)

// recorder captures every Handler callback in order, for asserting on the
// exact event stream a byte sequence produces.
type recorder struct {
	prints     []rune
	executes   []byte
	escs       []escCall
	csis       []csiCall
	oscs       []oscCall
	hooks      []csiCall
	puts       []byte
	unhooks    int
	truncated  int
}

type escCall struct {
	intermediates string
	final         byte
}

type csiCall struct {
	params        [][]int
	intermediates string
	ignore        bool
	final         byte
}

type oscCall struct {
	params         []string
	bellTerminated bool
}

func (r *recorder) Print(ru rune)   { r.prints = append(r.prints, ru) }
func (r *recorder) Execute(b byte)  { r.executes = append(r.executes, b) }
func (r *recorder) EscDispatch(intermediates []byte, ignore bool, final byte) {
	r.escs = append(r.escs, escCall{string(intermediates), final})
}
func (r *recorder) CsiDispatch(params [][]int, intermediates []byte, ignore bool, final byte) {
	cp := make([][]int, len(params))
	for i, p := range params {
		cp[i] = append([]int(nil), p...)
	}
	r.csis = append(r.csis, csiCall{cp, string(intermediates), ignore, final})
}
func (r *recorder) OscDispatch(params [][]byte, bellTerminated bool) {
	var ps []string
	for _, p := range params {
		ps = append(ps, string(p))
	}
	r.oscs = append(r.oscs, oscCall{ps, bellTerminated})
}
func (r *recorder) Hook(params [][]int, intermediates []byte, ignore bool, final byte) {
	cp := make([][]int, len(params))
	for i, p := range params {
		cp[i] = append([]int(nil), p...)
	}
	r.hooks = append(r.hooks, csiCall{cp, string(intermediates), ignore, final})
}
func (r *recorder) Put(b byte) { r.puts = append(r.puts, b) }
func (r *recorder) Unhook()    { r.unhooks++ }
func (r *recorder) Truncated() { r.truncated++ }

func parse(t *testing.T, input string) (*Parser, *recorder) {
	t.Helper()
	p := New()
	r := &recorder{}
	p.Parse([]byte(input), r)
	return p, r
}

func TestPrintASCII(t *testing.T) {
	p, r := parse(t, "hello")
	if string(r.prints) != "hello" {
		t.Errorf("prints = %q, want hello", string(r.prints))
	}
	if p.state != stateGround {
		t.Errorf("state = %v, want ground", p.state)
	}
}

func TestExecuteControls(t *testing.T) {
	_, r := parse(t, "a\r\nb")
	if string(r.prints) != "ab" {
		t.Errorf("prints = %q", string(r.prints))
	}
	if !reflect.DeepEqual(r.executes, []byte{0x0d, 0x0a}) {
		t.Errorf("executes = %v, want CR LF", r.executes)
	}
}

func TestCSIDispatchParams(t *testing.T) {
	_, r := parse(t, "\x1b[1;22H")
	if len(r.csis) != 1 {
		t.Fatalf("csis = %+v, want 1", r.csis)
	}
	c := r.csis[0]
	if c.final != 'H' || c.ignore {
		t.Errorf("call = %+v", c)
	}
	if !reflect.DeepEqual(c.params, [][]int{{1}, {22}}) {
		t.Errorf("params = %v, want [[1] [22]]", c.params)
	}
}

func TestCSIEmptyParamsDefaultToZero(t *testing.T) {
	_, r := parse(t, "\x1b[;5m")
	if !reflect.DeepEqual(r.csis[0].params, [][]int{{0}, {5}}) {
		t.Errorf("params = %v, want [[0] [5]]", r.csis[0].params)
	}
}

func TestCSIColonSubparams(t *testing.T) {
	_, r := parse(t, "\x1b[38:2::10:20:30m")
	want := [][]int{{38, 2, 0, 10, 20, 30}}
	if !reflect.DeepEqual(r.csis[0].params, want) {
		t.Errorf("params = %v, want %v", r.csis[0].params, want)
	}
}

func TestCSIMixedSemicolonAndColon(t *testing.T) {
	_, r := parse(t, "\x1b[1;4:3;31m")
	want := [][]int{{1}, {4, 3}, {31}}
	if !reflect.DeepEqual(r.csis[0].params, want) {
		t.Errorf("params = %v, want %v", r.csis[0].params, want)
	}
}

func TestCSIPrivateMarker(t *testing.T) {
	_, r := parse(t, "\x1b[?25h")
	c := r.csis[0]
	if c.intermediates != "?" || c.final != 'h' {
		t.Errorf("call = %+v, want ? marker and final h", c)
	}
	if !reflect.DeepEqual(c.params, [][]int{{25}}) {
		t.Errorf("params = %v", c.params)
	}
}

func TestCSIIntermediateByte(t *testing.T) {
	_, r := parse(t, "\x1b[4 q")
	c := r.csis[0]
	if c.intermediates != " " || c.final != 'q' {
		t.Errorf("call = %+v", c)
	}
}

func TestCSISplitAcrossFeeds(t *testing.T) {
	p := New()
	r := &recorder{}
	p.Parse([]byte("\x1b[3"), r)
	p.Parse([]byte("8;5;1"), r)
	p.Parse([]byte("2m"), r)

	if len(r.csis) != 1 {
		t.Fatalf("csis = %+v", r.csis)
	}
	if !reflect.DeepEqual(r.csis[0].params, [][]int{{38}, {5}, {12}}) {
		t.Errorf("params = %v", r.csis[0].params)
	}
}

func TestEscDispatch(t *testing.T) {
	_, r := parse(t, "\x1b7\x1b(B")
	if len(r.escs) != 2 {
		t.Fatalf("escs = %+v", r.escs)
	}
	if r.escs[0].final != '7' || r.escs[0].intermediates != "" {
		t.Errorf("esc 0 = %+v", r.escs[0])
	}
	if r.escs[1].final != 'B' || r.escs[1].intermediates != "(" {
		t.Errorf("esc 1 = %+v", r.escs[1])
	}
}

func TestOSCBelTerminated(t *testing.T) {
	p, r := parse(t, "\x1b]2;a title\x07")
	if len(r.oscs) != 1 {
		t.Fatalf("oscs = %+v", r.oscs)
	}
	if !reflect.DeepEqual(r.oscs[0].params, []string{"2", "a title"}) {
		t.Errorf("params = %v", r.oscs[0].params)
	}
	if !r.oscs[0].bellTerminated {
		t.Error("expected bell-terminated")
	}
	if len(r.executes) != 0 {
		t.Errorf("the terminating BEL must not Execute, got %v", r.executes)
	}
	if p.state != stateGround {
		t.Errorf("state = %v, want ground", p.state)
	}
}

func TestOSCStTerminated(t *testing.T) {
	p, r := parse(t, "\x1b]0;x\x1b\\")
	if len(r.oscs) != 1 || r.oscs[0].bellTerminated {
		t.Fatalf("oscs = %+v, want one ST-terminated", r.oscs)
	}
	if len(r.escs) != 0 {
		t.Errorf("ST must not leak an EscDispatch, got %+v", r.escs)
	}
	if p.state != stateGround {
		t.Errorf("state = %v, want ground", p.state)
	}
}

func TestOSCSplitAcrossFeeds(t *testing.T) {
	p := New()
	r := &recorder{}
	p.Parse([]byte("\x1b]52;c;aGVs"), r)
	p.Parse([]byte("bG8=\x07"), r)

	if len(r.oscs) != 1 {
		t.Fatalf("oscs = %+v", r.oscs)
	}
	if !reflect.DeepEqual(r.oscs[0].params, []string{"52", "c", "aGVsbG8="}) {
		t.Errorf("params = %v", r.oscs[0].params)
	}
}

func TestOSCTruncation(t *testing.T) {
	long := strings.Repeat("x", MaxOSCBytes+100)
	_, r := parse(t, "\x1b]2;"+long+"\x07")

	if r.truncated != 1 {
		t.Errorf("truncated calls = %d, want exactly 1", r.truncated)
	}
	if got := len(r.oscs[0].params[1]); got != MaxOSCBytes-2 {
		t.Errorf("retained OSC payload = %d bytes, want bound minus prefix", got)
	}
}

func TestDCSPayload(t *testing.T) {
	p, r := parse(t, "\x1bP1;2q#payload\x1b\\")
	if len(r.hooks) != 1 {
		t.Fatalf("hooks = %+v", r.hooks)
	}
	h := r.hooks[0]
	if h.final != 'q' || !reflect.DeepEqual(h.params, [][]int{{1}, {2}}) {
		t.Errorf("hook = %+v", h)
	}
	if string(r.puts) != "#payload" {
		t.Errorf("puts = %q", string(r.puts))
	}
	if r.unhooks != 1 {
		t.Errorf("unhooks = %d, want 1", r.unhooks)
	}
	if p.state != stateGround {
		t.Errorf("state = %v, want ground", p.state)
	}
}

func TestDCSTruncation(t *testing.T) {
	p := New()
	p.SetMaxDCSBytes(4)
	r := &recorder{}
	p.Parse([]byte("\x1bPqabcdefgh\x1b\\"), r)

	if string(r.puts) != "abcd" {
		t.Errorf("puts = %q, want first 4 bytes only", string(r.puts))
	}
	if r.truncated != 1 {
		t.Errorf("truncated calls = %d, want 1", r.truncated)
	}
	if r.unhooks != 1 {
		t.Errorf("unhook still expected after truncation, got %d", r.unhooks)
	}
}

func TestSosPmApcRouting(t *testing.T) {
	_, r := parse(t, "\x1b_Gdata\x1b\\")
	if len(r.hooks) != 1 {
		t.Fatalf("hooks = %+v", r.hooks)
	}
	if r.hooks[0].intermediates != "_" || r.hooks[0].final != 0 {
		t.Errorf("hook = %+v, want APC introducer", r.hooks[0])
	}
	if string(r.puts) != "Gdata" {
		t.Errorf("puts = %q", string(r.puts))
	}
	if r.unhooks != 1 {
		t.Errorf("unhooks = %d", r.unhooks)
	}
}

func TestCANAbortsSequence(t *testing.T) {
	_, r := parse(t, "\x1b[12\x18A")
	if len(r.csis) != 0 {
		t.Errorf("aborted CSI still dispatched: %+v", r.csis)
	}
	if string(r.prints) != "A" {
		t.Errorf("prints = %q, want A", string(r.prints))
	}
}

func TestUTF8MultiByte(t *testing.T) {
	_, r := parse(t, "héllo wörld")
	if string(r.prints) != "héllo wörld" {
		t.Errorf("prints = %q", string(r.prints))
	}
}

func TestUTF8SplitAcrossFeeds(t *testing.T) {
	raw := []byte("世") // 3 bytes
	p := New()
	r := &recorder{}
	p.Parse(raw[:1], r)
	p.Parse(raw[1:], r)
	if string(r.prints) != "世" {
		t.Errorf("prints = %q", string(r.prints))
	}
}

func TestInvalidUTF8EmitsReplacement(t *testing.T) {
	_, r := parse(t, "a\xffb")
	if string(r.prints) != "a�b" {
		t.Errorf("prints = %q, want replacement rune between a and b", string(r.prints))
	}
}

func TestCombiningMarkFoldsOntoBase(t *testing.T) {
	_, r := parse(t, "éx") // e + combining acute
	if string(r.prints) != "éx" {
		t.Errorf("prints = %q, want precomposed é", string(r.prints))
	}
}

func TestPureASCIIPrintDoesNotAllocate(t *testing.T) {
	p := New()
	data := []byte("the quick brown fox jumps over the lazy dog 0123456789")
	h := BaseHandler{}

	allocs := testing.AllocsPerRun(100, func() {
		p.Parse(data, h)
	})
	if allocs != 0 {
		t.Errorf("ASCII print path allocated %.1f times per feed, want 0", allocs)
	}
}

func TestFinalRuneFlushedAtFeedEnd(t *testing.T) {
	_, r := parse(t, "hello")
	if string(r.prints) != "hello" {
		t.Errorf("prints = %q, the last rune must not stay buffered", string(r.prints))
	}
}

func TestPendingRuneFlushedBeforeEscape(t *testing.T) {
	p := New()
	r := &recorder{}
	p.Parse([]byte("a\x1b[31mb"), r)

	// 'a' must be printed before the SGR dispatch, not after.
	if string(r.prints) != "ab" || len(r.csis) != 1 {
		t.Fatalf("prints = %q, csis = %+v", string(r.prints), r.csis)
	}
}

func TestParamClampOnAbsurdValues(t *testing.T) {
	_, r := parse(t, "\x1b[99999999999999999999H")
	if got := r.csis[0].params[0][0]; got != 1<<20 {
		t.Errorf("param = %d, want clamped to %d", got, 1<<20)
	}
}

func TestGroundStateAfterEverySequence(t *testing.T) {
	sequences := []string{
		"plain",
		"\x1b[1;2H",
		"\x1b]0;t\x07",
		"\x1b]0;t\x1b\\",
		"\x1bP1qdata\x1b\\",
		"\x1b_apc\x1b\\",
		"\x1b7",
		"\x1b(0",
	}
	for _, seq := range sequences {
		p, _ := parse(t, seq)
		if p.state != stateGround {
			t.Errorf("after %q state = %v, want ground", seq, p.state)
		}
	}
}
