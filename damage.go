package vtcore

import "sort"

// maxDirtyRects bounds the number of distinct dirty rows tracked before the
// damage tracker coarsens to a full-screen mark.
const maxDirtyRects = 64

// DamageSet is the read-only view TakeDamage returns: either a full-screen
// invalidation or a sorted list of dirty row indices, tagged with a
// monotonically increasing frame id.
type DamageSet struct {
	FrameID uint64
	Full    bool
	Rows    []int
}

// damageTracker coarsens a Buffer's per-cell dirty flags into line-granular
// damage, falling back to a full-screen mark above 50% dirty rows, and
// stamps each TakeDamage call with an increasing frame id.
type damageTracker struct {
	frameID uint64
}

func newDamageTracker() *damageTracker {
	return &damageTracker{}
}

// take derives this frame's DamageSet from buf's dirty cells and atomically
// clears the tracking state.
func (d *damageTracker) take(buf *Buffer) DamageSet {
	d.frameID++
	if !buf.HasDirty() {
		return DamageSet{FrameID: d.frameID}
	}

	rowSet := make(map[int]struct{})
	for _, pos := range buf.DirtyCells() {
		rowSet[pos.Row] = struct{}{}
	}

	full := len(rowSet)*2 > buf.Rows()
	var rows []int
	if !full {
		rows = make([]int, 0, len(rowSet))
		for r := range rowSet {
			rows = append(rows, r)
		}
		sort.Ints(rows)
		if len(rows) > maxDirtyRects {
			full = true
			rows = nil
		}
	}

	buf.ClearAllDirty()
	return DamageSet{FrameID: d.frameID, Full: full, Rows: rows}
}
