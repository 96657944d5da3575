package gc

import "github.com/tinyjs/corevm/heap"

// WeakTable is the side table spec §4.5 describes for WeakMap/WeakSet/
// WeakRef: entries keyed by the weakly-held target CP, nullified once a
// mark phase completes without visiting that target. Grounded on
// hive/index.pool's pattern of a reusable table keyed by a transient
// identity rather than a strong reference — here the "transient identity"
// is the target CP itself, since a weak table must never be the reason a
// target stays marked.
type WeakTable struct {
	entries map[heap.CP][]func()
}

// NewWeakTable creates an empty weak-reference side table.
func NewWeakTable() *WeakTable {
	return &WeakTable{entries: make(map[heap.CP][]func())}
}

// Register records that target is weakly held, invoking onCollected (to
// drop a WeakMap entry, clear a WeakRef's referent, etc.) if a future
// sweep finds target unreachable. Returns an Unregister func for the rare
// case a binding is removed before the target ever dies (e.g.
// WeakMap.prototype.delete).
func (w *WeakTable) Register(target heap.CP, onCollected func()) (unregister func()) {
	w.entries[target] = append(w.entries[target], onCollected)
	idx := len(w.entries[target]) - 1
	return func() {
		cbs := w.entries[target]
		if idx < len(cbs) {
			cbs[idx] = nil
		}
	}
}

// Sweep calls every registered callback for targets the mark phase (via
// isMarked) did not visit, then drops those entries.
func (w *WeakTable) Sweep(isMarked func(heap.CP) bool) {
	for target, callbacks := range w.entries {
		if isMarked(target) {
			continue
		}
		for _, cb := range callbacks {
			if cb != nil {
				cb()
			}
		}
		delete(w.entries, target)
	}
}

// Len reports how many distinct targets are currently registered, for
// diagnostics.
func (w *WeakTable) Len() int { return len(w.entries) }
