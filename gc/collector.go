package gc

import (
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/object"
	"github.com/tinyjs/corevm/strtab"
)

// RootsFunc supplies the current GC roots: every object-arena CP directly
// reachable from outside the object graph itself — the global object, each
// live vm.Frame's lexical environment and value-stack slots, and any
// embedder handle acquired via bindings.Acquire. Package gc does not (and
// must not, per the component dependency order) know about vm or bindings;
// the caller supplies this closure at collection time instead.
type RootsFunc func() []heap.CP

// Collector runs mark-and-sweep over a Store's object arena.
type Collector struct {
	store   *object.Store
	pool    *strtab.Pool
	visited *Bitmap
	stack   []heap.CP
	weak    *WeakTable

	Collections int
	LastFreed   int
}

// NewCollector creates a collector over store, decrementing string/symbol
// refcounts it finds in pool on every record the sweep phase frees.
func NewCollector(store *object.Store, pool *strtab.Pool) *Collector {
	return &Collector{
		store:   store,
		pool:    pool,
		visited: NewBitmap(),
		stack:   make([]heap.CP, 0, 256),
		weak:    NewWeakTable(),
	}
}

// Weak exposes the weak-reference side table so WeakMap/WeakSet/WeakRef
// object kinds (implemented in objectops) can register against it.
func (c *Collector) Weak() *WeakTable { return c.weak }

// Collect runs one full mark-and-sweep pass rooted at roots(). It returns
// the number of object records freed.
func (c *Collector) Collect(roots RootsFunc) int {
	c.visited.Reset()
	c.stack = c.stack[:0]

	for _, r := range roots() {
		c.mark(r)
	}
	for len(c.stack) > 0 {
		n := len(c.stack) - 1
		cp := c.stack[n]
		c.stack = c.stack[:n]
		c.store.VisitReferences(cp, c.mark, nil)
	}

	c.weak.Sweep(c.visited.IsSet)

	freed := c.sweep()
	c.Collections++
	c.LastFreed = freed
	return freed
}

// mark pushes cp onto the DFS stack the first time it is seen, the same
// "set the bit, then push" discipline as walker.WalkerCore.walkSubkeysFast
// (spec §9: traversal must be iterative, not recursive, for bounded stack
// use on embedded targets).
func (c *Collector) mark(cp heap.CP) {
	if cp.IsNull() || c.visited.IsSet(cp) {
		return
	}
	c.visited.Set(cp)
	c.stack = append(c.stack, cp)
}

// sweep walks the store's all-objects list (spec §4.5's threaded `next`
// list), freeing every record the mark phase did not visit and dropping
// the string/symbol refcounts it held. Survivors are then relinked into a
// fresh contiguous list: Free zeroes the freed record's own `next` field,
// so simply continuing to chase stale `next` pointers after freeing an
// interior node would sever every still-live node behind it in the list.
func (c *Collector) sweep() int {
	freed := 0
	var survivors []heap.CP
	cp := c.store.Head()
	for !cp.IsNull() {
		next := c.store.Next(cp)
		if c.visited.IsSet(cp) {
			survivors = append(survivors, cp)
		} else {
			c.store.VisitReferences(cp, nil, c.pool.DecRef)
			c.store.Free(cp)
			freed++
		}
		cp = next
	}

	head := heap.NullCP
	for i := len(survivors) - 1; i >= 0; i-- {
		c.store.SetNext(survivors[i], head)
		head = survivors[i]
	}
	c.store.SetHead(head)

	return freed
}
