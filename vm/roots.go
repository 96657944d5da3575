package vm

import "github.com/tinyjs/corevm/heap"

// Roots implements gc.RootsFunc: every object-arena handle the collector
// must not reclaim because it is still reachable from outside the object
// graph itself — the global object/environment pair, every live frame's
// lexical environment and this/new-target (when object-valued), every
// object-valued slot still on a live frame's value stack, and the current
// exception (if one is pending and object-valued).
func (c *Context) Roots() []heap.CP {
	roots := make([]heap.CP, 0, 2+4*len(c.frames))
	if !c.GlobalObject.IsNull() {
		roots = append(roots, c.GlobalObject)
	}
	if !c.GlobalEnv.IsNull() {
		roots = append(roots, c.GlobalEnv)
	}
	for _, f := range c.frames {
		if !f.Env.IsNull() {
			roots = append(roots, f.Env)
		}
		if f.This.IsObject() {
			roots = append(roots, f.This.AsObject())
		}
		if f.NewTarget.IsObject() {
			roots = append(roots, f.NewTarget.AsObject())
		}
		for _, v := range f.stack {
			if v.IsObject() {
				roots = append(roots, v.AsObject())
			}
		}
	}
	if c.hasException && c.exception.IsObject() {
		roots = append(roots, c.exception.AsObject())
	}
	roots = append(roots, c.pinned...)
	return roots
}
