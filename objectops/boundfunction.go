package objectops

import (
	"github.com/tinyjs/corevm/except"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/value"
)

// boundFunctionOps implements Function.prototype.bind's result object
// (spec §6's BoundFunctionExoticObject): [[Call]] and [[Construct]]
// prepend the bound arguments and substitute the bound `this`, then
// delegate to the bound target's own ObjectOps — following the bound
// chain transitively, since a bound function may itself bind another
// bound function.
type boundFunctionOps struct{ ordinaryOps }

func (b boundFunctionOps) Call(ctx *OpContext, cp heap.CP, this value.Value, args []value.Value) (value.Value, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return value.Value{}, except.New(except.ReferenceError, "object does not exist")
	}
	targetOps, err := For(ctx, rec.BoundTarget)
	if err != nil {
		return value.Value{}, err
	}
	return targetOps.Call(ctx, rec.BoundTarget, rec.BoundThis, append(append([]value.Value{}, rec.BoundArgs...), args...))
}

func (b boundFunctionOps) Construct(ctx *OpContext, cp heap.CP, args []value.Value, newTarget value.Value) (value.Value, error) {
	rec, ok := ctx.Store.Get(cp)
	if !ok {
		return value.Value{}, except.New(except.ReferenceError, "object does not exist")
	}
	targetOps, err := For(ctx, rec.BoundTarget)
	if err != nil {
		return value.Value{}, err
	}
	if newTarget.IsObject() && newTarget.AsObject() == cp {
		newTarget = value.Object(rec.BoundTarget)
	}
	return targetOps.Construct(ctx, rec.BoundTarget, append(append([]value.Value{}, rec.BoundArgs...), args...), newTarget)
}
