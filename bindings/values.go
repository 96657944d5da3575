package bindings

import "github.com/tinyjs/corevm/value"

// Undefined, Null, Bool, Number and String are thin re-exports of
// package value's constructors (spec.md §6's "value constructors"
// capability group), kept as Runtime methods rather than free functions
// so the package surface reads as one coherent embedder API rather than
// a grab bag of unrelated top-level names — matching the teacher's own
// *Hive-method style over free functions in bindings/wrapper.go.

func (r *Runtime) Undefined() value.Value { return value.Undefined() }
func (r *Runtime) Null() value.Value      { return value.Null() }
func (r *Runtime) Bool(b bool) value.Value { return value.Bool(b) }
func (r *Runtime) Number(f float64) value.Value { return value.Float(f) }

// String interns s into this Runtime's string pool and returns the
// resulting string value.
func (r *Runtime) String(s string) (value.Value, error) { return r.ctx.Pool.NewString(s) }

// ToGoString renders any value's ToString-coerced text, the "value
// inspector" counterpart to String (spec.md §6).
func (r *Runtime) ToGoString(v value.Value) string { return r.ctx.Pool.Text(v) }

// ToGoNumber returns v's numeric payload as a float64 regardless of its
// int/float storage class; callers must have checked IsNumber.
func (r *Runtime) ToGoNumber(v value.Value) float64 { return v.AsNumber() }

// ToGoBool returns v's boolean payload; callers must have checked IsBool.
func (r *Runtime) ToGoBool(v value.Value) bool { return v.AsBool() }

// IsUndefined, IsNull, IsObject, IsNumber, IsString, IsBool report v's
// tag, the remaining half of the "value inspectors" capability group.
func (r *Runtime) IsUndefined(v value.Value) bool { return v.IsUndefined() }
func (r *Runtime) IsNull(v value.Value) bool      { return v.IsNull() }
func (r *Runtime) IsObject(v value.Value) bool    { return v.IsObject() }
func (r *Runtime) IsNumber(v value.Value) bool    { return v.IsNumber() }
func (r *Runtime) IsString(v value.Value) bool    { return v.IsString() }
func (r *Runtime) IsBool(v value.Value) bool      { return v.IsBool() }
