// Package except implements the exception machinery described in spec §4.10
// and §7: typed ECMAScript error values, and the sentinel internal-only
// conditions (OutOfMemory, Terminated) that never surface to user code.
//
// except has no dependencies on any other corevm package so that every
// other component — down to the heap allocator — can report failures
// through the same typed vocabulary, the way the teacher's pkg/types.Error
// is imported by every hivekit package that can fail.
package except

import "fmt"

// Kind classifies an error the way ECMAScript's built-in error constructors
// do, plus two internal-only kinds that are never constructed as a visible
// JS Error object.
type Kind int

const (
	// Error is the base error kind (`new Error(...)`).
	Error Kind = iota
	EvalError
	RangeError
	ReferenceError
	SyntaxError
	TypeError
	URIError
	AggregateError

	// OutOfMemory is raised when the heap cannot satisfy an allocation even
	// after a GC pass. It is fatal: the VM does not attempt to catch it.
	OutOfMemory
	// Terminated is raised when the embedder's VM-stop flag is observed at
	// a backward branch or function entry. It unwinds every frame without
	// running finally blocks, per spec §5.
	Terminated
)

// String names the kind the way its ECMAScript constructor would be named.
func (k Kind) String() string {
	switch k {
	case Error:
		return "Error"
	case EvalError:
		return "EvalError"
	case RangeError:
		return "RangeError"
	case ReferenceError:
		return "ReferenceError"
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case URIError:
		return "URIError"
	case AggregateError:
		return "AggregateError"
	case OutOfMemory:
		return "OutOfMemory"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("UnknownErrorKind_%d", int(k))
	}
}

// Uncatchable reports whether an error of this kind must unwind every
// frame without being visible to a try/catch handler (spec §4.10, §5).
func (k Kind) Uncatchable() bool {
	return k == OutOfMemory || k == Terminated
}

// ECMAError is a typed error carrying an optional underlying cause, modeled
// on the teacher's pkg/types.Error: a Kind for programmatic branching, a
// human message, and an Unwrap-able cause for errors.Is/errors.As chains.
type ECMAError struct {
	Kind    Kind
	Msg     string
	Err     error  // optional underlying cause
	SrcName string // resource name for parse/runtime errors, if known
	Line    int    // 1-based source line, 0 if unknown
}

func (e *ECMAError) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := e.Kind.String()
	if e.Line > 0 {
		if e.SrcName != "" {
			prefix = fmt.Sprintf("%s (%s:%d)", prefix, e.SrcName, e.Line)
		} else {
			prefix = fmt.Sprintf("%s (line %d)", prefix, e.Line)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Msg, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *ECMAError) Unwrap() error { return e.Err }

// New constructs an *ECMAError with no wrapped cause.
func New(kind Kind, msg string, args ...any) *ECMAError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &ECMAError{Kind: kind, Msg: msg}
}

// Wrap constructs an *ECMAError wrapping an underlying cause.
func Wrap(kind Kind, cause error, msg string, args ...any) *ECMAError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &ECMAError{Kind: kind, Msg: msg, Err: cause}
}

// Sentinels for conditions callers frequently branch on by identity.
var (
	// ErrOutOfMemory indicates the heap could not satisfy an allocation
	// even after a GC pass; fatal per spec §4.1.
	ErrOutOfMemory = &ECMAError{Kind: OutOfMemory, Msg: "out of memory"}
	// ErrTerminated indicates the embedder's VM-stop flag was observed.
	ErrTerminated = &ECMAError{Kind: Terminated, Msg: "script execution terminated"}
	// ErrNotCallable indicates [[Call]] was invoked on a non-callable kind.
	ErrNotCallable = &ECMAError{Kind: TypeError, Msg: "value is not callable"}
	// ErrNotConstructable indicates [[Construct]] was invoked on a kind
	// without a [[Construct]] internal method.
	ErrNotConstructable = &ECMAError{Kind: TypeError, Msg: "value is not a constructor"}
)
