package vm

import "github.com/tinyjs/corevm/value"

// CompletionKind classifies how a protected region of code finished,
// spec §4.10's completion-record model for try/finally interaction:
// a finally block must remember what it interrupted and replay it on
// finally_exit once it has run to its own completion.
type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionReturn
	CompletionThrow
	CompletionBreak
	CompletionContinue
)

// Completion is the value a finally_enter stashes and a finally_exit
// replays: what was in flight (a thrown value, a return value, or a
// break/continue target IP) when the finally block's protected range was
// entered.
type Completion struct {
	Kind   CompletionKind
	Value  value.Value
	Target uint32
}
