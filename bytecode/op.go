package bytecode

// Op is a single bytecode opcode (spec §4.9: "a primary byte selects the
// opcode; an extension prefix selects an extended opcode"). corevm keeps
// every opcode in one flat byte space rather than reproducing the
// teacher's... there is no teacher precedent for opcode encoding, so the
// families below follow spec §4.9's own grouping directly.
type Op byte

const (
	OpNop Op = iota

	// Push: constants and literals.
	OpPushUndefined
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushZero
	OpPushOne
	OpPushNumber
	OpPushLiteral
	OpPushTwoLiterals
	OpPushThreeLiterals
	OpPushThis
	OpPushElision

	// Property.
	OpPushProp
	OpPushPropLiteral
	OpPushPropLiteralLiteral
	OpSetProperty
	OpSetLiteralProperty
	OpDeleteProp

	// Identifier reference.
	OpPushIdentReference
	OpAssignSetIdent
	OpInitLet
	OpInitConst
	OpAssignLetConst

	// Arithmetic: unary.
	OpPlus
	OpNegate
	OpLogicalNot
	OpBitNot
	OpTypeof

	// Arithmetic: binary.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExponentiation
	OpEqual
	OpNotEqual
	OpStrictEqual
	OpStrictNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpInstanceof
	OpIn
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpShiftRightUnsigned
	OpNullishCoalescing
	OpAddWithLiteral
	OpAddWithTwoLiterals

	// Control flow.
	OpJump
	OpBranchIfTrue
	OpBranchIfFalse
	OpBranchIfTrueForward
	OpBranchIfFalseForward
	OpBranchIfLogicalTrue
	OpBranchIfLogicalFalse
	OpBranchIfNullish
	OpLoopTarget
	OpSwitchDispatch

	// Call / construct.
	OpCall0
	OpCall1
	OpCall2
	OpCallN
	OpCallProp
	OpNew0
	OpNew1
	OpNew2
	OpNewN
	OpSpreadCall
	OpSpreadNew
	OpSuperCall
	OpEval

	// Function creation.
	OpCreateFunction
	OpCreateClass
	OpCreateArrow

	// Exception handling.
	OpTryStart
	OpTryEnd
	OpThrow
	OpFinallyEnter
	OpFinallyExit

	// Generator / async.
	OpYield
	OpAwait
	OpGeneratorAwait
	OpYieldIterator
	OpResumeExecutable

	// Extended.
	OpImport
	OpSpreadArrayElement
	OpSpreadObjectElement
	OpTaggedTemplateLookup
	OpIteratorStep
	OpRestInitializer
	OpObjInitContextStart
	OpObjInitContextEnd

	// Return/misc, not separately enumerated by spec §4.9's families but
	// required for any function body to terminate.
	OpReturn
	OpPop

	opCount
)

// names mirrors the const block above for String()'s table lookup;
// spec §9 doesn't mandate disassembly text, but cmd/corevm's `opcodes`
// verb needs it.
var names = [opCount]string{
	OpNop:                    "nop",
	OpPushUndefined:          "push_undefined",
	OpPushNull:               "push_null",
	OpPushTrue:               "push_true",
	OpPushFalse:              "push_false",
	OpPushZero:               "push_0",
	OpPushOne:                "push_1",
	OpPushNumber:             "push_number",
	OpPushLiteral:            "push_literal",
	OpPushTwoLiterals:        "push_two_literals",
	OpPushThreeLiterals:      "push_three_literals",
	OpPushThis:               "push_this",
	OpPushElision:            "push_elision",
	OpPushProp:               "push_prop",
	OpPushPropLiteral:        "push_prop_literal",
	OpPushPropLiteralLiteral: "push_prop_literal_literal",
	OpSetProperty:            "set_property",
	OpSetLiteralProperty:     "set_literal_property",
	OpDeleteProp:             "delete_prop",
	OpPushIdentReference:     "push_ident_reference",
	OpAssignSetIdent:         "assign_set_ident",
	OpInitLet:                "init_let",
	OpInitConst:              "init_const",
	OpAssignLetConst:         "assign_let_const",
	OpPlus:                   "plus",
	OpNegate:                 "negate",
	OpLogicalNot:             "logical_not",
	OpBitNot:                 "bit_not",
	OpTypeof:                 "typeof",
	OpAdd:                    "add",
	OpSub:                    "sub",
	OpMul:                    "mul",
	OpDiv:                    "div",
	OpMod:                    "mod",
	OpExponentiation:         "exponentiation",
	OpEqual:                  "equal",
	OpNotEqual:               "not_equal",
	OpStrictEqual:            "strict_equal",
	OpStrictNotEqual:         "strict_not_equal",
	OpLess:                   "less",
	OpGreater:                "greater",
	OpLessEqual:              "less_equal",
	OpGreaterEqual:           "greater_equal",
	OpInstanceof:             "instanceof",
	OpIn:                     "in",
	OpBitAnd:                 "bit_and",
	OpBitOr:                  "bit_or",
	OpBitXor:                 "bit_xor",
	OpShiftLeft:              "shift_left",
	OpShiftRight:             "shift_right",
	OpShiftRightUnsigned:     "shift_right_unsigned",
	OpNullishCoalescing:      "nullish_coalescing",
	OpAddWithLiteral:         "add_with_literal",
	OpAddWithTwoLiterals:     "add_with_two_literals",
	OpJump:                   "jump",
	OpBranchIfTrue:           "branch_if_true",
	OpBranchIfFalse:          "branch_if_false",
	OpBranchIfTrueForward:    "branch_if_true_forward",
	OpBranchIfFalseForward:   "branch_if_false_forward",
	OpBranchIfLogicalTrue:    "branch_if_logical_true",
	OpBranchIfLogicalFalse:   "branch_if_logical_false",
	OpBranchIfNullish:        "branch_if_nullish",
	OpLoopTarget:             "loop_target",
	OpSwitchDispatch:         "switch_dispatch",
	OpCall0:                  "call0",
	OpCall1:                  "call1",
	OpCall2:                  "call2",
	OpCallN:                  "callN",
	OpCallProp:               "call_prop",
	OpNew0:                   "new0",
	OpNew1:                   "new1",
	OpNew2:                   "new2",
	OpNewN:                   "newN",
	OpSpreadCall:             "spread_call",
	OpSpreadNew:              "spread_new",
	OpSuperCall:              "super_call",
	OpEval:                   "eval",
	OpCreateFunction:         "create_function",
	OpCreateClass:            "create_class",
	OpCreateArrow:            "create_arrow",
	OpTryStart:               "try_start",
	OpTryEnd:                 "try_end",
	OpThrow:                  "throw",
	OpFinallyEnter:           "finally_enter",
	OpFinallyExit:            "finally_exit",
	OpYield:                  "yield",
	OpAwait:                  "await",
	OpGeneratorAwait:         "generator_await",
	OpYieldIterator:          "yield_iterator",
	OpResumeExecutable:       "resume_executable",
	OpImport:                 "import",
	OpSpreadArrayElement:     "spread_array_element",
	OpSpreadObjectElement:    "spread_object_element",
	OpTaggedTemplateLookup:   "tagged_template_lookup",
	OpIteratorStep:           "iterator_step",
	OpRestInitializer:        "rest_initializer",
	OpObjInitContextStart:    "obj_init_context_start",
	OpObjInitContextEnd:      "obj_init_context_end",
	OpReturn:                 "return",
	OpPop:                    "pop",
}

func (o Op) String() string {
	if int(o) < len(names) && names[o] != "" {
		return names[o]
	}
	return "unknown_op"
}

// operandForm describes how many bytes of operand follow an opcode, so
// that Disassemble can skip operands without understanding their meaning
// (spec §4.9: "literal-index operands are 8-bit by
// default, widened to 16-bit via a prefix"; corevm always encodes the
// wide form explicitly per-opcode rather than via a separate prefix byte,
// trading a little code size for a simpler, prefix-free decoder).
type operandForm byte

const (
	formNone  operandForm = 0
	formU8    operandForm = 1
	formU16   operandForm = 2
	formU8x2  operandForm = 3 // two 8-bit operands (OpPushTwoLiterals, OpAddWithTwoLiterals, ...)
	formU8x3  operandForm = 4
	formI8    operandForm = 5 // signed branch offset
	formI16   operandForm = 6
	formI24   operandForm = 7
)

// OperandBytes returns how many operand bytes follow op in the bytecode
// stream.
func OperandBytes(op Op) int {
	switch operandFormOf(op) {
	case formNone:
		return 0
	case formU8, formI8:
		return 1
	case formU16, formI16:
		return 2
	case formU8x2:
		return 2
	case formU8x3:
		return 3
	case formI24:
		return 3
	default:
		return 0
	}
}

func operandFormOf(op Op) operandForm {
	switch op {
	case OpPushNumber, OpPushLiteral, OpPushPropLiteral, OpSetLiteralProperty,
		OpPushIdentReference, OpAssignSetIdent, OpInitLet, OpInitConst, OpAssignLetConst,
		OpAddWithLiteral, OpCallN, OpNewN, OpCreateFunction, OpCreateClass, OpCreateArrow,
		OpSwitchDispatch, OpTaggedTemplateLookup:
		return formU8
	case OpPushTwoLiterals, OpPushPropLiteralLiteral, OpAddWithTwoLiterals:
		return formU8x2
	case OpPushThreeLiterals:
		return formU8x3
	case OpBranchIfTrue, OpBranchIfFalse, OpBranchIfTrueForward, OpBranchIfFalseForward,
		OpBranchIfLogicalTrue, OpBranchIfLogicalFalse, OpBranchIfNullish, OpJump, OpLoopTarget:
		return formI16
	case OpTryStart, OpTryEnd, OpFinallyEnter, OpFinallyExit:
		return formU16
	default:
		return formNone
	}
}
