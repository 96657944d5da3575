package bytecode

// Instruction is one decoded opcode-and-operand pair from a CompiledCode's
// byte stream, the unit Disassemble walks the code in terms of.
type Instruction struct {
	IP      uint32
	Op      Op
	Operand int32 // meaningful only when Op's operand form is not formNone; holds the first/only operand
}

// Disassemble walks code.Code into a flat instruction list, reading
// operand widths from the package's per-opcode table (operandFormOf, also
// behind OperandBytes) rather than duplicating it. This is a read-only
// decode for inspection tooling (cmd/corevm's `opcodes` subcommand); it
// does not validate jump targets or literal
// indices, the same trust boundary Load documents for execution itself.
func Disassemble(code *CompiledCode) []Instruction {
	var out []Instruction
	b := code.Code
	ip := 0
	for ip < len(b) {
		op := Op(b[ip])
		start := ip
		ip++
		operand := int32(0)
		switch operandFormOf(op) {
		case formU8:
			if ip < len(b) {
				operand = int32(b[ip])
				ip++
			}
		case formU8x2:
			if ip < len(b) {
				operand = int32(b[ip])
				ip += 2
			}
		case formU8x3:
			if ip < len(b) {
				operand = int32(b[ip])
				ip += 3
			}
		case formU16:
			if ip+1 < len(b) {
				operand = int32(uint16(b[ip]) | uint16(b[ip+1])<<8)
			}
			ip += 2
		case formI16:
			if ip+1 < len(b) {
				operand = int32(int16(uint16(b[ip]) | uint16(b[ip+1])<<8))
			}
			ip += 2
		case formI8:
			if ip < len(b) {
				operand = int32(int8(b[ip]))
			}
			ip++
		case formI24:
			if ip+2 < len(b) {
				operand = int32(uint32(b[ip]) | uint32(b[ip+1])<<8 | uint32(b[ip+2])<<16)
			}
			ip += 3
		}
		out = append(out, Instruction{IP: uint32(start), Op: op, Operand: operand})
	}
	return out
}
