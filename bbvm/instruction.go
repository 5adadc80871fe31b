package bbvm

// Instruction is a pre-decoded entry in an analyzed instruction stream: an
// opcode and an argument whose interpretation depends on that opcode (see
// the comments on opBeginBlock and opUndefined, and analyze, for what Arg
// means in each case).
type Instruction struct {
	Opcode OpCode
	Arg    uint64
}

// Code is a pre-decoded instruction stream, the analyzer's primary output.
type Code []Instruction

func (i Instruction) String() string {
	return i.Opcode.String()
}
