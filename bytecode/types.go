// Package bytecode implements the textual stack-machine format: a lexer and
// recursive-descent parser that ingest it, and a pretty-printer that re-emits
// it. The tree-walking interpreter never consumes this representation; the
// `vm` subcommand round-trips it.
package bytecode

// Operation is a stack-machine instruction opcode.
type Operation int

const (
	LoadConst Operation = iota
	LoadFunc
	LoadLocal
	StoreLocal
	LoadGlobal
	StoreGlobal
	PushReference
	LoadReference
	StoreReference
	AllocRecord
	FieldLoad
	FieldStore
	IndexLoad
	IndexStore
	AllocClosure
	Call
	Return
	Add
	Sub
	Mul
	Div
	Neg
	Gt
	Geq
	Eq
	And
	Or
	Not
	Goto
	If
	Dup
	Swap
	Pop
)

type opInfo struct {
	mnemonic   string
	hasOperand bool
}

var opTable = [...]opInfo{
	LoadConst:      {"load_const", true},
	LoadFunc:       {"load_func", true},
	LoadLocal:      {"load_local", true},
	StoreLocal:     {"store_local", true},
	LoadGlobal:     {"load_global", true},
	StoreGlobal:    {"store_global", true},
	PushReference:  {"push_ref", true},
	LoadReference:  {"load_ref", false},
	StoreReference: {"store_ref", false},
	AllocRecord:    {"alloc_record", false},
	FieldLoad:      {"field_load", true},
	FieldStore:     {"field_store", true},
	IndexLoad:      {"index_load", false},
	IndexStore:     {"index_store", false},
	AllocClosure:   {"alloc_closure", true},
	Call:           {"call", true},
	Return:         {"return", false},
	Add:            {"add", false},
	Sub:            {"sub", false},
	Mul:            {"mul", false},
	Div:            {"div", false},
	Neg:            {"neg", false},
	Gt:             {"gt", false},
	Geq:            {"geq", false},
	Eq:             {"eq", false},
	And:            {"and", false},
	Or:             {"or", false},
	Not:            {"not", false},
	Goto:           {"goto", true},
	If:             {"if", true},
	Dup:            {"dup", false},
	Swap:           {"swap", false},
	Pop:            {"pop", false},
}

// Mnemonic returns the assembly name of the operation.
func (op Operation) Mnemonic() string { return opTable[op].mnemonic }

// HasOperand reports whether the operation takes an integer operand.
func (op Operation) HasOperand() bool { return opTable[op].hasOperand }

// mnemonics maps assembly names back to operations.
var mnemonics = func() map[string]Operation {
	m := make(map[string]Operation, len(opTable))
	for op, info := range opTable {
		m[info.mnemonic] = Operation(op)
	}
	return m
}()

// Instruction is one operation with its optional operand.
type Instruction struct {
	Op      Operation
	Operand int32 // meaningful only when Op.HasOperand()
}

// ConstKind discriminates Constant.
type ConstKind int

const (
	ConstNone ConstKind = iota
	ConstBool
	ConstInt
	ConstString
)

// Constant is one entry of a function's constant pool. String payloads are
// stored decoded; the printer re-escapes them.
type Constant struct {
	Kind ConstKind
	Bool bool
	Int  int32
	Str  string
}

// Function is one compiled function: nested functions, the constant pool,
// variable name tables, and the instruction stream.
type Function struct {
	Functions      []*Function
	Constants      []Constant
	ParameterCount int
	LocalVars      []string
	LocalRefVars   []string
	FreeVars       []string
	Names          []string
	Instructions   []Instruction
}
