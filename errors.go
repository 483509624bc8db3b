// errors.go: the error taxonomy shared by every stage of the pipeline.
//
// Each stage fails with an *Error carrying one of the Kind values below. The
// CLI contract is that only the kind's mnemonic reaches stderr, so Error()
// returns the mnemonic alone; Msg holds the human detail for the REPL and for
// tests.
package mitscript

// Kind classifies a pipeline failure.
type Kind int

const (
	LexicalError Kind = iota
	ParseError
	UninitializedVariable
	IllegalCast
	IllegalArithmetic
	Runtime
)

var kindNames = [...]string{
	"LexicalError",
	"ParseError",
	"UninitializedVariable",
	"IllegalCast",
	"IllegalArithmetic",
	"Runtime",
}

// String returns the mnemonic for the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Runtime"
}

// Error is the single failure type produced by the lexer driver, the parser,
// and the interpreter.
type Error struct {
	Kind Kind
	Msg  string // detail; never part of the exit-code contract
	Line int    // 1-based when known, 0 otherwise
}

func (e *Error) Error() string { return e.Kind.String() }

// Detail renders the mnemonic followed by the message when there is one. The
// line number is not included.
func (e *Error) Detail() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func errLexical(line int, msg string) *Error {
	return &Error{Kind: LexicalError, Msg: msg, Line: line}
}

func errParse(line int, msg string) *Error {
	return &Error{Kind: ParseError, Msg: msg, Line: line}
}

func errUninitialized(name string) *Error {
	return &Error{Kind: UninitializedVariable, Msg: name}
}

func errCast(msg string) *Error {
	return &Error{Kind: IllegalCast, Msg: msg}
}

func errArithmetic(msg string) *Error {
	return &Error{Kind: IllegalArithmetic, Msg: msg}
}

func errRuntime(msg string) *Error {
	return &Error{Kind: Runtime, Msg: msg}
}
