// parser_test.go
package mitscript

import (
	"testing"
)

func parseProg(t *testing.T, src string) *Block {
	t.Helper()
	tokens := NewLexer(src).Scan()
	if HasErrors(tokens) {
		t.Fatalf("lex errors in %q: %v", src, tokens)
	}
	prog, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return prog
}

func parseFails(t *testing.T, src string) {
	t.Helper()
	tokens := NewLexer(src).Scan()
	if HasErrors(tokens) {
		t.Fatalf("lex errors in %q (want a parse error)", src)
	}
	if _, err := Parse(tokens); err == nil {
		t.Fatalf("want parse error for %q", src)
	} else if e, ok := err.(*Error); !ok || e.Kind != ParseError {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func onlyStmt(t *testing.T, prog *Block) Stmt {
	t.Helper()
	if len(prog.Statements) != 1 {
		t.Fatalf("want 1 statement, got %d", len(prog.Statements))
	}
	return prog.Statements[0]
}

func Test_Parser_AssignmentPrecedence(t *testing.T) {
	prog := parseProg(t, `x = 1 + 2 * 3;`)
	assign, ok := onlyStmt(t, prog).(*Assignment)
	if !ok {
		t.Fatalf("want assignment")
	}
	add, ok := assign.Value.(*BinaryExpression)
	if !ok || add.Op != OpAdd {
		t.Fatalf("want '+' at the top, got %#v", assign.Value)
	}
	mul, ok := add.Right.(*BinaryExpression)
	if !ok || mul.Op != OpMul {
		t.Fatalf("want '*' below '+', got %#v", add.Right)
	}
}

func Test_Parser_LeftAssociativity(t *testing.T) {
	prog := parseProg(t, `x = 10 - 4 - 3;`)
	assign := onlyStmt(t, prog).(*Assignment)
	outer := assign.Value.(*BinaryExpression)
	if outer.Op != OpSub {
		t.Fatalf("want '-'")
	}
	inner, ok := outer.Left.(*BinaryExpression)
	if !ok || inner.Op != OpSub {
		t.Fatalf("subtraction must associate left, got %#v", outer.Left)
	}
}

func Test_Parser_LogicalPrecedence(t *testing.T) {
	// '|' binds loosest, '&' next, '!' below that
	prog := parseProg(t, `x = !a & b | c;`)
	assign := onlyStmt(t, prog).(*Assignment)
	or := assign.Value.(*BinaryExpression)
	if or.Op != OpOr {
		t.Fatalf("want '|' on top, got %v", or.Op)
	}
	and := or.Left.(*BinaryExpression)
	if and.Op != OpAnd {
		t.Fatalf("want '&' under '|', got %v", and.Op)
	}
	if _, ok := and.Left.(*UnaryExpression); !ok {
		t.Fatalf("want '!' under '&', got %#v", and.Left)
	}
}

func Test_Parser_UnaryMinusIsRightAssociative(t *testing.T) {
	prog := parseProg(t, `x = --1;`)
	assign := onlyStmt(t, prog).(*Assignment)
	outer, ok := assign.Value.(*UnaryExpression)
	if !ok || outer.Op != OpNeg {
		t.Fatalf("want negation, got %#v", assign.Value)
	}
	if _, ok := outer.Operand.(*UnaryExpression); !ok {
		t.Fatalf("want nested negation, got %#v", outer.Operand)
	}
}

func Test_Parser_Location(t *testing.T) {
	prog := parseProg(t, `a.b[c].d = 1;`)
	assign := onlyStmt(t, prog).(*Assignment)
	outer, ok := assign.Target.(*FieldDereference)
	if !ok || outer.Field != "d" {
		t.Fatalf("want field deref of 'd', got %#v", assign.Target)
	}
	index, ok := outer.Base.(*IndexExpression)
	if !ok {
		t.Fatalf("want index below, got %#v", outer.Base)
	}
	inner, ok := index.Base.(*FieldDereference)
	if !ok || inner.Field != "b" {
		t.Fatalf("want field deref of 'b', got %#v", index.Base)
	}
}

func Test_Parser_CallStatementAndExpression(t *testing.T) {
	prog := parseProg(t, `f(1, g(2), "x");`)
	call, ok := onlyStmt(t, prog).(*Call)
	if !ok || len(call.Args) != 3 {
		t.Fatalf("want call with 3 args, got %#v", prog.Statements[0])
	}
	if _, ok := call.Args[1].(*Call); !ok {
		t.Fatalf("want nested call argument")
	}
}

func Test_Parser_StringEscapesDecodedOnce(t *testing.T) {
	prog := parseProg(t, `s = "a\n\t\"\\";`)
	assign := onlyStmt(t, prog).(*Assignment)
	str, ok := assign.Value.(*StringConstant)
	if !ok {
		t.Fatalf("want string constant")
	}
	if str.Value != "a\n\t\"\\" {
		t.Fatalf("escapes not decoded: %q", str.Value)
	}
}

func Test_Parser_FunctionDeclaration(t *testing.T) {
	prog := parseProg(t, `f = fun(a, b) { return a + b; };`)
	assign := onlyStmt(t, prog).(*Assignment)
	fn, ok := assign.Value.(*FunctionDeclaration)
	if !ok {
		t.Fatalf("want function literal")
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Fatalf("params: %v", fn.Params)
	}
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("body: %v", fn.Body.Statements)
	}
}

func Test_Parser_RecordLiteralKeepsSourceOrder(t *testing.T) {
	prog := parseProg(t, `r = {b: 2; a: 1;};`)
	assign := onlyStmt(t, prog).(*Assignment)
	rec, ok := assign.Value.(*RecordLiteral)
	if !ok || len(rec.Fields) != 2 {
		t.Fatalf("want 2-field record, got %#v", assign.Value)
	}
	if rec.Fields[0].Name != "b" || rec.Fields[1].Name != "a" {
		t.Fatalf("field order: %v", rec.Fields)
	}
}

func Test_Parser_EmptyRecord(t *testing.T) {
	prog := parseProg(t, `r = {};`)
	assign := onlyStmt(t, prog).(*Assignment)
	rec, ok := assign.Value.(*RecordLiteral)
	if !ok || len(rec.Fields) != 0 {
		t.Fatalf("want empty record, got %#v", assign.Value)
	}
}

func Test_Parser_IfElseAndWhile(t *testing.T) {
	prog := parseProg(t, `
if (x < 10) { y = 1; } else { y = 2; }
while (y > 0) { y = y - 1; }
`)
	if len(prog.Statements) != 2 {
		t.Fatalf("want 2 statements")
	}
	ifStmt, ok := prog.Statements[0].(*IfStatement)
	if !ok || ifStmt.Else == nil {
		t.Fatalf("want if with else, got %#v", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*WhileLoop); !ok {
		t.Fatalf("want while, got %#v", prog.Statements[1])
	}
}

func Test_Parser_GlobalDeclaration(t *testing.T) {
	prog := parseProg(t, `f = fun() { global x; x = 1; };`)
	fn := onlyStmt(t, prog).(*Assignment).Value.(*FunctionDeclaration)
	g, ok := fn.Body.Statements[0].(*Global)
	if !ok || g.Name != "x" {
		t.Fatalf("want global x, got %#v", fn.Body.Statements[0])
	}
}

func Test_Parser_IntegerOutOfRange(t *testing.T) {
	parseFails(t, `x = 99999999999;`)
}

func Test_Parser_Failures(t *testing.T) {
	for _, src := range []string{
		`x = ;`,
		`x 1;`,
		`if x { }`,
		`f(1;)`,
		`return;`,
		`global 1;`,
		`r = {a 1;};`,
		`x = fun(1) {};`,
		`1 = x;`,
		`x = (fun() {});`,
	} {
		parseFails(t, src)
	}
}
