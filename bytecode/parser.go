// parser.go: recursive-descent parser for the bytecode text.
package bytecode

import (
	"fmt"
	"strconv"
)

// Parse lexes and parses a full bytecode source into its root Function.
func Parse(src string) (*Function, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.eof() {
		return nil, fmt.Errorf("empty input")
	}
	fn, err := p.function()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		t := p.peek()
		return nil, fmt.Errorf("unexpected tokens after function definition at line %d, column %d", t.line, t.col)
	}
	return fn, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks) || p.toks[p.pos].kind == tkEOF
}

func (p *parser) peek() token {
	if p.pos >= len(p.toks) {
		return token{kind: tkEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.peek()
	if !p.eof() {
		p.pos++
	}
	return t
}

func (p *parser) check(k tokenKind) bool {
	return !p.eof() && p.peek().kind == k
}

func (p *parser) checkWord(k tokenKind, text string) bool {
	return p.check(k) && p.peek().text == text
}

func (p *parser) match(k tokenKind) bool {
	if p.check(k) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) need(k tokenKind, what string) (token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	t := p.peek()
	return token{}, fmt.Errorf("expected %s at line %d, column %d (token: %q)", what, t.line, t.col, t.text)
}

func (p *parser) needWord(text string) error {
	if p.checkWord(tkKeyword, text) {
		p.pos++
		return nil
	}
	t := p.peek()
	return fmt.Errorf("expected '%s' at line %d, column %d (token: %q)", text, t.line, t.col, t.text)
}

// section parses `<name> = [` … `]` with body supplying the list body.
func (p *parser) section(name string, body func() error) error {
	if err := p.needWord(name); err != nil {
		return err
	}
	if _, err := p.need(tkAssign, "'='"); err != nil {
		return err
	}
	if _, err := p.need(tkLBracket, "'['"); err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	if _, err := p.need(tkRBracket, "']'"); err != nil {
		return err
	}
	return nil
}

func (p *parser) function() (*Function, error) {
	if err := p.needWord("function"); err != nil {
		return nil, err
	}
	if _, err := p.need(tkLBrace, "'{' after function"); err != nil {
		return nil, err
	}
	fn := &Function{}

	err := p.section("functions", func() error {
		var err error
		fn.Functions, err = p.functionList()
		return err
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.need(tkComma, "',' after functions list"); err != nil {
		return nil, err
	}

	err = p.section("constants", func() error {
		var err error
		fn.Constants, err = p.constantList()
		return err
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.need(tkComma, "',' after constants list"); err != nil {
		return nil, err
	}

	if err := p.needWord("parameter_count"); err != nil {
		return nil, err
	}
	if _, err := p.need(tkAssign, "'='"); err != nil {
		return nil, err
	}
	count, err := p.intOperand("parameter count")
	if err != nil {
		return nil, err
	}
	fn.ParameterCount = int(count)
	if _, err := p.need(tkComma, "',' after parameter count"); err != nil {
		return nil, err
	}

	for _, sec := range []struct {
		name string
		dst  *[]string
	}{
		{"local_vars", &fn.LocalVars},
		{"local_ref_vars", &fn.LocalRefVars},
		{"free_vars", &fn.FreeVars},
		{"names", &fn.Names},
	} {
		err := p.section(sec.name, func() error {
			var err error
			*sec.dst, err = p.identList()
			return err
		})
		if err != nil {
			return nil, err
		}
		if _, err := p.need(tkComma, "',' after "+sec.name+" list"); err != nil {
			return nil, err
		}
	}

	err = p.section("instructions", func() error {
		var err error
		fn.Instructions, err = p.instructionList()
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.need(tkRBrace, "'}' to end function"); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *parser) functionList() ([]*Function, error) {
	var out []*Function
	if p.check(tkRBracket) {
		return out, nil
	}
	for {
		fn, err := p.function()
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
		if !p.match(tkComma) {
			return out, nil
		}
	}
}

func (p *parser) identList() ([]string, error) {
	var out []string
	if p.check(tkRBracket) {
		return out, nil
	}
	for {
		id, err := p.need(tkIdent, "identifier")
		if err != nil {
			return nil, err
		}
		out = append(out, id.text)
		if !p.match(tkComma) {
			return out, nil
		}
	}
}

func (p *parser) constant() (Constant, error) {
	switch {
	case p.checkWord(tkKeyword, "None"):
		p.advance()
		return Constant{Kind: ConstNone}, nil
	case p.checkWord(tkKeyword, "true"):
		p.advance()
		return Constant{Kind: ConstBool, Bool: true}, nil
	case p.checkWord(tkKeyword, "false"):
		p.advance()
		return Constant{Kind: ConstBool, Bool: false}, nil
	case p.check(tkString):
		t := p.advance()
		return Constant{Kind: ConstString, Str: t.text}, nil
	case p.check(tkInt):
		n, err := p.intOperand("integer constant")
		if err != nil {
			return Constant{}, err
		}
		return Constant{Kind: ConstInt, Int: n}, nil
	default:
		t := p.peek()
		return Constant{}, fmt.Errorf("expected constant at line %d, column %d", t.line, t.col)
	}
}

func (p *parser) constantList() ([]Constant, error) {
	var out []Constant
	if p.check(tkRBracket) {
		return out, nil
	}
	for {
		c, err := p.constant()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if !p.match(tkComma) {
			return out, nil
		}
	}
}

func (p *parser) instruction() (Instruction, error) {
	t := p.peek()
	if t.kind != tkOp {
		return Instruction{}, fmt.Errorf("expected instruction at line %d, column %d", t.line, t.col)
	}
	p.advance()
	op := mnemonics[t.text]
	inst := Instruction{Op: op}
	if op.HasOperand() {
		n, err := p.intOperand("integer operand for " + t.text)
		if err != nil {
			return Instruction{}, err
		}
		inst.Operand = n
	}
	return inst, nil
}

func (p *parser) instructionList() ([]Instruction, error) {
	var out []Instruction
	for !p.check(tkRBracket) && !p.eof() {
		inst, err := p.instruction()
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (p *parser) intOperand(what string) (int32, error) {
	t, err := p.need(tkInt, what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(t.text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("integer out of range at line %d, column %d", t.line, t.col)
	}
	return int32(n), nil
}
