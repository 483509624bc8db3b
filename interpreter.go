// interpreter.go: the tree-walking evaluator.
//
// The Interpreter owns the heap, the frame stack, and the streams the
// builtins use. Execution is single-threaded and synchronous; every evaluator
// arm returns an explicit (value, error) pair and the first error unwinds the
// whole run. A Return sets the hasReturned flag, which aborts the remaining
// statements of every enclosing block up to the current call.
//
// Call protocol (user functions):
//  1. evaluate the callee, require a Function;
//  2. evaluate arguments left to right;
//  3. check arity;
//  4. dispatch builtins;
//  5. make a frame whose parent is the captured frame;
//  6. collect the body's global declarations and assigned names (not
//     descending into nested function literals);
//  7. install GlobalInfo from the captured frame's global frame;
//  8. pre-bind assigned locals to None (names a captured frame already
//     binds stay shared with the closure), then bind parameters;
//  9. run the body; the result is the returned value or None.
package mitscript

import (
	"bufio"
	"io"
	"os"
)

// Interpreter executes a parsed program against a persistent global frame.
type Interpreter struct {
	heap   *Heap
	frames []*Frame
	global *Frame

	in  *bufio.Reader
	out io.Writer

	ret         *Value
	hasReturned bool

	none     *Value   // the interned None value
	builtins []*Value // rooted builtin function values
}

// Option configures a new Interpreter.
type Option func(*Interpreter)

// WithInput sets the stream `input` reads from.
func WithInput(r io.Reader) Option {
	return func(ip *Interpreter) { ip.in = bufio.NewReader(r) }
}

// WithOutput sets the stream `print` writes to.
func WithOutput(w io.Writer) Option {
	return func(ip *Interpreter) { ip.out = w }
}

// WithMemLimit bounds the heap watermark to mb megabytes (0 for none).
func WithMemLimit(mb int) Option {
	return func(ip *Interpreter) { ip.heap = NewHeap(mb * 1024 * 1024) }
}

// NewInterpreter builds a ready interpreter: global frame, builtins
// (`print`, `input`, `intcast`) and the `None` binding installed.
func NewInterpreter(opts ...Option) (*Interpreter, error) {
	ip := &Interpreter{
		heap: NewHeap(0),
		in:   bufio.NewReader(os.Stdin),
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(ip)
	}
	ip.heap.Roots = ip.markRoots

	global, err := ip.newFrame(nil)
	if err != nil {
		return nil, err
	}
	ip.global = global
	ip.frames = []*Frame{global}
	global.SetGlobal(global, nameSet("print", "input", "intcast", "None"))

	if err := ip.installBuiltins(); err != nil {
		return nil, err
	}
	return ip, nil
}

func nameSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (ip *Interpreter) installBuiltins() error {
	none, err := ip.newValue()
	if err != nil {
		return err
	}
	ip.none = none
	ip.global.Define("None", none)

	for _, b := range []struct {
		name   string
		params []string
		tag    Builtin
	}{
		{"print", []string{"s"}, BuiltinPrint},
		{"input", nil, BuiltinInput},
		{"intcast", []string{"s"}, BuiltinIntcast},
	} {
		fn := &Function{Captured: ip.global, Params: b.params, Builtin: b.tag}
		if err := ip.heap.adopt(fn); err != nil {
			return err
		}
		v, err := ip.newFunValue(fn)
		if err != nil {
			return err
		}
		ip.builtins = append(ip.builtins, v)
		ip.global.Define(b.name, v)
	}
	return nil
}

func (ip *Interpreter) markRoots(mark func(collectable)) {
	for _, f := range ip.frames {
		mark(f)
	}
	if ip.ret != nil {
		mark(ip.ret)
	}
	if ip.none != nil {
		mark(ip.none)
	}
	for _, v := range ip.builtins {
		mark(v)
	}
}

// ---- allocation helpers ----

func (ip *Interpreter) newValue() (*Value, error) {
	v := &Value{Tag: VTNone}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newBool(b bool) (*Value, error) {
	v := &Value{Tag: VTBool, B: b}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newInt(n int32) (*Value, error) {
	v := &Value{Tag: VTInt, I: n}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newStr(s string) (*Value, error) {
	v := &Value{Tag: VTStr, S: s}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newRecordValue(r *Record) (*Value, error) {
	if err := ip.heap.adopt(r); err != nil {
		return nil, err
	}
	v := &Value{Tag: VTRecord, R: r}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newFunValue(f *Function) (*Value, error) {
	v := &Value{Tag: VTFun, F: f}
	return v, ip.heap.adopt(v)
}

func (ip *Interpreter) newFrame(parent *Frame) (*Frame, error) {
	f := &Frame{vars: make(map[string]*Value), parent: parent}
	if parent != nil {
		f.global = parent.global
	} else {
		f.global = GlobalInfo{Names: map[string]struct{}{}, Frame: f}
	}
	return f, ip.heap.adopt(f)
}

func (ip *Interpreter) top() *Frame {
	return ip.frames[len(ip.frames)-1]
}

// ---- entry points ----

// Run executes the program in the persistent global frame. On error the
// frame stack is unwound; either way unreachable objects are collected
// before returning.
func (ip *Interpreter) Run(prog *Block) error {
	err := ip.execBlock(prog, ip.global)
	ip.hasReturned = false
	ip.ret = nil
	ip.frames = ip.frames[:1]
	ip.heap.Collect()
	return err
}

// ---- statements ----

func (ip *Interpreter) execBlock(b *Block, f *Frame) error {
	for _, s := range b.Statements {
		if err := ip.execStmt(s, f); err != nil {
			return err
		}
		if ip.hasReturned {
			return nil
		}
		ip.heap.maybeCollect()
	}
	return nil
}

func (ip *Interpreter) execStmt(s Stmt, f *Frame) error {
	switch s := s.(type) {
	case *Block:
		return ip.execBlock(s, f)
	case *Assignment:
		return ip.execAssignment(s, f)
	case *Global:
		// declarative only; captured at function entry
		return nil
	case *IfStatement:
		return ip.execIf(s, f)
	case *WhileLoop:
		return ip.execWhile(s, f)
	case *Return:
		v, err := ip.evalExpr(s.Value, f)
		if err != nil {
			return err
		}
		ip.ret = v
		ip.hasReturned = true
		return nil
	case *Call:
		_, err := ip.evalCall(s, f)
		return err
	default:
		return errRuntime("unknown statement")
	}
}

func (ip *Interpreter) execAssignment(s *Assignment, f *Frame) error {
	switch target := s.Target.(type) {
	case *Identifier:
		v, err := ip.evalExpr(s.Value, f)
		if err != nil {
			return err
		}
		f.LookupWrite(target.Name).Define(target.Name, v)
		return nil
	case *FieldDereference:
		base, err := ip.evalExpr(target.Base, f)
		if err != nil {
			return err
		}
		v, err := ip.evalExpr(s.Value, f)
		if err != nil {
			return err
		}
		if base.Tag != VTRecord {
			return errCast("field assignment on non-record")
		}
		base.R.Set(target.Field, v)
		return nil
	case *IndexExpression:
		base, err := ip.evalExpr(target.Base, f)
		if err != nil {
			return err
		}
		index, err := ip.evalExpr(target.Index, f)
		if err != nil {
			return err
		}
		v, err := ip.evalExpr(s.Value, f)
		if err != nil {
			return err
		}
		if base.Tag != VTRecord {
			return errCast("index assignment on non-record")
		}
		base.R.Set(displayValue(index), v)
		return nil
	default:
		return errRuntime("invalid assignment target")
	}
}

func (ip *Interpreter) execIf(s *IfStatement, f *Frame) error {
	cond, err := ip.evalExpr(s.Condition, f)
	if err != nil {
		return err
	}
	if cond.Tag != VTBool {
		return errCast("if condition is not a boolean")
	}
	if cond.B {
		return ip.execBlock(s.Then, f)
	}
	if s.Else != nil {
		return ip.execBlock(s.Else, f)
	}
	return nil
}

func (ip *Interpreter) execWhile(s *WhileLoop, f *Frame) error {
	for {
		cond, err := ip.evalExpr(s.Condition, f)
		if err != nil {
			return err
		}
		if cond.Tag != VTBool {
			return errCast("while condition is not a boolean")
		}
		if !cond.B {
			return nil
		}
		if err := ip.execBlock(s.Body, f); err != nil {
			return err
		}
		if ip.hasReturned {
			return nil
		}
		ip.heap.maybeCollect()
	}
}

// ---- expressions ----

func (ip *Interpreter) evalExpr(e Expr, f *Frame) (*Value, error) {
	switch e := e.(type) {
	case *IntegerConstant:
		return ip.newInt(e.Value)
	case *StringConstant:
		return ip.newStr(e.Value)
	case *BooleanConstant:
		return ip.newBool(e.Value)
	case *NoneConstant:
		return ip.none, nil
	case *Identifier:
		return f.LookupRead(e.Name)
	case *BinaryExpression:
		return ip.evalBinary(e, f)
	case *UnaryExpression:
		return ip.evalUnary(e, f)
	case *FieldDereference:
		base, err := ip.evalExpr(e.Base, f)
		if err != nil {
			return nil, err
		}
		if base.Tag != VTRecord {
			return nil, errCast("field access on non-record")
		}
		if v, ok := base.R.Get(e.Field); ok {
			return v, nil
		}
		return ip.newValue()
	case *IndexExpression:
		base, err := ip.evalExpr(e.Base, f)
		if err != nil {
			return nil, err
		}
		if base.Tag != VTRecord {
			return nil, errCast("index on non-record")
		}
		index, err := ip.evalExpr(e.Index, f)
		if err != nil {
			return nil, err
		}
		if v, ok := base.R.Get(displayValue(index)); ok {
			return v, nil
		}
		return ip.newValue()
	case *RecordLiteral:
		r := &Record{}
		for _, field := range e.Fields {
			v, err := ip.evalExpr(field.Value, f)
			if err != nil {
				return nil, err
			}
			r.Fields = append(r.Fields, Field{Name: field.Name, Value: v})
		}
		return ip.newRecordValue(r)
	case *FunctionDeclaration:
		fn := &Function{Captured: ip.top(), Params: e.Params, Body: e.Body}
		if err := ip.heap.adopt(fn); err != nil {
			return nil, err
		}
		return ip.newFunValue(fn)
	case *Call:
		return ip.evalCall(e, f)
	default:
		return nil, errRuntime("unknown expression")
	}
}

func (ip *Interpreter) evalCall(e *Call, f *Frame) (*Value, error) {
	callee, err := ip.evalExpr(e.Callee, f)
	if err != nil {
		return nil, err
	}
	if callee.Tag != VTFun {
		return nil, errCast("calling a non-function")
	}
	fn := callee.F

	args := make([]*Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := ip.evalExpr(a, f)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if len(args) != len(fn.Params) {
		return nil, errRuntime("argument count mismatch")
	}

	if fn.Builtin != BuiltinNone {
		return ip.callBuiltin(fn.Builtin, args)
	}

	frame, err := ip.newFrame(fn.Captured)
	if err != nil {
		return nil, err
	}
	globals := extractGlobals(fn.Body)
	frame.SetGlobal(fn.Captured.global.Frame, globals)

	for name := range extractAssigns(fn.Body) {
		if _, isGlobal := globals[name]; isGlobal || containsName(fn.Params, name) {
			continue
		}
		// a name already bound in a captured frame stays shared with the
		// closure; only genuinely new locals start as None
		if fn.Captured.boundBelowGlobal(name) {
			continue
		}
		v, err := ip.newValue()
		if err != nil {
			return nil, err
		}
		frame.Define(name, v)
	}
	for i, p := range fn.Params {
		frame.Define(p, args[i])
	}

	ip.frames = append(ip.frames, frame)
	saved := ip.hasReturned
	ip.hasReturned = false
	err = ip.execBlock(fn.Body, frame)
	result := ip.ret
	ip.hasReturned = saved
	ip.frames = ip.frames[:len(ip.frames)-1]
	if err != nil {
		return nil, err
	}
	if result == nil {
		return ip.newValue()
	}
	ip.ret = nil
	return result, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// extractGlobals collects every name declared global anywhere in the body,
// walking nested blocks and if/while arms but not nested function literals.
func extractGlobals(node Node) map[string]struct{} {
	out := map[string]struct{}{}
	collectGlobals(node, out)
	return out
}

func collectGlobals(node Node, out map[string]struct{}) {
	switch n := node.(type) {
	case *Block:
		for _, s := range n.Statements {
			collectGlobals(s, out)
		}
	case *Global:
		out[n.Name] = struct{}{}
	case *IfStatement:
		collectGlobals(n.Then, out)
		if n.Else != nil {
			collectGlobals(n.Else, out)
		}
	case *WhileLoop:
		collectGlobals(n.Body, out)
	}
}

// extractAssigns collects every identifier assigned in the body, with the
// same traversal rules as extractGlobals.
func extractAssigns(node Node) map[string]struct{} {
	out := map[string]struct{}{}
	collectAssigns(node, out)
	return out
}

func collectAssigns(node Node, out map[string]struct{}) {
	switch n := node.(type) {
	case *Block:
		for _, s := range n.Statements {
			collectAssigns(s, out)
		}
	case *Assignment:
		if id, ok := n.Target.(*Identifier); ok {
			out[id.Name] = struct{}{}
		}
	case *IfStatement:
		collectAssigns(n.Then, out)
		if n.Else != nil {
			collectAssigns(n.Else, out)
		}
	case *WhileLoop:
		collectAssigns(n.Body, out)
	}
}
