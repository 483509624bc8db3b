// runtime_test.go
package mitscript

import "testing"

func testFrames(t *testing.T) (*Interpreter, *Frame) {
	t.Helper()
	ip, err := NewInterpreter()
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	return ip, ip.global
}

func Test_Frame_LookupReadWalksParents(t *testing.T) {
	ip, global := testFrames(t)
	v, _ := ip.newInt(1)
	global.Define("x", v)

	child, err := ip.newFrame(global)
	if err != nil {
		t.Fatal(err)
	}
	got, err := child.LookupRead("x")
	if err != nil {
		t.Fatalf("LookupRead: %v", err)
	}
	if got != v {
		t.Fatalf("want the same value reference")
	}
}

func Test_Frame_LookupReadShadowing(t *testing.T) {
	ip, global := testFrames(t)
	outer, _ := ip.newInt(1)
	inner, _ := ip.newInt(2)
	global.Define("x", outer)

	child, _ := ip.newFrame(global)
	child.Define("x", inner)

	got, err := child.LookupRead("x")
	if err != nil || got != inner {
		t.Fatalf("want the shadowing binding, got %v (%v)", got, err)
	}
}

func Test_Frame_LookupReadUninitialized(t *testing.T) {
	ip, global := testFrames(t)
	child, _ := ip.newFrame(global)
	if _, err := child.LookupRead("nosuch"); err == nil {
		t.Fatalf("want UninitializedVariable")
	} else if e := err.(*Error); e.Kind != UninitializedVariable {
		t.Fatalf("want UninitializedVariable, got %v", e.Kind)
	}
}

func Test_Frame_LookupWriteTargetsLocalByDefault(t *testing.T) {
	ip, global := testFrames(t)
	child, _ := ip.newFrame(global)
	if got := child.LookupWrite("x"); got != child {
		t.Fatalf("plain write must stay local")
	}
}

func Test_Frame_LookupWriteFindsCapturedBinding(t *testing.T) {
	ip, global := testFrames(t)
	captured, _ := ip.newFrame(global)
	n, _ := ip.newInt(0)
	captured.Define("n", n)

	call, _ := ip.newFrame(captured)
	if got := call.LookupWrite("n"); got != captured {
		t.Fatalf("write to a captured binding must target the capturing frame")
	}
}

func Test_Frame_LookupWriteSkipsGlobalFrame(t *testing.T) {
	ip, global := testFrames(t)
	x, _ := ip.newInt(1)
	global.Define("x", x)

	call, _ := ip.newFrame(global)
	if got := call.LookupWrite("x"); got != call {
		t.Fatalf("an undeclared write must not reach the global frame")
	}
}

func Test_Frame_LookupWriteHonorsGlobals(t *testing.T) {
	ip, global := testFrames(t)
	child, _ := ip.newFrame(global)
	child.SetGlobal(global, nameSet("x"))
	if got := child.LookupWrite("x"); got != global {
		t.Fatalf("declared global must target the global frame")
	}
}

func Test_Frame_DeclaredGlobalReadSkipsLexicalChain(t *testing.T) {
	ip, global := testFrames(t)
	mid, _ := ip.newFrame(global)
	shadow, _ := ip.newInt(5)
	mid.Define("x", shadow)

	child, _ := ip.newFrame(mid)
	child.SetGlobal(global, nameSet("x"))

	// x is declared global but unbound in the global frame; the binding in
	// mid must not be found
	if _, err := child.LookupRead("x"); err == nil {
		t.Fatalf("want UninitializedVariable for unbound global")
	}

	bound, _ := ip.newInt(9)
	global.Define("x", bound)
	got, err := child.LookupRead("x")
	if err != nil || got != bound {
		t.Fatalf("want the global binding, got %v (%v)", got, err)
	}
}

func Test_Record_SetOverwritesInPlace(t *testing.T) {
	ip, _ := testFrames(t)
	one, _ := ip.newInt(1)
	two, _ := ip.newInt(2)
	r := &Record{}
	r.Set("a", one)
	r.Set("b", one)
	r.Set("a", two)
	if len(r.Fields) != 2 {
		t.Fatalf("overwrite must not change ordering, got %v", r.Fields)
	}
	if r.Fields[0].Name != "a" || r.Fields[0].Value != two {
		t.Fatalf("first field not rebound: %v", r.Fields)
	}
	if v, ok := r.Get("a"); !ok || v != two {
		t.Fatalf("Get after overwrite: %v %v", v, ok)
	}
}

func Test_DisplayValue(t *testing.T) {
	ip, _ := testFrames(t)
	i, _ := ip.newInt(-3)
	b, _ := ip.newBool(true)
	s, _ := ip.newStr("hi")
	for _, tc := range []struct {
		v    *Value
		want string
	}{
		{ip.none, "None"},
		{i, "-3"},
		{b, "true"},
		{s, "hi"},
	} {
		if got := displayValue(tc.v); got != tc.want {
			t.Fatalf("display %v: want %q got %q", tc.v.Tag, tc.want, got)
		}
	}
}
