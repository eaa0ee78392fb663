package ir

import (
	"testing"

	"github.com/Project-NexOS/art/pkg/runtime"
)

func TestModuleNewFunc(t *testing.T) {
	t.Run("registers functions by name", func(t *testing.T) {
		m := NewModule("unit0")
		f, err := m.NewFunc("f", nil, Void)
		if err != nil {
			t.Fatalf("NewFunc(f): %v", err)
		}
		if m.Func("f") != f {
			t.Error("Func(f) did not return the registered function")
		}
		if m.NumFuncs() != 1 {
			t.Errorf("NumFuncs: got %d, want 1", m.NumFuncs())
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		m := NewModule("unit0")
		if _, err := m.NewFunc("f", nil, Void); err != nil {
			t.Fatalf("NewFunc(f): %v", err)
		}
		if _, err := m.NewFunc("f", nil, I32); err == nil {
			t.Error("duplicate NewFunc(f): expected error, got nil")
		}
	})
}

func TestBuilderEmitsOrderedBody(t *testing.T) {
	m := NewModule("unit0")
	f, err := m.NewFunc("f", []Param{{Type: I32}, {Type: Ref}}, I32)
	if err != nil {
		t.Fatalf("NewFunc: %v", err)
	}
	b := NewBuilder(f)

	p0 := b.EmitParam(0, "x")
	p1 := b.EmitParam(1, "obj")
	c := b.Const(I32, 7)
	b.IsNull(p1)
	b.Ret(p0)

	if p0 != 0 || p1 != 1 || c != 2 {
		t.Errorf("value ids: got %d %d %d, want 0 1 2", p0, p1, c)
	}
	if f.Params[0].Name != "x" || f.Params[1].Name != "obj" {
		t.Errorf("param names: got %q %q", f.Params[0].Name, f.Params[1].Name)
	}
	if len(f.Body) != 5 {
		t.Fatalf("body length: got %d, want 5", len(f.Body))
	}
	if !f.Body[4].IsTerminator() {
		t.Error("last instruction is not a terminator")
	}
	if err := f.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify(t *testing.T) {
	newFunc := func(t *testing.T, params []Param, ret Type) (*Func, *Builder) {
		t.Helper()
		f, err := NewModule("unit0").NewFunc("f", params, ret)
		if err != nil {
			t.Fatalf("NewFunc: %v", err)
		}
		return f, NewBuilder(f)
	}

	t.Run("empty body", func(t *testing.T) {
		f, _ := newFunc(t, nil, Void)
		if err := f.Verify(); err == nil {
			t.Error("expected error for empty body, got nil")
		}
	})

	t.Run("missing terminator", func(t *testing.T) {
		f, b := newFunc(t, nil, Void)
		b.Const(I32, 1)
		if err := f.Verify(); err == nil {
			t.Error("expected error for missing terminator, got nil")
		}
	})

	t.Run("terminator not last", func(t *testing.T) {
		f, b := newFunc(t, nil, Void)
		b.RetVoid()
		b.Const(I32, 1)
		if err := f.Verify(); err == nil {
			t.Error("expected error for mid-body terminator, got nil")
		}
	})

	t.Run("forward operand reference", func(t *testing.T) {
		f, _ := newFunc(t, nil, Void)
		f.Body = []Instr{
			{Op: OpIsNull, Type: I1, X: 1},
			{Op: OpConstNull, Type: Ref},
			{Op: OpRetVoid},
		}
		if err := f.Verify(); err == nil {
			t.Error("expected error for forward reference, got nil")
		}
	})

	t.Run("load from non-pointer", func(t *testing.T) {
		f, b := newFunc(t, nil, Void)
		c := b.Const(I64, 8)
		b.Load(c, I64)
		b.RetVoid()
		if err := f.Verify(); err == nil {
			t.Error("expected error for load from i64, got nil")
		}
	})

	t.Run("return type mismatch", func(t *testing.T) {
		f, b := newFunc(t, nil, I64)
		c := b.Const(I32, 1)
		b.Ret(c)
		if err := f.Verify(); err == nil {
			t.Error("expected error for return type mismatch, got nil")
		}
	})

	t.Run("void return from value function", func(t *testing.T) {
		f, b := newFunc(t, nil, I32)
		b.RetVoid()
		if err := f.Verify(); err == nil {
			t.Error("expected error for void return, got nil")
		}
	})

	t.Run("select arm mismatch", func(t *testing.T) {
		f, b := newFunc(t, []Param{{Type: Ref}}, Void)
		p := b.EmitParam(0, "obj")
		cond := b.IsNull(p)
		a := b.Null()
		z := b.Const(I32, 0)
		b.Select(cond, a, z)
		b.RetVoid()
		if err := f.Verify(); err == nil {
			t.Error("expected error for select arm mismatch, got nil")
		}
	})

	t.Run("parameter out of order", func(t *testing.T) {
		f, _ := newFunc(t, []Param{{Type: I32}, {Type: I32}}, Void)
		f.Body = []Instr{
			{Op: OpParam, Type: I32, Arg: 1},
			{Op: OpParam, Type: I32, Arg: 0},
			{Op: OpRetVoid},
		}
		if err := f.Verify(); err == nil {
			t.Error("expected error for out-of-order parameters, got nil")
		}
	})

	t.Run("parameter after other instruction", func(t *testing.T) {
		f, _ := newFunc(t, []Param{{Type: I32}}, Void)
		f.Body = []Instr{
			{Op: OpConst, Type: I32, Arg: 3},
			{Op: OpParam, Type: I32, Arg: 0},
			{Op: OpRetVoid},
		}
		if err := f.Verify(); err == nil {
			t.Error("expected error for late parameter, got nil")
		}
	})

	t.Run("unmaterialized parameters", func(t *testing.T) {
		f, b := newFunc(t, []Param{{Type: I32}, {Type: I32}}, Void)
		b.EmitParam(0, "a")
		b.RetVoid()
		if err := f.Verify(); err == nil {
			t.Error("expected error for missing parameter, got nil")
		}
	})

	t.Run("unknown support routine", func(t *testing.T) {
		f, b := newFunc(t, nil, Void)
		b.CallRuntime(runtime.NumSupportRoutines, Void)
		b.RetVoid()
		if err := f.Verify(); err == nil {
			t.Error("expected error for unknown routine, got nil")
		}
	})

	t.Run("well formed body", func(t *testing.T) {
		f, b := newFunc(t, []Param{{Type: Ref}, {Type: I32}}, Ref)
		obj := b.EmitParam(0, "obj")
		b.EmitParam(1, "n")
		frame := b.Alloca(4 * runtime.WordSize)
		b.MemZero(frame, 4*runtime.WordSize)
		slotAddr := b.Addr(frame, 3*runtime.WordSize)
		b.Store(slotAddr, obj)
		sel := b.Select(b.IsNull(obj), b.Null(), b.AsRef(slotAddr))
		b.Ret(sel)
		if err := f.Verify(); err != nil {
			t.Errorf("Verify: %v", err)
		}
	})
}
