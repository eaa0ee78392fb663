package ir

import (
	"fmt"

	"github.com/Project-NexOS/art/pkg/runtime"
)

// Builder appends instructions to a function body. It performs only the
// checks that indicate caller bugs; full structural checking is the
// verifier's job.
type Builder struct {
	f *Func
}

// NewBuilder creates a builder appending to the given function.
func NewBuilder(f *Func) *Builder {
	return &Builder{f: f}
}

// Func returns the function under construction.
func (b *Builder) Func() *Func {
	return b.f
}

func (b *Builder) emit(in Instr) ValueID {
	b.f.Body = append(b.f.Body, in)
	return ValueID(len(b.f.Body) - 1)
}

// EmitParam materializes function parameter i as a value and records its
// diagnostic name. Parameters must be emitted, in order, before any other
// instruction.
func (b *Builder) EmitParam(i int, name string) ValueID {
	if i < 0 || i >= len(b.f.Params) {
		panic(fmt.Sprintf("parameter index out of range: index=%d, params=%d", i, len(b.f.Params)))
	}
	b.f.Params[i].Name = name
	return b.emit(Instr{Op: OpParam, Type: b.f.Params[i].Type, Arg: int64(i), Name: name})
}

// Const emits an integer constant of the given type.
func (b *Builder) Const(t Type, v int64) ValueID {
	return b.emit(Instr{Op: OpConst, Type: t, Arg: v})
}

// Null emits the null reference constant.
func (b *Builder) Null() ValueID {
	return b.emit(Instr{Op: OpConstNull, Type: Ref})
}

// Alloca emits an allocation of size bytes of activation-scoped storage
// and yields its address.
func (b *Builder) Alloca(size int64) ValueID {
	return b.emit(Instr{Op: OpAlloca, Type: Ptr, Arg: size})
}

// MemZero emits a zero fill of size bytes starting at addr.
func (b *Builder) MemZero(addr ValueID, size int64) ValueID {
	return b.emit(Instr{Op: OpMemZero, X: addr, Arg: size})
}

// Addr emits base displaced by off bytes.
func (b *Builder) Addr(base ValueID, off int64) ValueID {
	return b.emit(Instr{Op: OpAddr, Type: Ptr, X: base, Arg: off})
}

// Load emits a load of a value of type t from addr.
func (b *Builder) Load(addr ValueID, t Type) ValueID {
	return b.emit(Instr{Op: OpLoad, Type: t, X: addr})
}

// Store emits a store of val to addr.
func (b *Builder) Store(addr, val ValueID) ValueID {
	return b.emit(Instr{Op: OpStore, X: addr, Y: val})
}

// LoadOffset emits a load of a value of type t from the field at byte
// offset off of the object at base.
func (b *Builder) LoadOffset(base ValueID, off int64, t Type) ValueID {
	return b.Load(b.Addr(base, off), t)
}

// StoreOffset emits a store of val to the field at byte offset off of the
// object at base.
func (b *Builder) StoreOffset(base ValueID, off int64, val ValueID) ValueID {
	return b.Store(b.Addr(base, off), val)
}

// CallRuntime emits a call to a runtime support routine.
func (b *Builder) CallRuntime(r runtime.SupportRoutine, ret Type, args ...ValueID) ValueID {
	return b.emit(Instr{Op: OpCallRuntime, Type: ret, Arg: int64(r), Args: args})
}

// CallIndirect emits a call through the code address in callee.
func (b *Builder) CallIndirect(callee ValueID, ret Type, args ...ValueID) ValueID {
	return b.emit(Instr{Op: OpCallIndirect, Type: ret, X: callee, Args: args})
}

// AsRef emits a reinterpretation of an address as a reference handle.
func (b *Builder) AsRef(addr ValueID) ValueID {
	return b.emit(Instr{Op: OpRefCast, Type: Ref, X: addr})
}

// IsNull emits a null test on a reference.
func (b *Builder) IsNull(v ValueID) ValueID {
	return b.emit(Instr{Op: OpIsNull, Type: I1, X: v})
}

// Select emits cond ? then : els.
func (b *Builder) Select(cond, then, els ValueID) ValueID {
	t := Void
	if int(then) < len(b.f.Body) {
		t = b.f.Body[then].Type
	}
	return b.emit(Instr{Op: OpSelect, Type: t, X: cond, Y: then, Z: els})
}

// Ret emits a value return.
func (b *Builder) Ret(v ValueID) ValueID {
	return b.emit(Instr{Op: OpRet, X: v})
}

// RetVoid emits a void return.
func (b *Builder) RetVoid() ValueID {
	return b.emit(Instr{Op: OpRetVoid})
}
