// Package jni lowers methods declared native into callable stubs that
// bridge the managed calling convention to the foreign one. The emitted
// body allocates a GC-visible shadow frame for reference arguments,
// marshals each argument across the boundary, brackets the foreign call
// with thread-state transitions and a local-reference scope, decodes the
// return value, and unlinks the frame.
package jni

import (
	"fmt"
	"strings"

	"github.com/Project-NexOS/art/pkg/dex"
	"github.com/Project-NexOS/art/pkg/ir"
	"github.com/Project-NexOS/art/pkg/runtime"
)

// Shadow frame layout: a three-word header followed by the reference
// slots. The link word is written by PushShadowFrame, not by the stub.
const (
	shadowFrameSizeOffset   = 0
	shadowFrameLinkOffset   = 1 * runtime.WordSize
	shadowFrameMethodOffset = 2 * runtime.WordSize
	shadowFrameHeaderSize   = 3 * runtime.WordSize
)

// slotOffset returns the byte offset of reference slot i within the frame.
func slotOffset(i int) int64 {
	return shadowFrameHeaderSize + int64(i)*runtime.WordSize
}

// MethodTable resolves method indices to method descriptors.
type MethodTable interface {
	ResolveMethod(idx uint32) (*dex.Method, error)
}

// Compiler lowers one native method into a stub function.
type Compiler struct {
	cunit  *CompilationUnit
	method *dex.Method
	sig    dex.Signature
	irb    *ir.Builder
	fn     *ir.Func
}

// NewCompiler resolves the method and checks the preconditions: the index
// must resolve and the method must be marked native. Either violation is
// fatal for this method's compilation.
func NewCompiler(cunit *CompilationUnit, table MethodTable, methodIdx uint32) (*Compiler, error) {
	method, err := table.ResolveMethod(methodIdx)
	if err != nil {
		return nil, fmt.Errorf("jni: %w", err)
	}
	if !method.IsNative() {
		return nil, fmt.Errorf("jni: method %s is not native", method.FullName())
	}
	sig, err := dex.ParseShorty(method.Shorty)
	if err != nil {
		return nil, fmt.Errorf("jni: method %s: %w", method.FullName(), err)
	}
	return &Compiler{cunit: cunit, method: method, sig: sig}, nil
}

// irType maps a semantic type kind to its IR type.
func irType(k dex.TypeKind) ir.Type {
	switch k {
	case dex.KindVoid:
		return ir.Void
	case dex.KindBoolean:
		return ir.I1
	case dex.KindByte:
		return ir.I8
	case dex.KindChar, dex.KindShort:
		return ir.I16
	case dex.KindInt:
		return ir.I32
	case dex.KindLong:
		return ir.I64
	case dex.KindFloat:
		return ir.F32
	case dex.KindDouble:
		return ir.F64
	case dex.KindRef:
		return ir.Ref
	}
	panic(fmt.Sprintf("unknown type kind %v", k))
}

// funcType derives a function signature from the method's shorty. The
// bridge signature (isTarget false) is what managed code calls: the
// method pointer, the receiver for instance methods, then the declared
// arguments. The target signature (isTarget true) is what the stub calls:
// the JNI environment, then always a receiver-or-class reference, then
// the declared arguments.
func (c *Compiler) funcType(isTarget bool) ([]ir.Param, ir.Type) {
	var params []ir.Param
	if isTarget {
		params = append(params, ir.Param{Name: "env", Type: ir.Ptr})
	} else {
		params = append(params, ir.Param{Name: "method", Type: ir.Ref})
	}
	if !c.method.IsStatic() || isTarget {
		// "this" for instance methods, the declaring class for static.
		params = append(params, ir.Param{Type: ir.Ref})
	}
	for _, k := range c.sig.Args {
		params = append(params, ir.Param{Type: irType(k)})
	}
	return params, irType(c.sig.Ret)
}

// mangle escapes one symbol component the JNI way.
func mangle(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '/', '.':
			b.WriteByte('_')
		case '_':
			b.WriteString("_1")
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// StubName returns the mangled symbol name of the method's stub.
func StubName(m *dex.Method) string {
	return "Java_" + mangle(m.Class) + "_" + mangle(m.Name)
}

// createFunction registers the stub skeleton in the unit's module: the
// bridge-signature function with an empty body ready for instructions.
func (c *Compiler) createFunction() error {
	params, ret := c.funcType(false)
	fn, err := c.cunit.Module.NewFunc(StubName(c.method), params, ret)
	if err != nil {
		return fmt.Errorf("jni: %w", err)
	}
	c.fn = fn
	c.irb = ir.NewBuilder(fn)
	return nil
}

// Compile lowers the method and returns the verified stub artifact. Any
// failure aborts the whole stub; no partial artifact is returned.
func (c *Compiler) Compile() (*CompiledStub, error) {
	isStatic := c.method.IsStatic()
	offs := c.cunit.Offsets

	if err := c.createFunction(); err != nil {
		return nil, err
	}
	irb := c.irb

	// Materialize parameters: the method pointer, then the declared
	// arguments (the receiver of an instance method is a0).
	methodVal := irb.EmitParam(0, "method")
	argVals := make([]ir.ValueID, 0, len(c.fn.Params)-1)
	for i := 1; i < len(c.fn.Params); i++ {
		argVals = append(argVals, irb.EmitParam(i, fmt.Sprintf("a%d", i-1)))
	}

	// Count the reference slot demand: one per reference argument, plus
	// the declaring class for static methods.
	sirtSize := 0
	if isStatic {
		sirtSize = 1
	}
	for i := 1; i < len(c.fn.Params); i++ {
		if c.fn.Params[i].Type == ir.Ref {
			sirtSize++
		}
	}

	thread := irb.CallRuntime(runtime.GetCurrentThread, ir.Ptr)

	// Allocate and zero the shadow frame, then fill the header. The frame
	// must be linked and fully sized before any reference is stored into
	// a slot, so a concurrent root scan never sees a partial frame.
	frameSize := shadowFrameHeaderSize + int64(sirtSize)*runtime.WordSize
	frame := irb.Alloca(frameSize)
	irb.MemZero(frame, frameSize)

	methodFieldAddr := irb.Addr(frame, shadowFrameMethodOffset)
	irb.Store(methodFieldAddr, methodVal)
	irb.Store(irb.Addr(frame, shadowFrameSizeOffset), irb.Const(ir.I32, int64(sirtSize)))

	irb.CallRuntime(runtime.PushShadowFrame, ir.Void, frame)

	// Record the frame's method field as the top of the managed stack so
	// stack walking finds the frame without extra bookkeeping.
	irb.StoreOffset(thread, offs.ThreadTopOfManagedStack, methodFieldAddr)

	env := irb.LoadOffset(thread, offs.ThreadJNIEnv, ir.Ptr)

	irb.StoreOffset(thread, offs.ThreadState, irb.Const(ir.I64, int64(runtime.StateNative)))

	code := irb.LoadOffset(methodVal, offs.MethodNativeEntry, ir.Ptr)

	// Marshal the foreign argument list: env, receiver-or-class, then each
	// declared argument. Slots are consumed densely in exactly this order.
	args := make([]ir.ValueID, 0, len(argVals)+2)
	args = append(args, env)
	slot := 0
	if isStatic {
		class := irb.LoadOffset(methodVal, offs.MethodDeclaringClass, ir.Ref)
		slotAddr := irb.Addr(frame, slotOffset(slot))
		slot++
		irb.Store(slotAddr, class)
		args = append(args, irb.AsRef(slotAddr))
	}
	for i, v := range argVals {
		if c.fn.Params[i+1].Type != ir.Ref {
			args = append(args, v)
			continue
		}
		slotAddr := irb.Addr(frame, slotOffset(slot))
		slot++
		irb.Store(slotAddr, v)
		// A null argument must reach the foreign code as a true null, not
		// as the address of a slot that happens to hold null.
		args = append(args, irb.Select(irb.IsNull(v), irb.Null(), irb.AsRef(slotAddr)))
	}

	targetParams, targetRet := c.funcType(true)
	if len(args) != len(targetParams) {
		return nil, fmt.Errorf("jni: internal error: method %s: %d marshalled arguments for target arity %d",
			c.method.FullName(), len(args), len(targetParams))
	}

	// Open a fresh local-reference scope: save the cookie, then promote
	// the current segment state to be the new cookie.
	savedCookie := irb.LoadOffset(env, offs.EnvLocalRefCookie, ir.I64)
	segState := irb.LoadOffset(env, offs.EnvSegmentState, ir.I64)
	irb.StoreOffset(env, offs.EnvLocalRefCookie, segState)

	retval := irb.CallIndirect(code, targetRet, args...)

	irb.StoreOffset(thread, offs.ThreadState, irb.Const(ir.I64, int64(runtime.StateRunnable)))

	if c.sig.Ret == dex.KindRef {
		// The raw value may alias a shadow frame slot; decode it to the
		// canonical object reference.
		retval = irb.CallRuntime(runtime.DecodeJObjectInThread, ir.Ref, thread, retval)
	}

	// Close the scope: collapse references made by the callee back to the
	// cookie boundary, then restore the caller's cookie.
	cookie := irb.LoadOffset(env, offs.EnvLocalRefCookie, ir.I64)
	irb.StoreOffset(env, offs.EnvSegmentState, cookie)
	irb.StoreOffset(env, offs.EnvLocalRefCookie, savedCookie)

	irb.CallRuntime(runtime.PopShadowFrame, ir.Void)

	if c.sig.Ret == dex.KindVoid {
		irb.RetVoid()
	} else {
		irb.Ret(retval)
	}

	if err := c.fn.Verify(); err != nil {
		return nil, fmt.Errorf("jni: internal error: method %s: %w", c.method.FullName(), err)
	}

	return &CompiledStub{
		InstructionSet: c.cunit.InstructionSet,
		ElfIndex:       c.cunit.ElfIndex,
		Func:           c.fn,
	}, nil
}
