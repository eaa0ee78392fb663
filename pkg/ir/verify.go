package ir

import (
	"fmt"

	"github.com/Project-NexOS/art/pkg/runtime"
)

// VerifyError reports a structurally malformed function body. It signals
// a defect in the code that emitted the body, not bad input.
type VerifyError struct {
	Func   string
	Index  int
	Reason string
}

func (e *VerifyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("verify %s: %s", e.Func, e.Reason)
	}
	return fmt.Sprintf("verify %s: instruction %d: %s", e.Func, e.Index, e.Reason)
}

// Verify checks the function body for structural well-formedness: every
// operand refers to an earlier value of a compatible type, parameters are
// materialized in order before any other instruction, and the body ends
// in exactly one terminator matching the declared return type.
func (f *Func) Verify() error {
	fail := func(i int, format string, args ...interface{}) error {
		return &VerifyError{Func: f.Name, Index: i, Reason: fmt.Sprintf(format, args...)}
	}

	if len(f.Body) == 0 {
		return fail(-1, "empty body")
	}

	// operand validates a use of value id at instruction i and returns the
	// value's type.
	operand := func(i int, id ValueID) (Type, error) {
		if id < 0 || int(id) >= i {
			return Void, fail(i, "operand %d does not refer to an earlier instruction", id)
		}
		t := f.Body[id].Type
		if t == Void {
			return Void, fail(i, "operand %d has no value", id)
		}
		return t, nil
	}

	paramsDone := false
	nextParam := 0
	for i := range f.Body {
		in := &f.Body[i]

		if in.IsTerminator() != (i == len(f.Body)-1) {
			return fail(i, "terminator must be the last instruction")
		}

		if in.Op == OpParam {
			if paramsDone {
				return fail(i, "parameter materialized after non-parameter instruction")
			}
			if int(in.Arg) != nextParam {
				return fail(i, "parameter %d materialized out of order", in.Arg)
			}
			if nextParam >= len(f.Params) {
				return fail(i, "parameter index %d out of range", in.Arg)
			}
			if in.Type != f.Params[nextParam].Type {
				return fail(i, "parameter %d type %v does not match signature type %v",
					in.Arg, in.Type, f.Params[nextParam].Type)
			}
			nextParam++
			continue
		}
		paramsDone = true

		switch in.Op {
		case OpConst:
			if in.Type == Void || in.Type == Ref {
				return fail(i, "constant of type %v", in.Type)
			}
		case OpConstNull:
			if in.Type != Ref {
				return fail(i, "null constant of type %v", in.Type)
			}
		case OpAlloca:
			if in.Arg <= 0 {
				return fail(i, "allocation of %d bytes", in.Arg)
			}
		case OpMemZero:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr {
				return fail(i, "memzero target has type %v, want ptr", t)
			}
			if in.Arg <= 0 {
				return fail(i, "zero fill of %d bytes", in.Arg)
			}
		case OpAddr:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr && t != Ref {
				return fail(i, "address base has type %v, want ptr or ref", t)
			}
		case OpLoad:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr {
				return fail(i, "load address has type %v, want ptr", t)
			}
			if in.Type == Void {
				return fail(i, "load of void")
			}
		case OpStore:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr {
				return fail(i, "store address has type %v, want ptr", t)
			}
			if _, err := operand(i, in.Y); err != nil {
				return err
			}
		case OpCallRuntime:
			if in.Arg < 0 || in.Arg >= int64(runtime.NumSupportRoutines) {
				return fail(i, "unknown support routine %d", in.Arg)
			}
			for _, a := range in.Args {
				if _, err := operand(i, a); err != nil {
					return err
				}
			}
		case OpCallIndirect:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr {
				return fail(i, "indirect callee has type %v, want ptr", t)
			}
			for _, a := range in.Args {
				if _, err := operand(i, a); err != nil {
					return err
				}
			}
		case OpRefCast:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ptr {
				return fail(i, "refcast source has type %v, want ptr", t)
			}
		case OpIsNull:
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != Ref {
				return fail(i, "null test on type %v, want ref", t)
			}
		case OpSelect:
			ct, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if ct != I1 {
				return fail(i, "select condition has type %v, want i1", ct)
			}
			tt, err := operand(i, in.Y)
			if err != nil {
				return err
			}
			ft, err := operand(i, in.Z)
			if err != nil {
				return err
			}
			if tt != ft {
				return fail(i, "select arms have types %v and %v", tt, ft)
			}
			if in.Type != tt {
				return fail(i, "select result type %v does not match arms %v", in.Type, tt)
			}
		case OpRet:
			if f.Ret == Void {
				return fail(i, "value return from void function")
			}
			t, err := operand(i, in.X)
			if err != nil {
				return err
			}
			if t != f.Ret {
				return fail(i, "return of type %v from function returning %v", t, f.Ret)
			}
		case OpRetVoid:
			if f.Ret != Void {
				return fail(i, "void return from function returning %v", f.Ret)
			}
		default:
			return fail(i, "unknown opcode %d", in.Op)
		}
	}

	if nextParam != len(f.Params) {
		return fail(-1, "only %d of %d parameters materialized", nextParam, len(f.Params))
	}
	return nil
}
