// Package runtime describes the runtime object layout the stub compiler
// emits loads and stores against: well-known field offsets on the thread,
// JNI environment and method objects, thread-state encodings, and the
// identifiers of the runtime support routines a stub may call.
package runtime

import "fmt"

// WordSize is the size in bytes of one pointer-sized slot.
const WordSize = 8

// ThreadState is the scheduler-visible state of a managed thread.
type ThreadState int64

const (
	// StateRunnable marks a thread that may mutate the managed heap and is
	// subject to cooperative suspend checks.
	StateRunnable ThreadState = 1
	// StateNative marks a thread executing foreign code; the collector may
	// suspend it without cooperation.
	StateNative ThreadState = 2
)

func (s ThreadState) String() string {
	switch s {
	case StateRunnable:
		return "runnable"
	case StateNative:
		return "native"
	}
	return fmt.Sprintf("ThreadState(%d)", int64(s))
}

// Offsets carries the byte offsets of every runtime field the stub
// compiler touches. It is threaded through the compiler explicitly so
// tests can lay out fake runtime objects however they like.
type Offsets struct {
	// Thread fields.
	ThreadJNIEnv            int64 // *JNIEnv handle
	ThreadState             int64 // ThreadState word
	ThreadTopOfManagedStack int64 // address of the top frame's method field

	// JNI environment fields.
	EnvLocalRefCookie int64 // saved local-reference cookie
	EnvSegmentState   int64 // local-reference segment state

	// Method fields.
	MethodNativeEntry    int64 // foreign entry point
	MethodDeclaringClass int64 // declaring class reference
}

// DefaultOffsets returns the layout used by the in-tree runtime.
func DefaultOffsets() Offsets {
	return Offsets{
		ThreadJNIEnv:            0 * WordSize,
		ThreadState:             1 * WordSize,
		ThreadTopOfManagedStack: 2 * WordSize,
		EnvLocalRefCookie:       0 * WordSize,
		EnvSegmentState:         1 * WordSize,
		MethodNativeEntry:       0 * WordSize,
		MethodDeclaringClass:    1 * WordSize,
	}
}

// SupportRoutine identifies a runtime support function callable from
// generated code.
type SupportRoutine int

const (
	GetCurrentThread SupportRoutine = iota
	PushShadowFrame
	PopShadowFrame
	DecodeJObjectInThread
	NumSupportRoutines
)

func (r SupportRoutine) String() string {
	switch r {
	case GetCurrentThread:
		return "GetCurrentThread"
	case PushShadowFrame:
		return "PushShadowFrame"
	case PopShadowFrame:
		return "PopShadowFrame"
	case DecodeJObjectInThread:
		return "DecodeJObjectInThread"
	}
	return fmt.Sprintf("SupportRoutine(%d)", int(r))
}
