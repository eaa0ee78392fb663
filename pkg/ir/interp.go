package ir

import (
	"fmt"

	"github.com/Project-NexOS/art/pkg/runtime"
)

// NativeFunc is a host function reachable through an indirect call. It
// receives the executing machine so it can observe or mutate runtime
// state mid-call.
type NativeFunc func(m *Machine, args []uint64) (uint64, error)

// SupportFunc handles calls to runtime support routines.
type SupportFunc func(m *Machine, r runtime.SupportRoutine, args []uint64) (uint64, error)

// Machine is a reference evaluator for function bodies. Memory is a flat
// word-addressed store; references and addresses are plain words, with 0
// as null. It exists to make emitted code observable: tests lay out fake
// runtime objects in memory, register native functions against code
// addresses, and run stubs against them.
type Machine struct {
	Support SupportFunc
	Natives map[uint64]NativeFunc

	mem map[uint64]uint64
	brk uint64
}

// NewMachine creates a machine with empty memory.
func NewMachine() *Machine {
	return &Machine{
		Natives: make(map[uint64]NativeFunc),
		mem:     make(map[uint64]uint64),
		brk:     0x10000,
	}
}

func checkAligned(addr uint64) {
	if addr%runtime.WordSize != 0 {
		panic(fmt.Sprintf("unaligned access at 0x%x", addr))
	}
}

// Alloc reserves size bytes (rounded up to whole words) and returns the
// base address.
func (m *Machine) Alloc(size int64) uint64 {
	words := (size + runtime.WordSize - 1) / runtime.WordSize
	addr := m.brk
	m.brk += uint64(words) * runtime.WordSize
	return addr
}

// Load reads the word at addr.
func (m *Machine) Load(addr uint64) uint64 {
	checkAligned(addr)
	return m.mem[addr]
}

// Store writes the word at addr.
func (m *Machine) Store(addr, val uint64) {
	checkAligned(addr)
	m.mem[addr] = val
}

// Run executes the function body with the given argument words. It
// returns the result word and whether the function produced a value.
func (m *Machine) Run(f *Func, args []uint64) (uint64, bool, error) {
	if len(args) != len(f.Params) {
		return 0, false, fmt.Errorf("run %s: got %d arguments, want %d", f.Name, len(args), len(f.Params))
	}

	values := make([]uint64, len(f.Body))
	for i := range f.Body {
		in := &f.Body[i]
		switch in.Op {
		case OpParam:
			values[i] = args[in.Arg]
		case OpConst:
			values[i] = uint64(in.Arg)
		case OpConstNull:
			values[i] = 0
		case OpAlloca:
			values[i] = m.Alloc(in.Arg)
		case OpMemZero:
			base := values[in.X]
			checkAligned(base)
			for off := int64(0); off < in.Arg; off += runtime.WordSize {
				m.mem[base+uint64(off)] = 0
			}
		case OpAddr:
			values[i] = values[in.X] + uint64(in.Arg)
		case OpLoad:
			values[i] = m.Load(values[in.X])
		case OpStore:
			m.Store(values[in.X], values[in.Y])
		case OpCallRuntime:
			if m.Support == nil {
				return 0, false, fmt.Errorf("run %s: no support handler for %v", f.Name, runtime.SupportRoutine(in.Arg))
			}
			callArgs := make([]uint64, len(in.Args))
			for j, a := range in.Args {
				callArgs[j] = values[a]
			}
			v, err := m.Support(m, runtime.SupportRoutine(in.Arg), callArgs)
			if err != nil {
				return 0, false, fmt.Errorf("run %s: %v: %w", f.Name, runtime.SupportRoutine(in.Arg), err)
			}
			values[i] = v
		case OpCallIndirect:
			fn, ok := m.Natives[values[in.X]]
			if !ok {
				return 0, false, fmt.Errorf("run %s: no native function at 0x%x", f.Name, values[in.X])
			}
			callArgs := make([]uint64, len(in.Args))
			for j, a := range in.Args {
				callArgs[j] = values[a]
			}
			v, err := fn(m, callArgs)
			if err != nil {
				return 0, false, fmt.Errorf("run %s: native call: %w", f.Name, err)
			}
			values[i] = v
		case OpRefCast:
			values[i] = values[in.X]
		case OpIsNull:
			if values[in.X] == 0 {
				values[i] = 1
			}
		case OpSelect:
			if values[in.X] != 0 {
				values[i] = values[in.Y]
			} else {
				values[i] = values[in.Z]
			}
		case OpRet:
			return values[in.X], true, nil
		case OpRetVoid:
			return 0, false, nil
		default:
			return 0, false, fmt.Errorf("run %s: unknown opcode %v at %d", f.Name, in.Op, i)
		}
	}
	return 0, false, fmt.Errorf("run %s: body ended without terminator", f.Name)
}
