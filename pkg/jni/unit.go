package jni

import (
	"fmt"

	"github.com/Project-NexOS/art/pkg/ir"
	"github.com/Project-NexOS/art/pkg/runtime"
)

// InstructionSet identifies the target architecture of a compilation unit.
type InstructionSet int

const (
	ISANone InstructionSet = iota
	ISAArm
	ISAThumb2
	ISAX86
	ISAMips
)

func (s InstructionSet) String() string {
	switch s {
	case ISANone:
		return "none"
	case ISAArm:
		return "arm"
	case ISAThumb2:
		return "thumb2"
	case ISAX86:
		return "x86"
	case ISAMips:
		return "mips"
	}
	return fmt.Sprintf("InstructionSet(%d)", int(s))
}

// CompilationUnit is the per-unit context a stub compiler works inside:
// the module receiving generated functions, the target instruction set,
// the unit's ELF placement index, and the runtime field layout.
type CompilationUnit struct {
	InstructionSet InstructionSet
	ElfIndex       int
	Module         *ir.Module
	Offsets        runtime.Offsets
}

// NewCompilationUnit creates a compilation unit targeting the given
// instruction set and ELF index.
func NewCompilationUnit(isa InstructionSet, elfIndex int, module *ir.Module, offs runtime.Offsets) *CompilationUnit {
	return &CompilationUnit{
		InstructionSet: isa,
		ElfIndex:       elfIndex,
		Module:         module,
		Offsets:        offs,
	}
}

// CompiledStub is the artifact of lowering one native method: the target
// instruction set, the unit's ELF placement index, and the verified
// function body. Immutable once returned.
type CompiledStub struct {
	InstructionSet InstructionSet
	ElfIndex       int
	Func           *ir.Func
}
