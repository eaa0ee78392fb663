// Package ir is a small typed intermediate representation for generated
// stub bodies. A function body is an ordered list of value-producing
// instruction records; operands refer to earlier instructions by index.
// The representation is pure data: it can be built, verified and
// inspected without being executed.
package ir

import "fmt"

// Type is the result type of an instruction.
type Type int

const (
	Void Type = iota
	I1
	I8
	I16
	I32
	I64
	F32
	F64
	Ref // managed object reference
	Ptr // raw address
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case I1:
		return "i1"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Ref:
		return "ref"
	case Ptr:
		return "ptr"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Op is an instruction opcode.
type Op int

const (
	OpParam        Op = iota // Arg: parameter index; result: parameter value
	OpConst                  // Arg: immediate; result: constant of Type
	OpConstNull              // result: null reference
	OpAlloca                 // Arg: size in bytes; result: address of fresh stack storage
	OpMemZero                // X: address, Arg: size in bytes
	OpAddr                   // X: base address or reference, Arg: byte displacement; result: address
	OpLoad                   // X: address; result: loaded value of Type
	OpStore                  // X: address, Y: value
	OpCallRuntime            // Arg: runtime support routine, Args: arguments
	OpCallIndirect           // X: callee address, Args: arguments
	OpRefCast                // X: address; result: the address reinterpreted as a reference
	OpIsNull                 // X: reference; result: i1
	OpSelect                 // X: i1 condition, Y: value if true, Z: value if false
	OpRet                    // X: return value
	OpRetVoid
)

func (o Op) String() string {
	switch o {
	case OpParam:
		return "param"
	case OpConst:
		return "const"
	case OpConstNull:
		return "null"
	case OpAlloca:
		return "alloca"
	case OpMemZero:
		return "memzero"
	case OpAddr:
		return "addr"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpCallRuntime:
		return "call.rt"
	case OpCallIndirect:
		return "call.ind"
	case OpRefCast:
		return "refcast"
	case OpIsNull:
		return "isnull"
	case OpSelect:
		return "select"
	case OpRet:
		return "ret"
	case OpRetVoid:
		return "ret.void"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ValueID refers to the result of an instruction by its position in the
// function body.
type ValueID int

// NoValue marks an unused operand.
const NoValue ValueID = -1

// Instr is one instruction record.
type Instr struct {
	Op   Op
	Type Type  // result type, Void for instructions that produce no value
	Arg  int64 // op-specific immediate
	X    ValueID
	Y    ValueID
	Z    ValueID
	Args []ValueID // call arguments
	Name string    // diagnostic name, set on parameters
}

// IsTerminator reports whether the instruction ends a function body.
func (in *Instr) IsTerminator() bool {
	return in.Op == OpRet || in.Op == OpRetVoid
}

// Param describes one function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a generated function: a typed signature and a flat body.
type Func struct {
	Name   string
	Params []Param
	Ret    Type
	Body   []Instr
}

// Module is a set of generated functions.
type Module struct {
	Name  string
	funcs []*Func
	index map[string]*Func
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name, index: make(map[string]*Func)}
}

// NewFunc creates a function with the given signature and registers it in
// the module. The name must be unique within the module.
func (m *Module) NewFunc(name string, params []Param, ret Type) (*Func, error) {
	if _, ok := m.index[name]; ok {
		return nil, fmt.Errorf("module %s: function %s already defined", m.Name, name)
	}
	f := &Func{Name: name, Params: params, Ret: ret}
	m.funcs = append(m.funcs, f)
	m.index[name] = f
	return f, nil
}

// Func returns the registered function with the given name, or nil.
func (m *Module) Func(name string) *Func {
	return m.index[name]
}

// NumFuncs returns the number of functions registered in the module.
func (m *Module) NumFuncs() int {
	return len(m.funcs)
}
