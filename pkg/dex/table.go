package dex

import "fmt"

// Access flags
const (
	AccPublic = 0x0001
	AccStatic = 0x0008
	AccFinal  = 0x0010
	AccNative = 0x0100
)

// Method identifies one method in a descriptor table.
type Method struct {
	Index       uint32
	AccessFlags uint32
	Class       string // declaring class, slash-separated (e.g. "com/example/Native")
	Name        string
	Shorty      string
}

// IsStatic reports whether the method carries the static access flag.
func (m *Method) IsStatic() bool {
	return m.AccessFlags&AccStatic != 0
}

// IsNative reports whether the method carries the native access flag.
func (m *Method) IsNative() bool {
	return m.AccessFlags&AccNative != 0
}

// FullName returns "class.name" for diagnostics.
func (m *Method) FullName() string {
	return m.Class + "." + m.Name
}

// UnresolvedMethodError reports a method index the table cannot resolve.
type UnresolvedMethodError struct {
	Index uint32
}

func (e *UnresolvedMethodError) Error() string {
	return fmt.Sprintf("method index %d not resolved", e.Index)
}

// Table is a method descriptor store indexed by stable method index.
type Table struct {
	methods []*Method
}

// NewTable builds a table over the given methods, assigning each its index.
func NewTable(methods []Method) *Table {
	t := &Table{methods: make([]*Method, len(methods))}
	for i := range methods {
		m := methods[i]
		m.Index = uint32(i)
		t.methods[i] = &m
	}
	return t
}

// NumMethods returns the number of methods in the table.
func (t *Table) NumMethods() int {
	return len(t.methods)
}

// ResolveMethod returns the method at the given index, or an
// UnresolvedMethodError if the index is out of range.
func (t *Table) ResolveMethod(idx uint32) (*Method, error) {
	if int(idx) >= len(t.methods) || t.methods[idx] == nil {
		return nil, &UnresolvedMethodError{Index: idx}
	}
	return t.methods[idx], nil
}

// Shorty returns the compact type string of the method at the given index.
func (t *Table) Shorty(idx uint32) (string, error) {
	m, err := t.ResolveMethod(idx)
	if err != nil {
		return "", err
	}
	return m.Shorty, nil
}

// Signature resolves and parses the shorty of the method at the given index.
func (t *Table) Signature(idx uint32) (Signature, error) {
	m, err := t.ResolveMethod(idx)
	if err != nil {
		return Signature{}, err
	}
	sig, err := ParseShorty(m.Shorty)
	if err != nil {
		return Signature{}, fmt.Errorf("method %s: %w", m.FullName(), err)
	}
	return sig, nil
}
