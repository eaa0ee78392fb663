package dex

import "fmt"

// TypeKind classifies one position of a method signature.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindBoolean
	KindByte
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindRef
)

// IsReference reports whether the kind is an object reference.
func (k TypeKind) IsReference() bool {
	return k == KindRef
}

// IsPrimitive reports whether the kind is a non-void primitive.
func (k TypeKind) IsPrimitive() bool {
	return k != KindVoid && k != KindRef
}

func (k TypeKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindRef:
		return "ref"
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// Signature is the semantic type sequence of a method: the return kind
// followed by each declared argument kind in order. The receiver of an
// instance method is not part of the signature.
type Signature struct {
	Ret  TypeKind
	Args []TypeKind
}

// NumRefArgs returns the number of reference-typed declared arguments.
func (s Signature) NumRefArgs() int {
	n := 0
	for _, k := range s.Args {
		if k.IsReference() {
			n++
		}
	}
	return n
}

// kindOf maps one shorty character to its TypeKind.
func kindOf(c byte) (TypeKind, error) {
	switch c {
	case 'V':
		return KindVoid, nil
	case 'Z':
		return KindBoolean, nil
	case 'B':
		return KindByte, nil
	case 'C':
		return KindChar, nil
	case 'S':
		return KindShort, nil
	case 'I':
		return KindInt, nil
	case 'J':
		return KindLong, nil
	case 'F':
		return KindFloat, nil
	case 'D':
		return KindDouble, nil
	case 'L':
		return KindRef, nil
	}
	return KindVoid, fmt.Errorf("invalid shorty character %q", c)
}

// ParseShorty decodes a compact return/argument type string. The first
// character is the return type, the rest are the declared arguments.
func ParseShorty(shorty string) (Signature, error) {
	if len(shorty) == 0 {
		return Signature{}, fmt.Errorf("empty shorty")
	}
	ret, err := kindOf(shorty[0])
	if err != nil {
		return Signature{}, fmt.Errorf("shorty %q return type: %w", shorty, err)
	}
	args := make([]TypeKind, 0, len(shorty)-1)
	for i := 1; i < len(shorty); i++ {
		k, err := kindOf(shorty[i])
		if err != nil {
			return Signature{}, fmt.Errorf("shorty %q argument %d: %w", shorty, i-1, err)
		}
		if k == KindVoid {
			return Signature{}, fmt.Errorf("shorty %q argument %d: void is not a value type", shorty, i-1)
		}
		args = append(args, k)
	}
	return Signature{Ret: ret, Args: args}, nil
}
