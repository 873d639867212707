// Package types defines the logical column type tree used throughout the
// Vortex execution engine. A Type is an immutable value: scalar types carry
// only an ID, LIST types carry exactly one element type and STRUCT types
// carry an ordered list of named fields.
package types

import (
	"fmt"
	"strings"
)

// ID identifies a logical type.
type ID uint8

// Logical type identifiers.
const (
	INVALID ID = iota
	BOOLEAN
	TINYINT
	SMALLINT
	INTEGER
	BIGINT
	UTINYINT
	USMALLINT
	UINTEGER
	UBIGINT
	FLOAT
	DOUBLE
	VARCHAR
	LIST
	STRUCT
)

// Field is a single named member of a STRUCT type.
type Field struct {
	Name string
	Type Type
}

// Type describes the logical type of one column. The zero value is INVALID.
type Type struct {
	id     ID
	child  *Type   // LIST element type
	fields []Field // STRUCT members, in declaration order
}

// Scalar constructors.

// Boolean returns the BOOLEAN type.
func Boolean() Type { return Type{id: BOOLEAN} }

// TinyInt returns the TINYINT type.
func TinyInt() Type { return Type{id: TINYINT} }

// SmallInt returns the SMALLINT type.
func SmallInt() Type { return Type{id: SMALLINT} }

// Integer returns the INTEGER type.
func Integer() Type { return Type{id: INTEGER} }

// BigInt returns the BIGINT type.
func BigInt() Type { return Type{id: BIGINT} }

// UTinyInt returns the UTINYINT type.
func UTinyInt() Type { return Type{id: UTINYINT} }

// USmallInt returns the USMALLINT type.
func USmallInt() Type { return Type{id: USMALLINT} }

// UInteger returns the UINTEGER type.
func UInteger() Type { return Type{id: UINTEGER} }

// UBigInt returns the UBIGINT type.
func UBigInt() Type { return Type{id: UBIGINT} }

// Float returns the FLOAT type.
func Float() Type { return Type{id: FLOAT} }

// Double returns the DOUBLE type.
func Double() Type { return Type{id: DOUBLE} }

// Varchar returns the VARCHAR type.
func Varchar() Type { return Type{id: VARCHAR} }

// List returns a LIST type with the given element type.
func List(elem Type) Type {
	return Type{id: LIST, child: &elem}
}

// Struct returns a STRUCT type with the given fields, in order.
func Struct(fields ...Field) Type {
	return Type{id: STRUCT, fields: fields}
}

// ID returns the logical type identifier.
func (t Type) ID() ID { return t.id }

// IsNested reports whether the type has child columns (LIST or STRUCT).
func (t Type) IsNested() bool { return t.id == LIST || t.id == STRUCT }

// ListChild returns the element type of a LIST. Calling it on any other
// type is a programming error.
func (t Type) ListChild() Type {
	if t.id != LIST || t.child == nil {
		panic("types: ListChild called on non-LIST type")
	}
	return *t.child
}

// StructFields returns the fields of a STRUCT. Calling it on any other
// type is a programming error.
func (t Type) StructFields() []Field {
	if t.id != STRUCT {
		panic("types: StructFields called on non-STRUCT type")
	}
	return t.fields
}

// Size returns the fixed byte width of one value of this type as laid out
// in chunk storage. VARCHAR values are fixed-width 16-byte descriptors and
// LIST values are fixed-width 16-byte entry descriptors; STRUCT columns
// store no values of their own, only a validity mask.
func (t Type) Size() int {
	switch t.id {
	case BOOLEAN, TINYINT, UTINYINT:
		return 1
	case SMALLINT, USMALLINT:
		return 2
	case INTEGER, UINTEGER, FLOAT:
		return 4
	case BIGINT, UBIGINT, DOUBLE:
		return 8
	case VARCHAR, LIST:
		return 16
	case STRUCT:
		return 0
	default:
		panic(fmt.Sprintf("types: no physical size for type %s", t))
	}
}

// Equal reports whether two types are structurally identical, including
// nested child types and struct field names.
func (t Type) Equal(other Type) bool {
	if t.id != other.id {
		return false
	}
	switch t.id {
	case LIST:
		return t.child.Equal(*other.child)
	case STRUCT:
		if len(t.fields) != len(other.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != other.fields[i].Name {
				return false
			}
			if !t.fields[i].Type.Equal(other.fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Describe renders a type list as a bracketed, comma-separated string for
// error details and logs.
func Describe(typs []Type) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, t := range typs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Equals reports whether two type lists are element-wise Equal.
func Equals(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.id {
	case BOOLEAN:
		return "BOOLEAN"
	case TINYINT:
		return "TINYINT"
	case SMALLINT:
		return "SMALLINT"
	case INTEGER:
		return "INTEGER"
	case BIGINT:
		return "BIGINT"
	case UTINYINT:
		return "UTINYINT"
	case USMALLINT:
		return "USMALLINT"
	case UINTEGER:
		return "UINTEGER"
	case UBIGINT:
		return "UBIGINT"
	case FLOAT:
		return "FLOAT"
	case DOUBLE:
		return "DOUBLE"
	case VARCHAR:
		return "VARCHAR"
	case LIST:
		return fmt.Sprintf("LIST(%s)", t.child)
	case STRUCT:
		var sb strings.Builder
		sb.WriteString("STRUCT(")
		for i, f := range t.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteByte(' ')
			sb.WriteString(f.Type.String())
		}
		sb.WriteByte(')')
		return sb.String()
	default:
		return "INVALID"
	}
}
