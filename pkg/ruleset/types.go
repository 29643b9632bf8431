package ruleset

import "strings"

// ValueType is the declared type of a column's values.
type ValueType int

// Value types accepted by `has value type`.
const (
	TypeUnknown ValueType = iota
	TypeInteger
	TypeFloat
	TypeScientific
	TypeComplex
	TypeBoolean
	TypeDateTime
	TypeString
)

var valueTypeNames = map[ValueType]string{
	TypeInteger:    "integer",
	TypeFloat:      "floating point",
	TypeScientific: "scientific",
	TypeComplex:    "complex",
	TypeBoolean:    "boolean",
	TypeDateTime:   "date-time",
	TypeString:     "string",
}

// String returns the type name as written in rules files.
func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsNumeric reports whether values of this type are compared as numbers.
func (t ValueType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeScientific, TypeComplex:
		return true
	default:
		return false
	}
}

// IsOrdered reports whether values of this type support < and >.
func (t ValueType) IsOrdered() bool {
	return t == TypeInteger || t == TypeFloat || t == TypeScientific
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseValueType resolves a type name. Whitespace between words is
// collapsed, so "floating   point" is accepted. A few common aliases are
// recognized.
func ParseValueType(name string) (ValueType, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	switch key {
	case "integer", "int":
		return TypeInteger, true
	case "floating point", "float", "decimal":
		return TypeFloat, true
	case "scientific":
		return TypeScientific, true
	case "complex":
		return TypeComplex, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "date-time", "datetime", "date":
		return TypeDateTime, true
	case "string", "text":
		return TypeString, true
	default:
		return TypeUnknown, false
	}
}

// ValueTypes returns all concrete value types in declaration order.
func ValueTypes() []ValueType {
	return []ValueType{
		TypeInteger, TypeFloat, TypeScientific, TypeComplex,
		TypeBoolean, TypeDateTime, TypeString,
	}
}
