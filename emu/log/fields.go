package log

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeStringer
)

// ZField is a typed log field. Integer holds the bits of every integer
// type, Width is the number of hex digits of FieldTypeHex.
type ZField struct {
	Type  FieldType
	Key   string
	Width uint8

	String    string
	Integer   uint64
	Error     error
	Interface fmt.Stringer
	Boolean   bool
}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeHex:
		s := strconv.FormatUint(f.Integer, 16)
		if pad := int(f.Width) - len(s); pad > 0 {
			s = strings.Repeat("0", pad) + s
		}
		return s
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeStringer:
		if f.Interface == nil {
			return "<nil>"
		}
		return f.Interface.String()
	}
	return ""
}
