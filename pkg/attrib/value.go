package attrib

// Value is the closed set of scalar types an attribute can store.
type Value interface {
	int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// Index is the integral type used by index buffers and element references.
type Index = uint32

// InvalidIndex marks an unset or out-of-range element reference.
const InvalidIndex = ^Index(0)

// ValueKind identifies an attribute's scalar type at runtime.
type ValueKind uint8

const (
	KindInt8 ValueKind = iota
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

// String returns the kind name.
func (k ValueKind) String() string {
	names := []string{
		"int8", "int16", "int32", "int64",
		"uint8", "uint16", "uint32", "uint64",
		"float32", "float64",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// Size returns the scalar width in bytes.
func (k ValueKind) Size() int {
	switch k {
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsIntegral returns true for the integer kinds.
func (k ValueKind) IsIntegral() bool {
	switch k {
	case KindFloat32, KindFloat64:
		return false
	default:
		return true
	}
}

// KindOf returns the runtime kind of the value type V.
func KindOf[V Value]() ValueKind {
	var zero V
	switch any(zero).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	panic("attrib: unreachable value type")
}
