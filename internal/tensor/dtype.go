package tensor

import "fmt"

// DType is the compile-time constraint for tensor element types.
//
// The engine carries the two types a quantization pipeline needs:
// float32 for values and gradients, int32 for code indices.
type DType interface {
	~float32 | ~int32
}

// DataType is the runtime type tag of a tensor.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Int32
)

// Size returns the element size in bytes.
func (d DataType) Size() int {
	switch d {
	case Float32, Int32:
		return 4
	default:
		panic(fmt.Sprintf("unknown data type %d", int(d)))
	}
}

// String returns a human-readable type name.
func (d DataType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// inferDataType maps a Go value to its runtime DataType tag.
func inferDataType(v any) DataType {
	switch v.(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	default:
		panic(fmt.Sprintf("unsupported element type %T", v))
	}
}
