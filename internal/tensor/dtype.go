// Package tensor provides the core dense-array types for the featgrad library.
package tensor

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types. Descriptor values and gradients are Float64,
// label tables are Int32; the other types exist for host-engine interop.
const (
	Float64 DataType = iota
	Float32
	Int32
	Int64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}
