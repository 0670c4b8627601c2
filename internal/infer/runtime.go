package infer

// DataType enumerates the tensor element types the runtime contract
// carries.
type DataType int

const (
	Float32 DataType = iota
	Int64
)

// Tensor is an opaque handle to runtime-owned memory. Every tensor
// obtained from the Runtime or returned by Session.Run must be released
// exactly once through Runtime.ReleaseTensor; the engine owns that
// bookkeeping for the duration of a call.
type Tensor interface {
	Shape() []int64
	DataType() DataType
	// Floats returns the element data of a Float32 tensor, nil otherwise.
	Floats() []float32
	// Ints returns the element data of an Int64 tensor, nil otherwise.
	Ints() []int64
}

// Session is one loaded network.
type Session interface {
	Run(inputs map[string]Tensor) (map[string]Tensor, error)
	Close() error
}

// Runtime is the minimum contract this engine requires from the native
// tensor-inference backend. The backend's implementation is outside this
// module; tests drive the engine through a mock.
type Runtime interface {
	OpenSession(modelPath string) (Session, error)
	NewTensor(data []float32, shape []int64) (Tensor, error)
	NewIntTensor(data []int64, shape []int64) (Tensor, error)
	ReleaseTensor(t Tensor)
}
