package testutil

import (
	"fmt"
	"sync"

	"github.com/offlingo/offlingo/internal/infer"
)

// MockTensor is a plain in-memory tensor implementing infer.Tensor.
type MockTensor struct {
	shape    []int64
	floats   []float32
	ints     []int64
	released bool
}

func (t *MockTensor) Shape() []int64 { return t.shape }

func (t *MockTensor) DataType() infer.DataType {
	if t.ints != nil {
		return infer.Int64
	}
	return infer.Float32
}

func (t *MockTensor) Floats() []float32 { return t.floats }
func (t *MockTensor) Ints() []int64     { return t.ints }

// MockSession mocks one loaded network. Tests script its behavior through
// RunFunc and inspect the captured inputs afterwards.
type MockSession struct {
	RunFunc func(inputs map[string]infer.Tensor) (map[string]infer.Tensor, error)

	Calls    int
	Captured []map[string]infer.Tensor
	Closed   bool
}

func (s *MockSession) Run(inputs map[string]infer.Tensor) (map[string]infer.Tensor, error) {
	s.Calls++
	captured := make(map[string]infer.Tensor, len(inputs))
	for name, t := range inputs {
		captured[name] = t
	}
	s.Captured = append(s.Captured, captured)
	if s.RunFunc == nil {
		return map[string]infer.Tensor{}, nil
	}
	return s.RunFunc(inputs)
}

func (s *MockSession) Close() error {
	s.Closed = true
	return nil
}

// MockRuntime mocks the inference runtime and audits tensor lifetimes:
// every created tensor is tracked until released, and releasing a tensor
// twice is recorded as a failure.
type MockRuntime struct {
	mu sync.Mutex

	sessions map[string]*MockSession
	OpenErrs map[string]error

	live           map[*MockTensor]bool
	Created        int
	Released       int
	DoubleReleases int
}

// NewMockRuntime returns an empty runtime; sessions are registered with
// Session(path).
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		sessions: make(map[string]*MockSession),
		OpenErrs: make(map[string]error),
		live:     make(map[*MockTensor]bool),
	}
}

// Session returns (creating if needed) the mock session registered for a
// model path.
func (m *MockRuntime) Session(path string) *MockSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[path]
	if !ok {
		s = &MockSession{}
		m.sessions[path] = s
	}
	return s
}

func (m *MockRuntime) OpenSession(path string) (infer.Session, error) {
	if err := m.OpenErrs[path]; err != nil {
		return nil, err
	}
	return m.Session(path), nil
}

func (m *MockRuntime) NewTensor(data []float32, shape []int64) (infer.Tensor, error) {
	return m.track(&MockTensor{shape: shape, floats: data}), nil
}

func (m *MockRuntime) NewIntTensor(data []int64, shape []int64) (infer.Tensor, error) {
	return m.track(&MockTensor{shape: shape, ints: data}), nil
}

func (m *MockRuntime) ReleaseTensor(t infer.Tensor) {
	mt, ok := t.(*MockTensor)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt.released {
		m.DoubleReleases++
		return
	}
	mt.released = true
	delete(m.live, mt)
	m.Released++
}

func (m *MockRuntime) track(t *MockTensor) *MockTensor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.live[t] = true
	m.Created++
	return t
}

// LiveTensors reports how many tensors are currently unreleased.
func (m *MockRuntime) LiveTensors() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Emit creates a runtime-tracked float tensor, for use inside scripted
// RunFuncs: session outputs must be released by the engine like real
// runtime allocations.
func (m *MockRuntime) Emit(data []float32, shape []int64) infer.Tensor {
	return m.track(&MockTensor{shape: shape, floats: data})
}

type testingT interface {
	Helper()
	Errorf(format string, args ...any)
}

// CheckBalance fails the test when tensors leaked or were released twice.
func (m *MockRuntime) CheckBalance(t testingT) {
	t.Helper()
	if n := m.LiveTensors(); n != 0 {
		t.Errorf("tensor leak: %d of %d created tensors still live", n, m.Created)
	}
	if m.DoubleReleases != 0 {
		t.Errorf("%d tensors released twice", m.DoubleReleases)
	}
}

// String aids debugging of failed balance checks.
func (m *MockRuntime) String() string {
	return fmt.Sprintf("MockRuntime{created: %d, released: %d, live: %d}", m.Created, m.Released, m.LiveTensors())
}
