//go:build !offlingo_native

package infer

import "errors"

// NewDefaultRuntime returns the process-wide inference runtime. This build
// carries no native backend; link one in with the offlingo_native build
// tag. The engine itself is backend-agnostic and is exercised against mock
// runtimes in tests.
func NewDefaultRuntime() (Runtime, error) {
	return nil, errors.New("no native inference backend in this build (rebuild with -tags offlingo_native)")
}
