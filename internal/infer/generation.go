package infer

// generation owns a set of named tensors that share one lifetime: the
// tensors created or adopted during one phase of a call. Releasing the
// generation releases every tensor exactly once, which keeps the per-step
// cache swap leak-free on every exit path, including errors.
type generation struct {
	rt      Runtime
	tensors map[string]Tensor
}

func newGeneration(rt Runtime) *generation {
	return &generation{rt: rt, tensors: make(map[string]Tensor)}
}

// add adopts a tensor under the given name. The generation becomes
// responsible for releasing it.
func (g *generation) add(name string, t Tensor) {
	g.tensors[name] = t
}

func (g *generation) len() int {
	return len(g.tensors)
}

// copyInto adds the generation's tensors to a Run input map without
// transferring ownership.
func (g *generation) copyInto(inputs map[string]Tensor) {
	for name, t := range g.tensors {
		inputs[name] = t
	}
}

// release frees every owned tensor. Safe to call more than once.
func (g *generation) release() {
	for name, t := range g.tensors {
		g.rt.ReleaseTensor(t)
		delete(g.tensors, name)
	}
}
