package graph

import "fmt"

// Node is a vertex on a resolution path.
type Node interface {
	comparable
	fmt.Stringer
}

// Path tracks the nodes currently being resolved, depth first. A node that
// is pushed while already on the path closes a cycle.
//
// Path is not safe for concurrent use; each resolution owns its own path.
type Path[N Node] struct {
	nodes []N
	index map[N]int
}

// NewPath creates an empty path.
func NewPath[N Node]() *Path[N] {
	return &Path[N]{index: make(map[N]int)}
}

// Push appends n to the path. It returns a CircularDependencyError when n
// is already on the path; the path is left unchanged in that case.
func (p *Path[N]) Push(n N) error {
	if start, ok := p.index[n]; ok {
		cycle := make([]string, 0, len(p.nodes)-start)
		for _, node := range p.nodes[start:] {
			cycle = append(cycle, node.String())
		}

		return CircularDependencyError{Node: n.String(), Path: cycle}
	}

	p.index[n] = len(p.nodes)
	p.nodes = append(p.nodes, n)
	return nil
}

// Pop removes the most recently pushed node.
func (p *Path[N]) Pop() {
	if len(p.nodes) == 0 {
		return
	}

	last := p.nodes[len(p.nodes)-1]
	delete(p.index, last)
	p.nodes = p.nodes[:len(p.nodes)-1]
}

// Depth returns the number of nodes on the path.
func (p *Path[N]) Depth() int {
	return len(p.nodes)
}

// Nodes returns a copy of the path, outermost first.
func (p *Path[N]) Nodes() []N {
	out := make([]N, len(p.nodes))
	copy(out, p.nodes)
	return out
}
