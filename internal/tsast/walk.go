package tsast

// Inspect traverses n depth-first in source order, calling fn for n and each
// of its descendants. Children are skipped when fn returns false.
func Inspect(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.children() {
		Inspect(c, fn)
	}
}

// InspectAll calls Inspect on every node of list.
func InspectAll(list []*Node, fn func(*Node) bool) {
	for _, n := range list {
		Inspect(n, fn)
	}
}

func (n *Node) children() []*Node {
	var out []*Node
	add := func(ns ...*Node) {
		for _, c := range ns {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	add(n.Params...)
	add(n.Decls...)
	add(n.Init, n.Cond, n.Then, n.Else, n.X, n.Index, n.Y)
	add(n.Args...)
	add(n.Props...)
	add(n.Members...)
	add(n.Body...)
	return out
}
