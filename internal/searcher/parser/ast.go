package parser

// Node is a boolean query expression. The concrete types are *Term, *And,
// *Or and *AndNot; each node owns its children.
type Node interface {
	String() string
	node()
}

// Term matches the documents containing Value.
type Term struct {
	Value string
}

// And matches documents matched by both sides.
type And struct {
	Left, Right Node
}

// Or matches documents matched by either side.
type Or struct {
	Left, Right Node
}

// AndNot matches documents matched by Left but not by Right.
type AndNot struct {
	Left, Right Node
}

func (*Term) node()   {}
func (*And) node()    {}
func (*Or) node()     {}
func (*AndNot) node() {}

func (t *Term) String() string   { return t.Value }
func (n *And) String() string    { return "(" + n.Left.String() + " && " + n.Right.String() + ")" }
func (n *Or) String() string     { return "(" + n.Left.String() + " || " + n.Right.String() + ")" }
func (n *AndNot) String() string { return "(" + n.Left.String() + " &! " + n.Right.String() + ")" }

// Terms returns the distinct term literals of n in order of first
// appearance, left to right.
func Terms(n Node) []string {
	seen := make(map[string]struct{})
	var out []string
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Term:
			if _, ok := seen[n.Value]; !ok {
				seen[n.Value] = struct{}{}
				out = append(out, n.Value)
			}
		case *And:
			walk(n.Left)
			walk(n.Right)
		case *Or:
			walk(n.Left)
			walk(n.Right)
		case *AndNot:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(n)
	return out
}
