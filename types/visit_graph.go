package types

// VisitGraph counts the transitions taken across episodes
type VisitGraph struct {
	Nodes map[State]*Node
}

func NewVisitGraph() *VisitGraph {
	return &VisitGraph{
		Nodes: make(map[State]*Node),
	}
}

// Update records the transition and returns true the first time
// the (from, action) pair is taken
func (v *VisitGraph) Update(from State, action State, to State) bool {
	if _, ok := v.Nodes[from]; !ok {
		v.Nodes[from] = NewNode(from)
	}
	if _, ok := v.Nodes[to]; !ok {
		v.Nodes[to] = NewNode(to)
	}
	v.Nodes[from].Visits += 1
	new := v.Nodes[from].AddNext(action)
	v.Nodes[to].AddPrev(from)
	return new
}

func (v *VisitGraph) GetVisits() map[State]int {
	results := make(map[State]int)
	for k, n := range v.Nodes {
		results[k] = n.Visits
	}
	return results
}

// Pairs is the number of distinct (state, action) pairs taken
func (v *VisitGraph) Pairs() int {
	pairs := 0
	for _, n := range v.Nodes {
		pairs += len(n.Next)
	}
	return pairs
}

type Node struct {
	State  State
	Visits int
	// actions taken from the node and how many times
	Next map[State]int
	// states the node was reached from
	Prev map[State]int
}

func NewNode(s State) *Node {
	return &Node{
		State:  s,
		Visits: 0,
		Next:   make(map[State]int),
		Prev:   make(map[State]int),
	}
}

func (n *Node) AddPrev(prev State) {
	n.Prev[prev] += 1
}

func (n *Node) AddNext(action State) bool {
	_, seen := n.Next[action]
	n.Next[action] += 1
	return !seen
}
