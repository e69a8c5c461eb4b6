package types

import (
	"bufio"
	"encoding/json"
	"os"
	"strconv"
)

// VisitGraph is the transition graph induced by sampled trajectories. Nodes
// are keyed by the formatted state, edges by the action id.
type VisitGraph struct {
	Nodes map[string]*Node
}

func NewVisitGraph() *VisitGraph {
	return &VisitGraph{
		Nodes: make(map[string]*Node),
	}
}

// Update records the transition from -> to under action and reports whether
// from was seen for the first time
func (v *VisitGraph) Update(from []int64, action int64, to []int64) bool {
	fromKey := formatRow(from)
	toKey := formatRow(to)
	new := false
	if _, ok := v.Nodes[fromKey]; !ok {
		v.Nodes[fromKey] = NewNode(from)
		new = true
	}
	if _, ok := v.Nodes[toKey]; !ok {
		v.Nodes[toKey] = NewNode(to)
	}
	a := strconv.FormatInt(action, 10)
	v.Nodes[fromKey].Visits += 1
	v.Nodes[fromKey].AddNext(a, toKey)
	v.Nodes[toKey].AddPrev(a, fromKey)
	return new
}

// AddTrajectories records every transition of the batch as a forward edge.
// Backward action a undoes forward action a, so a backward step s -a-> s'
// is recorded as s' -a-> s. Padding actions are skipped.
func (v *VisitGraph) AddTrajectories(t *Trajectories) {
	n := t.nTrajectories
	for i := 0; i < n; i++ {
		for step := 0; step < int(t.whenIsDone.data[i]); step++ {
			from, to := t.states.row(step*n+i), t.states.row((step+1)*n+i)
			if t.isBackward {
				from, to = to, from
			}
			v.Update(from, t.actions.data[step*n+i], to)
		}
	}
}

func (v *VisitGraph) GetVisits() map[string]int {
	results := make(map[string]int)
	for k, n := range v.Nodes {
		results[k] = n.Visits
	}
	return results
}

// Record writes the graph as json to filePath
func (v *VisitGraph) Record(filePath string) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	if _, err := writer.Write(bs); err != nil {
		return err
	}
	return writer.Flush()
}

type Node struct {
	Key    string
	State  []int64
	Visits int
	// Next, Prev: action id to the set of neighbouring keys
	Next map[string]map[string]bool
	Prev map[string]map[string]bool
}

func NewNode(s []int64) *Node {
	state := make([]int64, len(s))
	copy(state, s)
	return &Node{
		Key:    formatRow(s),
		State:  state,
		Visits: 0,
		Next:   make(map[string]map[string]bool),
		Prev:   make(map[string]map[string]bool),
	}
}

func (n *Node) AddPrev(a, prev string) {
	if _, ok := n.Prev[a]; !ok {
		n.Prev[a] = make(map[string]bool)
	}
	n.Prev[a][prev] = true
}

func (n *Node) AddNext(a, next string) {
	if _, ok := n.Next[a]; !ok {
		n.Next[a] = make(map[string]bool)
	}
	n.Next[a][next] = true
}
