package environment

import "fmt"

// Action holds one encoded action per agent. Multi-discrete agents
// provide a (move, attack) pair and discrete agents a single index.
type Action [][]int

// Clone returns a deep copy of the action
func (a Action) Clone() Action {
	out := make(Action, len(a))
	for i := range a {
		out[i] = append([]int(nil), a[i]...)
	}
	return out
}

func (a Action) String() string {
	return fmt.Sprintf("%v", [][]int(a))
}
