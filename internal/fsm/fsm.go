// Package fsm implements a hierarchical finite state machine: one event is
// processed at a time against the current leaf state, bubbling up through
// parent states until a transition matches or the root is reached
// unhandled.
//
// States are addressed by a 1-based id matching their position in the
// table passed to New. A state whose DefaultSubstateID equals its own id
// is a leaf; any other state's id, when it appears as a transition target,
// resolves to a leaf by following DefaultSubstateID links before the
// action callback runs and before CurrentStateID changes.
package fsm

import "fmt"

// Transition is one (event, next state) row in a state's transition table.
// The table is scanned linearly and the first match wins.
type Transition struct {
	Event uint8
	Next  uint8
}

// ActionFunc is invoked on the resolved leaf state after a transition is
// taken. arg is passed through uninterpreted.
type ActionFunc func(event uint8, arg any)

// State is one row of the state table, addressed by its 1-based position.
type State struct {
	// DefaultSubstateID names this state's own id for a leaf, or a child
	// state id to redirect through on entry.
	DefaultSubstateID uint8
	// ParentID is 0 for the root state.
	ParentID    uint8
	Transitions []Transition
	Action      ActionFunc
}

// Machine is a table-driven hierarchical state machine. It is not safe for
// concurrent use; callers serialize access the same way they would for any
// single-threaded event loop.
type Machine struct {
	states  []State
	current uint8
}

// New validates states and constructs a Machine at startID. States are
// 1-indexed: states[0] is state id 1. New rejects a table where any state
// fails to resolve to a leaf within len(states) hops, guarding against the
// cyclic default-substate chains the underlying model leaves undefined.
func New(states []State, startID uint8) (*Machine, error) {
	if startID == 0 || int(startID) > len(states) {
		return nil, fmt.Errorf("fsm: start state %d out of range", startID)
	}
	for id := uint8(1); int(id) <= len(states); id++ {
		if _, err := resolveLeaf(states, id); err != nil {
			return nil, err
		}
	}
	resolved, err := resolveLeaf(states, startID)
	if err != nil {
		return nil, err
	}
	return &Machine{states: states, current: resolved}, nil
}

func resolveLeaf(states []State, stateID uint8) (uint8, error) {
	seen := make(map[uint8]bool, len(states))
	id := stateID
	for {
		if seen[id] {
			return 0, fmt.Errorf("fsm: cyclic default substate chain at state %d", stateID)
		}
		seen[id] = true
		st := states[id-1]
		if st.DefaultSubstateID == id {
			return id, nil
		}
		id = st.DefaultSubstateID
	}
}

// ProcessEvent dispatches event starting at the current leaf state,
// bubbling through parents until a transition matches. On a match, the
// target state is resolved to a leaf, CurrentStateID is updated, the
// resolved leaf's Action is invoked with (event, arg), and ProcessEvent
// returns true. If no ancestor has a matching transition, ProcessEvent
// returns false and CurrentStateID is unchanged.
func (m *Machine) ProcessEvent(event uint8, arg any) bool {
	stateID := m.current
	for stateID != 0 {
		st := m.states[stateID-1]
		for _, tr := range st.Transitions {
			if tr.Event != event {
				continue
			}
			leaf, err := resolveLeaf(m.states, tr.Next)
			if err != nil {
				return false
			}
			m.current = leaf
			if action := m.states[leaf-1].Action; action != nil {
				action(event, arg)
			}
			return true
		}
		stateID = st.ParentID
	}
	return false
}

// ResetTo sets the current state unconditionally, with no resolution and
// no action callback. Callers use this only at initialization or after
// fatal recovery.
func (m *Machine) ResetTo(stateID uint8) {
	m.current = stateID
}

// CurrentStateID returns the machine's current state id.
func (m *Machine) CurrentStateID() uint8 {
	return m.current
}
