package state

// stateless object, just used for state computing
type StateMachine struct {
	States []State `json:"states"`
}

type State struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func NewStateMachine(states ...State) *StateMachine {
	return &StateMachine{States: states}
}

func (sm *StateMachine) FindState(name string) (State, bool) {
	for _, s := range sm.States {
		if s.Name == name {
			return s, true
		}
	}
	return State{}, false
}

// CanTransit reports whether from may move to to. The lifecycle only
// walks forward, one state at a time.
func (sm *StateMachine) CanTransit(from, to string) bool {
	f, found := sm.FindState(from)
	if !found {
		return false
	}
	t, found := sm.FindState(to)
	if !found {
		return false
	}
	return t.Order == f.Order+1
}

func (sm *StateMachine) NextState(from string) (State, bool) {
	f, found := sm.FindState(from)
	if !found {
		return State{}, false
	}
	for _, s := range sm.States {
		if s.Order == f.Order+1 {
			return s, true
		}
	}
	return State{}, false
}
