package automaton

// Move says how a single step consumed its tag.
type Move int

const (
	// Matched: the state had a transition for the tag.
	Matched Move = iota
	// Fallback: no transition for the tag; the FallbackTag transition was taken.
	Fallback
	// Stayed: neither transition exists; the state is unchanged.
	Stayed
)

// String returns the move name.
func (m Move) String() string {
	switch m {
	case Matched:
		return "matched"
	case Fallback:
		return "fallback"
	default:
		return "stayed"
	}
}

// MarshalText encodes the move by name.
func (m Move) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Step is one recorded transition of a run.
type Step struct {
	From State  `json:"from"`
	Tag  string `json:"tag"`
	To   State  `json:"to"`
	Move Move   `json:"move"`
}

// Trace is the full record of one run.
type Trace struct {
	Steps    []Step `json:"steps"`
	Final    State  `json:"final"`
	Accepted bool   `json:"accepted"`
}

// Step computes the successor of state on tag. Unknown tags fall back to
// the FallbackTag transition; when that is missing too the state is kept.
// Never fails.
func (a *Automaton) Step(state State, tag string) (State, Move) {
	row := a.table[state]
	if next, ok := row[tag]; ok {
		return next, Matched
	}
	if next, ok := row[FallbackTag]; ok {
		return next, Fallback
	}
	return state, Stayed
}

// Run feeds tags from the start state and records every step.
func (a *Automaton) Run(tags []string) Trace {
	state := a.start
	steps := make([]Step, 0, len(tags))
	for _, tag := range tags {
		next, move := a.Step(state, tag)
		steps = append(steps, Step{From: state, Tag: tag, To: next, Move: move})
		state = next
	}
	return Trace{Steps: steps, Final: state, Accepted: a.accepting[state]}
}

// Validate reports whether tags drive the automaton from its start state
// into an accepting state.
func (a *Automaton) Validate(tags []string) bool {
	state := a.start
	for _, tag := range tags {
		state, _ = a.Step(state, tag)
	}
	return a.accepting[state]
}
