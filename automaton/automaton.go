// Package automaton validates sentence structure tag sequences with a
// deterministic finite automaton.
//
// An Automaton is an immutable transition table. Runs never store state on
// the Automaton: Step is a pure function of (state, tag), and Run threads
// the current state through a local variable, so one Automaton may be used
// from any number of goroutines.
package automaton

import "sort"

// State names an automaton state.
type State string

// States of the sentence structure automaton.
const (
	Start    State = "start"
	Greeting State = "greeting"
	Subject  State = "subject"
	Verb     State = "verb"
	Object   State = "object"
	Question State = "question"
	End      State = "end"
)

// FallbackTag is tried when a state has no transition for the input tag.
const FallbackTag = "end"

// Transition is one entry of the transition table.
type Transition struct {
	From State  `json:"from"`
	Tag  string `json:"tag"`
	To   State  `json:"to"`
}

// Automaton is a DFA over structure tags.
type Automaton struct {
	start       State
	states      []State
	accepting   map[State]bool
	transitions []Transition
	table       map[State]map[string]State
}

// New builds an automaton. States are collected from start, the accepting
// set and the transitions, in first-seen order.
func New(start State, accepting []State, transitions []Transition) *Automaton {
	a := &Automaton{
		start:       start,
		accepting:   make(map[State]bool, len(accepting)),
		transitions: append([]Transition(nil), transitions...),
		table:       make(map[State]map[string]State),
	}

	seen := make(map[State]bool)
	addState := func(s State) {
		if !seen[s] {
			seen[s] = true
			a.states = append(a.states, s)
		}
	}

	addState(start)
	for _, t := range transitions {
		addState(t.From)
		addState(t.To)
		if a.table[t.From] == nil {
			a.table[t.From] = make(map[string]State)
		}
		a.table[t.From][t.Tag] = t.To
	}
	for _, s := range accepting {
		addState(s)
		a.accepting[s] = true
	}
	return a
}

var sentence = New(
	Start,
	[]State{End, Greeting, Object, Verb},
	[]Transition{
		{From: Start, Tag: "greeting", To: Greeting},
		{From: Start, Tag: "subject", To: Subject},
		{From: Start, Tag: "question_word", To: Question},
		{From: Greeting, Tag: "end", To: End},
		{From: Subject, Tag: "verb", To: Verb},
		{From: Verb, Tag: "object", To: Object},
		{From: Verb, Tag: "end", To: End},
		{From: Object, Tag: "end", To: End},
		{From: Question, Tag: "rest", To: End},
	},
)

// Sentence returns the fixed sentence structure automaton.
func Sentence() *Automaton {
	return sentence
}

// Validate runs tags through the sentence automaton and reports acceptance.
func Validate(tags []string) bool {
	return sentence.Validate(tags)
}

// ---------------------------------------------------------------------------
// Table accessors
// ---------------------------------------------------------------------------

// StartState returns the start state.
func (a *Automaton) StartState() State {
	return a.start
}

// States returns all states in first-seen order.
func (a *Automaton) States() []State {
	return append([]State(nil), a.states...)
}

// Accepting returns the accepting states in the order of States.
func (a *Automaton) Accepting() []State {
	var out []State
	for _, s := range a.states {
		if a.accepting[s] {
			out = append(out, s)
		}
	}
	return out
}

// IsAccepting reports whether s is an accepting state.
func (a *Automaton) IsAccepting(s State) bool {
	return a.accepting[s]
}

// Transitions returns the transition table in declaration order.
func (a *Automaton) Transitions() []Transition {
	return append([]Transition(nil), a.transitions...)
}

// Alphabet returns the sorted set of tags that appear in the table.
func (a *Automaton) Alphabet() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range a.transitions {
		if !seen[t.Tag] {
			seen[t.Tag] = true
			tags = append(tags, t.Tag)
		}
	}
	sort.Strings(tags)
	return tags
}
