package automaton

import (
	"fmt"

	"github.com/looplab/fsm"
)

// Diagram formats supported by Diagram.
const (
	FormatDot     = "dot"
	FormatMermaid = "mermaid"
)

// machine converts the table into a looplab FSM positioned at the start
// state. Transitions sharing a tag and target collapse into one event with
// several sources.
func (a *Automaton) machine() *fsm.FSM {
	type key struct {
		tag string
		to  State
	}
	var order []key
	sources := make(map[key][]string)
	for _, t := range a.transitions {
		k := key{tag: t.Tag, to: t.To}
		if _, ok := sources[k]; !ok {
			order = append(order, k)
		}
		sources[k] = append(sources[k], string(t.From))
	}

	events := make(fsm.Events, 0, len(order))
	for _, k := range order {
		events = append(events, fsm.EventDesc{Name: k.tag, Src: sources[k], Dst: string(k.to)})
	}
	return fsm.NewFSM(string(a.start), events, fsm.Callbacks{})
}

// Diagram renders the automaton as Graphviz (FormatDot) or a Mermaid state
// diagram (FormatMermaid).
func (a *Automaton) Diagram(format string) (string, error) {
	var vt fsm.VisualizeType
	switch format {
	case FormatDot, "":
		vt = fsm.GRAPHVIZ
	case FormatMermaid:
		vt = fsm.MermaidStateDiagram
	default:
		return "", fmt.Errorf("unknown diagram format %q (valid: %s, %s)", format, FormatDot, FormatMermaid)
	}
	out, err := fsm.VisualizeWithType(a.machine(), vt)
	if err != nil {
		return "", fmt.Errorf("rendering %s diagram: %w", format, err)
	}
	return out, nil
}
