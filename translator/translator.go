// Package translator turns English text into Malay by combining the
// sentence classifier, the structure automaton and a phrase dictionary.
//
// Translation is lookup first: a whole-phrase dictionary hit is returned
// as is. Otherwise the text is classified, its structure validated, and
// each token substituted independently. No reordering, inflection or
// agreement is attempted.
package translator

import (
	"strings"

	"github.com/minios-linux/malaykit/automaton"
	"github.com/minios-linux/malaykit/grammar"
)

// UnrecognizedStructure is returned by Translate when the automaton
// rejects the sentence structure.
const UnrecognizedStructure = "Cannot translate: unrecognized sentence structure"

// Dictionary maps lowercase English phrases to Malay. Implementations
// must be safe for concurrent reads.
type Dictionary interface {
	Lookup(phrase string) (string, bool)
}

// Method says which path produced a translation.
type Method string

const (
	MethodEmpty    Method = "empty"
	MethodPhrase   Method = "phrase"
	MethodWord     Method = "word"
	MethodRejected Method = "rejected"
)

// Analysis is the diagnostic record produced by Analyze.
type Analysis struct {
	Tokens    []string     `json:"tokens"`
	Structure []string     `json:"structure"`
	Type      grammar.Type `json:"type"`
	Valid     bool         `json:"valid"`
}

// Result bundles a translation with the analysis of the same input.
type Result struct {
	Input       string    `json:"input"`
	Translation string    `json:"translation"`
	Method      Method    `json:"method"`
	Analysis    *Analysis `json:"analysis,omitempty"`
}

// Translator is immutable after New and safe for concurrent use.
type Translator struct {
	dict      Dictionary
	automaton *automaton.Automaton
}

// Option configures a Translator.
type Option func(*Translator)

// WithAutomaton replaces the structure automaton.
func WithAutomaton(a *automaton.Automaton) Option {
	return func(t *Translator) {
		t.automaton = a
	}
}

// New creates a Translator backed by dict.
func New(dict Dictionary, opts ...Option) *Translator {
	t := &Translator{dict: dict, automaton: automaton.Sentence()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate translates text. Empty input yields "". A rejected structure
// yields UnrecognizedStructure.
func (t *Translator) Translate(text string) string {
	out, _ := t.translate(text)
	return out
}

func (t *Translator) translate(text string) (string, Method) {
	if text == "" {
		return "", MethodEmpty
	}

	normalized := grammar.Lower(strings.TrimSpace(text))
	if v, ok := t.dict.Lookup(normalized); ok {
		return v, MethodPhrase
	}

	tokens := strings.Fields(normalized)
	parsed := grammar.Classify(tokens)
	if !t.automaton.Validate(parsed.Structure) {
		return UnrecognizedStructure, MethodRejected
	}

	words := make([]string, len(tokens))
	for i, tok := range tokens {
		if v, ok := t.dict.Lookup(grammar.Lower(tok)); ok {
			words[i] = v
		} else {
			words[i] = tok
		}
	}
	return strings.Join(words, " "), MethodWord
}

// Analyze classifies and validates text without translating it.
// Tokens are the whitespace-separated words of text with case preserved.
// It returns nil for empty input.
func (t *Translator) Analyze(text string) *Analysis {
	if text == "" {
		return nil
	}
	tokens := strings.Fields(text)
	parsed := grammar.Classify(tokens)
	return &Analysis{
		Tokens:    tokens,
		Structure: parsed.Structure,
		Type:      parsed.Type,
		Valid:     t.automaton.Validate(parsed.Structure),
	}
}

// Trace returns the automaton run for text's structure, or nil for empty input.
func (t *Translator) Trace(text string) *automaton.Trace {
	if text == "" {
		return nil
	}
	trace := t.automaton.Run(grammar.Classify(strings.Fields(text)).Structure)
	return &trace
}

// Process translates and analyzes text in one call.
func (t *Translator) Process(text string) Result {
	out, method := t.translate(text)
	return Result{
		Input:       text,
		Translation: out,
		Method:      method,
		Analysis:    t.Analyze(text),
	}
}
