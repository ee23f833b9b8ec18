package grammar

import "strings"

// Type is the coarse sentence type assigned by Classify.
type Type int

const (
	Unknown Type = iota
	Greeting
	Question
	Statement
)

var typeNames = [...]string{
	Unknown:   "unknown",
	Greeting:  "greeting",
	Question:  "question",
	Statement: "statement",
}

// String returns the lowercase type name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[Unknown]
	}
	return typeNames[t]
}

// MarshalText encodes the type by name so JSON and YAML output read
// "greeting" rather than 1.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name; unrecognized names become Unknown.
func (t *Type) UnmarshalText(b []byte) error {
	*t = ParseType(string(b))
	return nil
}

// ParseType maps a type name back to its Type. Unrecognized names map to Unknown.
func ParseType(name string) Type {
	for i, n := range typeNames {
		if n == name {
			return Type(i)
		}
	}
	return Unknown
}

// Structure tags emitted by Classify. They are the input alphabet of the
// automaton package.
const (
	TagGreeting     = "greeting"
	TagQuestionWord = "question_word"
	TagRest         = "rest"
	TagSubject      = "subject"
	TagVerb         = "verb"
	TagObject       = "object"
)

// Result is the outcome of classifying one token sequence.
type Result struct {
	Type      Type
	Structure []string
}

var greetingPhrases = []string{"hello", "good morning", "good afternoon", "good evening"}

var questionWords = map[string]struct{}{
	"what": {}, "who": {}, "where": {}, "when": {}, "how": {}, "why": {},
}

// Classify assigns a sentence type and structure tags to tokens.
//
// Guards are tried in order and the first match wins:
//
//  1. greeting: the joined, lowercased tokens contain a greeting phrase
//  2. question: the first token is a question word
//  3. statement: pronoun followed by a verb; always tagged
//     subject/verb/object, whether or not an object token follows
//  4. otherwise unknown with an empty structure
func Classify(tokens []string) Result {
	joined := Lower(strings.Join(tokens, " "))
	for _, phrase := range greetingPhrases {
		if strings.Contains(joined, phrase) {
			return Result{Type: Greeting, Structure: []string{TagGreeting}}
		}
	}

	if len(tokens) > 0 {
		if _, ok := questionWords[Lower(tokens[0])]; ok {
			return Result{Type: Question, Structure: []string{TagQuestionWord, TagRest}}
		}
	}

	if len(tokens) >= 2 && InCategory(Pronoun, tokens[0]) && InCategory(Verb, tokens[1]) {
		return Result{Type: Statement, Structure: []string{TagSubject, TagVerb, TagObject}}
	}

	return Result{Type: Unknown, Structure: []string{}}
}
