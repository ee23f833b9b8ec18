// Package grammar implements the sentence classifier used by malaykit.
//
// The package carries a small context-free grammar for simple English
// sentences (rule table plus terminal word categories). Classification is
// not a derivation over that grammar: Classify applies an ordered chain of
// pattern guards and the first guard that matches decides the result. The
// rule table is kept as reference data and is exposed for display via
// Rules; only the terminal categories take part in classification.
package grammar

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ---------------------------------------------------------------------------
// Symbols
// ---------------------------------------------------------------------------

// Non-terminal symbols of the reference grammar.
const (
	Sentence   = "S"
	NounPhrase = "NP"
	VerbPhrase = "VP"
)

// Terminal categories (parts of speech).
const (
	Determiner = "DET"
	Noun       = "N"
	Pronoun    = "PRO"
	Verb       = "V"
	Adjective  = "ADJ"
)

// Rule is a single production: LHS → one of Alternatives.
type Rule struct {
	LHS          string
	Alternatives [][]string
}

// String renders the rule in "S → NP VP | ..." form.
func (r Rule) String() string {
	alts := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		alts[i] = strings.Join(a, " ")
	}
	return r.LHS + " → " + strings.Join(alts, " | ")
}

// rules is the production table, in declaration order.
var rules = []Rule{
	{LHS: Sentence, Alternatives: [][]string{{NounPhrase, VerbPhrase}}},
	{LHS: NounPhrase, Alternatives: [][]string{{Determiner, Noun}, {Pronoun}}},
	{LHS: VerbPhrase, Alternatives: [][]string{{Verb}, {Verb, NounPhrase}, {Verb, Adjective}}},
}

// categoryOrder fixes the display order of terminal categories.
var categoryOrder = []string{Determiner, Noun, Pronoun, Verb, Adjective}

// terminals maps each category to its member words (lowercase).
var terminals = map[string]map[string]struct{}{
	Determiner: wordSet("the", "a", "my", "your", "this", "that"),
	Noun:       wordSet("water", "food", "friend", "car", "house", "book", "money", "love", "help"),
	Pronoun:    wordSet("i", "you", "he", "she", "it", "we", "they"),
	Verb:       wordSet("is", "am", "are", "want", "need", "like", "love", "have", "see"),
	Adjective:  wordSet("good", "bad", "happy", "sad", "big", "small"),
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Rules returns a copy of the production table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		alts := make([][]string, len(r.Alternatives))
		for j, a := range r.Alternatives {
			alts[j] = append([]string(nil), a...)
		}
		out[i] = Rule{LHS: r.LHS, Alternatives: alts}
	}
	return out
}

// Categories returns the terminal category names in display order.
func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

// Words returns the sorted member words of a terminal category,
// or nil for an unknown category.
func Words(category string) []string {
	set, ok := terminals[category]
	if !ok {
		return nil
	}
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// InCategory reports whether word (compared in lowercase) belongs to category.
func InCategory(category, word string) bool {
	set, ok := terminals[category]
	if !ok {
		return false
	}
	_, ok = set[Lower(word)]
	return ok
}

// Lower lowercases s with Unicode case mapping. A new Caser is built on
// every call because cases.Caser is not safe for concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
