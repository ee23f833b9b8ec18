package grammar

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		wantType  Type
		wantStruc []string
	}{
		{"hello", []string{"hello"}, Greeting, []string{TagGreeting}},
		{"mixed case greeting", []string{"Good", "MORNING", "friend"}, Greeting, []string{TagGreeting}},
		{"greeting inside word", []string{"othello"}, Greeting, []string{TagGreeting}},
		{"greeting spans tokens", []string{"well", "good", "evening"}, Greeting, []string{TagGreeting}},
		{"greeting beats question", []string{"why", "hello"}, Greeting, []string{TagGreeting}},
		{"question", []string{"where", "is", "the", "car"}, Question, []string{TagQuestionWord, TagRest}},
		{"question word alone", []string{"How"}, Question, []string{TagQuestionWord, TagRest}},
		{"question beats statement", []string{"who", "are"}, Question, []string{TagQuestionWord, TagRest}},
		{"statement", []string{"i", "love", "you"}, Statement, []string{TagSubject, TagVerb, TagObject}},
		{"statement without object", []string{"They", "See"}, Statement, []string{TagSubject, TagVerb, TagObject}},
		{"verb first", []string{"love", "you"}, Unknown, []string{}},
		{"noun then verb", []string{"water", "is", "good"}, Unknown, []string{}},
		{"single word", []string{"banana"}, Unknown, []string{}},
		{"empty", nil, Unknown, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.tokens)
			if got.Type != tc.wantType {
				t.Fatalf("Classify(%q).Type = %v, want %v", tc.tokens, got.Type, tc.wantType)
			}
			if !reflect.DeepEqual(got.Structure, tc.wantStruc) {
				t.Fatalf("Classify(%q).Structure = %q, want %q", tc.tokens, got.Structure, tc.wantStruc)
			}
		})
	}
}

func TestClassifyAllQuestionWords(t *testing.T) {
	for _, w := range []string{"what", "who", "where", "when", "how", "why"} {
		got := Classify([]string{strings.ToUpper(w), "x"})
		if got.Type != Question {
			t.Fatalf("Classify(%q) type = %v, want question", w, got.Type)
		}
	}
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	tokens := []string{"I", "Love", "You"}
	Classify(tokens)
	if !reflect.DeepEqual(tokens, []string{"I", "Love", "You"}) {
		t.Fatalf("Classify mutated its input: %q", tokens)
	}
}

func TestTypeNames(t *testing.T) {
	for _, typ := range []Type{Unknown, Greeting, Question, Statement} {
		if got := ParseType(typ.String()); got != typ {
			t.Fatalf("ParseType(%q) = %v, want %v", typ.String(), got, typ)
		}
	}
	if got := Type(42).String(); got != "unknown" {
		t.Fatalf("Type(42).String() = %q, want unknown", got)
	}

	b, err := Statement.MarshalText()
	if err != nil || string(b) != "statement" {
		t.Fatalf("MarshalText() = %q, %v", b, err)
	}
}

func TestRulesAreReferenceData(t *testing.T) {
	rs := Rules()
	if len(rs) != 3 {
		t.Fatalf("len(Rules()) = %d, want 3", len(rs))
	}
	if got := rs[2].String(); got != "VP → V | V NP | V ADJ" {
		t.Fatalf("VP rule = %q", got)
	}

	// Callers get copies.
	rs[0].Alternatives[0][0] = "X"
	if Rules()[0].Alternatives[0][0] != NounPhrase {
		t.Fatal("Rules() returned shared backing storage")
	}
}

func TestCategories(t *testing.T) {
	if got := Categories(); !reflect.DeepEqual(got, []string{"DET", "N", "PRO", "V", "ADJ"}) {
		t.Fatalf("Categories() = %q", got)
	}
	if got := Words(Pronoun); !reflect.DeepEqual(got, []string{"he", "i", "it", "she", "they", "we", "you"}) {
		t.Fatalf("Words(PRO) = %q", got)
	}
	if Words("NOPE") != nil {
		t.Fatal("Words(unknown) should be nil")
	}
	if !InCategory(Verb, "LOVE") || !InCategory(Noun, "love") {
		t.Fatal("love should be both a verb and a noun")
	}
	if InCategory(Adjective, "water") {
		t.Fatal("water is not an adjective")
	}
}
