package translator

import (
	"reflect"
	"sync"
	"testing"

	"github.com/minios-linux/malaykit/automaton"
	"github.com/minios-linux/malaykit/dictionary"
	"github.com/minios-linux/malaykit/grammar"
)

func newBuiltin() *Translator {
	return New(dictionary.Builtin())
}

func TestTranslate(t *testing.T) {
	tr := newBuiltin()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whole phrase", "thank you", "terima kasih"},
		{"whole phrase normalized", "  Thank YOU  ", "terima kasih"},
		{"question phrase hit", "how are you", "apa khabar"},
		{"statement word by word", "i love you", "i cinta you"},
		{"statement uppercase input", "I LOVE You", "i cinta you"},
		{"greeting substring", "hello friend", "helo kawan"},
		{"question word by word", "where is the car", "where is the kereta"},
		{"statement no object", "we need", "we need"},
		{"statement extra spaces", "they  like \t food", "they like makanan"},
		{"unknown single word", "banana", UnrecognizedStructure},
		{"single dictionary word is phrase hit", "water", "air"},
		{"verb first", "love you", UnrecognizedStructure},
		{"whitespace only", "   ", UnrecognizedStructure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tr.Translate(tc.in); got != tc.want {
				t.Fatalf("Translate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// stubDict records lookups so tests can assert the whole-phrase shortcut.
type stubDict struct {
	mu      sync.Mutex
	pairs   map[string]string
	lookups []string
}

func (d *stubDict) Lookup(phrase string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups = append(d.lookups, phrase)
	v, ok := d.pairs[phrase]
	return v, ok
}

func TestTranslatePhraseHitSkipsTokens(t *testing.T) {
	d := &stubDict{pairs: map[string]string{"banana bread": "roti pisang"}}
	got := New(d).Translate("Banana Bread")
	if got != "roti pisang" {
		t.Fatalf("Translate = %q, want roti pisang", got)
	}
	if !reflect.DeepEqual(d.lookups, []string{"banana bread"}) {
		t.Fatalf("lookups = %q, want a single phrase lookup", d.lookups)
	}
}

func TestTranslateRejectedDoesNoTokenLookups(t *testing.T) {
	d := &stubDict{pairs: map[string]string{}}
	if got := New(d).Translate("banana split"); got != UnrecognizedStructure {
		t.Fatalf("Translate = %q", got)
	}
	if len(d.lookups) != 1 {
		t.Fatalf("lookups = %q, want only the phrase lookup", d.lookups)
	}
}

func TestAnalyze(t *testing.T) {
	tr := newBuiltin()

	if got := tr.Analyze(""); got != nil {
		t.Fatalf("Analyze(\"\") = %+v, want nil", got)
	}

	tests := []struct {
		in   string
		want Analysis
	}{
		{"I love you", Analysis{
			Tokens:    []string{"I", "love", "you"},
			Structure: []string{"subject", "verb", "object"},
			Type:      grammar.Statement,
			Valid:     true,
		}},
		{"Good Morning", Analysis{
			Tokens:    []string{"Good", "Morning"},
			Structure: []string{"greeting"},
			Type:      grammar.Greeting,
			Valid:     true,
		}},
		{"why not", Analysis{
			Tokens:    []string{"why", "not"},
			Structure: []string{"question_word", "rest"},
			Type:      grammar.Question,
			Valid:     true,
		}},
		{"banana", Analysis{
			Tokens:    []string{"banana"},
			Structure: []string{},
			Type:      grammar.Unknown,
			Valid:     false,
		}},
	}
	for _, tc := range tests {
		got := tr.Analyze(tc.in)
		if got == nil || !reflect.DeepEqual(*got, tc.want) {
			t.Fatalf("Analyze(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestAnalyzeIsIndependentOfDictionary(t *testing.T) {
	a := New(dictionary.New()).Analyze("thank you")
	b := newBuiltin().Analyze("thank you")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Analyze depends on the dictionary: %+v vs %+v", a, b)
	}
	if a.Valid {
		t.Fatal("\"thank you\" has no recognized structure")
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	tr := newBuiltin()
	for _, in := range []string{"hello there", "who", "she is happy", "xyz"} {
		first := tr.Analyze(in)
		second := tr.Analyze(in)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Analyze(%q) not idempotent: %+v vs %+v", in, first, second)
		}
	}
}

func TestProcess(t *testing.T) {
	tr := newBuiltin()

	res := tr.Process("i love you")
	if res.Translation != "i cinta you" || res.Method != MethodWord {
		t.Fatalf("Process translation = %q (%s)", res.Translation, res.Method)
	}
	if res.Analysis == nil || res.Analysis.Type != grammar.Statement {
		t.Fatalf("Process analysis = %+v", res.Analysis)
	}

	if res := tr.Process("thank you"); res.Method != MethodPhrase {
		t.Fatalf("method = %s, want phrase", res.Method)
	}
	if res := tr.Process("banana"); res.Method != MethodRejected || res.Translation != UnrecognizedStructure {
		t.Fatalf("Process(banana) = %+v", res)
	}
	if res := tr.Process(""); res.Method != MethodEmpty || res.Analysis != nil {
		t.Fatalf("Process(\"\") = %+v", res)
	}
}

func TestTrace(t *testing.T) {
	tr := newBuiltin()
	if tr.Trace("") != nil {
		t.Fatal("Trace(\"\") should be nil")
	}
	trace := tr.Trace("who is there")
	if trace == nil || !trace.Accepted || trace.Final != automaton.End || len(trace.Steps) != 2 {
		t.Fatalf("Trace = %+v", trace)
	}
}

func TestWithAutomaton(t *testing.T) {
	// An automaton that accepts nothing rejects every non-phrase input.
	never := automaton.New(automaton.Start, nil, nil)
	tr := New(dictionary.Builtin(), WithAutomaton(never))
	if got := tr.Translate("i love you"); got != UnrecognizedStructure {
		t.Fatalf("Translate = %q, want rejection", got)
	}
	if got := tr.Translate("thank you"); got != "terima kasih" {
		t.Fatalf("phrase hits bypass the automaton, got %q", got)
	}
}

func TestConcurrentTranslate(t *testing.T) {
	tr := newBuiltin()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if got := tr.Translate("i love you"); got != "i cinta you" {
					t.Errorf("Translate = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
