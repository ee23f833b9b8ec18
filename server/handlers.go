package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/minios-linux/malaykit/automaton"
	"github.com/minios-linux/malaykit/dictionary"
	"github.com/minios-linux/malaykit/grammar"
	"github.com/minios-linux/malaykit/history"
	"github.com/minios-linux/malaykit/metrics"
	"github.com/minios-linux/malaykit/speech"
	"github.com/minios-linux/malaykit/translator"
)

// ---- JSON response types ------------------------------------------------

type textRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type listenResponse struct {
	Transcript string            `json:"transcript"`
	Result     translator.Result `json:"result"`
}

type dictionaryResponse struct {
	Count   int                `json:"count"`
	Entries []dictionary.Entry `json:"entries"`
}

type ruleJSON struct {
	LHS          string     `json:"lhs"`
	Alternatives [][]string `json:"alternatives"`
	Text         string     `json:"text"`
}

type categoryJSON struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

type grammarResponse struct {
	Rules      []ruleJSON     `json:"rules"`
	Categories []categoryJSON `json:"categories"`
}

type automatonResponse struct {
	Start       automaton.State        `json:"start"`
	States      []automaton.State      `json:"states"`
	Accepting   []automaton.State      `json:"accepting"`
	Alphabet    []string               `json:"alphabet"`
	Transitions []automaton.Transition `json:"transitions"`
}

type historyResponse struct {
	Records []history.Record `json:"records"`
}

// ---- helpers ------------------------------------------------------------

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.cfg.Logger.Errorw("encode error", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		s.writeError(w, http.StatusMethodNotAllowed, method+" required")
		return false
	}
	return true
}

func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body textRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "body must be JSON with a 'text' field")
		return "", false
	}
	return body.Text, true
}

// record stores res in history. Failures are logged and counted, never
// returned to the client.
func (s *Server) record(ctx context.Context, res translator.Result, source string) {
	if s.cfg.History == nil {
		return
	}
	if _, err := s.cfg.History.Add(ctx, res, source); err != nil {
		s.cfg.Metrics.HistoryWriteFailed()
		s.cfg.Logger.Warnw("history write failed", "error", err)
	}
}

// ---- handlers -----------------------------------------------------------

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	res := s.cfg.Translator.Process(text)
	s.cfg.Metrics.ObserveTranslation(res)
	s.record(r.Context(), res, history.SourceHTTP)
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}

	a := s.cfg.Translator.Analyze(text)
	if a == nil {
		s.writeError(w, http.StatusNotFound, "nothing to analyze")
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleListen(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	if s.cfg.Speech == nil {
		s.writeError(w, http.StatusServiceUnavailable, "speech recognition is not configured")
		return
	}

	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("audio too large (limit %d bytes)", maxAudioBytes))
		return
	}

	transcript, err := s.cfg.Speech.Transcribe(r.Context(), audio)
	switch {
	case errors.Is(err, speech.ErrNoSpeech):
		s.cfg.Metrics.ObserveSpeech(metrics.SpeechNoSpeech)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.cfg.Metrics.ObserveSpeech(metrics.SpeechError)
		s.cfg.Logger.Warnw("transcription failed", "error", err)
		s.writeError(w, http.StatusBadGateway, speech.ErrRequest.Error())
		return
	}
	s.cfg.Metrics.ObserveSpeech(metrics.SpeechOK)

	res := s.cfg.Translator.Process(transcript)
	s.cfg.Metrics.ObserveTranslation(res)
	s.record(r.Context(), res, history.SourceSpeech)
	s.writeJSON(w, http.StatusOK, listenResponse{Transcript: transcript, Result: res})
}

func (s *Server) handleDictionary(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	entries := []dictionary.Entry{}
	if s.cfg.Dictionary != nil {
		entries = s.cfg.Dictionary.Entries()
	}
	s.writeJSON(w, http.StatusOK, dictionaryResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	phrase := r.URL.Query().Get("phrase")
	if phrase == "" {
		s.writeError(w, http.StatusBadRequest, "missing 'phrase' query parameter")
		return
	}
	if s.cfg.Dictionary != nil {
		if e, ok := s.cfg.Dictionary.Entry(phrase); ok {
			s.writeJSON(w, http.StatusOK, e)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, fmt.Sprintf("phrase %q not found", phrase))
}

func (s *Server) handleGrammar(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	var resp grammarResponse
	for _, rule := range grammar.Rules() {
		resp.Rules = append(resp.Rules, ruleJSON{LHS: rule.LHS, Alternatives: rule.Alternatives, Text: rule.String()})
	}
	for _, cat := range grammar.Categories() {
		resp.Categories = append(resp.Categories, categoryJSON{Name: cat, Words: grammar.Words(cat)})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAutomaton(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	a := s.cfg.Automaton

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		s.writeJSON(w, http.StatusOK, automatonResponse{
			Start:       a.StartState(),
			States:      a.States(),
			Accepting:   a.Accepting(),
			Alphabet:    a.Alphabet(),
			Transitions: a.Transitions(),
		})
	case automaton.FormatDot, automaton.FormatMermaid:
		out, err := a.Diagram(format)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if format == automaton.FormatDot {
			w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		io.WriteString(w, out)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q (valid: json, dot, mermaid)", format))
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.cfg.History == nil {
		s.writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "'limit' must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.cfg.History.List(r.Context(), limit)
	if err != nil {
		s.cfg.Logger.Errorw("history list failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not read history")
		return
	}
	s.writeJSON(w, http.StatusOK, historyResponse{Records: records})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
