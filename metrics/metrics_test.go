package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/malaykit/dictionary"
	"github.com/minios-linux/malaykit/translator"
)

func TestObserveTranslation(t *testing.T) {
	m := New()
	tr := translator.New(dictionary.Builtin())

	m.ObserveTranslation(tr.Process("i love you"))
	m.ObserveTranslation(tr.Process("i need food"))
	m.ObserveTranslation(tr.Process("banana"))
	m.ObserveTranslation(tr.Process(""))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.translations.WithLabelValues("statement", "word")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.translations.WithLabelValues("unknown", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.translations.WithLabelValues("unknown", "empty")))
}

func TestGaugesAndCounters(t *testing.T) {
	m := New()
	m.SetDictionarySize(20)
	m.ObserveSpeech(SpeechOK)
	m.ObserveSpeech(SpeechNoSpeech)
	m.ObserveSpeech(SpeechNoSpeech)
	m.HistoryWriteFailed()

	assert.Equal(t, 20.0, testutil.ToFloat64(m.dictionaryLength))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.speechRequests.WithLabelValues(SpeechOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.speechRequests.WithLabelValues(SpeechNoSpeech)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.historyErrors))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetDictionarySize(3)
	m.ObserveRequest("/api/translate", "POST", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "malaykit_dictionary_entries 3")
	assert.Contains(t, string(body), `malaykit_http_request_duration_seconds_count{code="200",method="POST",route="/api/translate"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.HistoryWriteFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.historyErrors))
}
