package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/malaykit/logger"
)

const okResponse = `{"results":[{"alternatives":[{"transcript":"i love you","confidence":0.93}]},{"alternatives":[{"transcript":" thank you "}]}]}`

func newClient(url string, retries int) *Client {
	return NewClient(Options{
		Endpoint:   url,
		APIKey:     "secret",
		Language:   "en-US",
		SampleRate: 16000,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	}, logger.Nop())
}

func TestTranscribeSendsWAVConfig(t *testing.T) {
	samples := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	var got recognizeRequest
	var key string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("key")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	text, err := newClient(srv.URL, 0).Transcribe(context.Background(), EncodeWAV(samples, 8000, 1))
	require.NoError(t, err)
	assert.Equal(t, "i love you thank you", text)

	assert.Equal(t, "secret", key)
	assert.Equal(t, "LINEAR16", got.Config.Encoding)
	assert.Equal(t, 8000, got.Config.SampleRateHertz, "WAV header rate wins over configured rate")
	assert.Equal(t, 1, got.Config.AudioChannelCount)
	assert.Equal(t, "en-US", got.Config.LanguageCode)
	assert.Equal(t, samples, got.Audio.Content)
}

func TestTranscribeRawPCMUsesConfiguredRate(t *testing.T) {
	var got recognizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL, 0).Transcribe(context.Background(), []byte{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 16000, got.Config.SampleRateHertz)
	assert.Equal(t, []byte{0, 0, 1, 1}, got.Audio.Content)
}

func TestTranscribeRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			io.WriteString(w, okResponse)
		}
	}))
	defer srv.Close()

	text, err := newClient(srv.URL, 3).Transcribe(context.Background(), []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "i love you thank you", text)
	assert.EqualValues(t, 3, calls.Load())
}

func TestTranscribeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		retries int
		want    error
		calls   int32
	}{
		{"bad request not retried", http.StatusBadRequest, `{"error":{"message":"bad"}}`, 3, ErrRequest, 1},
		{"server errors exhaust retries", http.StatusInternalServerError, "", 2, ErrRequest, 3},
		{"no results", http.StatusOK, `{}`, 0, ErrNoSpeech, 1},
		{"empty transcript", http.StatusOK, `{"results":[{"alternatives":[{"transcript":"  "}]}]}`, 0, ErrNoSpeech, 1},
		{"garbage body", http.StatusOK, `not json`, 0, ErrRequest, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL, tc.retries).Transcribe(context.Background(), []byte{1, 2})
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.calls, calls.Load())
		})
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	_, err := newClient("http://127.0.0.1:0", 0).Transcribe(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscribeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url, 1).Transcribe(context.Background(), []byte{1, 2})
	assert.ErrorIs(t, err, ErrRequest)
}

func TestTranscribeCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newClient(srv.URL, 5).Transcribe(ctx, []byte{1, 2})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestParseWAV(t *testing.T) {
	samples := []byte{9, 0, 8, 0}
	w, err := ParseWAV(EncodeWAV(samples, 44100, 2))
	require.NoError(t, err)
	assert.Equal(t, 44100, w.SampleRate)
	assert.Equal(t, 2, w.Channels)
	assert.Equal(t, 16, w.BitsPerSample)
	assert.Equal(t, samples, w.Data)

	_, err = ParseWAV([]byte("hello world, not audio"))
	assert.ErrorIs(t, err, ErrNotWAV)

	noData := EncodeWAV(nil, 16000, 1)[:36]
	_, err = ParseWAV(noData)
	assert.ErrorContains(t, err, "missing data chunk")
}

func TestTranscriberInterface(t *testing.T) {
	var _ Transcriber = (*Client)(nil)
}
