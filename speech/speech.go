// Package speech turns recorded audio into English text by calling an
// external speech-to-text service. malaykit does no recognition itself.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	// ErrNoSpeech means the service answered but recognized nothing.
	ErrNoSpeech = errors.New("could not understand audio")
	// ErrRequest means the service could not be reached or refused the request.
	ErrRequest = errors.New("could not request results")
)

// Transcriber converts audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Options configures a Client.
type Options struct {
	// Endpoint is the speech:recognize URL.
	Endpoint string
	// APIKey is sent as the "key" query parameter when set.
	APIKey string
	// Language is a BCP-47 code such as "en-US".
	Language string
	// SampleRate is used for raw PCM input; WAV input carries its own.
	SampleRate int
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries on 429, 5xx and network errors.
	MaxRetries int
	// Backoff is the base retry delay, doubled per attempt. Default: 1s.
	Backoff time.Duration
}

// Client calls a Google Speech-to-Text compatible REST endpoint.
type Client struct {
	opts Options
	http *http.Client
	log  *zap.SugaredLogger
}

// NewClient creates a Client.
func NewClient(opts Options, log *zap.SugaredLogger) *Client {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	return &Client{
		opts: opts,
		http: &http.Client{Transport: transport, Timeout: opts.Timeout},
		log:  log,
	}
}

type recognizeRequest struct {
	Config recognitionConfig `json:"config"`
	Audio  recognitionAudio  `json:"audio"`
}

type recognitionConfig struct {
	Encoding          string `json:"encoding"`
	SampleRateHertz   int    `json:"sampleRateHertz"`
	LanguageCode      string `json:"languageCode"`
	AudioChannelCount int    `json:"audioChannelCount,omitempty"`
}

type recognitionAudio struct {
	// Content is base64 encoded by the JSON encoder.
	Content []byte `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (c *Client) buildRequest(audio []byte) ([]byte, error) {
	req := recognizeRequest{
		Config: recognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: c.opts.SampleRate,
			LanguageCode:    c.opts.Language,
		},
		Audio: recognitionAudio{Content: audio},
	}

	wav, err := ParseWAV(audio)
	switch {
	case err == nil:
		req.Config.SampleRateHertz = wav.SampleRate
		req.Config.AudioChannelCount = wav.Channels
		req.Audio.Content = wav.Data
	case errors.Is(err, ErrNotWAV):
		// Raw PCM at the configured rate.
	default:
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return json.Marshal(req)
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", ErrRequest, c.opts.Endpoint, err)
	}
	if c.opts.APIKey != "" {
		q := u.Query()
		q.Set("key", c.opts.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// backoff returns the wait before retry number attempt (0-based). A
// Retry-After header in seconds takes precedence.
func (c *Client) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * c.opts.Backoff
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Transcribe sends audio (16-bit PCM WAV, or raw 16-bit PCM at the
// configured sample rate) and returns the recognized text.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}
	body, err := c.buildRequest(audio)
	if err != nil {
		return "", err
	}
	endpoint, err := c.endpoint()
	if err != nil {
		return "", err
	}

	maxRetries := c.opts.MaxRetries
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("%w: creating request: %v", ErrRequest, err)
		}
		req.Header.Set("Content-Type", "application/json")

		c.log.Debugw("speech request", "attempt", attempt+1, "bytes", len(body))

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt < maxRetries {
				wait := c.backoff(attempt, nil)
				c.log.Warnw("speech request failed, retrying", "error", err, "wait", wait)
				if err := sleep(ctx, wait); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("%w: %v", ErrRequest, err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			if attempt < maxRetries {
				wait := c.backoff(attempt, resp)
				c.log.Warnw("speech service unavailable, retrying",
					"status", resp.StatusCode, "attempt", attempt+1, "wait", wait)
				if err := sleep(ctx, wait); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("%w: status %d after %d retries", ErrRequest, resp.StatusCode, maxRetries)
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, truncate(string(respBody), 200))
		}

		return parseTranscript(respBody)
	}

	return "", fmt.Errorf("%w: exhausted %d retries", ErrRequest, maxRetries)
}

// parseTranscript joins the best alternative of every result.
func parseTranscript(body []byte) (string, error) {
	var resp recognizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrRequest, err)
	}

	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.Alternatives[0].Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
