package googlecloud_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"equalmedia/internal/captions"
	"equalmedia/internal/config"
	"equalmedia/internal/services"
	"equalmedia/internal/services/googlecloud"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, key string) (*googlecloud.Client, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store := config.NewStore(config.APIConfig{GoogleCloudAPIKey: key})
	client := googlecloud.NewClient(googlecloud.Config{
		SpeechBaseURL: server.URL,
		TTSBaseURL:    server.URL + "/",
	}, store, googlecloud.WithHTTPClient(server.Client()))
	return client, &calls
}

func TestDetectEncoding(t *testing.T) {
	tests := map[string]string{
		"audio/webm;codecs=opus": "WEBM_OPUS",
		"video/mp4":              "MP4",
		"audio/wav":              "LINEAR16",
		"audio/x-wav":            "LINEAR16",
		"AUDIO/FLAC":             "FLAC",
		"audio/ogg":              "LINEAR16",
		"":                       "LINEAR16",
	}
	for mime, want := range tests {
		if got := googlecloud.DetectEncoding(mime); got != want {
			t.Errorf("DetectEncoding(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestTranscribeBuildsRequestAndCaptions(t *testing.T) {
	audio := []byte("RIFF....WAVE")
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/speech:recognize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("unexpected key %q", got)
		}
		var body map[string]map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		cfg := body["config"]
		if cfg["encoding"] != "LINEAR16" || cfg["sampleRateHertz"] != float64(44100) || cfg["languageCode"] != "en-US" {
			t.Errorf("unexpected config %v", cfg)
		}
		if cfg["enableWordTimeOffsets"] != true || cfg["enableAutomaticPunctuation"] != true {
			t.Errorf("expected word offsets and punctuation enabled: %v", cfg)
		}
		if body["audio"]["content"] != base64.StdEncoding.EncodeToString(audio) {
			t.Errorf("unexpected audio content %v", body["audio"])
		}
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"Hello world!","words":[
			{"startTime":"0s","endTime":"0.400s","word":"Hello"},
			{"startTime":"0.400s","endTime":"0.900s","word":"world"},
			{"startTime":"0.900s","endTime":"1s","word":"!"}]}]},
			{"alternatives":[{"transcript":"no timing"}],"resultEndTime":"9s"}]}`))
	}, "secret")

	caps, err := client.Transcribe(context.Background(), googlecloud.Audio{Data: audio, MIMEType: "audio/wav"}, "")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	want := []captions.Caption{
		{Text: "Hello world !", StartTime: 0, EndTime: 1},
		{Text: "no timing", StartTime: 4, EndTime: 9},
	}
	if len(caps) != len(want) {
		t.Fatalf("unexpected captions %+v", caps)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("caption %d = %+v, want %+v", i, caps[i], want[i])
		}
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected one request, got %d", *calls)
	}
}

func TestTranscribeEmptyResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, "k")
	caps, err := client.Transcribe(context.Background(), googlecloud.Audio{Data: []byte{1}}, "fr-FR")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(caps) != 0 {
		t.Fatalf("expected no captions, got %+v", caps)
	}
}

func TestMissingAPIKeyFailsBeforeNetwork(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "")

	_, err := client.Transcribe(context.Background(), googlecloud.Audio{Data: []byte{1}}, "en-US")
	if !errors.Is(err, googlecloud.ErrMissingAPIKey) || !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Google Cloud API key is not configured") {
		t.Fatalf("unexpected message %q", err)
	}
	if _, err := client.Synthesize(context.Background(), "Hi", "en-US", ""); !errors.Is(err, googlecloud.ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatalf("expected no requests, got %d", *calls)
	}

	nilCreds := googlecloud.NewClient(googlecloud.Config{}, nil)
	if _, err := nilCreds.Synthesize(context.Background(), "Hi", "", ""); !errors.Is(err, googlecloud.ErrMissingAPIKey) {
		t.Fatalf("expected missing key error for nil credentials, got %v", err)
	}
}

func TestKeySetAfterConstructionIsUsed(t *testing.T) {
	var seen atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	store := config.NewStore(config.APIConfig{})
	client := googlecloud.NewClient(googlecloud.Config{SpeechBaseURL: server.URL}, store)
	store.Set(config.APIConfig{GoogleCloudAPIKey: "late"}.Update())

	if _, err := client.Transcribe(context.Background(), googlecloud.Audio{}, ""); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if seen.Load() != "late" {
		t.Fatalf("expected late key, got %v", seen.Load())
	}
}

func TestAPIErrorUsesServerMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid.","status":"PERMISSION_DENIED"}}`))
	}, "bad")

	_, err := client.Transcribe(context.Background(), googlecloud.Audio{Data: []byte{1}}, "")
	if err == nil || err.Error() != "Speech-to-Text API error: API key not valid." {
		t.Fatalf("unexpected error %v", err)
	}
	apiErr, ok := googlecloud.AsAPIError(err)
	if !ok || apiErr.StatusCode != http.StatusForbidden || apiErr.Status != "PERMISSION_DENIED" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !errors.Is(err, services.ErrExternalAPI) {
		t.Fatal("expected external API classification")
	}
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}, "k")

	_, err := client.Synthesize(context.Background(), "Hi", "", "")
	if err == nil || err.Error() != "Text-to-Speech API error: Service Unavailable" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestDecodeErrorsPropagate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":`))
	}, "k")
	_, err := client.Transcribe(context.Background(), googlecloud.Audio{}, "")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if _, ok := googlecloud.AsAPIError(err); ok {
		t.Fatal("decode errors must not be reported as API errors")
	}
}

func TestSynthesizeDecodesAudioAndEstimatesDuration(t *testing.T) {
	mp3 := []byte{0xFF, 0xFB, 0x90, 0x64}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text:synthesize" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Input struct {
				Text string `json:"text"`
			} `json:"input"`
			Voice struct {
				LanguageCode string `json:"languageCode"`
				Name         string `json:"name"`
				SSMLGender   string `json:"ssmlGender"`
			} `json:"voice"`
			AudioConfig struct {
				AudioEncoding string  `json:"audioEncoding"`
				SpeakingRate  float64 `json:"speakingRate"`
				Pitch         float64 `json:"pitch"`
			} `json:"audioConfig"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Input.Text != "Hi" || body.Voice.LanguageCode != "en-US" || body.Voice.Name != "en-US-Standard-C" || body.Voice.SSMLGender != "NEUTRAL" {
			t.Errorf("unexpected request %+v", body)
		}
		if body.AudioConfig.AudioEncoding != "MP3" || body.AudioConfig.SpeakingRate != 1.0 || body.AudioConfig.Pitch != 0 {
			t.Errorf("unexpected audio config %+v", body.AudioConfig)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"audioContent": base64.StdEncoding.EncodeToString(mp3)})
	}, "k")

	n, err := client.Synthesize(context.Background(), "Hi", "en-US", "")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(n.Audio) != string(mp3) || n.MIMEType != "audio/mp3" {
		t.Fatalf("unexpected audio %v %q", n.Audio, n.MIMEType)
	}
	if math.Abs(n.Duration-0.12) > 1e-9 {
		t.Fatalf("expected duration 0.12, got %v", n.Duration)
	}
	if n.SourceText != "Hi" || n.LanguageCode != "en-US" {
		t.Fatalf("unexpected narration %+v", n)
	}
}

func TestSynthesizeRejectsBlankTextAndBadLanguage(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, "k")
	if _, err := client.Synthesize(context.Background(), "   ", "", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "hello", "not a tag!", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if atomic.LoadInt32(calls) != 0 {
		t.Fatal("expected no requests")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Captions.FallbackWindowSeconds = 3
	got := googlecloud.ConfigFrom(&cfg)
	if got.FallbackWindowSeconds != 3 || got.VoiceName != "en-US-Standard-C" || got.Timeout.Seconds() != 60 {
		t.Fatalf("unexpected config %+v", got)
	}
	if googlecloud.ConfigFrom(nil) != (googlecloud.Config{}) {
		t.Fatal("nil config should produce zero value")
	}
}
