package dubber

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lfedgeai/dubbing/dubber/synth"
)

func newTestDubber(fs *fakeSynth) *Dubber {
	gin.SetMode(gin.TestMode)
	cfg := NewServeDubberConfig("localhost", "0", "", "unused", "", nil, false)
	d := NewDubber(cfg, NewPipeline(newMemStore(), fs))
	d.Initialize()
	return d
}

func uploadRequest(t *testing.T, csv, source string, withFile bool) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if withFile {
		fw, err := mw.CreateFormFile("file", "transcript.csv")
		if err != nil {
			t.Fatalf("Error: %v", err)
		}
		fw.Write([]byte(csv))
	}
	if source != "" {
		mw.WriteField("source", source)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-csv/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	d := newTestDubber(&fakeSynth{})
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected %d %q", rec.Code, rec.Body.String())
	}
}

func TestIndex(t *testing.T) {
	d := newTestDubber(&fakeSynth{})
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `action="/upload-csv/"`) {
		t.Fatalf("unexpected %d %q", rec.Code, rec.Body.String())
	}
}

func TestUploadCSV(t *testing.T) {
	d := newTestDubber(&fakeSynth{voices: hindiVoices})
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, uploadRequest(t, hindiCSV, "hi-IN", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["message"] != successMessage {
		t.Errorf("unexpected message %v", out["message"])
	}
	for _, k := range []string{"english_audio_link", "language_audio_link"} {
		if s, _ := out[k].(string); !strings.HasSuffix(s, ".wav") {
			t.Errorf("%s = %v", k, out[k])
		}
	}
}

func TestUploadCSVErrors(t *testing.T) {
	cases := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		synth    *fakeSynth
		status   int
		contains string
	}{
		{"no file", func(t *testing.T) *http.Request { return uploadRequest(t, "", "hi-IN", false) },
			&fakeSynth{}, http.StatusBadRequest, "No file uploaded."},
		{"no source", func(t *testing.T) *http.Request { return uploadRequest(t, hindiCSV, "", true) },
			&fakeSynth{}, http.StatusBadRequest, "Missing source locale."},
		{"bad locale", func(t *testing.T) *http.Request { return uploadRequest(t, hindiCSV, "zz-ZZ", true) },
			&fakeSynth{voices: hindiVoices}, http.StatusBadRequest, "Invalid locale or unsupported locale specified."},
		{"synthesis", func(t *testing.T) *http.Request { return uploadRequest(t, hindiCSV, "hi-IN", true) },
			&fakeSynth{voices: hindiVoices, failWith: &synth.SynthesisError{Op: "synthesize", StatusCode: 401, Body: "denied"}},
			http.StatusBadGateway, "status 401"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := newTestDubber(c.synth)
			rec := httptest.NewRecorder()
			d.Handler().ServeHTTP(rec, c.req(t))
			if rec.Code != c.status {
				t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
			}
			msg, _ := decode(t, rec)["error"].(string)
			if !strings.Contains(msg, c.contains) {
				t.Fatalf("unexpected error %q", msg)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	d := newTestDubber(&fakeSynth{})
	req := httptest.NewRequest(http.MethodOptions, "/upload-csv/", nil)
	req.Header.Set("Origin", "https://other.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d: %v", rec.Code, rec.Header())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://other.test" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
}

func TestCORSSimpleRequest(t *testing.T) {
	d := newTestDubber(&fakeSynth{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://other.test")
	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://other.test" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestStartServerStop(t *testing.T) {
	d := newTestDubber(&fakeSynth{})
	done := make(chan error, 1)
	go func() { done <- d.StartServer() }()

	// Stop before the listener exists is a no-op, so retry until it lands.
	deadline := time.After(5 * time.Second)
	for {
		d.Stop()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("Error: %v", err)
			}
			return
		case <-deadline:
			t.Fatalf("server did not stop")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
