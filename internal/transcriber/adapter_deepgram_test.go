package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nelsonlabs/morningreport/internal/provider"
)

// wsEndpoint converts an httptest server URL into a websocket endpoint.
func wsEndpoint(httpURL string) *provider.EndpointConfig {
	return &provider.EndpointConfig{
		BaseURL: "ws" + strings.TrimPrefix(httpURL, "http"),
		Path:    "",
	}
}

func TestDeepgramDialer_ImplementsStreamDialer(t *testing.T) {
	var _ StreamDialer = (*DeepgramDialer)(nil)
}

func TestDeepgramDialer_BuildURL(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		language string
		wantURL  []string // URL must contain all these substrings
	}{
		{
			name:     "english",
			model:    "nova-3",
			language: "en",
			wantURL:  []string{"model=nova-3", "language=en", "encoding=linear16", "sample_rate=16000"},
		},
		{
			name:     "auto-detect",
			model:    "nova-2",
			language: "",
			wantURL:  []string{"model=nova-2", "encoding=linear16", "channels=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialer := NewDeepgramDialer(nil, "test-key", tt.model, tt.language, nil)

			url, err := dialer.buildURL()
			if err != nil {
				t.Fatalf("buildURL() error = %v", err)
			}
			for _, want := range tt.wantURL {
				if !strings.Contains(url, want) {
					t.Errorf("buildURL() = %q, want to contain %q", url, want)
				}
			}
		})
	}
}

// fakeDeepgram runs a websocket server that speaks just enough of the
// Deepgram live protocol for a stream test.
func fakeDeepgram(t *testing.T, responses []string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for _, resp := range responses {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(resp)); err != nil {
				return
			}
		}
		// hold the connection until the client closes
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestDeepgramStream_Results(t *testing.T) {
	srv := fakeDeepgram(t, []string{
		`{"type":"Metadata"}`,
		`{"type":"Results","channel":{"alternatives":[{"transcript":"hello","confidence":0.9}]},"is_final":false}`,
		`{"type":"Results","channel":{"alternatives":[{"transcript":"hello world","confidence":0.95}]},"is_final":true}`,
	})
	defer srv.Close()

	dialer := NewDeepgramDialer(wsEndpoint(srv.URL), "test-key", "nova-3", "en", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := dialer.DialStream(ctx)
	if err != nil {
		t.Fatalf("DialStream() error = %v", err)
	}
	defer stream.Close()

	var got []StreamResult
	timeout := time.After(3 * time.Second)
	for len(got) < 2 {
		select {
		case r, ok := <-stream.Results():
			if !ok {
				t.Fatalf("results channel closed early, got %v", got)
			}
			if r.Err != nil {
				t.Fatalf("result error: %v", r.Err)
			}
			got = append(got, r)
		case <-timeout:
			t.Fatalf("timed out waiting for results, got %v", got)
		}
	}

	if got[0].Text != "hello" || got[0].IsFinal {
		t.Errorf("first result = %+v, want partial %q", got[0], "hello")
	}
	if got[1].Text != "hello world" || !got[1].IsFinal {
		t.Errorf("second result = %+v, want final %q", got[1], "hello world")
	}
}

func TestDeepgramStream_SendAfterClose(t *testing.T) {
	srv := fakeDeepgram(t, nil)
	defer srv.Close()

	dialer := NewDeepgramDialer(wsEndpoint(srv.URL), "test-key", "nova-3", "", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := dialer.DialStream(ctx)
	if err != nil {
		t.Fatalf("DialStream() error = %v", err)
	}

	if err := stream.Send([]byte{0, 0, 0, 0}); err != nil {
		t.Errorf("Send() before close error = %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := stream.Send([]byte{0, 0}); err == nil {
		t.Error("Send() after close should return an error")
	}
	// double close must be safe
	if err := stream.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestDeepgramDialer_AuthRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	dialer := NewDeepgramDialer(wsEndpoint(srv.URL), "bad-key", "nova-3", "", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := dialer.DialStream(ctx)
	if err == nil {
		t.Fatal("DialStream() expected error for rejected auth")
	}
	if !provider.IsAuth(err) {
		t.Errorf("error should be an AuthError, got %T: %v", err, err)
	}
}
