package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/provider"
)

// DefaultDeepgramEndpoint is Deepgram's live transcription endpoint.
var DefaultDeepgramEndpoint = &provider.EndpointConfig{
	BaseURL: "wss://api.deepgram.com",
	Path:    "/v1/listen",
}

// DeepgramDialer opens streaming transcription connections against
// Deepgram's live WebSocket API. Reconnect policy lives in the realtime
// session, not here: one DialStream is exactly one connection.
type DeepgramDialer struct {
	endpoint *provider.EndpointConfig
	apiKey   string
	model    string
	language string
	keywords []string
}

func NewDeepgramDialer(endpoint *provider.EndpointConfig, apiKey, model, language string, keywords []string) *DeepgramDialer {
	if endpoint == nil {
		endpoint = DefaultDeepgramEndpoint
	}
	return &DeepgramDialer{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: language,
		keywords: keywords,
	}
}

// buildURL constructs the WebSocket URL with query parameters.
func (d *DeepgramDialer) buildURL() (string, error) {
	u, err := url.Parse(d.endpoint.BaseURL + d.endpoint.Path)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	q := u.Query()
	q.Set("model", d.model)
	q.Set("encoding", "linear16") // 16-bit linear PCM
	q.Set("sample_rate", fmt.Sprintf("%d", SampleRate))
	q.Set("channels", fmt.Sprintf("%d", Channels))
	q.Set("interim_results", "true")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if d.language != "" {
		q.Set("language", d.language)
	}
	if len(d.keywords) > 0 {
		q.Set("keywords", strings.Join(d.keywords, ","))
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DialStream opens one connection and starts its reader.
func (d *DeepgramDialer) DialStream(ctx context.Context) (Stream, error) {
	log := logging.WithComponent("deepgram")

	wsURL, err := d.buildURL()
	if err != nil {
		return nil, &provider.ConfigurationError{Provider: provider.ProviderDeepgram, Reason: err.Error()}
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+d.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Warn().Int("status", resp.StatusCode).Msg("dial failed")
			return nil, provider.FromHTTPStatus(resp.StatusCode, fmt.Errorf("websocket dial: %w", err))
		}
		return nil, provider.Transient(fmt.Errorf("websocket dial: %w", err))
	}

	s := &deepgramStream{
		conn:      conn,
		resultsCh: make(chan StreamResult, 100),
		log:       log,
	}
	s.wg.Add(1)
	go s.readLoop()

	log.Debug().Str("model", d.model).Str("language", d.language).Msg("connected")
	return s, nil
}

type deepgramStream struct {
	conn      *websocket.Conn
	resultsCh chan StreamResult
	log       zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	wg        sync.WaitGroup
	closed    bool
}

// Deepgram WebSocket response types (incoming).
type deepgramWSResponse struct {
	Type        string           `json:"type"`
	Channel     *deepgramChannel `json:"channel,omitempty"`
	Error       *deepgramError   `json:"error,omitempty"`
	IsFinal     bool             `json:"is_final,omitempty"`
	SpeechFinal bool             `json:"speech_final,omitempty"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives,omitempty"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramError struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func (s *deepgramStream) readLoop() {
	defer s.wg.Done()
	defer close(s.resultsCh)

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			s.writeMu.Lock()
			closed := s.closed
			s.writeMu.Unlock()
			if closed {
				return // local Close, not a failure
			}
			s.resultsCh <- StreamResult{Err: provider.Transient(fmt.Errorf("websocket read: %w", err))}
			return
		}

		var resp deepgramWSResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			s.log.Warn().Err(err).Msg("unparseable message")
			continue
		}

		switch resp.Type {
		case "Results":
			if resp.Channel == nil || len(resp.Channel.Alternatives) == 0 {
				continue
			}
			transcript := resp.Channel.Alternatives[0].Transcript
			if transcript == "" {
				continue
			}
			s.resultsCh <- StreamResult{Text: transcript, IsFinal: resp.IsFinal || resp.SpeechFinal}

		case "Error":
			if resp.Error != nil {
				errMsg := resp.Error.Message
				if resp.Error.Description != "" {
					errMsg = fmt.Sprintf("%s: %s", errMsg, resp.Error.Description)
				}
				s.resultsCh <- StreamResult{Err: provider.Transient(fmt.Errorf("deepgram: %s", errMsg))}
				return
			}

		case "Metadata", "UtteranceEnd", "SpeechStarted":
			// informational only

		default:
			s.log.Debug().Str("type", resp.Type).Msg("unknown message type")
		}
	}
}

func (s *deepgramStream) Send(pcm []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return provider.Transient(fmt.Errorf("websocket write: %w", err))
	}
	return nil
}

func (s *deepgramStream) Results() <-chan StreamResult {
	return s.resultsCh
}

func (s *deepgramStream) Close() error {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.closed = true
		// best effort close frame
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		s.conn.Close()
		s.wg.Wait()
		s.log.Debug().Msg("closed")
	})
	return nil
}
