package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nelsonlabs/morningreport/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 4096,
	// Browser clients connect from the teaching frontend; auth happens
	// upstream of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is one message sent to the realtime client.
type wsEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Final bool   `json:"final,omitempty"`
	State string `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
	JobID string `json:"job_id,omitempty"`
}

// clientCommand is a control message from the realtime client.
type clientCommand struct {
	Type string `json:"type"`
}

// wsSource adapts a client WebSocket connection into an audio source:
// binary messages are PCM frames, a {"type":"stop"} text message or a
// closed connection ends the audio.
type wsSource struct {
	conn   *websocket.Conn
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func newWSSource(conn *websocket.Conn) *wsSource {
	return &wsSource{
		conn:   conn,
		frames: make(chan []byte, 32),
		done:   make(chan struct{}),
	}
}

func (w *wsSource) Start(ctx context.Context) (<-chan []byte, error) {
	go w.readLoop()
	return w.frames, nil
}

func (w *wsSource) readLoop() {
	defer close(w.frames)
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			select {
			case w.frames <- data:
			case <-w.done:
				return
			}
		case websocket.TextMessage:
			var cmd clientCommand
			if json.Unmarshal(data, &cmd) == nil && cmd.Type == "stop" {
				return
			}
		}
	}
}

// Close releases the read loop; the connection itself belongs to the
// handler.
func (w *wsSource) Close() error {
	w.once.Do(func() { close(w.done) })
	return nil
}

// handleRealtime runs one live transcription session over a WebSocket.
// Audio flows up as binary PCM; transcript updates flow back as JSON.
// When the session ends with enough transcript, analysis is submitted
// as a background job and the job id is the last message sent.
func (s *Server) handleRealtime(c *gin.Context) {
	cfg := s.cfg.Get()

	dialer, err := s.dialers()
	if err != nil {
		s.log.Warn().Err(err).Msg("realtime session rejected")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var jobMu sync.Mutex
	var jobID string
	submit := func(ctx context.Context, transcript string) {
		id := s.tracker.Submit(func(ctx context.Context) (any, error) {
			return s.pipe.AnalyzeTranscript(ctx, transcript, cfg.Realtime.Provider)
		})
		jobMu.Lock()
		jobID = id
		jobMu.Unlock()
	}

	source := newWSSource(conn)
	session := realtime.NewSession(dialer, source, submit, cfg.SessionConfig())
	if err := session.Start(c.Request.Context()); err != nil {
		conn.WriteJSON(wsEvent{Type: "error", Error: err.Error()})
		return
	}
	defer session.Stop()

	for update := range session.Updates() {
		var event wsEvent
		switch update.Type {
		case realtime.UpdateTranscription:
			event = wsEvent{Type: "transcription", Text: update.Text, Final: update.Final}
		case realtime.UpdateState:
			event = wsEvent{Type: "state", State: string(update.State)}
		case realtime.UpdateError:
			event = wsEvent{Type: "error", Error: update.Err.Error()}
		default:
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			// Client is gone; tear the session down and drain.
			session.Stop()
			for range session.Updates() {
			}
			return
		}
	}

	jobMu.Lock()
	id := jobID
	jobMu.Unlock()
	if id != "" {
		conn.WriteJSON(wsEvent{Type: "analysis_job", JobID: id})
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session complete"))
}
