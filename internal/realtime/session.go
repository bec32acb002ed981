// Package realtime manages live transcription sessions: audio frames
// from a source are forwarded to a streaming provider, transcript
// updates flow back to the caller, and dropped upstream connections
// are re-dialed with capped exponential backoff.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nelsonlabs/morningreport/internal/logging"
	"github.com/nelsonlabs/morningreport/internal/metrics"
	"github.com/nelsonlabs/morningreport/internal/provider"
	"github.com/nelsonlabs/morningreport/internal/transcriber"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
)

// UpdateType distinguishes session update messages.
type UpdateType string

const (
	UpdateTranscription UpdateType = "transcription"
	UpdateState         UpdateType = "state"
	UpdateError         UpdateType = "error"
)

// Update is one event emitted by a session.
type Update struct {
	Type  UpdateType
	Text  string
	Final bool
	State State
	Err   error
}

// Source supplies PCM audio frames. Start is called exactly once,
// before the first upstream dial; the returned channel closing means
// the audio ended and the session should wind down.
type Source interface {
	Start(ctx context.Context) (<-chan []byte, error)
	Close() error
}

// SubmitFunc receives the accumulated session transcript after the
// session ends, when it is long enough to analyze.
type SubmitFunc func(ctx context.Context, transcript string)

// Config tunes a session. Zero values take defaults.
type Config struct {
	MaxReconnects      int           // consecutive failed dials before giving up
	BaseBackoff        time.Duration // first retry delay
	MaxBackoff         time.Duration // backoff cap
	MinTranscriptChars int           // shorter transcripts are not submitted
	BufferLimit        int           // live display buffer bytes
	InputSampleRate    int           // source PCM rate, downsampled to 16 kHz
}

const (
	DefaultMaxReconnects      = 10
	DefaultBaseBackoff        = 500 * time.Millisecond
	DefaultMaxBackoff         = 10 * time.Second
	DefaultMinTranscriptChars = 10
)

func (c Config) withDefaults() Config {
	if c.MaxReconnects <= 0 {
		c.MaxReconnects = DefaultMaxReconnects
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = DefaultBaseBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.MinTranscriptChars <= 0 {
		c.MinTranscriptChars = DefaultMinTranscriptChars
	}
	if c.InputSampleRate <= 0 {
		c.InputSampleRate = transcriber.SampleRate
	}
	return c
}

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("session already started")

var (
	errSourceDone   = errors.New("audio source ended")
	errStreamClosed = errors.New("upstream stream closed")
)

// Session is one live transcription session. It owns the reconnect
// loop; the dialer it is given performs exactly one connection attempt
// per call.
type Session struct {
	dialer transcriber.StreamDialer
	source Source
	submit SubmitFunc
	cfg    Config
	log    zerolog.Logger

	mu      sync.Mutex
	state   State
	started bool
	cancel  context.CancelFunc

	wg      sync.WaitGroup
	updates chan Update
	display *Buffer
	accum   strings.Builder
}

// NewSession creates a session. submit may be nil when the transcript
// should not be analyzed afterwards.
func NewSession(dialer transcriber.StreamDialer, source Source, submit SubmitFunc, cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		dialer:  dialer,
		source:  source,
		submit:  submit,
		cfg:     cfg,
		log:     logging.WithComponent("realtime"),
		state:   StateIdle,
		updates: make(chan Update, 64),
		display: NewBuffer(cfg.BufferLimit),
	}
}

// Updates returns the session's event stream. The channel closes when
// the session ends for any reason.
func (s *Session) Updates() <-chan Update {
	return s.updates
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns the bounded live transcript suffix.
func (s *Session) Transcript() string {
	return s.display.String()
}

// Start acquires the audio source and launches the session loop. A
// source that cannot start puts the session in the error state without
// an upstream dial ever happening.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.state = StateConnecting
	s.mu.Unlock()

	frames, err := s.source.Start(ctx)
	if err != nil {
		s.setState(StateError)
		close(s.updates)
		return fmt.Errorf("start audio source: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	metrics.Default.SessionsActive.Inc()
	s.wg.Add(1)
	go s.run(runCtx, frames)
	return nil
}

// Stop ends the session, tears down the upstream connection and the
// source, and submits the accumulated transcript if it is long enough.
// It is safe to call multiple times and from any state.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	started := s.started
	s.mu.Unlock()

	if !started || cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}

// run owns the reconnect loop and every teardown path: it is the only
// goroutine that closes the updates channel.
func (s *Session) run(ctx context.Context, frames <-chan []byte) {
	defer s.wg.Done()
	defer metrics.Default.SessionsActive.Dec()
	defer close(s.updates)
	defer s.finalize()
	defer s.source.Close()

	failures := 0
	for {
		if ctx.Err() != nil {
			s.setState(StateIdle)
			return
		}

		s.setState(StateConnecting)
		stream, err := s.dialer.DialStream(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.setState(StateIdle)
				return
			}
			if provider.IsAuth(err) {
				s.fail(fmt.Errorf("upstream rejected credentials: %w", err))
				return
			}
			failures++
			metrics.Default.ReconnectsTotal.Inc()
			s.log.Warn().Int("failures", failures).Err(err).Msg("upstream dial failed")
			if failures >= s.cfg.MaxReconnects {
				metrics.Default.SessionsExhausted.Inc()
				s.fail(fmt.Errorf("reconnect budget exhausted after %d attempts: %w", failures, err))
				return
			}
			if !s.backoff(ctx, failures) {
				s.setState(StateIdle)
				return
			}
			continue
		}

		failures = 0
		s.setState(StateConnected)
		s.log.Debug().Msg("upstream connected")

		err = s.pump(ctx, stream, frames)
		stream.Close()

		switch {
		case ctx.Err() != nil:
			s.setState(StateIdle)
			return
		case errors.Is(err, errSourceDone):
			s.log.Debug().Msg("audio source ended, closing session")
			s.setState(StateIdle)
			return
		default:
			// Connection dropped mid-session; count it against the
			// budget and re-dial.
			failures++
			metrics.Default.ReconnectsTotal.Inc()
			s.log.Warn().Int("failures", failures).Err(err).Msg("upstream connection lost")
			if failures >= s.cfg.MaxReconnects {
				metrics.Default.SessionsExhausted.Inc()
				s.fail(fmt.Errorf("reconnect budget exhausted after %d attempts: %w", failures, err))
				return
			}
			if !s.backoff(ctx, failures) {
				s.setState(StateIdle)
				return
			}
		}
	}
}

// pump shuttles audio up and transcript results down until the
// context is canceled, the source ends, or the stream breaks.
func (s *Session) pump(ctx context.Context, stream transcriber.Stream, frames <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frame, ok := <-frames:
			if !ok {
				return errSourceDone
			}
			metrics.Default.AudioBytesReceived.Add(float64(len(frame)))
			pcm := Downsample(frame, s.cfg.InputSampleRate)
			if err := stream.Send(pcm); err != nil {
				return err
			}
		case res, ok := <-stream.Results():
			if !ok {
				return errStreamClosed
			}
			if res.Err != nil {
				return res.Err
			}
			if res.Text == "" {
				continue
			}
			if res.IsFinal {
				s.appendFinal(res.Text)
			}
			s.emit(Update{Type: UpdateTranscription, Text: res.Text, Final: res.IsFinal})
		}
	}
}

func (s *Session) appendFinal(text string) {
	if s.accum.Len() > 0 {
		s.accum.WriteByte(' ')
	}
	s.accum.WriteString(text)
	if s.display.Append(text) {
		metrics.Default.TranscriptEvicted.Inc()
	}
}

// finalize hands the accumulated transcript to the analyzer when there
// is enough of it to be worth analyzing.
func (s *Session) finalize() {
	transcript := s.accum.String()
	if s.submit == nil {
		return
	}
	if len(transcript) < s.cfg.MinTranscriptChars {
		s.log.Debug().Int("chars", len(transcript)).Msg("transcript too short, skipping analysis")
		return
	}
	s.submit(context.Background(), transcript)
}

func (s *Session) backoff(ctx context.Context, failures int) bool {
	delay := s.cfg.BaseBackoff << (failures - 1)
	if delay > s.cfg.MaxBackoff || delay <= 0 {
		delay = s.cfg.MaxBackoff
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.emit(Update{Type: UpdateState, State: state})
}

func (s *Session) fail(err error) {
	s.log.Error().Err(err).Msg("session failed")
	s.setState(StateError)
	s.emit(Update{Type: UpdateError, Err: err})
}

// emit never blocks: a stalled consumer loses updates rather than
// stalling the audio path.
func (s *Session) emit(u Update) {
	select {
	case s.updates <- u:
	default:
		s.log.Warn().Str("type", string(u.Type)).Msg("dropping update, consumer too slow")
	}
}
