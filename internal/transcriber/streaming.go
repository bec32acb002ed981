package transcriber

import "context"

// StreamResult is one incremental result from a streaming connection.
type StreamResult struct {
	Text    string // transcript increment (partial or final)
	IsFinal bool   // true once the provider commits this text
	Err     error  // non-nil when the connection failed; the stream is dead after this
}

// Stream is one live upstream transcription connection. A Stream does not
// reconnect itself; when Results closes or delivers an Err, the owning
// session decides whether to dial again.
type Stream interface {
	// Send transmits a chunk of 16 kHz s16le mono PCM.
	Send(pcm []byte) error

	// Results delivers transcript increments. The channel closes when the
	// connection is torn down, cleanly or not.
	Results() <-chan StreamResult

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// StreamDialer opens upstream streaming connections. Each Dial is one
// connection attempt; backoff and retry budgets belong to the caller.
type StreamDialer interface {
	DialStream(ctx context.Context) (Stream, error)
}
