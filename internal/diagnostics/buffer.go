package diagnostics

import (
	"bytes"
	"io"
	"sync"
)

// Buffer is an io.Writer that either forwards to a target writer or, while
// overridden, queues everything written to it. Playback flushes the queue to
// the target exactly once. A Buffer belongs to a single packaging run.
type Buffer struct {
	mu         sync.Mutex
	target     io.Writer
	queue      bytes.Buffer
	capturing  bool
	playedBack bool
}

// NewBuffer returns a Buffer forwarding to target. A nil target discards output.
func NewBuffer(target io.Writer) *Buffer {
	if target == nil {
		target = io.Discard
	}

	return &Buffer{
		target: target,
	}
}

// Override starts queueing writes instead of forwarding them.
func (b *Buffer) Override() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.capturing = true
}

// Restore stops queueing; subsequent writes go straight to the target.
// Already queued output stays queued until Playback.
func (b *Buffer) Restore() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.capturing = false
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.capturing {
		return b.queue.Write(p)
	}

	return b.target.Write(p)
}

// Playback writes the queued output to the target. Only the first call has
// an effect; later calls return nil.
func (b *Buffer) Playback() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playedBack {
		return nil
	}

	b.playedBack = true
	b.capturing = false

	if b.queue.Len() == 0 {
		return nil
	}

	_, err := b.queue.WriteTo(b.target)

	return err
}

// Pending returns the number of queued bytes.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.queue.Len()
}
