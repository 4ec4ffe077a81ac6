package hal

import (
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
)

// DefaultStreamBuffer is how many received bytes a StreamTransport queues
// before its reader blocks.
const DefaultStreamBuffer = 256

// FakeTransport is an in-memory byte stream for tests. Bytes fed in are read
// back in FIFO order; everything written lands in Out.
type FakeTransport struct {
	Out bytes.Buffer

	// WriteError, if set, is returned by Write.
	WriteError error

	in []byte
}

// Feed queues bytes as if they arrived on the line.
func (t *FakeTransport) Feed(s string) {
	t.in = append(t.in, s...)
}

// Buffered returns the number of unread bytes.
func (t *FakeTransport) Buffered() int {
	return len(t.in)
}

// ReadByte consumes one byte, or returns io.EOF when nothing is queued.
func (t *FakeTransport) ReadByte() (byte, error) {
	if len(t.in) == 0 {
		return 0, io.EOF
	}
	b := t.in[0]
	t.in = t.in[1:]
	return b, nil
}

// Write records p.
func (t *FakeTransport) Write(p []byte) (int, error) {
	if t.WriteError != nil {
		return 0, t.WriteError
	}
	return t.Out.Write(p)
}

// StreamTransport adapts a blocking reader (a serial port, stdin) to the
// poll-style "bytes available / read one byte" interface of a UART. A
// background goroutine moves received bytes into a bounded queue.
type StreamTransport struct {
	r     io.Reader
	w     io.Writer
	queue chan byte

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewStreamTransport starts reading r in the background. Writes go straight to w.
func NewStreamTransport(r io.Reader, w io.Writer, bufSize int) *StreamTransport {
	if bufSize <= 0 {
		bufSize = DefaultStreamBuffer
	}

	t := &StreamTransport{
		r:     r,
		w:     w,
		queue: make(chan byte, bufSize),
		done:  make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *StreamTransport) readLoop() {
	buf := make([]byte, 64)
	for {
		n, err := t.r.Read(buf)
		for _, b := range buf[:n] {
			select {
			case t.queue <- b:
			case <-t.done:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Stream transport read error: %v", err)
			}
			return
		}
	}
}

// Buffered returns the number of received bytes not yet read.
func (t *StreamTransport) Buffered() int {
	return len(t.queue)
}

// ReadByte consumes one received byte without blocking. It returns io.EOF
// when the queue is empty.
func (t *StreamTransport) ReadByte() (byte, error) {
	select {
	case b := <-t.queue:
		return b, nil
	default:
		return 0, io.EOF
	}
}

// Write sends p on the underlying writer.
func (t *StreamTransport) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

// Close stops the reader and closes the underlying reader if it is an io.Closer.
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)

	if c, ok := t.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
