package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// lineWriter moves log lines off the calling goroutine. Lines are buffered per
// sink and flushed whenever the queue runs dry, so bursts cost one syscall per
// sink instead of one per line. A sink that fails is disabled; the rest keep
// receiving lines.
type lineWriter struct {
	lines   chan []byte
	flushes chan chan error
	stopped chan struct{}

	// gate keeps Write from sending on lines after Close closed it.
	gate   sync.RWMutex
	closed bool

	sinks []*lineSink

	mu       sync.Mutex
	firstErr error
	live     int
}

var errWriterClosed = errors.New("logger: writer closed")

type lineSink struct {
	buf    *bufio.Writer
	failed bool
}

func newLineWriter(writers []io.Writer, bufSize int) *lineWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &lineWriter{
		lines:   make(chan []byte, 1024),
		flushes: make(chan chan error),
		stopped: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, &lineSink{buf: bufio.NewWriterSize(out, bufSize)})
		}
	}
	w.live = len(w.sinks)
	go w.run()
	return w
}

func (w *lineWriter) run() {
	defer close(w.stopped)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.flush()
				return
			}
			w.write(line)
			if len(w.lines) == 0 {
				w.flush()
			}
		case ack := <-w.flushes:
			w.drain()
			ack <- w.flush()
		}
	}
}

// drain writes whatever is already queued.
func (w *lineWriter) drain() {
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			w.write(line)
		default:
			return
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full and fails once
// every sink has failed or the writer is closed.
func (w *lineWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.deadErr(); err != nil {
		return err
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush blocks until queued lines reach the sinks.
func (w *lineWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return <-ack
	case <-w.stopped:
		return w.err()
	}
}

// Close drains the queue and returns the first sink error, if any.
func (w *lineWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.gate.Unlock()
	<-w.stopped
	return w.err()
}

func (w *lineWriter) write(line []byte) {
	for _, s := range w.sinks {
		if s.failed {
			continue
		}
		if _, err := s.buf.Write(line); err != nil {
			w.fail(s, err)
		}
	}
}

func (w *lineWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if s.failed {
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.fail(s, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *lineWriter) fail(s *lineSink, err error) {
	s.failed = true
	w.mu.Lock()
	defer w.mu.Unlock()
	w.live--
	if w.firstErr == nil {
		w.firstErr = err
	}
}

func (w *lineWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstErr
}

// deadErr reports the first error once no sink is left.
func (w *lineWriter) deadErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.live <= 0 && w.firstErr != nil {
		return w.firstErr
	}
	return nil
}
