// Package serialiotest provides an in-memory serial port for tests.
package serialiotest

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrClosed = errors.New("port has been closed")

// Port is a fake serial device. Bytes queued with Feed are returned by Read one chunk per
// call; an empty queue behaves like a read timeout.
type Port struct {
	Name string

	rx      chan []byte
	readErr chan error
	closed  chan struct{}
	once    sync.Once

	mu          sync.Mutex
	written     []byte
	writes      int
	writeErr    error
	readTimeout time.Duration
	resets      int

	reads atomic.Int32
}

func NewPort(name string) *Port {
	return &Port{
		Name:        name,
		rx:          make(chan []byte, 64),
		readErr:     make(chan error, 1),
		closed:      make(chan struct{}),
		readTimeout: 10 * time.Millisecond,
	}
}

// Feed queues a chunk for the next Read.
func (p *Port) Feed(data []byte) {
	p.rx <- data
}

// FailRead makes the next Read return err.
func (p *Port) FailRead(err error) {
	p.readErr <- err
}

// FailWrite makes every following Write return err.
func (p *Port) FailWrite(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

func (p *Port) Read(b []byte) (int, error) {
	if p.IsClosed() {
		return 0, ErrClosed
	}
	p.reads.Add(1)

	p.mu.Lock()
	timeout := p.readTimeout
	p.mu.Unlock()

	select {
	case data := <-p.rx:
		return copy(b, data), nil
	case err := <-p.readErr:
		return 0, err
	case <-p.closed:
		return 0, ErrClosed
	case <-time.After(timeout):
		return 0, nil
	}
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	if p.IsClosed() {
		return 0, ErrClosed
	}
	p.writes++
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *Port) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (p *Port) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = t
	return nil
}

func (p *Port) ResetInputBuffer() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets++
	return nil
}

func (p *Port) ResetOutputBuffer() error {
	return nil
}

// Written returns every byte written so far.
func (p *Port) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written...)
}

// Writes counts Write calls that reached the device.
func (p *Port) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

func (p *Port) ReadTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readTimeout
}

func (p *Port) InputResets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resets
}

// Reads counts Read calls made while the port was open.
func (p *Port) Reads() int { return int(p.reads.Load()) }

func (p *Port) IsClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}
