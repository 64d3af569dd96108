package serialio

import (
	"errors"
	"fmt"
	"fpgaterm/internal/logger"
	"sync"
	"sync/atomic"
	"time"

	"go.bug.st/serial"
)

// BaudRate is fixed for the device link, 8N1 framing.
const BaudRate = 115200

const (
	defaultReadTimeout  = 100 * time.Millisecond
	defaultPollInterval = 50 * time.Millisecond
	readBufferSize      = 4096
)

var ErrNotConnected = errors.New("device not connected")

// Port is the part of serial.Port used here.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// Opener opens a device by name.
type Opener func(name string, mode *serial.Mode) (Port, error)

func openSerial(name string, mode *serial.Mode) (Port, error) {
	return serial.Open(name, mode)
}

// Options 连接参数
type Options struct {
	ReadTimeout  time.Duration
	PollInterval time.Duration
	Open         Opener
}

// Client owns the single serial connection and its receiver goroutine.
// State is either disconnected (port == nil) or connected.
type Client struct {
	opts Options

	mu        sync.Mutex
	port      Port
	portName  string
	connected atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewClient 创建新的串口客户端
func NewClient(opts Options) *Client {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Open == nil {
		opts.Open = openSerial
	}
	return &Client{opts: opts}
}

// Connect opens portName at BaudRate 8N1 with the short read timeout and discards any
// bytes already buffered by the driver.
func (c *Client) Connect(portName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != nil {
		return fmt.Errorf("already connected to %s", c.portName)
	}

	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := c.opts.Open(portName, mode)
	if err != nil {
		logger.Error(fmt.Sprintf("Serial open failed: %s: %v", portName, err))
		return err
	}
	if err := p.SetReadTimeout(c.opts.ReadTimeout); err != nil {
		p.Close()
		return fmt.Errorf("set read timeout: %w", err)
	}
	if err := p.ResetInputBuffer(); err != nil {
		logger.Warn(fmt.Sprintf("Reset input buffer failed: %v", err))
	}
	if err := p.ResetOutputBuffer(); err != nil {
		logger.Warn(fmt.Sprintf("Reset output buffer failed: %v", err))
	}

	c.port = p
	c.portName = portName
	c.connected.Store(true)

	logger.Info(fmt.Sprintf("Serial connection successful: %s, BaudRate: %d", portName, BaudRate))
	return nil
}

// Disconnect closes the port and waits for the receiver goroutine to leave its loop.
// Calling it while disconnected is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.port == nil {
		c.mu.Unlock()
		return nil
	}
	c.connected.Store(false)
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
	err := c.port.Close()
	c.port = nil
	doneCh := c.doneCh
	c.doneCh = nil
	c.mu.Unlock()

	// wait outside the lock, the reader takes it on its error path
	if doneCh != nil {
		<-doneCh
	}

	if err != nil {
		logger.Error("Disconnection failed:", err)
		return err
	}
	logger.Info("Connection closed")
	return nil
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// PortName returns the device of the open connection, or "".
func (c *Client) PortName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return ""
	}
	return c.portName
}

// Write sends data unframed. It does not queue or retry.
func (c *Client) Write(data []byte) (int, error) {
	c.mu.Lock()
	port := c.port
	c.mu.Unlock()

	if port == nil {
		return 0, ErrNotConnected
	}
	n, err := port.Write(data)
	if err != nil {
		return n, fmt.Errorf("write failed: %w", err)
	}
	if n != len(data) {
		return n, fmt.Errorf("write failed: short write %d of %d bytes", n, len(data))
	}
	logger.Debug(fmt.Sprintf("Sent %d byte(s): % X", n, data))
	return n, nil
}

// StartReading runs the receiver loop until Disconnect or a read error.
// onData gets each non-empty chunk as a fresh slice; onError gets the error that ended the
// loop, after the connection has already been closed. Both run on the receiver goroutine.
func (c *Client) StartReading(onData func([]byte), onError func(error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		return ErrNotConnected
	}
	if c.doneCh != nil {
		return errors.New("receiver already running")
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	c.stopCh = stopCh
	c.doneCh = doneCh
	go c.readLoop(c.port, stopCh, doneCh, onData, onError)
	return nil
}

func (c *Client) readLoop(port Port, stopCh, doneCh chan struct{}, onData func([]byte), onError func(error)) {
	defer close(doneCh)

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		n, err := port.Read(buf)
		select {
		case <-stopCh:
			// port was closed under us by Disconnect
			return
		default:
		}

		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			logger.Debug(fmt.Sprintf("Received %d byte(s): % X", n, chunk))
			if onData != nil {
				onData(chunk)
			}
		}

		if err != nil {
			c.closeAfterReadError(port, doneCh)
			logger.Error(fmt.Sprintf("Serial read failed: %v", err))
			if onError != nil {
				onError(err)
			}
			return
		}

		select {
		case <-stopCh:
			return
		case <-time.After(c.opts.PollInterval):
		}
	}
}

// closeAfterReadError tears the connection down without waiting on the receiver, which is
// the caller.
func (c *Client) closeAfterReadError(port Port, doneCh chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port != port || c.doneCh != doneCh {
		return
	}
	c.connected.Store(false)
	port.Close()
	c.port = nil
	c.stopCh = nil
	c.doneCh = nil
}
