package session

import (
	"fmt"
	"fpgaterm/internal/logger"
	"fpgaterm/internal/serialio"
	"fpgaterm/pkg/datatypes"
	"strings"
	"sync"
)

// State 应用状态
type State struct {
	Port        string
	ViewMode    datatypes.ViewMode
	DataWidth   datatypes.DataWidth
	WrapColumns int

	// Kept for structured matrix display. Connect and Clear reset them but no code path
	// reads them; received bytes are always treated as a raw stream.
	RxBuffer       []byte
	DisplayCounter int
	ParseState     int
	CurrentMatrix  map[string]int
}

// Options wires the controller to its collaborators.
type Options struct {
	Client    *serialio.Client
	ListPorts func() []string
	// Post schedules fn on the UI goroutine. Receiver output only reaches the
	// OutputLog through Post.
	Post func(fn func())
}

// Controller owns the session state and implements the user operations. Apart from the
// receiver callbacks, its methods are meant to be called from the UI goroutine.
type Controller struct {
	client    *serialio.Client
	listPorts func() []string
	post      func(fn func())
	out       *OutputLog

	mu    sync.Mutex
	state State

	onConnectionChange func(connected bool)
}

// New 创建控制器
func New(opts Options) *Controller {
	c := &Controller{
		client:    opts.Client,
		listPorts: opts.ListPorts,
		post:      opts.Post,
		out:       &OutputLog{},
		state: State{
			ViewMode:      datatypes.ASCII,
			DataWidth:     datatypes.WIDTH_8,
			CurrentMatrix: map[string]int{},
		},
	}
	if c.client == nil {
		c.client = serialio.NewClient(serialio.Options{})
	}
	if c.listPorts == nil {
		c.listPorts = func() []string { return []string{} }
	}
	if c.post == nil {
		c.post = func(fn func()) { fn() }
	}
	return c
}

// Output returns the session's output log.
func (c *Controller) Output() *OutputLog {
	return c.out
}

// State returns a snapshot of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.RxBuffer = append([]byte(nil), c.state.RxBuffer...)
	s.CurrentMatrix = make(map[string]int, len(c.state.CurrentMatrix))
	for k, v := range c.state.CurrentMatrix {
		s.CurrentMatrix[k] = v
	}
	return s
}

// OnConnectionChange registers fn to be called on the UI goroutine whenever the
// connection opens or closes, including closes caused by I/O errors.
func (c *Controller) OnConnectionChange(fn func(connected bool)) {
	c.onConnectionChange = fn
}

func (c *Controller) SelectPort(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Port = name
}

func (c *Controller) SetViewMode(mode datatypes.ViewMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ViewMode = mode
}

func (c *Controller) SetDataWidth(width datatypes.DataWidth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.DataWidth = width
}

func (c *Controller) SetWrapColumns(cols int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.WrapColumns = cols
}

// RefreshPorts re-enumerates the serial devices and selects the first one, if any.
func (c *Controller) RefreshPorts() []string {
	ports := c.listPorts()
	c.mu.Lock()
	if len(ports) > 0 {
		c.state.Port = ports[0]
	} else {
		c.state.Port = ""
	}
	c.mu.Unlock()
	return ports
}

func (c *Controller) IsConnected() bool {
	return c.client.IsConnected()
}

// ToggleConnection 切换连接状态
func (c *Controller) ToggleConnection() {
	if c.client.IsConnected() {
		c.Disconnect()
	} else {
		c.mu.Lock()
		port := c.state.Port
		c.mu.Unlock()
		c.Connect(port)
	}
}

// Connect opens portName and starts the receiver. An empty name is ignored.
func (c *Controller) Connect(portName string) {
	if portName == "" {
		return
	}
	if err := c.client.Connect(portName); err != nil {
		c.logLine(fmt.Sprintf("Error: %v", err))
		return
	}

	c.mu.Lock()
	c.state.Port = portName
	c.state.RxBuffer = nil
	c.state.DisplayCounter = 0
	c.mu.Unlock()

	if err := c.client.StartReading(c.receive, c.receiveFailed); err != nil {
		c.logLine(fmt.Sprintf("Error: %v", err))
		c.client.Disconnect()
		return
	}

	c.logLine(fmt.Sprintf("Connected to %s", portName))
	c.notifyConnection(true)
}

// Disconnect closes the connection; the receiver exits on its next poll.
func (c *Controller) Disconnect() {
	if err := c.client.Disconnect(); err != nil {
		c.logLine(fmt.Sprintf("Error: %v", err))
	}
	c.logLine("Disconnected")
	c.notifyConnection(false)
}

// Send parses text as whitespace separated decimal bytes and writes them.
// Nothing is written unless every token is a valid byte value.
func (c *Controller) Send(text string) {
	if !c.client.IsConnected() {
		c.logLine("Error: Not connected")
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	data, values, err := datatypes.ParseByteSequence(text)
	if err != nil {
		c.logLine(fmt.Sprintf("Error: %v", err))
		return
	}

	if _, err := c.client.Write(data); err != nil {
		c.logLine(fmt.Sprintf("Error: %v", err))
		c.Disconnect()
		return
	}
	c.logLine("Sent: " + datatypes.FormatValues(values))
}

// Clear empties the output log and resets the display counters.
func (c *Controller) Clear() {
	c.out.Clear()
	c.mu.Lock()
	c.state.DisplayCounter = 0
	c.state.RxBuffer = nil
	c.mu.Unlock()
}

// receive runs on the receiver goroutine.
func (c *Controller) receive(chunk []byte) {
	c.post(func() {
		c.mu.Lock()
		mode := c.state.ViewMode
		c.mu.Unlock()
		c.out.LogOutput(datatypes.Format(chunk, mode))
	})
}

// receiveFailed runs on the receiver goroutine after the client closed the port.
func (c *Controller) receiveFailed(err error) {
	c.post(func() {
		c.logLine(fmt.Sprintf("Error: read failed: %v", err))
		c.notifyConnection(false)
	})
}

func (c *Controller) notifyConnection(connected bool) {
	if c.onConnectionChange != nil {
		c.onConnectionChange(connected)
	}
}

// logLine writes msg to the output log and mirrors it to the file log.
func (c *Controller) logLine(msg string) {
	c.out.Log(msg)
	if strings.HasPrefix(msg, "Error") {
		logger.Error(msg)
	} else {
		logger.Info(msg)
	}
}
