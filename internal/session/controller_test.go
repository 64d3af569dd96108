package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fpgaterm/internal/serialio"
	"fpgaterm/internal/serialio/serialiotest"
	"fpgaterm/pkg/datatypes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fixture struct {
	ctrl    *Controller
	port    *serialiotest.Port
	openErr error
	events  []bool
}

func newFixture(t *testing.T, post func(func())) *fixture {
	t.Helper()
	f := &fixture{port: serialiotest.NewPort("/dev/ttyFAKE0")}
	client := serialio.NewClient(serialio.Options{
		ReadTimeout:  10 * time.Millisecond,
		PollInterval: 2 * time.Millisecond,
		Open: func(name string, mode *serial.Mode) (serialio.Port, error) {
			if f.openErr != nil {
				return nil, f.openErr
			}
			return f.port, nil
		},
	})
	f.ctrl = New(Options{
		Client:    client,
		ListPorts: func() []string { return []string{"/dev/ttyFAKE0", "/dev/ttyFAKE1"} },
		Post:      post,
	})
	f.ctrl.OnConnectionChange(func(connected bool) { f.events = append(f.events, connected) })
	t.Cleanup(func() { client.Disconnect() })
	return f
}

func (f *fixture) connect(t *testing.T) {
	t.Helper()
	f.ctrl.Connect("/dev/ttyFAKE0")
	require.True(t, f.ctrl.IsConnected())
}

func TestSendWithoutConnection(t *testing.T) {
	f := newFixture(t, nil)

	f.ctrl.Send("1 2 3")
	assert.Equal(t, "Error: Not connected\n", f.ctrl.Output().Text())
	assert.Zero(t, f.port.Writes())
}

func TestSendOutOfRangeWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)

	f.ctrl.Send("1 2 256")
	assert.Zero(t, f.port.Writes())
	assert.Contains(t, f.ctrl.Output().Text(), "Error: invalid input (values must be 0-255): 256\n")
	assert.True(t, f.ctrl.IsConnected())
}

func TestSendNonIntegerWritesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)

	f.ctrl.Send("1 2\nthree")
	assert.Zero(t, f.port.Writes())
	assert.Contains(t, f.ctrl.Output().Text(), "Error: invalid input (must be integers)")
}

func TestSendWritesBytes(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)

	f.ctrl.Send("  10 20\n30 \n")
	assert.Equal(t, []byte{10, 20, 30}, f.port.Written())
	assert.Equal(t, 1, f.port.Writes())
	assert.True(t, strings.HasSuffix(f.ctrl.Output().Text(), "Sent: [10, 20, 30]\n"))
}

func TestSendEmptyInputIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	before := f.ctrl.Output().Text()

	f.ctrl.Send(" \n\t ")
	assert.Equal(t, before, f.ctrl.Output().Text())
	assert.Zero(t, f.port.Writes())
}

func TestSendWriteFailureDisconnects(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	f.port.FailWrite(errors.New("device unplugged"))

	f.ctrl.Send("1")
	out := f.ctrl.Output().Text()
	assert.Contains(t, out, "Error: write failed: device unplugged\n")
	assert.True(t, strings.HasSuffix(out, "Disconnected\n"))
	assert.False(t, f.ctrl.IsConnected())
	assert.Equal(t, []bool{true, false}, f.events)
}

func TestConnectEmptyPortIsSilent(t *testing.T) {
	f := newFixture(t, nil)

	f.ctrl.Connect("")
	assert.False(t, f.ctrl.IsConnected())
	assert.Empty(t, f.ctrl.Output().Text())
	assert.Empty(t, f.events)
}

func TestConnectFailureLogsCause(t *testing.T) {
	f := newFixture(t, nil)
	f.openErr = errors.New("Serial port busy")

	f.ctrl.Connect("/dev/ttyFAKE0")
	assert.False(t, f.ctrl.IsConnected())
	assert.Equal(t, "Error: Serial port busy\n", f.ctrl.Output().Text())
	assert.Empty(t, f.events)
}

func TestConnectResetsSessionState(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.mu.Lock()
	f.ctrl.state.RxBuffer = []byte{1, 2}
	f.ctrl.state.DisplayCounter = 7
	f.ctrl.mu.Unlock()

	f.connect(t)
	st := f.ctrl.State()
	assert.Empty(t, st.RxBuffer)
	assert.Zero(t, st.DisplayCounter)
	assert.Equal(t, "/dev/ttyFAKE0", st.Port)
	assert.Equal(t, "Connected to /dev/ttyFAKE0\n", f.ctrl.Output().Text())
	assert.Equal(t, []bool{true}, f.events)
	assert.Equal(t, 1, f.port.InputResets())
}

func TestToggleUsesRefreshedSelection(t *testing.T) {
	f := newFixture(t, nil)

	ports := f.ctrl.RefreshPorts()
	assert.Equal(t, []string{"/dev/ttyFAKE0", "/dev/ttyFAKE1"}, ports)
	assert.Equal(t, "/dev/ttyFAKE0", f.ctrl.State().Port)

	f.ctrl.ToggleConnection()
	assert.True(t, f.ctrl.IsConnected())
	f.ctrl.ToggleConnection()
	assert.False(t, f.ctrl.IsConnected())
	assert.Equal(t, "Connected to /dev/ttyFAKE0\nDisconnected\n", f.ctrl.Output().Text())
	assert.Equal(t, []bool{true, false}, f.events)
}

func TestRefreshPortsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.listPorts = func() []string { return []string{} }
	f.ctrl.SelectPort("/dev/ttyGONE")

	assert.Empty(t, f.ctrl.RefreshPorts())
	assert.Equal(t, "", f.ctrl.State().Port)
}

func TestDisconnectWhenIdle(t *testing.T) {
	f := newFixture(t, nil)

	f.ctrl.Disconnect()
	f.ctrl.Disconnect()
	assert.Equal(t, "Disconnected\nDisconnected\n", f.ctrl.Output().Text())
}

func TestReceiveAsciiAndHex(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	f.ctrl.Clear()

	f.port.Feed([]byte("Res"))
	f.port.Feed([]byte("ult\n"))
	assert.Eventually(t, func() bool { return f.ctrl.Output().Text() == "Result\n" }, time.Second, time.Millisecond)

	f.ctrl.SetViewMode(datatypes.RAW_HEX)
	f.port.Feed([]byte{0x0a, 0xff})
	assert.Eventually(t, func() bool { return f.ctrl.Output().Text() == "Result\n0A FF " }, time.Second, time.Millisecond)

	f.ctrl.SetViewMode(datatypes.ASCII)
	f.port.Feed([]byte{'o', 0xfe, 'k'})
	assert.Eventually(t, func() bool { return strings.HasSuffix(f.ctrl.Output().Text(), "o�k") }, time.Second, time.Millisecond)
}

func TestCosmeticSettingsDoNotAffectOutput(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.SetDataWidth(datatypes.WIDTH_16)
	f.ctrl.SetWrapColumns(2)
	f.ctrl.SetViewMode(datatypes.RAW_HEX)
	f.connect(t)
	f.ctrl.Clear()

	f.port.Feed([]byte{1, 2, 3, 4, 5})
	assert.Eventually(t, func() bool { return f.ctrl.Output().Text() == "01 02 03 04 05 " }, time.Second, time.Millisecond)
	st := f.ctrl.State()
	assert.Equal(t, datatypes.WIDTH_16, st.DataWidth)
	assert.Equal(t, 2, st.WrapColumns)
}

// queue collects posted work so tests can drain it like a UI loop would.
type queue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *queue) post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fns = append(q.fns, fn)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}

func (q *queue) drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestReceiverOutputGoesThroughPost(t *testing.T) {
	var q queue
	f := newFixture(t, q.post)
	f.connect(t)
	f.ctrl.Clear()

	f.port.Feed([]byte("abc"))
	assert.Eventually(t, func() bool { return q.len() == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, f.ctrl.Output().Text())

	q.drain()
	assert.Equal(t, "abc", f.ctrl.Output().Text())
}

func TestReadErrorEndsSession(t *testing.T) {
	var q queue
	f := newFixture(t, q.post)
	f.connect(t)

	f.port.FailRead(errors.New("input/output error"))
	assert.Eventually(t, func() bool { return q.len() == 1 }, time.Second, time.Millisecond)
	assert.False(t, f.ctrl.IsConnected())

	q.drain()
	assert.Contains(t, f.ctrl.Output().Text(), "Error: read failed: input/output error\n")
	assert.Equal(t, []bool{true, false}, f.events)
	assert.True(t, f.port.IsClosed())
}

func TestDisconnectStopsReads(t *testing.T) {
	f := newFixture(t, nil)
	f.connect(t)
	assert.Eventually(t, func() bool { return f.port.Reads() > 1 }, time.Second, time.Millisecond)

	f.ctrl.Disconnect()
	reads := f.port.Reads()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, reads, f.port.Reads())
}

func TestClearEmptiesLog(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 1000; i++ {
		f.ctrl.Send("1 2 3")
	}
	require.NotZero(t, f.ctrl.Output().Len())

	f.ctrl.mu.Lock()
	f.ctrl.state.DisplayCounter = 12
	f.ctrl.mu.Unlock()

	f.ctrl.Clear()
	assert.Empty(t, f.ctrl.Output().Text())
	assert.Zero(t, f.ctrl.State().DisplayCounter)

	f.ctrl.Clear()
	assert.Empty(t, f.ctrl.Output().Text())
}
