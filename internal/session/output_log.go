package session

import (
	"strings"
	"sync"
)

// OutputLog is the append-only scrollback shown in the "System Output" area.
// OnChange, when set, is called after every mutation with the full text.
type OutputLog struct {
	mu       sync.Mutex
	buf      strings.Builder
	OnChange func(text string)
}

// Log appends line plus a newline.
func (l *OutputLog) Log(line string) {
	l.append(line + "\n")
}

// LogOutput appends text verbatim so partial lines from consecutive chunks join up.
func (l *OutputLog) LogOutput(text string) {
	l.append(text)
}

// Clear empties the buffer.
func (l *OutputLog) Clear() {
	l.mu.Lock()
	l.buf.Reset()
	l.mu.Unlock()
	l.notify("")
}

// Text returns the current buffer contents.
func (l *OutputLog) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func (l *OutputLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Len()
}

func (l *OutputLog) append(s string) {
	l.mu.Lock()
	l.buf.WriteString(s)
	text := l.buf.String()
	l.mu.Unlock()
	l.notify(text)
}

func (l *OutputLog) notify(text string) {
	if l.OnChange != nil {
		l.OnChange(text)
	}
}
