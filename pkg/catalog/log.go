package catalog

import (
	"fmt"
	"io"
	"sync"

	"github.com/gofrs/uuid"
)

// Logger writes REQUEST/RESPONSE/ERROR trace lines for a resolution
// session, one correlation ID per Resolve call, the way
// ResolverLogger's categories work in the original implementation.
type Logger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewLogger returns a Logger writing to w. A nil w discards everything.
func NewLogger(w io.Writer) *Logger {
	return &Logger{w: w}
}

// NewCorrelationID returns a fresh v4 UUID string identifying one
// Resolve call across its trace lines.
func NewCorrelationID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "00000000-0000-0000-0000-000000000000"
	}
	return id.String()
}

func (l *Logger) Request(corrID, what string) {
	l.line(corrID, "REQUEST", what)
}

func (l *Logger) Response(corrID, what string) {
	l.line(corrID, "RESPONSE", what)
}

func (l *Logger) Error(corrID, what string) {
	l.line(corrID, "ERROR", what)
}

func (l *Logger) line(corrID, category, what string) {
	if l == nil || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "[%s] %s %s\n", corrID, category, what)
}
