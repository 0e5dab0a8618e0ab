package session

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/omnifarius/blackjack/internal/game"
)

// Announcer is the display sink the engine talks through. Announce is
// fire-and-forget; the engine never waits on delivery.
type Announcer interface {
	Announce(table game.TableID, text string)
}

// LogAnnouncer writes announcements to a structured logger.
type LogAnnouncer struct {
	logger *log.Logger
}

// NewLogAnnouncer creates an announcer backed by the given logger.
func NewLogAnnouncer(logger *log.Logger) *LogAnnouncer {
	return &LogAnnouncer{logger: logger.WithPrefix("table")}
}

// Announce implements Announcer.
func (a *LogAnnouncer) Announce(table game.TableID, text string) {
	a.logger.Info(text, "table", table)
}

// WriterAnnouncer writes announcements as plain lines, used by the CLI.
type WriterAnnouncer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterAnnouncer creates an announcer that writes to w.
func NewWriterAnnouncer(w io.Writer) *WriterAnnouncer {
	return &WriterAnnouncer{w: w}
}

// Announce implements Announcer.
func (a *WriterAnnouncer) Announce(table game.TableID, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.w, "[%s] %s\n", table, text)
}
