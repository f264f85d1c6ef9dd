// Package logger provides the leveled console logger used by fly
// commands. Output goes to a single writer with [HH:MM:SS] timestamps;
// color is enabled automatically when writing to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// Console writes leveled, timestamped messages to a writer. It is safe
// for concurrent use.
type Console struct {
	writer   io.Writer
	minLevel int
	mutex    sync.Mutex
	colored  bool
}

// NewConsole creates a Console writing to w at the given minimum level.
// Valid levels: debug, info, warn, error (case-insensitive); anything
// else defaults to info. A nil writer discards all output.
func NewConsole(w io.Writer, level string) *Console {
	return &Console{
		writer:   w,
		minLevel: parseLevel(level),
		colored:  isTerminal(w),
	}
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// isTerminal reports whether w is a TTY. NO_COLOR disables color even on
// terminals.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// Debugf logs a debug-level message.
func (c *Console) Debugf(format string, args ...interface{}) {
	c.logf(levelDebug, "DEBUG", color.FgHiBlack, format, args...)
}

// Infof logs an info-level message.
func (c *Console) Infof(format string, args ...interface{}) {
	c.logf(levelInfo, "INFO", color.FgCyan, format, args...)
}

// Warnf logs a warn-level message.
func (c *Console) Warnf(format string, args ...interface{}) {
	c.logf(levelWarn, "WARN", color.FgYellow, format, args...)
}

// Errorf logs an error-level message.
func (c *Console) Errorf(format string, args ...interface{}) {
	c.logf(levelError, "ERROR", color.FgRed, format, args...)
}

func (c *Console) logf(level int, tag string, attr color.Attribute, format string, args ...interface{}) {
	if c == nil || c.writer == nil || level < c.minLevel {
		return
	}

	timestamp := time.Now().Format("15:04:05")
	label := fmt.Sprintf("[%s]", tag)
	if c.colored {
		label = color.New(attr).Sprintf("[%s]", tag)
	}
	message := fmt.Sprintf(format, args...)

	c.mutex.Lock()
	defer c.mutex.Unlock()
	fmt.Fprintf(c.writer, "[%s] %s %s\n", timestamp, label, message)
}
