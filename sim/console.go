package sim

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thesyncim/edge"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiCyan   = "\x1b[36m"
)

// consoleHandler is a slog.Handler writing SDK style log lines to the
// logger consoles registered at Init. Each line ends with \r\n.
type consoleHandler struct {
	consoles []edge.LoggerConsole
	module   string
	prefix   string // preformatted attrs
	group    string
	now      func() time.Time
}

func newConsoleHandler(module string, consoles []edge.LoggerConsole) *consoleHandler {
	return &consoleHandler{consoles: consoles, module: module, now: time.Now}
}

// consoleLevel maps a slog level onto the SDK's console levels.
func consoleLevel(l slog.Level) edge.LogLevel {
	switch {
	case l >= slog.LevelError:
		return edge.LogLevelError
	case l >= slog.LevelWarn:
		return edge.LogLevelWarn
	case l >= slog.LevelInfo:
		return edge.LogLevelInfo
	default:
		return edge.LogLevelDebug
	}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	lvl := consoleLevel(l)
	for _, c := range h.consoles {
		if lvl <= c.Level {
			return true
		}
	}
	return false
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	lvl := consoleLevel(r.Level)
	ts := r.Time
	if ts.IsZero() {
		ts = h.now()
	}

	var body bytes.Buffer
	body.WriteString(r.Message)
	body.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&body, h.group, a)
		return true
	})

	for _, c := range h.consoles {
		if lvl > c.Level || c.Output == nil {
			continue
		}
		var line bytes.Buffer
		color := ""
		if c.SupportColor {
			color = levelColor(lvl)
			line.WriteString(color)
		}
		fmt.Fprintf(&line, "[%s][%s]-[%s] ", ts.Format("2006-01-02 15:04:05.000"), levelName(lvl), h.module)
		line.Write(body.Bytes())
		if color != "" {
			line.WriteString(ansiReset)
		}
		line.WriteString("\r\n")
		c.Output(line.Bytes())
	}
	return nil
}

func (h *consoleHandler) appendAttr(b *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, key, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Any())
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	var b bytes.Buffer
	b.WriteString(h.prefix)
	for _, a := range attrs {
		h.appendAttr(&b, h.group, a)
	}
	h2.prefix = b.String()
	return &h2
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	if h2.group != "" {
		h2.group += "." + name
	} else {
		h2.group = name
	}
	return &h2
}

func levelName(l edge.LogLevel) string {
	switch l {
	case edge.LogLevelError:
		return "Error"
	case edge.LogLevelWarn:
		return "Warn"
	case edge.LogLevelInfo:
		return "Info"
	default:
		return "Debug"
	}
}

func levelColor(l edge.LogLevel) string {
	switch l {
	case edge.LogLevelError:
		return ansiRed
	case edge.LogLevelWarn:
		return ansiYellow
	case edge.LogLevelInfo:
		return ansiGreen
	default:
		return ansiCyan
	}
}
