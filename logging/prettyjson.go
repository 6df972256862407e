// Package logging holds the slog setup shared by the command line tools.
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// PrettyJSONHandler writes each record as an indented JSON object. Keys keep
// the order they were logged in, after time, level, msg and source.
// It favours readability over throughput.
type PrettyJSONHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	addSource bool

	// preformatted holds the attrs from WithAttrs, already grouped.
	preformatted []field
	groups       []string
}

// field is one key of the output object. Exactly one of value and children
// is used.
type field struct {
	key      string
	value    any
	children []field
}

func NewPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyJSONHandler {
	h := &PrettyJSONHandler{w: w, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.addSource = opts.AddSource
	}
	return h
}

func (h *PrettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	top := []field{
		{key: slog.TimeKey, value: when.Format(time.RFC3339Nano)},
		{key: slog.LevelKey, value: r.Level.String()},
		{key: slog.MessageKey, value: r.Message},
	}
	if h.addSource {
		if src := sourceFromPC(r.PC); src != "" {
			top = append(top, field{key: slog.SourceKey, value: src})
		}
	}

	var attrs []field
	attrs = append(attrs, h.preformatted...)
	var own []field
	r.Attrs(func(a slog.Attr) bool {
		own = appendAttr(own, a)
		return true
	})
	attrs = mergeFields(attrs, nest(h.groups, own))
	top = mergeFields(top, attrs)

	var raw bytes.Buffer
	writeObject(&raw, top)
	var out bytes.Buffer
	if err := json.Indent(&out, raw.Bytes(), "", "  "); err != nil {
		out.Reset()
		fmt.Fprintf(&out, "{\"time\":%q,\"level\":%q,\"msg\":%q}", when.Format(time.RFC3339Nano), r.Level.String(), r.Message)
	}
	out.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(out.Bytes())
	return err
}

func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var fs []field
	for _, a := range attrs {
		fs = appendAttr(fs, a)
	}
	clone := *h
	clone.preformatted = mergeFields(append([]field(nil), h.preformatted...), nest(h.groups, fs))
	return &clone
}

func (h *PrettyJSONHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// nest wraps fs in the given groups, outermost first.
func nest(groups []string, fs []field) []field {
	if len(fs) == 0 {
		return nil
	}
	for i := len(groups) - 1; i >= 0; i-- {
		fs = []field{{key: groups[i], children: fs}}
	}
	return fs
}

// mergeFields appends src to dst, merging groups that share a key.
func mergeFields(dst, src []field) []field {
	for _, f := range src {
		merged := false
		if f.children != nil {
			for i := range dst {
				if dst[i].key == f.key && dst[i].children != nil {
					dst[i].children = mergeFields(append([]field(nil), dst[i].children...), f.children)
					merged = true
					break
				}
			}
		}
		if !merged {
			dst = append(dst, f)
		}
	}
	return dst
}

func appendAttr(fs []field, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fs
	}
	if a.Value.Kind() == slog.KindGroup {
		var children []field
		for _, ga := range a.Value.Group() {
			children = appendAttr(children, ga)
		}
		if len(children) == 0 {
			return fs
		}
		// An unnamed group is inlined.
		if a.Key == "" {
			return append(fs, children...)
		}
		return append(fs, field{key: a.Key, children: children})
	}
	return append(fs, field{key: a.Key, value: valueToAny(a.Value)})
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return x
		}
	}
	return v.String()
}

func writeObject(buf *bytes.Buffer, fs []field) {
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.key))
		buf.WriteByte(':')
		if f.children != nil {
			writeObject(buf, f.children)
			continue
		}
		b, err := json.Marshal(f.value)
		if err != nil {
			b, _ = json.Marshal(fmt.Sprint(f.value))
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
}

func sourceFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}
	file := f.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return file + ":" + strconv.Itoa(f.Line)
}
