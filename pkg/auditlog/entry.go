package auditlog

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Entry is one recorded audit line.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// String renders the entry as "message key=value ...", without time or level.
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, a := range flatten("", e.Attrs) {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
	}
	return b.String()
}

// Attr returns the value of the first attribute with the given dotted key.
func (e Entry) Attr(key string) (slog.Value, bool) {
	for _, a := range flatten("", e.Attrs) {
		if a.Key == key {
			return a.Value, true
		}
	}
	return slog.Value{}, false
}

// MarshalJSON encodes attributes as a flat object with dotted group keys.
func (e Entry) MarshalJSON() ([]byte, error) {
	flat := flatten("", e.Attrs)
	attrs := make(map[string]any, len(flat))
	for _, a := range flat {
		attrs[a.Key] = jsonValue(a.Value)
	}
	return json.Marshal(struct {
		Time    time.Time      `json:"time"`
		Level   string         `json:"level"`
		Message string         `json:"message"`
		Attrs   map[string]any `json:"attrs,omitempty"`
	}{
		Time:    e.Time,
		Level:   e.Level.String(),
		Message: e.Message,
		Attrs:   attrs,
	})
}

// Messages returns the rendered form of every entry.
func Messages(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

func flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		v := a.Value.Resolve()
		if a.Key == "" && v.Kind() != slog.KindGroup {
			continue
		}
		key := a.Key
		if prefix != "" && key != "" {
			key = prefix + "." + key
		} else if prefix != "" {
			key = prefix
		}
		if v.Kind() == slog.KindGroup {
			out = append(out, flatten(key, v.Group())...)
			continue
		}
		out = append(out, slog.Attr{Key: key, Value: v})
	}
	return out
}

func jsonValue(v slog.Value) any {
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
		return v.Time()
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}
