package logging

import (
	"log/slog"
	"slices"
	"strings"
	"time"
)

type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

// handlerScope is the state accumulated through WithAttrs and WithGroup.
// Each attribute remembers the groups that were open when it was added.
type handlerScope struct {
	attrs  []scopedAttr
	groups []string
}

func (s handlerScope) withAttrs(attrs []slog.Attr) handlerScope {
	next := handlerScope{attrs: slices.Clip(s.attrs), groups: s.groups}
	for _, a := range attrs {
		next.attrs = append(next.attrs, scopedAttr{groups: s.groups, attr: a})
	}
	return next
}

func (s handlerScope) withGroup(name string) handlerScope {
	if name == "" {
		return s
	}
	return handlerScope{attrs: s.attrs, groups: append(slices.Clip(s.groups), name)}
}

// each calls fn for every leaf attribute of the scope and then of r.
func (s handlerScope) each(r slog.Record, fn func(groups []string, a slog.Attr)) {
	for _, sa := range s.attrs {
		walkAttr(sa.groups, sa.attr, fn)
	}
	r.Attrs(func(a slog.Attr) bool {
		walkAttr(s.groups, a, fn)
		return true
	})
}

func walkAttr(groups []string, a slog.Attr, fn func([]string, slog.Attr)) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		fn(groups, a)
		return
	}
	inner := groups
	if a.Key != "" {
		inner = append(slices.Clip(groups), a.Key)
	}
	for _, ga := range a.Value.Group() {
		walkAttr(inner, ga, fn)
	}
}

func joinKey(groups []string, key, sep string) string {
	if len(groups) == 0 {
		return key
	}
	return strings.Join(groups, sep) + sep + key
}

// plainValue converts a leaf value to something that marshals cleanly to JSON.
func plainValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}
