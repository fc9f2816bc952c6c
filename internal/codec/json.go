package codec

import (
	"strconv"
	"strings"

	"github.com/niyodushima/finance-dashboard/internal/core"
)

// The response shapes here are ad hoc per endpoint, so bodies are assembled
// by explicit concatenation instead of a generic serializer. Numbers always
// use a dot decimal separator regardless of host locale.

// Member is one key/value pair of a JSON object. The value must already be
// encoded JSON.
type Member struct {
	Key   string
	Value string
}

// M builds a Member.
func M(key, value string) Member {
	return Member{Key: key, Value: value}
}

// Object encodes members as a JSON object in the given order.
func Object(members ...Member) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(String(m.Key))
		b.WriteByte(':')
		b.WriteString(m.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// Array encodes already-encoded elements as a JSON array.
func Array(elems ...string) string {
	return "[" + strings.Join(elems, ",") + "]"
}

// String encodes s as a JSON string, escaping backslash, double quote, and
// control characters.
func String(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Number encodes a float with minimal digits and a dot separator.
func Number(v float64) string {
	return core.FormatAmount(v)
}

// Int encodes an integer.
func Int(v int64) string {
	return strconv.FormatInt(v, 10)
}

// Bool encodes a boolean.
func Bool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
