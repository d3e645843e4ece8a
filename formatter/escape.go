package formatter

import "strings"

func quote(s string) string {
	var buf strings.Builder
	writeQuoted(&buf, s)
	return buf.String()
}

func writeQuoted(buf *strings.Builder, s string) {
	buf.WriteByte('"')
	buf.WriteString(escapeString(s))
	buf.WriteByte('"')
}

// escapeString escapes special characters using C-style escape sequences, so
// that the parser reads back the original value.
func escapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\t\r") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 10)

	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}

	return buf.String()
}
