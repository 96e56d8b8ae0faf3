package format

import (
	"strings"
	"time"

	"panehist/internal/history"
)

// newlineMark stands in for embedded newlines so every encoded record
// occupies exactly one line.
const newlineMark = " ↵ "

// timeLayout is minute precision; two records in the same minute are
// indistinguishable by their prefix alone.
const timeLayout = "2006-01-02 15:04"

// Line renders one record as "[YYYY-MM-DD HH:MM] display" with the
// timestamp in local time and newlines encoded. ok is false for records
// with no timestamp or an empty display, which have no usable line form.
func Line(rec history.Record) (string, bool) {
	if rec.Timestamp == 0 || rec.Display == "" {
		return "", false
	}
	ts := time.UnixMilli(rec.Timestamp).Format(timeLayout)
	display := strings.ReplaceAll(rec.Display, "\n", newlineMark)
	return "[" + ts + "] " + display, true
}

// Lines renders records in order, dropping the ones Line rejects.
func Lines(records []history.Record) []string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		if line, ok := Line(rec); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// Decode restores raw multi-line text from an encoded line: the leading
// timestamp prefix is stripped when present and every newline mark becomes
// a real newline. A mark the user literally typed is indistinguishable from
// an encoded newline and decodes to a newline as well.
func Decode(line string) string {
	line = stripTimePrefix(line)
	return strings.ReplaceAll(line, newlineMark, "\n")
}

// stripTimePrefix removes a leading "[YYYY-MM-DD HH:MM] " when the shape
// matches. Digit positions must hold digits and separator positions their
// separators; the digit values themselves are not validated.
func stripTimePrefix(line string) string {
	const prefixLen = len("[2006-01-02 15:04] ")
	if len(line) < prefixLen {
		return line
	}
	for i := 0; i < prefixLen; i++ {
		c := line[i]
		switch i {
		case 0:
			if c != '[' {
				return line
			}
		case 5, 8:
			if c != '-' {
				return line
			}
		case 11, 18:
			if c != ' ' {
				return line
			}
		case 14:
			if c != ':' {
				return line
			}
		case 17:
			if c != ']' {
				return line
			}
		default:
			if c < '0' || c > '9' {
				return line
			}
		}
	}
	return line[prefixLen:]
}
