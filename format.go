package nanolog

import (
	"strconv"
	"time"
)

// Formatter turns one record into bytes. Implementations must be pure and
// bounded: AppendFormat runs on the consumer's critical path and is only
// ever invoked from the consumer goroutine.
type Formatter interface {
	// AppendFormat appends the rendered record to dst and returns the
	// extended buffer.
	AppendFormat(dst []byte, rec *Record) []byte
}

// TimestampStyle selects how the plain-text formatter renders timestamps.
// The JSON formatter ignores the style and always emits numeric
// nanoseconds to keep the machine format compact and stable.
type TimestampStyle int

const (
	// TimestampNumeric renders the raw UnixNano integer.
	TimestampNumeric TimestampStyle = iota
	// TimestampISO8601 renders an ISO-8601 string with a fixed UTC offset.
	TimestampISO8601
)

const iso8601Layout = "2006-01-02T15:04:05.000000000Z07:00"

// ANSI color codes per level for colored console output
func levelColor(level int64) string {
	switch {
	case level <= LevelTrace:
		return "90" // gray
	case level <= LevelDebug:
		return "36" // cyan
	case level <= LevelInfo:
		return "32" // green
	case level <= LevelWarn:
		return "33" // yellow
	default:
		return "31" // red
	}
}

// TextFormatter renders records as
// "[timestamp] [LEVEL] [target:line] message\n".
type TextFormatter struct {
	style TimestampStyle
	loc   *time.Location
	color bool
}

// NewTextFormatter creates a plain-text formatter with numeric timestamps.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{style: TimestampNumeric}
}

// NewTextFormatterISO8601 creates a plain-text formatter rendering
// timestamps as ISO-8601 with the given fixed offset, in seconds east of
// UTC.
func NewTextFormatterISO8601(offsetSeconds int) *TextFormatter {
	return &TextFormatter{
		style: TimestampISO8601,
		loc:   time.FixedZone("", offsetSeconds),
	}
}

// WithColor enables ANSI level coloring.
func (f *TextFormatter) WithColor(enable bool) *TextFormatter {
	f.color = enable
	return f
}

func (f *TextFormatter) AppendFormat(dst []byte, rec *Record) []byte {
	dst = append(dst, '[')
	dst = f.appendTimestamp(dst, rec.Timestamp)
	dst = append(dst, "] "...)

	if f.color {
		dst = append(dst, "\x1b["...)
		dst = append(dst, levelColor(rec.Level)...)
		dst = append(dst, 'm')
		dst = appendPaddedLevel(dst, rec.Level)
		dst = append(dst, "\x1b[0m "...)
	} else {
		dst = appendPaddedLevel(dst, rec.Level)
		dst = append(dst, ' ')
	}

	dst = append(dst, '[')
	dst = append(dst, rec.Target...)
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, int64(rec.Line), 10)
	dst = append(dst, "] "...)
	dst = append(dst, rec.Message...)
	dst = append(dst, '\n')
	return dst
}

func (f *TextFormatter) appendTimestamp(dst []byte, ns int64) []byte {
	if f.style == TimestampISO8601 {
		return time.Unix(0, ns).In(f.loc).AppendFormat(dst, iso8601Layout)
	}
	return strconv.AppendInt(dst, ns, 10)
}

// appendPaddedLevel writes "[LEVEL]" padded to five characters.
func appendPaddedLevel(dst []byte, level int64) []byte {
	name := levelToString(level)
	dst = append(dst, '[')
	dst = append(dst, name...)
	for i := len(name); i < 5; i++ {
		dst = append(dst, ' ')
	}
	return append(dst, ']')
}

// JSONFormatter renders records as a compact single-line JSON object. The
// timestamp field is always numeric nanoseconds regardless of any display
// style configured for text output.
type JSONFormatter struct {
	pretty bool
}

// NewJSONFormatter creates a compact JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// NewJSONFormatterPretty creates an indented JSON formatter.
func NewJSONFormatterPretty() *JSONFormatter {
	return &JSONFormatter{pretty: true}
}

func (f *JSONFormatter) AppendFormat(dst []byte, rec *Record) []byte {
	if f.pretty {
		return f.appendPretty(dst, rec)
	}
	dst = append(dst, `{"timestamp":`...)
	dst = strconv.AppendInt(dst, rec.Timestamp, 10)
	dst = append(dst, `,"level":"`...)
	dst = append(dst, levelToString(rec.Level)...)
	dst = append(dst, `","target":"`...)
	dst = appendJSONString(dst, rec.Target)
	dst = append(dst, `","file":"`...)
	dst = appendJSONString(dst, rec.File)
	dst = append(dst, `","line":`...)
	dst = strconv.AppendInt(dst, int64(rec.Line), 10)
	dst = append(dst, `,"message":"`...)
	dst = appendJSONString(dst, rec.Message)
	dst = append(dst, `"}`...)
	dst = append(dst, '\n')
	return dst
}

func (f *JSONFormatter) appendPretty(dst []byte, rec *Record) []byte {
	dst = append(dst, "{\n  \"timestamp\": "...)
	dst = strconv.AppendInt(dst, rec.Timestamp, 10)
	dst = append(dst, ",\n  \"level\": \""...)
	dst = append(dst, levelToString(rec.Level)...)
	dst = append(dst, "\",\n  \"target\": \""...)
	dst = appendJSONString(dst, rec.Target)
	dst = append(dst, "\",\n  \"file\": \""...)
	dst = appendJSONString(dst, rec.File)
	dst = append(dst, "\",\n  \"line\": "...)
	dst = strconv.AppendInt(dst, int64(rec.Line), 10)
	dst = append(dst, ",\n  \"message\": \""...)
	dst = appendJSONString(dst, rec.Message)
	dst = append(dst, "\"\n}\n"...)
	return dst
}

// SimpleFormatter renders "[LEVEL] message\n" with no metadata.
type SimpleFormatter struct{}

// NewSimpleFormatter creates the minimal formatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{}
}

func (f *SimpleFormatter) AppendFormat(dst []byte, rec *Record) []byte {
	dst = append(dst, '[')
	dst = append(dst, levelToString(rec.Level)...)
	dst = append(dst, "] "...)
	dst = append(dst, rec.Message...)
	dst = append(dst, '\n')
	return dst
}

const hexChars = "0123456789abcdef"

// appendJSONString appends str, escaping JSON special characters.
func appendJSONString(dst []byte, str string) []byte {
	lenStr := len(str)
	for i := 0; i < lenStr; {
		if c := str[i]; c < ' ' || c == '"' || c == '\\' {
			switch c {
			case '\\', '"':
				dst = append(dst, '\\', c)
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			default:
				dst = append(dst, `\u00`...)
				dst = append(dst, hexChars[c>>4], hexChars[c&0xF])
			}
			i++
		} else {
			start := i
			for i < lenStr && str[i] >= ' ' && str[i] != '"' && str[i] != '\\' {
				i++
			}
			dst = append(dst, str[start:i]...)
		}
	}
	return dst
}
