package nanolog

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Record is the immutable value carried through the ring buffer. The
// timestamp is always stored as a UnixNano integer; human-readable
// rendering is a Formatter concern.
type Record struct {
	Level     int64
	Timestamp int64 // nanoseconds since the Unix epoch
	Target    string
	File      string
	Line      int
	Message   string
}

// NewRecord creates a record with the current timestamp.
func NewRecord(level int64, target, message string) Record {
	return Record{
		Level:     level,
		Timestamp: time.Now().UnixNano(),
		Target:    target,
		Message:   message,
	}
}

// renderArgs converts variadic log arguments into a single space-separated
// message string on the producer side, so slot contents never alias caller
// memory.
func renderArgs(args []any) string {
	if len(args) == 1 {
		if s, ok := args[0].(string); ok {
			return s
		}
	}
	buf := make([]byte, 0, 64)
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = appendValue(buf, arg)
	}
	return string(buf)
}

// appendValue converts any value to its string representation.
// Falls back to go-spew with data structure information for types that are
// not explicitly supported.
func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Duration:
		return append(buf, val.String()...)
	case time.Time:
		return val.AppendFormat(buf, time.RFC3339Nano)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	case []byte:
		return hex.AppendEncode(buf, val) // prevent special character corruption
	default:
		// For structs, maps, pointers and other aggregates, delegate to spew
		// for a compact, deterministic dump.
		var b bytes.Buffer
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, val)
		return append(buf, bytes.TrimSpace(b.Bytes())...)
	}
}
