package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// parseTimestamp accepts the timestamp shapes found in exports:
// {"_seconds": n, "_nanoseconds": m} (also without underscores), an RFC 3339
// string, a numeric string, or a number of epoch milliseconds. null yields ok=false.
func parseTimestamp(raw json.RawMessage) (t time.Time, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}

	switch raw[0] {
	case '{':
		var ts struct {
			Seconds      *int64 `json:"_seconds"`
			Nanoseconds  int64  `json:"_nanoseconds"`
			PlainSeconds *int64 `json:"seconds"`
			PlainNanos   int64  `json:"nanoseconds"`
		}
		if err := json.Unmarshal(raw, &ts); err != nil {
			return time.Time{}, false, err
		}
		switch {
		case ts.Seconds != nil:
			return time.Unix(*ts.Seconds, ts.Nanoseconds).UTC(), true, nil
		case ts.PlainSeconds != nil:
			return time.Unix(*ts.PlainSeconds, ts.PlainNanos).UTC(), true, nil
		default:
			return time.Time{}, false, fmt.Errorf("timestamp object needs _seconds")
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false, err
		}
		if s == "" {
			return time.Time{}, false, nil
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid timestamp %q", s)
		}
		return t.UTC(), true, nil
	default:
		var ms json.Number
		if err := json.Unmarshal(raw, &ms); err != nil {
			return time.Time{}, false, err
		}
		n, err := ms.Int64()
		if err != nil {
			f, ferr := ms.Float64()
			if ferr != nil {
				return time.Time{}, false, fmt.Errorf("invalid timestamp %s", raw)
			}
			n = int64(f)
		}
		return time.UnixMilli(n).UTC(), true, nil
	}
}
