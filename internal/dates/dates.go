// Package dates coerces the due-date shapes found in stored documents into
// time.Time and provides the day arithmetic shared by the views.
package dates

import (
	"math"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayLayout is the key format for calendar days.
const DayLayout = "2006-01-02"

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// ToTime accepts a native time, a raw timestamp (Unix milliseconds or a date
// string) or a backend timestamp object ({seconds, nanoseconds}). Strings
// without an offset are read as wall time in loc (time.Local when nil). It
// never panics; ok is false for missing or unparseable values.
func ToTime(v interface{}, loc *time.Location) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return *d, true
	case primitive.DateTime:
		return d.Time(), true
	case primitive.Timestamp:
		return time.Unix(int64(d.T), 0), true
	case int:
		return time.UnixMilli(int64(d)), true
	case int32:
		return time.UnixMilli(int64(d)), true
	case int64:
		return time.UnixMilli(d), true
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(d)), true
	case string:
		return parseString(d, loc)
	case map[string]interface{}:
		return fromSecondsMap(d)
	case primitive.M:
		return fromSecondsMap(d)
	case primitive.D:
		return fromSecondsMap(d.Map())
	}
	return fromSecondsStruct(v)
}

func parseString(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range stringLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromSecondsMap(m map[string]interface{}) (time.Time, bool) {
	secs, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds", "nanos")
	return time.Unix(secs, nanos), true
}

func numberField(m map[string]interface{}, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case int:
			return int64(n), true
		case int32:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			return int64(n), true
		}
	}
	return 0, false
}

// fromSecondsStruct handles timestamp structs such as {Seconds int64; Nanos int32}.
func fromSecondsStruct(v interface{}) (time.Time, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return time.Time{}, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return time.Time{}, false
	}
	secs := rv.FieldByName("Seconds")
	if !secs.IsValid() || !secs.CanInt() {
		return time.Time{}, false
	}
	var nanos int64
	for _, name := range []string{"Nanoseconds", "Nanos"} {
		if f := rv.FieldByName(name); f.IsValid() && f.CanInt() {
			nanos = f.Int()
			break
		}
	}
	return time.Unix(secs.Int(), nanos), true
}

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// DayKey formats the calendar day of t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key as local midnight in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, strings.TrimSpace(raw), loc)
}

// Within reports whether t lies in [start, end], both ends inclusive.
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
