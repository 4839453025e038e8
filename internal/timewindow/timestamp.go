package timewindow

import (
	"time"
)

// Timestamp is an explicit unset-or-set wrapper around time.Time. Interaction
// records use it instead of zero-value sentinels so eligibility logic branches
// on a tag, never on a null check. Malformed serialized values decode as
// unset, which keeps a corrupt timestamp from permanently locking a record.
type Timestamp struct {
	t   time.Time
	set bool
}

func At(t time.Time) Timestamp {
	return Timestamp{t: t, set: true}
}

func Unset() Timestamp {
	return Timestamp{}
}

func (ts Timestamp) IsSet() bool {
	return ts.set
}

// Time returns the wrapped time. Zero time when unset.
func (ts Timestamp) Time() time.Time {
	return ts.t
}

// After reports whether ts is strictly later than other. A set timestamp is
// always later than an unset one; two unset timestamps are equal.
func (ts Timestamp) After(other Timestamp) bool {
	if !ts.set {
		return false
	}
	if !other.set {
		return true
	}
	return ts.t.After(other.t)
}

func (ts Timestamp) Equal(other Timestamp) bool {
	if ts.set != other.set {
		return false
	}
	return !ts.set || ts.t.Equal(other.t)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.set {
		return []byte("null"), nil
	}
	return []byte(`"` + ts.t.Format(time.RFC3339Nano) + `"`), nil
}

// UnmarshalJSON decodes an RFC3339 string. null, empty and unparseable
// values all decode as unset rather than failing the whole snapshot.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*ts = Timestamp{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		*ts = Timestamp{}
		return nil
	}
	*ts = Timestamp{t: parsed, set: true}
	return nil
}

// UnixNano returns the wrapped time as unix nanoseconds, 0 when unset.
// Used by the remote store columns.
func (ts Timestamp) UnixNano() int64 {
	if !ts.set {
		return 0
	}
	return ts.t.UnixNano()
}

// FromUnixNano is the inverse of UnixNano: 0 maps back to unset.
func FromUnixNano(n int64) Timestamp {
	if n == 0 {
		return Timestamp{}
	}
	return At(time.Unix(0, n))
}
