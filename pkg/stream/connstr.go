package stream

import (
	"strconv"
	"strings"
	"time"
)

// Connection string keys. Keys are matched case-insensitively.
const (
	KeySource                = "source"
	KeyFile                  = "file"
	KeyReceiveInterval       = "receiveinterval"
	KeyReceiveOnDemand       = "receiveondemand"
	KeyStartingOffset        = "startingoffset"
	KeyChunkSize             = "chunksize"
	KeyMaxConnectionAttempts = "maxconnectionattempts"
)

const connectionStringFormat = `connection string must be key=value pairs separated by ';', ` +
	`with a required source, e.g. "source=/data/pmu.bin; receiveInterval=33"`

// ConnectionString holds the parsed key/value pairs of a connection string.
// Keys are lower case.
type ConnectionString map[string]string

// ParseConnectionString parses a flat key=value list separated by ';' or
// newlines. Values may be wrapped in braces or quotes. The source key
// (alias file) is required.
func ParseConnectionString(s string) (ConnectionString, error) {
	cs := ConnectionString{}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' || r == '\r' })
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key, value, ok := strings.Cut(field, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, &ArgumentError{Arg: field, Msg: connectionStringFormat}
		}
		cs[key] = unwrapValue(strings.TrimSpace(value))
	}

	if cs.Source() == "" {
		return nil, &ArgumentError{Arg: KeySource, Msg: connectionStringFormat}
	}
	return cs, nil
}

func unwrapValue(v string) string {
	if len(v) >= 2 {
		switch {
		case v[0] == '{' && v[len(v)-1] == '}',
			v[0] == '"' && v[len(v)-1] == '"',
			v[0] == '\'' && v[len(v)-1] == '\'':
			return strings.TrimSpace(v[1 : len(v)-1])
		}
	}
	return v
}

// Source returns the source value, falling back to the file alias.
func (cs ConnectionString) Source() string {
	if v := cs[KeySource]; v != "" {
		return v
	}
	return cs[KeyFile]
}

// settings holds the optional keys of a connection string after
// validation. Nil fields were not given.
type settings struct {
	chunkSize       *int
	startingOffset  *int64
	maxAttempts     *int
	receiveInterval *time.Duration
	receiveOnDemand *bool
}

// settings parses and validates the optional keys.
func (cs ConnectionString) settings() (settings, error) {
	var s settings
	if v, ok := cs[KeyChunkSize]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, &ArgumentError{Arg: KeyChunkSize, Msg: "must be an integer"}
		}
		if err := checkChunkSize(n); err != nil {
			return s, err
		}
		s.chunkSize = &n
	}
	if v, ok := cs[KeyStartingOffset]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return s, &ArgumentError{Arg: KeyStartingOffset, Msg: "must be an integer"}
		}
		if err := checkStartingOffset(n); err != nil {
			return s, err
		}
		s.startingOffset = &n
	}
	if v, ok := cs[KeyMaxConnectionAttempts]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, &ArgumentError{Arg: KeyMaxConnectionAttempts, Msg: "must be an integer"}
		}
		if err := checkMaxConnectionAttempts(n); err != nil {
			return s, err
		}
		s.maxAttempts = &n
	}
	if v, ok := cs[KeyReceiveInterval]; ok {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return s, &ArgumentError{Arg: KeyReceiveInterval, Msg: "must be -1 or a number of milliseconds"}
		}
		d := Continuous
		if ms != -1 {
			d = time.Duration(ms) * time.Millisecond
		}
		if err := checkReceiveInterval(d); err != nil {
			return s, err
		}
		s.receiveInterval = &d
	}
	if v, ok := cs[KeyReceiveOnDemand]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s, &ArgumentError{Arg: KeyReceiveOnDemand, Msg: "must be true or false"}
		}
		s.receiveOnDemand = &b
	}
	return s, nil
}

// apply validates every optional key and then commits them to c together;
// on error c is unchanged. Receive interval is applied before receive on
// demand, so an explicit receiveOnDemand=true wins.
func (cs ConnectionString) apply(c *Client) error {
	s, err := cs.settings()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if s.chunkSize != nil {
		c.chunkSize = *s.chunkSize
	}
	if s.startingOffset != nil {
		c.startingOffset = *s.startingOffset
	}
	if s.maxAttempts != nil {
		c.maxAttempts = *s.maxAttempts
	}
	if s.receiveInterval != nil {
		c.receiveInterval = *s.receiveInterval
		if *s.receiveInterval > 0 {
			c.receiveOnDemand = false
		}
	}
	if s.receiveOnDemand != nil {
		c.receiveOnDemand = *s.receiveOnDemand
		if *s.receiveOnDemand {
			c.receiveInterval = Continuous
		}
	}
	c.mu.Unlock()

	if s.receiveInterval != nil || s.receiveOnDemand != nil {
		c.signalReconfigure()
	}
	return nil
}

func checkChunkSize(n int) error {
	if n <= 0 {
		return &RangeError{Setting: "chunk size", Value: n, Allowed: "positive"}
	}
	return nil
}

func checkStartingOffset(n int64) error {
	if n < 0 {
		return &RangeError{Setting: "starting offset", Value: n, Allowed: "zero or positive"}
	}
	return nil
}

func checkMaxConnectionAttempts(n int) error {
	if n != UnlimitedAttempts && n <= 0 {
		return &RangeError{Setting: "max connection attempts", Value: n, Allowed: "-1 (unlimited) or positive"}
	}
	return nil
}

func checkReceiveInterval(d time.Duration) error {
	if d != Continuous && d <= 0 {
		return &RangeError{Setting: "receive interval", Value: d, Allowed: "-1 (continuous) or positive"}
	}
	return nil
}
