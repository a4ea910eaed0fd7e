package measurement

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key parsing errors.
var (
	// ErrInvalidKey indicates a string that is not of the form SOURCE:id.
	ErrInvalidKey = errors.New("invalid measurement key")
)

// Undefined is the zero key. It has an empty source and id 0.
var Undefined = Key{}

// Key identifies one measurement channel.
// The zero value is Undefined and is ready to use.
type Key struct {
	source string
	id     int32
	hash   uint32
}

// NewKey creates a key for the given source and id.
// The source is normalized to upper case.
func NewKey(source string, id int32) Key {
	source = normalizeSource(source)
	return Key{
		source: source,
		id:     id,
		hash:   deriveHash(source, id),
	}
}

// ParseKey parses a key rendered by Key.String, e.g. "PPA:12".
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 || i == len(s)-1 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 32)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	return NewKey(s[:i], int32(id)), nil
}

// Source returns the upper-case source name.
func (k Key) Source() string {
	return k.source
}

// ID returns the numeric channel id within the source.
func (k Key) ID() int32 {
	return k.id
}

// Hash returns the cached hash of source and id.
func (k Key) Hash() uint32 {
	return k.hash
}

// SetSource changes the source and re-derives the hash.
func (k *Key) SetSource(source string) {
	k.source = normalizeSource(source)
	k.hash = deriveHash(k.source, k.id)
}

// SetID changes the id and re-derives the hash.
func (k *Key) SetID(id int32) {
	k.id = id
	k.hash = deriveHash(k.source, k.id)
}

// Equal reports whether k and other name the same channel.
// Differing hashes reject quickly; matching hashes are confirmed field by
// field so that a hash collision never produces equality.
func (k Key) Equal(other Key) bool {
	if k.hash != other.hash {
		return false
	}
	return k.id == other.id && k.source == other.source
}

// Compare orders keys by source (ordinal) and then by id.
// It returns -1, 0 or +1 and is suitable for slices.SortFunc.
func (k Key) Compare(other Key) int {
	if c := strings.Compare(k.source, other.source); c != 0 {
		return c
	}
	switch {
	case k.id < other.id:
		return -1
	case k.id > other.id:
		return 1
	default:
		return 0
	}
}

// IsUndefined reports whether k has neither a source nor an id.
func (k Key) IsUndefined() bool {
	return k.source == "" && k.id == 0
}

// String renders the key as SOURCE:id.
func (k Key) String() string {
	return k.source + ":" + strconv.FormatInt(int64(k.id), 10)
}

func normalizeSource(source string) string {
	return strings.ToUpper(strings.TrimSpace(source))
}

// deriveHash folds a 64-bit xxhash of source and id into 32 bits.
// The undefined key hashes to 0 so that the zero value stays consistent.
func deriveHash(source string, id int32) uint32 {
	if source == "" && id == 0 {
		return 0
	}
	d := xxhash.New()
	_, _ = d.WriteString(source)
	var b [5]byte
	b[0] = ':'
	binary.BigEndian.PutUint32(b[1:], uint32(id))
	_, _ = d.Write(b[:])
	sum := d.Sum64()
	return uint32(sum) ^ uint32(sum>>32)
}
