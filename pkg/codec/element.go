package codec

import "fmt"

// Element is a protocol element that can be serialized to and parsed from
// a byte buffer.
type Element interface {
	// Name identifies the element in errors and logs.
	Name() string

	// HeaderLength is the encoded header size in bytes.
	HeaderLength() int

	// HeaderImage returns the encoded header.
	HeaderImage() []byte

	// BodyLength is the encoded body size in bytes. For elements whose
	// length is carried in their header it is valid once the header has
	// been produced or parsed.
	BodyLength() int

	// BodyImage returns the encoded body. Its length must equal BodyLength.
	BodyImage() []byte

	// ParseHeaderImage parses the header at buf[start:] and returns the
	// number of bytes consumed.
	ParseHeaderImage(buf []byte, start int) (int, error)

	// ParseBodyImage parses the body at buf[start:] and returns the number
	// of bytes consumed. Callers guarantee that BodyLength bytes are
	// available.
	ParseBodyImage(buf []byte, start int) (int, error)
}

// Checksummer is implemented by elements that carry their own checksum.
type Checksummer interface {
	Checksum() Checksum
}

// ChecksumOf returns the checksum algorithm of e, or NoChecksum.
func ChecksumOf(e Element) Checksum {
	if c, ok := e.(Checksummer); ok {
		if cs := c.Checksum(); cs != nil {
			return cs
		}
	}
	return NoChecksum
}

// EncodedLength returns the full encoded size of e.
func EncodedLength(e Element) int {
	return e.HeaderLength() + e.BodyLength() + ChecksumOf(e).Size()
}

// Encode produces header ++ body ++ checksum for e.
func Encode(e Element) ([]byte, error) {
	header := e.HeaderImage()
	body := e.BodyImage()
	if len(header) != e.HeaderLength() {
		return nil, fmt.Errorf("encode %s: header is %d bytes, declared %d: %w",
			e.Name(), len(header), e.HeaderLength(), ErrLengthMismatch)
	}
	if len(body) != e.BodyLength() {
		return nil, fmt.Errorf("encode %s: body is %d bytes, declared %d: %w",
			e.Name(), len(body), e.BodyLength(), ErrLengthMismatch)
	}

	cs := ChecksumOf(e)
	out := make([]byte, 0, len(header)+len(body)+cs.Size())
	out = append(out, header...)
	out = append(out, body...)
	return cs.Append(out, out), nil
}

// Decode parses e from buf starting at start and returns the number of
// bytes consumed. All failures are *ParseError values.
func Decode(e Element, buf []byte, start int) (int, error) {
	if start < 0 || start > len(buf) {
		return 0, NewParseError(e.Name(), start, ErrShortBuffer)
	}
	if len(buf)-start < e.HeaderLength() {
		return 0, NewParseError(e.Name(), start,
			fmt.Errorf("%w: need %d header bytes, have %d", ErrShortBuffer, e.HeaderLength(), len(buf)-start))
	}

	headerLen, err := e.ParseHeaderImage(buf, start)
	if err != nil {
		return 0, asParseError(e, start, err)
	}

	bodyLen := e.BodyLength()
	cs := ChecksumOf(e)
	total := headerLen + bodyLen + cs.Size()
	if bodyLen < 0 || len(buf)-start < total {
		return 0, NewParseError(e.Name(), start,
			fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, total, len(buf)-start))
	}

	covered := buf[start : start+headerLen+bodyLen]
	if !cs.Verify(covered, buf[start+headerLen+bodyLen:start+total]) {
		return 0, NewParseError(e.Name(), start, ErrChecksumMismatch)
	}

	n, err := e.ParseBodyImage(buf[:start+headerLen+bodyLen], start+headerLen)
	if err != nil {
		return 0, asParseError(e, start, err)
	}
	if n != bodyLen {
		return 0, NewParseError(e.Name(), start,
			fmt.Errorf("%w: consumed %d body bytes, declared %d", ErrLengthMismatch, n, bodyLen))
	}
	return total, nil
}

func asParseError(e Element, start int, err error) error {
	if _, ok := err.(*ParseError); ok {
		return err
	}
	return NewParseError(e.Name(), start, err)
}
