// Package codec defines the binary codec contract shared by every protocol
// element (frames and the cells they own).
//
// An element is serialized as three segments:
//
//	┌──────────┬──────────────────────┬────────────┐
//	│  header  │  body (BodyLength)   │  checksum  │
//	└──────────┴──────────────────────┴────────────┘
//
// The checksum covers header and body. Elements that implement Checksummer
// choose the algorithm; all others carry no checksum. All multi-byte
// integers are big-endian regardless of the host byte order.
//
// Decode parses the header first because the body length of some elements
// (frames) is only known from their header. The remaining buffer is then
// checked against the full encoded size and the checksum is verified before
// the body is parsed, so body parsers never observe corrupt data.
package codec
