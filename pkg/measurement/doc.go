// Package measurement provides the identity types that correlate decoded
// protocol values to logical time-series channels.
//
// A Key names one channel as a (source, id) pair. The source is an
// acquisition-point name such as a PDC or device acronym and is always
// stored in upper case. Keys cache a hash of both fields so that they can be
// compared and bucketed cheaply on hot decode paths:
//
//	k := measurement.NewKey("ppa", 12)
//	k.String()        // "PPA:12"
//	k.Equal(other)    // hash fast path, then field-wise
//	k.Compare(other)  // source first (ordinal), then id
//
// Keys are small values. Owners that remap a channel mutate a key in place
// with SetSource or SetID, both of which re-derive the cached hash.
package measurement
