// Package stream reads synchrophasor byte streams from seekable resources.
//
// A Client connects to a resource named by a connection string, retrying
// the open with exponential backoff, and then delivers the resource content
// in fixed-size chunks. Three receive modes are supported:
//
//   - continuous: one pass from the starting offset to the end of the
//     resource, started as soon as the connection is established
//   - interval: one chunk per tick of a timer
//   - on demand: one chunk per ReceiveData call
//
// Chunks go either to a raw sink (an io.Writer such as frame.Parser) or,
// tagged with the stream identity and position, to the OnDataReceived
// callback.
//
// # Lifecycle
//
//	Idle --Connect--> Connecting --opened--> Connected --Disconnect--> Disconnected
//	Connecting --CancelConnect--> Aborted
//	Connecting --attempts exhausted--> Idle
//	Connected --read fault--> Disconnected
//
// Callbacks run on the client's worker goroutines. They may call
// Disconnect, CancelConnect and ReceiveData; they must not call Connect or
// Close synchronously.
package stream
