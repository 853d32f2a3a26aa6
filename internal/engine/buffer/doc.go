// Package buffer provides the thread-safe text storage behind the host
// document.
//
// Text is held as a single string with a cached index of line starts,
// which keeps offset/point conversion cheap for the short documents a
// snippet session operates on. Line endings are normalized to the buffer's
// configured style on every write.
//
// Position Types:
//
//   - ByteOffset: raw byte position in the buffer
//   - Point: 0-indexed line and byte column
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//	buf.Insert(7, "Beautiful ")  // "Hello, Beautiful World!"
//	buf.Delete(0, 7)             // "Beautiful World!"
//
// All Buffer methods are safe for concurrent use.
package buffer
