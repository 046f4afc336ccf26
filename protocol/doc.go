// Package protocol implements the iClicker base-station packet codec.
//
// It maps raw [frame.Frame] values to semantic [Message] values and back.
// The codec holds the protocol's entire knowledge of byte layouts; the
// base-station session and poll engine never touch raw offsets.
//
// # Totality
//
// Decode and Encode never fail. Byte patterns the codec does not recognize
// decode to [Unknown], which carries its raw frame and round-trips
// unchanged. Garbled or partially-understood traffic therefore degrades
// gracefully instead of aborting a session.
//
// # Concurrency
//
// All functions are pure and safe for unsynchronized concurrent use.
package protocol
