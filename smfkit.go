// Package smfkit reads, manipulates, and writes Standard MIDI Files
// (SMF). It provides a byte-oriented Buffer, a VLQ/VLD codec, chunk
// framing for MThd/MTrk, a typed Message union covering the full SMF
// meta-message taxonomy, a Track engine supporting sorted insertion,
// deletion and note pairing, and a Score that bundles tracks with the
// file header fields.
//
// The cmd/smftool and cmd/instrumentstats directories contain
// command-line frontends built on this package.
package smfkit
