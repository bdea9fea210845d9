// Package sysex owns the device's System Exclusive request frame.
//
// Ownership boundary:
// - fixed frame layout and 7-bit group packing
// - frame inspection (unpack) for tooling
// - hex and raw binary renderings of a frame
package sysex
