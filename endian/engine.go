// Package endian provides byte order utilities for binary encoding and decoding.
//
// It combines the ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single EndianEngine interface so batch headers and payloads can be
// serialized with one engine value regardless of byte order.
//
// All functions are safe for concurrent use; the returned engines are
// immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// The interface is satisfied by binary.LittleEndian and binary.BigEndian,
// keeping it fully compatible with standard library code while exposing both
// put and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system the LSB (0x00) is stored
	// first; for big-endian the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine. It is the default
// for batch files.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
