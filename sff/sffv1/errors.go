package sffv1

import "fmt"

// BadManufacturerByteError is returned when a PCX payload does not start
// with 0x0A.
type BadManufacturerByteError struct{ Byte byte }

func (e *BadManufacturerByteError) Error() string {
	return fmt.Sprintf("bad manufacturer byte: 0x%02X", e.Byte)
}

// InvalidPaintbrushError is returned for an unknown PCX version byte.
type InvalidPaintbrushError struct{ Byte byte }

func (e *InvalidPaintbrushError) Error() string {
	return fmt.Sprintf("invalid paintbrush: %d", e.Byte)
}

// BadEncodingByteError is returned when the PCX encoding is neither 0 nor 1.
type BadEncodingByteError struct{ Byte byte }

func (e *BadEncodingByteError) Error() string {
	return fmt.Sprintf("bad encoding byte: 0x%02X", e.Byte)
}

// InvalidBitsPerPlaneError is returned for an unsupported bits-per-pixel.
type InvalidBitsPerPlaneError struct{ Byte byte }

func (e *InvalidBitsPerPlaneError) Error() string {
	return fmt.Sprintf("invalid bits per plane: %d", e.Byte)
}

// BadReservedByteError is returned when PCX header byte 64 is not zero.
type BadReservedByteError struct{ Byte byte }

func (e *BadReservedByteError) Error() string {
	return fmt.Sprintf("bad reserved byte: 0x%02X", e.Byte)
}
