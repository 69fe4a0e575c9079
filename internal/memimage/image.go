// Package memimage provides bounds-checked integer reads over a RAM snapshot.
package memimage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// OutOfBoundsError is returned when a read falls outside the image extent.
type OutOfBoundsError struct {
	Address uint32
	Length  int
	Base    uint32
	Size    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at 0x%08X outside image range 0x%08X-0x%08X",
		e.Length, e.Address, e.Base, e.Base+uint32(e.Size))
}

// Image is a read-only snapshot of a contiguous RAM region with a declared
// base virtual address. All reads are little-endian and bounds-checked,
// out of range reads fail instead of returning zero bytes.
type Image struct {
	base uint32
	data []byte
}

// New creates an image for the given base address and buffer.
func New(base uint32, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty memory buffer")
	}
	return &Image{
		base: base,
		data: data,
	}, nil
}

// Base returns the virtual address of the first byte of the image.
func (img *Image) Base() uint32 {
	return img.base
}

// Size returns the image length in bytes.
func (img *Image) Size() int {
	return len(img.data)
}

// Contains reports whether the address falls inside the image range.
func (img *Image) Contains(address uint32) bool {
	return address >= img.base && address-img.base < uint32(len(img.data))
}

func (img *Image) bytes(address uint32, length int) ([]byte, error) {
	offset := int64(address) - int64(img.base)
	if offset < 0 || offset+int64(length) > int64(len(img.data)) {
		return nil, &OutOfBoundsError{
			Address: address,
			Length:  length,
			Base:    img.base,
			Size:    len(img.data),
		}
	}
	return img.data[offset : offset+int64(length)], nil
}

// ReadU8 reads an unsigned byte.
func (img *Image) ReadU8(address uint32) (uint8, error) {
	b, err := img.bytes(address, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadS8 reads a signed byte.
func (img *Image) ReadS8(address uint32) (int8, error) {
	b, err := img.bytes(address, 1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadU16 reads an unsigned 16 bit integer.
func (img *Image) ReadU16(address uint32) (uint16, error) {
	b, err := img.bytes(address, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadS16 reads a signed 16 bit integer.
func (img *Image) ReadS16(address uint32) (int16, error) {
	value, err := img.ReadU16(address)
	if err != nil {
		return 0, err
	}
	return int16(value), nil
}

// ReadU32 reads an unsigned 32 bit integer.
func (img *Image) ReadU32(address uint32) (uint32, error) {
	b, err := img.bytes(address, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadS32 reads a signed 32 bit integer.
func (img *Image) ReadS32(address uint32) (int32, error) {
	value, err := img.ReadU32(address)
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

// ReadInt reads an integer of the given byte width, sign-extending the
// result if signed is set. Supported widths are 1, 2 and 4.
func (img *Image) ReadInt(address uint32, width int, signed bool) (int64, error) {
	switch width {
	case 1:
		if signed {
			value, err := img.ReadS8(address)
			return int64(value), err
		}
		value, err := img.ReadU8(address)
		return int64(value), err

	case 2:
		if signed {
			value, err := img.ReadS16(address)
			return int64(value), err
		}
		value, err := img.ReadU16(address)
		return int64(value), err

	case 4:
		if signed {
			value, err := img.ReadS32(address)
			return int64(value), err
		}
		value, err := img.ReadU32(address)
		return int64(value), err

	default:
		return 0, fmt.Errorf("unsupported read width %d", width)
	}
}
