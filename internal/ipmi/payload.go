package ipmi

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortPayload reports an unpack past the end of the request data.
	ErrShortPayload = errors.New("payload too short")
	// ErrBitWidth reports a bit-field width outside the supported range.
	ErrBitWidth = errors.New("bit field width out of range")
)

// maxBitFieldWidth caps sub-byte field widths. 12 bits covers the widest
// field in the LAN parameter encodings (the VLAN id).
const maxBitFieldWidth = 12

// Payload is a cursor over IPMI command data. It unpacks little-endian
// integers, raw byte runs, and sub-byte bit fields packed LSB-first, and
// packs the same formats for responses. Errors are sticky: after the first
// failure every subsequent call is a no-op and Err reports the cause.
type Payload struct {
	data []byte
	off  int

	// bit pool for sub-byte unpacking, filled a byte at a time
	bitPool  uint32
	bitCount uint

	// bit pool for sub-byte packing
	packPool  uint32
	packCount uint

	trailingOK bool
	err        error
}

// NewPayload wraps request data for unpacking. The same zero-value Payload
// works for packing a response.
func NewPayload(data []byte) *Payload {
	return &Payload{data: data}
}

// AllowTrailing marks extra trailing request bytes as acceptable, used by
// branches that reject a parameter without parsing its value.
func (p *Payload) AllowTrailing() {
	p.trailingOK = true
}

// Err returns the first codec error, if any.
func (p *Payload) Err() error {
	return p.err
}

// FullyUnpacked reports whether the request was consumed exactly: no codec
// error, no unread bytes unless trailing data was allowed, and no partial
// bit group left in the pool.
func (p *Payload) FullyUnpacked() bool {
	if p.err != nil {
		return false
	}
	if p.trailingOK {
		return true
	}
	return p.off == len(p.data) && p.bitCount == 0
}

func (p *Payload) take(n int) []byte {
	if p.err != nil {
		return nil
	}
	if p.bitCount != 0 {
		p.err = fmt.Errorf("byte read with %d bits pending", p.bitCount)
		return nil
	}
	if len(p.data)-p.off < n {
		p.err = fmt.Errorf("%w: need %d bytes, have %d", ErrShortPayload, n, len(p.data)-p.off)
		return nil
	}
	b := p.data[p.off : p.off+n]
	p.off += n
	return b
}

// UnpackUint8 reads one byte.
func (p *Payload) UnpackUint8() uint8 {
	b := p.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// UnpackUint16 reads a little-endian 16-bit integer.
func (p *Payload) UnpackUint16() uint16 {
	b := p.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// UnpackUint32 reads a little-endian 32-bit integer.
func (p *Payload) UnpackUint32() uint32 {
	b := p.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// UnpackUint64 reads a little-endian 64-bit integer.
func (p *Payload) UnpackUint64() uint64 {
	b := p.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// UnpackBytes reads n raw bytes.
func (p *Payload) UnpackBytes(n int) []byte {
	b := p.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// UnpackBits reads a width-bit unsigned field, LSB-first within the byte
// group. Consecutive bit reads share a pool refilled a byte at a time, so
// adjacent sub-byte fields pack the way the IPMI encodings lay them out.
func (p *Payload) UnpackBits(width uint) uint16 {
	if p.err != nil {
		return 0
	}
	if width == 0 || width > maxBitFieldWidth {
		p.err = fmt.Errorf("%w: %d", ErrBitWidth, width)
		return 0
	}
	for p.bitCount < width {
		if p.off >= len(p.data) {
			p.err = fmt.Errorf("%w: need %d more bits", ErrShortPayload, width-p.bitCount)
			return 0
		}
		p.bitPool |= uint32(p.data[p.off]) << p.bitCount
		p.bitCount += 8
		p.off++
	}
	v := uint16(p.bitPool & ((1 << width) - 1))
	p.bitPool >>= width
	p.bitCount -= width
	return v
}

func (p *Payload) flushPackBits() {
	for p.packCount > 0 {
		p.data = append(p.data, byte(p.packPool))
		p.packPool >>= 8
		if p.packCount >= 8 {
			p.packCount -= 8
		} else {
			p.packCount = 0
		}
	}
}

// PackUint8 appends one byte.
func (p *Payload) PackUint8(v uint8) {
	p.flushPackBits()
	p.data = append(p.data, v)
}

// PackUint16 appends a little-endian 16-bit integer.
func (p *Payload) PackUint16(v uint16) {
	p.flushPackBits()
	p.data = binary.LittleEndian.AppendUint16(p.data, v)
}

// PackUint32 appends a little-endian 32-bit integer.
func (p *Payload) PackUint32(v uint32) {
	p.flushPackBits()
	p.data = binary.LittleEndian.AppendUint32(p.data, v)
}

// PackUint64 appends a little-endian 64-bit integer.
func (p *Payload) PackUint64(v uint64) {
	p.flushPackBits()
	p.data = binary.LittleEndian.AppendUint64(p.data, v)
}

// PackBytes appends raw bytes.
func (p *Payload) PackBytes(b []byte) {
	p.flushPackBits()
	p.data = append(p.data, b...)
}

// PackBits appends a width-bit field, LSB-first. Whole bytes are emitted as
// the pool fills; Bytes flushes any remainder zero-padded.
func (p *Payload) PackBits(width uint, v uint16) {
	if p.err != nil {
		return
	}
	if width == 0 || width > maxBitFieldWidth {
		p.err = fmt.Errorf("%w: %d", ErrBitWidth, width)
		return
	}
	p.packPool |= uint32(v&((1<<width)-1)) << p.packCount
	p.packCount += width
	for p.packCount >= 8 {
		p.data = append(p.data, byte(p.packPool))
		p.packPool >>= 8
		p.packCount -= 8
	}
}

// Bytes returns the packed response data, flushing any partial bit group.
func (p *Payload) Bytes() []byte {
	p.flushPackBits()
	return p.data
}
