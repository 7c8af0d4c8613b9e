package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version      byte = 1
	kindEnvelope byte = 1

	hdrLen = 4 + 1 + 1 + 8 + 2
)

var (
	ErrCorrupt = errors.New("autocache: corrupt envelope")
	magic4     = [...]byte{'A', 'C', 'E', 'V'}
)

// Envelope is what autocache stores for every key.
// ExpiresAt is unix milliseconds and must be positive.
type Envelope struct {
	ExpiresAt int64
	Version   string
	Payload   []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames an envelope:
//
//	magic(4) | ver(1) | kind(1) | expiresAt(i64 be) | vlen(u16 be) | version(vlen) | plen(u32 be) | payload(plen)
func Encode(e Envelope) ([]byte, error) {
	if e.ExpiresAt <= 0 {
		return nil, fmt.Errorf("wire: expiry must be positive, got %d", e.ExpiresAt)
	}
	if len(e.Version) > 0xFFFF {
		return nil, fmt.Errorf("wire: version too long: %d bytes", len(e.Version))
	}
	if uint64(len(e.Payload)) > 0xFFFFFFFF {
		return nil, fmt.Errorf("wire: payload too large: %d bytes", len(e.Payload))
	}

	var buf bytes.Buffer
	buf.Grow(hdrLen + len(e.Version) + 4 + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEnvelope)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], uint64(e.ExpiresAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(e.Version)))
	buf.Write(u2[:])
	buf.WriteString(e.Version)

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)

	return buf.Bytes(), nil
}

// Decode parses an envelope. The returned payload aliases b.
func Decode(b []byte) (Envelope, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindEnvelope {
		return Envelope{}, ErrCorrupt
	}
	off := 6

	exp := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if exp <= 0 {
		return Envelope{}, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if vlen > len(b)-off {
		return Envelope{}, ErrCorrupt
	}
	ver := string(b[off : off+vlen])
	off += vlen

	if off+4 > len(b) {
		return Envelope{}, ErrCorrupt
	}
	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || plen != len(b)-off { // also rejects trailing bytes
		return Envelope{}, ErrCorrupt
	}

	return Envelope{ExpiresAt: exp, Version: ver, Payload: b[off : off+plen]}, nil
}
