package types

import (
	"encoding/binary"
	"fmt"
	"time"
)

// HeaderSize is the length of the serialized header that Equihash hashes.
const HeaderSize = 140

// Header is the 140-byte proof-of-work input used by Zcash-family chains.
// The Equihash solution is not part of it.
type Header struct {
	Version       uint32
	PrevBlockHash Hash
	MerkleRoot    Hash
	Reserved      Hash // Commitment root on chains that use it; zero elsewhere.
	Time          uint32
	Bits          uint32
	Nonce         Hash
}

// Serialize returns the 140-byte encoding of the header.
// Field order: Version(4) || PrevBlockHash(32) || MerkleRoot(32) ||
//
//	Reserved(32) || Time(4) || Bits(4) || Nonce(32)
//
// Integers are little-endian.
func (h *Header) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Version)
	copy(buf[4:36], h.PrevBlockHash[:])
	copy(buf[36:68], h.MerkleRoot[:])
	copy(buf[68:100], h.Reserved[:])
	binary.LittleEndian.PutUint32(buf[100:104], h.Time)
	binary.LittleEndian.PutUint32(buf[104:108], h.Bits)
	copy(buf[108:140], h.Nonce[:])
	return buf
}

// ParseHeader decodes a 140-byte header.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) != HeaderSize {
		return nil, fmt.Errorf("header must be %d bytes, got %d", HeaderSize, len(b))
	}
	h := &Header{
		Version: binary.LittleEndian.Uint32(b[0:4]),
		Time:    binary.LittleEndian.Uint32(b[100:104]),
		Bits:    binary.LittleEndian.Uint32(b[104:108]),
	}
	copy(h.PrevBlockHash[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	copy(h.Reserved[:], b[68:100])
	copy(h.Nonce[:], b[108:140])
	return h, nil
}

// Timestamp returns the header time as a time.Time.
func (h *Header) Timestamp() time.Time {
	return time.Unix(int64(h.Time), 0)
}

// SetNonce sets the nonce to n encoded little-endian in its first 8 bytes.
func (h *Header) SetNonce(n uint64) {
	h.Nonce = Hash{}
	binary.LittleEndian.PutUint64(h.Nonce[:8], n)
}
