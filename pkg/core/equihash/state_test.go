package equihash

import (
	"bytes"
	"encoding/binary"
	"sync"
	"testing"

	dchest "github.com/dchest/blake2b"
	"github.com/stretchr/testify/require"
)

func testHeader(seed byte) []byte {
	h := make([]byte, HeaderSize)
	for i := range h {
		h[i] = seed + byte(i)
	}
	return h
}

// referenceBlock hashes header||le32(block) with a BLAKE2b implementation
// that supports personalization natively.
func referenceBlock(t *testing.T, p Params, header []byte, block uint32) []byte {
	t.Helper()
	tag := Personalization(p.N, p.K)
	d, err := dchest.New(&dchest.Config{
		Size:   uint8(p.HashOutput),
		Person: tag[:],
	})
	require.NoError(t, err)

	d.Write(header)
	var le [4]byte
	binary.LittleEndian.PutUint32(le[:], block)
	d.Write(le[:])
	return d.Sum(nil)
}

func TestPersonalization(t *testing.T) {
	tag := Personalization(200, 9)
	require.Equal(t, []byte("ZcashPoW"), tag[:8])
	require.Equal(t, []byte{200, 0, 0, 0, 9, 0, 0, 0}, tag[8:])
}

func TestHashStateMatchesReferencePersonalization(t *testing.T) {
	header := testHeader(7)
	for _, p := range SupportedParams() {
		t.Run(p.String(), func(t *testing.T) {
			s, err := NewHashState(p, header)
			require.NoError(t, err)

			for _, block := range []uint32{0, 1, 2, 1000} {
				got, err := s.blockHash(block)
				require.NoError(t, err)
				require.Equal(t, referenceBlock(t, p, header, block), got, "block %d", block)
			}
		})
	}
}

func TestNewHashState_HeaderLength(t *testing.T) {
	p := Eh48_5.Params()
	for _, n := range []int{0, 139, 141, 280} {
		_, err := NewHashState(p, make([]byte, n))
		require.ErrorIs(t, err, ErrInvalidHeaderLength, "length %d", n)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s, err := NewHashState(Eh200_9.Params(), testHeader(1))
	require.NoError(t, err)

	a, err := s.Snapshot()
	require.NoError(t, err)
	a.Write([]byte("garbage that must not leak into other snapshots"))

	before, err := s.blockHash(5)
	require.NoError(t, err)

	b, err := s.Snapshot()
	require.NoError(t, err)
	b.Write([]byte{5, 0, 0, 0})
	require.Equal(t, before, b.Sum(nil))
}

func TestDigest_BlockSharing(t *testing.T) {
	p := Eh200_9.Params()
	s, err := NewHashState(p, testHeader(3))
	require.NoError(t, err)

	// Indices 6 and 7 share block 3 of Equihash(200,9).
	full, err := s.blockHash(3)
	require.NoError(t, err)

	d6, err := s.Digest(6)
	require.NoError(t, err)
	d7, err := s.Digest(7)
	require.NoError(t, err)

	require.Len(t, d6, 25)
	require.Equal(t, full[:25], d6)
	require.Equal(t, full[25:50], d7)
}

func TestDigest_IndexOutOfRange(t *testing.T) {
	p := Eh48_5.Params()
	s, err := NewHashState(p, testHeader(0))
	require.NoError(t, err)

	_, err = s.Digest(511)
	require.NoError(t, err)

	_, err = s.Digest(512)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDigest_HeaderSensitivity(t *testing.T) {
	p := Eh96_5.Params()
	h1 := testHeader(9)
	h2 := bytes.Clone(h1)
	h2[139] ^= 0x01

	s1, err := NewHashState(p, h1)
	require.NoError(t, err)
	s2, err := NewHashState(p, h2)
	require.NoError(t, err)

	d1, err := s1.Digest(0)
	require.NoError(t, err)
	d2, err := s2.Digest(0)
	require.NoError(t, err)
	require.NotEqual(t, d1, d2)
}

func TestDigest_Concurrent(t *testing.T) {
	p := Eh96_5.Params()
	s, err := NewHashState(p, testHeader(11))
	require.NoError(t, err)

	want := make([][]byte, 64)
	for i := range want {
		want[i], err = s.Digest(uint32(i))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	got := make([][]byte, len(want))
	errs := make([]error, len(want))
	for i := range want {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = s.Digest(uint32(i))
		}(i)
	}
	wg.Wait()

	for i := range want {
		require.NoError(t, errs[i])
		require.Equal(t, want[i], got[i], "index %d", i)
	}
}

func TestCollisionWindows(t *testing.T) {
	p := Eh48_5.Params()
	digest := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	require.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, p.CollisionWindows(digest))

	p = Eh200_9.Params()
	digest = make([]byte, 25)
	digest[0] = 0xFF
	digest[1] = 0xF0
	digest[2] = 0x0F
	w := p.CollisionWindows(digest)
	require.Len(t, w, 10)
	require.Equal(t, uint32(0xFFF00), w[0])
	require.Equal(t, uint32(0xF0000), w[1])
}
