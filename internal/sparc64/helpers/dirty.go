package helpers

import (
	"encoding/binary"

	"github.com/sparc64dbt/lift/internal/sparc64/guest"
)

// fWord and setFWord address one 32-bit slot of the 64-entry FP register
// file by single-precision index: slots 0..31 are the F array, slots 32
// and up fall in the upper double-only bank (two slots per DUpper entry,
// high half first). SHA-512's block operand is wide enough to spill past
// F31, so the dirty helpers address the whole file.
func fWord(s *guest.State, n int) uint32 {
	if n < 32 {
		return s.F[n]
	}
	d := s.DUpper[(n-32)/2]
	if n%2 == 0 {
		return uint32(d >> 32)
	}
	return uint32(d)
}

func setFWord(s *guest.State, n int, w uint32) {
	if n < 32 {
		s.F[n] = w
		return
	}
	i := (n - 32) / 2
	if n%2 == 0 {
		s.DUpper[i] = uint64(w)<<32 | s.DUpper[i]&0xffffffff
	} else {
		s.DUpper[i] = s.DUpper[i]&0xffffffff00000000 | uint64(w)
	}
}

// fBytes returns the byte view of FP slots [first, first+n): the byte
// stream as it sat in guest memory before the big-endian FP loads that
// filled the registers.
func fBytes(s *guest.State, first, n int) []byte {
	out := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		var w [4]byte
		binary.BigEndian.PutUint32(w[:], fWord(s, first+i))
		out = append(out, w[:]...)
	}
	return out
}

func putFBytes(s *guest.State, first int, data []byte) {
	for i := 0; i*4 < len(data); i++ {
		setFWord(s, first+i, binary.BigEndian.Uint32(data[i*4:]))
	}
}

// MD5Block is the dirty helper an MD5 instruction's DirtyCall invokes:
// one raw compression step folding the 64-byte block at F(blockFirst)
// into the 16-byte chaining value at F(ivFirst), in place. MD5
// serializes both its state and its message words little-endian.
func MD5Block(s *guest.State, ivFirst, blockFirst int) {
	iv := fBytes(s, ivFirst, 4)
	block := fBytes(s, blockFirst, 16)

	var st [4]uint32
	for i := range st {
		st[i] = binary.LittleEndian.Uint32(iv[i*4:])
	}
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(block[i*4:])
	}

	st = md5Compress(st, m)

	out := make([]byte, 16)
	for i := range st {
		binary.LittleEndian.PutUint32(out[i*4:], st[i])
	}
	putFBytes(s, ivFirst, out)
}

// SHA1Block is the SHA-1 analogue of MD5Block; the chaining value is 20
// bytes (5 words) and, like the rest of the SHA family, big-endian.
func SHA1Block(s *guest.State, ivFirst, blockFirst int) {
	iv := fBytes(s, ivFirst, 5)
	block := fBytes(s, blockFirst, 16)

	var st [5]uint32
	for i := range st {
		st[i] = binary.BigEndian.Uint32(iv[i*4:])
	}
	var m [16]uint32
	for i := range m {
		m[i] = binary.BigEndian.Uint32(block[i*4:])
	}

	st = sha1Compress(st, m)

	out := make([]byte, 20)
	for i := range st {
		binary.BigEndian.PutUint32(out[i*4:], st[i])
	}
	putFBytes(s, ivFirst, out)
}

// SHA256Block: 32-byte (8-word) chaining value, 64-byte block.
func SHA256Block(s *guest.State, ivFirst, blockFirst int) {
	iv := fBytes(s, ivFirst, 8)
	block := fBytes(s, blockFirst, 16)

	var st [8]uint32
	for i := range st {
		st[i] = binary.BigEndian.Uint32(iv[i*4:])
	}
	var m [16]uint32
	for i := range m {
		m[i] = binary.BigEndian.Uint32(block[i*4:])
	}

	st = sha256Compress(st, m)

	out := make([]byte, 32)
	for i := range st {
		binary.BigEndian.PutUint32(out[i*4:], st[i])
	}
	putFBytes(s, ivFirst, out)
}

// SHA512Block: 64-byte chaining value (16 F-slots, 8 doubles) and a
// 128-byte block (32 F-slots), both twice the SHA-256 widths.
func SHA512Block(s *guest.State, ivFirst, blockFirst int) {
	iv := fBytes(s, ivFirst, 16)
	block := fBytes(s, blockFirst, 32)

	var st [8]uint64
	for i := range st {
		st[i] = binary.BigEndian.Uint64(iv[i*8:])
	}
	var m [16]uint64
	for i := range m {
		m[i] = binary.BigEndian.Uint64(block[i*8:])
	}

	st = sha512Compress(st, m)

	out := make([]byte, 64)
	for i := range st {
		binary.BigEndian.PutUint64(out[i*8:], st[i])
	}
	putFBytes(s, ivFirst, out)
}
