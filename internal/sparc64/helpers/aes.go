package helpers

// Capabilities is the hardware-capability bitset passed into the lifter.
// Only the AES bit is modelled; everything else the lifter might someday
// gate on lives here too.
type Capabilities uint64

const CapAES Capabilities = 1 << 0

// HasAES reports whether the target host advertises AES instructions, the
// gate the frontend's crypto family checks before lifting FAESENCX1,
// FAESDECX1, or FAESKEYX1.
func (c Capabilities) HasAES() bool {
	return c&CapAES != 0
}

// aesSBox and aesRcon are the standard Rijndael tables; AESEncryptRound,
// AESDecryptRound and AESKeyExpand1 are clean (pure) functions returning
// both 64-bit output halves, and the Hi/Lo wrappers below are the clean
// functions from three 64-bit inputs to one 64-bit output.
var aesSBox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

var aesRcon = [11]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

func subWord(w uint32) uint32 {
	return uint32(aesSBox[byte(w>>24)])<<24 | uint32(aesSBox[byte(w>>16)])<<16 |
		uint32(aesSBox[byte(w>>8)])<<8 | uint32(aesSBox[byte(w)])
}

func rotWord(w uint32) uint32 { return w<<8 | w>>24 }

// AESEncryptRound performs one AES forward round (SubBytes, ShiftRows,
// MixColumns, AddRoundKey) on a 128-bit state split across two 64-bit
// halves, XORed with a 128-bit round key split the same way.
func AESEncryptRound(stateHi, stateLo, keyHi, keyLo uint64) (outHi, outLo uint64) {
	var b [16]byte
	putU64(b[0:8], stateHi)
	putU64(b[8:16], stateLo)

	var sub [16]byte
	for i, v := range b {
		sub[i] = aesSBox[v]
	}

	var shifted [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			shifted[r*4+c] = sub[r*4+(c+r)%4]
		}
	}

	var mixed [16]byte
	for c := 0; c < 4; c++ {
		s0, s1, s2, s3 := shifted[c], shifted[4+c], shifted[8+c], shifted[12+c]
		mixed[c] = gmul(s0, 2) ^ gmul(s1, 3) ^ s2 ^ s3
		mixed[4+c] = s0 ^ gmul(s1, 2) ^ gmul(s2, 3) ^ s3
		mixed[8+c] = s0 ^ s1 ^ gmul(s2, 2) ^ gmul(s3, 3)
		mixed[12+c] = gmul(s0, 3) ^ s1 ^ s2 ^ gmul(s3, 2)
	}

	var key [16]byte
	putU64(key[0:8], keyHi)
	putU64(key[8:16], keyLo)
	for i := range mixed {
		mixed[i] ^= key[i]
	}

	return getU64(mixed[0:8]), getU64(mixed[8:16])
}

// AESDecryptRound is the inverse round in the equivalent-inverse-cipher
// form the hardware instruction pair implements: InvShiftRows,
// InvSubBytes, InvMixColumns, then AddRoundKey last (against a key
// schedule the guest has already run through InvMixColumns). Keeping the
// key add last means each 64-bit output half depends only on its own key
// half, which is what lets the instruction split into two 3-input
// primitives.
func AESDecryptRound(stateHi, stateLo, keyHi, keyLo uint64) (outHi, outLo uint64) {
	var b [16]byte
	putU64(b[0:8], stateHi)
	putU64(b[8:16], stateLo)

	var shifted [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			shifted[r*4+(c+r)%4] = b[r*4+c]
		}
	}

	inv := invSBox()
	var sub [16]byte
	for i, v := range shifted {
		sub[i] = inv[v]
	}

	var mixed [16]byte
	for c := 0; c < 4; c++ {
		s0, s1, s2, s3 := sub[c], sub[4+c], sub[8+c], sub[12+c]
		mixed[c] = gmul(s0, 14) ^ gmul(s1, 11) ^ gmul(s2, 13) ^ gmul(s3, 9)
		mixed[4+c] = gmul(s0, 9) ^ gmul(s1, 14) ^ gmul(s2, 11) ^ gmul(s3, 13)
		mixed[8+c] = gmul(s0, 13) ^ gmul(s1, 9) ^ gmul(s2, 14) ^ gmul(s3, 11)
		mixed[12+c] = gmul(s0, 11) ^ gmul(s1, 13) ^ gmul(s2, 9) ^ gmul(s3, 14)
	}

	var key [16]byte
	putU64(key[0:8], keyHi)
	putU64(key[8:16], keyLo)
	for i := range mixed {
		mixed[i] ^= key[i]
	}

	return getU64(mixed[0:8]), getU64(mixed[8:16])
}

var invSBoxCache [256]byte
var invSBoxBuilt bool

func invSBox() [256]byte {
	if !invSBoxBuilt {
		for i, v := range aesSBox {
			invSBoxCache[v] = byte(i)
		}
		invSBoxBuilt = true
	}
	return invSBoxCache
}

// The IR models each 64-bit output half as its own clean function of
// three (round: the two state halves plus one key half) or two (key
// expand) 64-bit inputs; these wrappers carve the halves out of the full
// round primitives above. AddRoundKey is a bytewise XOR, so each output
// half depends only on its own key half and the split is exact.

// AESEncRoundHi is the high half of one forward round.
func AESEncRoundHi(stateHi, stateLo, keyHi uint64) uint64 {
	hi, _ := AESEncryptRound(stateHi, stateLo, keyHi, 0)
	return hi
}

// AESEncRoundLo is the low half of one forward round.
func AESEncRoundLo(stateHi, stateLo, keyLo uint64) uint64 {
	_, lo := AESEncryptRound(stateHi, stateLo, 0, keyLo)
	return lo
}

// AESDecRoundHi is the high half of one inverse round.
func AESDecRoundHi(stateHi, stateLo, keyHi uint64) uint64 {
	hi, _ := AESDecryptRound(stateHi, stateLo, keyHi, 0)
	return hi
}

// AESDecRoundLo is the low half of one inverse round.
func AESDecRoundLo(stateHi, stateLo, keyLo uint64) uint64 {
	_, lo := AESDecryptRound(stateHi, stateLo, 0, keyLo)
	return lo
}

// AESKeyExpandHi is the high half of one key-schedule step.
func AESKeyExpandHi(prevHi, prevLo, imm5 uint64) uint64 {
	hi, _ := AESKeyExpand1(prevHi, prevLo, uint32(imm5))
	return hi
}

// AESKeyExpandLo is the low half of one key-schedule step.
func AESKeyExpandLo(prevHi, prevLo, imm5 uint64) uint64 {
	_, lo := AESKeyExpand1(prevHi, prevLo, uint32(imm5))
	return lo
}

// AESKeyExpand1 produces the next four key-schedule words from the
// previous four: the FIPS-197 recurrence
// w[i] = w[i-4] ^ SubWord(RotWord(w[i-1])) ^ Rcon for the first word,
// then each following word XORs its predecessor with the word four back.
// imm5 selects the Rcon entry (0 when not applicable).
func AESKeyExpand1(prevHi, prevLo uint64, imm5 uint32) (outHi, outLo uint64) {
	rcon := uint32(0)
	if int(imm5) < len(aesRcon) {
		rcon = uint32(aesRcon[imm5]) << 24
	}
	w0 := uint32(prevHi >> 32) // w[i-4]
	w1 := uint32(prevHi)       // w[i-3]
	w2 := uint32(prevLo >> 32) // w[i-2]
	w3 := uint32(prevLo)       // w[i-1]

	t := subWord(rotWord(w3)) ^ rcon

	n0 := w0 ^ t
	n1 := w1 ^ n0
	n2 := w2 ^ n1
	n3 := w3 ^ n2

	outHi = uint64(n0)<<32 | uint64(n1)
	outLo = uint64(n2)<<32 | uint64(n3)
	return outHi, outLo
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (56 - 8*i))
	}
}

func getU64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
