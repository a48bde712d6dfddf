package frontend

// fakeDecoder is a minimal Decoder stand-in for tests: the real opcode
// bit-decoder is an external collaborator, so tests supply
// decoded instructions directly, keyed on whatever raw word the test
// chooses to feed Lower.
type fakeDecoder struct {
	insns map[uint32]DecodedInsn
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{insns: map[uint32]DecodedInsn{}}
}

func (d *fakeDecoder) add(word uint32, in DecodedInsn) *fakeDecoder {
	in.RawWord = word
	d.insns[word] = in
	return d
}

func (d *fakeDecoder) Decode(word uint32) (DecodedInsn, bool) {
	in, ok := d.insns[word]
	return in, ok
}
