package frontend

// Mnemonic tags the opcode-table lookup result. The actual bit-decoding
// (opcode tables, operand-field extraction) is an external collaborator;
// this package only needs the result of that lookup.
type Mnemonic int

const (
	MnemonicInvalid Mnemonic = iota

	// Integer ALU.
	OpADD
	OpADDcc
	OpADDC
	OpADDCcc
	OpSUB
	OpSUBcc
	OpSUBC
	OpSUBCcc
	OpAND
	OpANDcc
	OpANDN
	OpANDNcc
	OpOR
	OpORcc
	OpORN
	OpORNcc
	OpXOR
	OpXORcc
	OpXNOR
	OpXNORcc
	OpMULX
	OpSMUL
	OpSMULcc
	OpUMUL
	OpUMULcc
	OpSDIVX
	OpSDIV
	OpSDIVcc
	OpUDIVX
	OpUDIV
	OpUDIVcc
	OpSLL
	OpSLLX
	OpSRL
	OpSRLX
	OpSRA
	OpSRAX
	OpLZCNT

	// Loads/stores/atomics.
	OpLDUW
	OpLDSW
	OpLDX
	OpLDUB
	OpLDSB
	OpLDUH
	OpLDSH
	OpSTW
	OpSTX
	OpSTB
	OpSTH
	OpLDF
	OpSTF
	OpLDDF
	OpSTDF
	OpLDFSR
	OpSTFSR
	OpLDXFSR
	OpSTXFSR
	OpLDSTUB
	OpCASA
	OpCASXA
	OpSWAP
	OpLDBLOCKF

	// Window management.
	OpSAVE
	OpRESTORE
	OpRETURN

	// Control flow.
	OpCALL
	OpJMPL
	OpBicc
	OpBPcc
	OpFBfcc
	OpFBPfcc
	OpCBcond
	OpBN // branch-never
	OpTA
	OpPAUSE

	// FP arithmetic/conversion/compare/move.
	OpFADDs
	OpFADDd
	OpFADDq
	OpFSUBs
	OpFSUBd
	OpFSUBq
	OpFMULs
	OpFMULd
	OpFMULq
	OpFsMULd
	OpFdMULq
	OpFDIVs
	OpFDIVd
	OpFDIVq
	OpFSQRTs
	OpFSQRTd
	OpFSQRTq
	OpFCMPs
	OpFCMPd
	OpFCMPq
	OpFCMPEs
	OpFCMPEd
	OpFCMPEq
	OpFMOVcc
	OpFMOVfcc
	OpMOVcc
	OpMOVfcc
	OpMOVr
	OpFABSs
	OpFABSd
	OpFABSq
	OpFNEGs
	OpFNEGd
	OpFNEGq
	OpFITOs
	OpFITOd
	OpFITOq
	OpFXTOs
	OpFXTOd
	OpFXTOq
	OpFSTOi
	OpFDTOi
	OpFQTOi
	OpFSTOx
	OpFDTOx
	OpFQTOx
	OpFSTOd
	OpFSTOq
	OpFDTOs
	OpFDTOq
	OpFQTOs
	OpFQTOd
	OpFNMADDs
	OpFNMADDd
	OpFNMSUBs
	OpFNMSUBd
	OpFMADDs
	OpFMADDd
	OpFMSUBs
	OpFMSUBd

	// Crypto/hash.
	OpFAESENCX1
	OpFAESDECX1
	OpFAESKEYX1
	OpMD5
	OpSHA1
	OpSHA256
	OpSHA512

	// Ancillary state register moves.
	OpRDY
	OpWRY
	OpRDCCR
	OpWRCCR
	OpRDASI
	OpWRASI
	OpRDGSR
	OpWRGSR
	OpRDFPRS
	OpWRFPRS
	OpRDTICK
	OpRDSTICK
	OpRDPC

	// Misc.
	OpFLUSH
	OpMEMBAR
	OpNOP
	OpFLUSHW
)

// DecodedInsn is the opaque, pre-decoded instruction the external
// collaborator hands to the frontend: a mnemonic tag plus operand slots.
// Fields not used by a given mnemonic are left zero.
type DecodedInsn struct {
	Mnemonic Mnemonic

	Rs1, Rs2, Rd int
	HasImm       bool
	Imm          int64

	// Condition/annul for branches; ASI for memory ops; rounding mode for
	// FP ops that consume one explicitly; Imm5 for AES key expansion.
	Cond  uint64
	Annul bool
	ASI   uint8
	Imm5  uint32

	// Recognized-but-unimplemented: the decoder flags an instruction it
	// knows about but declines to decode further, distinguishing a
	// genuine no-decode from "emit Unrecognized and native-escape".
	RecognizedButUnimplemented bool
	RawWord                    uint32
}

// Decoder is the external collaborator contract:
// "the instruction bit-decoder table... this spec describes only the
// interface it must expose."
type Decoder interface {
	Decode(word uint32) (DecodedInsn, bool)
}
