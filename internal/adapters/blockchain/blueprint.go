package blockchain

import (
	"encoding/binary"
	"fmt"

	"github.com/steadifi/contract-harness/internal/domain"
)

// Uploaded code is stored on chain as an EIP-5202 blueprint: the creation
// bytecode behind a 0xFE71 prefix, which makes the account uncallable while
// leaving the initcode readable through eth_getCode.

const (
	blueprintMagic0   = 0xFE
	blueprintMagic1   = 0x71
	blueprintVersion0 = 0x00

	// maxBlueprintSize is the largest code the 2-byte preamble length can address.
	maxBlueprintSize = 0xFFFF
)

// BlueprintCode wraps initcode in the blueprint header, version 0, no data section.
func BlueprintCode(initcode []byte) []byte {
	out := make([]byte, 0, len(initcode)+3)
	out = append(out, blueprintMagic0, blueprintMagic1, blueprintVersion0)
	return append(out, initcode...)
}

// BlueprintDeployCode returns creation code that stores initcode as a blueprint.
// The 10-byte preamble copies everything after itself into memory and returns it:
//
//	PUSH2 len  RETURNDATASIZE  DUP2  PUSH1 10  RETURNDATASIZE  CODECOPY  RETURN
func BlueprintDeployCode(initcode []byte) ([]byte, error) {
	if len(initcode) == 0 {
		return nil, fmt.Errorf("%w: empty initcode", domain.ErrInvalidArtifact)
	}
	blueprint := BlueprintCode(initcode)
	if len(blueprint) > maxBlueprintSize {
		return nil, fmt.Errorf("%w: blueprint of %d bytes exceeds %d", domain.ErrInvalidArtifact, len(blueprint), maxBlueprintSize)
	}

	preamble := []byte{0x61, 0, 0, 0x3d, 0x81, 0x60, 0x0a, 0x3d, 0x39, 0xf3}
	binary.BigEndian.PutUint16(preamble[1:3], uint16(len(blueprint)))
	return append(preamble, blueprint...), nil
}

// ParseBlueprint extracts the initcode from deployed blueprint code,
// skipping the optional preamble data section.
func ParseBlueprint(code []byte) ([]byte, error) {
	if len(code) < 3 || code[0] != blueprintMagic0 || code[1] != blueprintMagic1 {
		return nil, fmt.Errorf("%w: missing 0xFE71 prefix", domain.ErrInvalidBlueprint)
	}

	version := code[2] >> 2
	if version != 0 {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrInvalidBlueprint, version)
	}

	lengthBytes := int(code[2] & 0x03)
	if lengthBytes == 3 {
		return nil, fmt.Errorf("%w: reserved length encoding", domain.ErrInvalidBlueprint)
	}

	offset := 3
	if lengthBytes > 0 {
		if len(code) < offset+lengthBytes {
			return nil, fmt.Errorf("%w: truncated data length", domain.ErrInvalidBlueprint)
		}
		dataLen := 0
		for _, b := range code[offset : offset+lengthBytes] {
			dataLen = dataLen<<8 | int(b)
		}
		offset += lengthBytes + dataLen
	}

	if offset >= len(code) {
		return nil, fmt.Errorf("%w: no initcode", domain.ErrInvalidBlueprint)
	}
	return code[offset:], nil
}
