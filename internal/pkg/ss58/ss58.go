// Package ss58 encodes and decodes Substrate SS58 addresses for 32-byte
// account ids.
package ss58

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// KILTPrefix is the SS58 network prefix of the KILT spiritnet and peregrine chains.
const KILTPrefix uint16 = 38

const (
	accountIDLength = 32
	checksumLength  = 2
)

var (
	// ErrInvalidAddress is returned for addresses that are not valid base58 SS58 strings.
	ErrInvalidAddress = errors.New("invalid ss58 address")

	// ErrChecksumMismatch is returned when the embedded checksum does not match the payload.
	ErrChecksumMismatch = errors.New("ss58 checksum mismatch")

	checksumPreimagePrefix = []byte("SS58PRE")
)

func prefixBytes(prefix uint16) ([]byte, error) {
	switch {
	case prefix < 64:
		return []byte{byte(prefix)}, nil
	case prefix < 16384:
		return []byte{
			byte((prefix&0b0000_0000_1111_1100)>>2) | 0b0100_0000,
			byte(prefix>>8) | byte((prefix&0b0000_0000_0000_0011)<<6),
		}, nil
	default:
		return nil, fmt.Errorf("%w: prefix %d out of range", ErrInvalidAddress, prefix)
	}
}

func checksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(checksumPreimagePrefix)
	h.Write(payload)
	return h.Sum(nil)[:checksumLength]
}

// Encode renders a 32-byte account id as an SS58 address under prefix.
func Encode(prefix uint16, accountID []byte) (string, error) {
	if len(accountID) != accountIDLength {
		return "", fmt.Errorf("%w: account id must be %d bytes, got %d", ErrInvalidAddress, accountIDLength, len(accountID))
	}

	pb, err := prefixBytes(prefix)
	if err != nil {
		return "", err
	}

	payload := append(pb, accountID...)
	return base58.Encode(append(payload, checksum(payload)...)), nil
}

// Decode parses an SS58 address and returns its prefix and account id.
func Decode(address string) (uint16, []byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	if len(raw) == 0 {
		return 0, nil, ErrInvalidAddress
	}

	var (
		prefix       uint16
		prefixLength int
	)
	switch first := raw[0]; {
	case first < 64:
		prefix, prefixLength = uint16(first), 1
	case first < 128 && len(raw) > 1:
		lower := (uint16(first)<<2)&0b1111_1100 | uint16(raw[1])>>6
		upper := uint16(raw[1] & 0b0011_1111)
		prefix, prefixLength = lower|upper<<8, 2
	default:
		return 0, nil, fmt.Errorf("%w: unsupported prefix byte %#x", ErrInvalidAddress, first)
	}

	if len(raw) != prefixLength+accountIDLength+checksumLength {
		return 0, nil, fmt.Errorf("%w: unexpected length %d", ErrInvalidAddress, len(raw))
	}

	payload := raw[:prefixLength+accountIDLength]
	if !bytes.Equal(checksum(payload), raw[len(payload):]) {
		return 0, nil, ErrChecksumMismatch
	}

	return prefix, payload[prefixLength:], nil
}
