// Package canonhash computes the content hashes the KILT chain assigns to
// credential types and public credentials, so that a call found in an
// extrinsic can be matched against the hash an event reports.
//
// Two modes exist and never share input:
//
//   - schema mode hashes a JSON schema after stripping "$id", sorting object
//     keys at every level and NFC-normalizing the serialized text;
//   - payload mode hashes binary (SCALE) encodings, the payload followed by
//     the authorizing identity, without any reordering.
//
// Both use BLAKE2b-256.
package canonhash

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Size is the byte length of a Hash.
const Size = blake2b.Size256

// ErrInvalidHash is returned when parsing a malformed hash string.
var ErrInvalidHash = errors.New("invalid hash")

// Hash is a BLAKE2b-256 digest.
type Hash [Size]byte

// String renders the hash as "0x" followed by 64 lower-case hex characters.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}

	*h = parsed
	return nil
}

// ParseHash parses a "0x"-prefixed 64-character hex string. Letter case is ignored.
func ParseHash(s string) (Hash, error) {
	var h Hash

	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return h, fmt.Errorf("%w: missing 0x prefix in %q", ErrInvalidHash, s)
	}

	if len(s) != 2+2*Size {
		return h, fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidHash, 2*Size, len(s)-2)
	}

	if _, err := hex.Decode(h[:], []byte(s[2:])); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}

	return h, nil
}

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, Size, len(b))
	}

	copy(h[:], b)
	return h, nil
}

// HashPayload is the payload mode: BLAKE2b-256 over payload followed by
// identity, both already in their binary encoding.
func HashPayload(payload, identity []byte) Hash {
	digest, _ := blake2b.New256(nil)
	digest.Write(payload)
	digest.Write(identity)

	var h Hash
	digest.Sum(h[:0])
	return h
}
