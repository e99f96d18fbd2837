package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Hex is a "0x"-prefixed hexadecimal quantity, as used by Substrate JSON-RPC
// for block numbers (e.g. "0x8d1f7").
type Hex string

// HexFromString validates s and returns it as a Hex.
func HexFromString(s string) (Hex, error) {
	if err := validateHex(s); err != nil {
		return "", err
	}
	return Hex(s), nil
}

// HexFromUint64 encodes n as a Hex.
func HexFromUint64(n uint64) Hex {
	return Hex("0x" + strconv.FormatUint(n, 16))
}

func hasHexPrefix(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

func validateHex(s string) error {
	if !hasHexPrefix(s) {
		return fmt.Errorf("hex string must start with 0x")
	}

	if _, err := strconv.ParseUint(s[2:], 16, 64); err != nil {
		return fmt.Errorf("invalid hexadecimal value: %w", err)
	}

	return nil
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Uint64 decodes the quantity. Invalid values decode to zero.
func (h Hex) Uint64() uint64 {
	if !hasHexPrefix(string(h)) {
		return 0
	}

	v, _ := strconv.ParseUint(string(h)[2:], 16, 64)
	return v
}

// Bytes is a byte string rendered as "0x"-prefixed lower-case hex in JSON
// and text encodings.
type Bytes []byte

// BytesFromHex decodes a "0x"-prefixed hex string. An odd number of digits
// is rejected.
func BytesFromHex(s string) (Bytes, error) {
	if !hasHexPrefix(s) {
		return nil, fmt.Errorf("hex string must start with 0x")
	}

	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("invalid hex bytes: %w", err)
	}

	return b, nil
}

// String renders the bytes as "0x"-prefixed hex.
func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// MarshalText implements encoding.TextMarshaler.
func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bytes) UnmarshalText(text []byte) error {
	decoded, err := BytesFromHex(string(text))
	if err != nil {
		return err
	}

	*b = decoded
	return nil
}
