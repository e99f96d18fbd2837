package chain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gabapcia/credwatch/internal/pkg/ss58"
	"github.com/gabapcia/credwatch/internal/pkg/types"
)

// DIDPrefix is the method prefix of KILT light and full DIDs.
const DIDPrefix = "did:kilt:"

// ErrInvalidAccountID is returned for identities that are not 32-byte account ids.
var ErrInvalidAccountID = errors.New("invalid account id")

// AccountID is a 32-byte Substrate account id. DIDs, attesters and deposit
// payers are all identified by one.
type AccountID [32]byte

// AccountIDFromBytes copies a 32-byte slice into an AccountID.
func AccountIDFromBytes(b []byte) (AccountID, error) {
	var id AccountID
	if len(b) != len(id) {
		return id, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccountID, len(id), len(b))
	}

	copy(id[:], b)
	return id, nil
}

// ParseAccountID accepts a KILT SS58 address, a did:kilt URI or a 0x-prefixed
// hex string.
func ParseAccountID(s string) (AccountID, error) {
	s = strings.TrimPrefix(s, DIDPrefix)

	if strings.HasPrefix(s, "0x") {
		raw, err := types.BytesFromHex(s)
		if err != nil {
			return AccountID{}, fmt.Errorf("%w: %w", ErrInvalidAccountID, err)
		}
		return AccountIDFromBytes(raw)
	}

	_, raw, err := ss58.Decode(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %w", ErrInvalidAccountID, err)
	}

	return AccountIDFromBytes(raw)
}

// Bytes returns the SCALE encoding of the account id, which is the id itself.
func (a AccountID) Bytes() []byte {
	return a[:]
}

// String renders the account id as a KILT SS58 address.
func (a AccountID) String() string {
	address, _ := ss58.Encode(ss58.KILTPrefix, a[:])
	return address
}

// DID returns the did:kilt URI of the account.
func (a AccountID) DID() string {
	return DIDPrefix + a.String()
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}

// AccountID interprets a KindBytes argument, or a KindText address, as an
// account id.
func (a Arg) AccountID() (AccountID, error) {
	switch a.Kind {
	case KindBytes:
		return AccountIDFromBytes(a.Raw)
	case KindText:
		return ParseAccountID(a.Text)
	default:
		return AccountID{}, fmt.Errorf("%w: argument of kind %s", ErrInvalidAccountID, a.Kind)
	}
}
