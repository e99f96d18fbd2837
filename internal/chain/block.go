package chain

import (
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/credwatch/internal/canonhash"
)

// ErrUnexpectedArgKind is returned by the typed accessors when an argument
// does not hold the requested kind of value.
var ErrUnexpectedArgKind = errors.New("unexpected argument kind")

// Block is a finalized block with its extrinsics and events.
type Block struct {
	Height     uint64         `json:"height"`
	Hash       canonhash.Hash `json:"hash"`
	Timestamp  time.Time      `json:"timestamp"`
	Extrinsics []Extrinsic    `json:"extrinsics"`
	Events     []Event        `json:"events"`
}

// Extrinsic is a transaction included in a block. Signer is nil for
// unsigned (inherent) extrinsics.
type Extrinsic struct {
	Index  int        `json:"index"`
	Signer *AccountID `json:"signer,omitempty"`
	Call   Call       `json:"call"`
}

// Event is a runtime event. ExtrinsicIndex is set when the event was emitted
// while applying an extrinsic.
type Event struct {
	Index          int    `json:"index"`
	Pallet         string `json:"pallet"`
	Method         string `json:"method"`
	ExtrinsicIndex *int   `json:"extrinsicIndex,omitempty"`
	Data           []Arg  `json:"data,omitempty"`
}

// Key returns the (pallet, method) pair of the event.
func (e Event) Key() CallKey {
	return CallKey{Pallet: e.Pallet, Method: e.Method}
}

// Arg returns the positional data field i.
func (e Event) Arg(i int) (Arg, bool) {
	if i < 0 || i >= len(e.Data) {
		return Arg{}, false
	}

	return e.Data[i], true
}

// ExtrinsicOf returns the extrinsic that emitted e.
func (b Block) ExtrinsicOf(e Event) (Extrinsic, bool) {
	if e.ExtrinsicIndex == nil {
		return Extrinsic{}, false
	}

	for _, ext := range b.Extrinsics {
		if ext.Index == *e.ExtrinsicIndex {
			return ext, true
		}
	}

	return Extrinsic{}, false
}

// Hash interprets a KindBytes argument, or a 0x-hex KindText one, as a 32-byte hash.
func (a Arg) Hash() (canonhash.Hash, error) {
	switch a.Kind {
	case KindBytes:
		return canonhash.HashFromBytes(a.Raw)
	case KindText:
		return canonhash.ParseHash(a.Text)
	default:
		return canonhash.Hash{}, fmt.Errorf("%w: want hash, got %s", ErrUnexpectedArgKind, a.Kind)
	}
}

// TextValue returns the textual value of a KindText argument, or the UTF-8
// interpretation of a KindBytes one.
func (a Arg) TextValue() (string, error) {
	switch a.Kind {
	case KindText:
		return a.Text, nil
	case KindBytes:
		return string(a.Raw), nil
	default:
		return "", fmt.Errorf("%w: want text, got %s", ErrUnexpectedArgKind, a.Kind)
	}
}
