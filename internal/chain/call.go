// Package chain holds the decoded form of KILT blocks: calls, events and the
// account identities that authorize them. Values are produced by the
// decoding sidecar and are read-only for the rest of the indexer.
package chain

import (
	"fmt"
	"strings"

	"github.com/gabapcia/credwatch/internal/pkg/types"
)

// ArgKind tags which field of an Arg carries its value.
type ArgKind uint8

const (
	KindBytes  ArgKind = iota + 1 // Raw holds the value itself
	KindText                      // Text holds the value
	KindCall                      // Call holds a nested call
	KindCalls                     // Calls holds an ordered batch of calls
	KindRecord                    // Fields holds named members
	KindList                      // Fields holds unnamed items
)

var argKindNames = map[ArgKind]string{
	KindBytes:  "bytes",
	KindText:   "text",
	KindCall:   "call",
	KindCalls:  "calls",
	KindRecord: "record",
	KindList:   "list",
}

func (k ArgKind) String() string {
	if name, ok := argKindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k ArgKind) MarshalText() ([]byte, error) {
	if _, ok := argKindNames[k]; !ok {
		return nil, fmt.Errorf("unknown argument kind %d", uint8(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ArgKind) UnmarshalText(text []byte) error {
	for kind, name := range argKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("unknown argument kind %q", text)
}

// Arg is one positional argument of a call, or one field of a record.
//
// Raw is the SCALE encoding the decoder saw for this value; for KindBytes it
// is the value itself. Composite kinds keep Raw so that payload hashes can be
// computed without re-encoding.
type Arg struct {
	Name   string      `json:"name,omitempty"`
	Kind   ArgKind     `json:"kind"`
	Raw    types.Bytes `json:"raw,omitempty"`
	Text   string      `json:"text,omitempty"`
	Call   *Call       `json:"call,omitempty"`
	Calls  []Call      `json:"calls,omitempty"`
	Fields []Arg       `json:"fields,omitempty"`
}

// Field returns the record member called name.
func (a Arg) Field(name string) (Arg, bool) {
	if a.Kind != KindRecord {
		return Arg{}, false
	}

	for _, f := range a.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Arg{}, false
}

// CallKey identifies a call or an event by pallet and method.
type CallKey struct {
	Pallet string
	Method string
}

func (k CallKey) String() string {
	return k.Pallet + "." + k.Method
}

// Call is a decoded extrinsic call. Nested calls appear as KindCall or
// KindCalls arguments, possibly inside records.
type Call struct {
	Pallet string `json:"pallet"`
	Method string `json:"method"`
	Args   []Arg  `json:"args,omitempty"`
}

// Key returns the (pallet, method) pair of the call.
func (c Call) Key() CallKey {
	return CallKey{Pallet: c.Pallet, Method: c.Method}
}

// Arg returns the positional argument i.
func (c Call) Arg(i int) (Arg, bool) {
	if i < 0 || i >= len(c.Args) {
		return Arg{}, false
	}

	return c.Args[i], true
}

// Shape renders the nesting of the call tree, e.g.
// "did.submitDidCall(utility.batchAll[ctype.add, ctype.add])".
func (c Call) Shape() string {
	var sb strings.Builder
	c.writeShape(&sb)
	return sb.String()
}

func (c Call) writeShape(sb *strings.Builder) {
	sb.WriteString(c.Key().String())
	for _, arg := range c.Args {
		writeArgShape(sb, arg)
	}
}

func writeArgShape(sb *strings.Builder, arg Arg) {
	switch arg.Kind {
	case KindCall:
		if arg.Call == nil {
			return
		}
		sb.WriteByte('(')
		arg.Call.writeShape(sb)
		sb.WriteByte(')')
	case KindCalls:
		sb.WriteByte('[')
		for i, child := range arg.Calls {
			if i > 0 {
				sb.WriteString(", ")
			}
			child.writeShape(sb)
		}
		sb.WriteByte(']')
	case KindRecord, KindList:
		for _, f := range arg.Fields {
			writeArgShape(sb, f)
		}
	}
}

// BytesArg builds a KindBytes argument.
func BytesArg(name string, value []byte) Arg {
	return Arg{Name: name, Kind: KindBytes, Raw: value}
}

// TextArg builds a KindText argument.
func TextArg(name, value string) Arg {
	return Arg{Name: name, Kind: KindText, Text: value}
}

// CallArg builds a KindCall argument.
func CallArg(name string, call Call) Arg {
	return Arg{Name: name, Kind: KindCall, Call: &call}
}

// CallsArg builds a KindCalls argument.
func CallsArg(name string, calls ...Call) Arg {
	return Arg{Name: name, Kind: KindCalls, Calls: calls}
}

// RecordArg builds a KindRecord argument whose SCALE encoding is raw.
func RecordArg(name string, raw []byte, fields ...Arg) Arg {
	return Arg{Name: name, Kind: KindRecord, Raw: raw, Fields: fields}
}

// NewCall builds a call from its positional arguments.
func NewCall(pallet, method string, args ...Arg) Call {
	return Call{Pallet: pallet, Method: method, Args: args}
}
