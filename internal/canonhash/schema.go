package canonhash

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"
)

// SelfIDKey is the schema key holding the identifier derived from the hash itself.
const SelfIDKey = "$id"

// ErrInvalidSchema is returned when a definition is not a JSON object.
var ErrInvalidSchema = errors.New("invalid schema definition")

// HashSchema is the schema mode over a JSON document.
func HashSchema(definition []byte) (Hash, error) {
	canonical, err := Canonicalize(definition)
	if err != nil {
		return Hash{}, err
	}

	return blake2b.Sum256(canonical), nil
}

// HashSchemaValue is the schema mode over an already decoded document, as
// produced by encoding/json (objects as map[string]any).
func HashSchemaValue(schema map[string]any) (Hash, error) {
	canonical, err := canonicalizeValue(schema)
	if err != nil {
		return Hash{}, err
	}

	return blake2b.Sum256(canonical), nil
}

// Canonicalize returns the NFC-normalized canonical serialization hashed by
// HashSchema: "$id" removed, object keys sorted at every level, arrays in
// their original order, no insignificant whitespace.
func Canonicalize(definition []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(definition))
	dec.UseNumber()

	var schema map[string]any
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	if schema == nil {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrInvalidSchema)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after the object", ErrInvalidSchema)
	}

	return canonicalizeValue(schema)
}

func canonicalizeValue(schema map[string]any) ([]byte, error) {
	stripped := make(map[string]any, len(schema))
	for k, v := range schema {
		if k != SelfIDKey {
			stripped[k] = v
		}
	}

	var sb strings.Builder
	if err := writeValue(&sb, stripped); err != nil {
		return nil, err
	}

	return norm.NFC.Bytes([]byte(sb.String())), nil
}

func writeValue(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case bool:
		sb.WriteString(strconv.FormatBool(val))
	case string:
		writeString(sb, val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return fmt.Errorf("%w: number %q: %w", ErrInvalidSchema, val, err)
		}
		return writeNumber(sb, f)
	case float64:
		return writeNumber(sb, val)
	case int:
		sb.WriteString(strconv.Itoa(val))
	case int64:
		sb.WriteString(strconv.FormatInt(val, 10))
	case []any:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeValue(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeString(sb, k)
			sb.WriteByte(':')
			if err := writeValue(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	default:
		return fmt.Errorf("%w: unsupported value of type %T", ErrInvalidSchema, v)
	}

	return nil
}

// writeString quotes s the way JSON.stringify does: only quotes, backslashes
// and control characters are escaped; HTML-sensitive characters are kept.
func writeString(sb *strings.Builder, s string) {
	const hexDigits = "0123456789abcdef"

	sb.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			sb.WriteString(`\"`)
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\b':
			sb.WriteString(`\b`)
		case r == '\f':
			sb.WriteString(`\f`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20:
			sb.WriteString(`\u00`)
			sb.WriteByte(hexDigits[r>>4])
			sb.WriteByte(hexDigits[r&0xf])
		default:
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	sb.WriteByte('"')
}

// writeNumber renders f with the shortest round-trip digits, switching to
// exponent notation outside [1e-7, 1e21) like ECMAScript Number#toString.
func writeNumber(sb *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite number", ErrInvalidSchema)
	}

	if f == 0 {
		sb.WriteByte('0')
		return nil
	}

	if f < 0 {
		sb.WriteByte('-')
		f = -f
	}

	// "d.ddde±XX" with the shortest digits that round-trip.
	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return err
	}

	k, n := len(digits), exp+1
	switch {
	case k <= n && n <= 21:
		sb.WriteString(digits)
		sb.WriteString(strings.Repeat("0", n-k))
	case 0 < n && n <= 21:
		sb.WriteString(digits[:n])
		sb.WriteByte('.')
		sb.WriteString(digits[n:])
	case -6 < n && n <= 0:
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -n))
		sb.WriteString(digits)
	default:
		sb.WriteByte(digits[0])
		if k > 1 {
			sb.WriteByte('.')
			sb.WriteString(digits[1:])
		}
		sb.WriteByte('e')
		if n-1 >= 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.Itoa(n - 1))
	}

	return nil
}
