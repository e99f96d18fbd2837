package validator

import (
	"errors"
	"strings"
	"testing"

	gvalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHash = "0x" + "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12"
	testDID  = "did:kilt:4pnfkRn5UurBJTW92d9TaVLR2CqJdY4z5HPjrEbpGyBykare"
)

func TestFormatError(t *testing.T) {
	t.Run("should format every field error under ErrValidationFailed", func(t *testing.T) {
		type record struct {
			ID    string `validate:"required"`
			Count int    `validate:"min=0"`
		}

		err := gvalidator.New().Struct(record{Count: -1})
		require.Error(t, err)

		formatted := formatError(err)
		assert.ErrorIs(t, formatted, ErrValidationFailed)
		assert.Contains(t, formatted.Error(), "'ID': value '' does not meet the requirements for the 'required' validation")
		assert.Contains(t, formatted.Error(), "'Count': value '-1' does not meet the requirements for the 'min' validation")
	})

	t.Run("should return unrelated errors unchanged", func(t *testing.T) {
		original := errors.New("redis: connection refused")
		assert.Equal(t, original, formatError(original))
	})
}

func TestValidate(t *testing.T) {
	type aggregation struct {
		ID     string `validate:"ctypeid"`
		Author string `validate:"kiltdid"`
		Claim  string `validate:"omitempty,hexhash"`
	}

	t.Run("should accept well-formed identifiers", func(t *testing.T) {
		err := Validate(aggregation{ID: "kilt:ctype:" + testHash, Author: testDID, Claim: testHash})
		assert.NoError(t, err)
	})

	t.Run("should accept the prehistoric sentinel", func(t *testing.T) {
		err := Validate(aggregation{ID: "kilt:ctype:" + Prehistoric, Author: "did:kilt:" + Prehistoric})
		assert.NoError(t, err)
	})

	t.Run("should reject malformed identifiers", func(t *testing.T) {
		err := Validate(aggregation{
			ID:     "kilt:ctype:" + strings.ToUpper(testHash[2:]),
			Author: "did:web:example.com",
			Claim:  "0x1234",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Contains(t, err.Error(), "'ID'")
		assert.Contains(t, err.Error(), "'ctypeid' validation")
		assert.Contains(t, err.Error(), "'kiltdid' validation")
		assert.Contains(t, err.Error(), "'hexhash' validation")
	})
}

func TestVar(t *testing.T) {
	t.Run("should validate a single value", func(t *testing.T) {
		assert.NoError(t, Var(testHash, "hexhash"))
		assert.ErrorIs(t, Var("kilt:ctype:0x00", "ctypeid"), ErrValidationFailed)
	})
}
