// Package validator wraps go-playground/validator with a package-level
// instance, standardized error formatting, and the identifier tags used by
// the indexer's entities:
//
//   - hexhash:  "0x" followed by 64 lower-case hex characters
//   - ctypeid:  "kilt:ctype:" followed by a hexhash or the prehistoric sentinel
//   - kiltdid:  "did:kilt:" followed by an SS58 address or the prehistoric sentinel
package validator

import (
	"errors"
	"fmt"
	"regexp"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error of the chain returned by Validate.
var ErrValidationFailed = errors.New("struct validation failed")

// Prehistoric is the sentinel stored in identifiers and descriptive fields of
// records whose origin predates the first indexed block.
const Prehistoric = "UNKNOWN_BECAUSE_IT_IS_PREHISTORIC"

var validator *gvalidator.Validate

const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

var (
	hexHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
	ctypeIDPattern = regexp.MustCompile(`^kilt:ctype:(0x[0-9a-f]{64}|` + Prehistoric + `)$`)
	kiltDIDPattern = regexp.MustCompile(`^did:kilt:([1-9A-HJ-NP-Za-km-z]{46,50}|` + Prehistoric + `)$`)
)

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())

	for tag, pattern := range map[string]*regexp.Regexp{
		"hexhash": hexHashPattern,
		"ctypeid": ctypeIDPattern,
		"kiltdid": kiltDIDPattern,
	} {
		if err := validator.RegisterValidation(tag, matches(pattern)); err != nil {
			panic(err)
		}
	}
}

func matches(pattern *regexp.Regexp) gvalidator.Func {
	return func(fl gvalidator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` struct tags. It returns nil or an
// error chain rooted at ErrValidationFailed with one entry per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// Var checks a single value against a tag expression such as "ctypeid".
func Var(v any, tag string) error {
	if err := validator.Var(v, tag); err != nil {
		return formatError(err)
	}

	return nil
}
