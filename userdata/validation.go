package userdata

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	clienterrors "github.com/campushq/go-placement-client/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a fetched document against the profile schema.
// A document that fails validation must never be cached, so callers are
// expected to treat an error here as a failed fetch.
func Validate(doc *Document) error {
	if doc == nil {
		return errors.Wrap(clienterrors.ErrValidationFailed, "[userdata.Validate] nil document")
	}
	if err := validate.Struct(doc); err != nil {
		return errors.Wrapf(clienterrors.ErrValidationFailed, "[userdata.Validate] %v", err)
	}
	return nil
}
