package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is wrapped by every validation failure in this package.
var ErrInvalidRecord = errors.New("invalid record")

// rowValidator is safe for concurrent use and caches struct metadata.
var rowValidator = validator.New(validator.WithRequiredStructEnabled())

func validateRecord(kind string, v any) error {
	if err := rowValidator.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: %s.%s fails %q", ErrInvalidRecord, kind, f.Field(), f.Tag())
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, kind, err)
	}
	return nil
}
