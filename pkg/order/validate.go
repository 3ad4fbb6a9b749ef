package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every parse and validation failure
var ErrInvalid = errors.New("invalid order")

var validate = validator.New()

// Validate checks the preconditions the receipt composer relies on.
// The composer itself never validates; callers run this first.
func Validate(o *Order) error {
	if o == nil {
		return fmt.Errorf("%w: order is required", ErrInvalid)
	}

	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	for i, item := range o.OrderItems {
		if item.Price.IsNegative() {
			return fmt.Errorf("%w: orderItems[%d] price is negative", ErrInvalid, i)
		}
	}

	return nil
}
