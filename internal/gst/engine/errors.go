package engine

import "errors"

// ErrInvalidArgument is matched by every input validation failure of the engine.
var ErrInvalidArgument = errors.New("invalid_argument")

// ArgumentError names the offending input. errors.Is(err, ErrInvalidArgument)
// holds for every ArgumentError.
type ArgumentError struct {
	Field string
}

func (e *ArgumentError) Error() string {
	return "invalid_" + e.Field
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

var (
	ErrInvalidAmount       error = &ArgumentError{Field: "amount"}
	ErrInvalidRate         error = &ArgumentError{Field: "gst_rate"}
	ErrInvalidQuantity     error = &ArgumentError{Field: "quantity"}
	ErrInvalidUnitPrice    error = &ArgumentError{Field: "unit_price"}
	ErrInvalidJurisdiction error = &ArgumentError{Field: "state_code"}
	ErrInvalidBuyer        error = &ArgumentError{Field: "buyer_state_code"}
	ErrInvalidGSTIN        error = &ArgumentError{Field: "gstin"}
)
