package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidMath is the root of every error a guarded operator can return.
var ErrInvalidMath = errors.New("invalid math")

var (
	ErrNegativeSquareRoot = fmt.Errorf("%w: square root of negative number", ErrInvalidMath)
	ErrDivisionByZero     = fmt.Errorf("%w: division by zero", ErrInvalidMath)
	ErrFactorialDomain    = fmt.Errorf("%w: factorial of negative or non-integer number", ErrInvalidMath)
)

// ErrorMessage returns the text a display shows for err.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNegativeSquareRoot):
		return "Square Root of Negative Number"
	case errors.Is(err, ErrDivisionByZero):
		return "Division by Zero"
	case errors.Is(err, ErrFactorialDomain):
		return "Factorial of Invalid Number"
	default:
		return "Something went wrong"
	}
}
