package engine

import (
	"math"
	"math/rand"
	"sort"
)

// Operation is one entry of the operator table. The concrete kinds are
// Constant, Nullary, Unary, Binary and Equals.
type Operation interface {
	Kind() string
}

// Constant loads a fixed value; the description becomes the operator symbol.
type Constant struct {
	Value float64
}

// Nullary loads a freshly computed value each time it is performed.
type Nullary struct {
	Compute func() float64
	Display string
}

// Unary transforms the accumulator. Guard, when set, runs before Compute and
// may reject the operand.
type Unary struct {
	Compute func(float64) float64
	Render  func(string) string
	Guard   func(float64) error
}

// Binary combines a pending first operand with the accumulator. Precedence only
// affects how the description is parenthesized.
type Binary struct {
	Compute    func(a, b float64) float64
	Render     func(a, b string) string
	Precedence int
	Guard      func(a, b float64) error
}

// Equals resolves the pending binary operation without starting a new one.
type Equals struct{}

func (Constant) Kind() string { return "constant" }
func (Nullary) Kind() string  { return "nullary" }
func (Unary) Kind() string    { return "unary" }
func (Binary) Kind() string   { return "binary" }
func (Equals) Kind() string   { return "equals" }

const (
	precedenceAdditive       = 0
	precedenceMultiplicative = 1
	precedenceExponent       = 2
)

// DefaultOperations returns the standard operator table. random backs the
// "rand" operator; nil selects math/rand.
func DefaultOperations(random func() float64) map[string]Operation {
	if random == nil {
		random = rand.Float64
	}

	return map[string]Operation{
		"π": Constant{Value: math.Pi},
		"e": Constant{Value: math.E},

		"±":     unary(func(x float64) float64 { return -x }, prefix("-")),
		"%":     unary(func(x float64) float64 { return x / 100 }, suffix("%")),
		"√":     Unary{Compute: math.Sqrt, Render: prefix("√"), Guard: nonNegative},
		"³√":    unary(math.Cbrt, prefix("³√")),
		"x²":    unary(func(x float64) float64 { return x * x }, suffix("²")),
		"x³":    unary(func(x float64) float64 { return x * x * x }, suffix("³")),
		"x⁻¹":   unary(func(x float64) float64 { return 1 / x }, suffix("⁻¹")),
		"sin":   unary(math.Sin, prefix("sin")),
		"cos":   unary(math.Cos, prefix("cos")),
		"tan":   unary(math.Tan, prefix("tan")),
		"sinh":  unary(math.Sinh, prefix("sinh")),
		"cosh":  unary(math.Cosh, prefix("cosh")),
		"tanh":  unary(math.Tanh, prefix("tanh")),
		"ln":    unary(math.Log, prefix("ln")),
		"log₁₀": unary(math.Log10, prefix("log₁₀")),
		"eˣ":    unary(math.Exp, prefix("e^")),
		"2ˣ":    unary(math.Exp2, prefix("2^")),
		"10ˣ":   unary(func(x float64) float64 { return math.Pow(10, x) }, prefix("10^")),
		"x!":    Unary{Compute: factorial, Render: suffix("!"), Guard: factorialDomain},

		"×": Binary{
			Compute:    func(a, b float64) float64 { return a * b },
			Render:     infix("×"),
			Precedence: precedenceMultiplicative,
		},
		"÷": Binary{
			Compute:    func(a, b float64) float64 { return a / b },
			Render:     infix("÷"),
			Precedence: precedenceMultiplicative,
			Guard:      nonZeroDivisor,
		},
		"+": Binary{
			Compute:    func(a, b float64) float64 { return a + b },
			Render:     infix("+"),
			Precedence: precedenceAdditive,
		},
		"−": Binary{
			Compute:    func(a, b float64) float64 { return a - b },
			Render:     infix("−"),
			Precedence: precedenceAdditive,
		},
		"xʸ": Binary{
			Compute:    math.Pow,
			Render:     infix("^"),
			Precedence: precedenceExponent,
		},
		"yˣ": Binary{
			Compute:    func(a, b float64) float64 { return math.Pow(b, a) },
			Render:     func(a, b string) string { return b + " ^ " + a },
			Precedence: precedenceExponent,
		},

		"rand": Nullary{Compute: random, Display: "rand"},

		"=": Equals{},
	}
}

// Symbols returns the keys of ops in sorted order.
func Symbols(ops map[string]Operation) []string {
	symbols := make([]string, 0, len(ops))
	for s := range ops {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

func unary(fn func(float64) float64, render func(string) string) Unary {
	return Unary{Compute: fn, Render: render}
}

func prefix(p string) func(string) string {
	return func(d string) string { return p + "(" + d + ")" }
}

func suffix(s string) func(string) string {
	return func(d string) string { return "(" + d + ")" + s }
}

func infix(op string) func(a, b string) string {
	return func(a, b string) string { return a + " " + op + " " + b }
}

func nonNegative(x float64) error {
	if x < 0 {
		return ErrNegativeSquareRoot
	}
	return nil
}

func nonZeroDivisor(_, b float64) error {
	if b == 0 {
		return ErrDivisionByZero
	}
	return nil
}

func factorialDomain(x float64) error {
	if math.IsNaN(x) || x < 0 || x != math.Trunc(x) {
		return ErrFactorialDomain
	}
	return nil
}

// factorial expects a non-negative integer; see factorialDomain.
func factorial(n float64) float64 {
	if math.IsInf(n, 1) || n > 170 {
		return math.Inf(1)
	}
	result := 1.0
	for i := 2.0; i <= n; i++ {
		result *= i
	}
	return result
}
