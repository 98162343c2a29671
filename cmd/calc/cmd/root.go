package cmd

import (
	"fmt"
	"io"

	"calculator-brain/internal/engine"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose        bool
	fractionDigits int
)

var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "Interactive arithmetic evaluation engine",
	Long: `calc feeds operand and operator tokens into the calculator engine.

Binary operators are applied strictly in the order they are entered:
"2 + 3 × 4 =" is 20, described as "(2 + 3) × 4".

Commands:
  eval    - evaluate tokens given on the command line
  run     - evaluate a YAML program file
  keypad  - interactive terminal keypad`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every token as it is applied")
	rootCmd.PersistentFlags().IntVar(&fractionDigits, "digits", engine.DefaultNumberFormat.MaxFractionDigits, "maximum fractional digits shown")
}

func numberFormat() engine.NumberFormat {
	f := engine.DefaultNumberFormat
	f.MaxFractionDigits = fractionDigits
	return f
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// runTokens applies tokens to e one at a time and stops at the first guard
// failure.
func runTokens(e *engine.Engine, tokens []engine.Token, logger *zap.Logger) error {
	for i, tok := range tokens {
		if tok.IsOperand() {
			e.SetOperand(tok.Value())
		} else if err := e.PerformOperation(tok.Name()); err != nil {
			return fmt.Errorf("token %d (%s): %w", i, tok, err)
		}

		logger.Debug("token applied",
			zap.Int("index", i),
			zap.Stringer("token", tok),
			zap.Float64("result", e.Result()),
			zap.String("description", e.Description()),
			zap.Bool("pending", e.IsOperationPending()),
		)
	}
	return nil
}

func printState(w io.Writer, e *engine.Engine, f engine.NumberFormat) {
	fmt.Fprintln(w, f.Format(e.Result()))
	fmt.Fprintln(w, engine.Decorate(e.Description(), e.IsOperationPending(), false))
}
